package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/internal/script"
	"github.com/leapstack-labs/leapproof/pkg/proof"
	"github.com/leapstack-labs/leapproof/pkg/rules"
	"github.com/spf13/cobra"
)

const replPrompt = "proof> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [file]",
		Short: "Build a proof interactively",
		Long: `Build and check a proof one line at a time.

Lines are added with the same commands a proof script uses (pre, lin, sub,
end, gol), except that lin cites proof line numbers. Dot-commands show,
check, edit, load and save the proof. Type .help inside the REPL for the
full list.`,
		Example: `  leapproof repl
  leapproof repl proofs/modus.prf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			s := newREPLSession(cc, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if len(args) > 0 {
				if err := s.load(args[0]); err != nil {
					return err
				}
			}
			return runREPL(cc, s)
		},
	}
}

func runREPL(cc *CommandContext, s *replSession) error {
	historyFile := ""
	if cc.Cfg.StatePath != "" && cc.Cfg.StatePath != ":memory:" {
		dir := filepath.Dir(cc.Cfg.StatePath)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			historyFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(s.doc.Catalog()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          s.out,
		Stderr:          s.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "leapproof REPL (%d rules)\n", s.doc.Catalog().Len())
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if s.exec(line) {
			return nil
		}
	}
}

// replSession holds the proof being built in the REPL.
type replSession struct {
	cc      *CommandContext
	doc     *proof.Document
	r       *render.Renderer
	out     io.Writer
	errOut  io.Writer
	current string // file last loaded or saved

	// reuse is set after end: the next lin fills the blank line end left.
	reuse bool
}

func newREPLSession(cc *CommandContext, out, errOut io.Writer) *replSession {
	return &replSession{
		cc:     cc,
		doc:    proof.New(cc.Catalog, proof.WithLogger(cc.Logger)),
		r:      cc.Renderer,
		out:    out,
		errOut: errOut,
	}
}

// exec runs one input line and reports whether the REPL should exit.
// Errors are printed, never returned, so a typo does not end the session.
func (s *replSession) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	if cmd == ".quit" || cmd == ".exit" {
		return true
	}

	var err error
	if strings.HasPrefix(cmd, ".") {
		err = s.dotCommand(cmd, arg)
	} else {
		err = s.build(cmd, arg)
	}
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) build(cmd, arg string) error {
	reuse := s.reuse
	s.reuse = false

	switch cmd {
	case "pre":
		s.doc.AddPremiseLine()
		return s.doc.SetStatement(arg)
	case "lin":
		return s.derive(arg, reuse)
	case "sub":
		s.doc.AddSubproofLine()
		return s.doc.SetStatement(arg)
	case "end":
		if err := s.doc.EndSubproof(); err != nil {
			return err
		}
		s.reuse = true
		return nil
	case "gol":
		return s.doc.SetGoal(arg)
	case "set":
		return s.doc.SetStatement(arg)
	case "just":
		return s.doc.SetJustification(arg)
	case "cite":
		return s.cite(strings.Fields(arg))
	default:
		return fmt.Errorf("unknown command %q (type .help for commands)", cmd)
	}
}

// derive adds a line from "<sentence>:<rule>:<line line ...>", where the
// rule and citations are optional.
func (s *replSession) derive(arg string, reuse bool) error {
	parts := strings.SplitN(arg, ":", 3)
	if !reuse {
		s.doc.AddLine()
	}
	if err := s.doc.SetStatement(parts[0]); err != nil {
		return err
	}
	if len(parts) > 1 {
		if err := s.doc.SetJustification(strings.TrimSpace(parts[1])); err != nil {
			return err
		}
	}
	if len(parts) > 2 {
		return s.cite(strings.FieldsFunc(parts[2], func(r rune) bool { return r == ' ' || r == ',' }))
	}
	return nil
}

func (s *replSession) cite(fields []string) error {
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("citation %q is not a line number", f)
		}
		if err := s.doc.ToggleAntecedent(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *replSession) dotCommand(cmd, arg string) error {
	s.reuse = false

	switch cmd {
	case ".help":
		printREPLHelp(s.out)
		return nil
	case ".show":
		return s.r.Proof(s.current, s.doc)
	case ".check":
		return s.r.Report(s.current, s.doc, s.doc.Verify())
	case ".rules":
		return s.r.Rules(s.doc.Catalog())
	case ".new":
		s.doc = proof.New(s.cc.Catalog, proof.WithLogger(s.cc.Logger))
		s.current = ""
		return nil
	case ".goto":
		n, err := lineArg(arg)
		if err != nil {
			return err
		}
		return s.doc.SetPosition(n - 1)
	case ".rm":
		n, err := lineArg(arg)
		if err != nil {
			return err
		}
		return s.doc.RemoveLine(n - 1)
	case ".load":
		if arg == "" {
			return errors.New("usage: .load <file>")
		}
		return s.load(arg)
	case ".save":
		return s.save(arg)
	default:
		return fmt.Errorf("unknown command %s (type .help for commands)", cmd)
	}
}

func lineArg(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("line number expected, got %q", arg)
	}
	return n, nil
}

func (s *replSession) load(path string) error {
	res, err := script.NewReader(s.cc.Catalog, script.WithLogger(s.cc.Logger)).ReadFile(path)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		s.r.Warn(w.Error())
	}
	s.doc = res.Doc
	s.current = path
	_, _ = fmt.Fprintf(s.out, "Loaded %s (%d lines)\n", path, s.doc.Len())
	return nil
}

func (s *replSession) save(path string) error {
	if path == "" {
		path = s.current
	}
	if path == "" {
		return errors.New("usage: .save <file>")
	}

	f, err := os.Create(path) //nolint:gosec // G304: path is typed by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := script.Write(f, s.doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.current = path
	_, _ = fmt.Fprintf(s.out, "Saved %s\n", path)
	return nil
}

func printREPLHelp(w io.Writer) {
	help := `
Building:
  pre <sentence>                  Add a premise
  lin <sentence>:<rule>:<n n ...> Add a derived line citing proof lines
  sub <sentence>                  Open a subproof with an assumption
  end                             Close the current subproof
  gol <sentence>                  Set the goal
  set <sentence>                  Rewrite the current line
  just <rule>                     Set the rule of the current line
  cite <n ...>                    Cite, or stop citing, lines

Commands:
  .show           Print the proof
  .check          Verify the proof
  .rules          List the rules
  .goto <n>       Make line n current
  .rm <n>         Remove line n (and its subproof, for an assumption)
  .load <file>    Read a proof script
  .save [file]    Write the proof as a script
  .new            Start over
  .quit / .exit   Exit the REPL
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes commands and rule names.
func newREPLCompleter(c *rules.Catalog) *readline.PrefixCompleter {
	names := make([]readline.PrefixCompleterInterface, 0, c.Len())
	for _, name := range c.Names() {
		names = append(names, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("pre"),
		readline.PcItem("lin"),
		readline.PcItem("sub"),
		readline.PcItem("end"),
		readline.PcItem("gol"),
		readline.PcItem("set"),
		readline.PcItem("just", names...),
		readline.PcItem("cite"),
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".check"),
		readline.PcItem(".rules"),
		readline.PcItem(".goto"),
		readline.PcItem(".rm"),
		readline.PcItem(".load"),
		readline.PcItem(".save"),
		readline.PcItem(".new"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
