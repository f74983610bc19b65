package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapproof/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envVars documents the config keys most often set from the environment.
var envVars = [][2]string{
	{"LEAPPROOF_RULES_FILE", "Extra rule catalog (YAML or Starlark)"},
	{"LEAPPROOF_BUILTIN_RULES", "Include the built-in rules"},
	{"LEAPPROOF_OUTPUT", "Output format (auto, text, markdown, json)"},
	{"LEAPPROOF_STATE_PATH", "Check history database path"},
	{"LEAPPROOF_RECORD", "Record every check in the history database"},
	{"LEAPPROOF_SERVE__ADDR", "Address the HTTP server listens on"},
	{"LEAPPROOF_WATCH__DEBOUNCE", "Delay before re-checking after a change"},
}

// generateCLIDocs writes an index page plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documented(root)

	pages := map[string][]byte{"index.md": cliIndex(root, cmds)}
	for _, cmd := range cmds {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documented returns the subcommands that get a page.
func documented(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__") {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for leapproof")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("leapproof checks natural-deduction proof scripts, lists the rules a proof may cite, and builds proofs interactively.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapproof/cmd/leapproof@latest")

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(cmds))
	for _, cmd := range cmds {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Any config key can be set from a LEAPPROOF_ variable. A double underscore separates nested keys.")
	rows = rows[:0]
	for _, v := range envVars {
		rows = append(rows, []string{InlineCode(v[0]), v[1]})
	}
	w.Table([]string{"Variable", "Description"}, rows)
	w.Paragraph("Flags override environment variables, which override leapproof.yaml.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Every proof verified"},
		{InlineCode("1"), "A proof failed to verify, or another error (see stderr)"},
	})
	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagHeaders, flagRows(cmd.LocalFlags()))
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, flagRows(cmd.InheritedFlags()))
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

var flagHeaders = []string{"Option", "Short", "Default", "Description"}

func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		if def != "" && f.Value.Type() != "bool" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	return rows
}

// dedent strips the indentation shared by every non-blank line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
