// Package script reads and writes proof scripts: plain-text files with one
// command per line that drive the proof document builder.
//
//	pre <sentence>                       premise
//	lin <sentence>:<rule>:<line line..>  derived line citing file lines
//	sub <sentence>                       open a subproof with an assumption
//	end                                  close the innermost subproof
//	gol <sentence>                       goal
//	equ <name>:<file>:<file>             equivalence lemma from two proofs
//	inf <name>:<file>                    inference lemma from one proof
//
// Blank lines and lines starting with '#' are ignored. Citations use file
// line numbers; the reader translates them to proof line numbers.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapproof/pkg/proof"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// DefaultMaxDepth bounds how deeply lemma files may include other lemmas.
const DefaultMaxDepth = 8

// Errors wrapped by LineError.
var (
	ErrUnknownCommand         = errors.New("unknown command")
	ErrPremiseAfterDerivation = errors.New("premise after the derivation started")
	ErrBadCitation            = errors.New("bad citation")
	ErrMalformedCommand       = errors.New("malformed command")
	ErrLemmaDepth             = errors.New("lemma files nested too deeply")
	ErrLemmasDisabled         = errors.New("lemma commands are not allowed here")
)

// LineError reports a problem on one line of a script.
type LineError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

func (e *LineError) Unwrap() error { return e.Err }

// LemmaOutcome records a lemma command and whether its rule was added.
type LemmaOutcome struct {
	Name   string
	Kind   string
	Files  []string
	Proofs []*proof.Document
	Err    error
}

// Result is a read script: the document plus what happened along the way.
type Result struct {
	Doc    *proof.Document
	Lemmas []LemmaOutcome

	// Warnings are problems that leave a line unjustified rather than
	// stopping the read, such as an unknown rule name.
	Warnings []*LineError
}

// Reader builds documents from scripts.
type Reader struct {
	catalog     *rules.Catalog
	logger      *slog.Logger
	maxDepth    int
	allowLemmas bool
	readFile    func(string) ([]byte, error)
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxDepth sets how deeply lemma files may nest.
func WithMaxDepth(depth int) Option {
	return func(r *Reader) { r.maxDepth = depth }
}

// WithoutLemmas makes equ and inf commands errors.
func WithoutLemmas() Option {
	return func(r *Reader) { r.allowLemmas = false }
}

// NewReader creates a reader whose documents cite rules from catalog.
func NewReader(catalog *rules.Catalog, opts ...Option) *Reader {
	r := &Reader{
		catalog:     catalog,
		logger:      slog.New(slog.DiscardHandler),
		maxDepth:    DefaultMaxDepth,
		allowLemmas: true,
		readFile:    os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads the script at path. Lemma files are resolved relative to
// the directory of path.
func (r *Reader) ReadFile(path string) (*Result, error) {
	return r.readPath(path, r.catalog, 0)
}

// Read reads a script from src. name is used in errors and to resolve
// lemma files.
func (r *Reader) Read(name string, src io.Reader) (*Result, error) {
	return r.read(name, src, r.catalog, 0)
}

func (r *Reader) readPath(path string, catalog *rules.Catalog, depth int) (*Result, error) {
	content, err := r.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof %s: %w", path, err)
	}
	return r.read(path, strings.NewReader(string(content)), catalog, depth)
}

// state tracks one script as it is read.
type state struct {
	r     *Reader
	name  string
	depth int
	doc   *proof.Document
	res   *Result

	// proofLine maps file line numbers to proof line numbers.
	proofLine map[int]int

	started bool
	// reuse is set after end: the next lin fills the line end created.
	reuse bool
}

func (r *Reader) read(name string, src io.Reader, catalog *rules.Catalog, depth int) (*Result, error) {
	doc := proof.New(catalog, proof.WithLogger(r.logger))
	st := &state{
		r:         r,
		name:      name,
		depth:     depth,
		doc:       doc,
		res:       &Result{Doc: doc},
		proofLine: make(map[int]int),
	}

	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := st.exec(lineNo, text); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proof %s: %w", name, err)
	}

	r.logger.Debug("read proof script", "file", name, "lines", doc.Len(), "lemmas", len(st.res.Lemmas))
	return st.res, nil
}

func (st *state) fail(line int, err error, format string, args ...any) error {
	return &LineError{File: st.name, Line: line, Message: fmt.Sprintf(format, args...), Err: err}
}

func (st *state) exec(line int, text string) error {
	cmd, arg := text, ""
	if len(text) > 3 {
		if text[3] != ' ' && text[3] != '\t' {
			return st.fail(line, ErrUnknownCommand, "unknown command %q", text)
		}
		cmd, arg = text[:3], strings.TrimSpace(text[3:])
	}

	switch cmd {
	case "pre":
		return st.premise(line, arg)
	case "lin":
		return st.derive(line, arg)
	case "sub":
		return st.assume(line, arg)
	case "end":
		return st.end(line)
	case "gol":
		if err := st.doc.SetGoal(arg); err != nil {
			return st.fail(line, err, "invalid goal: %v", err)
		}
		return nil
	case "equ":
		return st.equivalenceLemma(line, arg)
	case "inf":
		return st.inferenceLemma(line, arg)
	default:
		return st.fail(line, ErrUnknownCommand, "unknown command %q", cmd)
	}
}

func (st *state) premise(line int, text string) error {
	if st.started {
		return st.fail(line, ErrPremiseAfterDerivation, "premises must come before the derivation")
	}
	st.doc.AddPremiseLine()
	if err := st.doc.SetStatement(text); err != nil {
		return st.fail(line, err, "%v", err)
	}
	st.record(line)
	return nil
}

func (st *state) derive(line int, arg string) error {
	parts := strings.SplitN(arg, ":", 3)
	if !st.reuse {
		st.doc.AddLine()
	}
	st.started, st.reuse = true, false

	if err := st.doc.SetStatement(parts[0]); err != nil {
		return st.fail(line, err, "%v", err)
	}
	st.record(line)

	if len(parts) > 1 {
		name := strings.TrimSpace(parts[1])
		if err := st.doc.SetJustification(name); err != nil {
			if !errors.Is(err, proof.ErrUnknownRule) {
				return st.fail(line, err, "%v", err)
			}
			warn := &LineError{File: st.name, Line: line, Message: err.Error(), Err: err}
			st.res.Warnings = append(st.res.Warnings, warn)
			st.r.logger.Warn("unknown rule", "file", st.name, "line", line, "rule", name)
		}
	}

	if len(parts) > 2 {
		cites := strings.FieldsFunc(parts[2], func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
		for _, c := range cites {
			n, err := strconv.Atoi(c)
			if err != nil {
				return st.fail(line, ErrBadCitation, "citation %q is not a line number", c)
			}
			target, ok := st.proofLine[n]
			if !ok {
				return st.fail(line, ErrBadCitation, "line %d holds no proof line", n)
			}
			if err := st.doc.ToggleAntecedent(target); err != nil {
				return st.fail(line, err, "cannot cite line %d: %v", n, err)
			}
		}
	}
	return nil
}

func (st *state) assume(line int, text string) error {
	st.doc.AddSubproofLine()
	st.started, st.reuse = true, false
	if err := st.doc.SetStatement(text); err != nil {
		return st.fail(line, err, "%v", err)
	}
	st.record(line)
	return nil
}

func (st *state) end(line int) error {
	if err := st.doc.EndSubproof(); err != nil {
		return st.fail(line, err, "%v", err)
	}
	st.started, st.reuse = true, true
	return nil
}

// record maps the file line to the current proof line.
func (st *state) record(line int) {
	st.proofLine[line] = st.doc.Position() + 1
}

func (st *state) lemmaFiles(line int, arg string, want int) (string, []string, error) {
	if !st.r.allowLemmas {
		return "", nil, st.fail(line, ErrLemmasDisabled, "lemma commands are disabled")
	}
	parts := strings.Split(arg, ":")
	if len(parts) != want+1 {
		return "", nil, st.fail(line, ErrMalformedCommand, "want <name>%s", strings.Repeat(":<file>", want))
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", nil, st.fail(line, ErrMalformedCommand, "lemma name is empty")
	}
	if st.depth+1 > st.r.maxDepth {
		return "", nil, st.fail(line, ErrLemmaDepth, "lemma %q exceeds depth %d", name, st.r.maxDepth)
	}

	files := make([]string, 0, want)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(st.name), p)
		}
		files = append(files, p)
	}
	return name, files, nil
}

func (st *state) readLemma(line int, path string) (*proof.Document, error) {
	res, err := st.r.readPath(path, st.doc.Catalog(), st.depth+1)
	if err != nil {
		return nil, st.fail(line, err, "lemma %s: %v", path, err)
	}
	return res.Doc, nil
}

func (st *state) equivalenceLemma(line int, arg string) error {
	name, files, err := st.lemmaFiles(line, arg, 2)
	if err != nil {
		return err
	}
	first, err := st.readLemma(line, files[0])
	if err != nil {
		return err
	}
	second, err := st.readLemma(line, files[1])
	if err != nil {
		return err
	}

	out := LemmaOutcome{Name: name, Kind: "equivalence", Files: files, Proofs: []*proof.Document{first, second}}
	out.Err = st.doc.AddEquivalenceLemma(name, first, second)
	return st.settle(line, out)
}

func (st *state) inferenceLemma(line int, arg string) error {
	name, files, err := st.lemmaFiles(line, arg, 1)
	if err != nil {
		return err
	}
	lemma, err := st.readLemma(line, files[0])
	if err != nil {
		return err
	}

	out := LemmaOutcome{Name: name, Kind: "inference", Files: files, Proofs: []*proof.Document{lemma}}
	out.Err = st.doc.AddInferenceLemma(name, lemma)
	return st.settle(line, out)
}

// settle records a lemma outcome. A lemma whose proofs do not check out is
// skipped so later lines citing it fail on their own; a name clash stops
// the read.
func (st *state) settle(line int, out LemmaOutcome) error {
	if errors.Is(out.Err, proof.ErrRuleExists) {
		return st.fail(line, out.Err, "%v", out.Err)
	}
	st.res.Lemmas = append(st.res.Lemmas, out)
	if out.Err != nil {
		st.res.Warnings = append(st.res.Warnings, &LineError{File: st.name, Line: line, Message: out.Err.Error(), Err: out.Err})
		st.r.logger.Warn("lemma not added", "file", st.name, "line", line, "lemma", out.Name, "error", out.Err)
		return nil
	}
	st.r.logger.Debug("lemma added", "file", st.name, "lemma", out.Name, "kind", out.Kind)
	return nil
}
