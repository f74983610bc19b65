// Package proof models a natural-deduction proof document: an ordered list
// of lines, some grouped into nested subproofs, each citing earlier
// statements under a named rule.
//
// Line indexes passed to SetPosition, Line and RemoveLine are 0-based.
// Line numbers, as printed and as passed to ToggleAntecedent, are 1-based.
package proof

import (
	"errors"
	"log/slog"

	"github.com/leapstack-labs/leapproof/pkg/justify"
	"github.com/leapstack-labs/leapproof/pkg/rules"
	"github.com/leapstack-labs/leapproof/pkg/sentence"
)

// Errors returned by document operations.
var (
	// ErrNoCurrentLine is returned when an edit needs a current line.
	ErrNoCurrentLine = errors.New("no current line")
	// ErrPremiseLine is returned when an edit does not apply to premises
	// and subproof assumptions.
	ErrPremiseLine = errors.New("line is a premise or assumption")
	// ErrUnknownRule is returned for a rule name missing from the catalog.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrLineOutOfRange is returned for an invalid line index or number.
	ErrLineOutOfRange = errors.New("line out of range")
	// ErrNotInSubproof is returned by EndSubproof outside a subproof.
	ErrNotInSubproof = errors.New("current line is not inside a subproof")
	// ErrRuleExists is returned when a lemma name is already taken.
	ErrRuleExists = errors.New("rule already exists")
	// ErrLemmaUnproven is returned when a lemma proof does not verify.
	ErrLemmaUnproven = errors.New("lemma proof does not verify")
	// ErrLemmaShape is returned when lemma proofs do not fit together.
	ErrLemmaShape = errors.New("lemma proofs have the wrong shape")
)

// none marks a missing statement reference.
const none = -1

// statement is a proof line or a subproof node. Subproof nodes are not
// lines: they are reached through the parent of their assumption line.
type statement struct {
	sentence    *sentence.Sentence
	rule        *justify.Justification
	antecedents []int
	parent      int

	// subproof nodes only
	subproof   bool
	assumption int

	// placeholder marks the untouched line EndSubproof creates
	placeholder bool
	removed     bool
}

// Document is a proof under construction. It is not safe for concurrent
// mutation; independent documents may be built and verified in parallel
// when they share a catalog.
type Document struct {
	stmts []statement
	lines []int

	cursor      int
	lastPremise int
	goal        *sentence.Sentence

	catalog    *rules.Catalog
	premise    *justify.Justification
	assumption *justify.Justification
	logger     *slog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates an empty document citing rules from catalog. The document
// works on a private copy, so lemmas it adds stay local to it.
func New(catalog *rules.Catalog, opts ...Option) *Document {
	if catalog == nil {
		catalog = rules.NewCatalog()
	}
	d := &Document{
		cursor:      none,
		lastPremise: none,
		catalog:     catalog.Clone(),
		premise:     justify.NewAssumption(rules.PremiseName),
		assumption:  justify.NewAssumption(rules.AssumptionName),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the rules this document can cite, lemmas included.
func (d *Document) Catalog() *rules.Catalog { return d.catalog }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Position returns the 0-based index of the current line, or -1 before
// the first line.
func (d *Document) Position() int { return d.cursor }

// Goal returns the goal sentence, or nil when none is set.
func (d *Document) Goal() *sentence.Sentence { return d.goal }

// Premises returns the premise sentences in order.
func (d *Document) Premises() []*sentence.Sentence {
	out := make([]*sentence.Sentence, 0, d.lastPremise+1)
	for i := 0; i <= d.lastPremise; i++ {
		out = append(out, d.stmts[d.lines[i]].sentence)
	}
	return out
}

// LineView is a read-only snapshot of one proof line.
type LineView struct {
	Number int
	Text   string
	Valid  bool
	Depth  int
	Rule   string

	// Antecedents holds cited line numbers. A cited subproof is reported
	// by the number of its assumption line.
	Antecedents []int

	Premise    bool
	Assumption bool
}

// Line returns a view of the line at index.
func (d *Document) Line(index int) (LineView, error) {
	if index < 0 || index >= len(d.lines) {
		return LineView{}, ErrLineOutOfRange
	}
	return d.view(index, d.numbers()), nil
}

// Lines returns views of every line in order.
func (d *Document) Lines() []LineView {
	numbers := d.numbers()
	out := make([]LineView, 0, len(d.lines))
	for i := range d.lines {
		out = append(out, d.view(i, numbers))
	}
	return out
}

func (d *Document) view(index int, numbers map[int]int) LineView {
	id := d.lines[index]
	s := d.stmts[id]
	v := LineView{
		Number:     index + 1,
		Text:       s.sentence.String(),
		Valid:      s.sentence.IsValid(),
		Depth:      d.depth(id),
		Premise:    index <= d.lastPremise,
		Assumption: d.isAssumption(id),
	}
	if s.rule != nil {
		v.Rule = s.rule.Name()
	}
	for _, a := range s.antecedents {
		if d.stmts[a].subproof {
			a = d.stmts[a].assumption
		}
		v.Antecedents = append(v.Antecedents, numbers[a])
	}
	return v
}

// numbers maps line statement ids to 1-based line numbers.
func (d *Document) numbers() map[int]int {
	m := make(map[int]int, len(d.lines))
	for i, id := range d.lines {
		m[id] = i + 1
	}
	return m
}

// depth counts the subproofs enclosing a statement.
func (d *Document) depth(id int) int {
	n := 0
	for p := d.stmts[id].parent; p != none; p = d.stmts[p].parent {
		n++
	}
	return n
}

// isAssumption reports whether the line opens its subproof.
func (d *Document) isAssumption(id int) bool {
	p := d.stmts[id].parent
	return p != none && d.stmts[p].assumption == id
}

func (d *Document) current() (int, error) {
	if d.cursor < 0 || d.cursor >= len(d.lines) {
		return none, ErrNoCurrentLine
	}
	return d.lines[d.cursor], nil
}

func (d *Document) newStatement(s statement) int {
	if !s.subproof {
		s.assumption = none
		if s.sentence == nil {
			s.sentence = sentence.Parse("")
		}
	}
	d.stmts = append(d.stmts, s)
	return len(d.stmts) - 1
}

func (d *Document) insertLine(index, id int) {
	d.lines = append(d.lines, 0)
	copy(d.lines[index+1:], d.lines[index:])
	d.lines[index] = id
}
