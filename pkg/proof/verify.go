package proof

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/pkg/justify"
	"github.com/leapstack-labs/leapproof/pkg/sentence"
)

// =============================================================================
// Failure
// =============================================================================

// Failure classifies why a line did not check out.
type Failure int

// Line failures.
const (
	// NoFailure means the line is justified.
	NoFailure Failure = iota
	// InvalidStatement means the sentence is malformed.
	InvalidStatement
	// NoJustification means no rule is attached.
	NoJustification
	// JustificationFailure means the attached rule does not license the
	// line from its antecedents.
	JustificationFailure
)

// String returns a short human-readable description.
func (f Failure) String() string {
	switch f {
	case NoFailure:
		return "ok"
	case InvalidStatement:
		return "invalid statement"
	case NoJustification:
		return "no justification"
	case JustificationFailure:
		return "justification failure"
	default:
		return "unknown"
	}
}

// MarshalText encodes the failure as its description.
func (f Failure) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText decodes a description written by MarshalText.
func (f *Failure) UnmarshalText(text []byte) error {
	for c := NoFailure; c <= JustificationFailure; c++ {
		if c.String() == string(text) {
			*f = c
			return nil
		}
	}
	return fmt.Errorf("unknown failure %q", text)
}

// =============================================================================
// GoalStatus
// =============================================================================

// GoalStatus reports whether the proof reached its goal.
type GoalStatus int

// Goal statuses.
const (
	// GoalUnset means the document has no goal.
	GoalUnset GoalStatus = iota
	// GoalMet means a top-level derived line equals the goal.
	GoalMet
	// GoalMissing means no top-level derived line equals the goal.
	GoalMissing
)

// String returns a short human-readable description.
func (g GoalStatus) String() string {
	switch g {
	case GoalUnset:
		return "unset"
	case GoalMet:
		return "met"
	case GoalMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its description.
func (g GoalStatus) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText decodes a description written by MarshalText.
func (g *GoalStatus) UnmarshalText(text []byte) error {
	for c := GoalUnset; c <= GoalMissing; c++ {
		if c.String() == string(text) {
			*g = c
			return nil
		}
	}
	return fmt.Errorf("unknown goal status %q", text)
}

// =============================================================================
// Report
// =============================================================================

// LineResult is the outcome of checking one line.
type LineResult struct {
	Number  int     `json:"line"`
	Failure Failure `json:"failure"`
}

// Report is the outcome of verifying a whole document.
type Report struct {
	Lines []LineResult `json:"lines"`
	Goal  GoalStatus   `json:"goal"`
}

// OK reports whether every line is justified and any goal is met.
func (r Report) OK() bool {
	return r.FailedCount() == 0 && r.Goal != GoalMissing
}

// Failed returns the results of lines that did not check out.
func (r Report) Failed() []LineResult {
	var out []LineResult
	for _, l := range r.Lines {
		if l.Failure != NoFailure {
			out = append(out, l)
		}
	}
	return out
}

// FailedCount returns the number of lines that did not check out.
func (r Report) FailedCount() int {
	n := 0
	for _, l := range r.Lines {
		if l.Failure != NoFailure {
			n++
		}
	}
	return n
}

// Verify checks every line and the goal. A failing line does not stop the
// remaining lines from being checked.
func (d *Document) Verify() Report {
	report := Report{Lines: make([]LineResult, 0, len(d.lines))}
	for i, id := range d.lines {
		f := d.check(id)
		report.Lines = append(report.Lines, LineResult{Number: i + 1, Failure: f})
	}
	report.Goal = d.goalStatus()

	d.logger.Debug("verified proof",
		"lines", len(d.lines),
		"failed", report.FailedCount(),
		"goal", report.Goal.String())
	return report
}

// Check classifies the line at index.
func (d *Document) Check(index int) (Failure, error) {
	if index < 0 || index >= len(d.lines) {
		return NoFailure, ErrLineOutOfRange
	}
	return d.check(d.lines[index]), nil
}

func (d *Document) check(id int) Failure {
	s := d.stmts[id]
	if !s.sentence.IsValid() {
		return InvalidStatement
	}
	if s.rule == nil {
		return NoJustification
	}

	ants := make([]justify.Antecedent, 0, len(s.antecedents))
	for _, a := range s.antecedents {
		if d.stmts[a].subproof {
			if !d.subproofJustified(a) {
				return JustificationFailure
			}
			ants = append(ants, subproofAntecedent{d: d, id: a})
			continue
		}
		ants = append(ants, justify.Line(d.stmts[a].sentence))
	}
	if !s.rule.IsJustified(s.sentence, ants) {
		return JustificationFailure
	}
	return NoFailure
}

// subproofJustified reports whether a subproof node stands: its contents
// are checked line by line, so only the assumption must be well formed.
func (d *Document) subproofJustified(sp int) bool {
	return d.stmts[d.stmts[sp].assumption].sentence.IsValid()
}

func (d *Document) goalStatus() GoalStatus {
	if d.goal == nil {
		return GoalUnset
	}
	for i, id := range d.lines {
		if i <= d.lastPremise || d.stmts[id].parent != none {
			continue
		}
		if d.stmts[id].sentence.Equals(d.goal) {
			return GoalMet
		}
	}
	return GoalMissing
}

// subproofAntecedent presents a subproof node to the rule engine.
type subproofAntecedent struct {
	d  *Document
	id int
}

func (a subproofAntecedent) Sentence() *sentence.Sentence { return nil }

func (a subproofAntecedent) Assumption() *sentence.Sentence {
	return a.d.stmts[a.d.stmts[a.id].assumption].sentence
}

func (a subproofAntecedent) Lines() []*sentence.Sentence {
	var out []*sentence.Sentence
	for _, lid := range a.d.lines {
		if a.d.stmts[lid].parent == a.id {
			out = append(out, a.d.stmts[lid].sentence)
		}
	}
	return out
}
