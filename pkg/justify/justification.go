// Package justify implements the rules that license a proof line.
//
// A Justification is one of four kinds: the assumption marker used by
// premises and subproof openers, an equivalence rule (a set of form pairs
// that may be substituted anywhere in a sentence), an inference rule (a
// consequent form with required antecedent forms) or an aggregate that
// accepts whatever any of its member rules accepts.
//
// Justifications are immutable once they are registered in a catalog, so
// a single value can check many proofs concurrently.
package justify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapproof/pkg/sentence"
)

// =============================================================================
// Kind
// =============================================================================

// Kind identifies the variant of a Justification.
type Kind int

// Justification kinds.
const (
	// KindAssumption is accepted only without antecedents.
	KindAssumption Kind = iota
	// KindEquivalence rewrites a single antecedent into the consequent.
	KindEquivalence
	// KindInference derives the consequent from required forms.
	KindInference
	// KindAggregate accepts a line when any member rule does.
	KindAggregate
)

// String returns the name used in catalogs and listings.
func (k Kind) String() string {
	switch k {
	case KindAssumption:
		return "assumption"
	case KindEquivalence:
		return "equivalence"
	case KindInference:
		return "inference"
	case KindAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// ParseKind converts a catalog kind name to a Kind.
// Returns the kind and true if valid, or KindInference and false if invalid.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assumption":
		return KindAssumption, true
	case "equivalence":
		return KindEquivalence, true
	case "inference":
		return KindInference, true
	case "aggregate":
		return KindAggregate, true
	default:
		return KindInference, false
	}
}

// =============================================================================
// Antecedents
// =============================================================================

// Antecedent is a cited earlier statement: either a plain line or a whole
// subproof.
type Antecedent interface {
	// Sentence returns the statement of a plain line, or nil for a subproof.
	Sentence() *sentence.Sentence
	// Assumption returns the opening assumption of a subproof, or nil for a
	// plain line.
	Assumption() *sentence.Sentence
	// Lines returns the statements directly inside a subproof in proof
	// order, the assumption included and nested subproofs excluded.
	Lines() []*sentence.Sentence
}

type lineAntecedent struct{ s *sentence.Sentence }

func (a lineAntecedent) Sentence() *sentence.Sentence   { return a.s }
func (a lineAntecedent) Assumption() *sentence.Sentence { return nil }
func (a lineAntecedent) Lines() []*sentence.Sentence    { return nil }

type subproofAntecedent struct {
	assumption *sentence.Sentence
	lines      []*sentence.Sentence
}

func (a subproofAntecedent) Sentence() *sentence.Sentence   { return nil }
func (a subproofAntecedent) Assumption() *sentence.Sentence { return a.assumption }
func (a subproofAntecedent) Lines() []*sentence.Sentence    { return a.lines }

// Line wraps a sentence as a plain-line antecedent.
func Line(s *sentence.Sentence) Antecedent { return lineAntecedent{s: s} }

// Subproof builds a subproof antecedent. The assumption is prepended to
// lines, mirroring how a subproof contains its own opening line.
func Subproof(assumption *sentence.Sentence, lines ...*sentence.Sentence) Antecedent {
	all := make([]*sentence.Sentence, 0, len(lines)+1)
	all = append(all, assumption)
	all = append(all, lines...)
	return subproofAntecedent{assumption: assumption, lines: all}
}

// =============================================================================
// Justification
// =============================================================================

// Errors returned while building rules.
var (
	// ErrInvalidForm is returned when a rule form does not parse.
	ErrInvalidForm = errors.New("invalid rule form")
	// ErrWrongKind is returned when a builder method does not apply to the
	// rule's kind.
	ErrWrongKind = errors.New("operation does not apply to this rule kind")
	// ErrDegeneratePair is returned for an equivalence pair whose forms
	// are both bare variables.
	ErrDegeneratePair = errors.New("equivalence pair needs at least one compound form")
)

// Pair is one interchangeable pair of an equivalence rule.
type Pair struct {
	First  *sentence.Sentence
	Second *sentence.Sentence
}

// RequiredForm is one antecedent an inference rule needs. When Assumption
// is set the antecedent must be a subproof opened by Assumption that
// contains Line directly.
type RequiredForm struct {
	Line       *sentence.Sentence
	Assumption *sentence.Sentence
}

// IsSubproof reports whether the form must be met by a subproof.
func (f RequiredForm) IsSubproof() bool { return f.Assumption != nil }

// Justification is a named rule that can license a proof line.
type Justification struct {
	kind       Kind
	name       string
	pairs      []Pair
	consequent *sentence.Sentence
	required   []RequiredForm
	rules      []*Justification
}

// NewAssumption returns the marker justification of premises and subproof
// openers.
func NewAssumption(name string) *Justification {
	return &Justification{kind: KindAssumption, name: name}
}

// NewEquivalenceRule returns an equivalence rule with no pairs yet.
func NewEquivalenceRule(name string) *Justification {
	return &Justification{kind: KindEquivalence, name: name}
}

// NewInferenceRule returns an inference rule that concludes consequent.
func NewInferenceRule(consequent, name string) (*Justification, error) {
	form, err := parseForm(consequent)
	if err != nil {
		return nil, err
	}
	return &Justification{kind: KindInference, name: name, consequent: form}, nil
}

// NewAggregate returns an aggregate with no member rules yet.
func NewAggregate(name string) *Justification {
	return &Justification{kind: KindAggregate, name: name}
}

// Kind returns the rule variant.
func (j *Justification) Kind() Kind { return j.kind }

// Name returns the rule name.
func (j *Justification) Name() string { return j.name }

// Pairs returns the pairs of an equivalence rule.
func (j *Justification) Pairs() []Pair { return j.pairs }

// Consequent returns the conclusion form of an inference rule.
func (j *Justification) Consequent() *sentence.Sentence { return j.consequent }

// RequiredForms returns the antecedent forms of an inference rule.
func (j *Justification) RequiredForms() []RequiredForm { return j.required }

// Rules returns the members of an aggregate.
func (j *Justification) Rules() []*Justification { return j.rules }

// AddEquivalentPair adds an interchangeable pair of forms.
func (j *Justification) AddEquivalentPair(first, second string) error {
	if j.kind != KindEquivalence {
		return fmt.Errorf("%w: add pair to %s rule %q", ErrWrongKind, j.kind, j.name)
	}
	f1, err := parseForm(first)
	if err != nil {
		return err
	}
	f2, err := parseForm(second)
	if err != nil {
		return err
	}
	if f1.Kind() == sentence.Atom && f2.Kind() == sentence.Atom {
		return fmt.Errorf("%w: %s and %s", ErrDegeneratePair, f1, f2)
	}
	j.pairs = append(j.pairs, Pair{First: f1, Second: f2})
	return nil
}

// AddRequiredForm adds a plain-line antecedent form.
func (j *Justification) AddRequiredForm(form string) error {
	if j.kind != KindInference {
		return fmt.Errorf("%w: add form to %s rule %q", ErrWrongKind, j.kind, j.name)
	}
	f, err := parseForm(form)
	if err != nil {
		return err
	}
	j.required = append(j.required, RequiredForm{Line: f})
	return nil
}

// AddRequiredSubproof adds a subproof antecedent form: a subproof opened
// by assumption that contains line.
func (j *Justification) AddRequiredSubproof(assumption, line string) error {
	if j.kind != KindInference {
		return fmt.Errorf("%w: add subproof to %s rule %q", ErrWrongKind, j.kind, j.name)
	}
	a, err := parseForm(assumption)
	if err != nil {
		return err
	}
	l, err := parseForm(line)
	if err != nil {
		return err
	}
	j.required = append(j.required, RequiredForm{Line: l, Assumption: a})
	return nil
}

// AddRule appends a member to an aggregate. Nil rules are ignored.
func (j *Justification) AddRule(rule *Justification) error {
	if j.kind != KindAggregate {
		return fmt.Errorf("%w: add member to %s rule %q", ErrWrongKind, j.kind, j.name)
	}
	if rule != nil {
		j.rules = append(j.rules, rule)
	}
	return nil
}

// IsJustified reports whether the rule licenses consequent from the cited
// antecedents.
func (j *Justification) IsJustified(consequent *sentence.Sentence, antecedents []Antecedent) bool {
	if consequent == nil {
		return false
	}
	switch j.kind {
	case KindAssumption:
		return len(antecedents) == 0
	case KindEquivalence:
		if len(antecedents) != 1 || antecedents[0] == nil || antecedents[0].Sentence() == nil {
			return false
		}
		return j.AreEquivalent(antecedents[0].Sentence(), consequent)
	case KindInference:
		return j.inferenceJustified(consequent, antecedents)
	case KindAggregate:
		for _, r := range j.rules {
			if r.IsJustified(consequent, antecedents) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Describe renders the rule's forms for listings, one entry per pair,
// inference or member.
func (j *Justification) Describe() []string {
	switch j.kind {
	case KindAssumption:
		return []string{"no antecedents"}
	case KindEquivalence:
		out := make([]string, 0, len(j.pairs))
		for _, p := range j.pairs {
			out = append(out, p.First.String()+" == "+p.Second.String())
		}
		return out
	case KindInference:
		forms := make([]string, 0, len(j.required))
		for _, f := range j.required {
			if f.IsSubproof() {
				forms = append(forms, "["+f.Assumption.String()+" ... "+f.Line.String()+"]")
				continue
			}
			forms = append(forms, f.Line.String())
		}
		return []string{strings.Join(forms, ", ") + " |- " + j.consequent.String()}
	case KindAggregate:
		var out []string
		for _, r := range j.rules {
			out = append(out, r.Describe()...)
		}
		return out
	default:
		return nil
	}
}

// Validate reports rules that can never justify anything.
func (j *Justification) Validate() error {
	switch j.kind {
	case KindEquivalence:
		if len(j.pairs) == 0 {
			return fmt.Errorf("equivalence rule %q has no pairs", j.name)
		}
	case KindInference:
		if j.consequent == nil {
			return fmt.Errorf("inference rule %q has no consequent", j.name)
		}
	case KindAggregate:
		if len(j.rules) == 0 {
			return fmt.Errorf("aggregate rule %q has no members", j.name)
		}
	}
	return nil
}

func parseForm(text string) (*sentence.Sentence, error) {
	s, err := sentence.ParseValid(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return s, nil
}
