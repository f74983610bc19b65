package proof

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/pkg/justify"
)

// AddEquivalenceRule registers an equivalence rule with the single pair
// first == second in this document's catalog.
func (d *Document) AddEquivalenceRule(name, first, second string) error {
	if _, ok := d.catalog.Lookup(name); ok {
		return fmt.Errorf("%w: %q", ErrRuleExists, name)
	}
	rule := justify.NewEquivalenceRule(name)
	if err := rule.AddEquivalentPair(first, second); err != nil {
		return fmt.Errorf("lemma %q: %w", name, err)
	}
	if err := d.catalog.Register(rule); err != nil {
		return fmt.Errorf("lemma %q: %w", name, err)
	}
	d.logger.Debug("added equivalence lemma", "name", name, "first", first, "second", second)
	return nil
}

// AddInferenceRule registers an inference rule concluding goal from the
// given premises in this document's catalog.
func (d *Document) AddInferenceRule(name string, premises []string, goal string) error {
	if _, ok := d.catalog.Lookup(name); ok {
		return fmt.Errorf("%w: %q", ErrRuleExists, name)
	}
	rule, err := justify.NewInferenceRule(goal, name)
	if err != nil {
		return fmt.Errorf("lemma %q: %w", name, err)
	}
	for _, p := range premises {
		if err := rule.AddRequiredForm(p); err != nil {
			return fmt.Errorf("lemma %q: %w", name, err)
		}
	}
	if err := d.catalog.Register(rule); err != nil {
		return fmt.Errorf("lemma %q: %w", name, err)
	}
	d.logger.Debug("added inference lemma", "name", name, "premises", len(premises), "goal", goal)
	return nil
}

// AddEquivalenceLemma promotes a pair of proofs to an equivalence rule.
// Each proof must verify and have one premise and a goal, and the premise
// of each must be the goal of the other.
func (d *Document) AddEquivalenceLemma(name string, first, second *Document) error {
	if _, ok := d.catalog.Lookup(name); ok {
		return fmt.Errorf("%w: %q", ErrRuleExists, name)
	}
	for i, doc := range []*Document{first, second} {
		if err := doc.provenWithGoal(); err != nil {
			return fmt.Errorf("lemma %q direction %d: %w", name, i+1, err)
		}
		if len(doc.Premises()) != 1 {
			return fmt.Errorf("%w: lemma %q direction %d needs exactly one premise", ErrLemmaShape, name, i+1)
		}
	}

	p1, p2 := first.Premises()[0], second.Premises()[0]
	if !p1.Equals(second.goal) || !p2.Equals(first.goal) {
		return fmt.Errorf("%w: lemma %q directions are not converse", ErrLemmaShape, name)
	}
	return d.AddEquivalenceRule(name, first.goal.String(), second.goal.String())
}

// AddInferenceLemma promotes a proof to an inference rule whose required
// forms are its premises and whose consequent is its goal.
func (d *Document) AddInferenceLemma(name string, lemma *Document) error {
	if _, ok := d.catalog.Lookup(name); ok {
		return fmt.Errorf("%w: %q", ErrRuleExists, name)
	}
	if err := lemma.provenWithGoal(); err != nil {
		return fmt.Errorf("lemma %q: %w", name, err)
	}

	premises := make([]string, 0, lemma.lastPremise+1)
	for _, p := range lemma.Premises() {
		premises = append(premises, p.String())
	}
	return d.AddInferenceRule(name, premises, lemma.goal.String())
}

func (d *Document) provenWithGoal() error {
	if d == nil {
		return fmt.Errorf("%w: no proof", ErrLemmaShape)
	}
	if d.goal == nil {
		return fmt.Errorf("%w: no goal", ErrLemmaShape)
	}
	if report := d.Verify(); !report.OK() {
		return fmt.Errorf("%w: %d failed lines, goal %s", ErrLemmaUnproven, report.FailedCount(), report.Goal)
	}
	return nil
}
