package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/pkg/justify"
)

// UnnamedRule is the name given to aggregate members declared without one.
const UnnamedRule = "Unnamed Rule"

// Definition is the declarative form of a rule. Built-in rules and rule
// catalog files are both expressed as definitions.
type Definition struct {
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	Kind        string       `yaml:"kind" json:"kind"`
	Pairs       [][2]string  `yaml:"pairs,omitempty" json:"pairs,omitempty"`
	Consequent  string       `yaml:"consequent,omitempty" json:"consequent,omitempty"`
	Antecedents []Form       `yaml:"antecedents,omitempty" json:"antecedents,omitempty"`
	Rules       []Definition `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Form is one required antecedent of an inference definition. Subproof,
// when set, is the assumption form of a required subproof and Form is the
// line it must contain.
type Form struct {
	Form     string `yaml:"form" json:"form"`
	Subproof string `yaml:"subproof,omitempty" json:"subproof,omitempty"`
}

// Build turns a definition into a justification.
func (d Definition) Build() (*justify.Justification, error) {
	kind, ok := justify.ParseKind(d.Kind)
	if !ok {
		return nil, fmt.Errorf("rule %q: unknown kind %q", d.Name, d.Kind)
	}

	var rule *justify.Justification
	switch kind {
	case justify.KindAssumption:
		return nil, fmt.Errorf("rule %q: assumption rules cannot be declared", d.Name)

	case justify.KindEquivalence:
		rule = justify.NewEquivalenceRule(d.Name)
		for i, pair := range d.Pairs {
			if err := rule.AddEquivalentPair(pair[0], pair[1]); err != nil {
				return nil, fmt.Errorf("rule %q pair %d: %w", d.Name, i+1, err)
			}
		}

	case justify.KindInference:
		if d.Consequent == "" {
			return nil, fmt.Errorf("inference rule %q has no consequent", d.Name)
		}
		var err error
		rule, err = justify.NewInferenceRule(d.Consequent, d.Name)
		if err != nil {
			return nil, fmt.Errorf("rule %q consequent: %w", d.Name, err)
		}
		for i, f := range d.Antecedents {
			if f.Subproof != "" {
				err = rule.AddRequiredSubproof(f.Subproof, f.Form)
			} else {
				err = rule.AddRequiredForm(f.Form)
			}
			if err != nil {
				return nil, fmt.Errorf("rule %q antecedent %d: %w", d.Name, i+1, err)
			}
		}

	case justify.KindAggregate:
		rule = justify.NewAggregate(d.Name)
		for _, member := range d.Rules {
			if member.Name == "" {
				member.Name = UnnamedRule
			}
			sub, err := member.Build()
			if err != nil {
				return nil, fmt.Errorf("aggregate %q: %w", d.Name, err)
			}
			if err := rule.AddRule(sub); err != nil {
				return nil, err
			}
		}
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// Define converts a justification back into its declarative form.
func Define(rule *justify.Justification) Definition {
	d := Definition{Name: rule.Name(), Kind: rule.Kind().String()}
	switch rule.Kind() {
	case justify.KindEquivalence:
		for _, p := range rule.Pairs() {
			d.Pairs = append(d.Pairs, [2]string{p.First.String(), p.Second.String()})
		}
	case justify.KindInference:
		d.Consequent = rule.Consequent().String()
		for _, f := range rule.RequiredForms() {
			form := Form{Form: f.Line.String()}
			if f.IsSubproof() {
				form.Subproof = f.Assumption.String()
			}
			d.Antecedents = append(d.Antecedents, form)
		}
	case justify.KindAggregate:
		for _, member := range rule.Rules() {
			d.Rules = append(d.Rules, Define(member))
		}
	}
	return d
}

// BuildAll builds each definition and registers it in a new catalog.
func BuildAll(defs []Definition) (*Catalog, error) {
	c := NewCatalog()
	for i, d := range defs {
		rule, err := d.Build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if err := c.Register(rule); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return c, nil
}
