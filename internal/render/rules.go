package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapproof/pkg/justify"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// Rule is the JSON shape of a catalog rule.
type Rule struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Forms []string `json:"forms"`
}

// RulesOutput is the JSON shape of a catalog listing.
type RulesOutput struct {
	Rules []Rule         `json:"rules"`
	Count map[string]int `json:"count"`
}

// kindOrder is the order sections appear in listings.
var kindOrder = []justify.Kind{justify.KindEquivalence, justify.KindInference, justify.KindAggregate}

// NewRulesOutput describes every rule in c, sorted by name.
func NewRulesOutput(c *rules.Catalog) RulesOutput {
	out := RulesOutput{Count: map[string]int{"total": c.Len()}}
	for _, name := range c.Names() {
		rule, _ := c.Lookup(name)
		out.Rules = append(out.Rules, describe(rule))
		out.Count[rule.Kind().String()]++
	}
	return out
}

func describe(rule *justify.Justification) Rule {
	return Rule{Name: rule.Name(), Kind: rule.Kind().String(), Forms: rule.Describe()}
}

// Rules lists the rules of c grouped by kind.
func (r *Renderer) Rules(c *rules.Catalog) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		return r.JSON(NewRulesOutput(c))
	}

	s := r.styles
	if mode == ModeMarkdown {
		r.Println(FormatHeader(1, "Rules"))
	} else {
		r.Println(s.Header1.Render(fmt.Sprintf("Rules (%d)", c.Len())))
	}

	for _, kind := range kindOrder {
		t := r.newTable(table.Row{"Name", "Forms"})
		n := 0
		for _, name := range c.Names() {
			rule, _ := c.Lookup(name)
			if rule.Kind() != kind {
				continue
			}
			t.AppendRow(table.Row{rule.Name(), strings.Join(rule.Describe(), formSeparator(mode))})
			n++
		}
		if n == 0 {
			continue
		}

		heading := Title(kind.String() + " rules")
		r.Println("")
		if mode == ModeMarkdown {
			r.Println(FormatHeader(2, heading))
			r.Println("")
			t.RenderMarkdown()
		} else {
			r.Println(s.Header2.Render(heading))
			t.Render()
		}
	}
	return nil
}

// Rule prints one rule with each of its forms.
func (r *Renderer) Rule(rule *justify.Justification) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(describe(rule))
	case ModeMarkdown:
		r.Println(FormatHeader(1, rule.Name()))
		r.Println("")
		r.Printf("**Kind:** %s\n\n", rule.Kind())
		for _, form := range rule.Describe() {
			r.Printf("- `%s`\n", form)
		}
	default:
		s := r.styles
		r.Println(s.Header1.Render(rule.Name()) + " " + s.Muted.Render(rule.Kind().String()))
		for _, form := range rule.Describe() {
			r.Println("  " + form)
		}
	}
	return nil
}

func formSeparator(mode Mode) string {
	if mode == ModeMarkdown {
		return "<br>"
	}
	return "\n"
}

func (r *Renderer) newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}
