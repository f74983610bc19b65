package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapproof/internal/catalog"
	"github.com/leapstack-labs/leapproof/pkg/justify"
	"github.com/leapstack-labs/leapproof/pkg/rules"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Kind   string // Filter by kind: equivalence, inference, aggregate
	Export bool   // Write the catalog as YAML
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [name]",
		Short: "List the rules a proof can cite",
		Long: `List the rules a proof can cite, with the forms each one accepts.

The catalog is the built-in natural-deduction set plus any rules loaded
with --rules. Use --export to write the catalog in the YAML format that
--rules reads back.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  leapproof rules

  # Show one rule
  leapproof rules "Modus Ponens"

  # List equivalence rules only
  leapproof rules --kind equivalence

  # Start a custom catalog from the built-in one
  leapproof rules --export > rules.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Filter by kind: equivalence, inference, aggregate")
	cmd.Flags().BoolVar(&opts.Export, "export", false, "Write the catalog as YAML")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	c, err := filterRules(cc.Catalog, opts.Kind)
	if err != nil {
		return err
	}
	if opts.Export {
		return catalog.Write(cmd.OutOrStdout(), c)
	}
	return cc.Renderer.Rules(c)
}

func showRule(cmd *cobra.Command, name string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	rule, ok := cc.Catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown rule %q\nHint: run 'leapproof rules' to list the available rules", name)
	}
	return cc.Renderer.Rule(rule)
}

// filterRules returns the rules of c with the given kind, or c itself when
// kind is empty.
func filterRules(c *rules.Catalog, kind string) (*rules.Catalog, error) {
	if kind == "" {
		return c, nil
	}
	k, ok := justify.ParseKind(kind)
	if !ok || k == justify.KindAssumption {
		return nil, fmt.Errorf("unknown rule kind %q (want equivalence, inference or aggregate)", strings.TrimSpace(kind))
	}

	out := rules.NewCatalog()
	for _, rule := range c.All() {
		if rule.Kind() != k {
			continue
		}
		if err := out.Register(rule); err != nil {
			return nil, err
		}
	}
	return out, nil
}
