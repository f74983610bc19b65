package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <sentence...>",
		Short: "Show how sentences are read",
		Long: `Parse each argument as a sentence and show its fully parenthesized form,
its main connective and whether it is well formed.

Connectives, weakest first: = (iff), > (implies), | or + (or),
& ^ or * (and). ! or ~ negates. Operators of equal strength group to the
left, so a>b>c reads as ((a>b)>c).`,
		Example: `  leapproof parse 'p>q&r' '!(a|b)'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutCatalog(cmd)

			items := make([]render.Parsed, 0, len(args))
			invalid := 0
			for _, arg := range args {
				p := render.NewParsed(arg)
				if !p.Valid {
					invalid++
				}
				items = append(items, p)
			}
			if err := cc.Renderer.Sentences(items); err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d sentences are not well formed", invalid, len(args))
			}
			return nil
		},
	}
}
