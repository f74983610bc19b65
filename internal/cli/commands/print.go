package commands

import (
	"github.com/leapstack-labs/leapproof/internal/script"
	"github.com/spf13/cobra"
)

// NewPrintCommand creates the print command.
func NewPrintCommand() *cobra.Command {
	var asScript bool
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print a proof with its structure",
		Long: `Print the lines of a proof script, numbered, with bars marking subproof
depth and the rule and cited lines of each derived line.

With --script the proof is written back as a normalized script, with
every sentence fully parenthesized and citations renumbered.`,
		Example: `  # Show a proof
  leapproof print proofs/modus.prf

  # Normalize a script
  leapproof print --script proofs/modus.prf > modus.prf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			res, err := script.NewReader(cc.Catalog, script.WithLogger(cc.Logger)).ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				cc.Renderer.Warn(w.Error())
			}

			if asScript {
				return script.Write(cmd.OutOrStdout(), res.Doc)
			}
			return cc.Renderer.Proof(args[0], res.Doc)
		},
	}

	cmd.Flags().BoolVar(&asScript, "script", false, "Write the proof as a normalized script")

	return cmd
}
