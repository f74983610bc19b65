package commands

import (
	"fmt"
	"runtime"

	"github.com/leapstack-labs/leapproof/pkg/rules"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Print the leapproof version, the build it came from, and the size of the built-in rule set.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "leapproof v%s (%s, built %s)\n", info.Version, info.Commit, info.Date)
			_, _ = fmt.Fprintf(out, "%d built-in rules, %s %s/%s\n",
				rules.Builtin().Len(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
