package commands

import (
	"bytes"
	"testing"

	"github.com/leapstack-labs/leapproof/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

// executeCommand runs cmd with args and returns what it wrote to stdout
// and stderr. Configuration falls back to LEAPPROOF_ environment variables.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewCheckCommand(), use: "check <file...>", flags: []string{"watch", "record", "debounce"}},
		{cmd: NewPrintCommand(), use: "print <file>", flags: []string{"script"}},
		{cmd: NewParseCommand(), use: "parse <sentence...>"},
		{cmd: NewRulesCommand(), use: "rules [name]", flags: []string{"kind", "export"}},
		{cmd: NewREPLCommand(), use: "repl [file]"},
		{cmd: NewHistoryCommand(), use: "history", flags: []string{"limit"}},
		{cmd: NewServeCommand(), use: "serve", flags: []string{"addr", "record"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}
