package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapproof/internal/cli/config"
	"github.com/leapstack-labs/leapproof/internal/cli/testutil"
	"github.com/leapstack-labs/leapproof/internal/render"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "print", "parse", "rules", "repl", "history", "serve", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
	for _, flag := range []string{"config", "rules", "no-builtin", "state", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
}

func TestRootCommand_ConfigFile(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{
		"proofs/cp.prf":  testutil.ConditionalProof,
		"leapproof.yaml": "output: json\n",
	})
	t.Chdir(filepath.Join(dir, "proofs"))

	out, _, err := execute(t, "check", "cp.prf")
	require.NoError(t, err)

	var results []render.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, filepath.Join(dir, "leapproof.yaml"), config.GetConfigFileUsed())
}

func TestRootCommand_FlagOverridesConfig(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{
		"cp.prf":    testutil.ConditionalProof,
		"conf.yaml": "output: json\n",
	})

	out, _, err := execute(t, "--config", filepath.Join(dir, "conf.yaml"), "-o", "markdown", "check", filepath.Join(dir, "cp.prf"))
	require.NoError(t, err)
	assert.Contains(t, out, "All lines check out")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad output", args: []string{"-o", "yaml", "parse", "p"}, want: "invalid output"},
		{name: "bad rules file", args: []string{"--rules", "rules.toml", "rules"}, want: "unsupported catalog format"},
		{name: "no rules", args: []string{"--no-builtin", "rules"}, want: "no rules to cite"},
		{name: "missing rules file", args: []string{"--rules", "missing.yaml", "rules"}, want: "failed to read file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootCommand_VerboseLogs(t *testing.T) {
	dir := testutil.SetupTestProofs(t, map[string]string{"cp.prf": testutil.ConditionalProof})
	t.Chdir(dir)

	_, errOut, err := execute(t, "-v", "check", "cp.prf")
	require.NoError(t, err)
	assert.Contains(t, errOut, "level=DEBUG")
	assert.Contains(t, errOut, "resolved rule catalog")
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "leapproof")
		})
	}

	_, _, err := execute(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig(t.Context())
	assert.True(t, cfg.BuiltinRules)
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.NotNil(t, GetRenderer(t.Context()))
}
