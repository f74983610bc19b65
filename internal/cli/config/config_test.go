package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapproof.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rules", "", "")
	flags.Bool("no-builtin", false, "")
	flags.StringP("output", "o", "", "")
	flags.String("state", "", "")
	flags.Bool("record", false, "")
	flags.String("addr", "", "")
	flags.Duration("debounce", 0, "")
	flags.Bool("watch", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Empty(t, GetConfigFileUsed())
	assert.True(t, cfg.BuiltinRules)
	assert.Empty(t, cfg.RulesFile)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, filepath.Join(wd, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultServeAddr, cfg.GetServeConfig().Addr)
	assert.Equal(t, DefaultDebounce, cfg.GetWatchConfig().Debounce)
	assert.Same(t, cfg, GetCurrentConfig())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `rules_file: rules/extra.yaml
builtin_rules: false
output: json
state_path: /var/lib/leapproof/history.db
record: true
serve:
  addr: 127.0.0.1:9000
watch:
  debounce: 1s
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "rules", "extra.yaml"), cfg.RulesFile)
	assert.False(t, cfg.BuiltinRules)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "/var/lib/leapproof/history.db", cfg.StatePath)
	assert.True(t, cfg.Record)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServeConfig().Addr)
	assert.Equal(t, time.Second, cfg.GetWatchConfig().Debounce)
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "output: markdown\n")
	nested := filepath.Join(root, "proofs", "chapter1")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, "leapproof.yaml", filepath.Base(GetConfigFileUsed()))
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		flag    string
		want    string
		setFlag bool
	}{
		{name: "file only", want: "text"},
		{name: "env over file", env: "json", want: "json"},
		{name: "flag over env", env: "json", flag: "markdown", setFlag: true, want: "markdown"},
		{name: "unset flag falls back to env", env: "json", want: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			cfgPath := writeConfig(t, t.TempDir(), "output: text\n")
			if tt.env != "" {
				t.Setenv("LEAPPROOF_OUTPUT", tt.env)
			}
			flags := testFlags()
			if tt.setFlag {
				require.NoError(t, flags.Set("output", tt.flag))
			}

			cfg, err := LoadConfig(cfgPath, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.OutputFormat)
		})
	}
}

func TestLoadConfig_NestedEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, t.TempDir(), "record: false\n")
	t.Setenv("LEAPPROOF_SERVE__ADDR", ":9999")
	t.Setenv("LEAPPROOF_RECORD", "true")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.GetServeConfig().Addr)
	assert.True(t, cfg.Record)
}

func TestLoadConfig_MappedFlags(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "state_path: from_file.db\n")
	work := t.TempDir()
	t.Chdir(work)

	flags := testFlags()
	require.NoError(t, flags.Set("state", "flag.db"))
	require.NoError(t, flags.Set("rules", "extra.star"))
	require.NoError(t, flags.Set("no-builtin", "true"))
	require.NoError(t, flags.Set("addr", ":7000"))
	require.NoError(t, flags.Set("debounce", "50ms"))
	require.NoError(t, flags.Set("watch", "true"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	// flag paths are relative to the working directory, not the project root
	assert.Equal(t, filepath.Join(wd, "flag.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(wd, "extra.star"), cfg.RulesFile)
	assert.False(t, cfg.BuiltinRules)
	assert.Equal(t, ":7000", cfg.GetServeConfig().Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.GetWatchConfig().Debounce)
}

func TestLoadConfig_MemoryState(t *testing.T) {
	ResetConfig()
	flags := testFlags()
	require.NoError(t, flags.Set("state", ":memory:"))

	cfg, err := LoadConfig(writeConfig(t, t.TempDir(), ""), flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{name: "defaults", cfg: Config{BuiltinRules: true, OutputFormat: "auto"}},
		{name: "yaml rules", cfg: Config{BuiltinRules: true, RulesFile: "extra.yml"}},
		{name: "starlark rules only", cfg: Config{RulesFile: "rules.star", OutputFormat: "json"}},
		{name: "bad output", cfg: Config{BuiltinRules: true, OutputFormat: "html"}, errSubstr: "invalid output"},
		{name: "bad rules extension", cfg: Config{BuiltinRules: true, RulesFile: "rules.toml"}, errSubstr: "unsupported catalog format"},
		{name: "no rules at all", cfg: Config{OutputFormat: "text"}, errSubstr: "no rules to cite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), -8))
}
