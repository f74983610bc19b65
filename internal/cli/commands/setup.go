package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapproof/internal/catalog"
	"github.com/leapstack-labs/leapproof/internal/cli/config"
	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/leapstack-labs/leapproof/internal/render"
	"github.com/leapstack-labs/leapproof/pkg/rules"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *render.Renderer
	Catalog  *rules.Catalog
}

// NewCommandContext creates a CommandContext with the rule catalog the
// configuration selects.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutCatalog(cmd)

	c, err := catalog.Resolve(cc.Cfg.BuiltinRules, cc.Cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	cc.Catalog = c
	cc.Logger.Debug("resolved rule catalog", "rules", c.Len(), "builtin", cc.Cfg.BuiltinRules, "file", cc.Cfg.RulesFile)
	return cc, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext without loading
// rules. Useful for commands that never check a proof.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode, _ := render.ParseMode(cfg.OutputFormat)
	r := render.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenHistory opens and migrates the history database.
// The caller must close the returned store.
func (cc *CommandContext) OpenHistory() (*history.Store, error) {
	store, err := history.Open(cc.Cfg.StatePath, history.WithLogger(cc.Logger))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		RulesFile:    os.Getenv("LEAPPROOF_RULES_FILE"),
		BuiltinRules: os.Getenv("LEAPPROOF_BUILTIN_RULES") != "false",
		OutputFormat: os.Getenv("LEAPPROOF_OUTPUT"),
		Verbose:      os.Getenv("LEAPPROOF_VERBOSE") == "true",
		StatePath:    getEnvOrDefault("LEAPPROOF_STATE_PATH", config.DefaultStateFile),
		Record:       os.Getenv("LEAPPROOF_RECORD") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
