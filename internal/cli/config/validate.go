package config

import (
	"fmt"

	"github.com/leapstack-labs/leapproof/internal/catalog"
	"github.com/leapstack-labs/leapproof/internal/render"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := render.ParseMode(c.OutputFormat); err != nil {
		return fmt.Errorf("invalid output: %w", err)
	}
	if c.RulesFile != "" && !catalog.Supported(c.RulesFile) {
		return fmt.Errorf("rules_file %s: %w\nHint: use a .yaml, .yml or .star file", c.RulesFile, catalog.ErrUnsupportedFormat)
	}
	if !c.BuiltinRules && c.RulesFile == "" {
		return fmt.Errorf("builtin_rules is off and no rules_file is set: no rules to cite")
	}
	return nil
}
