// Package cmd wires the genesis subcommands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"genesis/internal/config"
	"genesis/internal/engine"
	"genesis/internal/llm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Adaptive synthesis engine for context-aware code generation",
	Long: `Genesis learns the style and architecture of an existing codebase and
generates new code that fits in.

Typical workflow:
  genesis assimilate -r ./myrepo     Build the style fingerprint and search index
  genesis generate "add a caching layer"
  genesis guide                      Print the inferred style guide
  genesis analyze                    Complexity and structure metrics
  genesis scan                       Security pattern scan`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to configuration file")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

// newEngine builds an Engine without an llm client, for commands that
// never call the model.
func newEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, nil, os.Stdout, os.Stderr), nil
}

// newGeneratingEngine builds an Engine with the configured llm client.
func newGeneratingEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, client, os.Stdout, os.Stderr), nil
}
