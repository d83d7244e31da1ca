package main

import (
	"fmt"
	"os"

	"FxPulse/pkg/config"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command for the FxPulse CLI
var rootCmd = &cobra.Command{
	Use:   "fxpulse",
	Short: "FxPulse forex displacement signal engine",
	Long: `FxPulse scores currency pairs on daily displacement, sovereign yield
divergence and volatility regime, and picks the highest-conviction pair
for the next session.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

// loadConfig loads the config file; logs go to stderr when stdout carries
// command output.
func loadConfig(logToStderr bool) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if logToStderr && (cfg.Log.Output == "" || cfg.Log.Output == "stdout") {
		cfg.Log.Output = "stderr"
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
