// cmd/dbtools/clubctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/Sideline/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "clubctl",
	Short: "Database and account maintenance for Sideline",
	Long: `clubctl runs schema migrations against the configured database and
bootstraps the first super admin account.`,
	SilenceUsage: true,
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "Path to the YAML configuration file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	return cfg, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "clubctl: %v\n", err)
		os.Exit(1)
	}
}
