// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kelvin CLI: explore papers as a
// sequence of cards by running actions against the current card.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kelvin/internal/logging"
	"github.com/pdiddy/kelvin/internal/secrets"
	"github.com/pdiddy/kelvin/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "kelvin/0.1"
	defaultWorkspace = ".kelvin"
)

var (
	// cfg is the resolved configuration, filled in before every command.
	cfg types.Config

	// logger is the CLI logger built from cfg.LogLevel.
	logger *slog.Logger

	// loadedSecrets holds credentials read from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the kelvin CLI.
var rootCmd = &cobra.Command{
	Use:   "kelvin",
	Short: "Explore papers as a sequence of cards",
	Long: `kelvin keeps a workspace of cards: typed tables such as notes or paper
search results. Each step picks one of the actions offered for the current
card and its marked rows, and the action's result becomes the new card.

Start with "kelvin init", add a note, mark it, and run the search offered
for it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", s.Keys())
		}
		cfg.Search.APIKey = loadedSecrets.Or(secrets.VespaAPIKey, cfg.Search.APIKey)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./kelvin.yaml or ~/.config/kelvin/kelvin.yaml)")
	flags.String("workspace", defaultWorkspace, "workspace directory holding the card history")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("backend", "vespa", "search backend: vespa or openalex")
	flags.String("endpoint", "", "search endpoint (default: the backend's public URL)")
	flags.String("fixture", "", "answer searches from a saved result document (JSON or YAML)")

	viper.BindPFlag("workspace.dir", flags.Lookup("workspace"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("search.backend", flags.Lookup("backend"))
	viper.BindPFlag("search.endpoint", flags.Lookup("endpoint"))
	viper.BindPFlag("search.fixture_file", flags.Lookup("fixture"))

	viper.SetDefault("search.timeout", defaultTimeout)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.max_retries", 5)
	viper.SetDefault("search.api_key", "")
	viper.SetDefault("search.email", "")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kelvin")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kelvin"))
		}
	}

	viper.SetEnvPrefix("KELVIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
