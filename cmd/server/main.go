// cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/i18n"
)

var Version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "uni402",
		Short:   "Uni402 - pay-per-lesson platform",
		Version: Version,
		// Running the binary without a subcommand starts the server
		RunE: runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(hashKeyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and prepares logging and translations.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg)

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return nil, fmt.Errorf("failed to initialize i18n: %w", err)
	}

	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	if cfg.Log.Format == "json" || (cfg.Log.Format == "" && cfg.IsProduction()) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
