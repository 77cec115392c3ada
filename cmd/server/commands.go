// cmd/server/commands.go
package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/utils"
)

// errEphemeralDatabase stops one-shot commands whose work would vanish when the process exits.
var errEphemeralDatabase = errors.New("database is in-memory; set DB_SQLITE_PATH to a file or use DB_DRIVER=postgres")

func requirePersistentDatabase(cfg *config.Config) error {
	if cfg.Database.IsEphemeral() {
		return fmt.Errorf("%w (current: %s)", errEphemeralDatabase, cfg.Database.SQLitePath)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if err := requirePersistentDatabase(cfg); err != nil {
				return err
			}

			db, err := database.Initialize(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close(db)

			if err := database.RunMigrations(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			logrus.Info("Migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo lessons into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if err := requirePersistentDatabase(cfg); err != nil {
				return err
			}

			db, err := database.Initialize(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close(db)

			if err := database.RunMigrations(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if err := database.SeedLessons(db); err != nil {
				return fmt.Errorf("failed to seed lessons: %w", err)
			}

			logrus.Info("Demo lessons seeded")
			return nil
		},
	}
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [api-key]",
		Short: "Print the bcrypt hash to use as ADMIN_API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashAPIKey(args[0])
			if err != nil {
				return fmt.Errorf("failed to hash api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
