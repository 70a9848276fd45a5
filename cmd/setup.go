package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes config.toml (or the --config path) from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("%s %s\n", r.palette.OK("✓ Config written to"), configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set client_id and client_secret under [credentials.spotify], or export %s and %s\n",
		shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Run 'spotlist token' to check the credentials\n")

	return nil
}

// SetupDatabase initializes the snapshot database and runs migrations, or rolls back
// the most recent one with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDatabase(false)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("%s\n", r.palette.OK("✓ Rolled back latest migration"))
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("%s (%d migrations applied)\n", r.palette.OK("✓ Database ready"), len(applied))
}
