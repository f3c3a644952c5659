// Command filehubctl runs one-shot maintenance tasks against the file
// service database and storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"filehub/internal/app"
	"filehub/internal/config"
	"filehub/internal/repository/postgres"
	"filehub/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `usage: filehubctl <command> [flags]

commands:
  migrate        apply pending migrations (-down N rolls back N steps)
  seed           ensure roles and the default admin
  purge          remove entries soft-deleted longer than the retention
  audit-cleanup  delete audit records older than -days (default AUDIT_RETENTION_DAYS)
`

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "filehubctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return fmt.Errorf("missing command")
	}
	cmd, rest := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.App.IsProduction())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("ctl").With(zap.String("command", cmd))

	switch cmd {
	case "migrate":
		return runMigrate(cfg, rest, log, out)
	case "seed":
		return withComponents(cfg, log, func(c *app.Components) error {
			return c.Seeder.Run(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		})
	case "purge":
		return withComponents(cfg, log, func(c *app.Components) error {
			res, err := c.Purger.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "purged %d entries, %d errors\n", res.Purged, res.Errors)
			return nil
		})
	case "audit-cleanup":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		days := fs.Int("days", cfg.Maintenance.AuditRetentionDays, "days of audit history to keep")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return withComponents(cfg, log, func(c *app.Components) error {
			removed, err := c.Audit.Cleanup(ctx, *days)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "removed %d audit records\n", removed)
			return nil
		})
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runMigrate(cfg *config.Config, args []string, log *zap.Logger, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	down := fs.Int("down", 0, "roll back this many migrations instead of applying")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *down > 0 {
		if err := postgres.MigrateDown(cfg.Database.MigrationURL(), *down); err != nil {
			return err
		}
		fmt.Fprintf(out, "rolled back %d migrations\n", *down)
		return nil
	}
	return postgres.Migrate(cfg.Database.MigrationURL(), log)
}

func withComponents(cfg *config.Config, log *zap.Logger, fn func(*app.Components) error) error {
	c, err := app.Build(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
