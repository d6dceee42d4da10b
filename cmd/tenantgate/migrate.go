package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/Strob0t/tenantgate/internal/adapter/postgres"
	"github.com/Strob0t/tenantgate/internal/config"
)

// runMigrate dispatches the migrate subcommands (up, down, version).
func runMigrate(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printMigrateHelp()
		return nil
	}

	cmd := args[0]
	fs := flag.NewFlagSet("migrate "+cmd, flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "path to YAML config file")
	dsnFlag := fs.String("dsn", "", "PostgreSQL DSN (overrides config)")
	askDSN := fs.Bool("ask-dsn", false, "prompt for the DSN without echoing it")
	steps := fs.Int("steps", 1, "number of migrations to roll back (down only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	dsn, err := resolveDSN(*configPath, *dsnFlag, *askDSN)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch cmd {
	case "up":
		if err := postgres.RunMigrations(ctx, dsn); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "migrations applied")
	case "down":
		if *steps < 1 {
			return fmt.Errorf("--steps must be >= 1")
		}
		if err := postgres.RollbackMigrations(ctx, dsn, *steps); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "rolled back %d migration(s)\n", *steps)
	case "version":
		v, err := postgres.MigrationVersion(ctx, dsn)
		if err != nil {
			return err
		}
		fmt.Println(v)
	default:
		printMigrateHelp()
		return fmt.Errorf("unknown migrate command: %s", cmd)
	}
	return nil
}

func printMigrateHelp() {
	fmt.Fprintf(os.Stderr, `Usage: tenantgate migrate <command> [options]

Commands:
  up        Apply all pending migrations
  down      Roll back migrations (--steps N, default 1)
  version   Print the current schema version
  help      Show this help message

Options:
  --config PATH   YAML config file (default tenantgate.yaml)
  --dsn DSN       PostgreSQL DSN, overrides config and DATABASE_URL
  --ask-dsn       Prompt for the DSN without echo

Examples:
  tenantgate migrate up
  tenantgate migrate down --steps 2
  tenantgate migrate version --ask-dsn
`)
}

// resolveDSN picks the DSN from the prompt, the flag, or the loaded config.
func resolveDSN(configPath, dsnFlag string, ask bool) (string, error) {
	if ask {
		dsn, err := promptSecret("PostgreSQL DSN: ")
		if err != nil {
			return "", fmt.Errorf("read dsn: %w", err)
		}
		if dsn == "" {
			return "", fmt.Errorf("dsn is required")
		}
		return dsn, nil
	}
	if dsnFlag != "" {
		return dsnFlag, nil
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Postgres.DSN, nil
}

// promptSecret reads a line from the terminal without echoing.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
