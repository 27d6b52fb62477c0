package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/db"
	"github.com/paclead/splitsettle/pkg/logger"
	"github.com/paclead/splitsettle/pkg/migrate"
)

type options struct {
	dir     string
	name    string
	version string
}

type command struct {
	summary string
	needsDB bool
	run     func(ctx context.Context, sqlDB *sql.DB, opts options) error
}

var commands = map[string]command{
	"up": {
		summary: "apply every pending settlement schema migration",
		needsDB: true,
		run: func(ctx context.Context, sqlDB *sql.DB, opts options) error {
			return migrate.Run(ctx, sqlDB, opts.dir, "up")
		},
	},
	"down": {
		summary: "roll back the most recent migration",
		needsDB: true,
		run: func(ctx context.Context, sqlDB *sql.DB, opts options) error {
			return migrate.Run(ctx, sqlDB, opts.dir, "down")
		},
	},
	"status": {
		summary: "list applied and pending migrations",
		needsDB: true,
		run: func(ctx context.Context, sqlDB *sql.DB, opts options) error {
			return migrate.Run(ctx, sqlDB, opts.dir, "status")
		},
	},
	"version": {
		summary: "migrate up or down to -version (YYYYMMDDHHMMSS)",
		needsDB: true,
		run: func(ctx context.Context, sqlDB *sql.DB, opts options) error {
			if opts.version == "" {
				return fmt.Errorf("missing -version")
			}
			return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
		},
	},
	"create": {
		summary: "write a new timestamped SQL migration named -name",
		run: func(_ context.Context, _ *sql.DB, opts options) error {
			if opts.name == "" {
				return fmt.Errorf("missing -name")
			}
			path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
			if err != nil {
				return err
			}
			fmt.Println("created migration:", path)
			return nil
		},
	},
	"validate": {
		summary: "check migration file names and goose annotations offline",
		run: func(_ context.Context, _ *sql.DB, opts options) error {
			if err := migrate.ValidateDir(opts.dir); err != nil {
				return err
			}
			fmt.Println("migrations valid")
			return nil
		},
	},
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Manages the sales, payment_attempts, split_rules, split_executions,\nledger_entries and outbox tables.\n\nUsage: migrate -cmd <command> [flags]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	flag.Usage = usage
	name := flag.String("cmd", "up", "command to run, see usage")
	var opts options
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name for create")
	flag.StringVar(&opts.version, "version", "", "target version for version")
	flag.Parse()

	cmd, ok := commands[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", *name)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	exitOn(context.Background(), logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *name,
		"dir": opts.dir,
	})

	var sqlDB *sql.DB
	if cmd.needsDB {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		exitOn(ctx, logg, "connect database", err)
		defer dbClient.Close()

		sqlDB, err = dbClient.DB().DB()
		exitOn(ctx, logg, "open sql handle", err)
	}

	logg.Info(ctx, "running migration command")
	if err := cmd.run(ctx, sqlDB, opts); err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, step, err)
	os.Exit(1)
}
