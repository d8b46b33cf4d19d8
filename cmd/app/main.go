package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-aging/internal/adapters/cli"
	"inventory-aging/internal/app"
	"inventory-aging/internal/config"
	"inventory-aging/internal/db"
	"inventory-aging/internal/logger"
	"inventory-aging/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprintln(os.Stderr, cli.Run(context.Background(), nil, nil, os.Stdout))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var opts []app.Option
	if cfg.Database.URL != "" {
		pool, err := db.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("unable to connect to database", "error", err)
		}
		defer pool.Close()
		opts = append(opts, app.WithArchive(store.NewReportArchive(pool)))
	}

	svc, err := app.NewAppService(cfg, log, opts...)
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	if err := cli.Run(ctx, svc, args, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file. The schema command does not depend on
// any site configuration, so it runs on the defaults.
func loadConfig(args []string) (*config.Config, error) {
	if args[0] == "schema" {
		cfg := config.Default()
		cfg.Logging.Mode = os.Getenv("LOG_MODE")
		return cfg, nil
	}
	fallback := os.Getenv("INVENTORY_CONFIG")
	if fallback == "" {
		fallback = config.DefaultPath
	}
	return config.Load(cli.ConfigPath(args, fallback))
}
