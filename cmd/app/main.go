package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/bantay/internal"
	pkgconfig "github.com/starford/bantay/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	read, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !read {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func seed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	so := internal.SeedOptions{
		Months:   int(cmd.Int("months")),
		PerMonth: int(cmd.Int("per-month")),
		Seed:     uint64(cmd.Int("seed")),
	}
	n, err := internal.Seed(ctx, so, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("seed error: %w", err)
	}
	fmt.Printf("wrote %d records to %s\n", n, cfg.Records.Dir)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "bantay",
		Usage:  "Demand analytics and forecasting for municipal office records",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP dashboard API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the analytics tools over MCP stdio",
				Action: mcp,
			},
			{
				Name:   "seed",
				Usage:  "Write synthetic request and case records into the records directory",
				Action: seed,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "months",
						Usage: "Months of history to generate",
						Value: 12,
					},
					&cli.IntFlag{
						Name:  "per-month",
						Usage: "Base records per kind per month",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random seed for reproducible output",
						Value: 1,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
