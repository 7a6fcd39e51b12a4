package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Database optimization and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Run ANALYZE to update query planner statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStore(c.String("config"), "ANALYZE", (*storage.Store).Analyze)
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println("This may take a while for large databases...")
					return withStore(c.String("config"), "VACUUM", (*storage.Store).Vacuum)
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStore(c.String("config"), "WAL checkpoint", (*storage.Store).WALCheckpoint)
				},
			},
			{
				Name:  "all",
				Usage: "Run all optimization operations (optimize, analyze, checkpoint)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return optimizeAll(c.String("config"))
				},
			},
		},
	}
}

// withStore opens the configured database and runs a single maintenance
// operation against it.
func withStore(configPath, name string, op func(*storage.Store) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}()

	fmt.Printf("Running %s...\n", name)
	if err := op(store); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}

	fmt.Printf("✓ %s completed\n", name)
	return nil
}

// optimizeAll runs all optimization operations
func optimizeAll(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close database: %v\n", err)
		}
	}()

	steps := []struct {
		name string
		op   func() error
	}{
		{"PRAGMA optimize", store.Optimize},
		{"ANALYZE", store.Analyze},
		{"WAL checkpoint", store.WALCheckpoint},
	}

	for _, step := range steps {
		fmt.Printf("Running %s...\n", step.name)
		if err := step.op(); err != nil {
			return fmt.Errorf("running %s: %w", step.name, err)
		}
		fmt.Printf("✓ %s completed\n", step.name)
	}

	fmt.Println()
	fmt.Println("All optimization operations completed successfully")
	return nil
}
