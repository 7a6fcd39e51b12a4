package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// InitFTSCommand creates the init-fts command
func InitFTSCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-fts",
		Usage: "Build (or rebuild) the full-text search index",
		Action: func(ctx context.Context, c *cli.Command) error {
			return initFTS(c.String("config"))
		},
	}
}

func initFTS(configPath string) error {
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

	fmt.Println("Building full-text index (this may take a while for large archives)...")
	if err := store.InitFTS(); err != nil {
		return fmt.Errorf("building full-text index: %w", err)
	}

	fmt.Println("✓ Full-text index built")
	return nil
}
