package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/spiralbewilder/mlk-archive-search/pkg/config"
	"github.com/spiralbewilder/mlk-archive-search/pkg/importer"
	"github.com/spiralbewilder/mlk-archive-search/pkg/storage"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import documents from an NDJSON file (plain or gzipped)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Documents per insert transaction",
				Value: 500,
			},
			&cli.BoolFlag{
				Name:  "init-fts",
				Usage: "Rebuild the full-text index after importing",
				Value: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			return importDocuments(c.String("config"), c.Args().First(), c.Int("batch-size"), c.Bool("init-fts"))
		},
	}
}

// importDocuments loads an NDJSON document dump into the archive database
func importDocuments(configPath, path string, batchSize int, rebuildFTS bool) error {
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

	f, err := importer.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close %s: %v\n", path, err)
		}
	}()

	fmt.Printf("Importing documents from %s...\n", path)
	count, err := importer.Load(f, store, batchSize)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}
	fmt.Printf("Imported %d documents\n", count)

	if rebuildFTS {
		fmt.Println("Rebuilding full-text index...")
		if err := store.InitFTS(); err != nil {
			return fmt.Errorf("rebuilding full-text index: %w", err)
		}
		fmt.Println("Full-text index ready")
	}

	return nil
}
