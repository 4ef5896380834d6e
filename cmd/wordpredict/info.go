package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/modelfile"
	"github.com/urfave/cli/v3"
)

// infoCmd reads a model file without creating a predictor, so a missing file
// is reported instead of seeded.
func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Inspect a model file",
		ArgsUsage: "[model file]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			path := a.cfg.ModelFile()
			if cmd.Args().Present() {
				path = utils.ExpandHome(cmd.Args().First())
			}

			stat, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return cli.Exit(fmt.Sprintf("error: no model at %s (run 'train' or 'serve' first)", path), 1)
				}
				return cli.Exit(fmt.Sprintf("error: stat model: %v", err), 1)
			}

			header, err := modelfile.Inspect(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			store, err := modelfile.Load(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			stats := store.Stats()

			fmt.Printf("Model file: %s (%s bytes)\n", path, utils.FormatWithCommas(int(stat.Size())))
			fmt.Printf("Format version: %d\n", header.Version)
			fmt.Printf("n: %d\n", stats.Order)
			fmt.Printf("Vocabulary size: %s\n", utils.FormatWithCommas(stats.Vocabulary))
			fmt.Printf("Contexts: %s\n", utils.FormatWithCommas(stats.Contexts))
			fmt.Printf("N-grams: %s\n", utils.FormatWithCommas(stats.NGrams))
			fmt.Printf("Total words: %s\n", utils.FormatWithCommas(stats.Total))
			return nil
		},
	}
}
