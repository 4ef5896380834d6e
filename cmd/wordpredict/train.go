package main

import (
	"context"
	"fmt"

	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/corpus"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

var (
	corpusPath string
	fresh      bool
)

// trainCmd feeds a corpus through the history buffer as if it had been typed,
// then forces a final pass so nothing stays buffered.
func trainCmd() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train the model on a corpus file or directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "corpus",
				Usage:       "text, JSON or YAML corpus (file or directory)",
				Destination: &corpusPath,
				Required:    true,
			},
			&cli.BoolFlag{
				Name:        "fresh",
				Usage:       "reset the model before training",
				Destination: &fresh,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			texts, err := corpus.Load(utils.ExpandHome(corpusPath))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load corpus: %v", err), 1)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			h, err := a.open()
			if err != nil {
				return err
			}
			if fresh {
				if err := a.registry.Reset(h); err != nil {
					return err
				}
			}

			log.Debugf("Training on %s texts from %s", utils.FormatWithCommas(len(texts)), corpusPath)
			for _, text := range texts {
				if err := a.registry.AddHistory(h, text); err != nil {
					return err
				}
			}
			if err := a.registry.ForceTrain(h); err != nil {
				return cli.Exit(fmt.Sprintf("error: save model: %v", err), 1)
			}

			info, err := a.registry.ModelInfo(h)
			if err != nil {
				return err
			}
			fmt.Printf("Trained on %s texts\n%s\n", utils.FormatWithCommas(len(texts)), info)
			return nil
		},
	}
}
