package main

import (
	"context"

	"github.com/bastiangx/wordpredict/internal/cli"
	"github.com/charmbracelet/log"
	ucli "github.com/urfave/cli/v3"
)

var limit int

// replCmd runs the interactive CLI. Mainly for testing and dbg purposes.
func replCmd() *ucli.Command {
	return &ucli.Command{
		Name:  "repl",
		Usage: "Type text and see the predicted next words",
		Flags: []ucli.Flag{
			&ucli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"l"},
				Usage:       "number of predictions to show (0 = from config)",
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			h, err := a.open()
			if err != nil {
				return err
			}
			count := a.cfg.CLI.DefaultCount
			if limit > 0 {
				count = limit
			}

			log.SetReportTimestamp(false)
			log.Debug("Input info:", "limit", count, "showScores", a.cfg.CLI.ShowScores)

			inputHandler := cli.NewInputHandler(a.registry, h, count, a.cfg.CLI.ShowScores)
			if err := inputHandler.Start(); err != nil {
				return ucli.Exit("CLI error: "+err.Error(), 1)
			}
			return nil
		},
	}
}
