package main

import (
	"context"
	"fmt"

	"github.com/bastiangx/wordpredict/pkg/config"
	"github.com/urfave/cli/v3"
)

var rebuild bool

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show the active config file or rebuild the default one",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "rebuild",
				Usage:       "overwrite the default config file with defaults",
				Destination: &rebuild,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if rebuild {
				if err := config.RebuildConfigFile(); err != nil {
					return cli.Exit(fmt.Sprintf("error: rebuild config: %v", err), 1)
				}
			}
			_, usedPath, err := config.LoadConfigWithPriority(configPath)
			if err != nil {
				return err
			}
			fmt.Println(config.GetActiveConfigPath(usedPath))
			return nil
		},
	}
}
