package main

import (
	"context"
	"os"

	"github.com/bastiangx/wordpredict/internal/logger"
	"github.com/bastiangx/wordpredict/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

var codec string

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve predictions over stdin/stdout (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "codec",
				Usage:       "wire codec (msgpack, json), overrides server.codec",
				Destination: &codec,
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if codec != "" {
		a.cfg.Server.Codec = codec
		a.cfg.Validate()
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(a.registry, a.cfg, a.seed())
	showStartupInfo(a)

	if err := srv.Start(); err != nil {
		return cli.Exit("Server error: "+err.Error(), 1)
	}
	return nil
}

// showStartupInfo displays some basic info about the init process.
// It prints at info level without touching the global level.
func showStartupInfo(a *app) {
	startup := logger.New("")
	startup.SetLevel(log.InfoLevel)

	println("=============")
	println(" WordPredict ")
	println("=============")
	startup.Infof("Version: %s", Version)
	startup.Infof("Process ID: [ %d ]", os.Getpid())
	startup.Infof("codec: %s", a.cfg.Server.Codec)
	startup.Infof("model: ( %s )", a.cfg.ModelFile())
	startup.Info("status: ready")
	println("=============")
	println("Press Ctrl+C to exit")
}
