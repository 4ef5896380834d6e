// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the next-word prediction server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordPredict learns n-gram statistics from the text a user writes and predicts
the words most likely to come next. Each predictor keeps its model in a single
binary file, folds new history into it in the background once enough text has
been submitted, and backs off to shorter contexts when a context was never seen.

# Usage

Start the IPC server with default settings:

	wordpredict

Use a custom config and enable debug logging:

	wordpredict --config ~/wp.toml -d serve

Run the interactive CLI for testing:

	wordpredict repl -l 10

Train a model from a corpus file and inspect the result:

	wordpredict train --corpus notes.txt
	wordpredict info

# Configuration

Runtime configuration lives in a TOML (or YAML) file that is created with
defaults on first run:

	[engine]
	order = 3
	history_threshold = 100
	model_path = ""
	seed_corpus = ""

	[server]
	codec = "msgpack"
	max_count = 64

See package config for every key.

# IPC Protocol

The server reads MessagePack requests from stdin and writes one response per
request to stdout. Logs always go to stderr.

	{"id": "r1", "op": "create"}
	{"id": "r2", "op": "predict", "h": 1, "ctx": "the cat ", "n": 3}

See package server for the full list of operations.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordpredict/internal/logger"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordpredict"
	gh      = "https://github.com/bastiangx/wordpredict"
)

var (
	configPath string
	modelPath  string
	seedPath   string
	order      int
	debugMode  bool
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only wires flags to the commands. Serving is the default.
func main() {
	sigHandler()
	cli.VersionPrinter = printVersion

	app := &cli.Command{
		Name:    AppName,
		Usage:   "Learns what you write and predicts the next word",
		Version: Version,
		Flags:   globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.SetLogging(debugMode)
			return ctx, nil
		},
		Action: serveAction,
		Commands: []*cli.Command{
			serveCmd(),
			replCmd(),
			trainCmd(),
			infoCmd(),
			configCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a config file (.toml, .yaml)",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "model file, overrides engine.model_path",
			Destination: &modelPath,
		},
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "seed corpus used when no model file exists, overrides engine.seed_corpus",
			Destination: &seedPath,
		},
		&cli.IntFlag{
			Name:        "order",
			Aliases:     []string{"n"},
			Usage:       "n-gram order for new models (0 = from config)",
			Destination: &order,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "toggle debug logging",
			Destination: &debugMode,
		},
	}
}

// printVersion shows the styled version banner on stderr.
func printVersion(cmd *cli.Command) {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ WordPredict ] Predicts your next word from what you write")
	banner.Print("", "version", cmd.Root().Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}
