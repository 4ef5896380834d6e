package main

import (
	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/config"
	"github.com/bastiangx/wordpredict/pkg/corpus"
	"github.com/bastiangx/wordpredict/pkg/predictor"
	"github.com/charmbracelet/log"
)

// app bundles what every command needs: the config with flag overrides
// applied and a registry built from it.
type app struct {
	cfg        *config.Config
	configPath string
	registry   *predictor.Registry
}

func loadApp() (*app, error) {
	cfg, usedPath, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return nil, err
	}
	if modelPath != "" {
		cfg.Engine.ModelPath = modelPath
	}
	if seedPath != "" {
		cfg.Engine.SeedCorpus = seedPath
	}
	if order != 0 {
		cfg.Engine.Order = order
	}
	cfg.Validate()

	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedPath))
	log.Debug("Engine config:",
		"order", cfg.Engine.Order,
		"threshold", cfg.Engine.HistoryThreshold,
		"model", cfg.ModelFile(),
		"seed", cfg.SeedFile())

	return &app{
		cfg:        cfg,
		configPath: usedPath,
		registry: predictor.NewRegistry(predictor.Options{
			HistoryThreshold: cfg.Engine.HistoryThreshold,
			KeepCase:         cfg.Engine.KeepCase,
		}),
	}, nil
}

// seed loads the configured seed corpus. A missing or unreadable corpus only
// costs the warm start, so it is logged and skipped.
func (a *app) seed() []string {
	path := a.cfg.SeedFile()
	if path == "" {
		return nil
	}
	texts, err := corpus.Load(path)
	if err != nil {
		log.Warnf("Failed to load seed corpus %s: %v", path, err)
		return nil
	}
	log.Debugf("Loaded %s seed texts from %s", utils.FormatWithCommas(len(texts)), path)
	return texts
}

// open creates the predictor for the configured model file.
func (a *app) open() (predictor.Handle, error) {
	return a.registry.Create(a.cfg.ModelFile(), a.cfg.Engine.Order, a.seed())
}

// close drains pending training passes of every predictor.
func (a *app) close() {
	a.registry.Close()
}
