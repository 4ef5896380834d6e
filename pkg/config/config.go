/*
Package config manages the TOML (or YAML) config for wordpredict.

The file has three sections:

	[engine]
	order = 3
	history_threshold = 100
	default_count = 5
	model_path = ""
	seed_corpus = ""
	keep_case = false

	[server]
	codec = "msgpack"
	max_count = 64
	max_context = 512

	[cli]
	default_count = 5
	show_scores = true

A file ending in .yaml or .yml is read and written as YAML with the same keys.
Missing keys keep their defaults; a file that fails to decode is salvaged key by
key where possible.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/modelfile"
	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/charmbracelet/log"
)

const (
	CodecMsgpack = "msgpack"
	CodecJSON    = "json"

	// DefaultModelFile is created in the data dir when model_path is empty.
	DefaultModelFile = "model.bin"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine" yaml:"engine"`
	Server ServerConfig `toml:"server" yaml:"server"`
	CLI    CliConfig    `toml:"cli" yaml:"cli"`
}

// EngineConfig holds model and training options.
type EngineConfig struct {
	Order            int    `toml:"order" yaml:"order"`
	HistoryThreshold int    `toml:"history_threshold" yaml:"history_threshold"`
	DefaultCount     int    `toml:"default_count" yaml:"default_count"`
	ModelPath        string `toml:"model_path" yaml:"model_path"`
	SeedCorpus       string `toml:"seed_corpus" yaml:"seed_corpus"`
	KeepCase         bool   `toml:"keep_case" yaml:"keep_case"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	Codec      string `toml:"codec" yaml:"codec"`
	MaxCount   int    `toml:"max_count" yaml:"max_count"`
	MaxContext int    `toml:"max_context" yaml:"max_context"`
}

// CliConfig holds repl options.
type CliConfig struct {
	DefaultCount int  `toml:"default_count" yaml:"default_count"`
	ShowScores   bool `toml:"show_scores" yaml:"show_scores"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Order:            3,
			HistoryThreshold: 100,
			DefaultCount:     5,
			ModelPath:        "",
			SeedCorpus:       "",
			KeepCase:         false,
		},
		Server: ServerConfig{
			Codec:      CodecMsgpack,
			MaxCount:   64,
			MaxContext: 512,
		},
		CLI: CliConfig{
			DefaultCount: 5,
			ShowScores:   true,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (~/.config/wordpredict, XDG_CONFIG_HOME, APPDATA)
// 2. current executable dir
// 3. temp dir
func GetConfigDir() (string, error) {
	primaryPath, err := utils.ConfigDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		primaryPath = ""
	}
	return utils.ResolveWritableDir(primaryPath), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordpredict/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML or YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadConfigFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Validate()
	return config, nil
}

// tryPartialParse salvages every well-typed key from a file whose typed
// decode failed.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	config.Validate()
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt(data, "order"); ok {
		engine.Order = val
	}
	if val, ok := utils.ExtractInt(data, "history_threshold"); ok {
		engine.HistoryThreshold = val
	}
	if val, ok := utils.ExtractInt(data, "default_count"); ok {
		engine.DefaultCount = val
	}
	if val, ok := utils.ExtractString(data, "model_path"); ok {
		engine.ModelPath = val
	}
	if val, ok := utils.ExtractString(data, "seed_corpus"); ok {
		engine.SeedCorpus = val
	}
	if val, ok := utils.ExtractBool(data, "keep_case"); ok {
		engine.KeepCase = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "codec"); ok {
		server.Codec = val
	}
	if val, ok := utils.ExtractInt(data, "max_count"); ok {
		server.MaxCount = val
	}
	if val, ok := utils.ExtractInt(data, "max_context"); ok {
		server.MaxContext = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt(data, "default_count"); ok {
		cli.DefaultCount = val
	}
	if val, ok := utils.ExtractBool(data, "show_scores"); ok {
		cli.ShowScores = val
	}
}

// Validate replaces out-of-range values with their defaults.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.Engine.Order < ngram.MinOrder || c.Engine.Order > modelfile.MaxOrder {
		log.Warnf("Invalid engine.order %d, using %d", c.Engine.Order, def.Engine.Order)
		c.Engine.Order = def.Engine.Order
	}
	if c.Engine.HistoryThreshold < 1 {
		log.Warnf("Invalid engine.history_threshold %d, using %d", c.Engine.HistoryThreshold, def.Engine.HistoryThreshold)
		c.Engine.HistoryThreshold = def.Engine.HistoryThreshold
	}
	if c.Engine.DefaultCount < 0 {
		c.Engine.DefaultCount = def.Engine.DefaultCount
	}
	if c.Server.Codec != CodecMsgpack && c.Server.Codec != CodecJSON {
		log.Warnf("Unknown server.codec %q, using %s", c.Server.Codec, def.Server.Codec)
		c.Server.Codec = def.Server.Codec
	}
	if c.Server.MaxCount < 1 {
		c.Server.MaxCount = def.Server.MaxCount
	}
	if c.Server.MaxContext < 1 {
		c.Server.MaxContext = def.Server.MaxContext
	}
	if c.CLI.DefaultCount < 1 {
		c.CLI.DefaultCount = def.CLI.DefaultCount
	}
}

// ModelFile returns the model path to use: engine.model_path with ~ expanded,
// or model.bin in the platform data dir when unset.
func (c *Config) ModelFile() string {
	if c.Engine.ModelPath != "" {
		return utils.ExpandHome(c.Engine.ModelPath)
	}
	dataDir, err := utils.DataDir()
	if err != nil {
		log.Warnf("Failed to determine data directory: %v", err)
		dataDir = ""
	}
	return filepath.Join(utils.ResolveWritableDir(dataDir), DefaultModelFile)
}

// SeedFile returns engine.seed_corpus with ~ expanded, or "" when unset.
func (c *Config) SeedFile() string {
	if c.Engine.SeedCorpus == "" {
		return ""
	}
	return utils.ExpandHome(c.Engine.SeedCorpus)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML or YAML file depending on the extension
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveConfigFile(config, configPath)
}
