package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Engine.Order != 3 || c.Engine.HistoryThreshold != 100 {
		t.Errorf("unexpected engine defaults: %+v", c.Engine)
	}
	if c.Server.Codec != CodecMsgpack || c.Server.MaxCount != 64 {
		t.Errorf("unexpected server defaults: %+v", c.Server)
	}

	before := *c
	c.Validate()
	if *c != before {
		t.Errorf("defaults changed by Validate: %+v -> %+v", before, *c)
	}
}

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		description string
	}{
		{"c.toml", "[engine]\norder = 4\nmodel_path = \"/tmp/m.bin\"\n\n[server]\ncodec = \"json\"\n", "TOML"},
		{"c.yaml", "engine:\n  order: 4\n  model_path: /tmp/m.bin\nserver:\n  codec: json\n", "YAML"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			c, err := LoadConfig(writeFile(t, tc.name, tc.content))
			if err != nil {
				t.Fatal(err)
			}
			if c.Engine.Order != 4 || c.Engine.ModelPath != "/tmp/m.bin" || c.Server.Codec != CodecJSON {
				t.Errorf("values not loaded: %+v", c)
			}
			// Unset keys keep defaults.
			if c.Engine.HistoryThreshold != 100 || c.CLI.DefaultCount != 5 || !c.CLI.ShowScores {
				t.Errorf("defaults lost: %+v", c)
			}
		})
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	content := `
[engine]
order = "three"
history_threshold = 10

[server]
max_count = 8
`
	c, err := LoadConfig(writeFile(t, "c.toml", content))
	if err != nil {
		t.Fatal(err)
	}
	if c.Engine.Order != 3 {
		t.Errorf("expected default order for bad value, got %d", c.Engine.Order)
	}
	if c.Engine.HistoryThreshold != 10 || c.Server.MaxCount != 8 {
		t.Errorf("valid keys not recovered: %+v", c)
	}
}

func TestLoadConfigUnparseable(t *testing.T) {
	c, err := LoadConfig(writeFile(t, "c.toml", "[engine\norder = = 3"))
	if err != nil {
		t.Fatal(err)
	}
	if *c != *DefaultConfig() {
		t.Errorf("expected all defaults, got %+v", c)
	}
}

func TestValidate(t *testing.T) {
	c := DefaultConfig()
	c.Engine.Order = 1
	c.Engine.HistoryThreshold = 0
	c.Server.Codec = "xml"
	c.Server.MaxCount = -1
	c.Validate()

	def := DefaultConfig()
	if c.Engine.Order != def.Engine.Order || c.Engine.HistoryThreshold != def.Engine.HistoryThreshold ||
		c.Server.Codec != def.Server.Codec || c.Server.MaxCount != def.Server.MaxCount {
		t.Errorf("invalid values not replaced: %+v", c)
	}
}

func TestValidateOrderAboveFileLimit(t *testing.T) {
	c := DefaultConfig()
	c.Engine.Order = 70000
	c.Validate()
	if c.Engine.Order != DefaultConfig().Engine.Order {
		t.Errorf("expected default order for 70000, got %d", c.Engine.Order)
	}
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if *c != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", c)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), "history_threshold = 100") {
		t.Errorf("unexpected config file:\n%s", data)
	}

	reloaded, err := LoadConfig(path)
	if err != nil || *reloaded != *c {
		t.Errorf("round trip failed: %+v, %v", reloaded, err)
	}
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeFile(t, "custom.yml", "cli:\n  default_count: 9\n")
	c, used, err := LoadConfigWithPriority(path)
	if err != nil {
		t.Fatal(err)
	}
	if used != path || c.CLI.DefaultCount != 9 {
		t.Errorf("custom config not used: path=%s cli=%+v", used, c.CLI)
	}
}

func TestModelFile(t *testing.T) {
	c := DefaultConfig()
	c.Engine.ModelPath = "/data/model.bin"
	if got := c.ModelFile(); got != "/data/model.bin" {
		t.Errorf("expected configured path, got '%s'", got)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	c.Engine.ModelPath = ""
	if got := c.ModelFile(); filepath.Base(got) != DefaultModelFile {
		t.Errorf("expected default model file name, got '%s'", got)
	}

	if c.SeedFile() != "" {
		t.Errorf("expected empty seed file")
	}
}
