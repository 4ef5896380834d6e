package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		path        string
		expected    Format
		description string
	}{
		{"seed.txt", FormatText, "Text file"},
		{"SEED.TXT", FormatText, "Upper case extension"},
		{"seed.json", FormatJSON, "JSON file"},
		{"dir/seed.yml", FormatYAML, "Short YAML extension"},
		{"seed.yaml", FormatYAML, "YAML file"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := Detect(tc.path)
			if err != nil {
				t.Fatalf("Path '%s': unexpected error %v", tc.path, err)
			}
			if got != tc.expected {
				t.Errorf("Path '%s': expected %v, got %v", tc.path, tc.expected, got)
			}
		})
	}

	if _, err := Detect("seed.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRead(t *testing.T) {
	want := []string{"the cat sat", "the cat ran"}

	testCases := []struct {
		input       string
		format      Format
		description string
	}{
		{"the cat sat\n\n   \nthe cat ran\n", FormatText, "Text skips blank lines"},
		{`["the cat sat", "", "the cat ran"]`, FormatJSON, "JSON array"},
		{"- the cat sat\n- \"\"\n- the cat ran\n", FormatYAML, "YAML sequence"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := Read(strings.NewReader(tc.input), tc.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON, FormatYAML} {
		got, err := Read(strings.NewReader(""), f)
		if err != nil {
			t.Errorf("%v: unexpected error %v", f, err)
		}
		if len(got) != 0 {
			t.Errorf("%v: expected no texts, got %v", f, got)
		}
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader(`{"not": "an array"}`), FormatJSON); err == nil {
		t.Errorf("expected error for JSON object")
	}
	if _, err := Read(strings.NewReader("key: value\n"), FormatYAML); err == nil {
		t.Errorf("expected error for YAML mapping")
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.json":   `["second file"]`,
		"a.txt":    "first file\n",
		"c.yaml":   "- third file\n",
		"notes.md": "ignored",
		"README":   "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first file", "second file", "third file"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
