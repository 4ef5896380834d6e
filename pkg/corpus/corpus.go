// Package corpus reads training texts from plain text, JSON or YAML files.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies a corpus file layout
type Format int

const (
	FormatUnknown Format = iota
	FormatText           // One text per line
	FormatJSON           // JSON array of strings
	FormatYAML           // YAML sequence of strings
)

// FormatInfo describes a supported corpus format
type FormatInfo struct {
	Format      Format
	Description string
	Extensions  []string
}

var supportedFormats = map[Format]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Corpus",
		Extensions:  []string{".txt", ".text"},
	},
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Corpus",
		Extensions:  []string{".json"},
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML Corpus",
		Extensions:  []string{".yaml", ".yml"},
	},
}

// ErrUnknownFormat is returned for files whose extension maps to no format.
var ErrUnknownFormat = errors.New("unknown corpus format")

func (f Format) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// Detect maps a file name to its corpus format by extension
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if ext == e {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads every text from path. A directory loads each supported file
// in name order and skips the rest.
func Load(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus %s: %w", path, err)
	}
	if info.IsDir() {
		return loadDir(path)
	}
	return loadFile(path)
}

func loadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := Detect(e.Name()); err != nil {
			log.Debugf("Skipping %s: not a corpus file", e.Name())
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var texts []string
	for _, name := range names {
		t, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		texts = append(texts, t...)
	}
	return texts, nil
}

func loadFile(path string) ([]string, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer file.Close()

	texts, err := Read(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	log.Debugf("Loaded %d texts from %s (%s)", len(texts), path, format)
	return texts, nil
}

// Read decodes texts from r. Blank entries are dropped in every format.
func Read(r io.Reader, format Format) ([]string, error) {
	var raw []string
	switch format {
	case FormatText:
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			raw = append(raw, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}

	texts := raw[:0]
	for _, t := range raw {
		if strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}
