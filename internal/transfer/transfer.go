// Package transfer exports and imports settings documents as JSON or YAML.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/taskwise/internal/model"
)

// Version is written into every exported document.
const Version = "1.0"

var ErrUnknownFormat = errors.New("transfer: unknown format")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the exported form of Settings.
type Document struct {
	model.Settings `yaml:",inline"`
	ExportDate     time.Time `json:"exportDate" yaml:"exportDate"`
	Version        string    `json:"version" yaml:"version"`
}

func Encode(settings model.Settings, now time.Time, format Format) ([]byte, error) {
	doc := Document{Settings: settings, ExportDate: now.UTC(), Version: Version}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Result reports an import outcome. Settings is only meaningful when OK.
type Result struct {
	OK       bool
	Reason   string
	Settings model.Settings
}

func failed(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Decode parses an exported document. The workSchedule and categories groups
// must be present; every other missing field takes its default. Decode never
// panics on malformed input.
func Decode(data []byte, format Format) Result {
	var probe map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &probe)
	case FormatYAML:
		err = yaml.Unmarshal(data, &probe)
	default:
		return failed("unknown format %q", format)
	}
	if err != nil {
		return failed("unreadable %s: %v", format, err)
	}
	for _, key := range []string{"workSchedule", "categories"} {
		if probe[key] == nil {
			return failed("missing %s", key)
		}
	}

	doc := Document{Settings: model.DefaultSettings()}
	doc.Categories = nil
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return failed("invalid settings: %v", err)
	}
	if doc.Categories == nil {
		doc.Categories = []model.CategoryInfo{}
	}
	if doc.Theme == "" {
		doc.Theme = model.ThemeSystem
	}
	if err := doc.Settings.Validate(); err != nil {
		return failed("%v", err)
	}
	return Result{OK: true, Settings: doc.Settings}
}

// Store reads and writes documents on an abstract filesystem.
type Store struct {
	fs afero.Fs
}

func NewStore(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs}
}

// Export writes the document next to path and renames it into place so a
// reader never sees a partial file.
func (s *Store) Export(path string, settings model.Settings, now time.Time) error {
	data, err := Encode(settings, now, FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("finalize export: %w", err)
	}
	return nil
}

func (s *Store) Import(path string) Result {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return failed("read %s: %v", path, err)
	}
	return Decode(data, FormatFor(path))
}
