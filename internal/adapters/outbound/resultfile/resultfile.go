// Package resultfile reads and writes analyzer results as YAML or JSON,
// chosen by file extension.
package resultfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/complykit/complykit/internal/domain"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format of result files.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf tells the format of path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w (expected .yml, .yaml or .json)", path, domain.ErrUnknownFormat)
	}
}

// Store implements domain.ResultReader and domain.ResultWriter on the local
// file system.
type Store struct{}

// New creates a result file store.
func New() *Store { return &Store{} }

// ReadProjectResult reads the output of one analyzer run.
func (s *Store) ReadProjectResult(path string) (domain.ProjectAnalyzerResult, error) {
	var result domain.ProjectAnalyzerResult
	if err := read(path, &result); err != nil {
		return domain.ProjectAnalyzerResult{}, err
	}
	return result, nil
}

// ReadAnalyzerResult reads a merged analyzer result.
func (s *Store) ReadAnalyzerResult(path string) (*domain.AnalyzerResult, error) {
	var result domain.AnalyzerResult
	if err := read(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WriteAnalyzerResult writes a merged analyzer result, creating parent
// directories as needed.
func (s *Store) WriteAnalyzerResult(path string, result *domain.AnalyzerResult) error {
	data, err := Marshal(path, result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes v in the format implied by path.
func Marshal(path string, v any) ([]byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return Encode(format, v)
}

// Encode encodes v in the given format.
func Encode(format Format, v any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, domain.ErrUnknownFormat)
	}
	return buf.Bytes(), nil
}

func read(path string, v any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
