package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/complykit/complykit/internal/domain"
	"gopkg.in/yaml.v3"
)

const resultsFile = "scan-results.yml"

// FileStore keeps scan results in a directory tree with one YAML file per
// package: <root>/<type>/<namespace>/<name>/<version>/scan-results.yml.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Name() string { return "local:" + s.root }

// Read returns the stored results of id. A package without stored results
// yields an empty container.
func (s *FileStore) Read(ctx context.Context, id domain.Identifier) (domain.ScanResultContainer, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScanResultContainer{}, err
	}
	if err := s.checkRoot(); err != nil {
		return domain.ScanResultContainer{}, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ScanResultContainer{ID: id}, nil
		}
		return domain.ScanResultContainer{}, fmt.Errorf("%w: reading results of %s: %v", domain.ErrStorageUnavailable, id, err)
	}

	var container domain.ScanResultContainer
	if err := yaml.Unmarshal(data, &container); err != nil {
		return domain.ScanResultContainer{}, fmt.Errorf("parsing stored results of %s: %w", id, err)
	}
	container.ID = id
	return container, nil
}

// Add appends result to the stored results of id.
func (s *FileStore) Add(ctx context.Context, id domain.Identifier, result domain.ScanResult) error {
	container, err := s.Read(ctx, id)
	if err != nil {
		return err
	}
	container.Results = append(container.Results, result)

	path := s.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	data, err := yaml.Marshal(&container)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// checkRoot fails if the root exists but is not a directory. A missing root
// just means nothing was stored yet.
func (s *FileStore) checkRoot() error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrStorageUnavailable, s.root)
	}
	return nil
}

func (s *FileStore) path(id domain.Identifier) string {
	return filepath.Join(s.root,
		component(id.Type), component(id.Namespace), component(id.Name), component(id.Version),
		resultsFile)
}

// component makes an identifier part safe to use as one path element.
func component(s string) string {
	switch s {
	case "":
		return "unknown"
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}
