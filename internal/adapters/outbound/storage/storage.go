// Package storage provides backends for stored scan results.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/complykit/complykit/internal/domain"
)

// New creates the storage backend selected by cfg. Relative local paths are
// resolved against projectPath.
func New(cfg domain.StorageConfig, projectPath string) (domain.ScanResultStorage, error) {
	switch cfg.Type {
	case domain.StorageTypeMemory:
		return NewMemory(), nil
	case domain.StorageTypeLocal, "":
		path := cfg.Path
		if path == "" {
			path = domain.DefaultConfig().Storage.Path
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectPath, path)
		}
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", domain.ErrStorageUnavailable, cfg.Type)
	}
}
