package application

import (
	"context"
	"fmt"

	"github.com/complykit/complykit/internal/domain"
)

// ScanResultService reads stored scan results.
type ScanResultService struct {
	storage domain.ScanResultStorage
}

func NewScanResultService(storage domain.ScanResultStorage) *ScanResultService {
	return &ScanResultService{storage: storage}
}

// List returns the stored scan results of id. Storage failures are not
// retried; they are returned with enough context to show to the user.
func (s *ScanResultService) List(ctx context.Context, id domain.Identifier) (domain.ScanResultContainer, error) {
	if id.IsEmpty() {
		return domain.ScanResultContainer{}, fmt.Errorf("package identifier must not be empty")
	}
	container, err := s.storage.Read(ctx, id)
	if err != nil {
		return domain.ScanResultContainer{}, fmt.Errorf("could not read scan results of '%s' from %s: %w",
			id.Coordinates(), s.storage.Name(), err)
	}
	return container, nil
}

// Add stores a scan result for id.
func (s *ScanResultService) Add(ctx context.Context, id domain.Identifier, result domain.ScanResult) error {
	if err := s.storage.Add(ctx, id, result); err != nil {
		return fmt.Errorf("could not store scan result of '%s' in %s: %w", id.Coordinates(), s.storage.Name(), err)
	}
	return nil
}
