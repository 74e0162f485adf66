package application

import (
	"fmt"

	"github.com/complykit/complykit/internal/domain"
)

// IssueService lists the issues of a merged analyzer result.
type IssueService struct {
	reader domain.ResultReader
}

func NewIssueService(reader domain.ResultReader) *IssueService {
	return &IssueService{reader: reader}
}

// Collect returns every issue of the result at path with at least severity
// min, per identifier. Identifiers left without issues are dropped.
func (s *IssueService) Collect(path string, min domain.Severity) (map[domain.Identifier][]domain.Issue, error) {
	result, err := s.reader.ReadAnalyzerResult(path)
	if err != nil {
		return nil, fmt.Errorf("reading analyzer result: %w", err)
	}
	return FilterIssues(result.CollectIssues(), min), nil
}

// FilterIssues keeps the issues with at least severity min.
func FilterIssues(issues map[domain.Identifier][]domain.Issue, min domain.Severity) map[domain.Identifier][]domain.Issue {
	out := make(map[domain.Identifier][]domain.Issue)
	for id, list := range issues {
		var kept []domain.Issue
		for _, issue := range list {
			if issue.Severity.AtLeast(min) {
				kept = append(kept, issue)
			}
		}
		if len(kept) > 0 {
			out[id] = kept
		}
	}
	return out
}
