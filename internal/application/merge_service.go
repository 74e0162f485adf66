package application

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/complykit/complykit/internal/domain"
	"github.com/go-logr/logr"
)

// MergeService merges per-project analyzer results into one AnalyzerResult:
// read each file → normalize declared licenses → merge with the builder.
type MergeService struct {
	reader    domain.ResultReader
	processor domain.LicenseProcessor
	log       logr.Logger
	clock     func() time.Time
}

func NewMergeService(reader domain.ResultReader, processor domain.LicenseProcessor, log logr.Logger) *MergeService {
	return &MergeService{
		reader:    reader,
		processor: processor,
		log:       log,
		clock:     time.Now,
	}
}

// WithClock overrides the time source of issues raised while merging.
func (s *MergeService) WithClock(clock func() time.Time) *MergeService {
	s.clock = clock
	return s
}

// Merge reads the given files, or every result file inside the given
// directories, and merges them in path order. Merge conflicts become issues
// in the result; only unreadable input fails the merge.
func (s *MergeService) Merge(paths []string) (*domain.AnalyzerResult, error) {
	// 1. Expand directories into result files
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no analyzer result files found in %s", strings.Join(paths, ", "))
	}

	builder := domain.NewAnalyzerResultBuilder(domain.WithLogger(s.log), domain.WithClock(s.clock))

	for _, f := range files {
		// 2. Read the project result
		result, err := s.reader.ReadProjectResult(f)
		if err != nil {
			return nil, fmt.Errorf("reading project result: %w", err)
		}

		// 3. Normalize declared licenses
		if s.processor != nil {
			s.processLicenses(&result)
		}

		s.log.V(1).Info("merging project result", "file", f, "project", result.Project.ID.Coordinates(),
			"packages", len(result.Packages))
		builder.AddResult(result)
	}

	// 4. Build the merged graph
	merged := builder.Build()
	s.log.Info("merged analyzer results", "files", len(files), "projects", len(merged.Projects),
		"packages", len(merged.Packages))
	return &merged, nil
}

func (s *MergeService) processLicenses(result *domain.ProjectAnalyzerResult) {
	result.Project.DeclaredLicensesProcessed = s.processor.Process(result.Project.DeclaredLicenses)
	for i := range result.Packages {
		pkg := &result.Packages[i].Package
		pkg.DeclaredLicensesProcessed = s.processor.Process(pkg.DeclaredLicenses)
	}
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", p, err)
		}
		var inDir []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yml", ".yaml", ".json":
				inDir = append(inDir, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(inDir)
		files = append(files, inDir...)
	}
	return files, nil
}
