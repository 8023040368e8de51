package scannerService

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/RobsonDevCode/lockaudit/internal/analyzer"
	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"github.com/RobsonDevCode/lockaudit/internal/extensions"
	scannermodels "github.com/RobsonDevCode/lockaudit/internal/scanner/models"
	"github.com/fatih/color"
)

const lockFileName = "yarn.lock"

type ScannerService interface {
	ScanLockfiles(root string, options analyzermodels.AuditOptions, ctx context.Context) (scannermodels.AuditReport, error)
}

type Scanner struct {
	analyzer analyzer.AuditAnalyzerService
}

func NewScanner(analyzer analyzer.AuditAnalyzerService) *Scanner {
	return &Scanner{
		analyzer: analyzer,
	}
}

// ScanLockfiles walks root for yarn.lock files and audits each one
// concurrently. A disabled capability never aborts the scan, the affected
// lockfiles are reported as skipped instead.
func (s *Scanner) ScanLockfiles(root string, options analyzermodels.AuditOptions, ctx context.Context) (scannermodels.AuditReport, error) {
	lockfiles, err := s.findLockfiles(root)
	if err != nil {
		return scannermodels.AuditReport{}, err
	}

	if len(lockfiles) == 0 {
		return scannermodels.AuditReport{}, fmt.Errorf("no %s files found under %s", lockFileName, root)
	}

	if probeErr := s.analyzer.Probe(ctx); probeErr != nil {
		if ctx.Err() != nil {
			return scannermodels.AuditReport{}, probeErr
		}
		fmt.Printf("%s\n", color.YellowString("yarn audit capability disabled: %v", probeErr))
	}

	results := make(chan scannermodels.ConcurrentAuditResult, len(lockfiles))
	var wg sync.WaitGroup

	for _, lockfile := range lockfiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			record := &analyzermodels.DependencyRecord{
				FilePath:    path,
				DisplayName: displayName(root, path),
			}

			if s.analyzer.State() != analyzer.Enabled {
				results <- scannermodels.ConcurrentAuditResult{
					Record:  record,
					Skipped: true,
					Reason:  s.analyzer.DisabledReason(),
				}
				return
			}

			if err := s.analyzer.Analyze(record, options, ctx); err != nil {
				results <- scannermodels.ConcurrentAuditResult{
					Record: record,
					Err:    err,
				}
				return
			}

			results <- scannermodels.ConcurrentAuditResult{Record: record}
		}(lockfile)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	report := extensions.MapAuditReport(results)

	if ctx.Err() != nil {
		return report, fmt.Errorf("scan was cancelled, %w", ctx.Err())
	}

	return report, nil
}

func (s *Scanner) findLockfiles(root string) ([]string, error) {
	var lockfiles []string

	walkErr := filepath.WalkDir(root, func(path string, dir fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking dir: %w", err)
		}

		if dir.IsDir() && dir.Name() == "node_modules" {
			return filepath.SkipDir
		}

		if !dir.IsDir() && dir.Name() == lockFileName {
			lockfiles = append(lockfiles, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return lockfiles, nil
}

func displayName(root string, path string) string {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return relative
}
