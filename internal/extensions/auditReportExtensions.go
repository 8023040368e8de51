package extensions

import (
	"errors"
	"fmt"

	"github.com/RobsonDevCode/lockaudit/internal/analyzer"
	scannermodels "github.com/RobsonDevCode/lockaudit/internal/scanner/models"
)

// MapAuditReport drains the worker channel into a report, separating scanned,
// failed and skipped lockfiles. Workers that lost the race with a mid-run
// disable come back with a disabled-stage error and are mapped to skipped.
func MapAuditReport(results chan scannermodels.ConcurrentAuditResult) scannermodels.AuditReport {
	var report scannermodels.AuditReport

	for result := range results {
		if result.Skipped {
			report.Skipped = append(report.Skipped, scannermodels.SkippedLockfile{
				DisplayName: result.Record.DisplayName,
				FilePath:    result.Record.FilePath,
				Reason:      result.Reason,
			})
			continue
		}

		if result.Err != nil {
			stage := ""
			var analysisErr *analyzer.AnalysisError
			if errors.As(result.Err, &analysisErr) {
				stage = analysisErr.Stage
			}

			if stage == analyzer.StageDisabled {
				report.Skipped = append(report.Skipped, scannermodels.SkippedLockfile{
					DisplayName: result.Record.DisplayName,
					FilePath:    result.Record.FilePath,
					Reason:      result.Err.Error(),
				})
				continue
			}

			report.Failed = append(report.Failed, scannermodels.FailedLockfileScan{
				DisplayName: result.Record.DisplayName,
				FilePath:    result.Record.FilePath,
				Stage:       stage,
				Error:       result.Err,
			})
			continue
		}

		report.Scanned = append(report.Scanned, result.Record)
		fmt.Printf("\nSuccessfully audited %s", result.Record.DisplayName)
	}

	return report
}
