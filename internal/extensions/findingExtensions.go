package extensions

import (
	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	scannermodels "github.com/RobsonDevCode/lockaudit/internal/scanner/models"
)

func FlattenFindings(scanned []*analyzermodels.DependencyRecord) []scannermodels.FindingRow {
	var rows []scannermodels.FindingRow

	for _, record := range scanned {
		for _, evidence := range record.Evidence {
			rows = append(rows, scannermodels.FindingRow{
				Lockfile:         record.DisplayName,
				ModuleName:       evidence.ModuleName,
				InstalledVersion: evidence.InstalledVersion,
				Severity:         evidence.Severity,
				RiskScore:        evidence.RiskScore,
				VulnerableRange:  evidence.VulnerableRange,
				PatchedRange:     evidence.PatchedRange,
				Title:            evidence.Title,
				Url:              evidence.Url,
				Identifiers:      evidence.Identifiers,
			})
		}
	}

	return rows
}
