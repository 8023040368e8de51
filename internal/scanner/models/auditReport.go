package scannermodels

import (
	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
)

// AuditReport is the outcome of one scan. Skipped lockfiles are kept apart
// from clean ones, a lockfile left unanalyzed because the capability was
// disabled is not the same as analyzed and found clean.
type AuditReport struct {
	Scanned []*analyzermodels.DependencyRecord
	Failed  []FailedLockfileScan
	Skipped []SkippedLockfile
}

type FailedLockfileScan struct {
	DisplayName string
	FilePath    string
	Stage       string
	Error       error
}

type SkippedLockfile struct {
	DisplayName string
	FilePath    string
	Reason      string
}

// ConcurrentAuditResult carries one worker's outcome back to the collector.
type ConcurrentAuditResult struct {
	Record  *analyzermodels.DependencyRecord
	Err     error
	Skipped bool
	Reason  string
}

// FindingRow is one flattened evidence entry ready for display or export.
type FindingRow struct {
	Lockfile         string
	ModuleName       string
	InstalledVersion string
	Severity         string
	RiskScore        int
	VulnerableRange  string
	PatchedRange     string
	Title            string
	Url              string
	Identifiers      []string
}
