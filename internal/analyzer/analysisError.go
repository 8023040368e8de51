package analyzer

import "fmt"

// pipeline stages, reported so the caller knows which part failed for which
// lockfile
const (
	StageProbe    = "probe"
	StageAudit    = "audit"
	StageExtract  = "extract"
	StageManifest = "manifest"
	StagePayload  = "payload"
	StageAdvisory = "advisory"
	StageDisabled = "disabled"
)

type AnalysisError struct {
	Lockfile string
	Stage    string
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Lockfile == "" {
		return fmt.Sprintf("audit analysis failed at %s stage: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("audit analysis failed at %s stage for %s: %v", e.Stage, e.Lockfile, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
