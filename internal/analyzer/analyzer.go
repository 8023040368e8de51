package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"github.com/RobsonDevCode/lockaudit/internal/clients"
	auditextractionservice "github.com/RobsonDevCode/lockaudit/internal/services/auditExtractionService"
	manifestreaderservice "github.com/RobsonDevCode/lockaudit/internal/services/manifestReaderService"
	payloadbuilderservice "github.com/RobsonDevCode/lockaudit/internal/services/payloadBuilderService"
	resultmapperservice "github.com/RobsonDevCode/lockaudit/internal/services/resultMapperService"
	yarncommands "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/yarnCommands"
	"github.com/fatih/color"
)

type AuditAnalyzerService interface {
	Probe(ctx context.Context) error
	Analyze(record *analyzermodels.DependencyRecord, options analyzermodels.AuditOptions, ctx context.Context) error
	State() LifecycleState
	DisabledReason() string
}

type AuditAnalyzer struct {
	yarnCmds       yarncommands.YarnCommandService
	advisoryClient clients.AdvisoryClientService
	manifestReader manifestreaderservice.ManifestReaderService
	auditExtractor auditextractionservice.AuditExtractionService
	payloadBuilder payloadbuilderservice.PayloadBuilderService
	resultMapper   resultmapperservice.ResultMapperService
	lifecycle      *Lifecycle
}

func NewAuditAnalyzer(yarnCmds yarncommands.YarnCommandService,
	advisoryClient clients.AdvisoryClientService,
	manifestReader manifestreaderservice.ManifestReaderService) *AuditAnalyzer {
	return &AuditAnalyzer{
		yarnCmds:       yarnCmds,
		advisoryClient: advisoryClient,
		manifestReader: manifestReader,
		auditExtractor: auditextractionservice.NewAuditExtractor(),
		payloadBuilder: payloadbuilderservice.NewPayloadBuilder(),
		resultMapper:   resultmapperservice.NewResultMapper(),
		lifecycle:      NewLifecycle(),
	}
}

func (a *AuditAnalyzer) State() LifecycleState {
	return a.lifecycle.State()
}

func (a *AuditAnalyzer) DisabledReason() string {
	return a.lifecycle.DisabledReason()
}

// Probe checks the yarn executable once at startup. Exit code 0 enables the
// capability, a missing executable or any non-zero exit disables it for the
// remainder of the run and the failure is surfaced as a hard error so the
// caller can decide whether to continue without audits.
func (a *AuditAnalyzer) Probe(ctx context.Context) error {
	switch a.lifecycle.State() {
	case Enabled:
		return nil
	case Disabled:
		return &AnalysisError{
			Stage: StageProbe,
			Err:   fmt.Errorf("audit capability already disabled: %s", a.lifecycle.DisabledReason()),
		}
	}

	exitCode, err := a.yarnCmds.Probe(ctx)
	if err != nil {
		if errors.Is(err, yarncommands.ErrProcessInterrupted) {
			// cancellation does not decide the capability
			return err
		}
		a.lifecycle.Disable("yarn executable was not found")
		return &AnalysisError{Stage: StageProbe, Err: err}
	}

	// any non-zero exit is treated the same as the executable being absent
	if exitCode != 0 {
		a.lifecycle.Disable("yarn executable was not found")
		return &AnalysisError{Stage: StageProbe, Err: fmt.Errorf("yarn --help exited with code %d", exitCode)}
	}

	a.lifecycle.Enable()
	return nil
}

// Analyze runs the full pipeline for one lockfile record: offline audit,
// request extraction, payload build, advisory lookup, evidence mapping.
// Failures local to the lockfile keep the capability enabled, launch and
// transport failures disable it for the rest of the run.
func (a *AuditAnalyzer) Analyze(record *analyzermodels.DependencyRecord,
	options analyzermodels.AuditOptions, ctx context.Context) error {

	if state := a.lifecycle.State(); state != Enabled {
		return &AnalysisError{
			Lockfile: record.FilePath,
			Stage:    StageDisabled,
			Err:      fmt.Errorf("audit capability is %s: %s", state, a.lifecycle.DisabledReason()),
		}
	}

	audit, err := a.yarnCmds.RunAudit(filepath.Dir(record.FilePath), options.SkipDevDependencies, ctx)
	if err != nil {
		if errors.Is(err, yarncommands.ErrProcessInterrupted) {
			return err
		}
		a.lifecycle.Disable(fmt.Sprintf("yarn could not be launched: %v", err))
		return &AnalysisError{Lockfile: record.FilePath, Stage: StageAudit, Err: err}
	}

	// stderr alone never fails the audit, anything beyond the expected
	// offline line is surfaced as a diagnostic
	if audit.Stderr != "" && !a.auditExtractor.IsExpectedOfflineError(audit.Stderr) {
		if options.Verbose {
			fmt.Printf("%s %s\n", color.YellowString("yarn audit stderr for %s:", record.FilePath), audit.Stderr)
		}
	}

	request, err := a.auditExtractor.ExtractAuditRequest(audit.Stdout)
	if err != nil {
		return &AnalysisError{Lockfile: record.FilePath, Stage: StageExtract, Err: err}
	}

	manifest, err := a.manifestReader.ReadManifest(record.FilePath, ctx)
	if err != nil {
		return &AnalysisError{Lockfile: record.FilePath, Stage: StageManifest, Err: err}
	}

	payload, index, err := a.payloadBuilder.BuildPayload(request, manifest, options.SkipDevDependencies)
	if err != nil {
		return &AnalysisError{Lockfile: record.FilePath, Stage: StagePayload, Err: err}
	}

	advisories, err := a.advisoryClient.SubmitPayload(payload, ctx)
	if err != nil {
		if errors.Is(err, clients.ErrTransport) || errors.Is(err, clients.ErrAuthOrQuota) {
			// systemic unreachability, stop attempting audits this run
			a.lifecycle.Disable(fmt.Sprintf("advisory service unreachable: %v", err))
		}
		return &AnalysisError{Lockfile: record.FilePath, Stage: StageAdvisory, Err: err}
	}

	a.resultMapper.MapAdvisories(advisories, index, record)
	return nil
}
