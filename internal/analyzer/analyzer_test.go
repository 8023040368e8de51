package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"github.com/RobsonDevCode/lockaudit/internal/clients"
	"github.com/RobsonDevCode/lockaudit/internal/configuration"
	auditextractionservice "github.com/RobsonDevCode/lockaudit/internal/services/auditExtractionService"
	manifestreaderservice "github.com/RobsonDevCode/lockaudit/internal/services/manifestReaderService"
	cmdmodels "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/models"
	yarncommands "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/yarnCommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeYarnCommands struct {
	mu            sync.Mutex
	probeExitCode int
	probeErr      error
	auditResult   cmdmodels.ProcessResult
	auditErr      error
	auditCalls    int
}

func (f *fakeYarnCommands) RunAudit(dir string, skipDevDependencies bool, ctx context.Context) (cmdmodels.ProcessResult, error) {
	f.mu.Lock()
	f.auditCalls++
	f.mu.Unlock()
	if f.auditErr != nil {
		return cmdmodels.ProcessResult{}, f.auditErr
	}
	return f.auditResult, nil
}

func (f *fakeYarnCommands) Probe(ctx context.Context) (int, error) {
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return f.probeExitCode, nil
}

func (f *fakeYarnCommands) AuditCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auditCalls
}

// lockfileDir writes a package.json declaring lodash ^4.17.0 and returns the
// lockfile path inside the directory.
func lockfileDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `{"name":"demo","version":"1.0.0","dependencies":{"lodash":"^4.17.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644))
	return filepath.Join(dir, "yarn.lock")
}

func lodashAuditStdout(t *testing.T) string {
	t.Helper()
	embedded := `{"name":"demo","install":[],"remove":[],` +
		`"requires":{"lodash":"^4.17.0"},` +
		`"dependencies":{"lodash":{"version":"4.17.0","integrity":"sha512-abc"}}}`
	line, err := json.Marshal(map[string]string{"type": "verbose", "data": "Audit Request: " + embedded})
	require.NoError(t, err)
	return `{"type":"step","data":"Auditing packages"}` + "\n" + string(line) + "\n"
}

func advisoryServer(t *testing.T, vulnerableRange string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"advisories":{"1065":{"id":1065,"module_name":"lodash",`+
			`"vulnerable_versions":%q,"patched_versions":">=4.17.21",`+
			`"severity":"high","title":"Command Injection in lodash"}}}`, vulnerableRange)
	}))
}

func newAnalyzerAgainst(t *testing.T, yarnCmds yarncommands.YarnCommandService, baseUrl string) *AuditAnalyzer {
	t.Helper()
	advisoryClient, err := clients.NewAdvisoryClient(&configuration.Config{
		AdvisoryClientSettings: configuration.AdvisoryClientSettings{BaseUrl: baseUrl, TimeoutSeconds: 5},
	})
	require.NoError(t, err)
	return NewAuditAnalyzer(yarnCmds, advisoryClient, manifestreaderservice.NewManifestReader())
}

func TestProbe_EnablesOnExitZero(t *testing.T) {
	auditAnalyzer := newAnalyzerAgainst(t, &fakeYarnCommands{probeExitCode: 0}, "http://localhost")

	require.NoError(t, auditAnalyzer.Probe(context.Background()))
	assert.Equal(t, Enabled, auditAnalyzer.State())
}

func TestProbe_DisablesOnExit127(t *testing.T) {
	auditAnalyzer := newAnalyzerAgainst(t, &fakeYarnCommands{probeExitCode: 127}, "http://localhost")

	err := auditAnalyzer.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, Disabled, auditAnalyzer.State())

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, StageProbe, analysisErr.Stage)
}

func TestProbe_AnyNonZeroExitDisables(t *testing.T) {
	auditAnalyzer := newAnalyzerAgainst(t, &fakeYarnCommands{probeExitCode: 1}, "http://localhost")

	require.Error(t, auditAnalyzer.Probe(context.Background()))
	assert.Equal(t, Disabled, auditAnalyzer.State())
}

func TestProbe_DisablesOnLaunchFailure(t *testing.T) {
	yarnCmds := &fakeYarnCommands{
		probeErr: fmt.Errorf("%w: starting yarn: executable not found", yarncommands.ErrProcessLaunch),
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, "http://localhost")

	err := auditAnalyzer.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, Disabled, auditAnalyzer.State())

	// no audit invocations happen once the probe has failed
	record := &analyzermodels.DependencyRecord{FilePath: "/proj/yarn.lock", DisplayName: "yarn.lock"}
	analyzeErr := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())
	require.Error(t, analyzeErr)
	var analysisErr *AnalysisError
	require.ErrorAs(t, analyzeErr, &analysisErr)
	assert.Equal(t, StageDisabled, analysisErr.Stage)
	assert.Equal(t, 0, yarnCmds.AuditCalls())
}

func TestAnalyze_AttachesEvidenceInsideVulnerableRange(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{
			ExitCode: 1,
			Stdout:   lodashAuditStdout(t),
			Stderr:   auditextractionservice.ExpectedOfflineError,
		},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	require.NoError(t, auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background()))

	require.Len(t, record.Evidence, 1)
	assert.Equal(t, "lodash", record.Evidence[0].ModuleName)
	assert.Equal(t, "4.17.0", record.Evidence[0].InstalledVersion)
	assert.Equal(t, "<4.17.21", record.Evidence[0].VulnerableRange)
	assert.Equal(t, Enabled, auditAnalyzer.State())
}

func TestAnalyze_NoEvidenceOutsideVulnerableRange(t *testing.T) {
	server := advisoryServer(t, "<4.17.0")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: lodashAuditStdout(t)},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	require.NoError(t, auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background()))

	assert.Empty(t, record.Evidence)
}

// captureStdout redirects os.Stdout for the duration of fn and returns what
// was written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = writer
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, writer.Close())
	captured, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(captured)
}

func TestAnalyze_NonBenignStderrIsDiagnosticOnly(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{
			ExitCode: 1,
			Stdout:   lodashAuditStdout(t),
			Stderr:   "warning: something odd\n",
		},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	output := captureStdout(t, func() {
		require.NoError(t, auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{Verbose: true}, context.Background()))
	})

	// unexpected stderr alone never fails the analysis
	require.Len(t, record.Evidence, 1)
	assert.Equal(t, Enabled, auditAnalyzer.State())
	assert.Contains(t, output, "warning: something odd")

	// without verbose the diagnostic stays quiet but the analysis still runs
	record = &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	output = captureStdout(t, func() {
		require.NoError(t, auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background()))
	})
	assert.NotContains(t, output, "warning: something odd")
	require.Len(t, record.Evidence, 1)
}

func TestAnalyze_MissingAuditRequestIsLocalFailure(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: `{"type":"info","data":"nothing here"}` + "\n"},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.ErrorIs(t, err, auditextractionservice.ErrAuditRequestNotFound)
	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, StageExtract, analysisErr.Stage)
	// a malformed lockfile output is not evidence the tool is broken
	assert.Equal(t, Enabled, auditAnalyzer.State())
}

func TestAnalyze_MissingManifestIsLocalFailure(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: lodashAuditStdout(t)},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	// no package.json in this directory
	record := &analyzermodels.DependencyRecord{
		FilePath:    filepath.Join(t.TempDir(), "yarn.lock"),
		DisplayName: "yarn.lock",
	}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.Error(t, err)
	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, StageManifest, analysisErr.Stage)
	assert.Equal(t, Enabled, auditAnalyzer.State())
}

func TestAnalyze_TransportFailureDisables(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	server.Close() // unreachable

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: lodashAuditStdout(t)},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.ErrorIs(t, err, clients.ErrTransport)
	assert.Equal(t, Disabled, auditAnalyzer.State())
}

func TestAnalyze_ResponseSchemaFailureKeepsEnabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: lodashAuditStdout(t)},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.ErrorIs(t, err, clients.ErrResponseSchema)
	assert.Equal(t, Enabled, auditAnalyzer.State())
}

func TestAnalyze_LaunchFailureDisables(t *testing.T) {
	yarnCmds := &fakeYarnCommands{
		auditErr: fmt.Errorf("%w: starting yarn: executable vanished", yarncommands.ErrProcessLaunch),
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, "http://localhost")
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: "/proj/yarn.lock", DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.ErrorIs(t, err, yarncommands.ErrProcessLaunch)
	assert.Equal(t, Disabled, auditAnalyzer.State())
}

func TestAnalyze_InterruptionPropagatesWithoutDisabling(t *testing.T) {
	yarnCmds := &fakeYarnCommands{
		auditErr: fmt.Errorf("%w: yarn: %w", yarncommands.ErrProcessInterrupted, context.Canceled),
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, "http://localhost")
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	record := &analyzermodels.DependencyRecord{FilePath: "/proj/yarn.lock", DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.ErrorIs(t, err, yarncommands.ErrProcessInterrupted)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Enabled, auditAnalyzer.State(), "cancellation does not decide the capability")
}

func TestAnalyze_SuccessfulCallNeverReenables(t *testing.T) {
	server := advisoryServer(t, "<4.17.21")
	defer server.Close()

	yarnCmds := &fakeYarnCommands{
		auditResult: cmdmodels.ProcessResult{ExitCode: 1, Stdout: lodashAuditStdout(t)},
	}
	auditAnalyzer := newAnalyzerAgainst(t, yarnCmds, server.URL)
	require.NoError(t, auditAnalyzer.Probe(context.Background()))

	auditAnalyzer.lifecycle.Disable("flaky network earlier in the run")

	record := &analyzermodels.DependencyRecord{FilePath: lockfileDir(t), DisplayName: "yarn.lock"}
	err := auditAnalyzer.Analyze(record, analyzermodels.AuditOptions{}, context.Background())

	require.Error(t, err)
	assert.Equal(t, Disabled, auditAnalyzer.State())
	assert.True(t, errors.As(err, new(*AnalysisError)))
}
