package auditextractionservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	yarnmodels "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/models/yarn"
)

// no line in the verbose output carried the audit request, either yarn's
// output format changed or offline mode suppressed the audit entirely
var ErrAuditRequestNotFound = errors.New("audit request not found in verbose output")

const auditRequestMarker = "Audit Request"

// length of the "Audit Request: " prefix inside the log record's data field
const auditRequestPrefixLength = 15

// ExpectedOfflineError is the one stderr line yarn always emits when the
// offline audit cannot reach the registry, it is benign and never a failure.
const ExpectedOfflineError = "{\"type\":\"error\",\"data\":\"Can't make a request in " +
	"offline mode (\\\"https://registry.yarnpkg.com/-/npm/v1/security/audits\\\")\"}\n"

type AuditExtractionService interface {
	ExtractAuditRequest(stdout string) (yarnmodels.AuditRequest, error)
	IsExpectedOfflineError(stderr string) bool
}

type AuditExtractor struct{}

func NewAuditExtractor() *AuditExtractor {
	return &AuditExtractor{}
}

type verboseRecord struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// ExtractAuditRequest scans the verbose stdout for the first line carrying
// the audit request diagnostic record and parses the request embedded in it.
func (e *AuditExtractor) ExtractAuditRequest(stdout string) (yarnmodels.AuditRequest, error) {
	var markerLine string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, auditRequestMarker) {
			markerLine = line
			break
		}
	}
	if markerLine == "" {
		return yarnmodels.AuditRequest{}, ErrAuditRequestNotFound
	}

	var record verboseRecord
	if err := json.Unmarshal([]byte(markerLine), &record); err != nil {
		return yarnmodels.AuditRequest{}, fmt.Errorf("error unmarshalling verbose log record: %w", err)
	}

	if len(record.Data) <= auditRequestPrefixLength {
		return yarnmodels.AuditRequest{}, fmt.Errorf("verbose record data too short to hold an audit request: %q", record.Data)
	}
	embedded := record.Data[auditRequestPrefixLength:]

	var request yarnmodels.AuditRequest
	if err := json.Unmarshal([]byte(embedded), &request); err != nil {
		return yarnmodels.AuditRequest{}, fmt.Errorf("error unmarshalling embedded audit request: %w", err)
	}

	return request, nil
}

func (e *AuditExtractor) IsExpectedOfflineError(stderr string) bool {
	return stderr == ExpectedOfflineError
}
