package resultmapperservice

import (
	"strconv"

	"github.com/Masterminds/semver/v3"
	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	"github.com/RobsonDevCode/lockaudit/internal/clients/models"
	riskscoreconstants "github.com/RobsonDevCode/lockaudit/internal/constants/riskScore"
)

type ResultMapperService interface {
	MapAdvisories(advisories []models.Advisory, index analyzermodels.DependencyVersionIndex,
		record *analyzermodels.DependencyRecord)
}

type ResultMapper struct{}

func NewResultMapper() *ResultMapper {
	return &ResultMapper{}
}

// MapAdvisories attaches evidence to the record for every advisory whose
// module resolves inside the vulnerable range. No match is not an error, the
// advisory simply contributes nothing. Identity fields are never touched.
func (m *ResultMapper) MapAdvisories(advisories []models.Advisory, index analyzermodels.DependencyVersionIndex,
	record *analyzermodels.DependencyRecord) {

	for _, advisory := range advisories {
		resolved, ok := index[advisory.ModuleName]
		if !ok {
			continue
		}

		version, err := semver.NewVersion(resolved)
		if err != nil {
			continue
		}

		vulnerableRange, err := semver.NewConstraint(advisory.VulnerableVersions)
		if err != nil {
			continue
		}

		if !vulnerableRange.Check(version) {
			continue
		}

		record.AddEvidence(analyzermodels.VulnerabilityEvidence{
			ModuleName:       advisory.ModuleName,
			InstalledVersion: resolved,
			VulnerableRange:  advisory.VulnerableVersions,
			PatchedRange:     advisory.PatchedVersions,
			Severity:         advisory.Severity,
			Title:            advisory.Title,
			Url:              advisory.Url,
			Identifiers:      identifiers(advisory),
			RiskScore:        riskScore(advisory.Severity),
		})
	}
}

func identifiers(advisory models.Advisory) []string {
	ids := make([]string, 0, len(advisory.CVEs)+1)
	if advisory.GithubAdvisoryId != "" {
		ids = append(ids, advisory.GithubAdvisoryId)
	}
	ids = append(ids, advisory.CVEs...)
	if len(ids) == 0 && advisory.ID != 0 {
		ids = append(ids, strconv.Itoa(advisory.ID))
	}
	return ids
}

func riskScore(severity string) int {
	switch severity {
	case "critical":
		return riskscoreconstants.Critical
	case "high":
		return riskscoreconstants.High
	case "moderate", "medium":
		return riskscoreconstants.Moderate
	case "low":
		return riskscoreconstants.Low
	default:
		return riskscoreconstants.Info
	}
}
