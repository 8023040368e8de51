package models

import (
	yarnmodels "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/models/yarn"
)

// AuditPayload is the canonical request body submitted to the advisory
// service, the recovered audit request cross referenced with the manifest.
type AuditPayload struct {
	Name         string                                `json:"name,omitempty"`
	Version      string                                `json:"version,omitempty"`
	Install      []string                              `json:"install"`
	Remove       []string                              `json:"remove"`
	Metadata     map[string]interface{}                `json:"metadata"`
	Requires     map[string]string                     `json:"requires"`
	Dependencies map[string]yarnmodels.AuditDependency `json:"dependencies"`
	// true when development-only modules were left out of the payload
	DevDependenciesExcluded bool `json:"dev"`
}
