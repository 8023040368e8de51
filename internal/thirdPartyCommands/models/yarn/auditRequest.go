package yarnmodels

// AuditRequest is the registry query yarn would have sent for `yarn audit`.
// In offline mode the request never leaves the machine but yarn still logs it
// in the verbose output, which is where we recover it from.
type AuditRequest struct {
	Name         string                     `json:"name,omitempty"`
	Version      string                     `json:"version,omitempty"`
	Install      []string                   `json:"install"`
	Remove       []string                   `json:"remove"`
	Metadata     map[string]interface{}     `json:"metadata,omitempty"`
	Requires     map[string]string          `json:"requires"`
	Dependencies map[string]AuditDependency `json:"dependencies"`
}

type AuditDependency struct {
	Version   string            `json:"version"`
	Integrity string            `json:"integrity,omitempty"`
	Requires  map[string]string `json:"requires,omitempty"`
	Dev       bool              `json:"dev,omitempty"`
}
