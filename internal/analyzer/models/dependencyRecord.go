package analyzermodels

// DependencyRecord identifies one lockfile under analysis. The engine owns
// the identity fields, analyzers only ever append to the evidence collection.
type DependencyRecord struct {
	FilePath    string
	DisplayName string
	Evidence    []VulnerabilityEvidence
}

func (d *DependencyRecord) AddEvidence(evidence VulnerabilityEvidence) {
	d.Evidence = append(d.Evidence, evidence)
}

// VulnerabilityEvidence is one advisory matched against a resolved module in
// the lockfile.
type VulnerabilityEvidence struct {
	ModuleName       string
	InstalledVersion string
	VulnerableRange  string
	PatchedRange     string
	Severity         string
	Title            string
	Url              string
	Identifiers      []string
	RiskScore        int
}
