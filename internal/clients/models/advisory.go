package models

// Advisory is one vulnerability record returned by the advisory service.
type Advisory struct {
	ID                 int      `json:"id"`
	ModuleName         string   `json:"module_name"`
	VulnerableVersions string   `json:"vulnerable_versions"`
	PatchedVersions    string   `json:"patched_versions"`
	Severity           string   `json:"severity"`
	Title              string   `json:"title"`
	Overview           string   `json:"overview"`
	Recommendation     string   `json:"recommendation"`
	Url                string   `json:"url"`
	CVEs               []string `json:"cves"`
	GithubAdvisoryId   string   `json:"github_advisory_id"`
}

// AdvisoriesResponse is the object form of the advisory service response,
// advisories keyed by their numeric id.
type AdvisoriesResponse struct {
	Advisories map[string]Advisory `json:"advisories"`
}
