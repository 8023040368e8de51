package analyzermodels

// ManifestDeclaration is the parsed package.json that sits next to the
// lockfile, declared ranges only, read-only input.
type ManifestDeclaration struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// DependencyVersionIndex maps module name to the resolved version for one
// analysis pass. It must come from the same pass that produced the payload,
// never reuse it across lockfiles.
type DependencyVersionIndex map[string]string

// AuditOptions are the per-run settings the engine passes down.
type AuditOptions struct {
	SkipDevDependencies bool
	Verbose             bool
}
