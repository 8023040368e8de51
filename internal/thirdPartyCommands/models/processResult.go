package cmdmodels

// ProcessResult holds the fully drained output of a finished process.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
