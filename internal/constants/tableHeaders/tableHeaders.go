package tableHeaders

var FindingsTableHeaders = []string{
	"Lockfile",
	"Module",
	"Installed",
	"Severity",
	"Vulnerable Range",
	"Patched In",
	"Advisory",
	"Identifiers",
	"Url",
}
