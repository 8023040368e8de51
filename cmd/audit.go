package cmd

import (
	analyzermodels "github.com/RobsonDevCode/lockaudit/internal/analyzer/models"
	tablewriterservice "github.com/RobsonDevCode/lockaudit/internal/cmdLineWriters/tablewriter"
	"github.com/RobsonDevCode/lockaudit/internal/constants/exportExcelOptions"
	"github.com/RobsonDevCode/lockaudit/internal/extensions"
	excelexportservice "github.com/RobsonDevCode/lockaudit/internal/services/excelExportService"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit [path]",
	Short: "audit yarn lockfiles for dependency vulnerabilities",
	Long: `audit walks the given directory for yarn.lock files, recovers the audit
		   request yarn would have sent and checks it against the advisory service.

	       Defaults to the current directory when no path is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

var skipDevFlag bool
var verboseFlag bool

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	options := analyzermodels.AuditOptions{
		SkipDevDependencies: config.AuditSettings.SkipDevDependencies,
		Verbose:             config.AuditSettings.Verbose,
	}
	if cmd.Flags().Changed("skip-dev") {
		options.SkipDevDependencies = skipDevFlag
	}
	if cmd.Flags().Changed("verbose") {
		options.Verbose = verboseFlag
	}

	report, err := auditScanner.ScanLockfiles(root, options, ctx)
	if err != nil {
		return err
	}

	rows := extensions.FlattenFindings(report.Scanned)
	tablewriterservice.DisplayFindingsTable(rows)
	tablewriterservice.DisplayFailedScanTable(report.Failed)
	tablewriterservice.DisplaySkippedTable(report.Skipped)

	if len(rows) == 0 {
		return nil
	}

	choice, err := excelexportservice.SelectExportFindingsToExcel()
	if err != nil {
		return err
	}

	if choice == exportExcelOptions.Yes {
		if err := excelexportservice.ExportFindingsTable(rows); err != nil {
			return err
		}
	}

	return nil
}

func init() {
	auditCmd.Flags().BoolVarP(&skipDevFlag, "skip-dev", "s", false, "Exclude development-only dependencies from the audit")
	auditCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print diagnostic output from yarn invocations")

	rootCmd.AddCommand(auditCmd)
}
