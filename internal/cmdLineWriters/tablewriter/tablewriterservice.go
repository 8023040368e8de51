package tablewriterservice

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/RobsonDevCode/lockaudit/internal/constants/tableHeaders"
	"github.com/RobsonDevCode/lockaudit/internal/extensions"
	scannermodels "github.com/RobsonDevCode/lockaudit/internal/scanner/models"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func DisplayFindingsTable(rows []scannermodels.FindingRow) {
	if len(rows) == 0 {
		fmt.Print(color.GreenString("\n No Vulnerable Dependencies!\n"))
		return
	}

	slices.SortFunc(rows, func(a, b scannermodels.FindingRow) int {
		return b.RiskScore - a.RiskScore
	})

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap:  tw.WrapNormal,
					MergeMode: tw.MergeHierarchical}, //wrap long content like advisory titles
				Alignment:    tw.CellAlignment{Global: tw.AlignCenter},
				ColMaxWidths: tw.CellWidth{Global: 10},
			},
		}),
	)

	table.Header(tableHeaders.FindingsTableHeaders)

	for _, row := range rows {
		table.Append([]string{
			row.Lockfile,
			row.ModuleName,
			row.InstalledVersion,
			row.Severity,
			row.VulnerableRange,
			row.PatchedRange,
			extensions.TruncateString(row.Title, 50),
			strings.Join(row.Identifiers, ", "),
			row.Url,
		})
	}

	fmt.Printf("\n Found %d Vulnerable Dependencies: \n", len(rows))

	table.Render()
}

func DisplayFailedScanTable(failedScans []scannermodels.FailedLockfileScan) {
	if len(failedScans) == 0 {
		return
	}

	fmt.Printf("%s", color.RedString("\nFailed To Audit Lockfiles: \n"))
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap:  tw.WrapNormal,
					MergeMode: tw.MergeHierarchical},
				Alignment:    tw.CellAlignment{Global: tw.AlignCenter},
				ColMaxWidths: tw.CellWidth{Global: 10},
			},
		}),
	)

	table.Header([]string{"Lockfile", "Stage", "Error"})

	for _, failedScan := range failedScans {
		table.Append([]string{
			failedScan.DisplayName,
			failedScan.Stage,
			extensions.TruncateString(failedScan.Error.Error(), 500),
		})
	}

	table.Render()
}

func DisplaySkippedTable(skipped []scannermodels.SkippedLockfile) {
	if len(skipped) == 0 {
		return
	}

	fmt.Printf("%s", color.YellowString("\nLockfiles Not Analyzed (capability disabled): \n"))
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap:  tw.WrapNormal,
					MergeMode: tw.MergeHierarchical},
				Alignment:    tw.CellAlignment{Global: tw.AlignCenter},
				ColMaxWidths: tw.CellWidth{Global: 10},
			},
		}),
	)

	table.Header([]string{"Lockfile", "Reason"})

	for _, skippedScan := range skipped {
		table.Append([]string{
			skippedScan.DisplayName,
			extensions.TruncateString(skippedScan.Reason, 500),
		})
	}

	table.Render()
}
