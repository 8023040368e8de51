package excelexportservice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/RobsonDevCode/lockaudit/internal/constants/exportExcelOptions"
	"github.com/RobsonDevCode/lockaudit/internal/constants/tableHeaders"
	scannermodels "github.com/RobsonDevCode/lockaudit/internal/scanner/models"
	"github.com/xuri/excelize/v2"
)

const saveFileTo = "./export"
const findingsSheetName = "Vulnerable Dependencies"

func ExportFindingsTable(rows []scannermodels.FindingRow) error {
	if err := os.MkdirAll(saveFileTo, 0755); err != nil {
		return fmt.Errorf("error creating directory %s, %w", saveFileTo, err)
	}

	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", findingsSheetName)
	for i, header := range tableHeaders.FindingsTableHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(findingsSheetName, cell, header)
	}

	for i, finding := range rows {
		row := i + 2 // excel is 1 indexed and row 1 holds the headers

		rowData := []interface{}{
			finding.Lockfile,
			finding.ModuleName,
			finding.InstalledVersion,
			finding.Severity,
			finding.VulnerableRange,
			finding.PatchedRange,
			finding.Title,
			strings.Join(finding.Identifiers, ", "),
			finding.Url,
		}

		file.SetSheetRow(findingsSheetName, fmt.Sprintf("A%d", row), &rowData)
	}

	fileName := fmt.Sprintf("lockaudit_findings_%s.xlsx", time.Now().Format("2006-01-02T15-04-05"))
	fullPath := filepath.Join(saveFileTo, fileName)

	if err := file.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save excel to %s, %w", fullPath, err)
	}

	fmt.Printf("Your file has been saved to: %s", fullPath)

	return nil
}

func SelectExportFindingsToExcel() (string, error) {

	prompt := &survey.Select{
		Message: "Export Findings Table",
		Options: exportExcelOptions.ExcelOptions,
	}

	var selectedIndex int
	err := survey.AskOne(prompt, &selectedIndex)
	if err != nil {
		fmt.Print("selection cancelled")
		return "", fmt.Errorf("selection error: %w", err)
	}

	return exportExcelOptions.ExcelOptions[selectedIndex], nil
}
