package cmd

import (
	"fmt"
	"os"

	"github.com/RobsonDevCode/lockaudit/internal/configuration"
	scannerService "github.com/RobsonDevCode/lockaudit/internal/scanner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lockaudit",
	Short: "lockaudit checks yarn lockfiles for known vulnerable dependencies",
	Long: `lockaudit recovers the audit request yarn would have sent to the registry,
		   submits it to the advisory service and reports every resolved dependency
		   whose version falls inside a known vulnerable range.`,
}

var auditScanner scannerService.ScannerService
var config *configuration.Config

// cant DI directly into the command so we use setters
func SetScanner(scanner scannerService.ScannerService) {
	auditScanner = scanner
}

func SetConfig(c *configuration.Config) {
	config = c
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(color.RedString(err.Error()))
		os.Exit(1)
	}
}
