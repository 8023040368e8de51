package main

import (
	"fmt"

	"github.com/RobsonDevCode/lockaudit/cmd"
	"github.com/RobsonDevCode/lockaudit/internal/analyzer"
	cache "github.com/RobsonDevCode/lockaudit/internal/caching"
	client "github.com/RobsonDevCode/lockaudit/internal/clients"
	"github.com/RobsonDevCode/lockaudit/internal/configuration"
	scannerService "github.com/RobsonDevCode/lockaudit/internal/scanner"
	manifestreaderservice "github.com/RobsonDevCode/lockaudit/internal/services/manifestReaderService"
	yarncommands "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/yarnCommands"
)

func main() {

	config, err := configuration.Load()
	if err != nil {
		fmt.Printf("error starting command line: %s", err.Error())
		return
	}

	advisoryClient, err := client.NewAdvisoryClient(config)
	if err != nil {
		fmt.Printf("error starting command line: %s", err.Error())
		return
	}

	cacheInstance := cache.Cache{}
	yarnExecutor := yarncommands.NewYarnCommandExecutor(&cacheInstance)
	manifestReader := manifestreaderservice.NewManifestReader()
	auditAnalyzer := analyzer.NewAuditAnalyzer(yarnExecutor, advisoryClient, manifestReader)
	auditScanner := scannerService.NewScanner(auditAnalyzer)

	// cant DI directly into the command so we use a setter
	cmd.SetScanner(auditScanner)
	cmd.SetConfig(config)
	cmd.Execute()
}
