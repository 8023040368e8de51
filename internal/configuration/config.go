package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const FilePath = "configuration/configuration.yaml"

const defaultAdvisoryUrl = "https://registry.npmjs.org/-/npm/v1/security/audits"
const defaultTimeoutSeconds = 60

type Config struct {
	AdvisoryClientSettings AdvisoryClientSettings `yaml:"advisory_client_settings"`
	AuditSettings          AuditSettings          `yaml:"audit_settings"`
}

type AdvisoryClientSettings struct {
	BaseUrl        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AuditSettings struct {
	SkipDevDependencies bool `yaml:"skip_dev_dependencies"`
	Verbose             bool `yaml:"verbose"`
}

// Load reads the yaml configuration file, the tool still runs without one by
// falling back to the public npm audit endpoint.
func Load() (*Config, error) {
	data, err := os.ReadFile(FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	if config.AdvisoryClientSettings.BaseUrl == "" {
		config.AdvisoryClientSettings.BaseUrl = defaultAdvisoryUrl
	}
	if config.AdvisoryClientSettings.TimeoutSeconds == 0 {
		config.AdvisoryClientSettings.TimeoutSeconds = defaultTimeoutSeconds
	}

	return &config, nil
}

func Default() *Config {
	return &Config{
		AdvisoryClientSettings: AdvisoryClientSettings{
			BaseUrl:        defaultAdvisoryUrl,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}
