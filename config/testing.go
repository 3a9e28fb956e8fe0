package config

import (
	"github.com/creasty/defaults"
)

const testConfig = `
LogConfig:
    LogLevel: 3
    LogPath: null
    LogToFile: false
Storage:
    FilePrefix: log-
    FileExtension: .txt
    FileIDScheme: random
Scan:
    Interval: 10
    Window: 120
    Retention: window
    NonPublicPrefixes: ["10.", "172.", "192.", "127."]
    Command: ["netstat", "-nutw"]
    HeaderLines: 6
Resolver:
    APIURL: http://ipwho.is/
`

// LoadTestingConfig loads the hard coded testing config with the scan log
// and report directories pointed at dir
func LoadTestingConfig(dir string) (*Config, error) {
	config := &Config{}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	// Deserialize the yaml file contents into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	config.S.Storage.Directory = dir
	config.S.Storage.ReportDirectory = dir + "/resolved"
	config.S.Version = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
