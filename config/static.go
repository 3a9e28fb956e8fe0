package config

import (
	"path/filepath"
	"reflect"

	yaml "gopkg.in/yaml.v2"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		Log      LogStaticCfg      `yaml:"LogConfig"`
		Storage  StorageStaticCfg  `yaml:"Storage"`
		Scan     ScanStaticCfg     `yaml:"Scan"`
		Resolver ResolverStaticCfg `yaml:"Resolver"`
		Version  string            `yaml:"-"`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel  int    `yaml:"LogLevel" default:"2"`
		LogPath   string `yaml:"LogPath" default:"/var/lib/connlog/logs"`
		LogToFile bool   `yaml:"LogToFile" default:"false"`
	}

	//StorageStaticCfg controls where scan logs and resolved reports are kept
	StorageStaticCfg struct {
		Directory       string `yaml:"Directory" default:"./"`
		FilePrefix      string `yaml:"FilePrefix" default:"log-"`
		FileExtension   string `yaml:"FileExtension" default:".txt"`
		FileIDScheme    string `yaml:"FileIDScheme" default:"random"`
		ReportDirectory string `yaml:"ReportDirectory" default:"resolved_files"`
	}

	//ScanStaticCfg is used to control the connection scanner
	ScanStaticCfg struct {
		// Interval and Window are given in seconds
		Interval           int      `yaml:"Interval" default:"10"`
		Window             int      `yaml:"Window" default:"120"`
		Retention          string   `yaml:"Retention" default:"window"`
		NonPublicPrefixes  []string `yaml:"NonPublicPrefixes" default:"[\"10.\", \"172.\", \"192.\", \"127.\"]"`
		StrictPublicFilter bool     `yaml:"StrictPublicFilter" default:"false"`
		NeverInclude       []string `yaml:"NeverInclude"`
		Command            []string `yaml:"Command" default:"[\"netstat\", \"-nutw\"]"`
		HeaderLines        int      `yaml:"HeaderLines" default:"6"`
		ResolveNames       bool     `yaml:"ResolveNames" default:"false"`
	}

	//ResolverStaticCfg contains the details for contacting the lookup api
	ResolverStaticCfg struct {
		APIURL string `yaml:"APIURL" default:"http://ipwho.is/"`
		// Timeout is given in seconds, 0 waits forever
		Timeout int `yaml:"Timeout" default:"0"`
	}
)

// parseStaticConfig deserializes yaml data into the static config and
// expands environment variables found in its strings
func parseStaticConfig(cfgFile []byte, config *StaticCfg) error {
	if err := yaml.Unmarshal(cfgFile, config); err != nil {
		return err
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	config.Log.LogPath = cleanPath(config.Log.LogPath)
	config.Storage.Directory = cleanPath(config.Storage.Directory)
	config.Storage.ReportDirectory = cleanPath(config.Storage.ReportDirectory)
	return nil
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}
