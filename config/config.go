package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"

	"github.com/creasty/defaults"
)

// Version is filled at compile time with the git version of connlog
var Version = "v0.0.0+undefined"

// globalConfigPath is consulted when neither a user nor a flag config exists
const globalConfigPath = "/etc/connlog/config.yaml"

type (
	//Config holds the configuration for the running system
	Config struct {
		R RunningCfg
		S StaticCfg
	}
)

// LoadConfig initializes a Config from the file at cfgPath. An empty cfgPath
// falls back to ~/.connlog/config.yaml, then the global config. If none of
// them exist the built in defaults are used.
func LoadConfig(cfgPath string) (*Config, error) {
	config := &Config{}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	path, err := findConfigFile(cfgPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		cfgFile, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := parseStaticConfig(cfgFile, &config.S); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	config.S.Version = Version

	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}

// findConfigFile returns the first existing config file in order of
// precedence. A missing explicit path is an error, missing defaults are not.
func findConfigFile(cfgPath string) (string, error) {
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err != nil {
			return "", err
		}
		return cfgPath, nil
	}

	candidates := []string{}
	if usr, err := user.Current(); err == nil {
		candidates = append(candidates, filepath.Join(usr.HomeDir, ".connlog", "config.yaml"))
	}
	candidates = append(candidates, globalConfigPath)

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// expandConfig expands environment variables in config strings
func expandConfig(reflected reflect.Value) {
	for i := 0; i < reflected.NumField(); i++ {
		f := reflected.Field(i)
		// process sub configs
		if f.Kind() == reflect.Struct {
			expandConfig(f)
		} else if f.Kind() == reflect.String {
			f.SetString(os.ExpandEnv(f.String()))
		} else if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
			strs := f.Interface().([]string)
			for i, str := range strs {
				strs[i] = os.ExpandEnv(str)
			}
			f.Set(reflect.ValueOf(strs))
		}
	}
}
