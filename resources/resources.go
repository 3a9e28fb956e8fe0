package resources

import (
	"fmt"
	"os"

	"github.com/activecm/connlog/config"
	log "github.com/sirupsen/logrus"
)

type (
	// Resources provides a data structure for passing system Resources
	Resources struct {
		Config *config.Config
		Log    *log.Logger
	}
)

// InitResources grabs the configuration file and intitializes the configuration data
// returning a *Resources object which has all of the necessary configuration information
func InitResources(userConfig string) (*Resources, error) {
	conf, err := config.LoadConfig(userConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Fire up the logging system
	log := initLogger(&conf.S.Log, os.Stderr)

	if conf.S.Log.LogToFile {
		if err := addFileLogger(log, conf.S.Log.LogPath); err != nil {
			return nil, fmt.Errorf("failed to start file logging in %s: %w", conf.S.Log.LogPath, err)
		}
	}

	//bundle up the system resources
	r := &Resources{
		Config: conf,
		Log:    log,
	}
	return r, nil
}
