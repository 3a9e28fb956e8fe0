package resources

import (
	"bytes"
	"testing"

	"github.com/activecm/connlog/config"
)

// InitTestResources creates a default testing resource bundle whose scan logs
// land in a temporary directory. Log output is captured in the returned buffer.
func InitTestResources(t *testing.T) (*Resources, *bytes.Buffer) {
	t.Helper()

	conf, err := config.LoadTestingConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	out := new(bytes.Buffer)

	//bundle up the system resources
	r := &Resources{
		Config: conf,
		Log:    initLogger(&conf.S.Log, out),
	}
	return r, out
}
