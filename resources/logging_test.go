package resources

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/activecm/connlog/config"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevels(t *testing.T) {
	testCases := []struct {
		level int
		out   log.Level
		msg   string
	}{
		{3, log.DebugLevel, "debug"},
		{2, log.InfoLevel, "info"},
		{1, log.WarnLevel, "warn"},
		{0, log.ErrorLevel, "error"},
		{-4, log.ErrorLevel, "out of range falls back to error"},
	}

	for _, testCase := range testCases {
		logger := initLogger(&config.LogStaticCfg{LogLevel: testCase.level}, new(bytes.Buffer))
		assert.Equal(t, testCase.out, logger.Level, testCase.msg)
	}
}

func TestAddFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger := initLogger(&config.LogStaticCfg{LogLevel: 2}, new(bytes.Buffer))
	require.Nil(t, addFileLogger(logger, dir))

	logger.WithFields(log.Fields{"address": "203.0.113.5"}).Info("connection logged")

	matches, err := filepath.Glob(filepath.Join(dir, "*", "info.log"))
	require.Nil(t, err)
	require.Len(t, matches, 1)

	contents, err := os.ReadFile(matches[0])
	require.Nil(t, err)
	assert.Contains(t, string(contents), "connection logged")
	assert.Contains(t, string(contents), "203.0.113.5")
}

func TestInitTestResources(t *testing.T) {
	res, out := InitTestResources(t)
	res.Log.Debug("hello")
	assert.Contains(t, out.String(), "hello")
	assert.True(t, filepath.IsAbs(res.Config.S.Storage.Directory))
}
