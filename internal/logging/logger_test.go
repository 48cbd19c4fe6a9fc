package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"collabtask/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	logger := logging.New(logging.Options{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger = logging.New(logging.Options{Level: "debug"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "collabtask.log")

	logger := logging.New(logging.Options{Level: "info", File: path})
	logger.WithField("task_id", "abc").Info("task created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "task created")
	assert.Contains(t, string(data), "task_id=abc")
}
