package logger

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"car-rental-api/internal/core/config"
)

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, done := New("loud", true)
	defer done()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, done := FromConfig(config.Log{
		Level: "debug",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: path, MaxSizeMB: 1},
	})
	l.Info("booking created", zap.String("booking_id", "b1"))
	done()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"booking_id":"b1"`)
}

func TestToStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	std := ToStdLogger(zap.New(core), zapcore.WarnLevel)
	std.Print("slow sql")

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.True(t, strings.Contains(e.Message, "slow sql"))
}

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := RedirectStdLog(zap.New(core))
	log.Print("from std")
	undo()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "from std", logs.All()[0].Message)
}
