package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("chunk", &buf, WARN)

	l.Info("не должно попасть")
	l.Warn("тег отклонён: %d", 7)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть", "INFO ниже порога WARN")
	assert.Contains(t, out, "[WARN] [chunk] тег отклонён: 7")
}

func TestManagerRegisterAndLevels(t *testing.T) {
	var buf bytes.Buffer
	lm := GetLoggerManager()
	lm.Register("test-component", NewWriterLogger("test-component", &buf, INFO))

	l := GetComponentLogger("test-component")
	l.Debug("скрыто")
	require.NoError(t, lm.SetLogLevel("test-component", DEBUG, ERROR))
	l.Debug("видно")

	out := buf.String()
	assert.False(t, strings.Contains(out, "скрыто"))
	assert.True(t, strings.Contains(out, "видно"))

	assert.Error(t, lm.SetLogLevel("missing-component", DEBUG, DEBUG))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", TRACE.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, WARN, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestConfigureLevels(t *testing.T) {
	var buf bytes.Buffer
	lm := GetLoggerManager()
	lm.Register("levels-component", NewWriterLogger("levels-component", &buf, INFO))

	require.NoError(t, lm.ConfigureLevels(ERROR, "levels-component"))
	GetComponentLogger("levels-component").Warn("ниже порога")
	assert.Empty(t, buf.String(), "WARN ниже уровня ERROR")
}
