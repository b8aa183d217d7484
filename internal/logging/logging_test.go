package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestStdLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriters("lighting", LevelInfo, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("player %s joined", "alice")
	l.Warnf("slow reload")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[lighting] INFO: player alice joined")
	assert.Contains(t, errOut.String(), "[lighting] WARN: slow reload")
	assert.False(t, l.DebugEnabled())

	l.SetLevel(LevelDebug)
	l.Debugf("shown")
	assert.True(t, l.DebugEnabled())
	assert.Contains(t, out.String(), "DEBUG: shown")

	l.SetLevel(LevelError)
	l.Warnf("dropped")
	assert.NotContains(t, errOut.String(), "dropped")
}
