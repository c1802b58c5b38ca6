package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "node", "node[1]")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "circles", line["app"])
	assert.Equal(t, "node[1]", line["node"])
	assert.NotContains(t, line, "source")

	buf.Reset()
	newLogger("bogus", "text", &buf).Debug("dropped")
	assert.Empty(t, buf.String(), "unknown levels fall back to info")

	buf.Reset()
	newLogger("debug", "text", &buf).Debug("kept")
	assert.Contains(t, buf.String(), "msg=kept")
	assert.Contains(t, buf.String(), "source=")
}
