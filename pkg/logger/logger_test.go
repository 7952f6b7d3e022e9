package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("production writes json", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "production", "info")
		log.Info("listing created", "listing_id", 7)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "listing created", line["msg"])
		assert.EqualValues(t, 7, line["listing_id"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "development", "warn")
		log.Debug("hidden")
		log.Info("hidden too")
		assert.Empty(t, buf.String())

		log.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}
