package logfields

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrsRenderCanonicalNames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("toggle", Key("2024-06-01-run"), Value(true), Summary(2, 1, 50), Error(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "2024-06-01-run", rec[KeyKey])
	assert.Equal(t, true, rec[KeyValue])
	assert.Equal(t, "boom", rec[KeyError])
	stats, ok := rec["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, stats[KeyTotal])
	assert.EqualValues(t, 50, stats[KeyRate])
}

func TestErrorNil(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
}
