package beamgo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/beamgo/core"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_SessionLifecycle(t *testing.T) {
	var buf bytes.Buffer
	dec, err := New(WithLogger(newBufferLogger(&buf, slog.LevelDebug)))
	require.NoError(t, err)

	s, err := dec.NewSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "session opened", lines[0]["msg"])
	assert.Equal(t, "session closed", lines[1]["msg"])
	assert.Equal(t, s.ID().String(), lines[1]["session"])
}

func TestLogger_Batch(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)

	l.LogBatch(context.Background(), 4, 0, time.Millisecond)
	l.LogBatch(context.Background(), 4, 1, time.Millisecond)
	l.WithSpan(Span{Start: 1, End: 3}).WithSession("s1").LogSessionError(context.Background(), "admit", errors.New("bad"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.InDelta(t, 3, lines[1]["success"], 0)
	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.InDelta(t, 1, lines[2]["start"], 0)
	assert.Equal(t, "bad", lines[2]["error"])
}

func TestLogger_AdmitErrorCarriesSpan(t *testing.T) {
	var buf bytes.Buffer
	dec, err := New(WithLogger(newBufferLogger(&buf, slog.LevelError)))
	require.NoError(t, err)
	s, err := dec.NewSession(context.Background())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Admit(Span{Start: 2, End: 5}, core.NoRef)
	require.Error(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "admit", lines[0]["op"])
	assert.InDelta(t, 2, lines[0]["start"], 0)
	assert.InDelta(t, 5, lines[0]["end"], 0)
	assert.Equal(t, s.ID().String(), lines[0]["session"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogBatch(context.Background(), 1, 1, 0)
}
