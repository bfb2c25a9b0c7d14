package nodestore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger_LogAllocate(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.LogAllocate(context.Background(), NodeID{Index: 3, Generation: 1}, nil)
	assert.Contains(t, buf.String(), "allocate completed")
	assert.Contains(t, buf.String(), "NodeID(3@1)")

	buf.Reset()
	l.LogAllocate(context.Background(), NodeID{}, ErrResourceExhausted)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "resource exhausted")
}

func TestLogger_LogCollect(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithCount(7)

	l.LogCollect(context.Background(), CollectionReport{NodesBefore: 10, NodesAfter: 4, NodesCollected: 6}, nil)
	out := buf.String()
	assert.Contains(t, out, "collection completed")
	assert.Contains(t, out, "collected=6")
	assert.Contains(t, out, "count=7")

	buf.Reset()
	l.LogCollect(context.Background(), CollectionReport{}, errors.New("boom"))
	assert.Contains(t, buf.String(), "collection failed")
}

func TestLogger_LogCompact(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf).WithArena("a1").LogCompact(context.Background(), 5, 0.25)

	assert.Contains(t, buf.String(), "trimmed=5")
	assert.Contains(t, buf.String(), "arena=a1")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestNewLogger_DefaultHandler(t *testing.T) {
	l := NewLogger(nil)
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}
