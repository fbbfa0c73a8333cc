package logger

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer

	l := NewWriter(&buf)
	l.LogInfo("room %d loaded", 7)
	l.With(map[string]any{"type": "access"}).Warn("slow")

	assert.Contains(t, buf.String(), "room 7 loaded")
	assert.Contains(t, buf.String(), "type=access")
	require.NoError(t, l.Close())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty", File: ""})
	require.Error(t, err)
}

func TestNewWithFile(t *testing.T) {
	l, err := New(Config{Level: "debug", File: filepath.Join(t.TempDir(), "roombook.log")})
	require.NoError(t, err)

	l.LogErrorf("boom: %v", "backend down")
	require.NoError(t, l.Close())
}

func TestWriterCloses(t *testing.T) {
	l := NewWriter(io.Discard)

	w := l.Writer()
	_, err := io.WriteString(w, "http: TLS handshake error\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = io.WriteString(w, "after close\n")
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
