package wrappers

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderWrapper(t *testing.T) {
	r := NewReaderWrapper(strings.NewReader("hello"))
	buf := make([]byte, 2)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "he", string(buf[:n]))

	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWriterWrapper(t *testing.T) {
	var out bytes.Buffer
	w := NewWriterWrapper(&out)
	_, err := io.WriteString(w, "abc")
	require.NoError(t, err)
	assert.False(t, w.Closed())

	require.NoError(t, w.Close())
	_, err = io.WriteString(w, "def")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, "abc", out.String(), "the wrapped writer is left alone")
}
