package repl

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct {
	bytes.Buffer
	closed bool
}

func (w *nopWriteCloser) Close() error {
	w.closed = true
	return nil
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("  run foot  --server ")
	require.True(t, ok)
	assert.Equal(t, "run", cmd.Name)
	assert.Equal(t, []string{"foot", "--server"}, cmd.Args)
	assert.Equal(t, "foot  --server", cmd.Rest)
	assert.Equal(t, "foot", cmd.Arg(0))
	assert.Equal(t, "", cmd.Arg(5))
	assert.Equal(t, "", cmd.Arg(-1))

	cmd, ok = ParseCommand("quit")
	require.True(t, ok)
	assert.Empty(t, cmd.Args)
	assert.Empty(t, cmd.Rest)

	_, ok = ParseCommand("   ")
	assert.False(t, ok)
}

func TestRunDispatches(t *testing.T) {
	in := io.NopCloser(strings.NewReader("echo a b\n\nnope\nhelp\nquit\necho never\n"))
	out := &nopWriteCloser{}
	r := NewRepl(in, out)
	r.Prompt = "> "
	r.Handle("echo", "repeats its arguments", func(cmd Command) (string, error) {
		return strings.Join(cmd.Args, ","), nil
	})
	r.Handle("quit", "stops", func(Command) (string, error) {
		return "bye", ErrQuit
	})

	require.NoError(t, r.Run())
	assert.Equal(t, "> a,b\n> > Unknown command \"nope\", try help\n"+
		"> echo - repeats its arguments\nquit - stops\n> bye\n", out.String())
	assert.True(t, out.closed)
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	out := &nopWriteCloser{}
	r := NewRepl(io.NopCloser(strings.NewReader("fail\nfail\n")), out)
	calls := 0
	r.Handle("fail", "always fails", func(Command) (string, error) {
		calls++
		return "", boom
	})

	err := r.Run()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.True(t, out.closed)
}

func TestRunEndsWithInput(t *testing.T) {
	out := &nopWriteCloser{}
	r := NewRepl(io.NopCloser(strings.NewReader("")), out)
	assert.NoError(t, r.Run())
	assert.Empty(t, out.String())
}
