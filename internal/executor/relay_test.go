package executor

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, lines <-chan Line) []Line {
	t.Helper()
	var out []Line
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return out
			}
			out = append(out, line)
		case <-timeout:
			t.Fatal("relay did not finish")
			return out
		}
	}
}

func textsFor(lines []Line, stream Stream) []string {
	var out []string
	for _, l := range lines {
		if l.Stream == stream {
			out = append(out, l.Text)
		}
	}
	return out
}

func TestRelay_PreservesPerStreamOrder(t *testing.T) {
	stdout := strings.NewReader("a\nb\nc\n")
	stderr := strings.NewReader("x\ny\n")

	lines := collect(t, Relay(stdout, stderr, 0))

	assert.Len(t, lines, 5)
	assert.Equal(t, []string{"a", "b", "c"}, textsFor(lines, StreamStdout))
	assert.Equal(t, []string{"x", "y"}, textsFor(lines, StreamStderr))
}

func TestRelay_LastLineWithoutNewline(t *testing.T) {
	lines := collect(t, Relay(strings.NewReader("one\ntwo"), nil, 0))
	assert.Equal(t, []string{"one", "two"}, textsFor(lines, StreamStdout))
}

func TestRelay_NilStreams(t *testing.T) {
	lines := collect(t, Relay(nil, nil, 0))
	assert.Empty(t, lines)
}

func TestRelay_UnevenStreamsDoNotDeadlock(t *testing.T) {
	big := strings.Repeat("line\n", 10000)
	lines := collect(t, Relay(strings.NewReader(big), strings.NewReader("err\n"), 0))

	assert.Len(t, textsFor(lines, StreamStdout), 10000)
	assert.Equal(t, []string{"err"}, textsFor(lines, StreamStderr))
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("read failed")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestRelay_ReadErrorEndsOnlyThatStream(t *testing.T) {
	lines := collect(t, Relay(&failingReader{data: "first\n"}, strings.NewReader("e1\ne2\n"), 0))

	assert.Equal(t, []string{"first"}, textsFor(lines, StreamStdout))
	assert.Equal(t, []string{"e1", "e2"}, textsFor(lines, StreamStderr))
}

func TestRelay_OverlongLineDrainsWriter(t *testing.T) {
	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pw.Write([]byte(strings.Repeat("z", 64) + "\n"))
		_, _ = pw.Write([]byte("after\n"))
		pw.Close()
	}()

	lines := collect(t, Relay(pr, strings.NewReader("ok\n"), 16))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer blocked after overlong line")
	}
	assert.Empty(t, textsFor(lines, StreamStdout))
	require.Equal(t, []string{"ok"}, textsFor(lines, StreamStderr))
}

func TestStream_String(t *testing.T) {
	assert.Equal(t, "stdout", StreamStdout.String())
	assert.Equal(t, "stderr", StreamStderr.String())
	assert.Equal(t, "unknown", Stream(9).String())
}
