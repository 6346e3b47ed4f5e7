package executor

import (
	"bufio"
	"io"
	"sync"
)

// Stream identifies which output of a child process a line came from.
type Stream int

const (
	// StreamStdout tags lines read from standard output.
	StreamStdout Stream = iota
	// StreamStderr tags lines read from standard error.
	StreamStderr
)

// String returns the string representation of Stream.
func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Line is one line of child output without its trailing newline.
type Line struct {
	Stream Stream
	Text   string
}

const (
	// DefaultMaxLineLength bounds a single relayed line.
	DefaultMaxLineLength = 1024 * 1024

	relayBuffer = 256
)

// Relay reads stdout and stderr concurrently, line by line, and merges them
// onto the returned channel in arrival order. Lines from one stream keep
// their order. The channel is closed once both streams reach end-of-stream.
// A nil reader counts as an already finished stream.
//
// The caller must drain the channel; otherwise the child blocks on a full pipe.
func Relay(stdout, stderr io.Reader, maxLineLength int) <-chan Line {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}

	lines := make(chan Line, relayBuffer)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, StreamStdout, lines, maxLineLength)
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, StreamStderr, lines, maxLineLength)
	}()

	go func() {
		wg.Wait()
		close(lines)
	}()

	return lines
}

// scanLines pushes every line of r onto lines. A read error ends line
// production for this stream only; whatever is left is discarded so the
// writer on the other end never blocks.
func scanLines(r io.Reader, stream Stream, lines chan<- Line, maxLineLength int) {
	if r == nil {
		return
	}

	scanner := bufio.NewScanner(r)
	initial := bufio.MaxScanTokenSize
	if initial > maxLineLength {
		initial = maxLineLength
	}
	scanner.Buffer(make([]byte, 0, initial), maxLineLength)

	for scanner.Scan() {
		lines <- Line{Stream: stream, Text: scanner.Text()}
	}

	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}
