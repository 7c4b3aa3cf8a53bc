package courier

import (
	"io"
	"log/slog"
	"strings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeStream is a scripted Stream for tests: queued server lines are
// returned by ReadLine in order, everything written is recorded. An
// exhausted script reads as io.EOF, standing in for a dropped connection.
type fakeStream struct {
	lines      []string
	writes     []string
	flushes    int
	inits      int
	terminates int

	initErr error

	// writeErr, when set, fails every write once failWritesAfter writes
	// have been recorded; zero fails the first write.
	writeErr        error
	failWritesAfter int
}

func (s *fakeStream) script(lines ...string) {
	s.lines = append(s.lines, lines...)
}

func (s *fakeStream) Initialize() error {
	s.inits++
	return s.initErr
}

func (s *fakeStream) Write(p []byte, flush bool) error {
	if s.writeErr != nil && len(s.writes) >= s.failWritesAfter {
		return s.writeErr
	}
	s.writes = append(s.writes, string(p))
	if flush {
		s.flushes++
	}
	return nil
}

func (s *fakeStream) Flush() error {
	s.flushes++
	return nil
}

func (s *fakeStream) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *fakeStream) Terminate() error {
	s.terminates++
	return nil
}

func (s *fakeStream) Transcript() string {
	return strings.Join(s.writes, "")
}

// sent returns everything written, concatenated in order.
func (s *fakeStream) sent() string {
	return strings.Join(s.writes, "")
}

// countWrites returns how many recorded writes equal cmd.
func (s *fakeStream) countWrites(cmd string) int {
	n := 0
	for _, w := range s.writes {
		if w == cmd {
			n++
		}
	}
	return n
}

// fakeNetStream adds endpoint introspection to fakeStream.
type fakeNetStream struct {
	fakeStream
	host string
	port int
	tls  bool
}

func (s *fakeNetStream) TLS() bool    { return s.tls }
func (s *fakeNetStream) Host() string { return s.host }
func (s *fakeNetStream) Port() int    { return s.port }

// newTestTransport builds a transport with silenced logging.
func newTestTransport(stream Stream) *Transport {
	return New(stream, discardLogger())
}

// deliveryScript returns the server side of one successful MAIL/RCPT/DATA
// exchange with a single recipient.
func deliveryScript() []string {
	return []string{
		"250 sender ok",
		"250 recipient ok",
		"354 end data with <CRLF>.<CRLF>",
		"250 queued as abc123",
	}
}

// startScript returns the greeting and HELO replies of a clean start.
func startScript() []string {
	return []string{
		"220 mx.example.com ESMTP ready",
		"250 mx.example.com",
	}
}
