package courier

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultSendmailCommand is the conventional local MTA invocation. The -bs
// flag makes sendmail speak SMTP on its standard input and output, so the
// same command flow works over the pipe as over a socket.
const DefaultSendmailCommand = "/usr/sbin/sendmail -bs"

// ProcessStream is a Stream over the standard input and output of a child
// process, for delivering through a local sendmail-compatible MTA instead
// of a network socket.
type ProcessStream struct {
	// Command is the shell command to run; DefaultSendmailCommand when
	// empty.
	Command string

	// MaxTranscript bounds the recorded exchange; 0 means the default.
	MaxTranscript int

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	writer     *bufio.Writer
	reader     *bufio.Reader
	transcript *transcriptBuffer
}

var _ Stream = (*ProcessStream)(nil)

// Initialize spawns the child process and attaches its pipes.
func (s *ProcessStream) Initialize() error {
	command := s.Command
	if command == "" {
		command = DefaultSendmailCommand
	}

	cmd := exec.Command("/bin/sh", "-c", command)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.writer = bufio.NewWriter(stdin)
	s.reader = bufio.NewReader(stdout)
	if s.transcript == nil {
		s.transcript = newTranscriptBuffer(s.MaxTranscript)
	}
	s.transcript.reset()
	return nil
}

// Write sends p to the child's standard input, buffering unless flush is
// set.
func (s *ProcessStream) Write(p []byte, flush bool) error {
	if s.cmd == nil {
		return ErrStreamClosed
	}

	s.transcript.record("C: ", p)

	if _, err := s.writer.Write(p); err != nil {
		return err
	}
	if flush {
		return s.writer.Flush()
	}
	return nil
}

// Flush forces buffered bytes into the pipe.
func (s *ProcessStream) Flush() error {
	if s.cmd == nil {
		return ErrStreamClosed
	}
	return s.writer.Flush()
}

// ReadLine reads one line from the child's standard output without its
// line terminator.
func (s *ProcessStream) ReadLine() (string, error) {
	if s.cmd == nil {
		return "", ErrStreamClosed
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")

	s.transcript.record("S: ", []byte(line))
	return line, nil
}

// Terminate closes the child's standard input and reaps the process. The
// child's exit status is not treated as an error: by the time the session
// terminates the stream, the protocol outcome has already been decided.
func (s *ProcessStream) Terminate() error {
	if s.cmd == nil {
		return nil
	}
	s.writer.Flush()
	s.stdin.Close()
	s.cmd.Wait()
	s.cmd = nil
	s.stdin = nil
	s.reader = nil
	s.writer = nil
	return nil
}

// Transcript returns the recorded protocol exchange.
func (s *ProcessStream) Transcript() string {
	if s.transcript == nil {
		return ""
	}
	return s.transcript.String()
}
