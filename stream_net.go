package courier

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ErrStreamClosed reports an operation on a stream whose channel is not
// established.
var ErrStreamClosed = errors.New("courier: stream not initialized")

// NetStreamConfig configures a socket-backed stream.
type NetStreamConfig struct {
	Host string
	Port int

	// SSL selects implicit TLS (typically port 465).
	SSL       bool
	TLSConfig *tls.Config

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// MaxTranscript bounds the recorded exchange; 0 means the default.
	MaxTranscript int
}

// DefaultNetStreamConfig returns a NetStreamConfig with sensible defaults.
func DefaultNetStreamConfig(host string, port int) NetStreamConfig {
	return NetStreamConfig{
		Host:           host,
		Port:           port,
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    5 * time.Minute,
		WriteTimeout:   5 * time.Minute,
	}
}

// NetStream is a Stream over a TCP or implicit-TLS socket.
type NetStream struct {
	config     NetStreamConfig
	conn       net.Conn
	reader     *bufio.Reader
	writer     *bufio.Writer
	transcript *transcriptBuffer
}

var _ NetworkedStream = (*NetStream)(nil)

// NewNetStream creates a socket-backed stream. No connection is made until
// Initialize is called.
func NewNetStream(config NetStreamConfig) *NetStream {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	return &NetStream{
		config:     config,
		transcript: newTranscriptBuffer(config.MaxTranscript),
	}
}

// Initialize connects to the configured endpoint, performing the TLS
// handshake when implicit TLS is selected.
func (s *NetStream) Initialize() error {
	address := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	netDialer := &net.Dialer{Timeout: s.config.ConnectTimeout}

	var conn net.Conn
	var err error
	if s.config.SSL {
		tlsConfig := s.config.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{}
		}
		if tlsConfig.ServerName == "" {
			tlsConfig = tlsConfig.Clone()
			tlsConfig.ServerName = s.config.Host
		}
		dialer := &tls.Dialer{NetDialer: netDialer, Config: tlsConfig}
		conn, err = dialer.Dial("tcp", address)
		if err != nil {
			return fmt.Errorf("dial TLS failed: %w", err)
		}
	} else {
		conn, err = netDialer.Dial("tcp", address)
		if err != nil {
			return fmt.Errorf("dial failed: %w", err)
		}
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.writer = bufio.NewWriter(conn)
	s.transcript.reset()
	return nil
}

// Write sends p, buffering unless flush is set.
func (s *NetStream) Write(p []byte, flush bool) error {
	if s.conn == nil {
		return ErrStreamClosed
	}

	if s.config.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
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

// Flush forces buffered bytes onto the wire.
func (s *NetStream) Flush() error {
	if s.conn == nil {
		return ErrStreamClosed
	}
	if s.config.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return s.writer.Flush()
}

// ReadLine reads one server line without its CRLF terminator.
func (s *NetStream) ReadLine() (string, error) {
	if s.conn == nil {
		return "", ErrStreamClosed
	}

	if s.config.ReadTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")

	s.transcript.record("S: ", []byte(line))
	return line, nil
}

// Terminate closes the socket. Safe to call on a stream that was never
// initialized or is already terminated.
func (s *NetStream) Terminate() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.reader = nil
	s.writer = nil
	return err
}

// Transcript returns the recorded protocol exchange.
func (s *NetStream) Transcript() string {
	return s.transcript.String()
}

// TLS reports whether the stream uses implicit TLS.
func (s *NetStream) TLS() bool { return s.config.SSL }

// Host returns the remote host.
func (s *NetStream) Host() string { return s.config.Host }

// Port returns the remote port.
func (s *NetStream) Port() int { return s.config.Port }
