package courier

import "bytes"

// Stream is the raw byte transport a Transport drives. Implementations own
// connection establishment, buffering and deadlines; the session core only
// sequences commands and replies over it.
//
// All operations are blocking. A Stream records the protocol exchange in a
// bounded transcript for post-failure diagnostics.
type Stream interface {
	// Initialize establishes the underlying channel (socket connect,
	// TLS handshake, child process spawn) and resets the transcript.
	Initialize() error

	// Write sends p. When flush is false the bytes may be buffered until
	// the next Flush or flushing Write.
	Write(p []byte, flush bool) error

	// Flush forces buffered bytes onto the wire.
	Flush() error

	// ReadLine reads one server line without its CRLF terminator.
	ReadLine() (string, error)

	// Terminate releases the underlying channel. It is safe to call on a
	// stream that was never initialized.
	Terminate() error

	// Transcript returns the recorded protocol exchange.
	Transcript() string
}

// NetworkedStream is implemented by socket-backed streams and exposes the
// endpoint identity used for display purposes only.
type NetworkedStream interface {
	Stream

	// TLS reports whether the channel uses implicit TLS.
	TLS() bool

	// Host returns the remote host.
	Host() string

	// Port returns the remote port.
	Port() int
}

// defaultMaxTranscript bounds transcript memory per connection.
const defaultMaxTranscript = 16 * 1024

// transcriptBuffer records the protocol exchange up to a fixed size,
// marking truncation once the cap is reached.
type transcriptBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newTranscriptBuffer(max int) *transcriptBuffer {
	if max <= 0 {
		max = defaultMaxTranscript
	}
	return &transcriptBuffer{max: max}
}

// record appends one direction-prefixed entry: "C: " for client bytes,
// "S: " for server lines.
func (t *transcriptBuffer) record(prefix string, p []byte) {
	if t.truncated {
		return
	}
	if t.buf.Len()+len(prefix)+len(p) > t.max {
		t.buf.WriteString("[transcript truncated]\n")
		t.truncated = true
		return
	}
	t.buf.WriteString(prefix)
	t.buf.Write(p)
	if len(p) == 0 || p[len(p)-1] != '\n' {
		t.buf.WriteByte('\n')
	}
}

func (t *transcriptBuffer) reset() {
	t.buf.Reset()
	t.truncated = false
}

func (t *transcriptBuffer) String() string {
	return t.buf.String()
}
