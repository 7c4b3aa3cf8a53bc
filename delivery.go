package courier

import (
	"errors"
	"fmt"
	"io"
)

// deliver runs the MAIL/RCPT/DATA sequence for one message and returns the
// server's final acceptance reply. Any failure comes back decorated with
// the stream's transcript so the caller can diagnose the exact point of
// failure.
func (t *Transport) deliver(env *Envelope, body io.Reader) (*Reply, error) {
	reply, err := t.runDelivery(env, body)
	if err != nil {
		return nil, t.withTranscript(err)
	}
	return reply, nil
}

func (t *Transport) runDelivery(env *Envelope, body io.Reader) (*Reply, error) {
	if !t.started {
		return nil, ErrNotStarted
	}

	if _, err := t.execute(fmt.Appendf(nil, "MAIL FROM:<%s>\r\n", env.From), 250); err != nil {
		return nil, err
	}

	// 251 and 252 signal forwarding and unverified-but-accepted recipients
	// (RFC 5321 §4.2.3); both are acceptances.
	for _, rcpt := range env.To {
		if _, err := t.execute(fmt.Appendf(nil, "RCPT TO:<%s>\r\n", rcpt), 250, 251, 252); err != nil {
			return nil, err
		}
	}

	if _, err := t.execute([]byte("DATA\r\n"), 354); err != nil {
		return nil, err
	}

	// Stream the body unflushed; one flush after the last chunk.
	dw := &dotWriter{stream: t.stream}
	if _, err := io.Copy(dw, body); err != nil {
		return nil, fmt.Errorf("courier: write message body: %w", err)
	}
	if err := t.stream.Flush(); err != nil {
		return nil, fmt.Errorf("courier: flush message body: %w", err)
	}

	// End-of-data mark; the 250 here is the final acceptance.
	return t.execute([]byte("\r\n.\r\n"), 250)
}

// withTranscript attaches the stream's accumulated transcript to a
// delivery failure without changing which error the caller sees.
func (t *Transport) withTranscript(err error) error {
	transcript := t.stream.Transcript()

	var pe *ProtocolError
	if errors.As(err, &pe) {
		pe.Transcript = transcript
		return err
	}
	return &DeliveryError{Err: err, Transcript: transcript}
}

// dotWriter streams message chunks to the underlying stream without
// flushing, doubling any leading "." per RFC 5321 §4.5.2 so the server can
// unambiguously recognize the end-of-data mark. Line state is tracked
// across chunk boundaries.
type dotWriter struct {
	stream  Stream
	midline bool
}

func (w *dotWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if !w.midline && b == '.' {
			out = append(out, '.')
		}
		out = append(out, b)
		w.midline = b != '\n'
	}
	if err := w.stream.Write(out, false); err != nil {
		return 0, err
	}
	return len(p), nil
}
