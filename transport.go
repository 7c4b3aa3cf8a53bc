package courier

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Transport is a persistent SMTP client session over a single Stream.
//
// The connection is established lazily on the first Send, health-checked
// before reuse and kept open between sends. A Transport owns its stream
// exclusively; callers release it with Close, typically deferred at the
// owning scope:
//
//	transport := courier.New(stream, nil)
//	defer transport.Close()
//
// A Transport is not safe for concurrent Send calls; use one per worker.
type Transport struct {
	stream Stream
	logger *slog.Logger

	localDomain string

	restartThreshold int
	restartSleep     time.Duration
	restartCounter   int

	started bool
}

var _ io.Closer = (*Transport)(nil)

// New creates a Transport over the given stream. A nil logger falls back
// to slog.Default.
func New(stream Stream, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		stream:      stream,
		logger:      logger,
		localDomain: defaultLocalDomain,
	}
}

// SetLocalDomain sets the identity announced in the HELO command. Bare IP
// literals are normalized to the bracketed forms required by RFC 5321
// §4.1.3; hostnames are expected to be fully qualified. Takes effect on
// future connect cycles.
func (t *Transport) SetLocalDomain(domain string) {
	t.localDomain = normalizeLocalDomain(domain)
}

// LocalDomain returns the identity announced in the HELO command.
func (t *Transport) LocalDomain() string {
	return t.localDomain
}

// SetRestartThreshold arranges a deliberate disconnect/reconnect after the
// given number of completed deliveries, pausing for sleep in between. This
// bounds per-connection resource usage on long-lived workers and respects
// servers that cap messages per connection. A threshold of 0 disables
// restarting.
func (t *Transport) SetRestartThreshold(threshold int, sleep time.Duration) {
	t.restartThreshold = threshold
	t.restartSleep = sleep
}

// Started reports whether the transport currently holds a live connection.
func (t *Transport) Started() bool {
	return t.started
}

// Stream returns the underlying stream.
func (t *Transport) Stream() Stream {
	return t.stream
}

// Send delivers one message: it health-checks the connection, connects
// lazily if needed, runs the MAIL/RCPT/DATA sequence and returns a receipt
// for the accepted message.
//
// On a delivery failure the open transaction is aborted with one
// best-effort RSET and the original error is returned, carrying the
// protocol transcript (see TranscriptOf). The transport remains usable
// afterwards.
func (t *Transport) Send(env *Envelope, body io.Reader) (*Receipt, error) {
	t.ping()

	if !t.started {
		if err := t.start(); err != nil {
			return nil, err
		}
	}

	reply, err := t.deliver(env, body)
	if err != nil {
		t.tryCommand("RSET\r\n", 250)
		return nil, err
	}

	receipt := newReceipt(reply, t.stream.Transcript())

	if err := t.checkRestart(); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Close releases the underlying stream, attempting a clean QUIT when a
// connection is live. It is idempotent.
func (t *Transport) Close() error {
	return t.stop()
}

// String returns the transport's display identity, derived from the
// stream endpoint: "smtp[s]://host[:port]", omitting the port when it
// equals the protocol default (25, or 465 under TLS). Non-network streams
// use a fixed sendmail identity.
func (t *Transport) String() string {
	ns, ok := t.stream.(NetworkedStream)
	if !ok {
		return "smtp://sendmail"
	}
	scheme, defaultPort := "smtp", 25
	if ns.TLS() {
		scheme, defaultPort = "smtps", 465
	}
	if ns.Port() == defaultPort {
		return fmt.Sprintf("%s://%s", scheme, ns.Host())
	}
	return fmt.Sprintf("%s://%s:%d", scheme, ns.Host(), ns.Port())
}

// start brings up the connection: stream initialization, the 220 server
// greeting, then HELO. No-op when already started.
func (t *Transport) start() error {
	if t.started {
		return nil
	}

	t.logger.Debug("starting transport", slog.String("transport", t.String()))

	if err := t.stream.Initialize(); err != nil {
		return fmt.Errorf("courier: initialize stream: %w", err)
	}
	if _, err := t.expectReply(220); err != nil {
		return err
	}
	if _, err := t.execute(fmt.Appendf(nil, "HELO %s\r\n", t.localDomain), 250); err != nil {
		return err
	}

	t.started = true
	t.logger.Debug("transport started", slog.String("transport", t.String()))
	return nil
}

// stop tears down the connection. A clean QUIT is attempted but its
// failure must not prevent cleanup: the connection may already be
// unusable, so the stream is terminated and the state reset regardless.
// No-op when already stopped.
func (t *Transport) stop() error {
	if !t.started {
		return nil
	}

	t.logger.Debug("stopping transport", slog.String("transport", t.String()))

	t.tryCommand("QUIT\r\n", 221)

	err := t.stream.Terminate()
	t.started = false
	t.logger.Debug("transport stopped", slog.String("transport", t.String()))
	return err
}

// ping health-checks a live connection with NOOP. Any failure, protocol or
// connectivity, is taken as evidence the connection is dead: the session
// is stopped silently and the next Send reconnects transparently. No-op
// when stopped.
func (t *Transport) ping() {
	if !t.started {
		return
	}
	if !t.tryCommand("NOOP\r\n", 250) {
		_ = t.stop()
	}
}

// checkRestart counts the completed delivery and performs the periodic
// disconnect/reconnect once the threshold is reached. Only connections
// that are actually live count. Failures of the cycle's stop or start
// propagate to the Send that triggered it.
func (t *Transport) checkRestart() error {
	if !t.started {
		return nil
	}

	t.restartCounter++
	if t.restartThreshold == 0 || t.restartCounter < t.restartThreshold {
		return nil
	}

	if err := t.stop(); err != nil {
		return err
	}
	if t.restartSleep > 0 {
		t.logger.Debug("sleeping before restart",
			slog.String("transport", t.String()),
			slog.Duration("sleep", t.restartSleep),
		)
		time.Sleep(t.restartSleep)
	}
	if err := t.start(); err != nil {
		return err
	}

	t.restartCounter = 0
	return nil
}
