// Package courier provides a persistent SMTP client session manager.
//
// Courier drives a single connection to a mail server through the RFC 5321
// command/response protocol and manages its whole lifecycle: the connection
// is established lazily on the first delivery, health-checked with NOOP
// before reuse, torn down and rebuilt after a configurable number of
// deliveries, and released exactly once when the session is closed.
//
// # Quick Start
//
// Send a message over a long-lived transport:
//
//	dialer := courier.NewDialer("smtp.example.com", 25)
//	transport := dialer.Transport()
//	defer transport.Close()
//
//	env, err := courier.NewEnvelope("alice@example.com", []string{"bob@example.net"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	receipt, err := transport.Send(env, strings.NewReader(body))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("delivered %s: %d %s", receipt.ID, receipt.Code, receipt.ServerText)
//
// The same Transport may be reused for many sends; the connection is kept
// open between them. A failed health check silently discards the dead
// connection and the next Send reconnects transparently.
//
// # Error Recovery
//
// When the server rejects a delivery mid-transaction, the transport issues
// one best-effort RSET to abort the open transaction and then returns the
// original failure, decorated with the protocol transcript. Failures of the
// RSET itself carry no new information and are discarded.
//
// # Concurrency
//
// A Transport owns exactly one connection and is not safe for concurrent
// Send calls. Callers needing parallel delivery use one Transport per
// worker; sharing one across goroutines requires external serialization.
//
// # RFC Compliance
//
// Courier implements the client side of the core RFC 5321 command flow:
// HELO, MAIL, RCPT, DATA with dot-stuffing per §4.5.2, RSET, NOOP and
// QUIT. Protocol extensions (AUTH, STARTTLS, PIPELINING) are outside the
// command flow; implicit TLS is available at the stream level.
package courier

import "errors"

// Common courier errors.
var (
	// ErrNoAcceptedCodes reports a caller bug: a command was executed
	// without any accepted reply codes. It is never a protocol failure.
	ErrNoAcceptedCodes = errors.New("courier: no accepted reply codes given")

	// ErrNotStarted reports a delivery attempted on a stopped transport.
	ErrNotStarted = errors.New("courier: transport not started")

	// ErrNoSender reports an envelope without a sender address.
	ErrNoSender = errors.New("courier: no sender specified")

	// ErrNoRecipients reports an envelope without recipients.
	ErrNoRecipients = errors.New("courier: no recipients specified")
)
