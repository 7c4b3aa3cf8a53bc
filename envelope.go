package courier

import (
	"fmt"
	"net/mail"
	"slices"
)

// Envelope carries the protocol-level sender and recipients of one
// delivery: the reverse-path for MAIL FROM and the ordered forward-paths
// for RCPT TO. These are distinct from the header addresses inside the
// message content.
//
// The envelope is owned by the caller; a Transport only reads it.
type Envelope struct {
	// From is the sender address (reverse-path).
	From string

	// To is the ordered list of recipient addresses.
	To []string
}

// NewEnvelope builds a validated envelope. The sender and every recipient
// must be a bare RFC 5322 addr-spec such as "user@example.com".
func NewEnvelope(from string, to []string) (*Envelope, error) {
	if from == "" {
		return nil, ErrNoSender
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}

	if _, err := mail.ParseAddress(from); err != nil {
		return nil, fmt.Errorf("courier: invalid sender %q: %w", from, err)
	}
	for _, rcpt := range to {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return nil, fmt.Errorf("courier: invalid recipient %q: %w", rcpt, err)
		}
	}

	return &Envelope{From: from, To: slices.Clone(to)}, nil
}
