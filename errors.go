package courier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProtocolError reports a server reply whose status code did not match the
// accepted set, or an empty reply where one was required.
type ProtocolError struct {
	// Code is the parsed status code, 0 when the reply was empty or
	// unparsable.
	Code int

	// Accepted is the set of codes the command would have accepted.
	Accepted []int

	// Text is the trimmed server reply text.
	Text string

	// Transcript holds the protocol exchange leading up to the failure.
	// It is populated on errors raised from the delivery path.
	Transcript string
}

func (e *ProtocolError) Error() string {
	if e.Code == 0 && e.Text == "" {
		return fmt.Sprintf("courier: expected reply code %s, got an empty reply", formatCodes(e.Accepted))
	}
	return fmt.Sprintf("courier: expected reply code %s, got %d (%q)", formatCodes(e.Accepted), e.Code, e.Text)
}

// DeliveryError wraps a failure raised during the MAIL/RCPT/DATA sequence
// that is not a status-code mismatch (typically a stream I/O fault),
// decorated with the protocol transcript.
type DeliveryError struct {
	Err        error
	Transcript string
}

func (e *DeliveryError) Error() string { return e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// TranscriptOf returns the protocol transcript attached to a failed
// delivery, or "" when err carries none.
func TranscriptOf(err error) string {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Transcript
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Transcript
	}
	return ""
}

// formatCodes renders an accepted-code set as "250/251/252".
func formatCodes(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, "/")
}
