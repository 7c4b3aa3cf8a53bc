package courier

import (
	"fmt"
	"slices"
	"strings"
)

// execute writes one command and validates the server's reply against the
// accepted status codes. The command bytes must already carry their CRLF
// terminator.
//
// Calling execute with no accepted codes is a caller bug and fails with
// ErrNoAcceptedCodes, never with a protocol error.
func (t *Transport) execute(command []byte, accepted ...int) (*Reply, error) {
	if len(accepted) == 0 {
		return nil, ErrNoAcceptedCodes
	}
	if err := t.stream.Write(command, true); err != nil {
		return nil, fmt.Errorf("courier: write command: %w", err)
	}
	return t.expectReply(accepted...)
}

// expectReply reads one full reply and validates its status code. It is
// used directly for the server-initiated greeting, where no command is
// written first.
func (t *Transport) expectReply(accepted ...int) (*Reply, error) {
	if len(accepted) == 0 {
		return nil, ErrNoAcceptedCodes
	}

	text, err := t.readReply()
	if err != nil {
		return nil, fmt.Errorf("courier: read reply: %w", err)
	}
	if text == "" {
		return nil, &ProtocolError{Accepted: accepted}
	}

	reply := &Reply{Code: parseReplyCode(text), Text: text}
	if !slices.Contains(accepted, reply.Code) {
		return nil, &ProtocolError{
			Code:     reply.Code,
			Accepted: accepted,
			Text:     reply.TrimmedText(),
		}
	}
	return reply, nil
}

// readReply assembles one full, possibly multi-line reply. Per RFC 5321
// §4.2.1 continuation lines carry "-" in the fourth column and the final
// line a space; an empty line also ends the reply.
func (t *Transport) readReply() (string, error) {
	var sb strings.Builder
	for {
		line, err := t.stream.ReadLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\r\n")
		if len(line) >= 4 && line[3] == ' ' {
			break
		}
	}
	return sb.String(), nil
}

// tryCommand sends a command and discards any failure. It exists for the
// best-effort steps of the protocol (RSET after a failed delivery, QUIT
// during teardown, the NOOP health check) whose own failures must never
// replace or mask the error that matters.
func (t *Transport) tryCommand(command string, accepted ...int) bool {
	_, err := t.execute([]byte(command), accepted...)
	return err == nil
}
