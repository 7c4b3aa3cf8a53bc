package courier

import "strings"

// Reply is a complete, possibly multi-line server reply.
type Reply struct {
	// Code is the leading 3-digit status code of the first line,
	// or 0 when the reply does not begin with a valid code.
	Code int

	// Text is the raw concatenated reply text, line terminators included.
	Text string
}

// IsSuccess returns true if the reply indicates success (2xx).
func (r *Reply) IsSuccess() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsIntermediate returns true if the reply is intermediate (3xx).
func (r *Reply) IsIntermediate() bool {
	return r.Code >= 300 && r.Code < 400
}

// TrimmedText returns the reply text without surrounding whitespace,
// suitable for diagnostics.
func (r *Reply) TrimmedText() string {
	return strings.TrimSpace(r.Text)
}

// parseReplyCode extracts the leading 3-digit status code from raw reply
// text. It returns 0 when the text does not begin with three digits.
func parseReplyCode(text string) int {
	if len(text) < 3 {
		return 0
	}
	code := 0
	for i := range 3 {
		c := text[i]
		if c < '0' || c > '9' {
			return 0
		}
		code = code*10 + int(c-'0')
	}
	return code
}
