package courier

import (
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// defaultLocalDomain is the HELO identity used until the caller sets one.
const defaultLocalDomain = "[127.0.0.1]"

// normalizeLocalDomain prepares a HELO identity. Bare IP literals become
// the bracketed address-literal forms of RFC 5321 §4.1.3 ("[a.b.c.d]",
// "[IPv6:addr]"); internationalized hostnames are converted to A-labels so
// the argument is always transmittable in a 7-bit command; anything else
// is used verbatim and expected to be a fully-qualified domain name.
func normalizeLocalDomain(name string) string {
	if name == "" {
		return defaultLocalDomain
	}
	if strings.HasPrefix(name, "[") {
		// Already an address literal.
		return name
	}
	if ip := net.ParseIP(name); ip != nil {
		if ip.To4() != nil {
			return "[" + name + "]"
		}
		return "[IPv6:" + name + "]"
	}
	if containsNonASCII(name) {
		if ascii, err := idna.Lookup.ToASCII(name); err == nil {
			return ascii
		}
	}
	return name
}

// containsNonASCII reports whether s contains any byte above 127.
func containsNonASCII(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
