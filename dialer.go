package courier

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Dialer builds ready-to-use Transports over network streams. It only
// wires configuration: no connection is made until the transport's first
// Send.
type Dialer struct {
	Host string
	Port int

	// SSL selects implicit TLS (typically port 465).
	SSL       bool
	TLSConfig *tls.Config

	// LocalDomain is the HELO identity; "[127.0.0.1]" when empty.
	LocalDomain string

	// RestartThreshold and RestartSleep configure the periodic
	// disconnect/reconnect cycle; 0 disables it.
	RestartThreshold int
	RestartSleep     time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	Logger *slog.Logger
}

// NewDialer creates a Dialer with sensible defaults.
func NewDialer(host string, port int) *Dialer {
	return &Dialer{
		Host:           host,
		Port:           port,
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    5 * time.Minute,
		WriteTimeout:   5 * time.Minute,
	}
}

// Transport returns a Transport over a socket stream to the configured
// endpoint.
func (d *Dialer) Transport() *Transport {
	stream := NewNetStream(NetStreamConfig{
		Host:           d.Host,
		Port:           d.Port,
		SSL:            d.SSL,
		TLSConfig:      d.TLSConfig,
		ConnectTimeout: d.ConnectTimeout,
		ReadTimeout:    d.ReadTimeout,
		WriteTimeout:   d.WriteTimeout,
	})

	t := New(stream, d.Logger)
	if d.LocalDomain != "" {
		t.SetLocalDomain(d.LocalDomain)
	}
	t.SetRestartThreshold(d.RestartThreshold, d.RestartSleep)
	return t
}

// TransportForDomain resolves the recipient domain's mail exchangers and
// returns a Transport targeting the most preferred one on port 25. The
// dialer's Host and Port are ignored; everything else applies.
func (d *Dialer) TransportForDomain(ctx context.Context, resolver *Resolver, domain string) (*Transport, error) {
	exchangers, err := resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("courier: resolve %q: %w", domain, err)
	}

	target := *d
	target.Host = strings.TrimSuffix(exchangers[0].Host, ".")
	target.Port = 25
	return target.Transport(), nil
}
