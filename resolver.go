package courier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Resolver errors.
var (
	// ErrNoMX reports a domain that publishes no usable mail exchanger.
	ErrNoMX = errors.New("courier: no mail exchanger found")

	// ErrNullMX reports a domain that explicitly refuses mail with a
	// null MX record (RFC 7505).
	ErrNullMX = errors.New("courier: domain does not accept mail (null MX)")
)

// ResolverConfig configures MX resolution.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g. "8.8.8.8:53").
	// If empty, system resolvers from /etc/resolv.conf are used, falling
	// back to public DNS.
	Nameservers []string

	// Timeout is the timeout for individual DNS queries. Default is
	// 5 seconds.
	Timeout time.Duration

	// Retries is the number of retries for failed queries. Default is 2.
	Retries int
}

// Resolver looks up the mail exchangers a Dialer should target for a
// recipient domain.
type Resolver struct {
	config ResolverConfig
	client *mdns.Client
}

// NewResolver creates an MX resolver.
func NewResolver(config ResolverConfig) *Resolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 2
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = systemNameservers()
	}

	return &Resolver{
		config: config,
		client: &mdns.Client{Timeout: config.Timeout},
	}
}

// LookupMX returns the domain's mail exchangers sorted by preference. A
// domain without MX records falls back to the implicit MX of RFC 5321
// §5.1: the domain itself.
func (r *Resolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	resp, err := r.query(ctx, domain, mdns.TypeMX)
	if err != nil {
		return nil, err
	}

	var records []*net.MX
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*mdns.MX); ok {
			records = append(records, &net.MX{Host: mx.Mx, Pref: mx.Preference})
		}
	}

	return rankExchangers(records, domain)
}

// rankExchangers orders MX records by preference and applies the no-MX and
// null-MX rules.
func rankExchangers(records []*net.MX, domain string) ([]*net.MX, error) {
	if len(records) == 0 {
		// Implicit MX (RFC 5321 §5.1).
		return []*net.MX{{Host: domain, Pref: 0}}, nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	if records[0].Host == "." {
		return nil, ErrNullMX
	}
	return records, nil
}

// query performs a DNS query with retries across the configured
// nameservers.
func (r *Resolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for i := 0; i <= r.config.Retries; i++ {
		for _, server := range r.config.Nameservers {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			resp, _, err := r.client.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = fmt.Errorf("dns query failed: %w", err)
				continue
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, ErrNoMX
			default:
				lastErr = fmt.Errorf("dns: rcode %d from %s", resp.Rcode, server)
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoMX
}

// systemNameservers reads resolv.conf, falling back to public DNS.
func systemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = s + ":53"
		}
		servers = append(servers, s)
	}
	return servers
}
