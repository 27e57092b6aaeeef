package offchain

import (
	"context"
	"net"
	"net/url"
	"strings"
)

// WebsiteProbe counts the DNS records of a website host.
type WebsiteProbe interface {
	CountRecords(ctx context.Context, host string) (int, error)
}

// DNSProbe resolves hosts with net.Resolver.
type DNSProbe struct {
	resolver *net.Resolver
}

// NewDNSProbe creates a probe on the default resolver.
func NewDNSProbe() *DNSProbe {
	return &DNSProbe{resolver: net.DefaultResolver}
}

// CountRecords returns the number of IP addresses host resolves to.
func (p *DNSProbe) CountRecords(ctx context.Context, host string) (int, error) {
	addrs, err := p.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return 0, err
	}
	return len(addrs), nil
}

// websiteHost strips quotes, spaces, scheme, path and port from a website value.
func websiteHost(site string) string {
	site = strings.Trim(site, "\" ")
	if site == "" {
		return ""
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	u, err := url.Parse(site)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
