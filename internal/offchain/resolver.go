// Package offchain resolves the JSON document a metadata URI points to.
package offchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/logger"
	"solana-token-info/internal/observability"
)

// Config holds configuration for the resolver.
type Config struct {
	// IPFSGateways rewrites ipfs:// URIs; the first entry is used.
	IPFSGateways []string
	// ArweaveGateways rewrites ar:// URIs; the first entry is used.
	ArweaveGateways []string
}

// DefaultConfig returns public gateways.
func DefaultConfig() Config {
	return Config{
		IPFSGateways:    []string{"https://ipfs.io"},
		ArweaveGateways: []string{"https://arweave.net"},
	}
}

// Resolver fetches and parses off-chain metadata documents.
type Resolver struct {
	httpClient HTTPClient
	config     Config
	probe      WebsiteProbe
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithWebsiteProbe enables counting DNS records for the document's website.
func WithWebsiteProbe(p WebsiteProbe) ResolverOption {
	return func(r *Resolver) {
		r.probe = p
	}
}

// NewResolver creates a Resolver.
func NewResolver(httpClient HTTPClient, config Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		httpClient: httpClient,
		config:     config,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsEmptyURI reports whether uri carries no location: empty, or only NUL and spaces.
func IsEmptyURI(uri string) bool {
	return strings.Trim(uri, "\x00 ") == ""
}

// Resolve fetches the document at uri. An empty URI yields nil, nil without
// any network call.
func (r *Resolver) Resolve(ctx context.Context, uri string) (*domain.OffchainMetadata, error) {
	if IsEmptyURI(uri) {
		logger.DebugCtx(ctx, "Metadata has no uri, skipping off-chain document")
		return nil, nil
	}

	url := r.canonicalURL(strings.TrimSpace(uri))

	start := time.Now()
	body, err := r.httpClient.Get(ctx, url)
	if err != nil {
		observability.RecordURIFetch("unreachable", time.Since(start).Seconds())
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrURIUnreachable, url, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		observability.RecordURIFetch("invalid_json", time.Since(start).Seconds())
		if err == nil {
			err = errors.New("document is null")
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrURIInvalidJSON, url, err)
	}
	observability.RecordURIFetch("ok", time.Since(start).Seconds())

	doc := &domain.OffchainMetadata{
		URL:         url,
		Raw:         raw,
		Name:        stringField(raw, "name"),
		Symbol:      stringField(raw, "symbol"),
		Description: stringField(raw, "description"),
		Image:       stringField(raw, "image"),
		ExternalURL: stringField(raw, "external_url"),
		Website:     stringField(raw, "website"),
	}

	if r.probe != nil {
		r.probeWebsite(ctx, doc)
	}

	return doc, nil
}

// canonicalURL rewrites ipfs:// and ar:// URIs onto an HTTP gateway.
func (r *Resolver) canonicalURL(uri string) string {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok && len(r.config.IPFSGateways) > 0 {
		cid = strings.TrimPrefix(cid, "ipfs/")
		return fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(r.config.IPFSGateways[0], "/"), cid)
	}
	if txID, ok := strings.CutPrefix(uri, "ar://"); ok && len(r.config.ArweaveGateways) > 0 {
		return fmt.Sprintf("%s/%s", strings.TrimRight(r.config.ArweaveGateways[0], "/"), txID)
	}
	return uri
}

func (r *Resolver) probeWebsite(ctx context.Context, doc *domain.OffchainMetadata) {
	site := doc.Website
	if site == "" {
		site = doc.ExternalURL
	}
	host := websiteHost(site)
	if host == "" {
		return
	}

	count, err := r.probe.CountRecords(ctx, host)
	if err != nil {
		logger.WarnCtx(ctx, "Website DNS lookup failed", zap.String("host", host), zap.Error(err))
		return
	}
	doc.WebsiteDNSRecords = &count
}

// stringField extracts a string value; other types are left in Raw only.
func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
