package offchain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-info/internal/domain"
)

type stubHTTPClient struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls []string
}

func (c *stubHTTPClient) Get(_ context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, url)
	return c.body, c.err
}

type stubProbe struct {
	count int
	err   error
	hosts []string
}

func (p *stubProbe) CountRecords(_ context.Context, host string) (int, error) {
	p.hosts = append(p.hosts, host)
	return p.count, p.err
}

func TestResolver_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"USD Coin","symbol":"USDC","description":"stable","image":"https://img/usdc.png","decimals":6,"extensions":{"twitter":"x"}}`))
	}))
	defer server.Close()

	r := NewResolver(NewHTTPClient(time.Second), DefaultConfig())
	doc, err := r.Resolve(context.Background(), server.URL+"/usdc.json")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, server.URL+"/usdc.json", doc.URL)
	assert.Equal(t, "USD Coin", doc.Name)
	assert.Equal(t, "USDC", doc.Symbol)
	assert.Equal(t, "stable", doc.Description)
	assert.Equal(t, "https://img/usdc.png", doc.Image)
	assert.Equal(t, float64(6), doc.Raw["decimals"])
	assert.Contains(t, doc.Raw, "extensions")
	assert.Nil(t, doc.WebsiteDNSRecords)
}

func TestResolver_EmptyURIMakesNoCall(t *testing.T) {
	client := &stubHTTPClient{body: []byte(`{}`)}
	r := NewResolver(client, DefaultConfig())

	for _, uri := range []string{"", "\x00\x00\x00", "   ", " \x00 "} {
		doc, err := r.Resolve(context.Background(), uri)
		require.NoError(t, err)
		assert.Nil(t, doc)
	}
	assert.Empty(t, client.calls)
}

func TestResolver_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver(NewHTTPClient(time.Second), DefaultConfig())
	_, err := r.Resolve(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrURIUnreachable)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr), "status detail is flattened into the message")
	assert.Contains(t, err.Error(), "404")
}

func TestResolver_TransportError(t *testing.T) {
	r := NewResolver(&stubHTTPClient{err: errors.New("dial tcp: no route to host")}, DefaultConfig())

	_, err := r.Resolve(context.Background(), "https://example.invalid/meta.json")
	assert.ErrorIs(t, err, domain.ErrURIUnreachable)
	assert.Equal(t, domain.ReasonURIUnreachable, domain.ReasonOf(err))
}

func TestResolver_TimeoutIsUnreachable(t *testing.T) {
	client := &stubHTTPClient{err: fmt.Errorf("failed to perform request: %w", context.DeadlineExceeded)}
	r := NewResolver(client, DefaultConfig())

	_, err := r.Resolve(context.Background(), "https://slow.example/meta.json")
	assert.ErrorIs(t, err, domain.ErrURIUnreachable)
	assert.Equal(t, domain.ReasonURIUnreachable, domain.ReasonOf(err))
}

func TestResolver_CallerCancellationPassesThrough(t *testing.T) {
	client := &stubHTTPClient{err: fmt.Errorf("failed to perform request: %w", context.Canceled)}
	r := NewResolver(client, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "https://slow.example/meta.json")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrURIUnreachable)
}

func TestResolver_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"array", `[1,2,3]`},
		{"string", `"hello"`},
		{"null", `null`},
		{"truncated", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&stubHTTPClient{body: []byte(tt.body)}, DefaultConfig())
			_, err := r.Resolve(context.Background(), "https://example.com/meta.json")
			assert.ErrorIs(t, err, domain.ErrURIInvalidJSON)
		})
	}
}

func TestResolver_NonStringFieldsStayRaw(t *testing.T) {
	r := NewResolver(&stubHTTPClient{body: []byte(`{"name":42,"symbol":null}`)}, DefaultConfig())

	doc, err := r.Resolve(context.Background(), "https://example.com/meta.json")
	require.NoError(t, err)
	assert.Empty(t, doc.Name)
	assert.Empty(t, doc.Symbol)
	assert.Equal(t, float64(42), doc.Raw["name"])
}

func TestResolver_GatewayRewrite(t *testing.T) {
	client := &stubHTTPClient{body: []byte(`{}`)}
	r := NewResolver(client, Config{
		IPFSGateways:    []string{"https://gw.example/"},
		ArweaveGateways: []string{"https://ar.example"},
	})

	_, err := r.Resolve(context.Background(), "ipfs://bafkreiabc")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "ipfs://ipfs/QmXyz")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "ar://tx123")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "https://arweave.net/tx456")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://gw.example/ipfs/bafkreiabc",
		"https://gw.example/ipfs/QmXyz",
		"https://ar.example/tx123",
		"https://arweave.net/tx456",
	}, client.calls)
}

func TestResolver_WebsiteProbe(t *testing.T) {
	probe := &stubProbe{count: 3}
	r := NewResolver(&stubHTTPClient{body: []byte(`{"website":" \"https://bonkcoin.com/about\" "}`)},
		DefaultConfig(), WithWebsiteProbe(probe))

	doc, err := r.Resolve(context.Background(), "https://example.com/meta.json")
	require.NoError(t, err)
	require.NotNil(t, doc.WebsiteDNSRecords)
	assert.Equal(t, 3, *doc.WebsiteDNSRecords)
	assert.Equal(t, []string{"bonkcoin.com"}, probe.hosts)
}

func TestResolver_WebsiteProbeFallsBackToExternalURL(t *testing.T) {
	probe := &stubProbe{count: 1}
	r := NewResolver(&stubHTTPClient{body: []byte(`{"external_url":"www.example.org"}`)},
		DefaultConfig(), WithWebsiteProbe(probe))

	doc, err := r.Resolve(context.Background(), "https://example.com/meta.json")
	require.NoError(t, err)
	require.NotNil(t, doc.WebsiteDNSRecords)
	assert.Equal(t, []string{"www.example.org"}, probe.hosts)
}

func TestResolver_WebsiteProbeFailureIsIgnored(t *testing.T) {
	probe := &stubProbe{err: errors.New("no such host")}
	r := NewResolver(&stubHTTPClient{body: []byte(`{"website":"https://nowhere.invalid"}`)},
		DefaultConfig(), WithWebsiteProbe(probe))

	doc, err := r.Resolve(context.Background(), "https://example.com/meta.json")
	require.NoError(t, err)
	assert.Nil(t, doc.WebsiteDNSRecords)

	probe = &stubProbe{}
	r = NewResolver(&stubHTTPClient{body: []byte(`{"name":"x"}`)}, DefaultConfig(), WithWebsiteProbe(probe))
	_, err = r.Resolve(context.Background(), "https://example.com/meta.json")
	require.NoError(t, err)
	assert.Empty(t, probe.hosts, "no website, no lookup")
}

func TestWebsiteHost(t *testing.T) {
	tests := map[string]string{
		"https://bonkcoin.com":          "bonkcoin.com",
		"\"https://bonkcoin.com\"":      "bonkcoin.com",
		"http://example.com:8080/x?y=1": "example.com",
		"example.com":                   "example.com",
		"  ":                            "",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, websiteHost(in), in)
	}
}
