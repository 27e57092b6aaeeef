package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/layout"
)

const usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

// newLedger serves getAccountInfo for the given accounts; everything else is missing.
func newLedger(t *testing.T, accounts map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Params []any  `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var value any
		if key, _ := req.Params[0].(string); accounts[key] != nil {
			value = map[string]any{
				"lamports": 1461600,
				"owner":    "TokenkegQfeZyiNwAJbNbGqPXmkM9Bb4Mo7f9yQDz9YVKS",
				"data":     []string{base64.StdEncoding.EncodeToString(accounts[key]), "base64"},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]any{"value": value},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func mintData(t *testing.T) []byte {
	t.Helper()
	data, err := layout.EncodeMint(&domain.MintAccount{Supply: 1_500_000, Decimals: 6, IsInitialized: true})
	require.NoError(t, err)
	return data
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no mints", nil},
		{"invalid mint", []string{"not-a-mint"}},
		{"one bad among good", []string{usdc, "0OIl"}},
		{"unknown flag", []string{"-nope", usdc}},
		{"negative concurrency", []string{"-concurrency", "-1", usdc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRun_JSON(t *testing.T) {
	ledger := newLedger(t, map[string][]byte{usdc: mintData(t)})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-rpc-endpoint", ledger.URL, "-json", usdc, usdc}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report struct {
		Tokens []struct {
			Mint    string `json:"mint"`
			Outcome string `json:"outcome"`
			Issues  []struct {
				Stage  string `json:"stage"`
				Reason string `json:"reason"`
			} `json:"issues"`
		} `json:"tokens"`
		ElapsedMS *int64 `json:"elapsed_ms"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Tokens, 2)
	for _, tok := range report.Tokens {
		assert.Equal(t, usdc, tok.Mint)
		assert.Equal(t, "partial", tok.Outcome)
		require.Len(t, tok.Issues, 1)
		assert.Equal(t, "metadata_fetch", tok.Issues[0].Stage)
		assert.Equal(t, "AccountNotFound", tok.Issues[0].Reason)
	}
	assert.NotNil(t, report.ElapsedMS)
}

func TestRun_Text(t *testing.T) {
	ledger := newLedger(t, nil)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-rpc-endpoint", ledger.URL, usdc}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Token "+usdc+" (failed)")
	assert.Contains(t, out, "! mint: AccountNotFound")
	assert.Contains(t, out, "Total elapsed time:")
}

func TestRun_Cancelled(t *testing.T) {
	ledger := newLedger(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-rpc-endpoint", ledger.URL, usdc}, &stdout, &stderr)
	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "lookup aborted")
}

func TestPrinter_Text(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	mint := domain.MustParsePublicKey(usdc)
	metaAddr := domain.MustParsePublicKey("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	records := 2

	info := domain.TokenInfo{
		Mint: mint,
		MintAccount: &domain.MintAccount{
			MintAuthority: domain.Some(mint),
			Supply:        1_500_000,
			Decimals:      6,
			IsInitialized: true,
		},
		MetadataAddress: &metaAddr,
		Metadata:        &domain.MetadataAccount{Mint: mint, Name: "USD Coin", Symbol: "USDC", URI: "https://x/usdc.json"},
		Offchain: &domain.OffchainMetadata{
			URL:               "https://x/usdc.json",
			Description:       "stable",
			Website:           "https://circle.com",
			WebsiteDNSRecords: &records,
		},
		Outcome:   domain.OutcomeFull,
		FetchedAt: start.Add(250 * time.Millisecond).UnixMilli(),
	}

	var buf bytes.Buffer
	p := printer{w: &buf, start: start}
	p.printText([]domain.TokenInfo{info}, time.Second)

	out := buf.String()
	assert.Contains(t, out, "Token "+usdc+" (full)")
	assert.Contains(t, out, "supply:           1.5 (raw 1500000, decimals 6)")
	assert.Contains(t, out, "mint authority:   "+usdc)
	assert.Contains(t, out, "freeze authority: none")
	assert.Contains(t, out, "metadata account: "+metaAddr.String())
	assert.Contains(t, out, "name:             USD Coin")
	assert.Contains(t, out, "description:      stable")
	assert.Contains(t, out, "website dns:      2 records")
	assert.Contains(t, out, "time taken:       250ms")
	assert.NotContains(t, out, "image:")
	assert.True(t, strings.HasSuffix(out, "Total elapsed time: 1s\n"))
}
