package solana_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/solana/stub"
)

const (
	usdcMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	tokenProgram = "TokenkegQfeZyiNwAJbNbGqPXmkM9Bb4Mo7f9yQDz9YVKS"
)

func TestAccountFetcher_Found(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddAccount(usdcMint, tokenProgram, []byte{1, 2, 3, 4})

	acc, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	require.NoError(t, err)

	assert.Equal(t, solana.AccountFound, acc.State)
	assert.Equal(t, []byte{1, 2, 3, 4}, acc.Data)
	assert.Equal(t, tokenProgram, acc.Owner.String())
	assert.Equal(t, usdcMint, acc.Address.String())
	assert.Equal(t, 1, rpc.Calls(usdcMint))
}

func TestAccountFetcher_Missing(t *testing.T) {
	rpc := stub.NewRPCClient()

	acc, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	require.NoError(t, err)

	assert.Equal(t, solana.AccountMissing, acc.State)
	assert.Empty(t, acc.Data)
}

func TestAccountFetcher_TransportError(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddError(usdcMint, errors.New("connection reset"))

	_, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, domain.ReasonFetchFailed, domain.ReasonOf(err))
}

func TestAccountFetcher_BadPayload(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Accounts[usdcMint] = &solana.AccountInfo{Owner: tokenProgram, Data: "!!not base64!!", Encoding: "base64"}

	_, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	assert.ErrorIs(t, err, domain.ErrFetchFailed)

	rpc.Accounts[usdcMint] = &solana.AccountInfo{Owner: tokenProgram, Data: "AQID", Encoding: "jsonParsed"}
	_, err = solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestAccountFetcher_Canceled(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddAccount(usdcMint, tokenProgram, []byte{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solana.NewAccountFetcher(rpc).Fetch(ctx, domain.MustParsePublicKey(usdcMint))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrFetchFailed)
}

func TestAccountFetcher_ClientTimeoutIsFetchFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	rpc := solana.NewHTTPClient(server.URL, solana.WithTimeout(50*time.Millisecond))

	_, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, domain.ReasonFetchFailed, domain.ReasonOf(err))
}

func TestAccountFetcher_DeadlineFromTransportOnLiveContext(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddError(usdcMint, fmt.Errorf("http request: %w", context.DeadlineExceeded))

	_, err := solana.NewAccountFetcher(rpc).Fetch(context.Background(), domain.MustParsePublicKey(usdcMint))
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, domain.ReasonFetchFailed, domain.ReasonOf(err))
}

func TestAccountFetcher_CallerDeadline(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddAccount(usdcMint, tokenProgram, []byte{1})
	rpc.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := solana.NewAccountFetcher(rpc).Fetch(ctx, domain.MustParsePublicKey(usdcMint))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrFetchFailed)
}
