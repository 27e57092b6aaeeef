package stub

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"solana-token-info/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
// Safe for concurrent use by lookup workers.
type RPCClient struct {
	mu       sync.Mutex
	Accounts map[string]*solana.AccountInfo
	Errors   map[string]error
	Slot     int64
	// Delay is applied before every GetAccountInfo call; it honors ctx.
	Delay time.Duration
	calls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string]*solana.AccountInfo),
		Errors:   make(map[string]error),
		calls:    make(map[string]int),
	}
}

// GetAccountInfo returns the stored account, the stored error, or nil when absent.
func (c *RPCClient) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	c.calls[pubkey]++
	delay := c.Delay
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.Errors[pubkey]; ok {
		return nil, err
	}
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.Slot, nil
}

// AddAccount stores raw account bytes under the given address.
func (c *RPCClient) AddAccount(pubkey, owner string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = &solana.AccountInfo{
		Lamports: 1461600,
		Owner:    owner,
		Data:     base64.StdEncoding.EncodeToString(data),
		Encoding: "base64",
	}
}

// AddError makes every GetAccountInfo call for pubkey fail with err.
func (c *RPCClient) AddError(pubkey string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[pubkey] = err
}

// Calls returns how many times pubkey was requested.
func (c *RPCClient) Calls(pubkey string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[pubkey]
}
