package solana

import "context"

// RPCClient defines the Solana RPC HTTP calls used by token lookups.
type RPCClient interface {
	// GetAccountInfo retrieves an account by address.
	// Returns nil, nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetSlot retrieves the current slot. Used as a connectivity check.
	GetSlot(ctx context.Context) (int64, error)
}
