package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"solana-token-info/internal/domain"
)

// AccountState tells whether a fetched account exists.
type AccountState int

const (
	AccountMissing AccountState = iota
	AccountFound
)

func (s AccountState) String() string {
	if s == AccountFound {
		return "found"
	}
	return "missing"
}

// Account is a decoded ledger account. Data is empty when State is AccountMissing.
type Account struct {
	State    AccountState
	Address  domain.PublicKey
	Owner    domain.PublicKey
	Lamports uint64
	Data     []byte
}

// AccountGetter is the subset of RPCClient the fetcher needs.
type AccountGetter interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// AccountFetcher reads raw account bytes from the ledger.
// Transport failures are reported as domain.ErrFetchFailed, a missing account
// is reported through Account.State, never as an error.
type AccountFetcher struct {
	rpc AccountGetter
}

// NewAccountFetcher creates an AccountFetcher.
func NewAccountFetcher(rpc AccountGetter) *AccountFetcher {
	return &AccountFetcher{rpc: rpc}
}

// Fetch retrieves the account stored at addr.
func (f *AccountFetcher) Fetch(ctx context.Context, addr domain.PublicKey) (Account, error) {
	acc := Account{Address: addr}

	info, err := f.rpc.GetAccountInfo(ctx, addr.String())
	if err != nil {
		// Only the caller's own cancellation passes through; a client
		// timeout on a live ctx is a transport failure.
		if ctx.Err() != nil {
			return acc, err
		}
		return acc, fmt.Errorf("%w: get account %s: %v", domain.ErrFetchFailed, addr, err)
	}
	if info == nil {
		acc.State = AccountMissing
		return acc, nil
	}

	if info.Encoding != "" && info.Encoding != "base64" {
		return acc, fmt.Errorf("%w: account %s: unexpected encoding %q", domain.ErrFetchFailed, addr, info.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return acc, fmt.Errorf("%w: account %s: decode base64: %v", domain.ErrFetchFailed, addr, err)
	}

	if info.Owner != "" {
		owner, err := domain.ParsePublicKey(info.Owner)
		if err != nil {
			return acc, fmt.Errorf("%w: account %s: owner: %v", domain.ErrFetchFailed, addr, err)
		}
		acc.Owner = owner
	}

	acc.State = AccountFound
	acc.Lamports = info.Lamports
	acc.Data = data
	return acc, nil
}
