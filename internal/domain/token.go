package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// OptionalKey is a public key that may be absent on-chain.
// Key keeps the stored bytes even when Present is false so layouts re-encode exactly.
type OptionalKey struct {
	Key     PublicKey
	Present bool
}

// Some returns a present OptionalKey.
func Some(pk PublicKey) OptionalKey {
	return OptionalKey{Key: pk, Present: true}
}

// Get returns the key and whether it is present.
func (o OptionalKey) Get() (PublicKey, bool) {
	return o.Key, o.Present
}

// MarshalJSON renders an absent key as null.
func (o OptionalKey) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return []byte(`"` + o.Key.String() + `"`), nil
}

// MintAccount is a decoded SPL Token mint.
type MintAccount struct {
	MintAuthority   OptionalKey `json:"mint_authority"`
	Supply          uint64      `json:"supply"`
	Decimals        uint8       `json:"decimals"` // reported as stored, not range-checked
	IsInitialized   bool        `json:"is_initialized"`
	FreezeAuthority OptionalKey `json:"freeze_authority"`
}

// UISupply returns the supply scaled by decimals with trailing zeros trimmed.
func (m *MintAccount) UISupply() string {
	raw := new(big.Int).SetUint64(m.Supply)
	return decimal.NewFromBigInt(raw, -int32(m.Decimals)).String()
}

// MetadataAccount is a decoded Metaplex token metadata account.
type MetadataAccount struct {
	Key             uint8     `json:"key"`
	UpdateAuthority PublicKey `json:"update_authority"`
	Mint            PublicKey `json:"mint"` // equals the queried mint
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	URI             string    `json:"uri"` // may be empty
}

// OffchainMetadata is the JSON document referenced by MetadataAccount.URI.
// Raw holds the whole document; the named fields are filled when present as strings.
type OffchainMetadata struct {
	URL               string         `json:"url"` // URL actually fetched
	Raw               map[string]any `json:"raw"`
	Name              string         `json:"name,omitempty"`
	Symbol            string         `json:"symbol,omitempty"`
	Description       string         `json:"description,omitempty"`
	Image             string         `json:"image,omitempty"`
	ExternalURL       string         `json:"external_url,omitempty"`
	Website           string         `json:"website,omitempty"`
	WebsiteDNSRecords *int           `json:"website_dns_records,omitempty"`
}

// Outcome summarizes how far a lookup got.
type Outcome string

const (
	OutcomeFull    Outcome = "full"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// Stage names a step of the per-token pipeline.
type Stage string

const (
	StageMint           Stage = "mint"
	StageDerive         Stage = "derive"
	StageMetadataFetch  Stage = "metadata_fetch"
	StageMetadataDecode Stage = "metadata_decode"
	StageURI            Stage = "uri"
)

// StageIssue records a stage that failed or was cut short.
type StageIssue struct {
	Stage   Stage  `json:"stage"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// TokenInfo is the per-mint lookup result.
type TokenInfo struct {
	Mint            PublicKey         `json:"mint"`
	MintAccount     *MintAccount      `json:"mint_account,omitempty"`
	MetadataAddress *PublicKey        `json:"metadata_address,omitempty"`
	Metadata        *MetadataAccount  `json:"metadata,omitempty"`
	Offchain        *OffchainMetadata `json:"offchain,omitempty"`
	Outcome         Outcome           `json:"outcome"`
	Issues          []StageIssue      `json:"issues,omitempty"`
	FetchedAt       int64             `json:"fetched_at"` // ms
}

// Issue returns the issue recorded for stage, if any.
func (t *TokenInfo) Issue(stage Stage) (StageIssue, bool) {
	for _, is := range t.Issues {
		if is.Stage == stage {
			return is, true
		}
	}
	return StageIssue{}, false
}

// TokenSnapshot is a recorded lookup result. Append-only audit history;
// snapshots are never used to answer a lookup.
type TokenSnapshot struct {
	ID        string  // uuid
	Mint      string  // base58 mint address
	Outcome   Outcome // outcome at fetch time
	Name      *string // nullable
	Symbol    *string // nullable
	URI       *string // nullable
	Supply    *string // raw supply as decimal string (nullable)
	Decimals  *int    // nullable
	Payload   []byte  // TokenInfo JSON
	FetchedAt int64   // ms
	CreatedAt int64   // record creation timestamp (ms)
}
