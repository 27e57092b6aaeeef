// Package pda derives Solana program-derived addresses.
package pda

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"

	"solana-token-info/internal/domain"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included.
	MaxSeeds = 16
	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

// TokenMetadataProgramID is the Metaplex Token Metadata program.
var TokenMetadataProgramID = domain.MustParsePublicKey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// metadataSeed prefixes every metadata account derivation.
var metadataSeed = []byte("metadata")

// Deriver computes program-derived addresses. The zero value is not usable;
// use NewDeriver.
type Deriver struct {
	onCurve func(point []byte) bool
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithCurveCheck replaces the ed25519 point test. Used to exercise bump exhaustion.
func WithCurveCheck(fn func(point []byte) bool) Option {
	return func(d *Deriver) {
		d.onCurve = fn
	}
}

// NewDeriver creates a Deriver using the ed25519 curve check.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{onCurve: IsOnCurve}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateProgramAddress hashes seeds || program || "ProgramDerivedAddress".
// It fails if the hash is a valid ed25519 point.
func (d *Deriver) CreateProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return domain.PublicKey{}, fmt.Errorf("too many seeds: %d > %d", len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return domain.PublicKey{}, fmt.Errorf("seed %d too long: %d > %d", i, len(seed), MaxSeedLen)
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var addr domain.PublicKey
	copy(addr[:], h.Sum(nil))

	if d.onCurve(addr[:]) {
		return domain.PublicKey{}, errOnCurve
	}
	return addr, nil
}

var errOnCurve = fmt.Errorf("address is on the ed25519 curve")

// FindProgramAddress searches bumps 255 down to 0 and returns the first
// off-curve address together with its canonical bump.
func (d *Deriver) FindProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.PublicKey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return domain.PublicKey{}, 0, fmt.Errorf("too many seeds: %d, bump needs a slot", len(seeds))
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := d.CreateProgramAddress(withBump, program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if err != errOnCurve {
			return domain.PublicKey{}, 0, err
		}
	}

	return domain.PublicKey{}, 0, fmt.Errorf("%w: no off-curve address for program %s after 256 bumps",
		domain.ErrDerivationExhausted, program)
}

// MetadataAddress derives the Metaplex metadata account for a mint.
// Seeds: ["metadata", metadata_program_id, mint]
func (d *Deriver) MetadataAddress(mint domain.PublicKey) (domain.PublicKey, uint8, error) {
	seeds := [][]byte{
		metadataSeed,
		TokenMetadataProgramID[:],
		mint[:],
	}
	return d.FindProgramAddress(seeds, TokenMetadataProgramID)
}

// IsOnCurve reports whether point decodes to an ed25519 curve point.
func IsOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
