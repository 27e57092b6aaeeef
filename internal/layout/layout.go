// Package layout decodes and encodes the on-chain account layouts used by
// token lookups: the SPL Token mint and the Metaplex metadata account.
package layout

import (
	"fmt"

	bin "github.com/gagliardetto/binary"

	"solana-token-info/internal/domain"
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformedAccount}, args...)...)
}

func readKey(dec *bin.Decoder, field string) (domain.PublicKey, error) {
	if dec.Remaining() < domain.PublicKeySize {
		return domain.PublicKey{}, malformed("%s: need %d bytes, have %d", field, domain.PublicKeySize, dec.Remaining())
	}
	raw, err := dec.ReadNBytes(domain.PublicKeySize)
	if err != nil {
		return domain.PublicKey{}, malformed("%s: %v", field, err)
	}
	return domain.PublicKeyFromBytes(raw)
}

// readFlag reads a single byte that must be 0 or 1.
func readFlag(dec *bin.Decoder, field string) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, malformed("%s: %v", field, err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, malformed("%s: invalid flag %d", field, b)
	}
}
