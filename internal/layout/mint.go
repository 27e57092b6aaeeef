package layout

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"solana-token-info/internal/domain"
)

// MintSize is the size of an SPL Token mint account.
//
// Layout (82 bytes):
//   - mintAuthority: COption<Pubkey> (4 + 32)
//   - supply: u64 (8)
//   - decimals: u8 (1)
//   - isInitialized: bool (1)
//   - freezeAuthority: COption<Pubkey> (4 + 32)
const MintSize = 82

// DecodeMint parses an SPL Token mint account. The buffer must be exactly MintSize bytes.
func DecodeMint(data []byte) (*domain.MintAccount, error) {
	if len(data) != MintSize {
		return nil, malformed("mint account length %d, want %d", len(data), MintSize)
	}

	dec := bin.NewBorshDecoder(data)

	mintAuthority, err := readCOptionKey(dec, "mint_authority")
	if err != nil {
		return nil, err
	}

	supply, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return nil, malformed("supply: %v", err)
	}

	decimals, err := dec.ReadUint8()
	if err != nil {
		return nil, malformed("decimals: %v", err)
	}

	initialized, err := readFlag(dec, "is_initialized")
	if err != nil {
		return nil, err
	}

	freezeAuthority, err := readCOptionKey(dec, "freeze_authority")
	if err != nil {
		return nil, err
	}

	return &domain.MintAccount{
		MintAuthority:   mintAuthority,
		Supply:          supply,
		Decimals:        decimals,
		IsInitialized:   initialized,
		FreezeAuthority: freezeAuthority,
	}, nil
}

// EncodeMint serializes a mint back into its 82-byte layout.
func EncodeMint(m *domain.MintAccount) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := writeCOptionKey(enc, m.MintAuthority); err != nil {
		return nil, fmt.Errorf("encode mint_authority: %w", err)
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return nil, fmt.Errorf("encode supply: %w", err)
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return nil, fmt.Errorf("encode decimals: %w", err)
	}
	if err := enc.WriteBool(m.IsInitialized); err != nil {
		return nil, fmt.Errorf("encode is_initialized: %w", err)
	}
	if err := writeCOptionKey(enc, m.FreezeAuthority); err != nil {
		return nil, fmt.Errorf("encode freeze_authority: %w", err)
	}

	return buf.Bytes(), nil
}

// readCOptionKey reads a C-compatible Option<Pubkey>: u32 tag then 32 key bytes,
// which are present on the wire even when the tag is 0.
func readCOptionKey(dec *bin.Decoder, field string) (domain.OptionalKey, error) {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return domain.OptionalKey{}, malformed("%s tag: %v", field, err)
	}
	if tag > 1 {
		return domain.OptionalKey{}, malformed("%s: invalid option tag %d", field, tag)
	}

	key, err := readKey(dec, field)
	if err != nil {
		return domain.OptionalKey{}, err
	}

	return domain.OptionalKey{Key: key, Present: tag == 1}, nil
}

func writeCOptionKey(enc *bin.Encoder, o domain.OptionalKey) error {
	var tag uint32
	if o.Present {
		tag = 1
	}
	if err := enc.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(o.Key[:], false)
}
