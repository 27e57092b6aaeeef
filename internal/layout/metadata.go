package layout

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"

	"solana-token-info/internal/domain"
)

// KeyMetadataV1 is the account discriminator of a Metaplex metadata account.
const KeyMetadataV1 uint8 = 4

// Field capacities enforced by the Token Metadata program.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

// MetadataHeaderSize is key(1) + updateAuthority(32) + mint(32).
const MetadataHeaderSize = 1 + domain.PublicKeySize + domain.PublicKeySize

// DecodeMetadata parses the leading part of a Metaplex metadata account:
//
//   - key: u8 (4 for MetadataV1)
//   - updateAuthority: Pubkey
//   - mint: Pubkey
//   - name: String (u32 length + bytes, max 32)
//   - symbol: String (u32 length + bytes, max 10)
//   - uri: String (u32 length + bytes, max 200)
//
// Fields after the URI (seller fee, creators, collection...) are not read.
// Strings are stored padded with NUL bytes; only trailing NULs are trimmed.
// The decoded mint must equal expectedMint.
func DecodeMetadata(data []byte, expectedMint domain.PublicKey) (*domain.MetadataAccount, error) {
	if len(data) < MetadataHeaderSize {
		return nil, malformed("metadata account length %d, need at least %d", len(data), MetadataHeaderSize)
	}

	dec := bin.NewBorshDecoder(data)

	key, err := dec.ReadUint8()
	if err != nil {
		return nil, malformed("key: %v", err)
	}
	if key != KeyMetadataV1 {
		return nil, malformed("unexpected account key %d, want %d", key, KeyMetadataV1)
	}

	updateAuthority, err := readKey(dec, "update_authority")
	if err != nil {
		return nil, err
	}
	mint, err := readKey(dec, "mint")
	if err != nil {
		return nil, err
	}

	name, err := readString(dec, "name", MaxNameLength)
	if err != nil {
		return nil, err
	}
	symbol, err := readString(dec, "symbol", MaxSymbolLength)
	if err != nil {
		return nil, err
	}
	uri, err := readString(dec, "uri", MaxURILength)
	if err != nil {
		return nil, err
	}

	if !mint.Equal(expectedMint) {
		return nil, fmt.Errorf("%w: account references mint %s, queried %s",
			domain.ErrMetadataMismatch, mint, expectedMint)
	}

	return &domain.MetadataAccount{
		Key:             key,
		UpdateAuthority: updateAuthority,
		Mint:            mint,
		Name:            name,
		Symbol:          symbol,
		URI:             uri,
	}, nil
}

// readString reads a u32 length-prefixed string of at most capacity bytes.
func readString(dec *bin.Decoder, field string, capacity int) (string, error) {
	if dec.Remaining() < 4 {
		return "", malformed("%s: missing length prefix", field)
	}
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", malformed("%s length: %v", field, err)
	}
	if uint64(n) > uint64(dec.Remaining()) {
		return "", malformed("%s: length %d exceeds remaining %d bytes", field, n, dec.Remaining())
	}
	// The Token Metadata program never stores more than these caps, so a
	// larger prefix means the buffer is not a metadata account.
	if int(n) > capacity {
		return "", malformed("%s: length %d exceeds capacity %d", field, n, capacity)
	}

	raw, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", malformed("%s: %v", field, err)
	}
	if !utf8.Valid(raw) {
		return "", malformed("%s: invalid utf-8", field)
	}

	return strings.TrimRight(string(raw), "\x00"), nil
}

// EncodeMetadata serializes the fields DecodeMetadata reads. With padded set,
// strings are NUL-padded to their capacity as the Token Metadata program stores them.
func EncodeMetadata(m *domain.MetadataAccount, padded bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	key := m.Key
	if key == 0 {
		key = KeyMetadataV1
	}
	if err := enc.WriteUint8(key); err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}
	if err := enc.WriteBytes(m.UpdateAuthority[:], false); err != nil {
		return nil, fmt.Errorf("encode update_authority: %w", err)
	}
	if err := enc.WriteBytes(m.Mint[:], false); err != nil {
		return nil, fmt.Errorf("encode mint: %w", err)
	}

	fields := []struct {
		name     string
		value    string
		capacity int
	}{
		{"name", m.Name, MaxNameLength},
		{"symbol", m.Symbol, MaxSymbolLength},
		{"uri", m.URI, MaxURILength},
	}
	for _, f := range fields {
		if len(f.value) > f.capacity {
			return nil, fmt.Errorf("encode %s: length %d exceeds capacity %d", f.name, len(f.value), f.capacity)
		}
		raw := []byte(f.value)
		if padded {
			raw = append(raw, make([]byte, f.capacity-len(raw))...)
		}
		if err := enc.WriteUint32(uint32(len(raw)), bin.LE); err != nil {
			return nil, fmt.Errorf("encode %s length: %w", f.name, err)
		}
		if err := enc.WriteBytes(raw, false); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.name, err)
		}
	}

	return buf.Bytes(), nil
}
