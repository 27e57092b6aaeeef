package domain

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of a Solana public key in bytes.
const PublicKeySize = 32

// PublicKey is a Solana account address.
// Equality and ordering are byte-wise.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if s == "" {
		return pk, fmt.Errorf("empty public key")
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode public key %q: %w", s, err)
	}
	if len(decoded) != PublicKeySize {
		return pk, fmt.Errorf("public key %q has %d bytes, want %d", s, len(decoded), PublicKeySize)
	}
	copy(pk[:], decoded)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for package-level constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PublicKeyFromBytes copies b into a PublicKey. b must be 32 bytes long.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("public key has %d bytes, want %d", len(b), PublicKeySize)
	}
	copy(pk[:], b)
	return pk, nil
}

// String returns the base58 encoding.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the key bytes.
func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk[:])
	return b
}

// Equal reports whether both keys hold the same bytes.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk == other
}

// Compare orders keys byte-wise.
func (pk PublicKey) Compare(other PublicKey) int {
	return bytes.Compare(pk[:], other[:])
}

// IsZero reports whether every byte is zero.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// ParsePublicKeys parses every address, failing on the first invalid one.
func ParsePublicKeys(addrs []string) ([]PublicKey, error) {
	keys := make([]PublicKey, 0, len(addrs))
	for _, a := range addrs {
		pk, err := ParsePublicKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pk)
	}
	return keys, nil
}
