package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-info/internal/domain"
)

var (
	authority = domain.MustParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	freezer   = domain.MustParsePublicKey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// rawMint builds a mint buffer by hand, independent of EncodeMint.
func rawMint(mintAuth *domain.PublicKey, supply uint64, decimals uint8, initialized bool, freeze *domain.PublicKey) []byte {
	buf := make([]byte, MintSize)
	if mintAuth != nil {
		binary.LittleEndian.PutUint32(buf[0:4], 1)
		copy(buf[4:36], mintAuth[:])
	}
	binary.LittleEndian.PutUint64(buf[36:44], supply)
	buf[44] = decimals
	if initialized {
		buf[45] = 1
	}
	if freeze != nil {
		binary.LittleEndian.PutUint32(buf[46:50], 1)
		copy(buf[50:82], freeze[:])
	}
	return buf
}

func TestDecodeMint(t *testing.T) {
	data := rawMint(&authority, 1_000_000_000, 6, true, nil)

	m, err := DecodeMint(data)
	require.NoError(t, err)

	key, ok := m.MintAuthority.Get()
	assert.True(t, ok)
	assert.Equal(t, authority, key)
	assert.Equal(t, uint64(1_000_000_000), m.Supply)
	assert.Equal(t, uint8(6), m.Decimals)
	assert.True(t, m.IsInitialized)
	assert.False(t, m.FreezeAuthority.Present)
	assert.Equal(t, "1000", m.UISupply())
}

func TestDecodeMint_FreezeAuthority(t *testing.T) {
	data := rawMint(nil, 42, 0, true, &freezer)

	m, err := DecodeMint(data)
	require.NoError(t, err)

	assert.False(t, m.MintAuthority.Present)
	assert.True(t, m.FreezeAuthority.Present)
	assert.Equal(t, freezer, m.FreezeAuthority.Key)
}

func TestDecodeMint_WrongLength(t *testing.T) {
	full := rawMint(&authority, 1, 9, true, &freezer)

	for _, n := range []int{0, 1, 36, 44, 45, 81} {
		m, err := DecodeMint(full[:n])
		assert.ErrorIs(t, err, domain.ErrMalformedAccount, "length %d", n)
		assert.Nil(t, m, "length %d must not return a partial record", n)
	}

	m, err := DecodeMint(append(full, 0))
	assert.ErrorIs(t, err, domain.ErrMalformedAccount)
	assert.Nil(t, m)
}

func TestDecodeMint_InvalidOptionTag(t *testing.T) {
	data := rawMint(&authority, 1, 9, true, nil)
	binary.LittleEndian.PutUint32(data[0:4], 2)

	m, err := DecodeMint(data)
	assert.ErrorIs(t, err, domain.ErrMalformedAccount)
	assert.Nil(t, m)

	data = rawMint(&authority, 1, 9, true, nil)
	binary.LittleEndian.PutUint32(data[46:50], 0x0100)
	_, err = DecodeMint(data)
	assert.ErrorIs(t, err, domain.ErrMalformedAccount)
}

func TestDecodeMint_InvalidInitializedFlag(t *testing.T) {
	data := rawMint(&authority, 1, 9, true, nil)
	data[45] = 7

	m, err := DecodeMint(data)
	assert.ErrorIs(t, err, domain.ErrMalformedAccount)
	assert.Nil(t, m)
}

func TestMint_RoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"both authorities": rawMint(&authority, 1_000_000_000, 6, true, &freezer),
		"no authorities":   rawMint(nil, 0, 0, false, nil),
		"max supply":       rawMint(&authority, ^uint64(0), 255, true, nil),
	}

	// Absent option with leftover key bytes still round-trips exactly.
	dirty := rawMint(nil, 5, 2, true, nil)
	copy(dirty[4:36], freezer[:])
	cases["absent option with stale key bytes"] = dirty

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := DecodeMint(data)
			require.NoError(t, err)

			encoded, err := EncodeMint(m)
			require.NoError(t, err)
			assert.Equal(t, data, encoded)
		})
	}
}
