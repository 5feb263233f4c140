package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlexCount(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		size    int
		want    int
		wantErr bool
	}{
		{name: "one record", length: 20, size: 8, want: 1},
		{name: "boundary only", length: 4, size: 8, want: 0},
		{name: "three pieces", length: 4 + 3*12, size: 8, want: 3},
		{name: "remainder", length: 21, size: 8, wantErr: true},
		{name: "shorter than boundary", length: 3, size: 8, wantErr: true},
		{name: "empty", length: 0, size: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := PlexCount(tt.length, tt.size)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedPlex)
				assert.ErrorIs(t, err, ErrMalformedLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestDecodePlex(t *testing.T) {
	t.Run("boundaries bracket records", func(t *testing.T) {
		block := buildClx([]int32{0, 10}, buildPCD(0, 0x800, 0))[5:]
		require.Len(t, block, 16)

		p, err := DecodePlex[PieceDescriptor](block, PieceCodec{})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Len())
		assert.Equal(t, []int32{0, 10}, p.Boundaries)
	})

	t.Run("empty plex", func(t *testing.T) {
		p, err := DecodePlex[PieceDescriptor]([]byte{0x10, 0, 0, 0}, PieceCodec{})
		require.NoError(t, err)
		assert.Equal(t, 0, p.Len())
		assert.Equal(t, []int32{16}, p.Boundaries)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		block := append(buildClx([]int32{0, 10}, buildPCD(0, 0, 0))[5:], 0xFF)
		_, err := DecodePlex[PieceDescriptor](block, PieceCodec{})
		assert.ErrorIs(t, err, ErrMalformedPlex)
	})

	t.Run("boundaries need not be monotonic", func(t *testing.T) {
		block := buildClx([]int32{50, 10, 20}, buildPCD(0, 0, 0), buildPCD(0, 0, 0))[5:]
		p, err := DecodePlex[PieceDescriptor](block, PieceCodec{})
		require.NoError(t, err)
		assert.Equal(t, []int32{50, 10, 20}, p.Boundaries)
	})
}

func TestPlexEncodeRoundTrip(t *testing.T) {
	codec := PieceCodec{}
	orig := buildClx([]int32{0, 100, 250},
		buildPCD(pcdNoParaLast|0x0003, 0x40001000, 0x1234),
		buildPCD(0, 0x2000, 0),
	)[5:]

	p, err := DecodePlex[PieceDescriptor](orig, codec)
	require.NoError(t, err)
	assert.Equal(t, orig, p.Encode(codec.Encode))
}
