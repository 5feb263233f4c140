package word

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieceDescriptorFields(t *testing.T) {
	tests := []struct {
		name       string
		raw        []byte
		noParaLast bool
		fn         uint16
		compressed bool
		offset     int64
		prm        uint16
	}{
		{
			name:   "unicode piece",
			raw:    buildPCD(0, 0x0800, 0),
			offset: 0x0800,
		},
		{
			name:       "compressed piece halves the offset",
			raw:        buildPCD(pcdNoParaLast|0x0005, 0x40001000, 0x00AB),
			noParaLast: true,
			fn:         5,
			compressed: true,
			offset:     0x0800,
			prm:        0x00AB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PieceCodec{}.Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.noParaLast, p.NoParaLast)
			assert.Equal(t, tt.fn, p.Fn)
			assert.Equal(t, tt.compressed, p.Compressed())
			assert.Equal(t, tt.offset, p.ActualOffset())
			assert.Equal(t, tt.prm, p.Prm)
		})
	}
}

func TestPieceCodecWrongSize(t *testing.T) {
	_, err := PieceCodec{}.Decode(make([]byte, 7))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodePieceTable(t *testing.T) {
	t.Run("two pieces", func(t *testing.T) {
		clx := buildClx([]int32{0, 12, 30}, buildPCD(0, 0x40001000, 0), buildPCD(0, 0x2400, 0))
		pt, err := DecodePieceTable(clx, true)
		require.NoError(t, err)
		require.Equal(t, 2, pt.Len())
		assert.Equal(t, int64(0x800), pt.Records[0].ActualOffset())
		assert.Equal(t, int64(0x2400), pt.Records[1].ActualOffset())
	})

	t.Run("simple text layout unsupported", func(t *testing.T) {
		clx := buildClx([]int32{0, 12}, buildPCD(0, 0, 0))
		clx[0] = 1
		_, err := DecodePieceTable(clx, true)
		assert.ErrorIs(t, err, ErrUnsupportedVariant)
	})

	t.Run("declared length beyond block", func(t *testing.T) {
		clx := buildClx([]int32{0, 12}, buildPCD(0, 0, 0))
		_, err := DecodePieceTable(clx[:len(clx)-3], true)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("empty block", func(t *testing.T) {
		_, err := DecodePieceTable(nil, true)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("trailing bytes strict versus lenient", func(t *testing.T) {
		plex := buildClx([]int32{0, 12}, buildPCD(0, 0x100, 0))[5:]
		plex = append(plex, 0xEE, 0xEE)
		clx := append([]byte{ClxPieceTableTag, byte(len(plex)), 0, 0, 0}, plex...)

		_, err := DecodePieceTable(clx, true)
		assert.ErrorIs(t, err, ErrMalformedPlex)

		pt, err := DecodePieceTable(clx, false)
		require.NoError(t, err)
		assert.Equal(t, 1, pt.Len())
	})
}
