package binio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/c360studio/semdoc/internal/binfixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderFields(t *testing.T) {
	var b binfixture.Builder
	b.U8(0x7F).U16(0xBEEF).U32(0xDEADBEEF).I32(-2).U64(1 << 40).U16BE(0x1234)

	r := NewReader(bytes.NewReader(b.Bytes()))

	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	i32, err := r.I32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), i32)

	u64, err := r.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u64)

	be, err := r.U16BE()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), be)

	_, err = r.U8()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReaderAbsoluteReads(t *testing.T) {
	var b binfixture.Builder
	b.Zeros(6).U16(7).U32(9)
	r := NewReader(bytes.NewReader(b.Bytes()))

	v, err := r.U32At(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)

	w, err := r.U16At(6)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), w)

	_, err = r.U32At(10)
	assert.ErrorIs(t, err, ErrTruncated)

	assert.ErrorIs(t, r.Seek(-1), ErrTruncated)
}

func TestWideString(t *testing.T) {
	var b binfixture.Builder
	b.Wide("Héllo")
	r := NewReader(bytes.NewReader(b.Bytes()))

	s, err := r.WideString(5)
	require.NoError(t, err)
	assert.Equal(t, "Héllo", s)

	assert.Equal(t, "A", DecodeUTF16LE([]byte{'A', 0, 'B'}))
}

func TestTruncation(t *testing.T) {
	assert.ErrorIs(t, Truncation(io.EOF), ErrTruncated)
	assert.ErrorIs(t, Truncation(io.ErrUnexpectedEOF), ErrTruncated)

	other := errors.New("boom")
	assert.Equal(t, other, Truncation(other))
}

func TestSectionReader(t *testing.T) {
	data := []byte("0123456789")

	t.Run("translates offsets", func(t *testing.T) {
		s := NewSectionReader(bytes.NewReader(data), 4, -1)
		r := NewReader(s)
		require.NoError(t, r.Seek(2))
		got, err := r.Bytes(3)
		require.NoError(t, err)
		assert.Equal(t, "678", string(got))
		assert.Equal(t, int64(4), s.Base())
	})

	t.Run("bounded view stops at limit", func(t *testing.T) {
		s := NewSectionReader(bytes.NewReader(data), 2, 3)
		got, err := io.ReadAll(s)
		require.NoError(t, err)
		assert.Equal(t, "234", string(got))

		end, err := s.Seek(0, io.SeekEnd)
		require.NoError(t, err)
		assert.Equal(t, int64(3), end)
	})

	t.Run("unbounded seek end", func(t *testing.T) {
		s := NewSectionReader(bytes.NewReader(data), 6, -1)
		end, err := s.Seek(0, io.SeekEnd)
		require.NoError(t, err)
		assert.Equal(t, int64(4), end)
	})

	t.Run("rejects seek before origin", func(t *testing.T) {
		s := NewSectionReader(bytes.NewReader(data), 6, -1)
		_, err := s.Seek(-1, io.SeekStart)
		assert.Error(t, err)
	})
}

func TestSizeRestoresPosition(t *testing.T) {
	rs := bytes.NewReader([]byte("abcdef"))
	_, err := rs.Seek(2, io.SeekStart)
	require.NoError(t, err)

	n, err := Size(rs)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	pos, err := rs.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
}
