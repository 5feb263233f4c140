package word

import (
	"testing"

	"github.com/c360studio/semdoc/internal/binfixture"
)

// fibFixture describes a synthetic FIB.
type fibFixture struct {
	nFib    uint16
	flags   uint16
	fcMin   int32
	fcMac   int32
	ccpText int32
	pairs   int
	entries map[string][2]uint32
	cswNew  []uint16
}

func pairIndex(t *testing.T, name string) int {
	t.Helper()
	for i, p := range pairTable {
		if p.name == name {
			return i
		}
	}
	t.Fatalf("no pair named %q", name)
	return -1
}

func buildFib(t *testing.T, f fibFixture) []byte {
	t.Helper()
	if f.pairs == 0 {
		f.pairs = len(pairs97)
	}
	var b binfixture.Builder
	b.U16(WordIdent).U16(f.nFib).U16(0).U16(0x0409).U16(0)
	b.U16(f.flags).U16(0xBF).U32(0).U8(0).U8(0).U16(0).U16(0)
	b.I32(f.fcMin).I32(f.fcMac)

	b.U16(minCsw)
	for i := 0; i < minCsw; i++ {
		b.U16(uint16(i))
	}
	b.U16(minCslw)
	for i := 0; i < minCslw; i++ {
		switch i {
		case 3:
			b.I32(f.ccpText)
		default:
			b.U32(0)
		}
	}

	b.U16(uint16(f.pairs))
	start := b.Len()
	b.Zeros(f.pairs * 8)
	for name, v := range f.entries {
		i := pairIndex(t, name)
		b.PutU32(start+i*8, v[0])
		b.PutU32(start+i*8+4, v[1])
	}

	b.U16(uint16(len(f.cswNew)))
	for _, w := range f.cswNew {
		b.U16(w)
	}
	return b.Bytes()
}

type styleFixture struct {
	sti      uint16
	stk      uint16
	istdBase uint16
	istdNext uint16
	rsid     int32
	name     string
}

func buildStyle(base int, s styleFixture) []byte {
	var b binfixture.Builder
	b.U16(s.sti).U16(s.stk<<12 | s.istdBase).U16(1<<12 | s.istdNext).U16(0).U16(0)
	if base >= stdBase2000Size {
		b.U16(0).I32(s.rsid).U16(0)
	}
	b.U16(uint16(len([]rune(s.name)))).Wide(s.name).U16(0)
	return b.Bytes()
}

// buildStyleSheet writes an STSH; a nil style leaves an empty slot.
func buildStyleSheet(base int, styles []*styleFixture) []byte {
	var b binfixture.Builder
	b.U16(18)
	b.U16(uint16(len(styles))).U16(uint16(base)).U16(stshiStylenamesWritten).U16(15).U16(15).U16(0)
	b.Zeros(6)
	for _, s := range styles {
		if s == nil {
			b.U16(0)
			continue
		}
		rec := buildStyle(base, *s)
		b.U16(uint16(len(rec))).Raw(rec...)
	}
	return b.Bytes()
}

func buildPCD(bits uint16, fc uint32, prm uint16) []byte {
	var b binfixture.Builder
	b.U16BE(bits).U32(fc).U16BE(prm)
	return b.Bytes()
}

func buildClx(boundaries []int32, pcds ...[]byte) []byte {
	var plex binfixture.Builder
	for _, cp := range boundaries {
		plex.I32(cp)
	}
	for _, p := range pcds {
		plex.Raw(p...)
	}
	var b binfixture.Builder
	b.U8(ClxPieceTableTag).U32(uint32(plex.Len())).Raw(plex.Bytes()...)
	return b.Bytes()
}

type levelFixture struct {
	startAt int32
	nfc     uint8
	papx    []byte
	chpx    []byte
	text    string
}

func buildLSTF(lsid int32, simple bool) []byte {
	var b binfixture.Builder
	b.I32(lsid).I32(0x0409)
	for i := 0; i < styleSlots; i++ {
		b.U16(0x0FFF)
	}
	var flags uint8
	if simple {
		flags = lstfSimpleList
	}
	b.U8(flags).U8(0)
	return b.Bytes()
}

func buildLVL(l levelFixture) []byte {
	var b binfixture.Builder
	b.I32(l.startAt).U8(l.nfc).U8(lvlfLegal)
	b.Raw(1, 0, 0, 0, 0, 0, 0, 0, 0)
	b.U8(0).I32(360).I32(-360)
	b.U8(uint8(len(l.chpx))).U8(uint8(len(l.papx))).U8(0).U8(0)
	b.Raw(l.papx...).Raw(l.chpx...)
	b.U16(uint16(len([]rune(l.text)))).Wide(l.text)
	return b.Bytes()
}
