package word

import (
	"fmt"
	"io"

	"github.com/c360studio/semdoc/binio"
)

// WordIdent is the wIdent value every Word binary document starts with.
const WordIdent = 0xA5EC

const (
	fibBaseSize = 32
	offsetCsw   = 0x20
	minCsw      = 14
	minCslw     = 22
)

// FibBase flag masks (word at 0x0A).
const (
	flagDot                 = 0x0001
	flagGlsy                = 0x0002
	flagComplex             = 0x0004
	flagHasPic              = 0x0008
	maskQuickSaves          = 0x00F0
	flagEncrypted           = 0x0100
	flagWhichTblStm         = 0x0200
	flagReadOnlyRecommended = 0x0400
	flagWriteReservation    = 0x0800
	flagExtChar             = 0x1000
	flagLoadOverride        = 0x2000
	flagFarEast             = 0x4000
	flagObfuscated          = 0x8000
)

// FibBase flag masks (byte at 0x13).
const (
	flagMac              = 0x01
	flagEmptySpecial     = 0x02
	flagLoadOverridePage = 0x04
)

// FibBase is the fixed 32-byte head of the FIB.
type FibBase struct {
	WIdent uint16 `json:"wIdent"`
	NFib   uint16 `json:"nFib"`
	Unused uint16 `json:"unused"`
	Lid    uint16 `json:"lid"`
	PnNext uint16 `json:"pnNext"`

	Dot                 bool  `json:"fDot"`
	Glsy                bool  `json:"fGlsy"`
	Complex             bool  `json:"fComplex"`
	HasPic              bool  `json:"fHasPic"`
	QuickSaves          uint8 `json:"cQuickSaves"`
	Encrypted           bool  `json:"fEncrypted"`
	WhichTblStm         bool  `json:"fWhichTblStm"`
	ReadOnlyRecommended bool  `json:"fReadOnlyRecommended"`
	WriteReservation    bool  `json:"fWriteReservation"`
	ExtChar             bool  `json:"fExtChar"`
	LoadOverride        bool  `json:"fLoadOverride"`
	FarEast             bool  `json:"fFarEast"`
	Obfuscated          bool  `json:"fObfuscated"`

	NFibBack uint16 `json:"nFibBack"`
	LKey     uint32 `json:"lKey"`
	Envr     uint8  `json:"envr"`

	Mac              bool `json:"fMac"`
	EmptySpecial     bool `json:"fEmptySpecial"`
	LoadOverridePage bool `json:"fLoadOverridePage"`

	// FcMin and FcMac occupy reserved5/reserved6; older writers store the text bounds here.
	FcMin int32 `json:"fcMin"`
	FcMac int32 `json:"fcMac"`
}

// Fib is the decoded File Information Block.
type Fib struct {
	FibBase

	Csw   uint16   `json:"csw"`
	RgW   []uint16 `json:"rgW"`
	LidFE uint16   `json:"lidFE"`

	Cslw       uint16   `json:"cslw"`
	RgLw       []uint32 `json:"rgLw"`
	CbMac      uint32   `json:"cbMac"`
	CcpText    int32    `json:"ccpText"`
	CcpFtn     int32    `json:"ccpFtn"`
	CcpHdd     int32    `json:"ccpHdd"`
	CcpMcr     int32    `json:"ccpMcr"`
	CcpAtn     int32    `json:"ccpAtn"`
	CcpEdn     int32    `json:"ccpEdn"`
	CcpTxbx    int32    `json:"ccpTxbx"`
	CcpHdrTxbx int32    `json:"ccpHdrTxbx"`

	CbRgFcLcb uint16    `json:"cbRgFcLcb"`
	Directory Directory `json:"directory"`

	CswNew         uint16 `json:"cswNew"`
	NFibNew        uint16 `json:"nFibNew"`
	CQuickSavesNew uint16 `json:"cQuickSavesNew"`

	// Size is the number of bytes the FIB occupies in WordDocument.
	Size int64 `json:"size"`
}

// TableStreamName returns the table stream selected by fWhichTblStm.
func (f *Fib) TableStreamName() string {
	if f.WhichTblStm {
		return "1Table"
	}
	return "0Table"
}

// Version returns nFibNew when present, otherwise nFib.
func (f *Fib) Version() uint16 {
	if f.CswNew > 0 && f.NFibNew != 0 {
		return f.NFibNew
	}
	return f.NFib
}

// Revision names the format revision implied by the pair count.
func (f *Fib) Revision() string {
	if r, ok := RevisionFor(int(f.CbRgFcLcb)); ok {
		return r.Name
	}
	return fmt.Sprintf("unknown (%d pairs)", f.CbRgFcLcb)
}

// DecodeFib reads the FIB from the start of the WordDocument stream.
// Any truncation is fatal; there is no partial FIB.
func DecodeFib(rs io.ReadSeeker) (*Fib, error) {
	r := binio.NewReader(rs)
	f := &Fib{}

	if err := r.Seek(0); err != nil {
		return nil, err
	}
	if err := f.decodeBase(r); err != nil {
		return nil, fmt.Errorf("fib base: %w", err)
	}
	if f.WIdent != WordIdent {
		return nil, fmt.Errorf("%w: wIdent 0x%04X", ErrBadMagic, f.WIdent)
	}

	if err := r.Seek(offsetCsw); err != nil {
		return nil, err
	}
	if err := f.decodeRgW(r); err != nil {
		return nil, fmt.Errorf("fib rgW: %w", err)
	}
	if err := f.decodeRgLw(r); err != nil {
		return nil, fmt.Errorf("fib rgLw: %w", err)
	}
	if err := f.decodeRgFcLcb(r); err != nil {
		return nil, fmt.Errorf("fib rgFcLcb: %w", err)
	}
	if err := f.decodeCswNew(r); err != nil {
		return nil, fmt.Errorf("fib rgCswNew: %w", err)
	}

	end, err := r.Pos()
	if err != nil {
		return nil, err
	}
	f.Size = end
	return f, nil
}

func (f *Fib) decodeBase(r *binio.Reader) error {
	b, err := r.Bytes(fibBaseSize)
	if err != nil {
		return err
	}
	u16 := func(off int) uint16 { return uint16(b[off]) | uint16(b[off+1])<<8 }
	u32 := func(off int) uint32 { return uint32(u16(off)) | uint32(u16(off+2))<<16 }

	f.WIdent = u16(0x00)
	f.NFib = u16(0x02)
	f.Unused = u16(0x04)
	f.Lid = u16(0x06)
	f.PnNext = u16(0x08)

	flags := u16(0x0A)
	f.Dot = flags&flagDot != 0
	f.Glsy = flags&flagGlsy != 0
	f.Complex = flags&flagComplex != 0
	f.HasPic = flags&flagHasPic != 0
	f.QuickSaves = uint8((flags & maskQuickSaves) >> 4)
	f.Encrypted = flags&flagEncrypted != 0
	f.WhichTblStm = flags&flagWhichTblStm != 0
	f.ReadOnlyRecommended = flags&flagReadOnlyRecommended != 0
	f.WriteReservation = flags&flagWriteReservation != 0
	f.ExtChar = flags&flagExtChar != 0
	f.LoadOverride = flags&flagLoadOverride != 0
	f.FarEast = flags&flagFarEast != 0
	f.Obfuscated = flags&flagObfuscated != 0

	f.NFibBack = u16(0x0C)
	f.LKey = u32(0x0E)
	f.Envr = b[0x12]

	flags2 := b[0x13]
	f.Mac = flags2&flagMac != 0
	f.EmptySpecial = flags2&flagEmptySpecial != 0
	f.LoadOverridePage = flags2&flagLoadOverridePage != 0

	f.FcMin = int32(u32(0x18))
	f.FcMac = int32(u32(0x1C))
	return nil
}

func (f *Fib) decodeRgW(r *binio.Reader) error {
	var err error
	if f.Csw, err = r.U16(); err != nil {
		return err
	}
	f.RgW = make([]uint16, f.Csw)
	for i := range f.RgW {
		if f.RgW[i], err = r.U16(); err != nil {
			return err
		}
	}
	if f.Csw >= minCsw {
		f.LidFE = f.RgW[minCsw-1]
	}
	return nil
}

func (f *Fib) decodeRgLw(r *binio.Reader) error {
	var err error
	if f.Cslw, err = r.U16(); err != nil {
		return err
	}
	f.RgLw = make([]uint32, f.Cslw)
	for i := range f.RgLw {
		if f.RgLw[i], err = r.U32(); err != nil {
			return err
		}
	}
	if f.Cslw < minCslw {
		return nil
	}
	lw := func(i int) int32 { return int32(f.RgLw[i]) }
	f.CbMac = f.RgLw[0]
	f.CcpText = lw(3)
	f.CcpFtn = lw(4)
	f.CcpHdd = lw(5)
	f.CcpMcr = lw(6)
	f.CcpAtn = lw(7)
	f.CcpEdn = lw(8)
	f.CcpTxbx = lw(9)
	f.CcpHdrTxbx = lw(10)
	return nil
}

func (f *Fib) decodeRgFcLcb(r *binio.Reader) error {
	var err error
	if f.CbRgFcLcb, err = r.U16(); err != nil {
		return err
	}
	start, err := r.Pos()
	if err != nil {
		return err
	}

	entries := make([]DirectoryEntry, f.CbRgFcLcb)
	for i := range entries {
		fc, err := r.I32()
		if err != nil {
			return err
		}
		lcb, err := r.U32()
		if err != nil {
			return err
		}
		def := pairDef{name: fmt.Sprintf("Unknown%d", i), desc: "undocumented pair"}
		if i < len(pairTable) {
			def = pairTable[i]
		}
		entries[i] = DirectoryEntry{
			Name:        def.name,
			Description: def.desc,
			Offset:      fc,
			Length:      lcb,
			FieldOffset: start + int64(i)*8,
		}
	}
	f.Directory = NewDirectory(entries)
	return nil
}

func (f *Fib) decodeCswNew(r *binio.Reader) error {
	var err error
	if f.CswNew, err = r.U16(); err != nil {
		return err
	}
	if f.CswNew == 0 {
		return nil
	}
	words := make([]uint16, f.CswNew)
	for i := range words {
		if words[i], err = r.U16(); err != nil {
			return err
		}
	}
	f.NFibNew = words[0]
	if len(words) > 1 {
		f.CQuickSavesNew = words[1]
	}
	return nil
}
