package word

import (
	"bytes"
	"fmt"

	"github.com/c360studio/semdoc/binio"
)

const (
	lstfSimpleList = 0x01
	lstfAutoNum    = 0x04
	lstfHybrid     = 0x10

	lvlfJc        = 0xC0
	lvlfLegal     = 0x20
	lvlfNoRestart = 0x10
	lvlfPrev      = 0x08
	lvlfPrevSpace = 0x04
	lvlfWord6     = 0x02
	simpleLevels  = 1
	fullLevels    = 9
	numberSlots   = 9
	styleSlots    = 9
)

// ListTable is the decoded PlfLst: list descriptors with their levels.
type ListTable struct {
	Lists []ListDescriptor `json:"lists"`
}

// ListDescriptor is one LSTF followed by its LVL records.
type ListDescriptor struct {
	Lsid   int32              `json:"lsid"`
	Tplc   int32              `json:"tplc"`
	Rgistd [styleSlots]uint16 `json:"rgistdPara"`
	Flags  uint8              `json:"flags"`
	Compat uint8              `json:"grfhic"`
	Levels []ListLevel        `json:"levels"`
}

// SimpleList reports whether one level follows instead of nine.
func (l ListDescriptor) SimpleList() bool { return l.Flags&lstfSimpleList != 0 }

// AutoNum reports fAutoNum.
func (l ListDescriptor) AutoNum() bool { return l.Flags&lstfAutoNum != 0 }

// Hybrid reports fHybrid.
func (l ListDescriptor) Hybrid() bool { return l.Flags&lstfHybrid != 0 }

// LevelCount is the number of LVL records the flags call for.
func (l ListDescriptor) LevelCount() int {
	if l.SimpleList() {
		return simpleLevels
	}
	return fullLevels
}

// ListLevel is one LVL: the LVLF header, two opaque property blobs and the number text.
type ListLevel struct {
	StartAt        int32              `json:"iStartAt"`
	Nfc            uint8              `json:"nfc"`
	Jc             uint8              `json:"jc"`
	Legal          bool               `json:"fLegal"`
	NoRestart      bool               `json:"fNoRestart"`
	Prev           bool               `json:"fPrev"`
	PrevSpace      bool               `json:"fPrevSpace"`
	Word6          bool               `json:"fWord6"`
	NumberOffsets  [numberSlots]uint8 `json:"rgbxchNums"`
	IxchFollow     uint8              `json:"ixchFollow"`
	DxaSpace       int32              `json:"dxaSpace"`
	DxaIndent      int32              `json:"dxaIndent"`
	IlvlRestartLim uint8              `json:"ilvlRestartLim"`
	Grfhic         uint8              `json:"grfhic"`
	GrpprlPapx     []byte             `json:"grpprlPapx"`
	GrpprlChpx     []byte             `json:"grpprlChpx"`
	NumberText     string             `json:"xst"`
}

// DecodeListTable reads the list descriptors, then each descriptor's levels.
// Levels trail all descriptors and are not covered by lcbPlfLst, so block
// must span up to the next structure rather than the declared length.
func DecodeListTable(block []byte) (*ListTable, error) {
	r := binio.NewReader(bytes.NewReader(block))

	count, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("list count: %w", err)
	}
	lt := &ListTable{Lists: make([]ListDescriptor, count)}
	for i := range lt.Lists {
		if err := decodeLSTF(r, &lt.Lists[i]); err != nil {
			return nil, fmt.Errorf("lstf %d: %w", i, err)
		}
	}
	for i := range lt.Lists {
		l := &lt.Lists[i]
		l.Levels = make([]ListLevel, l.LevelCount())
		for j := range l.Levels {
			if err := decodeLVL(r, &l.Levels[j]); err != nil {
				return nil, fmt.Errorf("list %d level %d: %w", l.Lsid, j, err)
			}
		}
	}
	return lt, nil
}

func decodeLSTF(r *binio.Reader, l *ListDescriptor) error {
	var err error
	if l.Lsid, err = r.I32(); err != nil {
		return err
	}
	if l.Tplc, err = r.I32(); err != nil {
		return err
	}
	for k := range l.Rgistd {
		if l.Rgistd[k], err = r.U16(); err != nil {
			return err
		}
	}
	if l.Flags, err = r.U8(); err != nil {
		return err
	}
	l.Compat, err = r.U8()
	return err
}

func decodeLVL(r *binio.Reader, lvl *ListLevel) error {
	var err error
	if lvl.StartAt, err = r.I32(); err != nil {
		return err
	}
	if lvl.Nfc, err = r.U8(); err != nil {
		return err
	}
	bits, err := r.U8()
	if err != nil {
		return err
	}
	lvl.Jc = (bits & lvlfJc) >> 6
	lvl.Legal = bits&lvlfLegal != 0
	lvl.NoRestart = bits&lvlfNoRestart != 0
	lvl.Prev = bits&lvlfPrev != 0
	lvl.PrevSpace = bits&lvlfPrevSpace != 0
	lvl.Word6 = bits&lvlfWord6 != 0

	nums, err := r.Bytes(numberSlots)
	if err != nil {
		return err
	}
	copy(lvl.NumberOffsets[:], nums)
	if lvl.IxchFollow, err = r.U8(); err != nil {
		return err
	}
	if lvl.DxaSpace, err = r.I32(); err != nil {
		return err
	}
	if lvl.DxaIndent, err = r.I32(); err != nil {
		return err
	}
	// LVLF stores cbGrpprlChpx first; the grpprls themselves follow papx first.
	cbChpx, err := r.U8()
	if err != nil {
		return err
	}
	cbPapx, err := r.U8()
	if err != nil {
		return err
	}
	if lvl.IlvlRestartLim, err = r.U8(); err != nil {
		return err
	}
	if lvl.Grfhic, err = r.U8(); err != nil {
		return err
	}

	if lvl.GrpprlPapx, err = r.Bytes(int(cbPapx)); err != nil {
		return fmt.Errorf("grpprlPapx: %w", err)
	}
	if lvl.GrpprlChpx, err = r.Bytes(int(cbChpx)); err != nil {
		return fmt.Errorf("grpprlChpx: %w", err)
	}
	n, err := r.U16()
	if err != nil {
		return fmt.Errorf("number text length: %w", err)
	}
	if lvl.NumberText, err = r.WideString(int(n)); err != nil {
		return fmt.Errorf("number text: %w", err)
	}
	return nil
}
