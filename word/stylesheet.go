package word

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/c360studio/semdoc/binio"
)

const (
	stdBase97Size   = 10
	stdBase2000Size = 18
	stshiMinSize    = 12

	stshiStylenamesWritten = 0x80
)

// STD bitfield masks.
const (
	stdSti       = 0x0FFF
	stdScratch   = 0x8000
	stdInvalHt   = 0x4000
	stdHasUpe    = 0x2000
	stdMassCopy  = 0x1000
	stdLow12     = 0x0FFF
	stdAutoRedef = 0x8000
	stdHidden    = 0x4000
	std97LidsSet = 0x2000
	stdCopyLang  = 0x1000
	stdPCompose  = 0x0800
	stdPReply    = 0x0400
	stdPersonal  = 0x0200
	stdNoHTML    = 0x0100
	stdSemiHide  = 0x0080
	stdLocked    = 0x0040
	stdInternal  = 0x0020
	stdIftcHTML  = 0x0007
)

// StyleSheet is the decoded STSH: the STSHI header plus one slot per style index.
type StyleSheet struct {
	CbStshi                   uint16 `json:"cbStshi"`
	Cstd                      uint16 `json:"cstd"`
	CbSTDBaseInFile           uint16 `json:"cbSTDBaseInFile"`
	StdStylenamesWritten      bool   `json:"fStdStylenamesWritten"`
	StiMaxWhenSaved           uint16 `json:"stiMaxWhenSaved"`
	IstdMaxFixedWhenSaved     uint16 `json:"istdMaxFixedWhenSaved"`
	NVerBuiltInNamesWhenSaved uint16 `json:"nVerBuiltInNamesWhenSaved"`

	// Styles has exactly Cstd slots. Empty slots are nil so that istd
	// references from other styles keep pointing at the right index.
	Styles []*StyleDefinition `json:"styles"`
}

// Style returns the definition at istd, or nil for an empty or out-of-range slot.
func (s *StyleSheet) Style(istd int) *StyleDefinition {
	if istd < 0 || istd >= len(s.Styles) {
		return nil
	}
	return s.Styles[istd]
}

// Defined returns the number of non-empty slots.
func (s *StyleSheet) Defined() int {
	n := 0
	for _, st := range s.Styles {
		if st != nil {
			n++
		}
	}
	return n
}

// StyleDefinition is one STD. Trailing UPX data is not decoded.
type StyleDefinition struct {
	Sti          uint16 `json:"sti"`
	Scratch      bool   `json:"fScratch"`
	InvalHeight  bool   `json:"fInvalHeight"`
	HasUpe       bool   `json:"fHasUpe"`
	MassCopy     bool   `json:"fMassCopy"`
	Stk          uint16 `json:"stk"`
	IstdBase     uint16 `json:"istdBase"`
	Cupx         uint16 `json:"cupx"`
	IstdNext     uint16 `json:"istdNext"`
	BchUpe       uint16 `json:"bchUpe"`
	AutoRedef    bool   `json:"fAutoRedef"`
	Hidden       bool   `json:"fHidden"`
	LidsSet97    bool   `json:"f97LidsSet"`
	CopyLang     bool   `json:"fCopyLang"`
	PersCompose  bool   `json:"fPersonalCompose"`
	PersReply    bool   `json:"fPersonalReply"`
	Personal     bool   `json:"fPersonal"`
	NoHTMLExport bool   `json:"fNoHtmlExport"`
	SemiHidden   bool   `json:"fSemiHidden"`
	Locked       bool   `json:"fLocked"`
	InternalUse  bool   `json:"fInternalUse"`
	IstdLink     uint16 `json:"istdLink"`
	Spare        uint16 `json:"fSpare"`
	Rsid         int32  `json:"rsid"`
	IftcHTML     uint16 `json:"iftcHtml"`

	// Name may hold several comma-separated aliases.
	Name string `json:"xstzName"`
}

// Aliases splits the style name on commas.
func (d *StyleDefinition) Aliases() []string {
	if d.Name == "" {
		return nil
	}
	parts := strings.Split(d.Name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// DecodeStyleSheet decodes an STSH block.
func DecodeStyleSheet(block []byte) (*StyleSheet, error) {
	r := binio.NewReader(bytes.NewReader(block))

	cb, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("cbStshi: %w", err)
	}
	if cb < stshiMinSize {
		return nil, fmt.Errorf("%w: STSHI of %d bytes", ErrUnsupportedVariant, cb)
	}
	head, err := r.Bytes(int(cb))
	if err != nil {
		return nil, fmt.Errorf("stshi: %w", err)
	}
	hr := binio.NewReader(bytes.NewReader(head))
	ss := &StyleSheet{CbStshi: cb}
	var flags uint16
	for _, dst := range []*uint16{
		&ss.Cstd, &ss.CbSTDBaseInFile, &flags,
		&ss.StiMaxWhenSaved, &ss.IstdMaxFixedWhenSaved, &ss.NVerBuiltInNamesWhenSaved,
	} {
		if *dst, err = hr.U16(); err != nil {
			return nil, fmt.Errorf("stshi: %w", err)
		}
	}
	ss.StdStylenamesWritten = flags&stshiStylenamesWritten != 0
	if ss.CbSTDBaseInFile < stdBase97Size {
		return nil, fmt.Errorf("%w: STD base of %d bytes", ErrUnsupportedVariant, ss.CbSTDBaseInFile)
	}

	ss.Styles = make([]*StyleDefinition, ss.Cstd)
	for i := range ss.Styles {
		cbStd, err := r.U16()
		if err != nil {
			return nil, fmt.Errorf("style %d length: %w", i, err)
		}
		if cbStd == 0 {
			continue
		}
		rec, err := r.Bytes(int(cbStd))
		if err != nil {
			return nil, fmt.Errorf("style %d: %w", i, err)
		}
		def, err := decodeStyleDefinition(rec, int(ss.CbSTDBaseInFile))
		if err != nil {
			return nil, fmt.Errorf("style %d: %w", i, err)
		}
		ss.Styles[i] = def
	}
	return ss, nil
}

func decodeStyleDefinition(rec []byte, baseSize int) (*StyleDefinition, error) {
	r := binio.NewReader(bytes.NewReader(rec))
	var w [5]uint16
	for i := range w {
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		w[i] = v
	}
	d := &StyleDefinition{
		Sti:          w[0] & stdSti,
		Scratch:      w[0]&stdScratch != 0,
		InvalHeight:  w[0]&stdInvalHt != 0,
		HasUpe:       w[0]&stdHasUpe != 0,
		MassCopy:     w[0]&stdMassCopy != 0,
		Stk:          w[1] >> 12,
		IstdBase:     w[1] & stdLow12,
		Cupx:         w[2] >> 12,
		IstdNext:     w[2] & stdLow12,
		BchUpe:       w[3],
		AutoRedef:    w[4]&stdAutoRedef != 0,
		Hidden:       w[4]&stdHidden != 0,
		LidsSet97:    w[4]&std97LidsSet != 0,
		CopyLang:     w[4]&stdCopyLang != 0,
		PersCompose:  w[4]&stdPCompose != 0,
		PersReply:    w[4]&stdPReply != 0,
		Personal:     w[4]&stdPersonal != 0,
		NoHTMLExport: w[4]&stdNoHTML != 0,
		SemiHidden:   w[4]&stdSemiHide != 0,
		Locked:       w[4]&stdLocked != 0,
		InternalUse:  w[4]&stdInternal != 0,
	}

	if baseSize >= stdBase2000Size {
		link, err := r.U16()
		if err != nil {
			return nil, err
		}
		d.IstdLink = link & stdLow12
		d.Spare = link >> 12
		if d.Rsid, err = r.I32(); err != nil {
			return nil, err
		}
		html, err := r.U16()
		if err != nil {
			return nil, err
		}
		d.IftcHTML = html & stdIftcHTML
	}

	if err := r.Seek(int64(baseSize)); err != nil {
		return nil, err
	}
	n, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("name length: %w", err)
	}
	if d.Name, err = r.WideString(int(n)); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	// The terminating null unit is discarded, and so is anything after it.
	return d, nil
}
