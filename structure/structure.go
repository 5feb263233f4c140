// Package structure holds the projections a decoded document is compared
// and rendered through: named field trees and verbatim byte ranges.
package structure

import "fmt"

// Item is one named field of a logical structure with its stringified value.
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Structure is a named tree of field items with optional named substructures
// (one per style, one per piece descriptor, and so on).
type Structure struct {
	Name          string      `json:"name" yaml:"name"`
	Items         []Item      `json:"structure" yaml:"structure"`
	Substructures []Structure `json:"substructs,omitempty" yaml:"substructs,omitempty"`
}

// New returns an empty structure with the given name.
func New(name string) *Structure {
	return &Structure{Name: name}
}

// Add appends a field with a value formatted by fmt's %v verb.
func (s *Structure) Add(name string, value any, description string) *Structure {
	s.Items = append(s.Items, Item{Name: name, Value: fmt.Sprint(value), Description: description})
	return s
}

// AddHex appends an integer field rendered as 0x-prefixed hex.
func (s *Structure) AddHex(name string, value uint64, description string) *Structure {
	s.Items = append(s.Items, Item{Name: name, Value: fmt.Sprintf("0x%X", value), Description: description})
	return s
}

// Sub appends a substructure.
func (s *Structure) Sub(child Structure) *Structure {
	s.Substructures = append(s.Substructures, child)
	return s
}

// Item looks up a field by name.
func (s Structure) Item(name string) (Item, bool) {
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Find returns the direct substructure with the given name.
func (s Structure) Find(name string) (Structure, bool) {
	for _, sub := range s.Substructures {
		if sub.Name == name {
			return sub, true
		}
	}
	return Structure{}, false
}

// Physical is a named byte range taken verbatim from a named stream.
// It is used for inspection and diffing only and is never reparsed.
type Physical struct {
	Stream      string `json:"stream_name" yaml:"stream_name"`
	Name        string `json:"structure_name" yaml:"structure_name"`
	Start       int64  `json:"start_index" yaml:"start_index"`
	End         int64  `json:"end_index" yaml:"end_index"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Bytes       []byte `json:"bytes" yaml:"-"`
}

// Len returns the number of bytes held.
func (p Physical) Len() int { return len(p.Bytes) }
