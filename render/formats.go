// Package render writes structures, byte ranges, container listings and diff
// reports in the supported output formats.
package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupportedFormat reports an unknown format or a value the format cannot render.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format specifies the output serialization format.
type Format string

const (
	// FormatText produces indented plain text for terminals.
	FormatText Format = "text"

	// FormatJSON produces indented JSON.
	FormatJSON Format = "json"

	// FormatYAML produces YAML.
	FormatYAML Format = "yaml"

	// FormatHTML produces a standalone HTML page.
	FormatHTML Format = "html"
)

// FormatInfo provides metadata about an output format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatText: {
		Name:        FormatText,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Indented plain text",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "JSON with two-space indentation",
	},
	FormatYAML: {
		Name:        FormatYAML,
		MIMEType:    "application/yaml",
		Extension:   ".yaml",
		Description: "YAML document",
	},
	FormatHTML: {
		Name:        FormatHTML,
		MIMEType:    "text/html",
		Extension:   ".html",
		Description: "Standalone HTML page with tables",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedFormat, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return names
}
