// Package export turns the daily table into BI-ready relational tables: a
// player dimension, a calendar dimension and a daily fact table.
package export

import (
	"fmt"
	"strings"

	"github.com/okian/loadmon/internal/domain/model"
)

// Format is a BI output format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("bi format %q must be csv or xlsx: %w", s, model.ErrUnsupportedOption)
}

// ParseFormats validates and deduplicates format names, keeping order.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[Format]bool, len(names))
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}
