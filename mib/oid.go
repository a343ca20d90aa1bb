// Package mib provides the data model served by a pass_persist agent:
// OID keys, typed value records, and the indexed record tree.
package mib

import (
	"strconv"
	"strings"
)

// arcWidth is the zero-padding width of each component in an Oid sort
// key. Any component of up to 20 decimal digits (the full uint64 range)
// orders numerically; wider or non-numeric components are carried
// verbatim in the sort key, and their order relative to in-range
// components is undefined.
const arcWidth = 20

// Oid is a dotted sequence of non-negative integer components
// identifying a node in a hierarchical management tree.
//
// An Oid keeps two representations. The original text is its identity:
// Equal and the exact index in Tree compare it verbatim, so "01.3" and
// "1.3" are distinct keys. The sort key zero-pads every component so
// plain string comparison reproduces numeric, component-by-component
// ordering, under which "01.3" and "1.3" compare as equal. Existing
// masters depend on this asymmetry; do not collapse the two forms.
type Oid struct {
	text string
	sort string
}

// ParseOID parses an OID from a dotted string (e.g., "1.3.6.1.2.1").
// It never fails: empty components from leading, trailing, or doubled
// dots are dropped, and any other token is accepted. The input text is
// preserved verbatim for String and Equal.
func ParseOID(s string) Oid {
	return Oid{text: s, sort: sortKey(s)}
}

func sortKey(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			b.WriteString(part)
			continue
		}
		digits := strconv.FormatUint(n, 10)
		for i := len(digits); i < arcWidth; i++ {
			b.WriteByte('0')
		}
		b.WriteString(digits)
	}
	return b.String()
}

// String returns the original dotted text, unchanged.
func (o Oid) String() string {
	return o.text
}

// Equal reports whether both OIDs have identical original text. Keys
// that differ only in formatting (such as a leading zero) are not equal
// even though Compare orders them as equal.
func (o Oid) Equal(other Oid) bool {
	return o.text == other.text
}

// Compare returns -1 if o < other, 0 if they order as equal, and 1 if
// o > other, by numeric component-by-component comparison.
func (o Oid) Compare(other Oid) int {
	return strings.Compare(o.sort, other.sort)
}

// IsZero reports whether the OID has no components.
func (o Oid) IsZero() bool {
	return o.sort == ""
}
