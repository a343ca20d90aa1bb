package mib

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned when a type tag outside the closed set of
// pass_persist value types is supplied.
var ErrUnknownType = errors.New("unknown type tag")

// Type identifies the wire type of a record value. The set is closed:
// widening it is a deliberate change to this enumeration, not something
// call sites can do ad hoc.
type Type int

const (
	TypeString Type = iota
	TypeInteger
	TypeUnsigned
	TypeObjectID
	TypeTimeTicks
	TypeIPAddress
	TypeCounter
	TypeGauge
)

// String returns the tag emitted on the response channel.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeUnsigned:
		return "unsigned"
	case TypeObjectID:
		return "objectid"
	case TypeTimeTicks:
		return "timeticks"
	case TypeIPAddress:
		return "ipaddress"
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses a textual type tag, case-insensitively. Unknown tags
// yield an error wrapping ErrUnknownType.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "string":
		return TypeString, nil
	case "integer":
		return TypeInteger, nil
	case "unsigned":
		return TypeUnsigned, nil
	case "objectid":
		return TypeObjectID, nil
	case "timeticks":
		return TypeTimeTicks, nil
	case "ipaddress":
		return TypeIPAddress, nil
	case "counter":
		return TypeCounter, nil
	case "gauge":
		return TypeGauge, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// valid reports whether t is one of the eight recognized types.
func (t Type) valid() bool {
	return t >= TypeString && t <= TypeGauge
}
