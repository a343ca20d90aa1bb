package mib

import "fmt"

// ValueFunc is a computed record value. It is invoked on every read, so
// successive reads of the same record can observe different results.
type ValueFunc func() any

// Record is one (key, type, value) leaf of managed data. The value is
// either a literal or a computed value; ordering between records is
// defined solely by their keys.
type Record struct {
	oid   Oid
	typ   Type
	value any
}

// NewRecord builds a record after validating the type tag. The value may
// be a literal of any type, a ValueFunc, or a plain func() any; function
// values are resolved afresh on every Value call, never memoized.
func NewRecord(oid Oid, typ Type, value any) (Record, error) {
	if !typ.valid() {
		return Record{}, fmt.Errorf("record %s: %w: %s", oid, ErrUnknownType, typ)
	}
	return Record{oid: oid, typ: typ, value: value}, nil
}

// NewRecordString is NewRecord with the key given as dotted text.
func NewRecordString(key string, typ Type, value any) (Record, error) {
	return NewRecord(ParseOID(key), typ, value)
}

// Oid returns the record's key.
func (r Record) Oid() Oid {
	return r.oid
}

// Type returns the record's wire type.
func (r Record) Type() Type {
	return r.typ
}

// Value resolves the record's value. Computed values are invoked on
// every call.
func (r Record) Value() any {
	switch f := r.value.(type) {
	case ValueFunc:
		return f()
	case func() any:
		return f()
	default:
		return r.value
	}
}

// Compare orders records by key alone.
func (r Record) Compare(other Record) int {
	return r.oid.Compare(other.oid)
}

// Fields returns the three wire fields of a data response: the key text,
// the type tag, and the resolved value rendered as text.
func (r Record) Fields() (key, tag, value string) {
	return r.oid.String(), r.typ.String(), fmt.Sprint(r.Value())
}
