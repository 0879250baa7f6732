// Package value implements the typed, lossless value union that the
// fingerprinter and grouper build their canonical byte encoding on.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Kind tags the concrete type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindDate
	KindTimestamp
)

// Value is a small tagged union over the column types this library supports.
// The zero Value is KindNull.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
	t     time.Time
}

func Null() Value                 { return Value{kind: KindNull} }
func Bool(v bool) Value           { return Value{kind: KindBool, b: v} }
func Int64(v int64) Value         { return Value{kind: KindInt64, i: v} }
func Float64(v float64) Value     { return Value{kind: KindFloat64, f: v} }
func String(v string) Value       { return Value{kind: KindString, s: v} }
func Bytes(v []byte) Value        { return Value{kind: KindBytes, bytes: v} }
func Date(v time.Time) Value      { return Value{kind: KindDate, t: v} }
func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, t: v} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)         { return v.b, v.kind == KindBool }
func (v Value) AsInt64() (int64, bool)       { return v.i, v.kind == KindInt64 }
func (v Value) AsFloat64() (float64, bool)   { return v.f, v.kind == KindFloat64 }
func (v Value) AsString() (string, bool)     { return v.s, v.kind == KindString }
func (v Value) AsBytes() ([]byte, bool)      { return v.bytes, v.kind == KindBytes }
func (v Value) AsTime() (time.Time, bool)    { return v.t, v.kind == KindDate || v.kind == KindTimestamp }

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt64:
		return v.i == other.i
	case KindFloat64:
		return v.f == other.f || (v.f != v.f && other.f != other.f)
	case KindString:
		return v.s == other.s
	case KindBytes:
		return string(v.bytes) == string(other.bytes)
	case KindDate, KindTimestamp:
		return v.t.Equal(other.t)
	default:
		return false
	}
}

// CanonicalEncode appends this value's type-tagged, length-disambiguated
// byte encoding to dst and returns the extended slice. The encoding is
// injective over (kind, value) pairs: it is the basis both for the
// fingerprint digest (hashed) and the grouper's identity key (used raw).
//
// Layout: one kind-tag byte, then a fixed payload: 1 byte for Bool, 8 bytes
// for Int64/Float64/Date/Timestamp, or an 8-byte big-endian length prefix
// followed by the raw bytes for String/Bytes. Null has no payload.
func (v Value) CanonicalEncode(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindNull:
		return dst
	case KindBool:
		var b byte
		if v.b {
			b = 1
		}
		return append(dst, b)
	case KindInt64:
		return appendUint64(dst, uint64(v.i))
	case KindFloat64:
		return appendUint64(dst, floatBits(v.f))
	case KindString:
		return appendLenPrefixed(dst, []byte(v.s))
	case KindBytes:
		return appendLenPrefixed(dst, v.bytes)
	case KindDate:
		return appendUint64(dst, uint64(v.t.UTC().Unix()))
	case KindTimestamp:
		return appendUint64(dst, uint64(v.t.UTC().UnixMicro()))
	default:
		panic(fmt.Sprintf("value: unknown kind %d", v.kind))
	}
}

func appendUint64(dst []byte, u uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	return append(dst, buf[:]...)
}

func appendLenPrefixed(dst, payload []byte) []byte {
	dst = appendUint64(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// floatBits maps NaN to a single canonical bit pattern so that two NaN
// values compare equal under CanonicalEncode, matching Equal's semantics
// for float64 (Go's == would otherwise treat NaN as unequal to itself).
func floatBits(f float64) uint64 {
	if f != f { // NaN
		return 0xFFF8000000000001
	}
	return math.Float64bits(f)
}
