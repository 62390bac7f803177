// Package resp implements the RESP wire protocol: an incremental,
// byte-oriented frame decoder and an allocation-free encoder.
package resp

import "fmt"

// Type tags the kind of a Value, mirroring the one-byte RESP type prefix.
type Type byte

const (
	SimpleString Type = '+'
	Error        Type = '-'
	Integer      Type = ':'
	BulkString   Type = '$'
	Array        Type = '*'
	NullString   Type = 0 // distinguished: BulkString with Null set
	NullArray    Type = 1 // distinguished: Array with Null set
)

// Value is a RESP value. Str carries the payload for SimpleString, Error and
// BulkString as raw bytes (the wire format is binary-safe and carries no
// encoding guarantee). Int carries Integer. Items carries Array elements.
// Null distinguishes BulkString/Array from their null variants ($-1 / *-1).
type Value struct {
	Type  Type
	Str   []byte
	Int   int64
	Items []Value
	Null  bool
}

func NewSimpleString(s string) Value { return Value{Type: SimpleString, Str: []byte(s)} }
func NewError(s string) Value        { return Value{Type: Error, Str: []byte(s)} }
func NewInteger(i int64) Value       { return Value{Type: Integer, Int: i} }
func NewBulkString(b []byte) Value   { return Value{Type: BulkString, Str: b} }
func NewArray(items []Value) Value   { return Value{Type: Array, Items: items} }

func NewNullString() Value { return Value{Type: BulkString, Null: true} }
func NewNullArray() Value  { return Value{Type: Array, Null: true} }

// Equal reports whether two Values carry the same wire meaning. Used by
// tests; not a hot path.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Null != o.Null {
		return false
	}
	switch v.Type {
	case SimpleString, Error, BulkString:
		if v.Null {
			return true
		}
		return string(v.Str) == string(o.Str)
	case Integer:
		return v.Int == o.Int
	case Array:
		if v.Null {
			return true
		}
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.Type {
	case SimpleString:
		return fmt.Sprintf("SimpleString(%q)", v.Str)
	case Error:
		return fmt.Sprintf("Error(%q)", v.Str)
	case Integer:
		return fmt.Sprintf("Integer(%d)", v.Int)
	case BulkString:
		if v.Null {
			return "NullString"
		}
		return fmt.Sprintf("BulkString(%q)", v.Str)
	case Array:
		if v.Null {
			return "NullArray"
		}
		return fmt.Sprintf("Array(%v)", v.Items)
	default:
		return "Value(?)"
	}
}
