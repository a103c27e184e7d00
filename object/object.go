// Package object defines the tagged value that is both the RESP wire
// payload and the store's value type: every reply the server sends, and
// every value the store holds, is an Object. Keeping these as one type
// instead of two avoids a conversion layer between "what the store holds"
// and "what goes out on the wire" — a GET reply is literally the stored
// Object, not a copy built from it.
package object

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// Kind tags which variant an Object holds.
type Kind uint8

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "SimpleString"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBulkString:
		return "BulkString"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Object is a tagged RESP value. The zero Object is not meaningful; always
// build one through the New* constructors below.
type Object struct {
	kind Kind

	// str backs SimpleString and Error. Must never contain '\r' or '\n'.
	str []byte

	// integer backs Integer.
	integer int64

	// bulk backs BulkString. bulkNull distinguishes a null bulk string
	// ($-1\r\n) from an empty one ($0\r\n\r\n) since bulk itself may be
	// a non-nil empty slice in the latter case.
	bulk     []byte
	bulkNull bool

	// array backs Array. Nesting is allowed; a nil array and an empty
	// array are the same thing — there is no null array variant.
	array []Object
}

// NewSimpleString builds a SimpleString Object. Callers are responsible for
// the no-CR/LF invariant; it is not re-validated here because every caller
// in this repo constructs these from fixed literals ("OK", "PONG").
func NewSimpleString(s []byte) Object {
	return Object{kind: KindSimpleString, str: s}
}

// NewError builds an Error Object.
func NewError(msg string) Object {
	return Object{kind: KindError, str: []byte(msg)}
}

// NewErrorf is NewError with Sprintf-style formatting.
func NewErrorf(format string, args ...any) Object {
	return NewError(fmt.Sprintf(format, args...))
}

// NewInteger builds an Integer Object.
func NewInteger(v int64) Object {
	return Object{kind: KindInteger, integer: v}
}

// NewBulkString builds a non-null BulkString Object. A nil slice is treated
// as an empty bulk string, not a null one — use NewNullBulkString for null.
func NewBulkString(b []byte) Object {
	if b == nil {
		b = []byte{}
	}
	return Object{kind: KindBulkString, bulk: b}
}

// NewNullBulkString builds the null bulk string ($-1\r\n).
func NewNullBulkString() Object {
	return Object{kind: KindBulkString, bulkNull: true}
}

// NewArray builds an Array Object from its elements, in order.
func NewArray(elems []Object) Object {
	if elems == nil {
		elems = []Object{}
	}
	return Object{kind: KindArray, array: elems}
}

// Kind reports which variant o holds.
func (o Object) Kind() Kind { return o.kind }

// IsNullBulkString reports whether o is the null bulk string.
func (o Object) IsNullBulkString() bool {
	return o.kind == KindBulkString && o.bulkNull
}

// Str returns the payload of a SimpleString or Error Object.
func (o Object) Str() []byte { return o.str }

// Integer returns the payload of an Integer Object.
func (o Object) Integer() int64 { return o.integer }

// Bulk returns the payload of a non-null BulkString Object. Callers must
// check IsNullBulkString first.
func (o Object) Bulk() []byte { return o.bulk }

// Array returns the elements of an Array Object.
func (o Object) Array() []Object { return o.array }

// PushBack appends items to the end of an Array Object in place — the
// mechanics behind RPUSH. Callers must have already checked Kind() ==
// KindArray.
func (o *Object) PushBack(items ...Object) {
	o.array = append(o.array, items...)
}

// PushFront inserts a single item at the head of an Array Object in place —
// the mechanics behind LPUSH, called once per argument so that repeated
// calls reverse the argument order.
func (o *Object) PushFront(item Object) {
	o.array = append([]Object{item}, o.array...)
}

// PopFront removes and returns the head element of an Array Object in
// place. ok is false for an empty array.
func (o *Object) PopFront() (Object, bool) {
	if len(o.array) == 0 {
		return Object{}, false
	}
	v := o.array[0]
	o.array = o.array[1:]
	return v, true
}

// Equal reports structural equality: two Objects are equal when they hold
// the same Kind and the same payload, recursively for arrays.
func (o Object) Equal(other Object) bool {
	if o.kind != other.kind {
		return false
	}
	switch o.kind {
	case KindSimpleString, KindError:
		return string(o.str) == string(other.str)
	case KindInteger:
		return o.integer == other.integer
	case KindBulkString:
		if o.bulkNull != other.bulkNull {
			return false
		}
		if o.bulkNull {
			return true
		}
		return string(o.bulk) == string(other.bulk)
	case KindArray:
		if len(o.array) != len(other.array) {
			return false
		}
		for i := range o.array {
			if !o.array[i].Equal(other.array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CacheKey renders o as a string suitable for use as a Go map key — Object
// itself isn't comparable since it can hold a slice. The key is the 128-bit
// FNV-1a digest of a canonical tag+payload encoding of o, so Equal Objects
// always produce the same CacheKey; distinct Objects whose digests collide
// would share one too, and no collision check is made. A BulkString's key
// depends only on its byte content;
// the null-bulk-string variant never appears as a store key since every
// command keys the store by a concrete, non-null BulkString argument.
func (o Object) CacheKey() string {
	h := fnv.New128a()
	o.writeCanonical(h)
	return string(h.Sum(nil))
}

func (o Object) writeCanonical(w interface{ Write([]byte) (int, error) }) {
	switch o.kind {
	case KindSimpleString:
		w.Write([]byte{'+'})
		w.Write(o.str)
	case KindError:
		w.Write([]byte{'-'})
		w.Write(o.str)
	case KindInteger:
		w.Write([]byte{':'})
		w.Write(strconv.AppendInt(nil, o.integer, 10))
	case KindBulkString:
		if o.bulkNull {
			w.Write([]byte("$-"))
			return
		}
		w.Write([]byte{'$'})
		w.Write(strconv.AppendInt(nil, int64(len(o.bulk)), 10))
		w.Write([]byte{':'})
		w.Write(o.bulk)
	case KindArray:
		w.Write([]byte{'*'})
		w.Write(strconv.AppendInt(nil, int64(len(o.array)), 10))
		for _, e := range o.array {
			e.writeCanonical(w)
		}
	}
}
