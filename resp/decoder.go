// Package resp implements the RESP (Redis Serialization Protocol) codec:
// a streaming Decoder that pulls Objects off a byte source without owning
// the underlying stream, and an Encoder that writes any Object to a byte
// sink.
//
// The Decoder keeps a fixed scratch buffer plus an offset and only refills
// once the offset catches up to the fill length, so it never looks back
// across a read boundary. Tag-byte dispatch (bulk/array/integer) recurses
// so that an array element may itself be any Object, including a nested
// array.
package resp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wegjgwioj/miniresp/object"
)

// ByteReader is the pull source a Decoder reads from: read into a buffer,
// return the bytes actually read. This is exactly io.Reader's contract —
// no bespoke interface is needed, so the Decoder is decoupled from any
// specific transport (a TCP conn, an in-memory buffer in a unit test,
// anything).
type ByteReader = io.Reader

const scratchSize = 4096

// Decoder parses Objects one at a time from a ByteReader. It does not own
// the reader: callers may write to the same underlying stream between
// Decode calls, and a connection handler can freely interleave decoding a
// request with encoding the previous reply.
type Decoder struct {
	r      ByteReader
	buf    [scratchSize]byte
	pos    int
	length int
	// closed becomes true once a Read has returned zero bytes. No further
	// reads are attempted after that; current() simply reports "no byte
	// available".
	closed bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r ByteReader) *Decoder {
	return &Decoder{r: r}
}

// protocolError reports a decode error. Distinct from the clean end-of-
// stream io.EOF that Decode returns when nothing has been consumed yet.
type protocolError struct{ msg string }

func (e *protocolError) Error() string { return "resp: protocol error: " + e.msg }

func protoErrf(format string, args ...any) error {
	return &protocolError{msg: fmt.Sprintf(format, args...)}
}

// Decode reads and returns one fully-parsed Object. It returns io.EOF only
// when the stream is cleanly closed between objects (no bytes consumed for
// this call); any end-of-stream encountered mid-object is a decode error,
// not io.EOF — a caller can tell "the peer hung up" apart from "the peer
// sent garbage".
func (d *Decoder) Decode() (object.Object, error) {
	b, ok, err := d.current()
	if err != nil {
		return object.Object{}, err
	}
	if !ok {
		return object.Object{}, io.EOF
	}

	switch b {
	case '$':
		return d.decodeBulkString()
	case '*':
		return d.decodeArray()
	case ':':
		return d.decodeInteger()
	default:
		// Clients never send Error (-) or SimpleString (+) framing, only
		// Bulk/Array/Integer; any other tag byte is a protocol error.
		return object.Object{}, protoErrf("unexpected tag byte %q", b)
	}
}

func (d *Decoder) decodeBulkString() (object.Object, error) {
	d.advance() // consume '$'
	line, err := d.readLine()
	if err != nil {
		return object.Object{}, err
	}
	if string(line) == "-1" {
		return object.NewNullBulkString(), nil
	}

	n, err := strconv.ParseUint(string(line), 10, 32)
	if err != nil {
		return object.Object{}, protoErrf("invalid bulk string length %q", line)
	}

	body := make([]byte, n)
	for i := uint64(0); i < n; i++ {
		b, ok, err := d.current()
		if err != nil {
			return object.Object{}, err
		}
		if !ok {
			return object.Object{}, protoErrf("unexpected end of input reading bulk string body")
		}
		body[i] = b
		d.advance()
	}
	if err := d.expectCRLF(); err != nil {
		return object.Object{}, err
	}
	return object.NewBulkString(body), nil
}

func (d *Decoder) decodeArray() (object.Object, error) {
	d.advance() // consume '*'
	line, err := d.readLine()
	if err != nil {
		return object.Object{}, err
	}
	n, err := strconv.ParseUint(string(line), 10, 32)
	if err != nil {
		return object.Object{}, protoErrf("invalid array length %q", line)
	}

	elems := make([]object.Object, 0, n)
	for i := uint64(0); i < n; i++ {
		elem, err := d.Decode()
		if err != nil {
			if err == io.EOF {
				return object.Object{}, protoErrf("unexpected end of input in array")
			}
			return object.Object{}, err
		}
		elems = append(elems, elem)
	}
	return object.NewArray(elems), nil
}

func (d *Decoder) decodeInteger() (object.Object, error) {
	d.advance() // consume ':'
	line, err := d.readLine()
	if err != nil {
		return object.Object{}, err
	}
	v, perr := strconv.ParseInt(string(line), 10, 64)
	if perr != nil {
		return object.Object{}, protoErrf("invalid integer %q", line)
	}
	return object.NewInteger(v), nil
}

// readLine consumes bytes up to and including a CRLF, returning the bytes
// before it. An end-of-stream before the CRLF is a decode error: the
// grammar guarantees every production consumes a bounded prefix before
// yielding, so a clean close here always means a truncated message.
func (d *Decoder) readLine() ([]byte, error) {
	var line []byte
	for {
		b, ok, err := d.current()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, protoErrf("unexpected end of input")
		}
		d.advance()
		if b == '\r' {
			if err := d.expectByte('\n'); err != nil {
				return nil, err
			}
			return line, nil
		}
		line = append(line, b)
	}
}

func (d *Decoder) expectCRLF() error {
	if err := d.expectByte('\r'); err != nil {
		return err
	}
	return d.expectByte('\n')
}

func (d *Decoder) expectByte(want byte) error {
	b, ok, err := d.current()
	if err != nil {
		return err
	}
	if !ok {
		return protoErrf("unexpected end of input, expected %q", want)
	}
	if b != want {
		return protoErrf("expected %q, got %q", want, b)
	}
	d.advance()
	return nil
}

// current returns the byte at the current offset, fetching more input if
// the scratch buffer is exhausted. ok is false only once the stream has
// been observed closed (a zero-byte read) and no buffered byte remains.
func (d *Decoder) current() (byte, bool, error) {
	if d.pos < d.length {
		return d.buf[d.pos], true, nil
	}
	if d.closed {
		return 0, false, nil
	}
	if err := d.fill(); err != nil {
		return 0, false, err
	}
	return d.current()
}

func (d *Decoder) advance() { d.pos++ }

// fill replaces the scratch buffer's contents with a fresh read. Buffers
// need not be preserved across fetches: parsing is strictly left-to-right
// and every grammar production consumes a bounded prefix before yielding,
// so the decoder never looks back across a fetch boundary.
func (d *Decoder) fill() error {
	n, err := d.r.Read(d.buf[:])
	d.pos = 0
	d.length = n
	if n == 0 {
		d.closed = true
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}
