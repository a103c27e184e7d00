package resp

import (
	"io"
	"strconv"

	"github.com/wegjgwioj/miniresp/object"
)

var crlf = []byte("\r\n")

// Encode writes o's canonical RESP wire form to w. The only failure mode is
// the sink's own I/O error, which is surfaced verbatim with no wrapping.
func Encode(w io.Writer, o object.Object) error {
	switch o.Kind() {
	case object.KindSimpleString:
		return writeTagged(w, '+', o.Str())
	case object.KindError:
		return writeTagged(w, '-', o.Str())
	case object.KindInteger:
		if _, err := w.Write([]byte{':'}); err != nil {
			return err
		}
		if _, err := w.Write(strconv.AppendInt(nil, o.Integer(), 10)); err != nil {
			return err
		}
		_, err := w.Write(crlf)
		return err
	case object.KindBulkString:
		if o.IsNullBulkString() {
			_, err := w.Write([]byte("$-1\r\n"))
			return err
		}
		bulk := o.Bulk()
		if _, err := w.Write([]byte{'$'}); err != nil {
			return err
		}
		if _, err := w.Write(strconv.AppendInt(nil, int64(len(bulk)), 10)); err != nil {
			return err
		}
		if _, err := w.Write(crlf); err != nil {
			return err
		}
		if _, err := w.Write(bulk); err != nil {
			return err
		}
		_, err := w.Write(crlf)
		return err
	case object.KindArray:
		elems := o.Array()
		if _, err := w.Write([]byte{'*'}); err != nil {
			return err
		}
		if _, err := w.Write(strconv.AppendInt(nil, int64(len(elems)), 10)); err != nil {
			return err
		}
		if _, err := w.Write(crlf); err != nil {
			return err
		}
		for _, e := range elems {
			if err := Encode(w, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return protoErrf("cannot encode object of kind %v", o.Kind())
	}
}

func writeTagged(w io.Writer, tag byte, payload []byte) error {
	if _, err := w.Write([]byte{tag}); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write(crlf)
	return err
}
