package engine

import (
	"strings"
	"time"

	"github.com/wegjgwioj/miniresp/object"
)

// cmdSet implements SET key value [PX ms]. Arity is 2 or 4; anything else,
// including a recognized option followed by unexpected trailing arguments,
// is rejected outright rather than silently ignored.
func (e *Engine) cmdSet(args []object.Object) object.Object {
	if len(args) != 2 && len(args) != 4 {
		return object.NewError("ERR wrong number of arguments for 'set' command")
	}
	key, value := args[0], args[1]

	ent := &entry{value: value, createdAt: e.clock.Now()}

	if len(args) == 4 {
		opt := args[2]
		if opt.Kind() != object.KindBulkString || opt.IsNullBulkString() {
			return object.NewError("ERR syntax error")
		}
		if !strings.EqualFold(string(opt.Bulk()), "PX") {
			return object.NewErrorf("ERR syntax error near %q", opt.Bulk())
		}
		durationArg := args[3]
		ms, err := parsePXDuration(durationArg)
		if err != nil {
			return object.NewError("ERR Invalid PX duration")
		}
		ttl := time.Duration(ms) * time.Millisecond
		ent.ttl = &ttl
	}

	e.store.set(key, ent)
	return object.NewSimpleString([]byte("OK"))
}

// parsePXDuration parses the PX option's millisecond count, accepting the
// full '0'..'9' inclusive digit range. An empty digit string is rejected
// rather than treated as zero.
func parsePXDuration(arg object.Object) (uint64, error) {
	if arg.Kind() != object.KindBulkString || arg.IsNullBulkString() {
		return 0, errInvalidPX
	}
	digits := arg.Bulk()
	if len(digits) == 0 {
		return 0, errInvalidPX
	}
	var ms uint64
	for _, b := range digits {
		if b < '0' || b > '9' {
			return 0, errInvalidPX
		}
		ms = ms*10 + uint64(b-'0')
	}
	return ms, nil
}

var errInvalidPX = &pxParseError{}

type pxParseError struct{}

func (*pxParseError) Error() string { return "invalid PX duration" }

// cmdGet implements GET key, honoring TTL: this is the one command that
// lazily expires an entry on read.
func (e *Engine) cmdGet(args []object.Object) object.Object {
	if len(args) != 1 {
		return object.NewError("ERR wrong number of arguments for 'get' command")
	}
	ent, ok := e.store.getLive(args[0], e.clock.Now())
	if !ok {
		return object.NewNullBulkString()
	}
	return ent.value
}
