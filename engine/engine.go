// Package engine implements the command-processing core: it owns the
// key-value store and evaluates one decoded command Object at a time,
// producing one reply Object. Command semantics, TTL, list behavior, and
// error replies are all defined here.
//
// Engine itself is a plain, non-concurrent struct with no internal
// locking: that's only safe because the router serializes every call to
// Apply onto one goroutine. Engine assumes that discipline; it doesn't
// enforce it.
package engine

import (
	"strings"

	"github.com/wegjgwioj/miniresp/object"
)

// Engine evaluates RESP command Objects against an in-memory store. It is
// not safe for concurrent use; callers (the router) must serialize calls to
// Apply.
type Engine struct {
	store *store
	clock Clock
}

// New returns an Engine with a fresh, empty store using the real wall
// clock.
func New() *Engine {
	return newWithClock(realClock{})
}

// newWithClock is used by tests needing deterministic TTL behavior.
func newWithClock(c Clock) *Engine {
	return &Engine{store: newStore(), clock: c}
}

// Apply evaluates one command Object and returns one reply Object. It never
// panics: every recognized command returns some Object, and malformed
// commands return an Error Object rather than disturbing the store.
func (e *Engine) Apply(cmd object.Object) object.Object {
	name, args, errReply, ok := parseCommand(cmd)
	if !ok {
		return errReply
	}

	switch name {
	case "PING":
		return e.cmdPing(args)
	case "ECHO":
		return e.cmdEcho(args)
	case "SET":
		return e.cmdSet(args)
	case "GET":
		return e.cmdGet(args)
	case "RPUSH":
		return e.cmdPush(args, "rpush", pushBack)
	case "LPUSH":
		return e.cmdPush(args, "lpush", pushFront)
	case "LRANGE":
		return e.cmdLRange(args)
	case "LLEN":
		return e.cmdLLen(args)
	case "LPOP":
		return e.cmdLPop(args)
	default:
		return object.NewError("ERR unknown command")
	}
}

// parseCommand validates the shape every command must take: an Array
// whose first element is a non-null BulkString command name
// (compared case-insensitively after ASCII upper-casing), with the
// remaining elements as arguments.
func parseCommand(cmd object.Object) (name string, args []object.Object, errReply object.Object, ok bool) {
	if cmd.Kind() != object.KindArray {
		return "", nil, object.NewError("ERR invalid command: expected an array"), false
	}
	elems := cmd.Array()
	if len(elems) == 0 {
		return "", nil, object.NewError("ERR invalid command: empty array"), false
	}
	first := elems[0]
	if first.Kind() != object.KindBulkString || first.IsNullBulkString() {
		return "", nil, object.NewError("ERR invalid command: expected first element to be a non-null bulk string"), false
	}
	asciiUpper := func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}
	return strings.Map(asciiUpper, string(first.Bulk())), elems[1:], object.Object{}, true
}

func (e *Engine) cmdPing(args []object.Object) object.Object {
	if len(args) != 0 {
		return object.NewError("ERR wrong number of arguments for 'ping' command")
	}
	return object.NewSimpleString([]byte("PONG"))
}

func (e *Engine) cmdEcho(args []object.Object) object.Object {
	if len(args) != 1 {
		return object.NewError("ERR wrong number of arguments for 'echo' command")
	}
	return args[0]
}
