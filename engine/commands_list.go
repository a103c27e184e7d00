package engine

import (
	"strconv"

	"github.com/wegjgwioj/miniresp/object"
)

// pushFn is how a single value is inserted for RPUSH vs LPUSH — the only
// difference between the two commands.
type pushFn func(list *object.Object, v object.Object)

func pushBack(list *object.Object, v object.Object)  { list.PushBack(v) }
func pushFront(list *object.Object, v object.Object) { list.PushFront(v) }

// cmdPush implements both RPUSH and LPUSH: append (or individually prepend,
// for LPUSH — which is why argument order ends up reversed in the final
// list) to the Array at key, creating an empty Array if the key is
// missing.
func (e *Engine) cmdPush(args []object.Object, cmdName string, push pushFn) object.Object {
	if len(args) < 2 {
		return object.NewErrorf("ERR wrong number of arguments for '%s' command", cmdName)
	}
	key := args[0]
	values := args[1:]

	// RPUSH/LPUSH never check expiration; an expired-but-still-present
	// entry is treated as whatever it is.
	ent, ok := e.store.get(key)
	if !ok {
		ent = &entry{value: object.NewArray(nil), createdAt: e.clock.Now()}
		e.store.set(key, ent)
	}
	if ent.value.Kind() != object.KindArray {
		return object.NewError("WRONGTYPE Operation against a key holding the wrong kind of value")
	}

	for _, v := range values {
		push(&ent.value, v)
	}
	return object.NewInteger(int64(len(ent.value.Array())))
}

// cmdLRange implements LRANGE key start stop with Redis's negative-index
// rules: a negative index counts back from the end of the list, and the
// range clamps to the list's bounds instead of erroring out-of-range.
func (e *Engine) cmdLRange(args []object.Object) object.Object {
	if len(args) != 3 {
		return object.NewError("ERR wrong number of arguments for 'lrange' command")
	}
	start, ok1 := parseSignedInt(args[1])
	stop, ok2 := parseSignedInt(args[2])
	if !ok1 || !ok2 {
		return object.NewError("ERR value is not an integer or out of range")
	}

	ent, ok := e.store.get(args[0])
	if !ok {
		return object.NewArray(nil)
	}
	if ent.value.Kind() != object.KindArray {
		return object.NewError("WRONGTYPE Operation against a key holding the wrong kind of value")
	}

	list := ent.value.Array()
	n := int64(len(list))

	if start < 0 {
		start = max64(0, n+start)
	}
	if stop < 0 {
		stop = max64(0, n+stop)
	}
	if start >= n || start > stop {
		return object.NewArray(nil)
	}
	if stop > n-1 {
		stop = n - 1
	}

	slice := make([]object.Object, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		slice = append(slice, list[i])
	}
	return object.NewArray(slice)
}

// cmdLLen implements LLEN key. It returns 0 both for a missing key and for
// a key holding a non-list value — unlike RPUSH/LPUSH/LRANGE, a type
// mismatch here is not an Error.
func (e *Engine) cmdLLen(args []object.Object) object.Object {
	if len(args) != 1 {
		return object.NewError("ERR wrong number of arguments for 'llen' command")
	}
	ent, ok := e.store.get(args[0])
	if !ok || ent.value.Kind() != object.KindArray {
		return object.NewInteger(0)
	}
	return object.NewInteger(int64(len(ent.value.Array())))
}

// cmdLPop implements LPOP key. It returns a null bulk string for a missing
// key, an empty list, or a non-list value — again unlike RPUSH/LPUSH/
// LRANGE, there is no Error reply for a type mismatch.
func (e *Engine) cmdLPop(args []object.Object) object.Object {
	if len(args) != 1 {
		return object.NewError("ERR wrong number of arguments for 'lpop' command")
	}
	ent, ok := e.store.get(args[0])
	if !ok || ent.value.Kind() != object.KindArray {
		return object.NewNullBulkString()
	}
	v, ok := ent.value.PopFront()
	if !ok {
		return object.NewNullBulkString()
	}
	return v
}

func parseSignedInt(arg object.Object) (int64, bool) {
	if arg.Kind() != object.KindBulkString || arg.IsNullBulkString() {
		return 0, false
	}
	v, err := strconv.ParseInt(string(arg.Bulk()), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
