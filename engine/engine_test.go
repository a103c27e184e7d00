package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/miniresp/object"
)

// fakeClock lets TTL tests control elapsed time deterministically instead
// of sleeping real milliseconds.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func bulk(s string) object.Object { return object.NewBulkString([]byte(s)) }

func cmd(parts ...string) object.Object {
	elems := make([]object.Object, len(parts))
	for i, p := range parts {
		elems[i] = bulk(p)
	}
	return object.NewArray(elems)
}

func TestApply_Ping(t *testing.T) {
	e := New()
	got := e.Apply(cmd("PING"))
	require.Equal(t, object.KindSimpleString, got.Kind())
	require.Equal(t, "PONG", string(got.Str()))
}

func TestApply_Ping_CaseInsensitive(t *testing.T) {
	e := New()
	got := e.Apply(cmd("ping"))
	require.Equal(t, "PONG", string(got.Str()))
}

func TestApply_Echo(t *testing.T) {
	e := New()
	got := e.Apply(cmd("ECHO", "hello"))
	require.Equal(t, "hello", string(got.Bulk()))
}

func TestApply_Echo_WrongArity(t *testing.T) {
	e := New()
	require.Equal(t, object.KindError, e.Apply(cmd("ECHO")).Kind())
	require.Equal(t, object.KindError, e.Apply(cmd("ECHO", "a", "b")).Kind())
}

func TestApply_SetGet(t *testing.T) {
	e := New()
	require.Equal(t, "OK", string(e.Apply(cmd("SET", "foo", "bar")).Str()))
	got := e.Apply(cmd("GET", "foo"))
	require.Equal(t, "bar", string(got.Bulk()))
}

func TestApply_Get_MissingIsNullBulk(t *testing.T) {
	e := New()
	require.True(t, e.Apply(cmd("GET", "nope")).IsNullBulkString())
}

func TestApply_TTL_ExpiresOnGet(t *testing.T) {
	start := time.Now()
	clk := &fakeClock{now: start}
	e := newWithClock(clk)

	require.Equal(t, "OK", string(e.Apply(cmd("SET", "k", "v", "PX", "100")).Str()))

	clk.now = start.Add(50 * time.Millisecond)
	got := e.Apply(cmd("GET", "k"))
	require.Equal(t, "v", string(got.Bulk()))

	clk.now = start.Add(200 * time.Millisecond)
	got = e.Apply(cmd("GET", "k"))
	require.True(t, got.IsNullBulkString())
}

func TestApply_PX_InvalidDuration(t *testing.T) {
	e := New()
	got := e.Apply(cmd("SET", "k", "v", "PX", "12x"))
	require.Equal(t, object.KindError, got.Kind())
}

func TestApply_PX_AcceptsNineInclusive(t *testing.T) {
	// The PX digit check must accept the full '0'..'9' range, including '9'
	// itself.
	e := New()
	got := e.Apply(cmd("SET", "k", "v", "PX", "9"))
	require.Equal(t, "OK", string(got.Str()))
}

func TestApply_Set_RejectsExtraTrailingArguments(t *testing.T) {
	e := New()
	got := e.Apply(cmd("SET", "k", "v", "PX", "100", "EXTRA"))
	require.Equal(t, object.KindError, got.Kind())
}

func TestApply_RPush_LPush_LRange(t *testing.T) {
	e := New()
	got := e.Apply(cmd("RPUSH", "list", "a", "b", "c"))
	require.Equal(t, int64(3), got.Integer())

	got = e.Apply(cmd("LRANGE", "list", "0", "-1"))
	require.Equal(t, []string{"a", "b", "c"}, bulkStrings(got))

	got = e.Apply(cmd("LPUSH", "list", "x", "y"))
	require.Equal(t, int64(5), got.Integer())

	got = e.Apply(cmd("LRANGE", "list", "0", "-1"))
	require.Equal(t, []string{"y", "x", "a", "b", "c"}, bulkStrings(got))
}

func TestApply_LRange_NormalizationRules(t *testing.T) {
	e := New()
	e.Apply(cmd("RPUSH", "l", "a", "b", "c", "d", "e"))

	cases := []struct {
		start, stop string
		want        []string
	}{
		{"0", "-1", []string{"a", "b", "c", "d", "e"}},
		{"-100", "-1", []string{"a", "b", "c", "d", "e"}},
		{"1", "3", []string{"b", "c", "d"}},
		{"3", "1", nil},
		{"10", "20", nil},
		{"-2", "-1", []string{"d", "e"}},
		{"0", "100", []string{"a", "b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		got := e.Apply(cmd("LRANGE", "l", tc.start, tc.stop))
		require.Equal(t, tc.want, bulkStrings(got), "start=%s stop=%s", tc.start, tc.stop)
	}
}

func TestApply_LLen(t *testing.T) {
	e := New()
	require.Equal(t, int64(0), e.Apply(cmd("LLEN", "missing")).Integer())
	e.Apply(cmd("RPUSH", "l", "a", "b"))
	require.Equal(t, int64(2), e.Apply(cmd("LLEN", "l")).Integer())
}

func TestApply_LLen_WrongType_ReturnsZeroNotError(t *testing.T) {
	e := New()
	e.Apply(cmd("SET", "k", "v"))
	require.Equal(t, int64(0), e.Apply(cmd("LLEN", "k")).Integer())
}

func TestApply_LPop(t *testing.T) {
	e := New()
	e.Apply(cmd("RPUSH", "l", "a", "b"))
	got := e.Apply(cmd("LPOP", "l"))
	require.Equal(t, "a", string(got.Bulk()))
	require.Equal(t, int64(1), e.Apply(cmd("LLEN", "l")).Integer())

	e.Apply(cmd("LPOP", "l"))
	require.True(t, e.Apply(cmd("LPOP", "l")).IsNullBulkString())
}

func TestApply_LPop_WrongType_ReturnsNullNotError(t *testing.T) {
	e := New()
	e.Apply(cmd("SET", "k", "v"))
	require.True(t, e.Apply(cmd("LPOP", "k")).IsNullBulkString())
}

func TestApply_TypeGuarding_RPushOnNonArray_LeavesEntryUnchanged(t *testing.T) {
	e := New()
	e.Apply(cmd("SET", "k", "v"))
	got := e.Apply(cmd("RPUSH", "k", "x"))
	require.Equal(t, object.KindError, got.Kind())

	still := e.Apply(cmd("GET", "k"))
	require.Equal(t, "v", string(still.Bulk()))
}

func TestApply_UnknownCommand(t *testing.T) {
	e := New()
	got := e.Apply(cmd("FROBNICATE"))
	require.Equal(t, object.KindError, got.Kind())
}

func TestApply_MalformedCommandShapes(t *testing.T) {
	e := New()
	require.Equal(t, object.KindError, e.Apply(object.NewInteger(1)).Kind())
	require.Equal(t, object.KindError, e.Apply(object.NewArray(nil)).Kind())
	require.Equal(t, object.KindError, e.Apply(object.NewArray([]object.Object{object.NewNullBulkString()})).Kind())
}

func bulkStrings(o object.Object) []string {
	arr := o.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		out[i] = string(e.Bulk())
	}
	return out
}
