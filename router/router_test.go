package router

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/miniresp/engine"
	"github.com/wegjgwioj/miniresp/internal/logging"
	"github.com/wegjgwioj/miniresp/internal/metrics"
	"github.com/wegjgwioj/miniresp/object"
)

func newTestRouter(t *testing.T) (*Router, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := New(engine.New(), logging.Nop(), metrics.New())
	go r.Run(ctx)
	return r, ctx
}

func cmd(parts ...string) object.Object {
	elems := make([]object.Object, len(parts))
	for i, p := range parts {
		elems[i] = object.NewBulkString([]byte(p))
	}
	return object.NewArray(elems)
}

func TestRouter_RegisterThenCommand_RepliesOnOwnSink(t *testing.T) {
	r, ctx := newTestRouter(t)
	id := uuid.New()

	sink := r.Register(ctx, id)
	defer r.Unregister(ctx, id)

	r.SubmitCommand(ctx, id, cmd("PING"))

	select {
	case reply := <-sink:
		require.Equal(t, "PONG", string(reply.Str()))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestRouter_TwoConnections_DoNotCrossReplies(t *testing.T) {
	r, ctx := newTestRouter(t)
	idA, idB := uuid.New(), uuid.New()

	sinkA := r.Register(ctx, idA)
	sinkB := r.Register(ctx, idB)
	defer r.Unregister(ctx, idA)
	defer r.Unregister(ctx, idB)

	r.SubmitCommand(ctx, idA, cmd("ECHO", "a-says-hi"))
	r.SubmitCommand(ctx, idB, cmd("ECHO", "b-says-hi"))

	var gotA, gotB object.Object
	for i := 0; i < 2; i++ {
		select {
		case gotA = <-sinkA:
		case gotB = <-sinkB:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for replies")
		}
	}
	require.Equal(t, "a-says-hi", string(gotA.Bulk()))
	require.Equal(t, "b-says-hi", string(gotB.Bulk()))
}

func TestRouter_CommandOrderingPerConnectionIsPreserved(t *testing.T) {
	r, ctx := newTestRouter(t)
	id := uuid.New()
	sink := r.Register(ctx, id)
	defer r.Unregister(ctx, id)

	r.SubmitCommand(ctx, id, cmd("RPUSH", "l", "x"))
	r.SubmitCommand(ctx, id, cmd("RPUSH", "l", "y"))
	r.SubmitCommand(ctx, id, cmd("LRANGE", "l", "0", "-1"))

	var last object.Object
	for i := 0; i < 3; i++ {
		select {
		case last = <-sink:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for replies")
		}
	}
	arr := last.Array()
	require.Len(t, arr, 2)
	require.Equal(t, "x", string(arr[0].Bulk()))
	require.Equal(t, "y", string(arr[1].Bulk()))
}

func TestRouter_UnregisterThenCommand_ReplyIsSilentlyDropped(t *testing.T) {
	r, ctx := newTestRouter(t)
	id := uuid.New()

	sink := r.Register(ctx, id)
	r.Unregister(ctx, id)

	// Nothing should ever arrive on sink again; SubmitCommand after
	// Unregister must not panic or block the router goroutine.
	r.SubmitCommand(ctx, id, cmd("PING"))

	// Prove the router is still alive for other connections.
	other := uuid.New()
	otherSink := r.Register(ctx, other)
	defer r.Unregister(ctx, other)
	r.SubmitCommand(ctx, other, cmd("PING"))

	select {
	case reply := <-otherSink:
		require.Equal(t, "PONG", string(reply.Str()))
	case <-time.After(time.Second):
		t.Fatal("router appears stuck after a dropped reply")
	}

	select {
	case <-sink:
		t.Fatal("unregistered sink should never receive a reply")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouter_RegisterBlocksUntilInstalled(t *testing.T) {
	r, ctx := newTestRouter(t)
	id := uuid.New()

	// Register must already be visible to the router's state by the time
	// it returns — not just enqueued. A command submitted immediately after
	// must find its sink.
	sink := r.Register(ctx, id)
	defer r.Unregister(ctx, id)

	r.SubmitCommand(ctx, id, cmd("PING"))
	select {
	case <-sink:
	case <-time.After(time.Second):
		t.Fatal("Register returned before the router installed the sink")
	}
}

func TestRouter_ContextCancellation_UnblocksRegister(t *testing.T) {
	eng := engine.New()
	r := New(eng, logging.Nop(), metrics.New())
	// Deliberately never call Run: Register must still return once ctx is
	// canceled, rather than hanging forever.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		r.Register(ctx, uuid.New())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register did not respect context cancellation")
	}
}
