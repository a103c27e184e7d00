// Package router implements the request router: the thin concurrency
// boundary between N connection handlers and the single Engine. Many
// connections submit decoded commands over one channel; each connection
// receives its own replies over a per-connection sink it registers up
// front.
//
// It's a buffered request channel drained by one background goroutine
// that owns all mutable engine state, so the store never needs a lock.
package router

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wegjgwioj/miniresp/engine"
	"github.com/wegjgwioj/miniresp/internal/logging"
	"github.com/wegjgwioj/miniresp/internal/metrics"
	"github.com/wegjgwioj/miniresp/object"
)

// Kind distinguishes the three request shapes the router's channel
// carries.
type Kind int

const (
	// KindCommand asks the engine to evaluate Command and reply on the
	// sink registered for ConnID.
	KindCommand Kind = iota
	// KindRegister associates a connection with its reply sink.
	KindRegister
	// KindUnregister removes a connection's reply sink. Requests are handled
	// in channel order, so commands queued for it before this point are
	// still answered on the sink; replies to commands queued after it are
	// dropped.
	KindUnregister
)

// Request is one entry in the router's command channel.
type Request struct {
	ConnID  uuid.UUID
	Kind    Kind
	Command object.Object      // valid when Kind == KindCommand
	Sink    chan object.Object // valid when Kind == KindRegister
	// Ack, when non-nil, is closed by the router immediately after it has
	// applied a Register/Unregister, so the caller can synchronize before
	// its first read or after its last write. Commands don't use Ack:
	// their reply on Sink already serves that purpose.
	Ack chan struct{}
}

// requestBuffer smooths out bursts of pipelined commands across many
// connections without making the router itself concurrent.
const requestBuffer = 1000

// Router bridges connection handlers to a single Engine goroutine,
// preserving per-connection reply ordering.
type Router struct {
	engine   *engine.Engine
	requests chan Request
	sinks    map[uuid.UUID]chan object.Object

	log     logging.Logger
	metrics *metrics.Metrics
}

// New builds a Router over eng. Run must be called (typically in its own
// goroutine) before any Submit*/Register/Unregister call will make
// progress.
func New(eng *engine.Engine, log logging.Logger, m *metrics.Metrics) *Router {
	return &Router{
		engine:   eng,
		requests: make(chan Request, requestBuffer),
		sinks:    make(map[uuid.UUID]chan object.Object),
		log:      log,
		metrics:  m,
	}
}

// Run is the single engine goroutine: it drains the request channel in
// arrival order until ctx is canceled. The store it drives (inside Engine)
// is therefore only ever touched from this one goroutine, so Engine never
// runs concurrently with itself.
func (r *Router) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-r.requests:
			r.handle(req)
		}
	}
}

func (r *Router) handle(req Request) {
	switch req.Kind {
	case KindRegister:
		r.sinks[req.ConnID] = req.Sink
		closeAck(req.Ack)
	case KindUnregister:
		delete(r.sinks, req.ConnID)
		closeAck(req.Ack)
	case KindCommand:
		name := commandName(req.Command)
		start := time.Now()
		reply := r.engine.Apply(req.Command)
		if r.metrics != nil {
			r.metrics.ObserveCommand(name)
			r.metrics.CommandLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
		sink, ok := r.sinks[req.ConnID]
		if !ok {
			// No sink registered (already unregistered): the reply is
			// dropped.
			if r.log != nil {
				r.log.Debugf("router: dropping reply for unregistered connection %s", req.ConnID)
			}
			return
		}
		sink <- reply
	}
}

func closeAck(ack chan struct{}) {
	if ack != nil {
		close(ack)
	}
}

// Register associates connID with a freshly created reply sink and blocks
// until the router has installed it.
func (r *Router) Register(ctx context.Context, connID uuid.UUID) chan object.Object {
	sink := make(chan object.Object)
	ack := make(chan struct{})
	r.submit(ctx, Request{ConnID: connID, Kind: KindRegister, Sink: sink, Ack: ack})
	select {
	case <-ack:
	case <-ctx.Done():
	}
	return sink
}

// Unregister removes connID's sink and blocks until the router has
// acknowledged the removal.
func (r *Router) Unregister(ctx context.Context, connID uuid.UUID) {
	ack := make(chan struct{})
	r.submit(ctx, Request{ConnID: connID, Kind: KindUnregister, Ack: ack})
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// SubmitCommand enqueues a decoded command for connID. The reply arrives
// asynchronously on the sink returned by Register.
func (r *Router) SubmitCommand(ctx context.Context, connID uuid.UUID, cmd object.Object) {
	r.submit(ctx, Request{ConnID: connID, Kind: KindCommand, Command: cmd})
}

func (r *Router) submit(ctx context.Context, req Request) {
	select {
	case r.requests <- req:
	case <-ctx.Done():
	}
}

func commandName(cmd object.Object) string {
	if cmd.Kind() != object.KindArray || len(cmd.Array()) == 0 {
		return "invalid"
	}
	first := cmd.Array()[0]
	if first.Kind() != object.KindBulkString || first.IsNullBulkString() {
		return "invalid"
	}
	return string(first.Bulk())
}
