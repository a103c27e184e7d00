// Package server is the TCP front end: one goroutine per connection,
// decoding RESP requests and submitting them to a Router, encoding
// whatever comes back on the connection's reply sink.
//
// Each connection gets an opaque uuid.UUID identity for the router to key
// its reply sinks by, and graceful shutdown aggregates any errors closing
// individual connections with go-multierror instead of logging and
// dropping them.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"

	"github.com/wegjgwioj/miniresp/internal/logging"
	"github.com/wegjgwioj/miniresp/internal/metrics"
	"github.com/wegjgwioj/miniresp/object"
	"github.com/wegjgwioj/miniresp/resp"
	"github.com/wegjgwioj/miniresp/router"
)

// Server accepts TCP connections and bridges each one to a shared Router.
type Server struct {
	addr   string
	router *router.Router
	log    logging.Logger
	m      *metrics.Metrics

	listener net.Listener

	closing   chan struct{}
	closeOnce sync.Once

	wg      sync.WaitGroup
	conns   map[net.Conn]struct{}
	connsMu sync.Mutex
}

// New builds a Server. r must already have Run started (typically by the
// caller, in its own goroutine) before Start is called.
func New(addr string, r *router.Router, log logging.Logger, m *metrics.Metrics) *Server {
	return &Server{
		addr:    addr,
		router:  r,
		log:     log,
		m:       m,
		closing: make(chan struct{}),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start listens on addr and accepts connections until Shutdown is called.
// It blocks; run it in its own goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return pkgerrors.Wrap(err, "server: listen")
	}
	s.listener = listener
	s.log.Infof("miniresp listening on %s", s.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
			}
			s.log.Errorf("server: accept: %v", err)
			continue
		}
		s.trackConn(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting new connections, closes every tracked
// connection, and waits (up to ctx's deadline) for their goroutines to
// exit. Any errors closing individual connections are aggregated rather
// than dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	var closeErrs *multierror.Error

	s.closeOnce.Do(func() {
		close(s.closing)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				closeErrs = multierror.Append(closeErrs, pkgerrors.Wrap(err, "server: close listener"))
			}
		}

		s.connsMu.Lock()
		for c := range s.conns {
			if err := c.Close(); err != nil {
				closeErrs = multierror.Append(closeErrs, pkgerrors.Wrap(err, "server: close connection"))
			}
		}
		s.connsMu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		closeErrs = multierror.Append(closeErrs, pkgerrors.Wrap(ctx.Err(), "server: shutdown deadline exceeded"))
	}

	return closeErrs.ErrorOrNil()
}

func (s *Server) trackConn(c net.Conn) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) untrackConn(c net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

// handleConnection owns one client's lifetime: it registers a reply sink
// with the router, decodes requests until EOF or a protocol error, and
// relays each reply back. It is the only goroutine that reads or writes
// conn, and the only one that submits on behalf of its connID.
func (s *Server) handleConnection(conn net.Conn) {
	connID := uuid.New()
	ctx := context.Background()

	defer conn.Close()
	defer s.untrackConn(conn)

	if s.m != nil {
		s.m.ConnectionOpened()
		defer s.m.ConnectionClosed()
	}

	sink := s.router.Register(ctx, connID)
	defer s.router.Unregister(ctx, connID)

	dec := resp.NewDecoder(conn)

	for {
		req, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			s.log.Warnf("server: connection %s: %v", connID, err)
			_ = resp.Encode(conn, object.NewErrorf("ERR %v", err))
			return
		}

		s.router.SubmitCommand(ctx, connID, req)

		reply := <-sink
		if err := resp.Encode(conn, reply); err != nil {
			s.log.Warnf("server: connection %s: write: %v", connID, err)
			return
		}
	}
}
