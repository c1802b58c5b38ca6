package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/metrics"
	"github.com/specialistvlad/circles/internal/pipeline"
	"github.com/specialistvlad/circles/internal/session"
	"github.com/zishang520/socket.io/v2/socket"
)

// DefaultCacheSize is how many recent revisions graph:get can serve.
const DefaultCacheSize = 32

// ErrNoSession is returned for requests that arrive before Attach.
var ErrNoSession = errors.New("no session attached")

// Server is a socket.io server that implements session.Publisher.
type Server struct {
	ctx   context.Context
	io    *socket.Server
	cache *lru.Cache[uint64, *pipeline.Composed]

	mu      sync.RWMutex
	session session.Session
	latest  *pipeline.Composed
}

var _ session.Publisher = (*Server)(nil)

// NewServer creates a bridge server. ctx supplies the logger for request
// handling, which happens on socket.io goroutines.
func NewServer(ctx context.Context, cacheSize int) (*Server, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[uint64, *pipeline.Composed](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create revision cache: %w", err)
	}

	s := &Server{
		ctx:   ctx,
		io:    socket.NewServer(nil, nil),
		cache: cache,
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.onConnect(client)
	})
	return s, nil
}

// Attach sets the session requests are served from.
func (s *Server) Attach(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// Handler returns the HTTP handler to mount at /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// PublishGraph caches a composed graph and broadcasts it.
func (s *Server) PublishGraph(ctx context.Context, c *pipeline.Composed) error {
	wire, err := toWire(c)
	if err != nil {
		return fmt.Errorf("failed to encode revision %d: %w", c.Revision, err)
	}

	s.mu.Lock()
	s.latest = c
	s.mu.Unlock()
	s.cache.Add(c.Revision, c)

	s.io.Emit(EventGraph, wire)
	metrics.Published.WithLabelValues("graph").Inc()
	ctxlog.FromContext(ctx).Debug("Graph published.", "revision", c.Revision, "entries", len(c.Entries))
	return nil
}

// PublishParams broadcasts a parameter update.
func (s *Server) PublishParams(ctx context.Context, u session.ParamUpdate) error {
	wire, err := toWire(u)
	if err != nil {
		return fmt.Errorf("failed to encode parameter update: %w", err)
	}
	s.io.Emit(EventParams, wire)
	metrics.Published.WithLabelValues("params").Inc()
	return nil
}

func (s *Server) onConnect(client *socket.Socket) {
	logger := ctxlog.FromContext(s.ctx).With("client", string(client.Id()))
	logger.Info("Engine client connected.")
	metrics.BridgeClients.Inc()

	client.On("disconnect", func(...any) {
		logger.Info("Engine client disconnected.")
		metrics.BridgeClients.Dec()
	})

	s.serve(client, EventGraphGet, EventGraph, s.graph)
	s.serve(client, EventSnapshotGet, EventSnapshot, s.snapshot)
	s.serve(client, EventParamSet, "", func(args []any) (any, error) {
		return nil, s.setParam(args)
	})
}

// serve answers request with reply, or with an error event on failure. An
// empty reply name sends nothing on success.
func (s *Server) serve(client *socket.Socket, request, reply string, fn func(args []any) (any, error)) {
	client.On(request, func(args ...any) {
		out, err := fn(args)
		if err != nil {
			ctxlog.FromContext(s.ctx).Warn("Bridge request failed.", "request", request, "error", err)
			client.Emit(EventError, errorPayload(request, err))
			return
		}
		if reply == "" {
			return
		}
		wire, err := toWire(out)
		if err != nil {
			client.Emit(EventError, errorPayload(request, err))
			return
		}
		client.Emit(reply, wire)
	})
}

// graph serves graph:get from the latest graph or the revision cache.
func (s *Server) graph(args []any) (any, error) {
	var req GraphRequest
	if err := fromWire(args, &req); err != nil {
		return nil, err
	}

	if req.Revision == 0 {
		s.mu.RLock()
		latest := s.latest
		s.mu.RUnlock()
		if latest == nil {
			return nil, fmt.Errorf("no graph published yet")
		}
		return latest, nil
	}
	c, ok := s.cache.Get(req.Revision)
	if !ok {
		return nil, fmt.Errorf("revision %d is not cached", req.Revision)
	}
	return c, nil
}

func (s *Server) snapshot([]any) (any, error) {
	sess, err := s.attached()
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(s.ctx), nil
}

func (s *Server) setParam(args []any) error {
	var req ParamRequest
	if err := fromWire(args, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	sess, err := s.attached()
	if err != nil {
		return err
	}
	if req.Scalar != nil {
		return sess.SetScalar(s.ctx, req.Handle, *req.Scalar)
	}
	return sess.SetArray(s.ctx, req.Handle, req.Array)
}

func (s *Server) attached() (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.session, nil
}
