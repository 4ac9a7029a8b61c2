package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/lance/internal/errors"
	"github.com/vango-dev/lance/pkg/reactor"
)

// maxEventBody bounds POST /events request bodies.
const maxEventBody = 1 << 20

// Server serves mounted reactors and relays browser events to the bus.
type Server struct {
	rt     *reactor.Runtime
	logger *slog.Logger
	title  string

	gatherer    prometheus.Gatherer
	metricsPath string
	checkOrigin func(*http.Request) bool

	// mu serializes event handling and reactor reads.
	mu      sync.Mutex
	mounted map[string]reactor.Handle

	hub        *hub
	router     chi.Router
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Default: the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTitle sets the page title. Default: "lance".
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithMetrics serves g at path.
func WithMetrics(g prometheus.Gatherer, path string) Option {
	return func(s *Server) {
		s.gatherer = g
		s.metricsPath = path
	}
}

// WithCheckOrigin overrides the WebSocket origin check. Default: same host.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.checkOrigin = fn
	}
}

// New creates a server over rt.
func New(rt *reactor.Runtime, opts ...Option) *Server {
	s := &Server{
		rt:      rt,
		logger:  rt.Logger(),
		title:   "lance",
		mounted: make(map[string]reactor.Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metricsPath == "" {
		s.metricsPath = "/metrics"
	}
	s.hub = newHub(s.checkOrigin)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Post("/events/{event}", s.handleEvent)
	r.Get("/reactors/{name}", s.handleReactor)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, s.metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Mount publishes r under name. Mounting a name again replaces it.
func (s *Server) Mount(name string, r *reactor.Reactor) {
	s.mu.Lock()
	s.mounted[name] = r.Handle()
	s.mu.Unlock()
}

// Unmount removes name. It reports whether name was mounted.
func (s *Server) Unmount(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.mounted[name]
	delete(s.mounted, name)
	return ok
}

// Names returns the mounted names, sorted.
func (s *Server) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names()
}

func (s *Server) names() []string {
	names := make([]string, 0, len(s.mounted))
	for name := range s.mounted {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup resolves name. Destroyed reactors are unmounted. Callers hold mu.
func (s *Server) lookup(name string) (*reactor.Reactor, bool) {
	h, ok := s.mounted[name]
	if !ok {
		return nil, false
	}
	r, ok := s.rt.Registry().Lookup(h.ID())
	if !ok {
		delete(s.mounted, name)
		return nil, false
	}
	return r, true
}

// Fire broadcasts event on the bus and pushes the resulting HTML of every
// mounted reactor to connected browsers. It returns those render messages.
//
// Handlers run while the server lock is held, so a handler that needs to
// fire a follow-up event must use the runtime's Fire, never Server.Fire.
// Follow-up renders are included in the same snapshot.
func (s *Server) Fire(ctx context.Context, event string, args ...any) ([]Message, error) {
	if event == "" {
		return nil, errors.New("L012")
	}

	s.mu.Lock()
	s.rt.FireContext(ctx, event, args...)
	msgs := s.snapshot()
	s.mu.Unlock()

	s.logger.Debug("event fired", "event", event, "args", len(args), "clients", s.hub.count())
	s.hub.broadcast(msgs)
	return msgs, nil
}

// snapshot renders every mounted reactor. Callers hold mu.
func (s *Server) snapshot() []Message {
	names := s.names()
	msgs := make([]Message, 0, len(names))
	for _, name := range names {
		r, ok := s.lookup(name)
		if !ok {
			continue
		}
		msgs = append(msgs, Message{Type: MessageRender, Name: name, HTML: r.HTML()})
	}
	return msgs
}

// ClientCount returns the number of connected browsers.
func (s *Server) ClientCount() int {
	return s.hub.count()
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	msgs := s.snapshot()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePage(w, s.title, msgs); err != nil {
		s.logger.Warn("page write failed", "error", err)
	}
}

func (s *Server) handleReactor(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	s.mu.Lock()
	r, ok := s.lookup(name)
	var body string
	if ok {
		body = r.HTML()
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleEvent(w http.ResponseWriter, req *http.Request) {
	event := chi.URLParam(req, "event")

	var args []any
	body, err := io.ReadAll(io.LimitReader(req.Body, maxEventBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Message{Type: MessageError, Error: err.Error()})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeJSON(w, http.StatusBadRequest, Message{Type: MessageError, Error: "arguments must be a JSON array"})
			return
		}
	}

	msgs, err := s.Fire(req.Context(), event, args...)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Message{Type: MessageError, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	c, err := s.hub.upgrade(w, req)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer s.hub.remove(c)
	s.logger.Debug("client connected", "remote", req.RemoteAddr)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg EventMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(c, Message{Type: MessageError, Error: "invalid event message"})
			continue
		}
		if _, err := s.Fire(context.Background(), msg.Event, msg.Args...); err != nil {
			s.reply(c, Message{Type: MessageError, Error: err.Error()})
		}
	}
	s.logger.Debug("client disconnected", "remote", req.RemoteAddr)
}

func (s *Server) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.send(data); err != nil {
		s.hub.remove(c)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop closes browser connections and shuts the HTTP server down.
func (s *Server) Stop() {
	s.hub.close()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}
}
