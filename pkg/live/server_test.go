package live

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"github.com/vango-dev/lance/pkg/metrics"
	"github.com/vango-dev/lance/pkg/props"
	"github.com/vango-dev/lance/pkg/reactor"
)

func wsURL(t *testing.T, baseURL, path string) string {
	t.Helper()
	if !strings.HasPrefix(baseURL, "http") {
		t.Fatalf("unexpected base URL: %q", baseURL)
	}
	return "ws" + strings.TrimPrefix(baseURL, "http") + path
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%q) failed: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// newCounterServer mounts a counter that adds its first argument on "inc".
func newCounterServer(t *testing.T, opts ...Option) (*Server, *reactor.Reactor) {
	t.Helper()
	rt := reactor.NewRuntime()

	var counter *reactor.Reactor
	counter, err := reactor.New(rt, reactor.Options{
		Template: `<p class="count">{n}</p>`,
		Props:    props.Props{"n": 0},
		Handlers: reactor.Handlers{
			"inc": {func(args ...any) {
				n := cast.ToInt(counter.Props()["n"])
				if len(args) > 0 {
					n += cast.ToInt(args[0])
				}
				counter.Set(props.Props{"n": n})
			}},
		},
	})
	if err != nil {
		t.Fatalf("reactor.New() error = %v", err)
	}

	s := New(rt, opts...)
	s.Mount("counter", counter)
	return s, counter
}

func TestServer_Routes(t *testing.T) {
	s, _ := newCounterServer(t, WithTitle("Demo"))

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK, "ok"},
		{"page", http.MethodGet, "/", "", http.StatusOK, `<div data-lance="counter"><p class="count">0</p></div>`},
		{"page title", http.MethodGet, "/", "", http.StatusOK, "<title>Demo</title>"},
		{"reactor", http.MethodGet, "/reactors/counter", "", http.StatusOK, `<p class="count">0</p>`},
		{"unknown reactor", http.MethodGet, "/reactors/nope", "", http.StatusNotFound, ""},
		{"bad args", http.MethodPost, "/events/inc", `{"a":1}`, http.StatusBadRequest, "JSON array"},
		{"metrics disabled", http.MethodGet, "/metrics", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServer_PostEvent(t *testing.T) {
	s, counter := newCounterServer(t)

	req := httptest.NewRequest(http.MethodPost, "/events/inc", strings.NewReader("[5]"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var msgs []Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatal(err)
	}
	want := Message{Type: MessageRender, Name: "counter", HTML: `<p class="count">5</p>`}
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages = %+v, want [%+v]", msgs, want)
	}
	if got := counter.HTML(); got != `<p class="count">5</p>` {
		t.Errorf("counter.HTML() = %q", got)
	}

	// No body fires without arguments.
	req = httptest.NewRequest(http.MethodPost, "/events/inc", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d without body", rec.Code)
	}
}

func TestServer_FireEmptyEvent(t *testing.T) {
	s, _ := newCounterServer(t)
	if _, err := s.Fire(testContext(t), ""); err == nil {
		t.Error("Fire(\"\") should fail")
	}
}

func TestServer_FireChainedThroughRuntime(t *testing.T) {
	s, counter := newCounterServer(t)

	reactor.NewParticipant(s.rt, reactor.Handlers{
		"double": {func(args ...any) {
			s.rt.Fire("inc", cast.ToInt(args[0])*2)
		}},
	})

	done := make(chan []Message, 1)
	go func() {
		msgs, err := s.Fire(testContext(t), "double", 3)
		if err != nil {
			t.Errorf("Fire() error = %v", err)
		}
		done <- msgs
	}()

	select {
	case msgs := <-done:
		want := `<p class="count">6</p>`
		if len(msgs) != 1 || msgs[0].HTML != want {
			t.Errorf("messages = %+v, want HTML %q", msgs, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fire() did not return")
	}
	if got := counter.HTML(); got != `<p class="count">6</p>` {
		t.Errorf("counter.HTML() = %q", got)
	}
}

func TestServer_DestroyedReactorUnmounted(t *testing.T) {
	s, counter := newCounterServer(t)
	counter.Destroy()

	msgs, err := s.Fire(testContext(t), "inc", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages = %+v, want none", msgs)
	}
	if names := s.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want empty", names)
	}
}

func TestServer_MountUnmount(t *testing.T) {
	s, counter := newCounterServer(t)
	s.Mount("again", counter)

	if got := s.Names(); len(got) != 2 || got[0] != "again" || got[1] != "counter" {
		t.Errorf("Names() = %v", got)
	}
	if !s.Unmount("again") {
		t.Error("Unmount(again) = false")
	}
	if s.Unmount("again") {
		t.Error("second Unmount(again) = true")
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	rt := reactor.NewRuntime(reactor.WithMetrics(m))
	reactor.NewParticipant(rt, reactor.Handlers{"ping": {func(...any) {}}})
	s := New(rt, WithMetrics(reg, "/metrics"))

	if _, err := s.Fire(testContext(t), "ping"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `lance_broadcasts_total{event="ping"} 1`) {
		t.Errorf("metrics output missing broadcast counter:\n%s", rec.Body.String())
	}
}

func TestServer_WebSocket(t *testing.T) {
	s, _ := newCounterServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(EventMessage{Event: "inc", Args: []any{2}}); err != nil {
		t.Fatal(err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != MessageRender || msg.Name != "counter" || msg.HTML != `<p class="count">2</p>` {
		t.Errorf("render message = %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != MessageError {
		t.Errorf("message = %+v, want error", msg)
	}

	// POST events reach WebSocket clients too.
	resp, err := http.Post(ts.URL+"/events/inc", "application/json", strings.NewReader("[1]"))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.HTML != `<p class="count">3</p>` {
		t.Errorf("pushed HTML = %q", msg.HTML)
	}
	if s.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", s.ClientCount())
	}
}
