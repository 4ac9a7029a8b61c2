package bus

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/lance/pkg/metrics"
)

// recorder is a Subscriber that logs deliveries into a shared trace.
type recorder struct {
	id      string
	trace   *[]string
	args    [][]any
	onCatch func(event string, args []any)
}

func (r *recorder) SubscriberID() string { return r.id }

func (r *recorder) Catch(event string, args []any) {
	if r.trace != nil {
		*r.trace = append(*r.trace, r.id+":"+event)
	}
	r.args = append(r.args, args)
	if r.onCatch != nil {
		r.onCatch(event, args)
	}
}

func TestBus_Register(t *testing.T) {
	b := New()
	b.Register("click")
	b.Register("click")

	if got := b.Events(); !reflect.DeepEqual(got, []string{"click"}) {
		t.Errorf("Events() = %v, want [click]", got)
	}
	if b.Count("click") != 0 {
		t.Errorf("Count() = %d, want 0", b.Count("click"))
	}
}

func TestBus_BroadcastOrder(t *testing.T) {
	b := New()
	var trace []string
	a := &recorder{id: "a", trace: &trace}
	c := &recorder{id: "c", trace: &trace}

	b.Subscribe("save", a)
	b.Subscribe("save", c)
	b.Broadcast("save", 1, "x")

	if !reflect.DeepEqual(trace, []string{"a:save", "c:save"}) {
		t.Errorf("trace = %v", trace)
	}
	if !reflect.DeepEqual(a.args[0], []any{1, "x"}) {
		t.Errorf("args = %v", a.args[0])
	}
}

func TestBus_BroadcastUnknownEvent(t *testing.T) {
	b := New()
	b.Broadcast("nobody")

	if got := b.Events(); !reflect.DeepEqual(got, []string{"nobody"}) {
		t.Errorf("Events() = %v; broadcasting should register the event", got)
	}
}

func TestBus_DuplicateSubscribe(t *testing.T) {
	b := New()
	r := &recorder{id: "r"}
	b.Subscribe("tick", r)
	b.Subscribe("tick", r)

	b.Broadcast("tick")
	if len(r.args) != 2 {
		t.Errorf("deliveries = %d, want 2", len(r.args))
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New()
	r := &recorder{id: "r"}

	if b.Unsubscribe("missing", r) {
		t.Error("Unsubscribe on unknown event should report false")
	}

	b.Subscribe("tick", r)
	b.Subscribe("tick", r)
	if !b.Unsubscribe("tick", r) {
		t.Fatal("Unsubscribe should report true")
	}
	if b.Count("tick") != 1 {
		t.Errorf("Count() = %d, want 1 (first occurrence only)", b.Count("tick"))
	}
	if !b.Subscribed("tick", r) {
		t.Error("one subscription should remain")
	}

	other := &recorder{id: "other"}
	if b.Unsubscribe("tick", other) {
		t.Error("Unsubscribe of absent subscriber should report false")
	}
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	b := New()
	var trace []string
	second := &recorder{id: "second", trace: &trace}
	first := &recorder{id: "first", trace: &trace, onCatch: func(string, []any) {
		b.Unsubscribe("evt", second)
	}}
	third := &recorder{id: "third", trace: &trace}

	b.Subscribe("evt", first)
	b.Subscribe("evt", second)
	b.Subscribe("evt", third)
	b.Broadcast("evt")

	if !reflect.DeepEqual(trace, []string{"first:evt", "third:evt"}) {
		t.Errorf("trace = %v; removed entry must be skipped, later entries must still run", trace)
	}
}

func TestBus_SelfUnsubscribeDuringDispatch(t *testing.T) {
	b := New()
	var trace []string
	var self *recorder
	self = &recorder{id: "self", trace: &trace, onCatch: func(string, []any) {
		b.Unsubscribe("evt", self)
	}}
	after := &recorder{id: "after", trace: &trace}

	b.Subscribe("evt", self)
	b.Subscribe("evt", after)
	b.Broadcast("evt")
	b.Broadcast("evt")

	want := []string{"self:evt", "after:evt", "after:evt"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestBus_SubscribeDuringDispatch(t *testing.T) {
	b := New()
	var trace []string
	late := &recorder{id: "late", trace: &trace}
	early := &recorder{id: "early", trace: &trace, onCatch: func(string, []any) {
		if b.Count("evt") == 1 {
			b.Subscribe("evt", late)
		}
	}}

	b.Subscribe("evt", early)
	b.Broadcast("evt")
	if !reflect.DeepEqual(trace, []string{"early:evt"}) {
		t.Errorf("first broadcast trace = %v", trace)
	}

	b.Broadcast("evt")
	if !reflect.DeepEqual(trace, []string{"early:evt", "early:evt", "late:evt"}) {
		t.Errorf("second broadcast trace = %v", trace)
	}
}

func TestBus_ReentrantBroadcast(t *testing.T) {
	b := New()
	var trace []string
	echo := &recorder{id: "echo", trace: &trace, onCatch: func(event string, _ []any) {
		if event == "ping" {
			b.Broadcast("pong")
		}
	}}

	b.Subscribe("ping", echo)
	b.Subscribe("pong", echo)
	b.Broadcast("ping")

	if !reflect.DeepEqual(trace, []string{"echo:ping", "echo:pong"}) {
		t.Errorf("trace = %v", trace)
	}
}

func TestBus_PanicRecovery(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	b := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))), WithMetrics(m))

	bad := &recorder{id: "bad", onCatch: func(string, []any) { panic("boom") }}
	good := &recorder{id: "good"}
	b.Subscribe("evt", bad)
	b.Subscribe("evt", good)

	b.Broadcast("evt")

	if len(good.args) != 1 {
		t.Error("subscriber after a panicking one should still be called")
	}
	if !strings.Contains(logs.String(), "subscriber panicked") {
		t.Errorf("expected panic to be logged, got %q", logs.String())
	}
	if n, err := testutil.GatherAndCount(reg, "lance_handler_panics_total"); err != nil || n != 1 {
		t.Errorf("handler_panics series = %d, %v", n, err)
	}
}

func TestBus_Clear(t *testing.T) {
	b := New()
	r := &recorder{id: "r"}
	b.Subscribe("a", r)
	b.Subscribe("b", r)

	b.Clear()
	b.Broadcast("a")

	if len(r.args) != 0 {
		t.Error("Clear should drop all subscriptions")
	}
}
