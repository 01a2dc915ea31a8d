package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
)

type recorder struct {
	mu    sync.Mutex
	msgs  []*codec.Message
	texts []bool
}

func (r *recorder) Dispatch(msg *codec.Message, text bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	r.texts = append(r.texts, text)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Action)
	}
	return out
}

// staticSource delivers a fixed list of events and returns.
type staticSource []Inbound

func (s staticSource) Run(ctx context.Context, deliver func(Inbound)) error {
	for _, in := range s {
		deliver(in)
	}
	return nil
}

func TestAdapterOriginLock(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, AdapterConfig{})

	assert.Equal(t, "", a.Origin())

	a.Receive(Inbound{Origin: "https://host.example", Payload: map[string]any{"action": "one"}})
	a.Receive(Inbound{Origin: "https://evil.example", Payload: map[string]any{"action": "two"}})

	assert.Equal(t, "https://host.example", a.Origin())
	assert.Equal(t, []string{"one", "two"}, rec.actions())
}

func TestAdapterLocksEmptyOrigin(t *testing.T) {
	a := NewAdapter(&recorder{}, AdapterConfig{})

	a.Receive(Inbound{Origin: "", Payload: map[string]any{"action": "one"}})
	a.Receive(Inbound{Origin: "https://host.example", Payload: map[string]any{"action": "two"}})

	assert.Equal(t, "", a.Origin())
}

func TestAdapterTextMode(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, AdapterConfig{})

	a.Receive(Inbound{Origin: "o", Payload: `{"action":"text"}`, Text: true})
	assert.True(t, a.TextMode())

	a.Receive(Inbound{Origin: "o", Payload: map[string]any{"action": "structured"}})
	assert.False(t, a.TextMode())

	a.Receive(Inbound{Origin: "o", Payload: []byte(`{"action":"bytes"}`), Text: true})
	assert.True(t, a.TextMode())

	assert.Equal(t, []string{"text", "structured", "bytes"}, rec.actions())
	assert.Equal(t, []bool{true, false, true}, rec.texts)
}

func TestAdapterDropsMalformed(t *testing.T) {
	rec := &recorder{}
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	a := NewAdapter(rec, AdapterConfig{Metrics: metrics})

	a.Receive(Inbound{Origin: "o", Payload: `{not json`, Text: true})
	a.Receive(Inbound{Origin: "o", Payload: 42, Text: true})
	a.Receive(Inbound{Origin: "o", Payload: "a string"})
	a.Receive(Inbound{Origin: "o", Payload: `{"action":"ok"}`, Text: true})

	assert.Equal(t, []string{"ok"}, rec.actions())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DecodeErrors.WithLabelValues("text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecodeErrors.WithLabelValues("structured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesInbound.WithLabelValues("text", "ok")))
}

func TestAdapterRunMergesSources(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, AdapterConfig{Buffer: 1})

	structured := staticSource{
		{Origin: "o", Payload: map[string]any{"action": "s1"}},
		{Origin: "o", Payload: map[string]any{"action": "s2"}},
	}
	text := staticSource{
		{Origin: "o", Payload: `{"action":"t1"}`, Text: true},
	}

	require.NoError(t, a.Run(context.Background(), structured, text))

	actions := rec.actions()
	assert.ElementsMatch(t, []string{"s1", "s2", "t1"}, actions)
	// Per-source order is preserved
	assert.Less(t, indexOf(actions, "s1"), indexOf(actions, "s2"))
}

func TestAdapterRunStopsOnCancel(t *testing.T) {
	a := NewAdapter(&recorder{}, AdapterConfig{})
	port := NewPort("https://host.example", 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, port) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAdapterRunRequiresSource(t *testing.T) {
	a := NewAdapter(&recorder{}, AdapterConfig{})
	assert.Error(t, a.Run(context.Background()))
}

func TestOriginFromURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "ws://localhost:8000/component", want: "http://localhost:8000"},
		{raw: "wss://notes.example/component?x=1", want: "https://notes.example"},
		{raw: "https://notes.example/a/b", want: "https://notes.example"},
		{raw: "/relative", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := OriginFromURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
