package bridge

import (
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/shared/clock"
	"github.com/GriffinCanCode/componentbridge/internal/shared/id"
	"github.com/GriffinCanCode/componentbridge/internal/transport"
)

const hostOrigin = "https://host.example"

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type post struct {
	message any
	origin  string
}

// recordingParent captures every outbound post.
type recordingParent struct {
	mu    sync.Mutex
	posts []post
	err   error
}

func (p *recordingParent) PostMessage(message any, targetOrigin string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, post{message: message, origin: targetOrigin})
	return nil
}

func (p *recordingParent) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posts)
}

// envelopes decodes every post into an Envelope, parsing text posts.
func (p *recordingParent) envelopes(t *testing.T) []*codec.Envelope {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*codec.Envelope, 0, len(p.posts))
	for _, ps := range p.posts {
		switch m := ps.message.(type) {
		case *codec.Envelope:
			out = append(out, m)
		case string:
			var env codec.Envelope
			require.NoError(t, sonic.UnmarshalString(m, &env))
			out = append(out, &env)
		default:
			t.Fatalf("unexpected post type %T", ps.message)
		}
	}
	return out
}

func (p *recordingParent) actions(t *testing.T) []string {
	t.Helper()
	var actions []string
	for _, env := range p.envelopes(t) {
		actions = append(actions, env.Action)
	}
	return actions
}

func (p *recordingParent) last(t *testing.T) *codec.Envelope {
	t.Helper()
	envs := p.envelopes(t)
	require.NotEmpty(t, envs)
	return envs[len(envs)-1]
}

type harness struct {
	bridge *Bridge
	parent *recordingParent
	clock  *clock.FakeClock
	alerts []error
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{
		parent: &recordingParent{},
		clock:  clock.Fake(epoch),
	}

	cfg := DefaultConfig()
	cfg.Clock = h.clock
	cfg.IDs = id.NewSequence("msg")
	cfg.Logger = zaptest.NewLogger(t)
	cfg.Alerter = AlertFunc(func(err error) { h.alerts = append(h.alerts, err) })
	if mutate != nil {
		mutate(&cfg)
	}

	h.bridge = New(h.parent, cfg)
	t.Cleanup(func() { h.bridge.Close() })
	return h
}

func registration(sessionKey string) map[string]any {
	return map[string]any{
		"action":        codec.ActionComponentRegistered,
		"sessionKey":    sessionKey,
		"componentData": map[string]any{"theme": "dark"},
		"data": map[string]any{
			"environment": "desktop",
			"uuid":        "self-uuid",
		},
	}
}

func (h *harness) register() {
	h.bridge.Receive(transport.Inbound{Origin: hostOrigin, Payload: registration("sess-1")})
}

func (h *harness) reply(messageID string, data any) {
	h.bridge.Receive(transport.Inbound{
		Origin: hostOrigin,
		Payload: map[string]any{
			"original": map[string]any{"messageId": messageID},
			"data":     data,
		},
	})
}

func (h *harness) themes(urls ...string) {
	list := make([]any, 0, len(urls))
	for _, u := range urls {
		list = append(list, u)
	}
	h.bridge.Receive(transport.Inbound{
		Origin: hostOrigin,
		Payload: map[string]any{
			"action": codec.ActionThemes,
			"data":   map[string]any{"themes": list},
		},
	})
}

func dataMap(t *testing.T, env *codec.Envelope) map[string]any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "data is %T", env.Data)
	return data
}

func textRegistration() transport.Inbound {
	return transport.Inbound{
		Origin:  hostOrigin,
		Payload: `{"action":"component-registered","sessionKey":"sess-1","componentData":{},"data":{"environment":"web","uuid":"self-uuid"}}`,
		Text:    true,
	}
}
