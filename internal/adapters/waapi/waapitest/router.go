// Package waapitest runs an in-process WAMP router that stands in for WAAPI.
package waapitest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/router"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/stretchr/testify/require"
)

const Realm = "realm1"

// Reply is what a registered procedure answers with. Hang holds the call
// until the caller cancels it or the router shuts down.
type Reply struct {
	Result   any
	ErrorURI string
	Message  string
	Hang     bool
}

type Call struct {
	Procedure string
	Kwargs    map[string]any
}

// Router is a nexus router served over websocket, with a local callee that
// registers the procedures under test.
type Router struct {
	t      *testing.T
	router router.Router
	server *httptest.Server
	callee *client.Client

	release      chan struct{}
	releaseOnce  sync.Once
	shutdownOnce sync.Once
	closeOnce    sync.Once

	mu     sync.Mutex
	calls  []Call
	leaves int
}

func NewRouter(t *testing.T) *Router {
	t.Helper()

	logger := slog.NewLogLogger(slog.DiscardHandler, slog.LevelDebug)
	nxr, err := router.NewRouter(&router.Config{
		RealmConfigs: []*router.RealmConfig{{
			URI:           wamp.URI(Realm),
			AnonymousAuth: true,
			AllowDisclose: true,
		}},
	}, logger)
	require.NoError(t, err)

	callee, err := client.ConnectLocal(nxr, client.Config{Realm: Realm, Logger: logger})
	require.NoError(t, err)

	r := &Router{
		t:       t,
		router:  nxr,
		callee:  callee,
		release: make(chan struct{}),
	}
	require.NoError(t, callee.Subscribe(string(wamp.MetaEventSessionOnLeave), r.onLeave, nil))

	r.server = httptest.NewServer(router.NewWebsocketServer(nxr))
	t.Cleanup(r.close)

	return r
}

func (r *Router) URL() string {
	return "ws" + strings.TrimPrefix(r.server.URL, "http")
}

func (r *Router) Handle(procedure string, fn func(kwargs map[string]any) Reply) {
	r.t.Helper()

	handler := func(ctx context.Context, inv *wamp.Invocation) client.InvokeResult {
		kwargs := r.plain(inv.ArgumentsKw)

		r.mu.Lock()
		r.calls = append(r.calls, Call{Procedure: procedure, Kwargs: kwargs})
		r.mu.Unlock()

		reply := fn(kwargs)
		switch {
		case reply.Hang:
			select {
			case <-ctx.Done():
			case <-r.release:
			}
			return client.InvokeResult{Err: wamp.ErrCanceled}
		case reply.ErrorURI != "":
			return client.InvokeResult{Err: wamp.URI(reply.ErrorURI), Kwargs: wamp.Dict{"message": reply.Message}}
		default:
			return client.InvokeResult{Kwargs: r.dict(reply.Result)}
		}
	}

	require.NoError(r.t, r.callee.Register(procedure, handler, nil))
}

func (r *Router) Calls(procedure string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Call
	for _, call := range r.calls {
		if call.Procedure == procedure {
			out = append(out, call)
		}
	}
	return out
}

func (r *Router) Publish(topic string, kwargs any) {
	r.t.Helper()
	require.NoError(r.t, r.callee.Publish(topic, nil, nil, r.dict(kwargs)))
}

// Drop shuts the router down, ending every session without a reply to its
// pending calls.
func (r *Router) Drop() {
	r.shutdown()
}

// Leaves counts sessions, other than the local callee, that have left the
// realm.
func (r *Router) Leaves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaves
}

func (r *Router) onLeave(*wamp.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves++
}

func (r *Router) unblock() {
	r.releaseOnce.Do(func() { close(r.release) })
}

func (r *Router) shutdown() {
	r.unblock()
	r.shutdownOnce.Do(r.router.Close)
}

func (r *Router) close() {
	r.closeOnce.Do(func() {
		r.server.Close()
		r.unblock()
		_ = r.callee.Close()
		r.shutdown()
	})
}

// plain converts decoded kwargs into the map and slice types encoding/json
// produces, so tests can compare them with literals.
func (r *Router) plain(kwargs wamp.Dict) map[string]any {
	out := map[string]any{}
	if len(kwargs) == 0 {
		return out
	}

	data, err := json.Marshal(kwargs)
	if err != nil {
		r.t.Errorf("encode kwargs: %v", err)
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		r.t.Errorf("decode kwargs: %v", err)
	}
	return out
}

func (r *Router) dict(v any) wamp.Dict {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		r.t.Errorf("encode reply: %v", err)
		return nil
	}
	var out wamp.Dict
	if err := json.Unmarshal(data, &out); err != nil {
		r.t.Errorf("decode reply: %v", err)
	}
	return out
}
