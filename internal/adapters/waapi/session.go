package waapi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/go-viper/mapstructure/v2"
)

const (
	ProcGetInfo            = "ak.wwise.core.getInfo"
	ProcGetSelectedObjects = "ak.wwise.ui.getSelectedObjects"
	ProcCreateObject       = "ak.wwise.core.object.create"
	TopicSelectionChanged  = "ak.wwise.ui.selectionChanged"

	DefaultRealm = "realm1"
)

var objectFields = []string{"id", "name", "type"}

type objectsPayload struct {
	Objects []domain.Object `json:"objects"`
}

type infoPayload struct {
	DisplayName string `json:"displayName"`
	Platform    string `json:"platform"`
	Version     struct {
		DisplayName string `json:"displayName"`
	} `json:"version"`
}

// Connector dials WAAPI sessions for the application layer.
type Connector struct {
	URL     string
	Realm   string
	Timeout time.Duration
	Logger  *slog.Logger
}

var _ ports.Connector = (*Connector)(nil)

type dialResult struct {
	peer *client.Client
	err  error
}

// Connect joins the realm at URL. Cancelling ctx abandons a handshake the
// router never answers; the late peer, if any, is closed in the background.
func (c *Connector) Connect(ctx context.Context) (ports.Session, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("connect: waapi url is required")
	}
	realm := c.Realm
	if realm == "" {
		realm = DefaultRealm
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := client.Config{
		Realm:           realm,
		Serialization:   client.JSON,
		ResponseTimeout: c.Timeout,
		Logger:          slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
	}

	dialCtx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	results := make(chan dialResult, 1)
	go func() {
		peer, err := client.ConnectNet(dialCtx, c.URL, cfg)
		results <- dialResult{peer: peer, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			if ctxErr := dialCtx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("join %s at %s: %w", realm, c.URL, ctxErr)
			}
			return nil, fmt.Errorf("join %s at %s: %w", realm, c.URL, res.err)
		}
		return NewSession(res.peer, c.Timeout, logger), nil
	case <-dialCtx.Done():
		go func() {
			if res := <-results; res.err == nil {
				_ = res.peer.Close()
			}
		}()
		return nil, fmt.Errorf("join %s at %s: %w", realm, c.URL, dialCtx.Err())
	}
}

// Session maps the WAAPI procedures this tool needs onto a WAMP peer.
type Session struct {
	peer    *client.Client
	timeout time.Duration
	logger  *slog.Logger

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Session = (*Session)(nil)

func NewSession(peer *client.Client, timeout time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Session{peer: peer, timeout: timeout, logger: logger}
}

func (s *Session) Info(ctx context.Context) (domain.ToolInfo, error) {
	var payload infoPayload
	if err := s.call(ctx, ProcGetInfo, nil, &payload); err != nil {
		return domain.ToolInfo{}, err
	}

	return domain.ToolInfo{
		DisplayName: payload.DisplayName,
		Version:     payload.Version.DisplayName,
		Platform:    payload.Platform,
	}, nil
}

func (s *Session) SelectedObjects(ctx context.Context) ([]domain.Object, error) {
	var payload objectsPayload
	args := wamp.Dict{"options": wamp.Dict{"return": objectFields}}
	if err := s.call(ctx, ProcGetSelectedObjects, args, &payload); err != nil {
		return nil, err
	}

	return payload.Objects, nil
}

// WatchSelection subscribes to selection changes. The returned channel holds
// at most one pending update; a newer update replaces an unread one. It is
// closed when the session ends.
func (s *Session) WatchSelection(context.Context) (<-chan []domain.Object, error) {
	if s.closed() {
		return nil, ErrClosed
	}

	feed := &selectionFeed{updates: make(chan []domain.Object, 1)}
	onEvent := func(event *wamp.Event) {
		var payload objectsPayload
		if err := decodeKwargs(event.ArgumentsKw, &payload); err != nil {
			s.logger.Warn("dropping malformed selection event", "error", err)
			return
		}
		feed.publish(payload.Objects)
	}

	if err := s.peer.Subscribe(TopicSelectionChanged, onEvent, wamp.Dict{"return": objectFields}); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicSelectionChanged, err)
	}

	go func() {
		<-s.peer.Done()
		feed.close()
	}()

	return feed.updates, nil
}

func (s *Session) CreateObject(ctx context.Context, req domain.CreationRequest) (domain.Object, error) {
	args := wamp.Dict{
		"parent": string(req.Parent),
		"type":   req.Type,
		"name":   req.Name,
	}
	if req.OnNameConflict != domain.NameConflictDefault {
		args["onNameConflict"] = string(req.OnNameConflict)
	}
	for property, value := range req.Properties {
		args[property] = value
	}

	var created domain.Object
	if err := s.call(ctx, ProcCreateObject, args, &created); err != nil {
		return domain.Object{}, err
	}
	if created.Type == "" {
		created.Type = req.Type
	}

	return created, nil
}

// Close says goodbye to the router. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		if s.peerDone() {
			return
		}
		s.closeErr = s.peer.Close()
	})
	return s.closeErr
}

func (s *Session) call(ctx context.Context, procedure string, kwargs wamp.Dict, out any) error {
	if s.closed() {
		return ErrClosed
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.peer.Call(callCtx, procedure, nil, nil, kwargs, nil)
	if err != nil {
		return s.callError(callCtx, procedure, err)
	}
	if out == nil || len(result.ArgumentsKw) == 0 {
		return nil
	}

	if err := decodeKwargs(result.ArgumentsKw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", procedure, err)
	}
	return nil
}

func (s *Session) callError(ctx context.Context, procedure string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("call %s: %w", procedure, ctxErr)
	}
	if remote := remoteErrorFrom(err); remote != nil {
		return remote
	}
	if s.closed() {
		return ErrClosed
	}
	return fmt.Errorf("call %s: %w", procedure, err)
}

func (s *Session) closed() bool {
	return s.closing.Load() || s.peerDone()
}

func (s *Session) peerDone() bool {
	select {
	case <-s.peer.Done():
		return true
	default:
		return false
	}
}

type selectionFeed struct {
	mu      sync.Mutex
	updates chan []domain.Object
	done    bool
}

func (f *selectionFeed) publish(objects []domain.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}

	for {
		select {
		case f.updates <- objects:
			return
		default:
		}

		select {
		case <-f.updates:
		default:
		}
	}
}

func (f *selectionFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		f.done = true
		close(f.updates)
	}
}

// decodeKwargs maps a WAMP keyword-argument dict onto a tagged struct.
func decodeKwargs(kwargs wamp.Dict, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(kwargs))
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
