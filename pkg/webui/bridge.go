package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/sona/pkg/framework/debug"
)

// ErrClosed is returned by sends on a closed bridge.
var ErrClosed = errors.New("webui: bridge closed")

// ErrNoRenderer is returned by sends before a renderer is attached.
var ErrNoRenderer = errors.New("webui: no renderer attached")

// GenerateHandler receives the payload of a generate request.
type GenerateHandler func(payload json.RawMessage)

// Bridge relays envelopes between the page and native code.
type Bridge struct {
	mu       sync.RWMutex
	renderer Renderer

	provider ResourceProvider
	generate GenerateHandler
	log      *debug.Logger
	closed   atomic.Bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithGenerateHandler replaces the default generate handler, which only logs.
func WithGenerateHandler(fn GenerateHandler) Option {
	return func(b *Bridge) {
		if fn != nil {
			b.generate = fn
		}
	}
}

// WithResourceProvider sets the provider used by ResolveResource.
func WithResourceProvider(p ResourceProvider) Option {
	return func(b *Bridge) {
		if p != nil {
			b.provider = p
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(l *debug.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBridge creates a bridge with no renderer attached.
func NewBridge(opts ...Option) *Bridge {
	b := &Bridge{
		provider: DeclineProvider{},
		log:      debug.Default().With("webui"),
	}
	b.generate = b.logGenerate
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// logGenerate is the default generate handler. It validates the request for
// the log and produces no result.
func (b *Bridge) logGenerate(payload json.RawMessage) {
	req, err := ParseGenerateRequest(payload)
	if err != nil {
		b.log.Warn("generate request rejected: %v", err)
		return
	}
	b.log.Info("generate request received: %d second %s render, prompt of %d characters",
		int(req.Duration), req.Quality, len([]rune(req.Prompt)))
}

// Attach sets the renderer that SendToUI evaluates scripts in.
func (b *Bridge) Attach(r Renderer) {
	b.mu.Lock()
	b.renderer = r
	b.mu.Unlock()
}

// RendererOptions returns the options a renderer needs to reach this bridge.
func (b *Bridge) RendererOptions(origin, userDataFolder string) Options {
	return Options{
		NativeFunctions: map[string]NativeFunction{
			NativeFunctionName: b.handleNativeCall,
		},
		ResourceProvider: ResourceProviderFunc(b.ResolveResource),
		Origin:           origin,
		UserDataFolder:   userDataFolder,
	}
}

// handleNativeCall is the sendToPlugin binding. Only a string first argument
// is forwarded. The call always completes with null.
func (b *Bridge) handleNativeCall(args json.RawMessage, complete Completion) {
	if complete != nil {
		defer complete(json.RawMessage("null"))
	}

	var list []json.RawMessage
	if err := json.Unmarshal(args, &list); err != nil || len(list) == 0 {
		b.log.Debug("native call ignored: arguments are not a non-empty array")
		return
	}

	var raw string
	if err := json.Unmarshal(list[0], &raw); err != nil {
		b.log.Debug("native call ignored: first argument is not a string")
		return
	}
	b.ReceiveFromUI(raw)
}

// ReceiveFromUI dispatches one message from the page. Non-object input is
// dropped.
func (b *Bridge) ReceiveFromUI(raw string) {
	if b.closed.Load() {
		return
	}

	env, ok := ParseEnvelope(raw)
	if !ok {
		b.log.Debug("dropping non-object message")
		return
	}

	b.log.Debug("message from UI, type %q", env.Type)

	switch env.Kind() {
	case KindUIReady:
		if err := b.Send(Envelope{Type: TypeConnected}); err != nil {
			b.log.Warn("acknowledging ui-ready: %v", err)
		}
	case KindGenerate:
		b.generate(env.Payload)
	}
}

// SendToUI schedules message for delivery to the page callback. There is no
// delivery acknowledgment.
func (b *Bridge) SendToUI(message string) error {
	if b.closed.Load() {
		return ErrClosed
	}

	b.mu.RLock()
	r := b.renderer
	b.mu.RUnlock()
	if r == nil {
		return ErrNoRenderer
	}

	if err := r.EvaluateJavascript(DeliveryScript(message)); err != nil {
		return fmt.Errorf("evaluating delivery script: %w", err)
	}
	return nil
}

// Send encodes env and delivers it to the page.
func (b *Bridge) Send(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", env.Type, err)
	}
	return b.SendToUI(string(data))
}

// ResolveResource asks the resource provider for static content.
func (b *Bridge) ResolveResource(url string) (Resource, bool) {
	return b.provider.Resolve(url)
}

// Close detaches the bridge. Later messages in either direction are dropped.
func (b *Bridge) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.mu.Lock()
	b.renderer = nil
	b.mu.Unlock()
}

// Closed reports whether Close has been called.
func (b *Bridge) Closed() bool {
	return b.closed.Load()
}
