// Package editor hosts the plugin UI: one renderer driven through one bridge.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/justyntemme/sona/pkg/config"
	"github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/webui"
)

// Initial editor size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Bounds is the rectangle the web view occupies inside the editor.
type Bounds struct {
	X, Y, Width, Height int
}

// Editor owns a renderer and the bridge bound to it.
type Editor struct {
	mu       sync.Mutex
	bridge   *webui.Bridge
	renderer webui.Renderer
	width    int
	height   int
	view     Bounds
	closed   bool
	log      *debug.Logger
}

// New builds the renderer with factory, binds it to a fresh bridge and opens
// the start page from cfg.
func New(factory webui.RendererFactory, cfg *config.Config, opts ...webui.Option) (*Editor, error) {
	if factory == nil {
		return nil, errors.New("editor: nil renderer factory")
	}
	if cfg == nil {
		cfg = config.Load()
	}

	log := debug.Default().With("editor")
	opts = append([]webui.Option{webui.WithLogger(log.With("bridge"))}, opts...)
	bridge := webui.NewBridge(opts...)

	renderer, err := factory(bridge.RendererOptions(cfg.Origin, cfg.UserDataFolder))
	if err != nil {
		bridge.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	bridge.Attach(renderer)

	e := &Editor{
		bridge:   bridge,
		renderer: renderer,
		log:      log,
	}
	e.setSize(DefaultWidth, DefaultHeight)

	url := cfg.StartURL()
	if err := renderer.GoToURL(url); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}
	log.Info("editor opened at %s", url)
	return e, nil
}

func (e *Editor) setSize(width, height int) {
	e.width, e.height = width, height
	e.view = Bounds{Width: width, Height: height}
}

// Size returns the editor size.
func (e *Editor) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// Resized keeps the web view covering the whole editor.
func (e *Editor) Resized(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("editor: invalid size %dx%d", width, height)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setSize(width, height)
	return nil
}

// ViewBounds returns the rectangle assigned to the web view.
func (e *Editor) ViewBounds() Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Bridge returns the editor's bridge.
func (e *Editor) Bridge() *webui.Bridge {
	return e.bridge
}

// Close detaches the bridge and then releases the renderer.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.bridge.Close()
	if err := e.renderer.Close(); err != nil {
		return fmt.Errorf("closing renderer: %w", err)
	}
	e.log.Debug("editor closed")
	return nil
}
