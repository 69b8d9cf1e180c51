package editor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sona/pkg/config"
	"github.com/justyntemme/sona/pkg/webui"
)

type recordingRenderer struct {
	opts    webui.Options
	urls    []string
	scripts []string
	events  *[]string
	navErr  error
	onClose func()
}

func (r *recordingRenderer) GoToURL(url string) error {
	r.urls = append(r.urls, url)
	return r.navErr
}

func (r *recordingRenderer) EvaluateJavascript(script string) error {
	r.scripts = append(r.scripts, script)
	return nil
}

func (r *recordingRenderer) Close() error {
	if r.onClose != nil {
		r.onClose()
	}
	*r.events = append(*r.events, "renderer closed")
	return nil
}

func newFactory(r *recordingRenderer) webui.RendererFactory {
	return func(opts webui.Options) (webui.Renderer, error) {
		r.opts = opts
		return r, nil
	}
}

func TestEditorStartURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"production", config.Config{Origin: "http://sona.local"}, "http://sona.local/index.html"},
		{"dev mode", config.Config{DevMode: true, DevServerURL: "http://localhost:5173", Origin: "http://sona.local"}, "http://localhost:5173"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []string
			r := &recordingRenderer{events: &events}
			cfg := tt.cfg

			e, err := New(newFactory(r), &cfg)
			require.NoError(t, err)
			defer e.Close()

			assert.Equal(t, []string{tt.want}, r.urls)
			assert.Equal(t, "http://sona.local", r.opts.Origin)
			assert.Contains(t, r.opts.NativeFunctions, webui.NativeFunctionName)
		})
	}
}

func TestEditorSize(t *testing.T) {
	var events []string
	e, err := New(newFactory(&recordingRenderer{events: &events}), &config.Config{Origin: "http://sona.local"})
	require.NoError(t, err)
	defer e.Close()

	w, h := e.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, Bounds{Width: 800, Height: 600}, e.ViewBounds())

	require.NoError(t, e.Resized(1024, 700))
	assert.Equal(t, Bounds{Width: 1024, Height: 700}, e.ViewBounds())

	assert.Error(t, e.Resized(0, 100))
}

func TestEditorRoundTrip(t *testing.T) {
	var events []string
	r := &recordingRenderer{events: &events}
	e, err := New(newFactory(r), &config.Config{Origin: "http://sona.local"})
	require.NoError(t, err)
	defer e.Close()

	var done bool
	r.opts.NativeFunctions[webui.NativeFunctionName]([]byte(`["{\"type\":\"ui-ready\"}"]`), func(json.RawMessage) { done = true })

	assert.True(t, done)
	require.Len(t, r.scripts, 1)
	assert.Contains(t, r.scripts[0], `__onPluginMessage('{"type":"connected"}')`)
}

func TestEditorCloseOrder(t *testing.T) {
	var events []string
	r := &recordingRenderer{events: &events}
	e, err := New(newFactory(r), &config.Config{Origin: "http://sona.local"})
	require.NoError(t, err)

	bridgeClosedFirst := false
	r.onClose = func() { bridgeClosedFirst = e.Bridge().Closed() }

	require.NoError(t, e.Close())
	assert.True(t, bridgeClosedFirst, "bridge closed before renderer")
	assert.Equal(t, []string{"renderer closed"}, events)
	assert.ErrorIs(t, e.Bridge().SendToUI(`{}`), webui.ErrClosed)

	require.NoError(t, e.Close())
	assert.Len(t, events, 1, "second close is a no-op")
}

func TestEditorFactoryErrors(t *testing.T) {
	_, err := New(nil, &config.Config{})
	assert.Error(t, err)

	_, err = New(func(webui.Options) (webui.Renderer, error) {
		return nil, errors.New("no webview runtime")
	}, &config.Config{})
	assert.ErrorContains(t, err, "no webview runtime")

	var events []string
	r := &recordingRenderer{events: &events, navErr: errors.New("offline")}
	_, err = New(newFactory(r), &config.Config{Origin: "http://sona.local"})
	assert.ErrorContains(t, err, "offline")
	assert.Equal(t, []string{"renderer closed"}, events)
}
