package webui

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sona/pkg/framework/debug"
)

type fakeRenderer struct {
	mu      sync.Mutex
	scripts []string
	urls    []string
	err     error
	closed  bool
}

func (r *fakeRenderer) GoToURL(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

func (r *fakeRenderer) EvaluateJavascript(script string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.scripts = append(r.scripts, script)
	return nil
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeRenderer) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts...)
}

func newTestBridge(opts ...Option) (*Bridge, *fakeRenderer) {
	b := NewBridge(opts...)
	r := &fakeRenderer{}
	b.Attach(r)
	return b, r
}

// decodeLiteral undoes the escaping of a single-quoted JavaScript literal.
func decodeLiteral(t *testing.T, lit string) string {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' {
			sb.WriteByte(lit[i])
			continue
		}
		i++
		require.Less(t, i, len(lit), "dangling escape")
		switch lit[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'u':
			require.LessOrEqual(t, i+5, len(lit))
			switch lit[i+1 : i+5] {
			case "2028":
				sb.WriteRune('\u2028')
			case "2029":
				sb.WriteRune('\u2029')
			default:
				t.Fatalf("unexpected escape \\u%s", lit[i+1:i+5])
			}
			i += 4
		default:
			sb.WriteByte(lit[i])
		}
	}
	return sb.String()
}

func literalOf(t *testing.T, script string) string {
	t.Helper()
	prefix := "if(window.__onPluginMessage) window.__onPluginMessage('"
	require.True(t, strings.HasPrefix(script, prefix), script)
	require.True(t, strings.HasSuffix(script, "');"), script)
	lit := strings.TrimSuffix(strings.TrimPrefix(script, prefix), "');")

	// An unescaped quote would terminate the literal early.
	for i := 0; i < len(lit); i++ {
		if lit[i] == '\\' {
			i++
			continue
		}
		require.NotEqual(t, byte('\''), lit[i], "unescaped quote in %q", lit)
		require.NotEqual(t, byte('\n'), lit[i], "raw newline in %q", lit)
	}
	return lit
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ok      bool
		typ     string
		kind    Kind
		payload string
	}{
		{"ui-ready", `{"type":"ui-ready"}`, true, "ui-ready", KindUIReady, ""},
		{"generate with payload", `{"type":"generate","payload":{"prompt":"x"}}`, true, "generate", KindGenerate, `{"prompt":"x"}`},
		{"missing type", `{"payload":1}`, true, "", KindUnknown, "1"},
		{"null type", `{"type":null}`, true, "", KindUnknown, ""},
		{"numeric type", `{"type":42}`, true, "", KindUnknown, ""},
		{"unknown type", `{"type":"other"}`, true, "other", KindUnknown, ""},
		{"leading whitespace", "  \n{\"type\":\"ui-ready\"}", true, "ui-ready", KindUIReady, ""},
		{"array", `[{"type":"ui-ready"}]`, false, "", KindUnknown, ""},
		{"string", `"ui-ready"`, false, "", KindUnknown, ""},
		{"number", `1`, false, "", KindUnknown, ""},
		{"null", `null`, false, "", KindUnknown, ""},
		{"invalid", `{"type":`, false, "", KindUnknown, ""},
		{"empty", ``, false, "", KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok := ParseEnvelope(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.typ, env.Type)
			assert.Equal(t, tt.kind, env.Kind())
			assert.Equal(t, tt.payload, string(env.Payload))
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope("generation-progress", map[string]int{"progress": 50})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"generation-progress","payload":{"progress":50}}`, env.String())

	env, err = NewEnvelope(TypeConnected, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"connected"}`, env.String())

	_, err = NewEnvelope("bad", func() {})
	assert.Error(t, err)
}

func TestDeliveryScript(t *testing.T) {
	payloads := []string{
		`{"type":"connected"}`,
		`{"type":"note","payload":"it's"}`,
		`{"type":"path","payload":"C:\\Users\\sona"}`,
		`{"type":"quote","payload":"say \"hi\""}`,
		"{\"type\":\"lines\",\"payload\":\"a\nb\r\nc\"}",
		"{\"type\":\"sep\",\"payload\":\"x\u2028y\u2029z\"}",
		`{"type":"escaped","payload":"\\'"}`,
	}

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			lit := literalOf(t, DeliveryScript(p))
			assert.Equal(t, p, decodeLiteral(t, lit))
		})
	}
}

func TestBridgeUIReady(t *testing.T) {
	b, r := newTestBridge()

	b.ReceiveFromUI(`{"type":"ui-ready"}`)

	scripts := r.Scripts()
	require.Len(t, scripts, 1)
	assert.Equal(t, `{"type":"connected"}`, decodeLiteral(t, literalOf(t, scripts[0])))
}

func TestBridgeIgnoresUnmatched(t *testing.T) {
	inputs := []string{
		`{"payload":{"type":"ui-ready"}}`,
		`{"type":"other"}`,
		`{"type":null}`,
		`[{"type":"ui-ready"}]`,
		`"ui-ready"`,
		`null`,
		`not json`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			b, r := newTestBridge()
			b.ReceiveFromUI(in)
			assert.Empty(t, r.Scripts())
		})
	}
}

func TestBridgeGenerate(t *testing.T) {
	var got []json.RawMessage
	b, r := newTestBridge(WithGenerateHandler(func(payload json.RawMessage) {
		got = append(got, payload)
	}))

	b.ReceiveFromUI(`{"type":"generate","payload":{"prompt":"rain"}}`)
	b.ReceiveFromUI(`{"type":"generate"}`)

	require.Len(t, got, 2)
	assert.JSONEq(t, `{"prompt":"rain"}`, string(got[0]))
	assert.Nil(t, got[1])
	assert.Empty(t, r.Scripts(), "generate produces no reply")
}

func TestBridgeDefaultGenerateOnlyLogs(t *testing.T) {
	var logs bytes.Buffer
	b, r := newTestBridge(WithLogger(debug.New(&logs, "", debug.FlagLevel)))

	b.ReceiveFromUI(`{"type":"generate","payload":{"prompt":"rain","duration":5,"steps":50}}`)
	assert.Contains(t, logs.String(), "5 second medium render")

	b.ReceiveFromUI(`{"type":"generate","payload":{"prompt":"","duration":90}}`)
	assert.Contains(t, logs.String(), "generate request rejected")

	assert.Empty(t, r.Scripts(), "no result is sent to the page")
}

func TestParseGenerateRequest(t *testing.T) {
	long := strings.Repeat("a", MaxPromptLength+1)

	tests := []struct {
		name    string
		payload string
		want    GenerateRequest
		errs    []string
	}{
		{"defaults", `{"prompt":"  rain on tin  "}`,
			GenerateRequest{Prompt: "rain on tin", Duration: DefaultDuration, Quality: QualityMedium}, nil},
		{"all fields", `{"prompt":"drums","duration":60,"quality":"high","steps":50}`,
			GenerateRequest{Prompt: "drums", Duration: 60, Quality: QualityHigh, Steps: 50}, nil},
		{"shortest", `{"prompt":"x","duration":1,"quality":"low"}`,
			GenerateRequest{Prompt: "x", Duration: 1, Quality: QualityLow}, nil},
		{"missing prompt", `{"duration":10}`, GenerateRequest{}, []string{"prompt is required"}},
		{"blank prompt", `{"prompt":"   "}`, GenerateRequest{}, []string{"prompt is empty"}},
		{"long prompt", `{"prompt":"` + long + `"}`, GenerateRequest{}, []string{"longer than 500"}},
		{"duration range", `{"prompt":"x","duration":0.5}`, GenerateRequest{}, []string{"between 1 and 60"}},
		{"bad quality", `{"prompt":"x","quality":"ultra"}`, GenerateRequest{}, []string{`"ultra"`}},
		{"every problem", `{"duration":61,"quality":"max"}`, GenerateRequest{},
			[]string{"prompt is required", "between 1 and 60", `"max"`}},
		{"wrong types", `{"prompt":5}`, GenerateRequest{}, []string{"cannot unmarshal"}},
		{"no payload", ``, GenerateRequest{}, []string{"missing payload"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGenerateRequest(json.RawMessage(tt.payload))
			if len(tt.errs) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.ErrorIs(t, err, ErrInvalidGenerate)
			for _, e := range tt.errs {
				assert.ErrorContains(t, err, e)
			}
		})
	}
}

func TestBridgeNativeFunction(t *testing.T) {
	b, r := newTestBridge()
	fn := b.RendererOptions(DefaultOrigin, "").NativeFunctions[NativeFunctionName]
	require.NotNil(t, fn)

	tests := []struct {
		name  string
		args  string
		sends int
	}{
		{"string argument", `["{\"type\":\"ui-ready\"}"]`, 1},
		{"extra arguments", `["{\"type\":\"ui-ready\"}", 1, true]`, 1},
		{"object argument", `[{"type":"ui-ready"}]`, 0},
		{"no arguments", `[]`, 0},
		{"not an array", `{"type":"ui-ready"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(r.Scripts())
			var result json.RawMessage
			completed := 0
			fn(json.RawMessage(tt.args), func(res json.RawMessage) {
				completed++
				result = res
			})
			assert.Equal(t, 1, completed)
			assert.Equal(t, "null", string(result))
			assert.Len(t, r.Scripts(), before+tt.sends)
		})
	}
}

func TestBridgeSendErrors(t *testing.T) {
	b := NewBridge()
	assert.ErrorIs(t, b.SendToUI(`{}`), ErrNoRenderer)

	r := &fakeRenderer{err: errors.New("webview gone")}
	b.Attach(r)
	assert.ErrorContains(t, b.SendToUI(`{}`), "webview gone")

	b.Close()
	assert.True(t, b.Closed())
	assert.ErrorIs(t, b.SendToUI(`{}`), ErrClosed)
	b.Close()
}

func TestBridgeClosedDropsMessages(t *testing.T) {
	b, r := newTestBridge()
	b.Close()
	b.ReceiveFromUI(`{"type":"ui-ready"}`)
	assert.Empty(t, r.Scripts())
}

func TestBridgeSendEnvelope(t *testing.T) {
	b, r := newTestBridge()
	env, err := NewEnvelope(TypeGenerationComplete, map[string]any{"success": true})
	require.NoError(t, err)
	require.NoError(t, b.Send(env))

	scripts := r.Scripts()
	require.Len(t, scripts, 1)
	assert.JSONEq(t, `{"type":"generation-complete","payload":{"success":true}}`, decodeLiteral(t, literalOf(t, scripts[0])))
}

func TestResourceProviders(t *testing.T) {
	b := NewBridge()
	_, ok := b.ResolveResource(DefaultOrigin + "/index.html")
	assert.False(t, ok, "default provider declines")

	fsys := fstest.MapFS{
		"index.html":    {Data: []byte("<html></html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
		"blob":          {Data: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}},
	}
	b = NewBridge(WithResourceProvider(NewFSProvider(fsys)))

	res, ok := b.ResolveResource(DefaultOrigin + "/index.html")
	require.True(t, ok)
	assert.Equal(t, "<html></html>", string(res.Data))
	assert.True(t, strings.HasPrefix(res.MimeType, "text/html"))

	res, ok = b.ResolveResource("/")
	require.True(t, ok)
	assert.Equal(t, "<html></html>", string(res.Data))

	res, ok = b.ResolveResource(DefaultOrigin + "/assets/app.js")
	require.True(t, ok)
	assert.Contains(t, res.MimeType, "javascript")

	res, ok = b.ResolveResource("/blob")
	require.True(t, ok)
	assert.Equal(t, "image/png", res.MimeType)

	_, ok = b.ResolveResource(DefaultOrigin + "/missing.css")
	assert.False(t, ok)

	_, ok = b.ResolveResource("/../../etc/passwd")
	assert.False(t, ok)
}

func TestResourceHandler(t *testing.T) {
	h := ResourceHandler(NewFSProvider(fstest.MapFS{
		"index.html": {Data: []byte("<html></html>")},
		"app.js":     {Data: []byte("run()")},
	}), DefaultOrigin, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html></html>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	upper := ResourceHandler(NewFSProvider(fstest.MapFS{
		"app.js": {Data: []byte("run()")},
	}), DefaultOrigin, func(res Resource) Resource {
		res.Data = []byte(strings.ToUpper(string(res.Data)))
		return res
	})
	rec = httptest.NewRecorder()
	upper.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, "RUN()", rec.Body.String())
}
