// Package devhost is a renderer for UI development. It serves the page to an
// ordinary browser and carries the bridge traffic over a websocket.
package devhost

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/webui"
)

const (
	wsPath             = "/__sona/ws"
	shimPath           = "/__sona/bridge.js"
	nativeFunctionName = webui.NativeFunctionName

	writeTimeout = 5 * time.Second
)

// ErrRendererClosed is returned by a renderer after Close.
var ErrRendererClosed = errors.New("devhost: renderer closed")

// Frames sent to the page. Exactly one field is set.
type outbound struct {
	Eval       *string     `json:"eval,omitempty"`
	Navigate   *string     `json:"navigate,omitempty"`
	Completion *completion `json:"completion,omitempty"`
}

type completion struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
}

// inbound is a native function call from the page.
type inbound struct {
	ID       int64           `json:"id"`
	Function string          `json:"function"`
	Args     json.RawMessage `json:"args"`
}

// client is one connected page. Writes are serialized by mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(frame outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(frame)
}

// Server hosts the page and the websocket endpoint.
type Server struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	renderer *renderer

	upgrader websocket.Upgrader
	allowed  map[string]struct{}
	log      *debug.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins lets pages served from other origins, such as a dev
// server, open the websocket. Entries may be full URLs.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, o := range origins {
			if key, ok := originKey(o); ok {
				s.allowed[key] = struct{}{}
			}
		}
	}
}

// New creates a dev host server. Only pages from the dev host itself and
// from allowed origins may connect.
func New(opts ...Option) *Server {
	s := &Server{
		clients: make(map[*client]struct{}),
		allowed: make(map[string]struct{}),
		log:     debug.Default().With("devhost"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkOrigin accepts clients that send no Origin (not a browser), pages
// served by this host and allowed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	key, _ := originKey(origin)
	_, ok := s.allowed[key]
	if !ok {
		s.log.Warn("refusing websocket from origin %s", origin)
	}
	return ok
}

// originKey reduces a URL to its lower-case scheme://host form.
func originKey(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// RendererFactory returns a factory whose renderers drive pages connected to s.
// Creating a renderer replaces the previous one.
func (s *Server) RendererFactory() webui.RendererFactory {
	return func(opts webui.Options) (webui.Renderer, error) {
		r := &renderer{server: s, opts: opts}
		s.mu.Lock()
		s.renderer = r
		s.mu.Unlock()
		return r, nil
	}
}

// Handler returns the HTTP handler serving the shim, the websocket and the page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(shimPath, s.serveShim)
	mux.HandleFunc(wsPath, s.serveWS)
	mux.HandleFunc("/", s.servePage)
	return mux
}

// ClientCount returns the number of connected pages.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Reload asks every connected page to reload itself.
func (s *Server) Reload() {
	s.broadcast(evalFrame("location.reload()"))
}

func evalFrame(script string) outbound {
	return outbound{Eval: &script}
}

func (s *Server) current() *renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderer
}

func (s *Server) broadcast(frame outbound) {
	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(frame); err != nil {
			s.log.Debug("dropping client: %v", err)
			s.removeClient(c)
		}
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

func (s *Server) serveShim(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(shimJS))
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn}
	s.addClient(c)
	s.log.Info("page connected from %s", r.RemoteAddr)
	defer func() {
		s.removeClient(c)
		s.log.Info("page disconnected from %s", r.RemoteAddr)
	}()

	for {
		var call inbound
		if err := conn.ReadJSON(&call); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read: %v", err)
			}
			return
		}
		s.dispatch(c, call)
	}
}

// dispatch runs one native call. Every call is completed, with null when no
// function of that name is bound.
func (s *Server) dispatch(c *client, call inbound) {
	complete := func(result json.RawMessage) {
		if result == nil {
			result = json.RawMessage("null")
		}
		if err := c.send(outbound{Completion: &completion{ID: call.ID, Result: result}}); err != nil {
			s.log.Debug("completing call %d: %v", call.ID, err)
		}
	}

	r := s.current()
	if r == nil {
		complete(nil)
		return
	}
	fn := r.nativeFunction(call.Function)
	if fn == nil {
		s.log.Debug("unknown native function %q", call.Function)
		complete(nil)
		return
	}
	fn(call.Args, complete)
}

// servePage serves the page the renderer navigated to. Pages under the
// renderer origin come from its resource provider, with the shim injected
// into HTML. Any other start URL is a redirect.
func (s *Server) servePage(w http.ResponseWriter, req *http.Request) {
	r := s.current()
	if r == nil {
		http.Error(w, "no editor is open", http.StatusServiceUnavailable)
		return
	}

	target := r.location()
	local, isLocal := r.localPath(target)
	if req.URL.Path == "/" && !isLocal && target != "" {
		http.Redirect(w, req, target, http.StatusFound)
		return
	}

	provider := r.opts.ResourceProvider
	if provider == nil {
		http.NotFound(w, req)
		return
	}

	if req.URL.Path == "/" && isLocal {
		req = req.Clone(req.Context())
		req.URL.Path = local
	}
	w.Header().Set("Cache-Control", "no-store")
	webui.ResourceHandler(provider, r.opts.Origin, injectShimResource).ServeHTTP(w, req)
}

// injectShimResource adds the bridge shim to HTML pages.
func injectShimResource(res webui.Resource) webui.Resource {
	if strings.HasPrefix(res.MimeType, "text/html") {
		res.Data = injectShim(res.Data)
	}
	return res
}

var shimTag = []byte(`<script src="` + shimPath + `"></script>`)

func injectShim(page []byte) []byte {
	i := bytes.Index(page, []byte("</head>"))
	if i < 0 {
		i = bytes.Index(page, []byte("</HEAD>"))
	}
	if i >= 0 {
		out := make([]byte, 0, len(page)+len(shimTag))
		out = append(out, page[:i]...)
		out = append(out, shimTag...)
		return append(out, page[i:]...)
	}
	return append(append([]byte{}, shimTag...), page...)
}

// renderer implements webui.Renderer over the server's connected pages.
type renderer struct {
	server *Server
	opts   webui.Options

	mu     sync.Mutex
	url    string
	closed bool
}

func (r *renderer) nativeFunction(name string) webui.NativeFunction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.opts.NativeFunctions[name]
}

func (r *renderer) location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url
}

// localPath reports whether target lies under the renderer origin and, if so,
// its path.
func (r *renderer) localPath(target string) (string, bool) {
	if r.opts.Origin == "" || !strings.HasPrefix(target, r.opts.Origin) {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return "/", true
	}
	return u.Path, true
}

// GoToURL records the start page and points connected pages at it.
func (r *renderer) GoToURL(target string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRendererClosed
	}
	r.url = target
	r.mu.Unlock()

	loc := target
	if local, ok := r.localPath(target); ok {
		loc = local
	}
	r.server.broadcast(outbound{Navigate: &loc})
	return nil
}

// EvaluateJavascript queues script on every connected page.
func (r *renderer) EvaluateJavascript(script string) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrRendererClosed
	}
	r.server.broadcast(evalFrame(script))
	return nil
}

// Close detaches the renderer from the server.
func (r *renderer) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.server.mu.Lock()
	if r.server.renderer == r {
		r.server.renderer = nil
	}
	r.server.mu.Unlock()
	return nil
}
