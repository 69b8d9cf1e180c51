package webui

import (
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// DefaultOrigin is the local origin the embedded page is served from.
const DefaultOrigin = "http://sona.local"

// Resource is static content served to the renderer.
type Resource struct {
	Data     []byte
	MimeType string
}

// ResourceProvider resolves renderer requests to static content. Returning
// false lets the renderer fall back to the network.
type ResourceProvider interface {
	Resolve(url string) (Resource, bool)
}

// ResourceProviderFunc adapts a function to ResourceProvider.
type ResourceProviderFunc func(url string) (Resource, bool)

// Resolve calls f.
func (f ResourceProviderFunc) Resolve(url string) (Resource, bool) {
	return f(url)
}

// DeclineProvider never serves anything.
type DeclineProvider struct{}

// Resolve always declines.
func (DeclineProvider) Resolve(string) (Resource, bool) {
	return Resource{}, false
}

// FSProvider serves a built UI out of a file system. Requests for "/" resolve
// to index.html.
type FSProvider struct {
	FS fs.FS
}

// NewFSProvider creates a provider rooted at fsys.
func NewFSProvider(fsys fs.FS) *FSProvider {
	return &FSProvider{FS: fsys}
}

// Resolve maps a URL or path onto a file in the provider's file system.
func (p *FSProvider) Resolve(rawURL string) (Resource, bool) {
	if p == nil || p.FS == nil {
		return Resource{}, false
	}

	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		name = "index.html"
	}

	data, err := fs.ReadFile(p.FS, name)
	if err != nil {
		return Resource{}, false
	}
	return Resource{Data: data, MimeType: mimeTypeFor(name, data)}, true
}

func mimeTypeFor(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

// ResourceHandler serves a provider over HTTP, answering 404 when it declines.
// Request paths are resolved under origin. A non-nil transform may rewrite
// each resource before it is written.
func ResourceHandler(p ResourceProvider, origin string, transform func(Resource) Resource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := p.Resolve(origin + r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if transform != nil {
			res = transform(res)
		}
		w.Header().Set("Content-Type", res.MimeType)
		_, _ = w.Write(res.Data)
	})
}
