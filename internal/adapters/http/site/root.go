// Package site serves the embedded browser UI.
package site

import (
	"context"
	"net/http"
	"path"
)

// Register attaches the UI routes to mux. The UI lives at / and its assets
// under /static/; other unmatched paths are 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler serves the index page and its assets.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP handles GET / and GET /static/*.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	switch p := path.Clean(r.URL.Path); {
	case p == "/":
		h.files.ServeHTTP(w, r)
	case path.Dir(p) == "/static":
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/" + path.Base(p)
		h.files.ServeHTTP(w, r2)
	default:
		http.NotFound(w, r)
	}
}
