package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*, and
// project images at /assets/* so the resolver's relative paths resolve from /.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	assetsFS, _ := fs.Sub(StaticFS, "static/assets")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(assetsFS)))

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("POST /contact", h.Contact)
}
