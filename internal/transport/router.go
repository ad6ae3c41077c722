package transport

import "net/http"

type Handler interface {
	index(w http.ResponseWriter, r *http.Request)
	upload(w http.ResponseWriter, r *http.Request)
	download(w http.ResponseWriter, r *http.Request)
	downloadAll(w http.ResponseWriter, r *http.Request)
	listFiles(w http.ResponseWriter, r *http.Request)
}

type router struct {
	h Handler
}

func NewRouter(h Handler) *router {
	return &router{h: h}
}

func (r *router) MountRoutes(mux *http.ServeMux) *http.ServeMux {
	mux.HandleFunc("/", r.h.index)
	mux.HandleFunc("/upload", r.h.upload)
	mux.HandleFunc("/download/", r.h.download)
	mux.HandleFunc("/download-all", r.h.downloadAll)
	mux.HandleFunc("/api/files", r.h.listFiles)

	return mux
}
