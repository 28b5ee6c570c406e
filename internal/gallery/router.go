package gallery

import (
	"embed"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	//go:embed static
	staticFS embed.FS
)

// Handler returns the gallery's http.Handler: the JSON API under /api, the
// embedded frontend at the root, permissive CORS, and the logging and
// recovery middleware outermost.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/pictures", s.handleListPictures)
	mux.HandleFunc("POST /api/pictures", s.handleUploadPicture)
	mux.HandleFunc("DELETE /api/pictures", s.handleDeletePictures)
	mux.HandleFunc("POST /api/pictures/rate", s.handleRatePicture)
	mux.HandleFunc("POST /api/pictures/comment", s.handleAddComment)
	mux.HandleFunc("POST /api/pictures/download", s.handleDownloadPictures)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("/", s.handleRoot)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return LogRequest(Recoverer(corsHandler(answerOptions(mux))))
}

// answerOptions short-circuits every OPTIONS request with an empty 200.
// The CORS middleware only consumes genuine preflights (those carrying an
// Origin header); plain OPTIONS probes would otherwise hit the mux and be
// rejected with 405 by its method patterns.
func answerOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleRoot serves the embedded frontend and is the fallback for every
// path without a dedicated route. Unknown API paths get a JSON 404 rather
// than the frontend.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	s.serveStatic(w, r)
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	var (
		file        string
		contentType string
	)

	switch r.URL.Path {
	case "/", "/index.html":
		file = "static/index.html"
		contentType = "text/html; charset=utf-8"
	case "/style.css":
		file = "static/style.css"
		contentType = "text/css; charset=utf-8"
	case "/script.js":
		file = "static/script.js"
		contentType = "text/javascript; charset=utf-8"
	default:
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	data, err := staticFS.ReadFile(file)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
