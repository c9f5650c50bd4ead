// Package api exposes the registry, tender artifacts, ingestion and
// monitoring over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/ingest"
	"github.com/sells-group/tender-cli/internal/monitor"
	"github.com/sells-group/tender-cli/internal/registry"
	"github.com/sells-group/tender-cli/internal/search"
	"github.com/sells-group/tender-cli/internal/store"
)

var (
	errUploadsDisabled = errors.New("api: ingestion over HTTP is disabled (server.upload_dir is not set)")
	errOutsideUploads  = errors.New("api: file is outside the upload directory")
)

// statusFor maps caller mistakes to 400 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUploadsDisabled):
		return http.StatusForbidden
	case errors.Is(err, store.ErrInvalidName), errors.Is(err, ingest.ErrMissingOrganization),
		errors.Is(err, errOutsideUploads):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Deps are the components served by the router.
type Deps struct {
	Layout   *store.Layout
	Registry registry.Registry
	Params   *search.Store
	Pipeline *ingest.Pipeline
	Monitor  *monitor.Monitor
	// UploadDir is the only directory ingestion requests may read from.
	UploadDir string
}

type server struct {
	Deps
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps, allowedOrigins []string) http.Handler {
	s := &server{Deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	// cors treats an empty origin list as "allow all", so cross-origin
	// access is only enabled when origins are configured.
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/orgs/{inn}", func(r chi.Router) {
		r.Get("/tenders", s.listTenders)
		r.Get("/tenders/{number}/text", s.tenderText)
		r.Get("/tenders/{number}/products", s.tenderProducts)
		r.Get("/params", s.searchParams)
		r.Post("/ingest", s.ingest)
		r.Post("/monitor", s.monitor)
	})
	return r
}

func (s *server) listTenders(w http.ResponseWriter, r *http.Request) {
	records, err := s.Registry.List(r.Context(), chi.URLParam(r, "inn"))
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) tenderText(w http.ResponseWriter, r *http.Request) {
	text, err := s.Layout.ExtractedText(chi.URLParam(r, "inn"), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *server) tenderProducts(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.Layout.ProductCandidates(chi.URLParam(r, "inn"), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (s *server) searchParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.Params.Load(chi.URLParam(r, "inn"))
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

// ingestRequest names files relative to the upload directory.
type ingestRequest struct {
	Files []string `json:"files"`
}

func (s *server) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if len(req.Files) == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("files is required"))
		return
	}

	paths := make([]string, 0, len(req.Files))
	for _, name := range req.Files {
		path, err := uploadPath(s.UploadDir, name)
		if err != nil {
			writeError(w, r, statusFor(err), err)
			return
		}
		paths = append(paths, path)
	}

	res, err := s.Pipeline.Ingest(r.Context(), chi.URLParam(r, "inn"), paths)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) monitor(w http.ResponseWriter, r *http.Request) {
	res, err := s.Monitor.FindNewTenders(r.Context(), chi.URLParam(r, "inn"))
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// uploadPath resolves name inside root. Absolute names, parent references
// and symlinks leading out of root are rejected.
func uploadPath(root, name string) (string, error) {
	if root == "" {
		return "", errUploadsDisabled
	}
	if name == "" || filepath.IsAbs(name) {
		return "", eris.Wrapf(errOutsideUploads, "file %q", name)
	}
	base, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", eris.Wrap(err, "api: resolve upload directory")
	}
	resolved, err := filepath.EvalSymlinks(filepath.Join(base, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", eris.Wrapf(errOutsideUploads, "file %q does not exist", name)
		}
		return "", eris.Wrapf(err, "api: resolve %q", name)
	}
	if !strings.HasPrefix(resolved, base+string(os.PathSeparator)) {
		return "", eris.Wrapf(errOutsideUploads, "file %q", name)
	}
	return resolved, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	zap.L().Warn("api: request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
