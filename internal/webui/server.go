package webui

import (
	"archive/zip"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dwfx2pdf/internal/config"
	"dwfx2pdf/internal/convert"
	"dwfx2pdf/internal/dispatch"
	"dwfx2pdf/internal/history"
	"dwfx2pdf/internal/logging"
	"dwfx2pdf/internal/results"
	"dwfx2pdf/internal/staging"
)

//go:embed static/index.html
var staticFS embed.FS

const maxUploadBytes = 256 << 20

// Server wires HTTP handlers to the conversion pool and output store.
type Server struct {
	router  chi.Router
	pool    *dispatch.Pool
	cfg     *config.Config
	outputs *results.Store
	hist    *history.Store
	logger  *slog.Logger
}

// NewServer constructs a Server with middleware and routes. The history store
// may be nil; uploads are then simply not recorded.
func NewServer(pool *dispatch.Pool, cfg *config.Config, outputs *results.Store, hist *history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		pool:    pool,
		cfg:     cfg,
		outputs: outputs,
		hist:    hist,
		logger:  logging.NewComponentLogger(logger, "webui"),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	if token := cfg.Web.AuthToken; token != "" {
		r.Use(bearerAuthMiddleware(token))
	}

	r.Get("/", s.index)
	r.Post("/upload", s.upload)
	r.Get("/download/{name}", s.download)
	r.Post("/download-all", s.downloadAll)
	r.Get("/api/files", s.apiFiles)
	r.Get("/api/status", s.apiStatus)
	r.Get("/api/history", s.apiHistory)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// uploadResult is the per-file entry returned to the browser. A request with
// a mix of good and bad files still succeeds; each entry carries its own
// verdict.
type uploadResult struct {
	Name    string `json:"name"`
	PDFName string `json:"pdf_name,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	resultsOut := make([]uploadResult, 0, len(files))
	for _, header := range files {
		if header.Filename == "" {
			continue
		}
		resultsOut = append(resultsOut, s.convertUpload(r.Context(), header))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": resultsOut})
}

func (s *Server) convertUpload(ctx context.Context, header *multipart.FileHeader) uploadResult {
	original := header.Filename
	if !convert.HasInputExtension(original) {
		return uploadResult{Name: original, Error: "not a .dwfx file"}
	}

	sanitized, err := staging.SanitizeName(original)
	if err != nil {
		return uploadResult{Name: original, Error: "unusable file name"}
	}

	staged, err := s.stageUpload(header, sanitized)
	if err != nil {
		s.logger.Error("stage upload failed", logging.String("name", original), logging.Error(err))
		return uploadResult{Name: original, Error: "failed to store upload"}
	}
	defer os.Remove(staged)

	// The PDF keeps the uploader's base name; the staging prefix exists only
	// to keep concurrent uploads of the same name apart on disk.
	task := convert.Task{
		InputPath:  staged,
		OutputPath: filepath.Join(s.cfg.Paths.OutputDir, convert.OutputName(sanitized)),
		Overwrite:  true,
	}
	outcome := s.pool.Submit(ctx, task)
	s.record(ctx, outcome)

	if outcome.Err != nil {
		return uploadResult{Name: original, Error: outcome.Err.Error()}
	}
	return uploadResult{Name: original, PDFName: filepath.Base(outcome.Output), Success: true}
}

func (s *Server) stageUpload(header *multipart.FileHeader, sanitized string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := s.cfg.Paths.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	staged := staging.UniquePath(dir, sanitized)
	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(staged)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return staged, nil
}

func (s *Server) record(ctx context.Context, outcome convert.Outcome) {
	if s.hist == nil {
		return
	}
	if _, err := s.hist.Record(ctx, history.SubmitterUpload, outcome); err != nil {
		s.logger.Warn("record upload outcome", logging.Error(err))
	}
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := s.outputs.Resolve(name)
	if err != nil {
		switch {
		case errors.Is(err, results.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "invalid file name")
		case errors.Is(err, results.ErrNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		default:
			writeError(w, http.StatusInternalServerError, "lookup failed")
		}
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) downloadAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "no files specified")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="converted.zip"`)
	w.Header().Set("Content-Type", "application/zip")

	zw := zip.NewWriter(w)
	defer zw.Close()
	for _, name := range req.Files {
		path, err := s.outputs.Resolve(name)
		if err != nil {
			continue
		}
		if err := addZipEntry(zw, path, name); err != nil {
			s.logger.Warn("zip entry failed", logging.String("name", name), logging.Error(err))
			return
		}
	}
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}

func (s *Server) apiFiles(w http.ResponseWriter, _ *http.Request) {
	names, err := s.outputs.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": names})
}

func (s *Server) apiStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":     "ok",
		"workers":    s.pool.Workers(),
		"input_dir":  s.cfg.Paths.InputDir,
		"output_dir": s.cfg.Paths.OutputDir,
	}
	if s.hist != nil {
		if summary, err := s.hist.Stats(r.Context()); err == nil {
			status["conversions"] = map[string]int{
				"total":     summary.Total,
				"succeeded": summary.Succeeded,
				"skipped":   summary.Skipped,
				"failed":    summary.Failed,
			}
		}
	}
	writeJSON(w, http.StatusOK, status)
}

type historyEntry struct {
	ID        int64  `json:"id"`
	Source    string `json:"source"`
	Output    string `json:"output,omitempty"`
	Submitter string `json:"submitter"`
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped"`
	Error     string `json:"error,omitempty"`
	Duration  string `json:"duration"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []historyEntry{}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := s.hist.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntry{
			ID:        entry.ID,
			Source:    entry.Source,
			Output:    entry.Output,
			Submitter: string(entry.Submitter),
			Success:   entry.Success,
			Skipped:   entry.Skipped,
			Error:     entry.ErrorMessage,
			Duration:  entry.Duration.Round(time.Millisecond).String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("write JSON failed", logging.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
