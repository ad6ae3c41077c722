package transport

import (
	"archive/zip"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/danyanovich/dwfx2pdf/internal/convert"
	"github.com/danyanovich/dwfx2pdf/internal/domain"
)

//go:embed web/index.html
var webFS embed.FS

type Converter interface {
	Do(ctx context.Context, task domain.Task) domain.Outcome
}

type handler struct {
	maxUploadBytes int64
	uploadDir      string
	outputDir      string
	converter      Converter
}

func NewHandler(maxUploadMB int64, uploadDir, outputDir string, converter Converter) *handler {
	return &handler{
		maxUploadBytes: maxUploadMB << 20,
		uploadDir:      uploadDir,
		outputDir:      outputDir,
		converter:      converter,
	}
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "")
		return
	}
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// upload accepts a multipart batch of .dwfx files and converts each one.
// Results come back per file, in request order; one file's failure never
// fails the batch. Staged uploads are removed whatever the outcome.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	logger := slog.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("handler", "upload"),
		slog.String("remote_addr", r.RemoteAddr),
	)

	if err := h.ensureDirs(); err != nil {
		logger.Error("ensure dirs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		// multipart does not always wrap the MaxBytesReader error, so
		// match on the message as well
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		logger.Error("ParseMultipartForm", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "unable to parse multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	results := make([]domain.UploadResult, 0, len(files))
	for _, fh := range files {
		if fh.Filename == "" {
			continue
		}
		results = append(results, h.convertUpload(r.Context(), logger, fh.Filename, fh))
	}

	writeJSON(w, http.StatusOK, domain.UploadResponse{Results: results})
}

func (h *handler) convertUpload(ctx context.Context, logger *slog.Logger, name string, fh *multipart.FileHeader) domain.UploadResult {
	if !convert.IsSource(name) {
		return domain.UploadResult{Name: name, Error: "not a .dwfx file"}
	}

	stagedPath, err := h.stage(name, fh)
	if err != nil {
		logger.Error("stage upload", slog.String("file", name), slog.String("error", err.Error()))
		return domain.UploadResult{Name: name, Error: "unable to store upload"}
	}
	defer func() {
		if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("remove staged upload", slog.String("path", stagedPath), slog.String("error", err.Error()))
		}
	}()

	pdfName := convert.PDFName(name)
	outcome := h.converter.Do(ctx, domain.Task{
		SourcePath: stagedPath,
		DestPath:   filepath.Join(h.outputDir, pdfName),
	})
	if !outcome.Success {
		logger.Error("convert upload", slog.String("file", name), slog.String("error", outcome.Err.Error()))
		return domain.UploadResult{Name: name, Error: outcome.Err.Error()}
	}

	logger.Info("converted upload",
		slog.String("file", name),
		slog.String("pdf", pdfName),
		slog.Duration("elapsed", outcome.Elapsed),
	)
	return domain.UploadResult{Name: name, Success: true, PDFName: pdfName}
}

// stage persists an upload under a collision-resistant name: a short
// random prefix plus the original base name.
func (h *handler) stage(name string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	stagedPath := filepath.Join(h.uploadDir, prefix+"_"+filepath.Base(name))

	dst, err := os.Create(stagedPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(stagedPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(stagedPath)
		return "", err
	}
	return stagedPath, nil
}

func (h *handler) download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/download/")
	fullPath, err := h.outputPath(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(name),
	}))
	if _, err := io.Copy(w, f); err != nil {
		slog.Error("download: send file",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
	}
}

// downloadAll bundles a requested subset of existing outputs into one ZIP.
// Names that do not exist are silently omitted; an empty request list is a
// client error.
func (h *handler) downloadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	defer r.Body.Close()
	var req domain.DownloadAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyRequest.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="converted.zip"`)

	zw := zip.NewWriter(w)
	defer zw.Close()

	for _, name := range req.Files {
		fullPath, err := h.outputPath(name)
		if err != nil {
			continue
		}
		f, err := os.Open(fullPath)
		if err != nil {
			continue
		}

		entry, err := zw.Create(filepath.Base(name))
		if err != nil {
			f.Close()
			slog.Error("zip entry", slog.String("file", name), slog.String("error", err.Error()))
			return
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			slog.Error("zip write", slog.String("file", name), slog.String("error", err.Error()))
			return
		}
		f.Close()
	}
}

func (h *handler) listFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	if err := h.ensureDirs(); err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), convert.PDFExt) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	writeJSON(w, http.StatusOK, domain.FilesResponse{Files: files})
}

func (h *handler) ensureDirs() error {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(h.outputDir, 0o755)
}

// outputPath joins name onto the output directory, rejecting traversal.
func (h *handler) outputPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.ErrFileNotFound
	}
	clean := filepath.Clean(name)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", domain.ErrFileNotFound
	}
	return filepath.Join(h.outputDir, clean), nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, domain.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON", slog.String("error", err.Error()))
	}
}
