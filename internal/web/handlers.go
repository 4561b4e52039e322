package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/logging"
	"github.com/JonMunkholm/members/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope and form fields.
const multipartOverhead = 64 << 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Entities())
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// handlePreview validates the uploaded file without writing anything. A
// rejected file is still a 200 with FileError set.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Preview(r.Context(), entity, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, result, templates.PreviewTable(result))
}

// handleImport runs an all-or-nothing import. Both committed and rolled back
// runs answer 200 with the full result; only file and system problems are
// errors.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r = withActor(r)
	result, err := s.service.Import(r.Context(), entity, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, r, result, templates.ImportSummary(result))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	file, err := s.service.Template(chi.URLParam(r, "entity"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveFile(w, file)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	file, err := s.service.Sample(chi.URLParam(r, "entity"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveFile(w, file)
}

// handleExport downloads every live record; ?format=xlsx switches from the
// default CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = core.FormatCSV
	}

	file, err := s.service.Export(r.Context(), chi.URLParam(r, "entity"), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveFile(w, file)
}

// readUpload returns the bytes of the multipart "file" field, bounded by
// the configured upload size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit); err != nil {
		if tooLarge(err) {
			return nil, fmt.Errorf("%w: %v", errFileTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	if header.Size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", errFileTooLarge, header.Size, limit)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if tooLarge(err) {
			return nil, fmt.Errorf("%w: %v", errFileTooLarge, err)
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func tooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large")
}

// respond writes v as JSON, or fragment for HTMX and browser requests.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, fragment templ.Component) {
	if !wantsHTML(r) {
		writeJSON(w, http.StatusOK, v)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := fragment.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "path", r.URL.Path, "error", err)
	}
}

func serveFile(w http.ResponseWriter, f *core.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Content-Length", fmt.Sprint(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}
