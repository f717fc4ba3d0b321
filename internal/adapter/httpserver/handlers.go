package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/sermon-evaluator/internal/config"
	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
	"github.com/fairyhunter13/sermon-evaluator/internal/report"
	"github.com/fairyhunter13/sermon-evaluator/internal/usecase"
	"github.com/fairyhunter13/sermon-evaluator/pkg/textx"
)

// DocumentSink turns a report instruction stream into document bytes.
type DocumentSink interface {
	Render(ops []report.Instruction) ([]byte, error)
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Sermons    usecase.SermonService
	Analyze    usecase.AnalyzeService
	Recommend  usecase.RecommendService
	Reports    usecase.ReportService
	PDF        DocumentSink
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, sermons usecase.SermonService, analyze usecase.AnalyzeService, recommend usecase.RecommendService, reports usecase.ReportService, pdf DocumentSink, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Sermons: sermons, Analyze: analyze, Recommend: recommend, Reports: reports, PDF: pdf, DBCheck: dbCheck, RedisCheck: redisCheck}
}

type sermonResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	BibleReference string                 `json:"bible_reference,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	Analyzed       bool                   `json:"analyzed"`
	Analysis       *domain.SermonAnalysis `json:"analysis,omitempty"`
}

func toSermonResponse(s domain.Sermon, includeAnalysis bool) sermonResponse {
	out := sermonResponse{
		ID:             s.ID,
		Title:          s.Title,
		BibleReference: s.BibleReference,
		CreatedAt:      s.CreatedAt,
		Analyzed:       s.Analysis != nil,
	}
	if includeAnalysis {
		out.Analysis = s.Analysis
	}
	return out
}

// CreateSermonHandler accepts a JSON body or a multipart text file upload.
func (s *Server) CreateSermonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			s.createFromUpload(w, r)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.MaxUploadMB*1024*1024)
		var req struct {
			Title          string `json:"title"`
			Content        string `json:"content"`
			BibleReference string `json:"bible_reference"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		sermon, err := s.Sermons.Create(r.Context(), PrincipalFrom(r), req.Title, req.Content, req.BibleReference)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toSermonResponse(sermon, false))
	}
}

// createFromUpload ingests the sermon body from a plain-text file field.
func (s *Server) createFromUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_ = json.NewEncoder(w).Encode(errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large",
				Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
			}})
			return
		}
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	file, header, err := r.FormFile("sermon")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: sermon file required", domain.ErrInvalidArgument), map[string]string{"field": "sermon"})
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: sermon read: %v", domain.ErrInvalidArgument, err), nil)
		return
	}

	// Content sniffing: only plain text is accepted for sermon bodies.
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "text/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_ = json.NewEncoder(w).Encode(errorEnvelope{Error: apiError{
			Code: "INVALID_ARGUMENT", Message: "unsupported media type for sermon (content)",
			Details: map[string]any{"mime": mime.String(), "filename": header.Filename},
		}})
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, ".txt")
	}
	sermon, err := s.Sermons.Create(r.Context(), PrincipalFrom(r), title, textx.SanitizeText(string(data)), r.FormValue("bible_reference"))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, toSermonResponse(sermon, false))
}

// ListSermonsHandler returns the principal's sermons, newest first.
func (s *Server) ListSermonsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sermons, err := s.Sermons.List(r.Context(), PrincipalFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]sermonResponse, 0, len(sermons))
		for _, sm := range sermons {
			out = append(out, toSermonResponse(sm, false))
		}
		writeJSON(w, http.StatusOK, map[string]any{"sermons": out})
	}
}

// GetSermonHandler returns one sermon with its analysis, if present.
func (s *Server) GetSermonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sermon, err := s.Sermons.Get(r.Context(), PrincipalFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSermonResponse(sermon, true))
	}
}

// AnalyzeHandler runs one synchronous evaluation for the sermon.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analysis, err := s.Analyze.Analyze(r.Context(), PrincipalFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
	}
}

// RecommendationsHandler returns the ranked recommendation list.
func (s *Server) RecommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sermons, err := s.Recommend.Recommend(r.Context(), PrincipalFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]sermonResponse, 0, len(sermons))
		for _, sm := range sermons {
			out = append(out, toSermonResponse(sm, true))
		}
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": out})
	}
}

// ReportHandler renders the analysis report as a PDF download.
func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sermonID := chi.URLParam(r, "id")
		ops, _, err := s.Reports.Render(r.Context(), PrincipalFrom(r), sermonID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		doc, err := s.PDF.Render(ops)
		if err != nil {
			writeError(w, r, fmt.Errorf("op=report.pdf: %w", err), nil)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", usecase.ReportFilename(sermonID, "pdf")))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}

// HeatmapHandler returns the normalized engagement timeline lanes as JSON.
func (s *Server) HeatmapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lanes, err := s.Reports.Heatmap(r.Context(), PrincipalFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"lanes": lanes})
	}
}
