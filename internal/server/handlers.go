package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/MeKo-Tech/bubblex/internal/utils"
)

// requestError carries an HTTP status for failures detected before the
// pipeline runs.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: s.cfg.Version,
	})
}

// ocrHandler decodes the base64 image, runs the pipeline and writes the
// bubble list.
func (s *Server) ocrHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB*1024*1024)
	var req OCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, "Request too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	resp, err := s.runOCR(r.Context(), req, nil)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// runOCR is shared by the HTTP and websocket handlers.
func (s *Server) runOCR(ctx context.Context, req OCRRequest, progress pipeline.ProgressCallback) (*OCRResponse, error) {
	start := time.Now()
	if strings.TrimSpace(req.Image) == "" {
		return nil, badRequest("No image")
	}

	img, format, err := utils.DecodeBase64Image(req.Image)
	if err != nil {
		return nil, badRequest("Invalid image: %v", err)
	}

	opts := req.options(s.proc.Defaults())
	opts.Progress = progress
	if err := opts.Validate(); err != nil {
		return nil, badRequest("Invalid options: %v", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	b := img.Bounds()
	slog.Info("OCR request", "format", format, "width", b.Dx(), "height", b.Dy(), "target_lang", opts.TargetLang)

	res, err := s.proc.Process(ctx, img, opts)
	if err != nil {
		ocrRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	ocrRequestsTotal.WithLabelValues("success").Inc()
	ocrProcessingDuration.Observe(time.Since(start).Seconds())

	resp := &OCRResponse{
		Text:             res.Text(),
		TextBlocks:       res.Blocks,
		Success:          true,
		BubblesCount:     len(res.Blocks),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if req.Overlay {
		overlay, err := s.renderOverlay(img, res)
		if err != nil {
			return nil, err
		}
		resp.Overlay = overlay
	}
	slog.Info("OCR complete", "bubbles", resp.BubblesCount, "duration_ms", resp.ProcessingTimeMs)
	return resp, nil
}

func (s *Server) renderOverlay(img image.Image, res *pipeline.Result) (string, error) {
	ov := pipeline.RenderOverlay(img, res, s.boxColor, 2)
	encoded, err := utils.EncodePNGBase64(ov)
	if err != nil {
		return "", fmt.Errorf("overlay failed: %w", err)
	}
	return encoded, nil
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var re *requestError
	if errors.As(err, &re) {
		s.writeError(w, re.msg, re.status)
		return
	}
	slog.Error("OCR processing failed", "error", err)
	s.writeError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
