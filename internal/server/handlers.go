package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
)

// maxRequestBody bounds the detect request body
const maxRequestBody = 64 << 10

// DetectRequest is the body of POST /detect
type DetectRequest struct {
	Want     []string `json:"want"`
	Tolerate []string `json:"tolerate"`
}

// DetectResponse is returned by the detect endpoints
type DetectResponse struct {
	Detected   bool  `json:"detected"`
	Detections []any `json:"detections"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type presetResponse struct {
	Name     string          `json:"name"`
	Want     []patterns.Kind `json:"want"`
	Tolerate []patterns.Kind `json:"tolerate"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":               "clip-sentinel",
		"version":            Version,
		"kinds":              len(patterns.All()),
		"presets":            len(s.detector.Presets()),
		"rate_limit_enabled": s.config.Server.RateLimit.Enabled,
	})
}

// handleKinds lists the pattern catalog
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]patterns.Kind{"kinds": patterns.All()})
}

// handlePresets lists the configured presets
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	presets := s.detector.Presets()
	out := make([]presetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, presetResponse{Name: p.Name, Want: nonNil(p.Want), Tolerate: nonNil(p.Tolerate)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": out})
}

// handleDetect runs a detection for an explicit want/tolerate request
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		log.Error("Failed to read request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request"})
		return
	}

	var req DetectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	want, err := patterns.ParseKinds(req.Want)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	tolerate, err := patterns.ParseKinds(req.Tolerate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	detections, err := s.detector.Detect(r.Context(), want, tolerate)
	s.writeDetections(w, r, detections, err)
}

// handlePresetDetect runs a detection with a named preset
func (s *Server) handlePresetDetect(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	detections, err := s.detector.DetectPreset(r.Context(), name)
	if errors.Is(err, detector.ErrUnknownPreset) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	s.writeDetections(w, r, detections, err)
}

func (s *Server) writeDetections(w http.ResponseWriter, r *http.Request, detections []patterns.Detection, err error) {
	if err != nil {
		s.requestLogger(r).Error("Detection failed", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, detector.ErrRecognition) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	encoded, err := patterns.EncodeDetections(detections)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, DetectResponse{
		Detected:   len(detections) > 0,
		Detections: encoded,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(kinds []patterns.Kind) []patterns.Kind {
	if kinds == nil {
		return []patterns.Kind{}
	}
	return kinds
}
