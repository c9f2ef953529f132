package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	staticmd "github.com/alnah/go-staticmd"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShell(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := shellTemplate.Execute(w, shellData{Title: s.cfg.Title}); err != nil {
		s.log.Error("rendering shell", "error", err)
	}
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.preview.Input())
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxDocumentBytes)

	var in staticmd.Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.update(in); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleOutline(w http.ResponseWriter, _ *http.Request) {
	frame, ok := s.preview.Current()
	if !ok {
		jsonError(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	outline := frame.Outline
	if outline == nil {
		outline = []staticmd.OutlineEntry{}
	}
	writeJSON(w, http.StatusOK, outlineResponse{Generation: frame.Generation, Outline: outline})
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame, ok := s.preview.Current()
	if !ok {
		jsonError(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.preview.Export(r.Context())
	if err != nil {
		s.log.Error("export failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	name := staticmd.ExportFilename(s.preview.Input().Theme)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(res.HTML))
}

// update hands an input to the preview and logs rejected ones.
func (s *Server) update(in staticmd.Input) error {
	if err := s.preview.Update(in); err != nil {
		s.log.Warn("document update rejected", "error", err)
		return err
	}
	return nil
}

type outlineResponse struct {
	Generation uint64                  `json:"generation"`
	Outline    []staticmd.OutlineEntry `json:"outline"`
}

// statusFor maps a preview error to an HTTP status.
func statusFor(err error) int {
	switch {
	case staticmd.IsConfigError(err):
		return http.StatusBadRequest
	case errors.Is(err, staticmd.ErrPreviewClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
