package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	mdmath "github.com/alnah/go-mdmath"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Markdown string `json:"markdown"`
}

// RenderResponse is the success body of POST /api/render.
type RenderResponse struct {
	HTML string `json:"html"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	html, err := s.renderer.RenderFragment(r.Context(), req.Markdown)
	if err != nil {
		switch {
		case errors.Is(err, mdmath.ErrEmptyMarkdown):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			// middleware.Timeout replies 504.
		case errors.Is(err, context.Canceled):
			// Client went away.
		default:
			s.logger.Error("render failed", "err", err)
			writeError(w, http.StatusInternalServerError, "render failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{HTML: html})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // the payload is HTML
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
