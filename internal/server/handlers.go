package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nao1215/shopaudit/internal/model"
	"github.com/nao1215/shopaudit/internal/report"
)

// auditRequest is the body of POST /api/audit.
type auditRequest struct {
	URL string `json:"url"`
}

// exportRequest selects a saved audit by id. Without an id the body is
// read as a complete AuditResult.
type exportRequest struct {
	AuditID *int64 `json:"auditId"`
}

// statusResponse is the body of GET /api/status.
type statusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, r, fmt.Errorf("%w: url is required", ErrBadRequest))
		return
	}

	logger := s.requestLogger(r)
	result, err := s.auditor.Run(r.Context(), req.URL)
	if err != nil {
		logger.Warn("audit failed", "url", req.URL, "error", err)
		s.writeError(w, r, err)
		return
	}

	stored, err := s.store.Save(r.Context(), result)
	if err != nil {
		logger.Error("failed to save audit", "url", result.URL, "error", err)
		s.writeError(w, r, err)
		return
	}

	logger.Info("audit saved", "id", stored.ID, "url", stored.URL, "score", stored.Score)
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	// Unparsable or non-positive limits fall back to the store default.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) //nolint:errcheck // zero means default

	audits, err := s.store.GetRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, audits)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stored, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.PathValue("format"))
	if err != nil || format == report.FormatText {
		s.writeError(w, r, fmt.Errorf("%w: export format must be markdown, json or html", ErrBadRequest))
		return
	}
	if format == report.FormatHTML {
		if err := s.gate.Allow(r); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	result, err := s.exportSource(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	writer, err := report.NewWriter(format, &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := writer.Write(result); err != nil {
		s.writeError(w, r, err)
		return
	}

	name := report.FileName(result.URL, format, s.clock())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportSource resolves the result to export from the request body.
func (s *Server) exportSource(w http.ResponseWriter, r *http.Request) (*model.AuditResult, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	var req exportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	if req.AuditID != nil {
		stored, err := s.store.GetByID(r.Context(), *req.AuditID)
		if err != nil {
			return nil, err
		}
		return &stored.AuditResult, nil
	}

	var result model.AuditResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: invalid audit result: %v", ErrBadRequest, err)
	}
	if result.URL == "" {
		return nil, fmt.Errorf("%w: auditId or a complete audit result is required", ErrBadRequest)
	}
	return &result, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:    "online",
		Service:   "shopaudit",
		Timestamp: s.clock().UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   s.version,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusNotFound, errorResponse{
		Error:     "route not found: " + r.Method + " " + r.URL.Path,
		Code:      CodeNotFound,
		RequestID: RequestID(r.Context()),
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid audit id %q", ErrBadRequest, raw)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		writeJSONError(w, http.StatusInternalServerError, errorResponse{Error: "failed to encode response", Code: CodeInternal})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// writeError replies with the status and code classify assigns to err.
// Internal errors are not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal server error"
	}
	writeJSONError(w, status, errorResponse{
		Error:     msg,
		Code:      code,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, status int, body errorResponse) {
	data, _ := json.Marshal(body) //nolint:errchkjson // only string fields
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
