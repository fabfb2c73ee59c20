package server

import (
	"encoding/json"
	"net/http"

	"musemind/internal/types"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/styles", s.handleStyles)
	mux.HandleFunc("GET /api/corpora", s.handleCorpora)
	mux.HandleFunc("GET /api/cache", s.handleCacheStats)
	mux.HandleFunc("DELETE /api/cache", s.handleCacheClear)
	mux.HandleFunc("GET /api/calls", s.handleCalls)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Corpora int    `json:"corpora_loaded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Corpora: len(s.corpora.ListAvailable()),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGenerate runs a generation request through the engine. The body is
// the raw request map; the "agent" field selects the pipeline.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result := s.engine.Submit(r.Context(), raw)

	status := http.StatusOK
	if st, _ := result["status"].(string); st == string(types.StatusError) {
		status = statusForErrorKind(result)
	}
	writeJSON(w, status, result)
}

// statusForErrorKind maps engine error kinds to HTTP status codes.
func statusForErrorKind(result map[string]any) int {
	kind, _ := result["error_kind"].(string)
	switch types.ErrorKind(kind) {
	case types.ErrEmptyInput, types.ErrUnknownStyle, types.ErrUnknownCorpus,
		types.ErrInvalidOption, types.ErrLineCountOutOfRange:
		return http.StatusBadRequest
	case types.ErrNoContextFound:
		return http.StatusUnprocessableEntity
	case types.ErrIndexUnavailable, types.ErrGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// StyleInfo describes one generation style.
type StyleInfo struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	UsesKeywords  bool   `json:"uses_keywords"`
	UsesRetrieval bool   `json:"uses_retrieval"`
	FixedLines    int    `json:"fixed_lines,omitempty"`
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	styles := types.AllStyles()
	infos := make([]StyleInfo, 0, len(styles))
	for _, st := range styles {
		info := StyleInfo{
			Name:          string(st),
			DisplayName:   st.DisplayName(),
			UsesKeywords:  st.UsesKeywords(),
			UsesRetrieval: st.UsesRetrieval(),
		}
		if n, ok := st.FixedLineCount(); ok {
			info.FixedLines = n
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"styles": infos})
}

// CorporaResponse lists configured and loaded corpora.
type CorporaResponse struct {
	Known     []string `json:"known"`
	Available []string `json:"available"`
}

func (s *Server) handleCorpora(w http.ResponseWriter, r *http.Request) {
	resp := CorporaResponse{
		Known:     s.corpora.ListKnown(),
		Available: s.corpora.ListAvailable(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	cleared := s.engine.ClearCache()
	s.logger.Info("cache cleared via API", "entries", cleared)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"calls": s.engine.Calls()})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": "error", "error": msg})
}
