// Package api provides the REST surface of the decode service: booking-text
// parsing, token resolution, override corrections and the unknown-code
// triage queue.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pnr_parser/internal/assemble"
	"pnr_parser/internal/extractor"
	"pnr_parser/internal/pnr"
	"pnr_parser/internal/resolver"
)

// Server exposes parsing and resolution over HTTP.
type Server struct {
	resolver    *resolver.Resolver
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).

	stripMetadata bool
	batchWorkers  int

	log *zap.SugaredLogger
}

// Config holds configuration for the API server.
type Config struct {
	Port          int
	AuthEnabled   bool
	APIKeys       []string
	StripMetadata bool
	BatchWorkers  int
	Logger        *zap.SugaredLogger
}

// NewServer creates a new API server.
func NewServer(res *resolver.Resolver, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Server{
		resolver:      res,
		port:          cfg.Port,
		authEnabled:   cfg.AuthEnabled,
		apiKeys:       keys,
		stripMetadata: cfg.StripMetadata,
		batchWorkers:  cfg.BatchWorkers,
		log:           log,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// Optional authentication.
	if s.authEnabled {
		r.Use(s.authMiddleware)
	}

	r.Mount("/api", s.Router())

	addr := ":" + strconv.Itoa(s.port)
	s.log.Infow("decode API starting", "addr", addr, "auth", s.authEnabled)
	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/parse", s.handleParse)
	r.Post("/decode", s.handleDecode)
	r.Post("/decode/batch", s.handleDecodeBatch)
	r.Post("/overrides", s.handleSaveOverride)
	r.Get("/unknown-codes", s.handleUnknownCodes)
	r.Post("/unknown-codes/{code}/resolve", s.handleResolveUnknown)

	return r
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Last resort: ?api_key= query parameter.
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ParseRequest is the request body for POST /parse.
type ParseRequest struct {
	Text string `json:"text"`

	// ResolveCodes additionally runs every extracted carrier/airport token
	// through the resolver.
	ResolveCodes bool `json:"resolve_codes,omitempty"`
}

// ParseResponse is the response for POST /parse.
type ParseResponse struct {
	SourceHash string             `json:"source_hash"`
	Options    []pnr.Option       `json:"options"`
	Codes      []pnr.DecodeResult `json:"codes,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	options := assemble.ParseWith(req.Text, time.Now().UTC(), assemble.Config{
		StripMetadata: s.stripMetadata,
	})

	resp := ParseResponse{
		SourceHash: pnr.SourceHash(req.Text),
		Options:    options,
	}

	if req.ResolveCodes {
		tokens := extractor.Tokens(options)
		resp.Codes = s.resolver.ResolveBatch(r.Context(), tokens, resp.SourceHash, s.batchWorkers)
	}

	writeJSON(w, http.StatusOK, resp)
}

// DecodeRequest is the request body for POST /decode.
type DecodeRequest struct {
	Token      string        `json:"token"`
	Kind       pnr.TokenKind `json:"kind"`
	SourceHash string        `json:"source_hash,omitempty"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if req.Kind == "" {
		req.Kind = pnr.TokenAirline
	}

	result := s.resolver.Resolve(r.Context(), req.Token, req.Kind, req.SourceHash)
	writeJSON(w, http.StatusOK, result)
}

// DecodeBatchRequest is the request body for POST /decode/batch.
type DecodeBatchRequest struct {
	Tokens     []resolver.Token `json:"tokens"`
	SourceHash string           `json:"source_hash,omitempty"`
}

func (s *Server) handleDecodeBatch(w http.ResponseWriter, r *http.Request) {
	var req DecodeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, "tokens is required")
		return
	}

	results := s.resolver.ResolveBatch(r.Context(), req.Tokens, req.SourceHash, s.batchWorkers)
	writeJSON(w, http.StatusOK, results)
}

// OverrideRequest is the request body for POST /overrides.
type OverrideRequest struct {
	Token      string         `json:"token"`
	TokenKind  pnr.TokenKind  `json:"token_kind"`
	TargetID   string         `json:"target_id"`
	TargetKind pnr.EntityKind `json:"target_kind"`
	Reason     string         `json:"reason,omitempty"`
}

func (s *Server) handleSaveOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Token == "" || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "token and target_id are required")
		return
	}
	if req.TokenKind == "" {
		req.TokenKind = pnr.TokenAirline
	}
	if req.TargetKind == "" {
		req.TargetKind = pnr.KindAirline
	}

	ov := pnr.Override{
		ID:         uuid.NewString(),
		Token:      req.Token,
		TokenKind:  req.TokenKind,
		TargetID:   req.TargetID,
		TargetKind: req.TargetKind,
		Reason:     req.Reason,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.resolver.SaveOverride(r.Context(), ov); err != nil {
		s.log.Errorw("override save failed", "token", req.Token, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save override")
		return
	}

	writeJSON(w, http.StatusCreated, ov)
}

func (s *Server) handleUnknownCodes(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	codes, err := s.resolver.UnknownCodes(r.Context(), limit)
	if err != nil {
		s.log.Errorw("unknown-code list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list unknown codes")
		return
	}
	if codes == nil {
		codes = []pnr.UnknownCode{}
	}

	writeJSON(w, http.StatusOK, codes)
}

func (s *Server) handleResolveUnknown(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := s.resolver.MarkUnknownResolved(r.Context(), code); err != nil {
		s.log.Errorw("unknown-code resolve failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "could not mark code resolved")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"code": code, "status": "resolved"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
