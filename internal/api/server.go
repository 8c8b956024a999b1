package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/metrics"
	"github.com/pbaille/journal/internal/store"
)

// Reflections is the part of the store the server needs
type Reflections interface {
	ReadRaw() ([]byte, error)
	Prepend(record json.RawMessage) (int, error)
	Delete(id string) (int, error)
}

// Server handles HTTP requests for the reflections API and the front-end files
type Server struct {
	store     Reflections
	addr      string
	staticDir string
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Server
type Option func(*Server)

// WithStaticDir sets the directory served for GET requests outside the API
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithLogger sets the server logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a new API server
func New(st Reflections, addr string, opts ...Option) *Server {
	s := &Server{
		store:     st,
		addr:      addr,
		staticDir: ".",
		log:       zerolog.Nop(),
		metrics:   metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed handler with CORS and request logging applied
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(recoverPanics)
	r.Use(s.instrument)

	// Reflections (the front-end appends a cache-busting suffix, so match by prefix)
	r.PathPrefix("/api/reflections").HandlerFunc(s.listReflections).Methods(http.MethodGet)
	r.HandleFunc("/api/save_reflection", s.saveReflection).Methods(http.MethodPost)
	r.HandleFunc("/api/delete_reflection", s.deleteReflection).Methods(http.MethodPost)

	// Health check
	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Everything else is the static front-end
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir))).Methods(http.MethodGet, http.MethodHead)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return withCORS(s.withRequestID(r))
}

// Run starts the HTTP server and shuts it down when ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("addr", s.addr).
			Str("static_dir", s.staticDir).
			Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.log.Error().Stack().Err(err).Str("addr", s.addr).Msg("server failed")
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.log.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Stack().Err(err).Msg("shutdown failed")
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// withCORS adds CORS headers to every response and answers preflight requests
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusResponse is the body of every save and delete response
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// listReflections returns the file as stored. Read failures still answer 200
// with an empty array.
func (s *Server) listReflections(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ReadRaw()
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Stack().Err(err).Msg("reading reflections")
		data = []byte("[]")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) saveReflection(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, "save", fmt.Errorf("read body: %w", err))
		return
	}

	var entry json.RawMessage
	if err := json.Unmarshal(body, &entry); err != nil {
		s.fail(w, r, "save", err)
		return
	}

	total, err := s.store.Prepend(entry)
	s.metrics.RecordWrite("save", err)
	if err != nil {
		s.fail(w, r, "save", err)
		return
	}

	id, _ := domain.RecordID(entry)
	log.Info().Str("entry_id", id).Int("total", total).Msg("reflection saved")
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Entry saved"})
}

func (s *Server) deleteReflection(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, "delete", fmt.Errorf("read body: %w", err))
		return
	}

	var req map[string]json.RawMessage
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, r, "delete", err)
		return
	}

	id, ok := domain.RecordID(body)
	if !ok || missingID(req["id"]) {
		s.fail(w, r, "delete", errors.New("No ID provided"))
		return
	}

	removed, err := s.store.Delete(id)
	s.metrics.RecordWrite("delete", err)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(w, r, "delete", errors.New("Entry not found"))
		return
	}
	if err != nil {
		s.fail(w, r, "delete", err)
		return
	}

	log.Info().Str("entry_id", id).Int("removed", removed).Msg("reflection deleted")
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Entry deleted"})
}

// missingID reports whether a delete request carries no usable id: absent,
// null, false, a numeric zero, or an empty string, array or object. The
// strings "0" and "false" are real ids.
func missingID(raw json.RawMessage) bool {
	tok := strings.TrimSpace(string(raw))
	switch tok {
	case "", "null", "false", `""`, "[]", "{}":
		return true
	}
	if tok[0] == '[' || tok[0] == '{' {
		var v interface{}
		if json.Unmarshal(raw, &v) == nil {
			switch c := v.(type) {
			case []interface{}:
				return len(c) == 0
			case map[string]interface{}:
				return len(c) == 0
			}
		}
		return false
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f == 0
	}
	return false
}

// fail reports every save/delete failure as a 500 carrying the error text
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	zerolog.Ctx(r.Context()).Error().Stack().Err(err).Str("op", op).Msg("request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, StatusResponse{Status: "error", Message: message})
}
