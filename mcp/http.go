package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/crypto/bcrypt"
)

// SessionHeader carries the session issued by initialize.
const SessionHeader = "Mcp-Session-Id"

type httpOptions struct {
	authToken         string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*httpOptions)

// WithAuthToken requires "Authorization: Bearer <token>" on /mcp. A bcrypt hash
// ("$2a$...") is compared with bcrypt; anything else is compared in constant time.
func WithAuthToken(token string) HTTPOption {
	return func(o *httpOptions) { o.authToken = token }
}

// WithShutdownTimeout bounds graceful shutdown. Default 5s.
func WithShutdownTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

func newHTTPOptions(opts []HTTPOption) httpOptions {
	o := httpOptions{readHeaderTimeout: 10 * time.Second, shutdownTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Handler returns the HTTP handler: POST /mcp for JSON-RPC and GET /health.
// Responses are gzip-compressed when the client accepts it.
func (s *Server) Handler(opts ...HTTPOption) http.Handler {
	o := newHTTPOptions(opts)
	mux := http.NewServeMux()
	mux.Handle("POST /mcp", s.requireAuth(o.authToken, http.HandlerFunc(s.handleMCP)))
	mux.HandleFunc("GET /health", s.handleHealth)
	return gzhttp.GzipHandler(mux)
}

// ListenAndServe serves Handler on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, opts ...HTTPOption) error {
	o := newHTTPOptions(opts)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(opts...),
		ReadHeaderTimeout: o.readHeaderTimeout,
	}
	s.logger.InfoContext(ctx, "starting MCP server", "transport", "http", "addr", addr,
		"name", s.info.Name, "version", s.info.Version, "auth", o.authToken != "")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireAuth(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !tokenMatches(token, got) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenMatches(want, got string) bool {
	if strings.HasPrefix(want, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(want), []byte(got)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, CodeParseError, "Parse error"))
		return
	}
	if len(body) > maxMessageSize {
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, errorResponse(nil, CodeParseError, "Parse error"))
		return
	}

	if req.Method == "initialize" {
		w.Header().Set(SessionHeader, s.createSession())
	} else if id := r.Header.Get(SessionHeader); id == "" || !s.CheckSession(id) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	resp := s.HandleMessage(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"server":    s.info.Name,
		"version":   s.info.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
