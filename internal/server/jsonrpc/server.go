package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/LeJamon/goOracleHub/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server serves the hub's JSON-RPC API over HTTP
type Server struct {
	handler *Handler
	router  *mux.Router
	log     *logger.Entry
	httpSrv *http.Server
}

// NewServer creates a new JSON-RPC server instance
func NewServer(handler *Handler, corsOrigins []string, log *logger.Log) *Server {
	s := &Server{
		handler: handler,
		router:  mux.NewRouter(),
		log:     log.WithComponent("rpc"),
	}

	s.router.HandleFunc("/", s.serveRPC).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.serveHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpSrv = &http.Server{
		Handler:           c.Handler(s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// ListenAndServe starts serving on addr and blocks until the server stops
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv.Addr = addr
	s.log.WithFields(logger.Fields{"addr": addr}).Info("rpc server listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the underlying router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, &Error{Code: CodeParseError, Message: "Parse error"})
		return
	}

	log := s.log.WithFields(logger.Fields{"request_id": reqID, "method": req.Method})
	log.Debug("rpc request")

	result, rpcErr := s.handler.Handle(r.Context(), req.Method, req.Params)
	if rpcErr != nil {
		log.WithFields(logger.Fields{"code": rpcErr.Code}).Info("rpc request failed")
		s.writeError(w, req.ID, rpcErr)
		return
	}

	s.writeJSON(w, Response{
		JsonRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) writeError(w http.ResponseWriter, id interface{}, rpcErr *Error) {
	s.writeJSON(w, Response{
		JsonRPC: "2.0",
		Error:   rpcErr,
		ID:      id,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}
