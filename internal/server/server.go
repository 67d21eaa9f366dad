package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/llm"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/outreach"
	"github.com/jonathan/vendor-outreach/internal/scheduler"
	"github.com/jonathan/vendor-outreach/internal/server/ratelimit"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Store is the persistence surface the HTTP handlers need
type Store interface {
	outreach.MessageStore
	GetThread(ctx context.Context, id uuid.UUID) (*types.VendorThread, error)
	GetThreadContext(ctx context.Context, threadID uuid.UUID) (*types.ThreadContext, error)
	ListPendingApproval(ctx context.Context, eventID uuid.UUID) ([]types.VendorThread, error)
	OverrideThreadStatus(ctx context.Context, id uuid.UUID, to types.ThreadStatus) (bool, error)
	TransitionThread(ctx context.Context, id uuid.UUID, from, to types.ThreadStatus, m db.ThreadMutation) (bool, error)
	ArmTimer(ctx context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) (*db.FollowUpTimer, error)
	AppendLog(ctx context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error)
}

// Dispatcher starts and approves vendor outreach
type Dispatcher interface {
	Start(ctx context.Context, vendorID uuid.UUID) (*outreach.StartResult, error)
	Approve(ctx context.Context, vendorID uuid.UUID, approvedBy string) (*outreach.ApproveResult, error)
	BulkApprove(ctx context.Context, vendorIDs []uuid.UUID, approvedBy string) []outreach.ApproveResult
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	db            *db.DB
	store         Store
	dispatcher    Dispatcher
	sender        *outreach.Sender
	followUpDelay time.Duration
	rateLimiter   *ratelimit.Limiter
	validate      *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	Transport   mail.Transport
	// LLMClient personalizes first outreach messages; nil falls back to
	// the deterministic template
	LLMClient          llm.Client
	FirstFollowUpDelay time.Duration
	FollowUpDelay      time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	outreachCfg := outreach.DefaultConfig()
	if cfg.FirstFollowUpDelay > 0 {
		outreachCfg.FirstFollowUpDelay = cfg.FirstFollowUpDelay
	}
	dispatcher := outreach.NewDispatcher(database, cfg.Transport, cfg.LLMClient, outreachCfg)

	delay := cfg.FollowUpDelay
	if delay <= 0 {
		delay = scheduler.DefaultConfig().NextFollowUpDelay
	}

	s := newServer(database, dispatcher, outreach.NewSender(database, cfg.Transport), delay)
	s.db = database
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newServer wires handlers over the given dependencies; the HTTP listener
// is attached by New
func newServer(store Store, dispatcher Dispatcher, sender *outreach.Sender, followUpDelay time.Duration) *Server {
	return &Server{
		store:         store,
		dispatcher:    dispatcher,
		sender:        sender,
		followUpDelay: followUpDelay,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		validate:      validator.New(),
	}
}

// handler builds the routed and wrapped HTTP handler
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /vendors/{id}/outreach", s.handleStartOutreach)
	mux.HandleFunc("POST /outreach/approve", s.handleApproveOutreach)
	mux.HandleFunc("POST /threads/{id}/reply", s.handleReplyToThread)
	mux.HandleFunc("PATCH /threads/{id}/status", s.handleUpdateThreadStatus)
	mux.HandleFunc("GET /threads/{id}", s.handleGetThread)
	mux.HandleFunc("GET /events/{id}/pending-approval", s.handleGetPendingApproval)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed per-endpoint budgets
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := s.rateLimiter.Allow(s.extractClientID(r), r.Method, r.URL.Path)
		if !allowed {
			if retryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor maps an error to its HTTP status and writes it
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// pathUUID parses the {id} path segment
func pathUUID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}
