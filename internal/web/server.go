package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/binopt/config"
	"github.com/vadiminshakov/binopt/internal"
)

const maxRequestBytes = 1 << 16

// maxSteps keeps a single request from allocating an unbounded lattice.
const maxSteps = 5000

// priceRequest body of POST /price. Numbers may be JSON numbers or strings.
type priceRequest struct {
	Spot        decimal.Decimal `json:"spot"`
	Years       decimal.Decimal `json:"years"`
	Volatility  decimal.Decimal `json:"volatility"`
	Steps       int             `json:"steps"`
	Strike      decimal.Decimal `json:"strike"`
	Rate        decimal.Decimal `json:"rate"`
	Dividend    decimal.Decimal `json:"dividend"`
	Type        string          `json:"type"`
	Style       string          `json:"style"`
	Diagnostics bool            `json:"diagnostics"`
}

type priceResponse struct {
	RequestID    string           `json:"request_id"`
	Price        decimal.Decimal  `json:"price"`
	BlackScholes *decimal.Decimal `json:"black_scholes,omitempty"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (r priceRequest) job(name string) config.Job {
	return config.Job{
		Name:        name,
		Spot:        r.Spot.String(),
		Years:       r.Years.String(),
		Volatility:  r.Volatility.String(),
		Steps:       r.Steps,
		Strike:      r.Strike.String(),
		Rate:        r.Rate.String(),
		Dividend:    r.Dividend.String(),
		Type:        r.Type,
		Style:       r.Style,
		Diagnostics: r.Diagnostics,
	}
}

// Server exposes the pricer over HTTP. Every request prices on its own lattice.
type Server struct {
	Addr   string
	logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, logger: logger}
}

// Handler returns the routes served by Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/price", s.handlePrice)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("pricing endpoint listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{RequestID: requestID, Error: "method not allowed"})
		return
	}

	var req priceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		logger.Warn("invalid pricing request", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				RequestID: requestID,
				Error:     fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.Steps > maxSteps {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			RequestID: requestID,
			Error:     fmt.Sprintf("steps must not exceed %d, got %d", maxSteps, req.Steps),
		})
		return
	}

	job, err := req.job(requestID).Resolve()
	if err != nil {
		logger.Warn("rejected pricing request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	result, err := internal.Evaluate(logger, job)
	if err != nil {
		logger.Warn("pricing failed", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	resp := priceResponse{RequestID: requestID, Price: decimal.NewFromFloat(result.Price)}
	if result.BlackScholes != nil {
		reference := decimal.NewFromFloat(*result.BlackScholes)
		resp.BlackScholes = &reference
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
