// Package api exposes the backtest engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Server serves backtest requests against a single engine.
type Server struct {
	engine     engine.Engine
	log        *logger.Logger
	router     *mux.Router
	httpServer *http.Server
}

// BacktestRequest is the JSON body of a backtest request.
// Dates accept either 2006-01-02 or RFC 3339.
type BacktestRequest struct {
	Symbol         string          `json:"symbol"`
	Timeframe      types.Timeframe `json:"timeframe"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	InitialCapital float64         `json:"initial_capital"`
	Seed           *int64          `json:"seed,omitempty"`
}

// BatchRequest is the JSON body of a batch request.
type BatchRequest struct {
	Runs []BacktestRequest `json:"runs"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type timeframeResponse struct {
	Value   types.Timeframe `json:"value"`
	Label   string          `json:"label"`
	Seconds int64           `json:"seconds"`
}

// NewServer creates a server and registers its routes.
func NewServer(backtestEngine engine.Engine, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		engine:     backtestEngine,
		log:        log,
		router:     mux.NewRouter(),
		httpServer: nil,
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/timeframes", s.handleTimeframes).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/config/schema", s.handleConfigSchema).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/backtests", s.handleBacktest).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/backtests/batch", s.handleBatch).Methods(http.MethodPost)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeUnknown, err, "failed to listen on %s", address)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server started", zap.String("address", listener.Addr().String()))

		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}

		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.log.Info("HTTP server shutting down")

	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) handleTimeframes(w http.ResponseWriter, _ *http.Request) {
	response := make([]timeframeResponse, 0, len(types.AllTimeframes))
	for _, tf := range types.AllTimeframes {
		response = append(response, timeframeResponse{
			Value:   tf,
			Label:   tf.Label(),
			Seconds: int64(tf.Duration().Seconds()),
		})
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleConfigSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := s.engine.GetConfigSchema()
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(schema))
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var body BacktestRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	request, err := body.toEngineRequest()
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.engine.Run(r.Context(), request)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.log.Debug("Backtest served",
		zap.String("id", result.ID),
		zap.String("symbol", result.Symbol),
		zap.Int("bars", len(result.Series)),
	)

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	if len(body.Runs) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeMissingParameter, "runs must not be empty"))

		return
	}

	requests := make([]engine.Request, 0, len(body.Runs))
	for i, run := range body.Runs {
		request, err := run.toEngineRequest()
		if err != nil {
			s.writeError(w, errors.Wrapf(errors.GetCode(err), err, "invalid run %d", i))

			return
		}

		requests = append(requests, request)
	}

	results, err := s.engine.RunBatch(r.Context(), requests, engine.LifecycleCallbacks{
		OnBatchStart: nil,
		OnBatchEnd:   nil,
		OnRunStart:   nil,
		OnRunEnd:     nil,
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err)
	}

	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", zap.Error(err))
	}

	s.writeJSON(w, status, ErrorResponse{
		Code:    errors.GetCode(err),
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeDataNotFound):
		return http.StatusNotFound
	case errors.HasCode(err, errors.ErrCodeBacktestCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (b BacktestRequest) toEngineRequest() (engine.Request, error) {
	start, err := parseDate(b.StartDate)
	if err != nil {
		return engine.Request{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid start_date %q", b.StartDate)
	}

	end, err := parseDate(b.EndDate)
	if err != nil {
		return engine.Request{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid end_date %q", b.EndDate)
	}

	seed := optional.None[int64]()
	if b.Seed != nil {
		seed = optional.Some(*b.Seed)
	}

	return engine.Request{
		Symbol:         b.Symbol,
		Timeframe:      b.Timeframe,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: b.InitialCapital,
		Seed:           seed,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, value)
}
