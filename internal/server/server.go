package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/internal/forecast"
	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/energy"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"github.com/iwvelando/heatpump-forecast/pkg/output"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	provider      forecast.ModelProvider
}

// NewHandler constructs the HTTP handler that serves the projection API. A
// nil provider makes projections fall back to configured or default models.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, provider forecast.ModelProvider) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, provider: provider}

	router := chi.NewRouter()
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(limitBody(maxUploadSize))

	router.Route("/api", func(r chi.Router) {
		r.Post("/projection", h.handleProjection)
		r.Post("/aid/cee", h.handleCEE)
		r.Post("/evolution/fit", h.handleFit)
		r.Get("/version", h.handleVersion)
	})

	return router
}

type projectionResponse struct {
	RunID    string            `json:"runId"`
	Forecast forecast.Forecast `json:"forecast"`
	CSV      string            `json:"csv"`
	Duration string            `json:"duration"`
}

type fitRequest struct {
	Energy string              `json:"energy"`
	Series pricehistory.Series `json:"series"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	start := time.Now()

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(body))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := forecast.Run(r.Context(), h.logger, *cfg, h.provider)
	if err != nil {
		h.respondError(w, statusForError(err), fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, []forecast.Forecast{result}); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := projectionResponse{
		RunID:    RequestID(r.Context()),
		Forecast: result,
		CSV:      csvBuf.String(),
		Duration: elapsed.String(),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("runId", response.RunID),
		zap.String("project", result.Name),
		zap.Int("years", len(result.Projection.Series)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleCEE(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCEE"

	var household aid.Household
	if !h.decodeJSON(w, r, &household, op) {
		return
	}

	result, err := aid.Evaluate(household)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleFit(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFit"

	var request fitRequest
	if !h.decodeJSON(w, r, &request, op) {
		return
	}

	energyType, err := evolution.ParseEnergyType(request.Energy)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := request.Series.CheckOrder(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	analysis, err := history.Inspect(request.Series, energyType)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.respondError(w, http.StatusBadRequest, "empty request body", op)
		return nil, false
	}
	return body, true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, target any, op string) bool {
	body, ok := h.readBody(w, r, op)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, target); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// statusForError maps engine errors onto HTTP statuses: missing or unusable
// facts are 422, anything else is a malformed request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, energy.ErrMissingRequiredFact),
		errors.Is(err, aid.ErrMissingRequiredFact),
		errors.Is(err, energy.ErrUnsupportedHeatingType),
		errors.Is(err, history.ErrInsufficientHistory),
		errors.Is(err, history.ErrNoValidPrices):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Server runs the API until its context is canceled.
type Server struct {
	logger          *zap.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// New returns a Server listening on cfg.Address. A positive
// cfg.RequestTimeout answers 504 once a request's context expires.
func New(logger *zap.Logger, cfg *Config, handler http.Handler) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout > 0 {
		handler = middleware.Timeout(cfg.RequestTimeout)(handler)
	}
	return &Server{
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves requests until ctx is done, then gives in-flight requests
// the shutdown timeout to complete.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			zap.String("op", "server.Run"),
			zap.String("addr", s.server.Addr),
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown initiated", zap.String("op", "server.Run"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed",
				zap.String("op", "server.Run"),
				zap.Error(err),
			)
			return s.server.Close()
		}
	}
	return nil
}
