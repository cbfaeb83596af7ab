package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/pos/internal/health"
)

const (
	maxPayloadBytes = 1 << 20
	requestTimeout  = 30 * time.Second
)

// Dispatcher выполняет команду по имени; реализуется commands.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, payload json.RawMessage) (any, error)
	Names() []string
}

// Options: необязательные части HTTP-поверхности.
type Options struct {
	Health         *healthcheck.Handler
	MetricsHandler http.Handler
	AllowedOrigins []string
	Logger         *log.Entry
}

// NewRouter собирает chi-роутер: командный эндпоинт, health-checks и /metrics.
func NewRouter(dispatcher Dispatcher, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	if opts.Health == nil {
		opts.Health = healthcheck.NewHandler("")
	}
	if opts.MetricsHandler == nil {
		opts.MetricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", opts.Health.ServeHTTP)
	r.Get("/livez", healthcheck.LivenessHandler)
	r.Get("/readyz", opts.Health.ReadinessHandler)
	r.Handle("/metrics", opts.MetricsHandler)

	h := &commandHandler{dispatcher: dispatcher, logger: logger}
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Get("/commands", h.list)
		r.Post("/commands/{command}", h.invoke)
	})

	return r
}

type commandHandler struct {
	dispatcher Dispatcher
	logger     *log.Entry
}

func (h *commandHandler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"commands": h.dispatcher.Names()}, h.logger)
}

func (h *commandHandler) invoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body", h.logger)
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), command, body)
	if err != nil {
		writeError(w, StatusOf(err), err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}

// StatusOf сопоставляет вид доменной ошибки HTTP-статусу.
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindAlreadyExists:
		return http.StatusConflict
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindLock:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *log.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, logger *log.Entry) {
	writeJSON(w, status, map[string]string{"error": message}, logger)
}
