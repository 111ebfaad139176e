// Package server exposes metrics, health and entity listings over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"febos_exporter/internal/entity"
)

const urlKey = "key"

// Source provides entity records and coordinator state.
type Source interface {
	Records(kind entity.Kind) []entity.Record
	Ready() bool
	LastError() error
	LastSuccess() time.Time
}

// record is the JSON shape of a listed entity.
type record struct {
	entity.Record
	State any `json:"state"`
}

type health struct {
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

type server struct {
	source Source
	logger *slog.Logger
}

// NewRouter builds the HTTP router.
func NewRouter(source Source, gatherer prometheus.Gatherer, logger *slog.Logger) *mux.Router {
	s := &server{source: source, logger: logger}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/sensors", s.list(entity.KindSensor)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/binary_sensors", s.list(entity.KindBinarySensor)).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/sensors/{%s}", urlKey), s.get(entity.KindSensor)).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/binary_sensors/{%s}", urlKey), s.get(entity.KindBinarySensor)).Methods(http.MethodGet)
	apiRouter.Use(s.logMiddleware)

	return router
}

// health responds 503 until setup succeeded. Refresh failures after that
// are reported but keep the status OK since cached values are still served.
func (s *server) health(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok"}
	code := http.StatusOK
	if !s.source.Ready() {
		h.Status = "starting"
		code = http.StatusServiceUnavailable
	}
	if err := s.source.LastError(); err != nil {
		h.Error = err.Error()
		if h.Status == "ok" {
			h.Status = "degraded"
		}
	}
	if last := s.source.LastSuccess(); !last.IsZero() {
		h.LastRefresh = &last
	}
	respond(w, code, h)
}

func (s *server) list(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := s.source.Records(kind)
		out := make([]record, 0, len(records))
		for _, rec := range records {
			out = append(out, record{Record: rec, State: rec.Value.Value()})
		}
		respond(w, http.StatusOK, out)
	}
}

func (s *server) get(kind entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)[urlKey]
		for _, rec := range s.source.Records(kind) {
			if rec.Key == key {
				respond(w, http.StatusOK, record{Record: rec, State: rec.Value.Value()})
				return
			}
		}
		respond(w, http.StatusNotFound, map[string]string{"error": "unknown key " + key})
	}
}

func (s *server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
