package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"dynastyglobe/dataset"
	"dynastyglobe/globe"
	"dynastyglobe/logging"
	"dynastyglobe/metrics"
)

// Engine is the part of globe.Engine the API drives.
type Engine interface {
	Select(ctx context.Context, key string) error
	SelectAsync(key string)
	State() globe.State
}

// Breaker exposes the circuit state of a remote dataset source.
type Breaker interface {
	State() gobreaker.State
}

// Options configures the HTTP API.
type Options struct {
	CORSOrigins []string
	SelectRate  float64 // websocket select messages per second per client
	SelectBurst int
	Breaker     Breaker // nil when datasets are read from disk
}

// Handler serves the HTTP API and the websocket endpoint.
type Handler struct {
	engine   Engine
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
}

// NewHandler wires the API to an engine and hub.
func NewHandler(engine Engine, hub *Hub, opts Options) *Handler {
	if opts.SelectRate <= 0 {
		opts.SelectRate = 2
	}
	if opts.SelectBurst < 1 {
		opts.SelectBurst = 1
	}
	return &Handler{
		engine: engine,
		hub:    hub,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Router builds the chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	origins := h.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", h.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(recordMetrics)
		r.Get("/dynasties", h.Dynasties)
		r.Get("/state", h.State)
		r.Post("/dynasties/{key}/select", h.Select)
	})

	return r
}

// DynastyData is one registry entry plus whether it is on the globe.
type DynastyData struct {
	dataset.Entry
	Active  bool `json:"active"`
	Pending bool `json:"pending"`
}

// Health reports liveness. An open dataset breaker marks the process
// degraded but still live.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"clients": h.hub.ClientCount(),
	}
	if h.opts.Breaker != nil {
		state := h.opts.Breaker.State()
		body["dataset_breaker"] = state.String()
		if state == gobreaker.StateOpen {
			body["status"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// Dynasties lists the registry in chronological order.
func (h *Handler) Dynasties(w http.ResponseWriter, r *http.Request) {
	st := h.engine.State()
	entries := dataset.Entries()
	out := make([]DynastyData, len(entries))
	for i, e := range entries {
		out[i] = DynastyData{
			Entry:   e,
			Active:  e.Key == st.Key,
			Pending: e.Key == st.PendingKey,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// State returns the engine snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.State())
}

// Select starts loading a dynasty. By default it returns 202 immediately;
// with ?wait=true it returns once the selection has been applied or failed.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !dataset.Known(key) {
		writeJSON(w, http.StatusNotFound, errorData{Error: "unknown dynasty", Key: key})
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		h.engine.SelectAsync(key)
		writeJSON(w, http.StatusAccepted, h.engine.State())
		return
	}

	err := h.engine.Select(r.Context(), key)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.engine.State())
	case errors.Is(err, globe.ErrSuperseded):
		writeJSON(w, http.StatusConflict, errorData{Error: err.Error(), Key: key})
	case errors.Is(err, dataset.ErrParse):
		writeJSON(w, http.StatusUnprocessableEntity, errorData{Error: err.Error(), Key: key})
	default:
		writeJSON(w, http.StatusBadGateway, errorData{Error: err.Error(), Key: key})
	}
}

// WebSocket upgrades the connection and attaches a client to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	limiter := rate.NewLimiter(rate.Limit(h.opts.SelectRate), h.opts.SelectBurst)
	client := NewClient(h.hub, conn, limiter, func(key string) error {
		if !dataset.Known(key) {
			return dataset.ErrUnknownKey
		}
		h.engine.SelectAsync(key)
		return nil
	})
	client.Start()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
