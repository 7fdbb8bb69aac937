package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/berniyo/payson-lambda/internal/lib/sl"
)

// maxNotificationBytes caps the IPN body read from the network.
const maxNotificationBytes = 64 << 10

// Response is the JSON body returned by the router.
type Response struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewRouter exposes the processor over plain HTTP for deployments outside
// Lambda. Metrics are served from gatherer.
func NewRouter(log *slog.Logger, p *Processor, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{Status: "ok"})
	})
	r.Post("/ipn", ipnHandler(log, p))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func ipnHandler(log *slog.Logger, p *Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", "handler.ipn"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			log.Error("failed to read notification body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, Response{Status: "error", Error: "could not read body"})
			return
		}

		n, err := p.Process(r.Context(), string(body))
		if err != nil {
			status := statusFor(err)
			render.Status(r, status)
			render.JSON(w, r, Response{Status: "error", Error: http.StatusText(status)})
			return
		}

		render.JSON(w, r, Response{Status: "verified", Token: n.Token})
	}
}
