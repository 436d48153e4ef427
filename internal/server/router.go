package server

import (
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/api"
	"github.com/cloo-solutions/shopdesk/internal/api/handlers"
	"github.com/cloo-solutions/shopdesk/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Logger          zerolog.Logger
	Version         string
	ChatHandler     *handlers.ChatHandler
	DocumentHandler *handlers.DocumentHandler
	RecordHandler   *handlers.RecordHandler
	FeedbackHandler *handlers.FeedbackHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/", handlers.Status(cfg.Version))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chatbot", cfg.ChatHandler.Chat)
	r.Post("/upload-document", cfg.DocumentHandler.Upload)
	r.Post("/feedback", cfg.FeedbackHandler.Submit)

	r.Get("/sabi/{kind}", cfg.RecordHandler.List)

	return r
}
