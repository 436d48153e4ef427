package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/api"
	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/service"
	"github.com/rs/zerolog"
)

type ChatRouter interface {
	RouteQuery(ctx context.Context, msg domain.Message) (string, error)
}

type ChatHandler struct {
	svc    ChatRouter
	logger zerolog.Logger
}

func NewChatHandler(svc ChatRouter, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

type ChatRequest struct {
	App     string `json:"app"`
	Name    string `json:"name"`
	Query   string `json:"query"`
	Address string `json:"address"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat answers one customer message. An unknown app is answered, not rejected,
// so chat integrations can show the reply as is.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := domain.ParseTenant(req.App)
	if err != nil {
		api.JSON(w, http.StatusOK, ChatResponse{Answer: service.MsgInvalidApp})
		return
	}

	answer, err := h.svc.RouteQuery(r.Context(), domain.NewMessage(tenant, req.Name, req.Query, req.Address))
	if err != nil {
		if api.DomainErrorToHTTP(err) >= http.StatusInternalServerError {
			logger := logging.FromContext(r.Context(), h.logger)
			logger.Error().Err(err).Str("tenant", string(tenant)).Msg("chat: routing query failed")
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, ChatResponse{Answer: answer})
}
