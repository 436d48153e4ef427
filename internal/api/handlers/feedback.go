package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/api"
	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/service"
)

type FeedbackSubmitter interface {
	Submit(ctx context.Context, input service.FeedbackInput) (*domain.Feedback, error)
}

type FeedbackHandler struct {
	svc FeedbackSubmitter
}

func NewFeedbackHandler(svc FeedbackSubmitter) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type FeedbackRequest struct {
	App      string `json:"app"`
	Query    string `json:"query"`
	Response string `json:"response"`
	Rating   bool   `json:"rating"`
	Comment  string `json:"comment"`
}

type FeedbackResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := domain.ParseTenant(req.App)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	f, err := h.svc.Submit(r.Context(), service.FeedbackInput{
		Tenant:   tenant,
		Query:    req.Query,
		Response: req.Response,
		Positive: req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, FeedbackResponse{Status: "success", ID: f.ID})
}
