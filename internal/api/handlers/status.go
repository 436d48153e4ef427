package handlers

import (
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/api"
)

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// Status reports that the API is up
func Status(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, StatusResponse{
			Status:  "online",
			Message: "AI Chatbot API is up and running!",
			Version: version,
		})
	}
}
