package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/api"
	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/go-chi/chi/v5"
)

// recordRoutes maps the listing path segment to the record kind it returns
var recordRoutes = map[string]domain.RecordKind{
	"orders":    domain.RecordKindNewOrder,
	"returns":   domain.RecordKindReturnRequest,
	"issues":    domain.RecordKindIssue,
	"callbacks": domain.RecordKindCallback,
	"tracking":  domain.RecordKindTrackOrder,
}

// legacyRecordRoutes are the listing paths existing dashboards poll. They
// answer with a bare JSON array and "2006-01-02 15:04:05" timestamps.
var legacyRecordRoutes = map[string]domain.RecordKind{
	"sabineworders": domain.RecordKindNewOrder,
	"sabireturns":   domain.RecordKindReturnRequest,
	"sabiissues":    domain.RecordKindIssue,
	"sabicallbacks": domain.RecordKindCallback,
	"sabitracking":  domain.RecordKindTrackOrder,
}

const legacyTimestampLayout = "2006-01-02 15:04:05"

type RecordLister interface {
	List(ctx context.Context, kind domain.RecordKind) ([]*domain.ActionRecord, error)
}

type RecordHandler struct {
	svc RecordLister
}

func NewRecordHandler(svc RecordLister) *RecordHandler {
	return &RecordHandler{svc: svc}
}

type RecordResponse struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	Name             string `json:"name"`
	Timestamp        string `json:"timestamp"`
	OrderDetails     string `json:"order_details,omitempty"`
	Address          string `json:"address,omitempty"`
	OrderNumber      string `json:"order_number,omitempty"`
	Reason           string `json:"reason,omitempty"`
	IssueDescription string `json:"issue_description,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
}

func recordToResponse(rec *domain.ActionRecord, timestampLayout string) RecordResponse {
	resp := RecordResponse{
		ID:               rec.ID,
		Kind:             string(rec.Kind),
		Name:             rec.UserName,
		Timestamp:        rec.CreatedAt.UTC().Format(timestampLayout),
		OrderDetails:     rec.OrderDetails,
		Address:          rec.Address,
		OrderNumber:      rec.OrderNumber,
		Reason:           rec.Reason,
		IssueDescription: rec.IssueDescription,
		PhoneNumber:      rec.PhoneNumber,
	}
	if rec.Kind == domain.RecordKindCallback {
		resp.Reason = rec.CallbackReason
	}
	return resp
}

// List returns the sabi records of the kind named in the path, newest first
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	segment := chi.URLParam(r, "kind")
	kind, ok := recordRoutes[segment]
	legacyKind, legacy := legacyRecordRoutes[segment]
	if legacy {
		kind = legacyKind
	} else if !ok {
		api.Error(w, http.StatusNotFound, "unknown record type")
		return
	}

	records, err := h.svc.List(r.Context(), kind)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	layout := time.RFC3339
	if legacy {
		layout = legacyTimestampLayout
	}
	resp := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, recordToResponse(rec, layout))
	}

	if legacy {
		api.JSON(w, http.StatusOK, resp)
		return
	}
	api.Success(w, http.StatusOK, resp)
}
