package domain

import (
	"fmt"
	"time"
)

// RecordKind identifies the customer record table an action writes to
type RecordKind string

const (
	RecordKindNewOrder      RecordKind = "new_order"
	RecordKindReturnRequest RecordKind = "return_request"
	RecordKindIssue         RecordKind = "issue"
	RecordKindCallback      RecordKind = "callback"
	RecordKindTrackOrder    RecordKind = "track_order"
)

// CallbackReasonRequested is the reason stored on every callback record
const CallbackReasonRequested = "Requested Callback"

// RecordKinds lists every record kind in a stable order
var RecordKinds = []RecordKind{
	RecordKindNewOrder,
	RecordKindReturnRequest,
	RecordKindIssue,
	RecordKindCallback,
	RecordKindTrackOrder,
}

// ActionRecord is a persisted customer request produced by a structured intent.
// Records are append-only.
type ActionRecord struct {
	ID        string
	Kind      RecordKind
	UserName  string
	CreatedAt time.Time

	OrderDetails     string // new_order
	Address          string // new_order
	OrderNumber      string // return_request, track_order
	Reason           string // return_request
	IssueDescription string // issue
	PhoneNumber      string // callback
	CallbackReason   string // callback
}

// ParseRecordKind resolves a record kind name
func ParseRecordKind(name string) (RecordKind, error) {
	k := RecordKind(name)
	if !isValidRecordKind(k) {
		return "", ErrInvalidRecordKind
	}
	return k, nil
}

// ValidateActionRecord validates an ActionRecord before it is persisted
func ValidateActionRecord(r *ActionRecord) error {
	if r == nil {
		return fmt.Errorf("action record cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("action record ID is required")
	}

	if r.CreatedAt.IsZero() {
		return fmt.Errorf("action record CreatedAt is required")
	}

	switch r.Kind {
	case RecordKindNewOrder:
		if r.OrderDetails == "" {
			return fmt.Errorf("new order OrderDetails is required")
		}
	case RecordKindReturnRequest:
		if r.OrderNumber == "" || r.Reason == "" {
			return fmt.Errorf("return request OrderNumber and Reason are required")
		}
	case RecordKindIssue:
		if r.IssueDescription == "" {
			return fmt.Errorf("issue IssueDescription is required")
		}
	case RecordKindCallback:
		if r.PhoneNumber == "" {
			return fmt.Errorf("callback PhoneNumber is required")
		}
	case RecordKindTrackOrder:
		if r.OrderNumber == "" {
			return fmt.Errorf("track order OrderNumber is required")
		}
	default:
		return fmt.Errorf("action record Kind is invalid: %s", r.Kind)
	}

	return nil
}

func isValidRecordKind(k RecordKind) bool {
	switch k {
	case RecordKindNewOrder, RecordKindReturnRequest, RecordKindIssue,
		RecordKindCallback, RecordKindTrackOrder:
		return true
	}
	return false
}
