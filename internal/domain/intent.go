package domain

import (
	"fmt"
	"strings"
)

// IntentKind is the business intent recognised in a message
type IntentKind string

const (
	IntentReturnRequest   IntentKind = "return_request"
	IntentTrackOrder      IntentKind = "track_order"
	IntentIssueReport     IntentKind = "issue_report"
	IntentCallbackRequest IntentKind = "callback_request"
	IntentPlaceOrder      IntentKind = "place_order"
	IntentUnmatched       IntentKind = "unmatched"
)

// OrderItem is one line of a customer order
type OrderItem struct {
	Name     string
	Quantity int
}

// String renders the item the way order details are stored, e.g. "Milo: 3"
func (i OrderItem) String() string {
	return fmt.Sprintf("%s: %d", i.Name, i.Quantity)
}

// FormatOrderItems joins items into the stored order details string
func FormatOrderItems(items []OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, ", ")
}

// Intent is the classification result for a message. Only the payload fields
// belonging to Kind are meaningful; an empty required field means the customer
// still has to supply it.
type Intent struct {
	Kind IntentKind

	OrderNumber string // return_request, track_order
	Reason      string // return_request
	Description string // issue_report
	PhoneNumber string // callback_request
	Items       []OrderItem
	Address     string // place_order

	// Implicit marks a callback inferred from a bare phone number
	Implicit bool
}

// Complete reports whether every entity the intent needs is present
func (i Intent) Complete() bool {
	switch i.Kind {
	case IntentReturnRequest:
		return i.OrderNumber != "" && i.Reason != ""
	case IntentTrackOrder:
		return i.OrderNumber != ""
	case IntentIssueReport:
		return true
	case IntentCallbackRequest:
		return i.PhoneNumber != ""
	case IntentPlaceOrder:
		return len(i.Items) > 0
	}
	return false
}

// Structured reports whether the intent is handled by an action handler
func (i Intent) Structured() bool {
	return i.Kind != IntentUnmatched && i.Kind != ""
}
