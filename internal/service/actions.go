package service

import (
	"fmt"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// Customer-facing replies for structured intents
const (
	MsgReturnConfirmed     = "Thank you for submitting your return request. We'll process it right away and contact you within 24 hours."
	MsgReturnClarification = "To process your return, please provide your order number and reason.\nExample: Order Number: GL78340824 Reason: Wrong size delivered"

	MsgTrackConfirmed     = "Thank you! We're tracking your order %s. You'll receive updates shortly."
	MsgTrackClarification = "Please provide your 10-digit order number (e.g., GL09395824) to track your order."

	MsgIssueConfirmed = "Thank you for reporting this issue. Our team will investigate and contact you shortly."

	MsgCallbackConfirmed         = "Thank you for requesting a callback! We'll call you shortly on %s from our customer service number."
	MsgImplicitCallbackConfirmed = "Thank you! A customer service representative will call you back shortly on %s."
	MsgCallbackClarification     = "Please provide your phone number (11 digits) for the callback."

	MsgOrderConfirmed     = "Thank you for your order! We've saved the following details:\nItems: %s\nDelivery Address: %s\nWe'll process your order right away!"
	MsgOrderClarification = "Thank you for choosing to place an order! Please share your order details in the following format:\nItem name (quantity packs/cans/bottles)\nExample: Milo (3 cans), 5alive drink (1 pack)"

	// AddressNotProvided fills the order confirmation when the chat integration sent no address
	AddressNotProvided = "Not provided"
)

// ActionResult is the outcome of handling a structured intent. Record is nil
// when the customer still has to supply something and Message asks for it.
type ActionResult struct {
	Record  *domain.ActionRecord
	Message string
}

// HandleIntent turns a structured intent into the record to persist and the
// reply to send. It does not persist anything.
func HandleIntent(in domain.Intent, userName string, now time.Time) ActionResult {
	return handleIntent(in, userName, now, &DefaultUUIDGenerator{})
}

func handleIntent(in domain.Intent, userName string, now time.Time, ids UUIDGenerator) ActionResult {
	newRecord := func(kind domain.RecordKind) *domain.ActionRecord {
		return &domain.ActionRecord{
			ID:        ids.NewString(),
			Kind:      kind,
			UserName:  userName,
			CreatedAt: now.UTC(),
		}
	}

	switch in.Kind {
	case domain.IntentReturnRequest:
		if !in.Complete() {
			return ActionResult{Message: MsgReturnClarification}
		}
		rec := newRecord(domain.RecordKindReturnRequest)
		rec.OrderNumber = in.OrderNumber
		rec.Reason = in.Reason
		return ActionResult{Record: rec, Message: MsgReturnConfirmed}

	case domain.IntentTrackOrder:
		if !in.Complete() {
			return ActionResult{Message: MsgTrackClarification}
		}
		rec := newRecord(domain.RecordKindTrackOrder)
		rec.OrderNumber = in.OrderNumber
		return ActionResult{Record: rec, Message: fmt.Sprintf(MsgTrackConfirmed, in.OrderNumber)}

	case domain.IntentIssueReport:
		rec := newRecord(domain.RecordKindIssue)
		rec.IssueDescription = in.Description
		return ActionResult{Record: rec, Message: MsgIssueConfirmed}

	case domain.IntentCallbackRequest:
		if !in.Complete() {
			return ActionResult{Message: MsgCallbackClarification}
		}
		rec := newRecord(domain.RecordKindCallback)
		rec.PhoneNumber = in.PhoneNumber
		rec.CallbackReason = domain.CallbackReasonRequested
		msg := MsgCallbackConfirmed
		if in.Implicit {
			msg = MsgImplicitCallbackConfirmed
		}
		return ActionResult{Record: rec, Message: fmt.Sprintf(msg, in.PhoneNumber)}

	case domain.IntentPlaceOrder:
		if !in.Complete() {
			return ActionResult{Message: MsgOrderClarification}
		}
		details := domain.FormatOrderItems(in.Items)
		rec := newRecord(domain.RecordKindNewOrder)
		rec.OrderDetails = details
		rec.Address = in.Address
		address := in.Address
		if address == "" {
			address = AddressNotProvided
		}
		return ActionResult{Record: rec, Message: fmt.Sprintf(MsgOrderConfirmed, details, address)}
	}

	return ActionResult{}
}
