package intent

import (
	"strings"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// Keyword sets, matched as case-insensitive substrings
var (
	OrderKeywords    = []string{"order", "buy", "purchase", "want", "need", "get"}
	TrackKeywords    = []string{"track", "where", "status", "follow"}
	ReturnKeywords   = []string{"return", "exchange", "refund", "reason"}
	IssueKeywords    = []string{"issue", "problem", "complaint", "wrong"}
	CallbackKeywords = []string{"callback", "call back", "call me", "contact me"}
)

// signals holds everything the rules look at, computed once per message
type signals struct {
	text        string
	lower       string
	address     string
	orderNumber string
	reason      string
	phoneNumber string
}

type rule struct {
	name  string
	match func(s *signals) (domain.Intent, bool)
}

// rules is evaluated top to bottom and the first match wins. An order number
// followed by any text is the strongest signal; generic order keywords are the
// weakest and come last so they never shadow a more specific intent.
var rules = []rule{
	{name: "return_with_order_number", match: matchReturnWithOrderNumber},
	{name: "return_keyword", match: matchReturnKeyword},
	{name: "track", match: matchTrack},
	{name: "issue", match: matchIssue},
	{name: "callback", match: matchCallback},
	{name: "implicit_callback", match: matchImplicitCallback},
	{name: "place_order", match: matchPlaceOrder},
}

// Classify selects exactly one intent for a message. address is the delivery
// address supplied alongside the message and is carried on place_order intents.
// Messages no rule recognises are IntentUnmatched.
func Classify(text, address string) domain.Intent {
	in, _ := ClassifyWithRule(text, address)
	return in
}

// ClassifyWithRule is Classify that also returns the name of the rule that
// fired, or "default" for unmatched messages.
func ClassifyWithRule(text, address string) (domain.Intent, string) {
	s := newSignals(text, address)
	for _, r := range rules {
		if in, ok := r.match(s); ok {
			return in, r.name
		}
	}
	return domain.Intent{Kind: domain.IntentUnmatched}, "default"
}

func newSignals(text, address string) *signals {
	s := &signals{
		text:    text,
		lower:   strings.ToLower(text),
		address: address,
	}
	if orderNumber, ok := ExtractOrderNumber(text); ok {
		s.orderNumber = orderNumber
		s.reason = ExtractReason(text, orderNumber)
	}
	if phone, ok := ExtractPhoneNumber(text); ok {
		s.phoneNumber = phone
	}
	return s
}

func (s *signals) contains(keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s.lower, kw) {
			return true
		}
	}
	return false
}

func matchReturnWithOrderNumber(s *signals) (domain.Intent, bool) {
	if s.orderNumber == "" || s.reason == "" {
		return domain.Intent{}, false
	}
	return domain.Intent{
		Kind:        domain.IntentReturnRequest,
		OrderNumber: s.orderNumber,
		Reason:      s.reason,
	}, true
}

// A return keyword without an order number and reason asks for both.
func matchReturnKeyword(s *signals) (domain.Intent, bool) {
	if !s.contains(ReturnKeywords) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentReturnRequest}, true
}

func matchTrack(s *signals) (domain.Intent, bool) {
	if !s.contains(TrackKeywords) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentTrackOrder, OrderNumber: s.orderNumber}, true
}

func matchIssue(s *signals) (domain.Intent, bool) {
	if !s.contains(IssueKeywords) {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentIssueReport, Description: s.text}, true
}

func matchCallback(s *signals) (domain.Intent, bool) {
	if !s.contains(CallbackKeywords) && !strings.Contains(s.lower, "phone") {
		return domain.Intent{}, false
	}
	return domain.Intent{Kind: domain.IntentCallbackRequest, PhoneNumber: s.phoneNumber}, true
}

func matchImplicitCallback(s *signals) (domain.Intent, bool) {
	if s.phoneNumber == "" {
		return domain.Intent{}, false
	}
	return domain.Intent{
		Kind:        domain.IntentCallbackRequest,
		PhoneNumber: s.phoneNumber,
		Implicit:    true,
	}, true
}

func matchPlaceOrder(s *signals) (domain.Intent, bool) {
	if !s.contains(OrderKeywords) && !HasOrderQuantity(s.text) {
		return domain.Intent{}, false
	}
	return domain.Intent{
		Kind:    domain.IntentPlaceOrder,
		Items:   ExtractOrderItems(s.text),
		Address: s.address,
	}, true
}
