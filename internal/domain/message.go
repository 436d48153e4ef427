package domain

import "strings"

// Message is a single inbound customer chat message
type Message struct {
	Tenant   Tenant
	UserName string
	Text     string
	Address  string // Optional delivery address supplied by the chat integration
}

// NewMessage creates a Message
func NewMessage(tenant Tenant, userName, text, address string) Message {
	return Message{
		Tenant:   tenant,
		UserName: userName,
		Text:     text,
		Address:  address,
	}
}

// ValidateMessage checks the fields required to route a message. UserName may
// be empty; records are filed under an empty name.
func ValidateMessage(m Message) error {
	if !isValidTenant(m.Tenant) {
		return ErrInvalidTenant
	}
	if strings.TrimSpace(m.Text) == "" {
		return NewDomainErrorWithCause(ErrCodeValidation, "query is required", ErrMissingRequiredField)
	}
	return nil
}
