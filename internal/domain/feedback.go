package domain

import "time"

// Feedback is a customer rating of a chatbot answer
type Feedback struct {
	ID        string
	Tenant    Tenant
	Query     string
	Response  string
	Positive  bool
	Comment   string
	CreatedAt time.Time
}
