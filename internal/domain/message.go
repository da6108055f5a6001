package domain

import "time"

// Message is an acknowledgment sent by a finance officer to a donor.
type Message struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	UserEmail string    `json:"user_email"`
	MessageBy string    `json:"message_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageFilter selects messages. Zero fields are ignored.
type MessageFilter struct {
	MessageBy string
	UserEmail string
}

// Matches reports whether m satisfies the filter.
func (f MessageFilter) Matches(m *Message) bool {
	if f.MessageBy != "" && m.MessageBy != f.MessageBy {
		return false
	}
	if f.UserEmail != "" && m.UserEmail != f.UserEmail {
		return false
	}
	return true
}

// SendMessageRequest is the body of POST /v1/officer/messages.
type SendMessageRequest struct {
	UserEmail string `json:"user_email" validate:"required,email"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}
