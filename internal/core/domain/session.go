package domain

import (
	"strings"
	"time"
)

// Exchange is one question and its answer.
type Exchange struct {
	Query  string
	Answer string
}

// Session is the bounded history of one conversation.
type Session struct {
	ID        string
	Exchanges []Exchange
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append records an exchange, keeping at most maxHistory of the most recent.
func (s *Session) Append(e Exchange, maxHistory int) {
	s.Exchanges = append(s.Exchanges, e)
	if maxHistory > 0 && len(s.Exchanges) > maxHistory {
		s.Exchanges = s.Exchanges[len(s.Exchanges)-maxHistory:]
	}
	s.UpdatedAt = time.Now()
}

// History renders the exchanges as alternating User/Assistant lines.
// Returns "" when the session has no exchanges.
func (s *Session) History() string {
	lines := make([]string, 0, len(s.Exchanges)*2)
	for _, e := range s.Exchanges {
		lines = append(lines, "User: "+e.Query, "Assistant: "+e.Answer)
	}
	return strings.Join(lines, "\n")
}

// QueryRequest is a user question addressed to the assistant.
type QueryRequest struct {
	Query     string
	SessionID string
}

// Answer is the assistant's reply with the sources that back it.
type Answer struct {
	Text      string
	Citations []Citation
	SessionID string
}
