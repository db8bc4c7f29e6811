package domain

import "strings"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// ParseTicketPriority normalizes raw case-insensitively and reports whether it
// names a known priority.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch p := TicketPriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return p, true
	default:
		return "", false
	}
}

// Ticket is an append-only support request.
type Ticket struct {
	TicketID            int64  `json:"ticket_id"`
	AccountID           int64  `json:"account_id"`
	Description         string `json:"description"`
	Status              string `json:"status"`
	PriorityLevel       string `json:"priority_level"`
	SubmissionTimestamp string `json:"submission_timestamp"`
}
