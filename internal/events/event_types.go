package events

import (
	"time"

	"github.com/spec-kit/customer-data-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerUpdated EventType = "customer_updated"
	EventTicketCreated   EventType = "ticket_created"
)

// Event represents a domain event emitted after a successful mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID int64       `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CustomerUpdatedPayload payload.
type CustomerUpdatedPayload struct {
	Fields  []domain.AccountField `json:"fields"`
	Account domain.Account        `json:"account"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}
