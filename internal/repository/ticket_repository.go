package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/customer-data-service/internal/domain"
	"github.com/spec-kit/customer-data-service/internal/persistence"
)

// TicketRepository encapsulates ticket persistence. Tickets are append-only.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Ticket, error)
	Count(ctx context.Context) (int, error)
}

type ticketRepository struct {
	db      *sql.DB
	dialect persistence.Dialect
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db *persistence.Database) TicketRepository {
	return &ticketRepository{db: db.DB, dialect: db.Dialect}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := r.dialect.Rebind(`
        INSERT INTO support_tickets (account_id, description, status, priority_level, submission_timestamp)
        VALUES (?,?,?,?,?)
        RETURNING ticket_id`)
	return r.db.QueryRowContext(ctx, query,
		ticket.AccountID,
		ticket.Description,
		ticket.Status,
		ticket.PriorityLevel,
		ticket.SubmissionTimestamp,
	).Scan(&ticket.TicketID)
}

// ListByAccount returns the account's tickets, most recent submission first.
// Equal timestamps fall back to the newer ticket id.
func (r *ticketRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Ticket, error) {
	query := r.dialect.Rebind(`
        SELECT ticket_id, account_id, description, status, priority_level, submission_timestamp
        FROM support_tickets WHERE account_id=?
        ORDER BY submission_timestamp DESC, ticket_id DESC`)
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.TicketID,
			&ticket.AccountID,
			&ticket.Description,
			&ticket.Status,
			&ticket.PriorityLevel,
			&ticket.SubmissionTimestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM support_tickets`).Scan(&n)
	return n, err
}
