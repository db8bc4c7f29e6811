package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/domain"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations executes the embedded SQL files for the dialect in name order.
// The files drop existing tables, so this is destructive.
func RunMigrations(ctx context.Context, db *Database, logger *zap.Logger) error {
	if db == nil || db.DB == nil {
		logger.Warn("no record store available; skipping migrations")
		return nil
	}

	dir := path.Join("migrations", string(db.Dialect))
	entries, err := migrationFiles.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)

	for _, name := range filenames {
		content, err := migrationFiles.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("file", name))
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(filenames)))
	return nil
}

func splitStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// SeedAccounts is the deterministic account set written by ResetSchema.
var SeedAccounts = []domain.Account{
	{Identifier: 1, FullName: "Alice Premium", ContactEmail: "alice@example.com", ContactPhone: "111-111-1111", AccountStatus: string(domain.AccountStatusActive)},
	{Identifier: 2, FullName: "Bob Standard", ContactEmail: "bob@example.com", ContactPhone: "222-222-2222", AccountStatus: string(domain.AccountStatusActive)},
	{Identifier: 3, FullName: "Charlie Disabled", ContactEmail: "charlie@example.com", ContactPhone: "333-333-3333", AccountStatus: string(domain.AccountStatusDisabled)},
	{Identifier: 4, FullName: "Diana Premium", ContactEmail: "diana@example.com", ContactPhone: "444-444-4444", AccountStatus: string(domain.AccountStatusActive)},
	{Identifier: 5, FullName: "Eve Standard", ContactEmail: "eve@example.com", ContactPhone: "555-555-5555", AccountStatus: string(domain.AccountStatusActive)},
	{Identifier: 12345, FullName: "Priya Patel (Premium)", ContactEmail: "priya@example.com", ContactPhone: "555-0999", AccountStatus: string(domain.AccountStatusActive)},
}

// SeedTickets is the deterministic ticket set written by ResetSchema. Ticket
// ids are assigned by the store in slice order.
var SeedTickets = []domain.Ticket{
	{AccountID: 1, Description: "Billing duplicate charge", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityHigh)},
	{AccountID: 1, Description: "Unable to login", Status: string(domain.TicketStatusInProgress), PriorityLevel: string(domain.TicketPriorityMedium)},
	{AccountID: 2, Description: "Request upgrade", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityLow)},
	{AccountID: 4, Description: "Critical outage", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityHigh)},
	{AccountID: 5, Description: "Password reset", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityLow)},
	{AccountID: 12345, Description: "Account upgrade assistance", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityMedium)},
	{AccountID: 12345, Description: "High priority refund review", Status: string(domain.TicketStatusOpen), PriorityLevel: string(domain.TicketPriorityHigh)},
}

// ResetSchema drops and recreates both tables, then writes the seed set with
// every timestamp set to now.
func ResetSchema(ctx context.Context, db *Database, now time.Time, logger *zap.Logger) error {
	if err := RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := domain.FormatTimestamp(now)
	insertAccount := db.Dialect.Rebind(`
        INSERT INTO customer_accounts (identifier, full_name, contact_email, contact_phone, account_status, creation_timestamp, last_modified_timestamp)
        VALUES (?,?,?,?,?,?,?)`)
	for _, a := range SeedAccounts {
		if _, err := tx.ExecContext(ctx, insertAccount,
			a.Identifier, a.FullName, a.ContactEmail, a.ContactPhone, a.AccountStatus, stamp, stamp,
		); err != nil {
			return fmt.Errorf("seed account %d: %w", a.Identifier, err)
		}
	}

	insertTicket := db.Dialect.Rebind(`
        INSERT INTO support_tickets (account_id, description, status, priority_level, submission_timestamp)
        VALUES (?,?,?,?,?)`)
	for _, t := range SeedTickets {
		if _, err := tx.ExecContext(ctx, insertTicket,
			t.AccountID, t.Description, t.Status, t.PriorityLevel, stamp,
		); err != nil {
			return fmt.Errorf("seed ticket for account %d: %w", t.AccountID, err)
		}
	}

	if db.Dialect == DialectPostgres {
		if err := resyncSequences(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	logger.Info("schema initialized and seeded",
		zap.Int("accounts", len(SeedAccounts)),
		zap.Int("tickets", len(SeedTickets)))
	return nil
}

// resyncSequences moves the identity sequence past explicitly seeded ids.
func resyncSequences(ctx context.Context, tx *sql.Tx) error {
	const query = `SELECT setval(pg_get_serial_sequence('customer_accounts', 'identifier'), (SELECT MAX(identifier) FROM customer_accounts))`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("resync account sequence: %w", err)
	}
	return nil
}
