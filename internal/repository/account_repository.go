package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spec-kit/customer-data-service/internal/domain"
	"github.com/spec-kit/customer-data-service/internal/persistence"
)

// AccountFilter narrows account listings.
type AccountFilter struct {
	Status *string
	Limit  int
}

// AccountRepository encapsulates customer account persistence.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Update(ctx context.Context, id int64, update domain.AccountUpdate, modifiedAt string) (*domain.Account, error)
}

// accountSetFragments holds the only SQL text an update may contain for each
// field. Caller input selects fragments, it never supplies them.
var accountSetFragments = map[domain.AccountField]string{
	domain.AccountFieldFullName:     "full_name=?",
	domain.AccountFieldContactEmail: "contact_email=?",
	domain.AccountFieldContactPhone: "contact_phone=?",
	domain.AccountFieldStatus:       "account_status=?",
}

const accountColumns = `identifier, full_name, contact_email, contact_phone, account_status, creation_timestamp, last_modified_timestamp`

type accountRepository struct {
	db      *sql.DB
	dialect persistence.Dialect
}

// NewAccountRepository returns a database/sql backed implementation.
func NewAccountRepository(db *persistence.Database) AccountRepository {
	return &accountRepository{db: db.DB, dialect: db.Dialect}
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := r.dialect.Rebind(`SELECT ` + accountColumns + ` FROM customer_accounts WHERE identifier=?`)
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM customer_accounts`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE account_status=?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY identifier LIMIT ?`
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

// Update applies the recognised fields of update plus the modification
// timestamp and returns the row as stored. It returns sql.ErrNoRows when the
// account does not exist.
func (r *accountRepository) Update(ctx context.Context, id int64, update domain.AccountUpdate, modifiedAt string) (*domain.Account, error) {
	sets := make([]string, 0, len(domain.UpdatableAccountFields)+1)
	args := make([]any, 0, len(domain.UpdatableAccountFields)+2)
	for _, field := range domain.UpdatableAccountFields {
		value, ok := update[field]
		if !ok {
			continue
		}
		sets = append(sets, accountSetFragments[field])
		args = append(args, value)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("update account %d: no fields", id)
	}
	sets = append(sets, "last_modified_timestamp=?")
	args = append(args, modifiedAt, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	query := r.dialect.Rebind(`UPDATE customer_accounts SET ` + strings.Join(sets, ", ") + ` WHERE identifier=?`)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	account, err := scanAccount(tx.QueryRowContext(ctx,
		r.dialect.Rebind(`SELECT `+accountColumns+` FROM customer_accounts WHERE identifier=?`), id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.Identifier,
		&account.FullName,
		&account.ContactEmail,
		&account.ContactPhone,
		&account.AccountStatus,
		&account.CreationTimestamp,
		&account.LastModifiedTimestamp,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
