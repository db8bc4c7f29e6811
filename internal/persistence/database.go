package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/customer-data-service/internal/config"
)

// Dialect identifies the SQL flavour spoken by the record store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind rewrites ? placeholders into the dialect's positional form.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Database wraps the database/sql handle together with its dialect.
type Database struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open connects to the configured record store and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	var (
		driverName string
		dsn        string
		dialect    Dialect
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires DB_DSN")
		}
		driverName, dsn, dialect = "pgx", cfg.DSN, DialectPostgres
	default:
		driverName, dsn, dialect = "sqlite", SQLiteDSN(cfg.DSN, cfg.BusyTimeoutMS), DialectSQLite
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	logger.Info("connected to record store", zap.String("dialect", string(dialect)))
	return &Database{DB: db, Dialect: dialect}, nil
}

// SQLiteDSN appends the pragmas concurrent handlers rely on to a sqlite path.
func SQLiteDSN(path string, busyTimeoutMS int) string {
	if path == "" {
		path = "service_db.sqlite"
	}
	pragmas := []string{}
	if busyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMS))
	}
	if !strings.Contains(path, ":memory:") && !strings.Contains(path, "mode=memory") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	if len(pragmas) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

// Close releases pool resources.
func (d *Database) Close() {
	if d != nil && d.DB != nil {
		_ = d.DB.Close()
	}
}

// Ping verifies the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return fmt.Errorf("record store not configured")
	}
	return d.DB.PingContext(ctx)
}
