package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/darkodi/foodgram/internal/config"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert hits a unique constraint.
	ErrConflict = errors.New("record already exists")
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Repository is the SQL store behind every service. It speaks both the
// sqlite3 and postgres dialects; queries are written with '?' placeholders
// and rebound for postgres.
type Repository struct {
	db     *sql.DB
	driver string
}

// New opens the database described by cfg and bootstraps the schema.
func New(cfg *config.DatabaseConfig) (*Repository, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time; readers share the pool.
		db.SetMaxOpenConns(4)
	}

	schema := sqliteSchema
	if cfg.Driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Repository{db: db, driver: cfg.Driver}, nil
}

// sqliteDefaults are added to a sqlite DSN unless the caller set them
// (directly or through one of the driver's aliases).
var sqliteDefaults = []struct {
	key     string
	aliases []string
	value   string
}{
	{"_busy_timeout", []string{"_timeout"}, "5000"},
	{"_txlock", nil, "immediate"},
}

// sqliteDSN merges the connection defaults into dsn, keeping any
// parameters already present. Foreign keys are always forced on; the
// ON DELETE CASCADE clauses depend on them.
func sqliteDSN(dsn string) (string, error) {
	path, rawQuery, _ := strings.Cut(dsn, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("parse sqlite dsn: %w", err)
	}

	params.Del("_fk")
	params.Set("_foreign_keys", "on")
	for _, d := range sqliteDefaults {
		if params.Has(d.key) {
			continue
		}
		set := false
		for _, alias := range d.aliases {
			set = set || params.Has(alias)
		}
		if !set {
			params.Set(d.key, d.value)
		}
	}
	return path + "?" + params.Encode(), nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// HELPERS
// ============================================================

// rebind rewrites '?' placeholders into the driver's form.
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// isUniqueViolation reports whether err came from a unique or primary key
// constraint in either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// inTx runs fn inside a transaction, rolling back on any error.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// missingIDs returns the ids from want that have no row in table.
func (r *Repository) missingIDs(ctx context.Context, table string, want []int64) ([]int64, error) {
	if len(want) == 0 {
		return nil, nil
	}
	query := r.rebind(fmt.Sprintf("SELECT id FROM %s WHERE id IN (%s)", table, placeholders(len(want))))
	rows, err := r.db.QueryContext(ctx, query, int64Args(want)...)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", table, err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(want))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range want {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.rebind(query), args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
