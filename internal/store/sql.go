package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const kvTableName = "kv_entries"

var (
	kvColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Size: 255},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeTime},
	}
	kvTable = &schema.Table{
		Name:       kvTableName,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0]},
	}
)

// SQLStore is a Backend on SQLite or Postgres. Queries are built with the
// ent SQL builder so both dialects share one code path.
type SQLStore struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

var _ Backend = (*SQLStore)(nil)

// OpenSQL connects to a SQLite or Postgres database, applies recommended
// pragmas (SQLite only) and runs auto-migration.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		drvName string
		dia     string
	)
	switch driver {
	case DriverSQLite:
		drvName, dia = "sqlite", dialect.SQLite
		if dsn == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			dsn = p
		}
	case DriverPostgres:
		drvName, dia = "pgx", dialect.Postgres
		if dsn == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dia == dialect.SQLite {
		// Pragmas are per connection; a single connection keeps them in force.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLStore{
		db:      db,
		drv:     entsql.OpenDB(dia, db),
		dialect: dia,
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, kvTable, llmEventsTable)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of this store.
func (s *SQLStore) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.drv.Close()
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := entsql.Dialect(s.dialect).
		Select("value").
		From(entsql.Table(kvTableName)).
		Where(entsql.EQ("key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("scan %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(s.dialect).
		Insert(kvTableName).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(s.dialect).
		Delete(kvTableName).
		Where(entsql.EQ("key", key)).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
