package services

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-backend/models"
)

// pgxDB is satisfied by *pgxpool.Pool and by pgxmock pools.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresViewStore keeps counts in a `slug TEXT PRIMARY KEY, count BIGINT`
// table. The table name may be schema-qualified ("blog.views"); each part is
// quoted as written.
type PostgresViewStore struct {
	db    pgxDB
	table string
	psql  sq.StatementBuilderType
	close func()
}

var _ ViewStore = (*PostgresViewStore)(nil)

// ConnectPostgresViewStore opens a pool, pings it and creates the table.
func ConnectPostgresViewStore(ctx context.Context, dsn, table string) (*PostgresViewStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := NewPostgresViewStore(pool, table)
	store.close = pool.Close
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresViewStore wraps an existing connection.
func NewPostgresViewStore(db pgxDB, table string) *PostgresViewStore {
	if table == "" {
		table = "views"
	}
	return &PostgresViewStore{
		db:    db,
		table: quoteTable(table),
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresViewStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	slug  TEXT PRIMARY KEY,
	count BIGINT NOT NULL DEFAULT 0
)`, s.table)

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create views table: %w", err)
	}
	return nil
}

func (s *PostgresViewStore) Increment(ctx context.Context, slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	query, args, err := s.psql.
		Insert(s.table+" AS v").
		Columns("slug", "count").
		Values(slug, sq.Expr("1")).
		Suffix("ON CONFLICT (slug) DO UPDATE SET count = v.count + 1").
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment %s: %w", slug, err)
	}
	return nil
}

func (s *PostgresViewStore) All(ctx context.Context) ([]models.ViewCount, error) {
	query, args, err := s.psql.
		Select("slug", "count").
		From(s.table).
		OrderBy("count DESC", "slug ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build views query: %w", err)
	}
	return s.queryCounts(ctx, query, args...)
}

func (s *PostgresViewStore) Get(ctx context.Context, slug string) (int64, error) {
	query, args, err := s.psql.
		Select("slug", "count").
		From(s.table).
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build view query: %w", err)
	}

	counts, err := s.queryCounts(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0].Count, nil
}

func (s *PostgresViewStore) queryCounts(ctx context.Context, query string, args ...any) ([]models.ViewCount, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	out := []models.ViewCount{}
	for rows.Next() {
		var vc models.ViewCount
		if err := rows.Scan(&vc.Slug, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		out = append(out, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresViewStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func (s *PostgresViewStore) Close() {
	if s.close != nil {
		s.close()
	}
}
