package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // postgres driver

	"PortfolioDigest/internal/domain"
	"PortfolioDigest/internal/ports"
)

const schemaDDL = `CREATE TABLE IF NOT EXISTS digest_archive (
    source_path       TEXT        NOT NULL,
    source_updated_at TIMESTAMPTZ NOT NULL,
    title             TEXT        NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL,
    article_count     INTEGER     NOT NULL,
    articles          JSONB       NOT NULL,
    archived_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (source_path, source_updated_at)
)`

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the archive table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PostgresArchive persists parsed digest snapshots into Postgres.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DigestArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveDigest upserts one digest snapshot keyed by its source object version.
func (a *PostgresArchive) SaveDigest(ctx context.Context, doc domain.StoredDocument, d domain.Digest) error {
	if a.db == nil {
		return nil
	}

	articles, err := json.Marshal(d.Articles)
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}

	query, args, err := a.builder.
		Insert("digest_archive").
		Columns("source_path", "source_updated_at", "title", "created_at", "article_count", "articles").
		Values(doc.Path, doc.UpdatedAt, d.Title, d.CreatedAt, len(d.Articles), articles).
		Suffix(`ON CONFLICT (source_path, source_updated_at) DO UPDATE
                SET title = EXCLUDED.title,
                    created_at = EXCLUDED.created_at,
                    article_count = EXCLUDED.article_count,
                    articles = EXCLUDED.articles,
                    archived_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}
	return nil
}

// RecentDigests returns the newest archived snapshots, most recent first.
func (a *PostgresArchive) RecentDigests(ctx context.Context, limit int) ([]domain.ArchivedDigest, error) {
	if a.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := a.builder.
		Select("title", "created_at", "article_count", "source_path").
		From("digest_archive").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent digests: %w", err)
	}

	var result []domain.ArchivedDigest
	for rows.Next() {
		var item domain.ArchivedDigest
		if err := rows.Scan(&item.Title, &item.CreatedAt, &item.ArticleCount, &item.SourcePath); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan digest row: %w", err)
		}
		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}
