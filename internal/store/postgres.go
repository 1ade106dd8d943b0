package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timelock.keep/internal/logger"
	"timelock.keep/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists records in a secret_records table. Retirement is a
// conditional UPDATE, so the rows-affected count tells whether this call
// performed the active-to-inactive transition.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

func NewPostgresStore(ctx context.Context, dsn string, log *logger.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &PostgresStore{db: db, log: log}, nil
}

// DB exposes the underlying handle for running migrations at startup.
func (p *PostgresStore) DB() *sql.DB {
	return p.db
}

func (p *PostgresStore) Create(ctx context.Context, rec *models.SecretRecord) error {
	_, err := p.db.ExecContext(ctx, insertRecord,
		rec.ID, rec.Value, rec.Description, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		if pgErrCode(err) == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (p *PostgresStore) FindActive(ctx context.Context, id string) (*models.SecretRecord, error) {
	var rec models.SecretRecord
	row := p.db.QueryRowContext(ctx, selectActiveRecord, id)
	if err := row.Scan(&rec.ID, &rec.Value, &rec.Description, &rec.CreatedAt, &rec.ExpiresAt, &rec.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return &rec, nil
}

func (p *PostgresStore) ListActive(ctx context.Context) ([]*models.SecretRecord, error) {
	rows, err := p.db.QueryContext(ctx, selectActiveRecords)
	if err != nil {
		return nil, fmt.Errorf("querying active records: %w", err)
	}
	defer rows.Close()

	var recs []*models.SecretRecord
	for rows.Next() {
		var rec models.SecretRecord
		if err := rows.Scan(&rec.ID, &rec.Value, &rec.Description, &rec.CreatedAt, &rec.ExpiresAt, &rec.Active); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return recs, nil
}

func (p *PostgresStore) Retire(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, retireRecord, id)
	if err != nil {
		return false, fmt.Errorf("retiring record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// No transition happened; distinguish "already retired" from "never
	// existed".
	var exists bool
	if err := p.db.QueryRowContext(ctx, recordExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking record existence: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
