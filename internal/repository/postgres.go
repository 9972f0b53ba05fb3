package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/immigrai/checklist-delivery/internal/models"
)

// PostgresRepository implements Repository against the leads table.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresRepository connects a pgx pool and verifies it with a ping.
func NewPostgresRepository(ctx context.Context, connString, table string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool, table: table}, nil
}

// LatestLeadByEmail returns the authoritative lead for email: equality on
// the email column, newest created_at first, id as the deterministic
// tie-break within one timestamp, limit 1.
func (r *PostgresRepository) LatestLeadByEmail(ctx context.Context, email string) (*models.Lead, error) {
	lead := &models.Lead{}
	err := r.pool.QueryRow(ctx, latestLeadQuery(r.table), email).Scan(
		&lead.ID, &lead.Email, &lead.PetitionerName,
		&lead.VisaType, &lead.ChecklistText, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lead: %w", err)
	}
	return lead, nil
}

// latestLeadQuery builds the lookup statement. The table name comes from
// configuration, never from request input, and is quoted as an identifier.
func latestLeadQuery(table string) string {
	return fmt.Sprintf(`
		SELECT id, email,
		       COALESCE(petitioner_name, ''),
		       COALESCE(visa_type, ''),
		       COALESCE(checklist_text, ''),
		       created_at
		FROM %s
		WHERE email = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, pgx.Identifier{table}.Sanitize())
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}
