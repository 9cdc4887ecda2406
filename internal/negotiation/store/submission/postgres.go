package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk/internal/negotiation/models"
	id "dealdesk/pkg/domain"
	"dealdesk/pkg/platform/sentinel"
)

// Postgres stores submissions as jsonb documents. The version token lives in
// its own column so Save can compare-and-set without touching the document;
// conflicts surface as sentinel.ErrVersionMismatch.
type Postgres struct {
	pool *pgxpool.Pool
}

// Schema is the DDL for the submissions table. Applied by deploy tooling and
// by integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS deal_submissions (
    id         UUID PRIMARY KEY,
    broker_id  UUID NOT NULL,
    version    TEXT NOT NULL,
    doc        JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS deal_submissions_broker_idx ON deal_submissions (broker_id);
`

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, sub *models.DealSubmission) (*models.DealSubmission, error) {
	doc, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	version := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO deal_submissions (id, broker_id, version, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(sub.ID), uuid.UUID(sub.BrokerID), version, doc, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	out := sub.Clone()
	out.Version = version
	return out, nil
}

func (s *Postgres) FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.DealSubmission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT version, doc FROM deal_submissions WHERE id = $1`, uuid.UUID(submissionID))
	return scanSubmission(row)
}

func (s *Postgres) ListByBroker(ctx context.Context, brokerID id.CompanyID) ([]*models.DealSubmission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT version, doc FROM deal_submissions WHERE broker_id = $1 ORDER BY created_at`,
		uuid.UUID(brokerID))
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.DealSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Postgres) Save(ctx context.Context, sub *models.DealSubmission) (*models.DealSubmission, error) {
	doc, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	version := uuid.NewString()
	tag, err := s.pool.Exec(ctx,
		`UPDATE deal_submissions
		 SET doc = $1, version = $2, broker_id = $3, updated_at = $4
		 WHERE id = $5 AND version = $6`,
		doc, version, uuid.UUID(sub.BrokerID), sub.UpdatedAt, uuid.UUID(sub.ID), sub.Version)
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale token.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM deal_submissions WHERE id = $1)`,
			uuid.UUID(sub.ID)).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check submission existence: %w", err)
		}
		if !exists {
			return nil, sentinel.ErrNotFound
		}
		return nil, sentinel.ErrVersionMismatch
	}
	out := sub.Clone()
	out.Version = version
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.DealSubmission, error) {
	var version string
	var doc []byte
	if err := row.Scan(&version, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	var sub models.DealSubmission
	if err := json.Unmarshal(doc, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal submission: %w", err)
	}
	sub.Version = version
	return &sub, nil
}
