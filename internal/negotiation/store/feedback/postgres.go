package feedback

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

// Postgres stores feedback as jsonb documents with a compare-and-set version
// column, mirroring the submission store.
type Postgres struct {
	pool *pgxpool.Pool
}

// Schema is the DDL for the feedback table.
const Schema = `
CREATE TABLE IF NOT EXISTS submission_feedback (
    id            UUID PRIMARY KEY,
    submission_id UUID NOT NULL,
    version       TEXT NOT NULL,
    doc           JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS submission_feedback_submission_idx ON submission_feedback (submission_id);
`

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error) {
	doc, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	version := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO submission_feedback (id, submission_id, version, doc, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(fb.ID), uuid.UUID(fb.SubmissionID), version, doc, fb.CreatedAt, fb.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}
	out := fb.Clone()
	out.Version = version
	return out, nil
}

func (s *Postgres) FindByID(ctx context.Context, feedbackID id.FeedbackID) (*models.SubmissionFeedback, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT version, doc FROM submission_feedback WHERE id = $1`, uuid.UUID(feedbackID))
	return scanFeedback(row)
}

func (s *Postgres) ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.SubmissionFeedback, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT version, doc FROM submission_feedback WHERE submission_id = $1 ORDER BY created_at`,
		uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []*models.SubmissionFeedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (s *Postgres) Save(ctx context.Context, fb *models.SubmissionFeedback) (*models.SubmissionFeedback, error) {
	doc, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	version := uuid.NewString()
	tag, err := s.pool.Exec(ctx,
		`UPDATE submission_feedback
		 SET doc = $1, version = $2, updated_at = $3
		 WHERE id = $4 AND version = $5`,
		doc, version, fb.UpdatedAt, uuid.UUID(fb.ID), fb.Version)
	if err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM submission_feedback WHERE id = $1)`,
			uuid.UUID(fb.ID)).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check feedback existence: %w", err)
		}
		if !exists {
			return nil, sentinel.ErrNotFound
		}
		return nil, sentinel.ErrVersionMismatch
	}
	out := fb.Clone()
	out.Version = version
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (*models.SubmissionFeedback, error) {
	var version string
	var doc []byte
	if err := row.Scan(&version, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	var fb models.SubmissionFeedback
	if err := json.Unmarshal(doc, &fb); err != nil {
		return nil, fmt.Errorf("unmarshal feedback: %w", err)
	}
	fb.Version = version
	return &fb, nil
}
