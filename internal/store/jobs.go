package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeTrim    = "trim"
	JobTypePreview = "preview"

	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is one recorded trim or preview execution.
type Job struct {
	ID         string    `json:"id"`
	AssetID    string    `json:"asset_id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	OutputName string    `json:"output_name,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository is the job-history persistence contract.
type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
	FinishJob(ctx context.Context, id, status, outputName, errorMsg string) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// NewJob returns a running job row for an asset.
func NewJob(assetID, jobType string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		AssetID:   assetID,
		Type:      jobType,
		Status:    JobStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, asset_id, type, status, output_name, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.AssetID, j.Type, j.Status, j.OutputName, j.Error,
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) FinishJob(ctx context.Context, id, status, outputName, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, output_name = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, outputName, errorMsg, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, asset_id, type, status, output_name, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)
	return scanJob(row)
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, asset_id, type, status, output_name, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var j Job
		var createdAt, updatedAt string
		if err := rows.Scan(&j.ID, &j.AssetID, &j.Type, &j.Status, &j.OutputName, &j.Error, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func scanJob(row *sql.Row) (*Job, error) {
	var j Job
	var createdAt, updatedAt string
	err := row.Scan(&j.ID, &j.AssetID, &j.Type, &j.Status, &j.OutputName, &j.Error, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
