package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/godilite/role-report/internal/models"
)

// AssessmentCacheRepository persists successful assessments in SQLite,
// keyed by the participant's answer signature. Entries survive across runs,
// which is the point: unchanged participants skip the model entirely.
type AssessmentCacheRepository struct {
	db    *sql.DB
	runID string
}

func NewAssessmentCacheRepository(db *sql.DB, runID string) *AssessmentCacheRepository {
	return &AssessmentCacheRepository{db: db, runID: runID}
}

// EnsureSchema creates the cache table if it does not exist yet.
func (r *AssessmentCacheRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS assessments (
		signature  TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		payload    TEXT NOT NULL,
		run_id     TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create assessments schema: %w", err)
	}
	return nil
}

// Get returns the cached assessment for a signature, if any.
func (r *AssessmentCacheRepository) Get(ctx context.Context, signature string) (models.RoleAssessment, bool, error) {
	const query = `SELECT payload FROM assessments WHERE signature = ?`

	var payload string
	err := r.db.QueryRowContext(ctx, query, signature).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.RoleAssessment{}, false, nil
	}
	if err != nil {
		return models.RoleAssessment{}, false, fmt.Errorf("query assessment cache: %w", err)
	}

	var a models.RoleAssessment
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return models.RoleAssessment{}, false, fmt.Errorf("decode cached assessment: %w", err)
	}
	return a, true, nil
}

// Put stores an assessment, replacing any previous entry for the signature.
func (r *AssessmentCacheRepository) Put(ctx context.Context, signature string, assessment models.RoleAssessment) error {
	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	const stmt = `
	INSERT INTO assessments (signature, name, payload, run_id, created_at)
	VALUES (?, ?, ?, ?, datetime('now'))
	ON CONFLICT(signature) DO UPDATE SET
		name = excluded.name,
		payload = excluded.payload,
		run_id = excluded.run_id,
		created_at = excluded.created_at;`

	if _, err := r.db.ExecContext(ctx, stmt, signature, assessment.Name, string(payload), r.runID); err != nil {
		return fmt.Errorf("store assessment: %w", err)
	}
	return nil
}
