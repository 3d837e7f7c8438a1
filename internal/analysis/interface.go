package analysis

import (
	"context"

	"github.com/godilite/role-report/internal/models"
)

// InferenceClient defines the blocking model call the service depends on.
type InferenceClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AssessmentCache stores successful assessments keyed by answer signature,
// so unchanged participants skip the model on re-runs. A nil cache disables
// caching entirely.
type AssessmentCache interface {
	Get(ctx context.Context, signature string) (models.RoleAssessment, bool, error)
	Put(ctx context.Context, signature string, assessment models.RoleAssessment) error
}
