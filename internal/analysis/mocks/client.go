package mocks

import (
	"context"
	"errors"

	"github.com/godilite/role-report/internal/models"
)

// MockInferenceClient is a mock implementation of the InferenceClient
// interface for testing the analysis service.
type MockInferenceClient struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

// Complete implements the InferenceClient interface
func (m *MockInferenceClient) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", errors.New("CompleteFunc not implemented")
}

// MockAssessmentCache is a mock implementation of the AssessmentCache
// interface backed by a plain map.
type MockAssessmentCache struct {
	GetFunc func(ctx context.Context, signature string) (models.RoleAssessment, bool, error)
	PutFunc func(ctx context.Context, signature string, assessment models.RoleAssessment) error

	Entries map[string]models.RoleAssessment
}

// Get implements the AssessmentCache interface
func (m *MockAssessmentCache) Get(ctx context.Context, signature string) (models.RoleAssessment, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, signature)
	}
	a, ok := m.Entries[signature]
	return a, ok, nil
}

// Put implements the AssessmentCache interface
func (m *MockAssessmentCache) Put(ctx context.Context, signature string, assessment models.RoleAssessment) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, signature, assessment)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]models.RoleAssessment)
	}
	m.Entries[signature] = assessment
	return nil
}
