package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/godilite/role-report/internal/models"
)

// FileSource loads quiz responses from a local JSON export. It is the
// offline path for re-running analysis without touching the sheet.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// Load applies the same row policy as the sheet loader: entries with a
// blank name or no answers are skipped.
func (f *FileSource) Load(_ context.Context) ([]models.QuizResponse, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, f.path, err)
	}

	var raw []models.QuizResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, f.path, err)
	}

	var responses []models.QuizResponse
	skipped := 0
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" || len(r.Answers) == 0 {
			skipped++
			continue
		}
		responses = append(responses, r)
	}

	f.logger.Info("loaded responses from file",
		zap.String("path", f.path),
		zap.Int("rows", len(responses)),
		zap.Int("skipped", skipped))

	return responses, nil
}

// SaveRaw writes responses as indented JSON, the data-only mode output.
func SaveRaw(path string, responses []models.QuizResponse) error {
	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write responses to %s: %w", path, err)
	}
	return nil
}
