package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/godilite/role-report/internal/models"
)

// Column headers that identify the participant rather than an answer.
var nameColumns = []string{"Name", "Full Name", "Email Address"}

var ignoredColumns = map[string]struct{}{
	"timestamp":     {},
	"name":          {},
	"full name":     {},
	"email address": {},
}

var sheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([^/]+)`)

// ExtractSheetID accepts either a bare spreadsheet id or a full sheet URL.
func ExtractSheetID(raw string) string {
	if m := sheetURLPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// SheetSource loads quiz responses from a Google Sheets worksheet.
type SheetSource struct {
	svc       *sheets.Service
	sheetID   string
	worksheet string
	logger    *zap.Logger
}

// NewSheetSource builds a read-only Sheets client from a service account file.
func NewSheetSource(ctx context.Context, credentialsFile, sheetID, worksheet string, logger *zap.Logger) (*SheetSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets client: %v", ErrUnavailable, err)
	}
	return &SheetSource{
		svc:       svc,
		sheetID:   ExtractSheetID(sheetID),
		worksheet: worksheet,
		logger:    logger,
	}, nil
}

// Load fetches all rows of the worksheet and converts them to quiz responses.
// Rows with a blank name or no non-empty answers are skipped; a header that
// lacks the name column or any required question column is a hard error.
func (s *SheetSource) Load(ctx context.Context) ([]models.QuizResponse, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: fetch worksheet %q: %v", ErrUnavailable, s.worksheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrNoResponses
	}

	header := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[i] = strings.TrimSpace(fmt.Sprintf("%v", cell))
	}

	nameIdx, err := findNameColumn(header)
	if err != nil {
		return nil, err
	}
	if missing := missingQuestions(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing question columns: %s", ErrMalformedHeader, strings.Join(missing, "; "))
	}

	var (
		responses []models.QuizResponse
		skipped   int
	)
	for _, row := range resp.Values[1:] {
		r, ok := rowToResponse(header, nameIdx, row)
		if !ok {
			skipped++
			continue
		}
		responses = append(responses, r)
	}

	s.logger.Info("loaded responses from sheet",
		zap.String("worksheet", s.worksheet),
		zap.Int("rows", len(responses)),
		zap.Int("skipped", skipped))

	return responses, nil
}

func findNameColumn(header []string) (int, error) {
	for _, want := range nameColumns {
		for i, col := range header {
			if strings.EqualFold(col, want) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no name column (expected one of %s)", ErrMalformedHeader, strings.Join(nameColumns, ", "))
}

func missingQuestions(header []string) []string {
	var missing []string
	for _, q := range models.Questions {
		found := false
		for _, col := range header {
			if strings.EqualFold(col, q) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, q)
		}
	}
	return missing
}

func rowToResponse(header []string, nameIdx int, row []interface{}) (models.QuizResponse, bool) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
	}

	name := cell(nameIdx)
	if name == "" {
		return models.QuizResponse{}, false
	}

	answers := make(map[string]string)
	for i, col := range header {
		if _, skip := ignoredColumns[strings.ToLower(col)]; skip {
			continue
		}
		if v := cell(i); v != "" {
			answers[col] = v
		}
	}
	if len(answers) == 0 {
		return models.QuizResponse{}, false
	}

	return models.QuizResponse{Name: name, Answers: answers}, true
}
