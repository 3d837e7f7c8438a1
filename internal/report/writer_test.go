package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Run("writes the report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.md")

		require.NoError(t, Write(path, "# Report\n"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# Report\n", string(data))
	})

	t.Run("unwritable path is an error", func(t *testing.T) {
		err := Write(filepath.Join(t.TempDir(), "missing", "report.md"), "x")
		assert.Error(t, err)
	})
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer

	ConsoleSummary(&buf, sampleAssessments(), sampleSummary(), "team_role_report.md")
	out := buf.String()

	assert.Contains(t, out, "TEAM ROLE DISCOVERY - SUMMARY")
	assert.Contains(t, out, "- Ada: ML Engineer")
	assert.Contains(t, out, "- Grace: assessment failed (inference timed out)")
	assert.Contains(t, out, "Assessments: 1 succeeded, 1 failed")
	assert.Contains(t, out, "- ML Engineer: 1")
	assert.Contains(t, out, "- Data Scientist: 0")
	assert.Contains(t, out, "Pair Ada with a senior")
	assert.Contains(t, out, "Rotate reviews")
	assert.Contains(t, out, "Full markdown report written to: team_role_report.md")
}
