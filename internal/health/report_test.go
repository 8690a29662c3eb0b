package health

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	t.Run("partitions results by verdict", func(t *testing.T) {
		report := newReport([]Result{
			Up("alpha"),
			Down("beta", "unreachable"),
			Up("gamma"),
		})

		assert.Equal(t, ReportError, report.Status)
		assert.Len(t, report.Info, 2)
		assert.Len(t, report.Errors, 1)
		assert.Len(t, report.Details, 3)
		assert.Contains(t, report.Errors, "beta")
	})

	t.Run("ok with no results", func(t *testing.T) {
		report := newReport(nil)
		assert.Equal(t, ReportOK, report.Status)
		assert.Empty(t, report.Details)
	})

	t.Run("error key serializes singular", func(t *testing.T) {
		report := newReport([]Result{Down("beta", "unreachable")})

		raw, err := json.Marshal(report)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Contains(t, decoded, "error")
		assert.NotContains(t, decoded, "errors")
	})
}

func TestReportErrorMessage(t *testing.T) {
	t.Run("empty for ok reports", func(t *testing.T) {
		report := newReport([]Result{Up("alpha")})
		assert.Empty(t, report.ErrorMessage())
	})

	t.Run("stable order across failures", func(t *testing.T) {
		report := newReport([]Result{
			Down("zeta", "late"),
			Down("alpha", "early"),
		})
		assert.Equal(t, "alpha: early; zeta: late", report.ErrorMessage())
	})

	t.Run("missing reason falls back", func(t *testing.T) {
		report := newReport([]Result{
			{Name: "quiet", Status: StatusDown},
		})
		assert.Equal(t, "quiet: check failed", report.ErrorMessage())
	})
}
