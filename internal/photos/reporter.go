package photos

import "github.com/luminastudio/studio-backend/pkg/db/models"

// ReportResults splits the batch outcome for presentation.
type ReportResults struct {
	Successful []models.Photo `json:"successful"`
	Failed     []FileFailure  `json:"failed"`
}

// ReportSummary carries the headline counts.
type ReportSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Report is the caller-facing rendering of one ingestion batch.
type Report struct {
	Success bool          `json:"success"`
	Results ReportResults `json:"results"`
	Summary ReportSummary `json:"summary"`
}

// BuildReport renders a batch result. Per-file failure messages were
// already sanitized (or not) by the pipeline based on the caller's
// privileges, so the reporter passes them through untouched.
func BuildReport(result *BatchResult) Report {
	successful := result.Successful
	if successful == nil {
		successful = []models.Photo{}
	}
	failed := result.Failed
	if failed == nil {
		failed = []FileFailure{}
	}
	return Report{
		Success: len(failed) == 0,
		Results: ReportResults{Successful: successful, Failed: failed},
		Summary: ReportSummary{
			Total:      result.Total,
			Successful: len(successful),
			Failed:     len(failed),
		},
	}
}
