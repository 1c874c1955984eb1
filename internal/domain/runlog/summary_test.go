package runlog

import (
	"testing"

	"github.com/hoistlabs/hoist/internal/domain/execution"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

func resultWith(id string, status step.Status) execution.Result {
	return execution.NewResult(step.MustNewID(id), status)
}

func TestSummarize(t *testing.T) {
	results := []execution.Result{
		resultWith("a", step.StatusSucceeded),
		resultWith("b", step.StatusSkipped),
		resultWith("c", step.StatusWarned),
		resultWith("d", step.StatusFailed),
		resultWith("e", step.StatusAborted),
	}

	summary := Summarize(results)
	if summary.Total != 5 {
		t.Errorf("Total = %d, want 5", summary.Total)
	}
	if summary.Succeeded != 1 || summary.Skipped != 1 || summary.Warned != 1 || summary.Failed != 1 || summary.Aborted != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSummary_ExitCode(t *testing.T) {
	tests := []struct {
		name    string
		results []execution.Result
		want    int
	}{
		{
			name:    "all converged",
			results: []execution.Result{resultWith("a", step.StatusSucceeded), resultWith("b", step.StatusSkipped)},
			want:    ExitOK,
		},
		{
			name:    "warned still converges",
			results: []execution.Result{resultWith("a", step.StatusWarned)},
			want:    ExitOK,
		},
		{
			name:    "failure",
			results: []execution.Result{resultWith("a", step.StatusFailed)},
			want:    ExitFailed,
		},
		{
			name:    "aborted remainder",
			results: []execution.Result{resultWith("a", step.StatusSucceeded), resultWith("b", step.StatusAborted)},
			want:    ExitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.results).ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
