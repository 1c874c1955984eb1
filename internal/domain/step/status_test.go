package step

import "testing"

func TestStatus_Ran(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusSucceeded, true},
		{StatusFailed, true},
		{StatusWarned, true},
		{StatusSkipped, false},
		{StatusAborted, false},
	}
	for _, tc := range cases {
		if got := tc.status.Ran(); got != tc.want {
			t.Errorf("%s.Ran() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestStatus_Converged(t *testing.T) {
	if !StatusSucceeded.Converged() || !StatusSkipped.Converged() {
		t.Error("succeeded and skipped must converge")
	}
	if StatusFailed.Converged() || StatusWarned.Converged() || StatusAborted.Converged() {
		t.Error("failure statuses must not converge")
	}
}
