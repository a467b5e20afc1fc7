package domain

import "testing"

func TestClassifyHandover(t *testing.T) {
	cases := []struct {
		status string
		exists bool
		want   string
	}{
		{status: "", exists: false, want: HandoverPending},
		{status: "draft", exists: true, want: HandoverInProcess},
		{status: "submitted", exists: true, want: HandoverCompleted},
		{status: "Rejected", exists: true, want: HandoverRejected},
		{status: "Approved", exists: true, want: HandoverCompleted},
		{status: " approved ", exists: true, want: HandoverCompleted},
		{status: "archived", exists: true, want: HandoverUnknown},
		{status: "", exists: true, want: HandoverUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyHandover(tc.status, tc.exists); got != tc.want {
			t.Errorf("ClassifyHandover(%q, %v) = %q, want %q", tc.status, tc.exists, got, tc.want)
		}
	}
}
