package training

import (
	"testing"
	"time"
)

func Test_nextSessionIndex(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		completed *sessionMark
		skipped   *sessionMark
		planCount int
		want      int
	}{
		{
			name:      "fresh split starts at zero",
			planCount: 4,
			want:      0,
		},
		{
			name:      "completion advances by one",
			completed: &sessionMark{index: 1, at: base},
			planCount: 4,
			want:      2,
		},
		{
			name:      "skip advances by one",
			skipped:   &sessionMark{index: 2, at: base},
			planCount: 4,
			want:      3,
		},
		{
			name:      "later skip outweighs earlier completion",
			completed: &sessionMark{index: 1, at: base},
			skipped:   &sessionMark{index: 3, at: base.Add(time.Hour)},
			planCount: 6,
			want:      4,
		},
		{
			name:      "later completion outweighs earlier skip",
			completed: &sessionMark{index: 2, at: base.Add(time.Hour)},
			skipped:   &sessionMark{index: 0, at: base},
			planCount: 6,
			want:      3,
		},
		{
			name:      "equal timestamps favor the completion",
			completed: &sessionMark{index: 2, at: base},
			skipped:   &sessionMark{index: 0, at: base},
			planCount: 6,
			want:      3,
		},
		{
			name:      "last workout wraps to the first",
			completed: &sessionMark{index: 3, at: base},
			planCount: 4,
			want:      0,
		},
		{
			name:      "empty plan resolves to zero",
			completed: &sessionMark{index: 3, at: base},
			planCount: 0,
			want:      0,
		},
		{
			name:      "stale index from a shrunk split resets to the first",
			completed: &sessionMark{index: 7, at: base},
			planCount: 3,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextSessionIndex(tt.completed, tt.skipped, tt.planCount); got != tt.want {
				t.Errorf("nextSessionIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}
