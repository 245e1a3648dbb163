package training

import (
	"testing"

	"github.com/rafatrikUOC/soloprogress/internal/ptr"
)

func TestPlanSetsProgressesFromHistory(t *testing.T) {
	exercise := Exercise{
		ID:       1,
		Name:     "Barbell Bench Press",
		Compound: true,
		Equipment: []string{"barbell", "bench"},
	}
	profile := GoalProfile{RepRangeLow: 8, RepRangeHigh: 12, TargetWeightPct: 0.75, SetCount: 1}
	history := []ExerciseSeries{
		{SetNumber: 1, Reps: ptr.Ref(8), Weight: ptr.Ref(20.0)},
	}

	sets := planSets(exercise, profile, history)
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	if sets[0].Reps != 9 {
		t.Errorf("reps = %d, want 9", sets[0].Reps)
	}
	// 20 * 1.025 = 20.5, already at 0.5 granularity.
	if sets[0].Weight != 20.5 {
		t.Errorf("weight = %v, want 20.5", sets[0].Weight)
	}
}

func TestPlanSetsRoundsProgressedWeight(t *testing.T) {
	exercise := Exercise{ID: 1, Compound: true, Equipment: []string{"barbell"}}
	profile := GoalProfile{RepRangeLow: 3, RepRangeHigh: 5, TargetWeightPct: 0.85, SetCount: 1}
	history := []ExerciseSeries{
		{SetNumber: 1, Reps: ptr.Ref(5), Weight: ptr.Ref(77.5)},
	}

	sets := planSets(exercise, profile, history)
	// 77.5 * 1.025 = 79.4375 -> 79.5
	if sets[0].Weight != 79.5 {
		t.Errorf("weight = %v, want 79.5", sets[0].Weight)
	}
}

func TestPlanSetsHistoryWithMissingFields(t *testing.T) {
	exercise := Exercise{ID: 2, Compound: false, Equipment: []string{"machine"}}
	profile := GoalProfile{RepRangeLow: 10, RepRangeHigh: 15, TargetWeightPct: 0.6, SetCount: 1}
	// Timed set from last visit: no reps, no weight.
	history := []ExerciseSeries{
		{SetNumber: 1, TimeSeconds: ptr.Ref(45)},
	}

	sets := planSets(exercise, profile, history)
	if sets[0].Reps != profile.RepRangeLow {
		t.Errorf("reps = %d, want rep range low %d", sets[0].Reps, profile.RepRangeLow)
	}
	// machine default 10 * 0.6 = 6.0
	if sets[0].Weight != 6.0 {
		t.Errorf("weight = %v, want 6.0", sets[0].Weight)
	}
}

func TestPlanSetsColdStartBounds(t *testing.T) {
	exercise := Exercise{ID: 3, Compound: true, Equipment: []string{"barbell"}}
	profile := GoalProfile{RepRangeLow: 8, RepRangeHigh: 12, TargetWeightPct: 0.75, SetCount: 1}

	for range 1000 {
		sets := planSets(exercise, profile, nil)
		reps := sets[0].Reps
		if reps < profile.RepRangeLow || reps > profile.RepRangeHigh {
			t.Fatalf("cold-start reps %d outside [%d, %d]", reps, profile.RepRangeLow, profile.RepRangeHigh)
		}
		// barbell default 20 * 0.75 = 15.0
		if sets[0].Weight != 15.0 {
			t.Fatalf("cold-start weight = %v, want 15.0", sets[0].Weight)
		}
	}
}

func TestPlanSetsPartialHistory(t *testing.T) {
	exercise := Exercise{ID: 4, Compound: true, Equipment: []string{"barbell"}}
	profile := GoalProfile{RepRangeLow: 8, RepRangeHigh: 12, TargetWeightPct: 0.75, SetCount: 4}
	history := []ExerciseSeries{
		{SetNumber: 1, Reps: ptr.Ref(10), Weight: ptr.Ref(60.0)},
		{SetNumber: 2, Reps: ptr.Ref(9), Weight: ptr.Ref(60.0)},
	}

	sets := planSets(exercise, profile, history)
	if len(sets) != 4 {
		t.Fatalf("expected 4 sets, got %d", len(sets))
	}
	if sets[0].Reps != 11 || sets[1].Reps != 10 {
		t.Errorf("progressed reps = %d, %d, want 11, 10", sets[0].Reps, sets[1].Reps)
	}
	for i := 2; i < 4; i++ {
		if sets[i].Reps < profile.RepRangeLow || sets[i].Reps > profile.RepRangeHigh {
			t.Errorf("set %d reps %d outside cold-start range", i+1, sets[i].Reps)
		}
	}
}

func TestDefaultWeight(t *testing.T) {
	tests := []struct {
		name     string
		exercise Exercise
		want     float64
	}{
		{"barbell", Exercise{Equipment: []string{"barbell", "rack"}}, 20},
		{"dumbbell", Exercise{Equipment: []string{"dumbbell"}}, 2.5},
		{"adjustable dumbbells", Exercise{Equipment: []string{"adjustable dumbbells"}}, 2.5},
		{"machine", Exercise{Equipment: []string{"machine", "cable"}}, 10},
		{"bodyweight compound", Exercise{Compound: true, Equipment: []string{"pull-up bar"}}, 20},
		{"bodyweight isolation", Exercise{Compound: false, Equipment: nil}, 10},
		{"barbell wins over dumbbell", Exercise{Equipment: []string{"dumbbell", "barbell"}}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultWeight(tt.exercise); got != tt.want {
				t.Errorf("defaultWeight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateOneRepMax(t *testing.T) {
	tests := []struct {
		reps   int
		weight float64
		want   float64
	}{
		{1, 100, 103},
		{10, 60, 80},
		{8, 20, 25},  // 20 * (1 + 8/30) = 25.33... -> 25
		{0, 100, 0},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := estimateOneRepMax(tt.reps, tt.weight); got != tt.want {
			t.Errorf("estimateOneRepMax(%d, %v) = %v, want %v", tt.reps, tt.weight, got, tt.want)
		}
	}
}
