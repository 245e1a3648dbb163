package training_test

import (
	"testing"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

func TestProfileForTotality(t *testing.T) {
	// Every label must map to a usable profile, including garbage input.
	labels := []string{
		"strength", "Strength", " STRENGTH ",
		"hypertrophy", "build muscle", "Build Muscle",
		"endurance", "stamina",
		"fat loss", "fat-loss", "fat_loss", "weight loss",
		"general fitness", "general-fitness",
		"", "yoga", "🏋️", "strenght", "something else entirely",
	}

	for _, label := range labels {
		for _, compound := range []bool{true, false} {
			profile := training.ProfileFor(label, compound)
			if profile.RepRangeLow > profile.RepRangeHigh {
				t.Errorf("ProfileFor(%q, %v): rep range low %d > high %d",
					label, compound, profile.RepRangeLow, profile.RepRangeHigh)
			}
			if profile.RepRangeLow < 1 {
				t.Errorf("ProfileFor(%q, %v): rep range low %d < 1", label, compound, profile.RepRangeLow)
			}
			if profile.SetCount < 1 {
				t.Errorf("ProfileFor(%q, %v): set count %d < 1", label, compound, profile.SetCount)
			}
			if profile.TargetWeightPct <= 0 || profile.TargetWeightPct > 1 {
				t.Errorf("ProfileFor(%q, %v): target weight pct %v out of (0, 1]",
					label, compound, profile.TargetWeightPct)
			}
		}
	}
}

func TestParseGoal(t *testing.T) {
	tests := []struct {
		label string
		want  training.Goal
	}{
		{"strength", training.GoalStrength},
		{"Build Muscle", training.GoalHypertrophy},
		{"fat-loss", training.GoalFatLoss},
		{"FAT_LOSS", training.GoalFatLoss},
		{"endurance", training.GoalEndurance},
		{"general fitness", training.GoalGeneralFitness},
		{"", training.GoalGeneralFitness},
		{"unknown goal", training.GoalGeneralFitness},
	}

	for _, tt := range tests {
		if got := training.ParseGoal(tt.label); got != tt.want {
			t.Errorf("ParseGoal(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestCompoundProfilesAreHeavier(t *testing.T) {
	for _, label := range []string{"strength", "hypertrophy", "endurance", "fat loss", "general fitness"} {
		compound := training.ProfileFor(label, true)
		isolation := training.ProfileFor(label, false)
		if compound.TargetWeightPct < isolation.TargetWeightPct {
			t.Errorf("%s: compound target pct %v < isolation %v",
				label, compound.TargetWeightPct, isolation.TargetWeightPct)
		}
		if compound.RepRangeLow > isolation.RepRangeLow {
			t.Errorf("%s: compound rep low %d > isolation %d",
				label, compound.RepRangeLow, isolation.RepRangeLow)
		}
	}
}
