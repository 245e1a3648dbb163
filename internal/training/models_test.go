package training_test

import (
	"testing"

	"github.com/rafatrikUOC/soloprogress/internal/training"
)

func TestContextEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b training.Context
		want bool
	}{
		{"free matches free", training.FreeContext(), training.FreeContext(), true},
		{"same split slot", training.SplitContext(1, 2), training.SplitContext(1, 2), true},
		{"different session index", training.SplitContext(1, 2), training.SplitContext(1, 3), false},
		{"different split", training.SplitContext(1, 2), training.SplitContext(2, 2), false},
		{"same routine", training.RoutineContext("a"), training.RoutineContext("a"), true},
		{"different routine", training.RoutineContext("a"), training.RoutineContext("b"), false},
		{"same punctual", training.PunctualContext("x"), training.PunctualContext("x"), true},
		{"different kinds", training.FreeContext(), training.SplitContext(1, 0), false},
		{"routine vs punctual with same id", training.RoutineContext("x"), training.PunctualContext("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrainingSessionOpen(t *testing.T) {
	session := training.TrainingSession{}
	if !session.Open() {
		t.Error("session without end time should be open")
	}
}
