package training

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_contextColumnsRoundTrip(t *testing.T) {
	contexts := []Context{
		FreeContext(),
		SplitContext(3, 0),
		SplitContext(3, 5),
		RoutineContext("morning-mobility"),
		PunctualContext("2025-03-10-drop-in"),
	}

	for _, original := range contexts {
		splitID, sessionIndex, routineID, punctualID := contextColumns(original)
		restored := contextFromColumns(splitID, sessionIndex, routineID, punctualID)
		if diff := cmp.Diff(original, restored); diff != "" {
			t.Errorf("context round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func Test_marshalJSONColumn_NilSliceIsEmptyArray(t *testing.T) {
	var ids []int64
	got, err := marshalJSONColumn(ids)
	if err != nil {
		t.Fatalf("marshalJSONColumn: %v", err)
	}
	if got != "[]" {
		t.Errorf("marshalJSONColumn(nil slice) = %q, want %q", got, "[]")
	}
}
