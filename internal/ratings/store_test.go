package ratings

import (
	"testing"
	"time"
)

func TestRecordAndHistory(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, elo := range []int{1320, 1500, 1700} {
		err := store.Record(Result{
			When:         base.Add(time.Duration(i) * time.Minute),
			Baseline:     "expert",
			ReferenceElo: elo,
			Games:        20,
			Score:        0.5,
			EstimatedElo: float64(elo),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	history, err := store.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history has %d entries, want 3", len(history))
	}
	if history[0].ReferenceElo != 1320 {
		t.Errorf("first entry elo = %d, want 1320", history[0].ReferenceElo)
	}
	if history[2].Baseline != "expert" {
		t.Errorf("baseline = %q, want expert", history[2].Baseline)
	}
}
