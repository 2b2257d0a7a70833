package timeline

import (
	"reflect"
	"testing"

	"github.com/meltforce/shotcaller/internal/models"
)

// TestOrderInOrderIdentity verifies that in-order iteration keeps the
// original sequence when there are no locks.
func TestOrderInOrderIdentity(t *testing.T) {
	entries := []models.Entry{shot("a", ""), shot("b", "linked"), shot("c", ""), shot("d", "")}
	got := ids(OrderEntries(entries, models.IterationInOrder, nil))
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestOrderLinkedStaysAdjacent verifies that a linked entry follows its
// anchor in every shuffle.
func TestOrderLinkedStaysAdjacent(t *testing.T) {
	entries := []models.Entry{
		shot("a", "normal"), shot("b", "linked"),
		shot("c", ""), shot("d", ""), shot("e", ""),
		shot("f", ""), shot("g", "linked"), shot("h", "linked"),
	}
	for s := int64(0); s < 100; s++ {
		got := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(s)))
		if len(got) != len(entries) {
			t.Fatalf("seed %d: len = %d, want %d", s, len(got), len(entries))
		}
		if indexOf(got, "b") != indexOf(got, "a")+1 {
			t.Fatalf("seed %d: b does not follow a: %v", s, got)
		}
		if indexOf(got, "g") != indexOf(got, "f")+1 || indexOf(got, "h") != indexOf(got, "g")+1 {
			t.Fatalf("seed %d: f,g,h split: %v", s, got)
		}
	}
}

// TestOrderShuffleDeterministic verifies that a fixed seed yields the same
// order on every call.
func TestOrderShuffleDeterministic(t *testing.T) {
	entries := []models.Entry{shot("a", ""), shot("b", ""), shot("c", ""), shot("d", ""), shot("e", "")}
	first := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(42)))
	for i := 0; i < 10; i++ {
		again := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(42)))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
}

// TestOrderShuffleMoves verifies that shuffling actually permutes across seeds.
func TestOrderShuffleMoves(t *testing.T) {
	entries := []models.Entry{shot("a", ""), shot("b", ""), shot("c", ""), shot("d", ""), shot("e", "")}
	orders := map[string]bool{}
	for s := int64(0); s < 30; s++ {
		got := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(s)))
		orders[joinIDs(got)] = true
	}
	if len(orders) < 2 {
		t.Errorf("30 seeds produced %d distinct orders", len(orders))
	}
}

// TestOrderPositionLocks verifies that slot 1 and last locks hold under shuffle.
func TestOrderPositionLocks(t *testing.T) {
	entries := []models.Entry{
		shot("a", ""), shot("b", ""), shot("first", "1"),
		shot("end", "last"), shot("c", ""), shot("third", "3"),
	}
	for s := int64(0); s < 50; s++ {
		got := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(s)))
		if got[0] != "first" {
			t.Fatalf("seed %d: slot 1 = %s: %v", s, got[0], got)
		}
		if got[2] != "third" {
			t.Fatalf("seed %d: slot 3 = %s: %v", s, got[2], got)
		}
		if got[len(got)-1] != "end" {
			t.Fatalf("seed %d: last = %s: %v", s, got[len(got)-1], got)
		}
	}
}

// TestOrderLockedGroupMovesTogether verifies that a locked entry keeps its
// linked followers right after it.
func TestOrderLockedGroupMovesTogether(t *testing.T) {
	entries := []models.Entry{
		shot("a", ""), shot("b", ""),
		shot("x", "last"), shot("y", "linked"),
		shot("c", ""),
	}
	for s := int64(0); s < 20; s++ {
		got := ids(OrderEntries(entries, models.IterationShuffle, NewLCG(s)))
		n := len(got)
		if got[n-2] != "x" || got[n-1] != "y" {
			t.Fatalf("seed %d: tail = %v", s, got)
		}
	}
}

// TestOrderOutOfRangeSlotDropped verifies that a lock beyond the pattern
// length drops the group silently.
func TestOrderOutOfRangeSlotDropped(t *testing.T) {
	entries := []models.Entry{shot("a", "5"), shot("b", "")}
	got := ids(OrderEntries(entries, models.IterationInOrder, nil))
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("order = %v, want [b]", got)
	}
}

// TestOrderFragmentedGapSplitsGroup verifies the fallback that scatters a
// linked group when no contiguous gap is left.
func TestOrderFragmentedGapSplitsGroup(t *testing.T) {
	// Slots: [_, L2, _] leaves no run of 2 for the a+b group.
	entries := []models.Entry{shot("a", ""), shot("b", "linked"), shot("mid", "2")}
	got := ids(OrderEntries(entries, models.IterationInOrder, nil))
	want := []string{"a", "mid", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestOrderPatterns verifies the same ordering rules apply to patterns.
func TestOrderPatterns(t *testing.T) {
	patterns := []models.Pattern{
		{ID: "warmup", Position: models.ParsePosition("1")},
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"},
		{ID: "cooldown", Position: models.ParsePosition("last")},
	}
	for s := int64(0); s < 20; s++ {
		got := Order(patterns, models.IterationShuffle, NewLCG(s))
		if got[0].ID != "warmup" || got[len(got)-1].ID != "cooldown" {
			t.Fatalf("seed %d: %v ... %v", s, got[0].ID, got[len(got)-1].ID)
		}
	}
}

func joinIDs(list []string) string {
	s := ""
	for _, id := range list {
		s += id + ","
	}
	return s
}
