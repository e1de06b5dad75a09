package dedup

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestRememberSuppressesDuplicates(t *testing.T) {
	s := New(10)

	if !s.Remember("msg-1") {
		t.Fatal("first Remember should return true")
	}
	if s.Remember("msg-1") {
		t.Fatal("second Remember of same ID should return false")
	}
	if !s.Remember("msg-2") {
		t.Fatal("Remember of a fresh ID should return true")
	}
}

func TestFIFOEviction(t *testing.T) {
	s := New(3)

	s.Remember("a")
	s.Remember("b")
	s.Remember("c")
	// Capacity reached; adding a fourth evicts the oldest.
	s.Remember("d")

	if s.Contains("a") {
		t.Error("oldest entry should have been evicted")
	}
	for _, id := range []string{"b", "c", "d"} {
		if !s.Contains(id) {
			t.Errorf("entry %q should still be present", id)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestEvictedIDCanBeRememberedAgain(t *testing.T) {
	s := New(2)

	s.Remember("a")
	s.Remember("b")
	s.Remember("c") // evicts "a"

	if !s.Remember("a") {
		t.Error("an evicted ID should count as new again")
	}
}

func TestNonPositiveCapacityFallsBack(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		s := New(capacity)
		if s.Capacity() != DefaultCapacity {
			t.Errorf("New(%d).Capacity() = %d, want %d", capacity, s.Capacity(), DefaultCapacity)
		}
	}
}

// TestBoundedSizeProperty checks that no insertion sequence ever grows the
// set past its capacity and that the most recent IDs are always retained.
func TestBoundedSizeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 50).Draw(t, "capacity")
		n := rapid.IntRange(0, 200).Draw(t, "n")

		s := New(capacity)
		var last string
		for i := 0; i < n; i++ {
			last = fmt.Sprintf("id-%d", rapid.IntRange(0, 300).Draw(t, "id"))
			s.Remember(last)
		}

		if s.Len() > capacity {
			t.Fatalf("set grew to %d entries, capacity %d", s.Len(), capacity)
		}
		if n > 0 && !s.Contains(last) {
			t.Fatalf("most recently remembered ID %q missing", last)
		}
	})
}
