package timerange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_NormalizesToMidnight(t *testing.T) {
	start := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)

	tr, err := New(start, end)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !tr.Start.Equal(date(2026, 9, 1)) {
		t.Errorf("Expected start 2026-09-01T00:00Z, got %v", tr.Start)
	}
	if !tr.End.Equal(date(2026, 9, 10)) {
		t.Errorf("Expected end 2026-09-10T00:00Z, got %v", tr.End)
	}
}

func TestNew_RejectsStartNotBeforeEnd(t *testing.T) {
	if _, err := New(date(2026, 9, 10), date(2026, 9, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange for reversed range, got %v", err)
	}
	if _, err := New(date(2026, 9, 1), date(2026, 9, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange for zero-length range, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	base, _ := New(date(2026, 9, 10), date(2026, 9, 20))

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"disjoint before", date(2026, 9, 1), date(2026, 9, 8), false},
		{"disjoint after", date(2026, 9, 22), date(2026, 9, 30), false},
		{"touching end day", date(2026, 9, 20), date(2026, 9, 25), true},
		{"touching start day", date(2026, 9, 5), date(2026, 9, 10), true},
		{"contained", date(2026, 9, 12), date(2026, 9, 15), true},
		{"containing", date(2026, 9, 1), date(2026, 9, 30), true},
		{"partial left", date(2026, 9, 5), date(2026, 9, 12), true},
		{"partial right", date(2026, 9, 18), date(2026, 9, 25), true},
		{"adjacent before", date(2026, 9, 1), date(2026, 9, 9), false},
		{"adjacent after", date(2026, 9, 21), date(2026, 9, 30), false},
	}
	for _, tc := range cases {
		other, err := New(tc.start, tc.end)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got := base.Overlaps(other); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		if got := other.Overlaps(base); got != tc.want {
			t.Errorf("%s: Overlaps is not symmetric, reversed = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDays_CountsBothBoundaries(t *testing.T) {
	tr, _ := New(date(2026, 9, 1), date(2026, 9, 3))
	if got := tr.Days(); got != 3 {
		t.Errorf("Expected 3 days, got %d", got)
	}
}

func TestEachDay_VisitsEveryDayInOrder(t *testing.T) {
	tr, _ := New(date(2026, 9, 28), date(2026, 10, 2))
	var visited []time.Time
	tr.EachDay(func(day time.Time) {
		visited = append(visited, day)
	})
	if len(visited) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(visited))
	}
	if !visited[0].Equal(date(2026, 9, 28)) || !visited[4].Equal(date(2026, 10, 2)) {
		t.Errorf("Expected visit from 2026-09-28 to 2026-10-02, got %v .. %v", visited[0], visited[4])
	}
}

func TestContainsDay(t *testing.T) {
	tr, _ := New(date(2026, 9, 10), date(2026, 9, 20))
	if !tr.ContainsDay(time.Date(2026, 9, 10, 23, 0, 0, 0, time.UTC)) {
		t.Error("Expected start day to be contained")
	}
	if !tr.ContainsDay(date(2026, 9, 20)) {
		t.Error("Expected end day to be contained")
	}
	if tr.ContainsDay(date(2026, 9, 21)) {
		t.Error("Expected day after end to be outside")
	}
}
