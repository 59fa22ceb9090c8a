package services

import "testing"

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name      string
		isCorrect bool
		timeTaken float64
		timeLimit float64
		want      int
	}{
		{"incorrect scores zero", false, 1, 30, 0},
		{"incorrect slow scores zero", false, 30, 30, 0},
		{"instant answer gets full bonus", true, 0, 30, 150},
		{"answer at limit gets base only", true, 30, 30, 100},
		{"answer past limit still gets base", true, 45, 30, 100},
		{"alice answers in 5s of 30s", true, 5, 30, 141},
		{"half time gets half bonus", true, 15, 30, 125},
		{"ten of sixty", true, 10, 60, 141},
		{"zero limit falls back to base", true, 5, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePoints(tt.isCorrect, tt.timeTaken, tt.timeLimit)
			if got != tt.want {
				t.Errorf("CalculatePoints(%v, %v, %v) = %d, want %d",
					tt.isCorrect, tt.timeTaken, tt.timeLimit, got, tt.want)
			}
		})
	}
}

func TestCalculatePointsBounds(t *testing.T) {
	// Correct answers always land in [100, 150] no matter the timing.
	for taken := -5.0; taken <= 90; taken += 0.7 {
		for _, limit := range []float64{10, 30, 60} {
			got := CalculatePoints(true, taken, limit)
			if got < 100 || got > 150 {
				t.Fatalf("CalculatePoints(true, %v, %v) = %d, out of [100,150]", taken, limit, got)
			}
		}
	}
}

func TestOptionOrderIsPermutation(t *testing.T) {
	for q := 0; q < 30; q++ {
		order := OptionOrder("ABC123", "Alice", q)
		var seen [4]bool
		for _, idx := range order {
			if idx < 0 || idx > 3 {
				t.Fatalf("question %d: index %d out of range", q, idx)
			}
			if seen[idx] {
				t.Fatalf("question %d: duplicate index %d in %v", q, idx, order)
			}
			seen[idx] = true
		}
	}
}

func TestOptionOrderDeterministic(t *testing.T) {
	a := OptionOrder("ABC123", "Alice", 3)
	b := OptionOrder("ABC123", "Alice", 3)
	if a != b {
		t.Errorf("same identity produced different orders: %v vs %v", a, b)
	}
}

func TestOptionOrderVariesByIdentity(t *testing.T) {
	base := OptionOrder("ABC123", "Alice", 0)
	differs := false
	for q := 0; q < 10; q++ {
		if OptionOrder("ABC123", "Bob", q) != base || OptionOrder("XYZ789", "Alice", q) != base {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("permutation never varied across identities")
	}
}

func TestResolveAnswer(t *testing.T) {
	order := OptionOrder("ABC123", "Alice", 7)
	for display, canonical := range order {
		got := ResolveAnswer("ABC123", "Alice", 7, display)
		if got != canonical {
			t.Errorf("display %d resolved to %d, want %d", display, got, canonical)
		}
	}

	if got := ResolveAnswer("ABC123", "Alice", 7, -1); got != -1 {
		t.Errorf("negative index resolved to %d, want -1", got)
	}
	if got := ResolveAnswer("ABC123", "Alice", 7, 4); got != -1 {
		t.Errorf("out-of-range index resolved to %d, want -1", got)
	}
}
