package quest

import (
	"errors"
	"math"
	"testing"
)

func TestComputeFocus(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		damp     float64
		strength float64
		want     int
	}{
		{"empty party", 8, 8, 0, 0},
		{"nan strength", 8, 8, math.NaN(), 0},
		{"damped levels", 8, 8, 50, 1},
		{"undamped types", 4, 0, 50, 2},
		{"full damp", 8, 20, 99, 0},
		{"max level", 4, 0, 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFocus(tt.size, tt.damp, 100, tt.strength)
			if got != tt.want {
				t.Errorf("ComputeFocus(%d, %v, 100, %v) = %d, want %d", tt.size, tt.damp, tt.strength, got, tt.want)
			}
		})
	}

	if got := ComputeFocus(0, 0, 100, 50); got != 0 {
		t.Errorf("empty list focus = %d", got)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		scope      float64
		focus      int
		start, end int
	}{
		{"centered", 8, 0.5, 4, 2, 7},
		{"zero scope at bottom", 8, 0, 0, 0, 1},
		{"wide scope clipped", 3, 1.5, 2, 0, 3},
		{"focus past end", 3, 0, 10, 2, 3},
		{"single entry", 1, 0.83, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.size, tt.scope, tt.focus)
			if start != tt.start || end != tt.end {
				t.Errorf("Window = [%d, %d), want [%d, %d)", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestIndexStaysInWindow(t *testing.T) {
	s := testSampler(42)
	for i := 0; i < 500; i++ {
		idx, err := s.Index(8, 0.83, 0)
		if err != nil {
			t.Fatal(err)
		}
		// scope is at most 0.83 so the window never reaches past ceil(7*0.83+1)
		if idx < 0 || idx >= 7 {
			t.Fatalf("Index = %d outside [0, 7)", idx)
		}
	}

	if _, err := s.Index(0, 1, 0); !errors.Is(err, ErrEmptyList) {
		t.Errorf("err = %v, want ErrEmptyList", err)
	}
}

func TestSampleWeighted(t *testing.T) {
	s := testSampler(3)
	list := []string{"G", "F", "E", "D"}
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		v, err := SampleWeighted(s, list, 1.8, 1)
		if err != nil {
			t.Fatal(err)
		}
		seen[v] = true
	}
	if len(seen) < 2 {
		t.Errorf("wide scope sampled only %v", seen)
	}

	if _, err := SampleWeighted(s, []int{}, 1, 0); !errors.Is(err, ErrEmptyList) {
		t.Errorf("err = %v, want ErrEmptyList", err)
	}
}

func TestSteps(t *testing.T) {
	s := testSampler(9)
	tests := []struct {
		level    int
		min, max int
	}{
		{0, 1, 2},
		{2, 2, 4},
		{7, 4, 8},
	}
	for _, tt := range tests {
		for i := 0; i < 200; i++ {
			got := s.Steps(tt.level)
			if got < tt.min || got > tt.max {
				t.Fatalf("Steps(%d) = %d, want within [%d, %d]", tt.level, got, tt.min, tt.max)
			}
		}
	}
}

func TestBonus(t *testing.T) {
	s := testSampler(5)
	ladder := []int{100, 500, 3000}

	for i := 0; i < 200; i++ {
		b := s.Bonus(ladder, 0)
		if b.Increase < 10 || b.Increase > 15 {
			t.Fatalf("level 0 increase = %d", b.Increase)
		}
		if b.Deduct < 12 || b.Deduct > 23 {
			t.Fatalf("level 0 deduct = %d", b.Deduct)
		}

		b = s.Bonus(ladder, 1)
		if b.Increase < 11 || b.Increase > 18 {
			t.Fatalf("level 1 increase = %d", b.Increase)
		}
		if b.Deduct < 22 || b.Deduct > 40 {
			t.Fatalf("level 1 deduct = %d", b.Deduct)
		}
	}

	if b := s.Bonus(ladder, 5); b != (Bonus{}) {
		t.Errorf("out-of-range bonus = %+v", b)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.4, 0}, {0.5, 1}, {1.5, 2}, {2.5, 3}, {12.8, 13},
	}
	for _, tt := range tests {
		if got := round(tt.in); got != tt.want {
			t.Errorf("round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
