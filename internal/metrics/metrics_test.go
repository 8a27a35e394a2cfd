package metrics

import "testing"

func TestExactMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		gold string
		pred string
		want float64
	}{
		{"D", "D", 1.0},
		{"D", "d", 0.0},
		{"D", " D", 0.0},
		{"", "", 1.0},
		{"A", "", 0.0},
	}
	for _, tc := range cases {
		if got := ExactMatch(tc.gold, tc.pred); got != tc.want {
			t.Fatalf("ExactMatch(%q, %q): got %v want %v", tc.gold, tc.pred, got, tc.want)
		}
	}
}

func TestAverageAccuracy(t *testing.T) {
	t.Parallel()

	if got := AverageAccuracy(nil); got != 0 {
		t.Fatalf("empty: got %v want 0", got)
	}
	if got := AverageAccuracy([]float64{1, 0, 1, 0}); got != 0.5 {
		t.Fatalf("got %v want 0.5", got)
	}
	if got := AverageAccuracy([]float64{1, 1, 1}); got != 1 {
		t.Fatalf("got %v want 1", got)
	}
}
