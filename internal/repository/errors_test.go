package repository

import "testing"

// TestClampLimit проверяет приведение лимита выборки к диапазону.
func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 100},
		{-5, 100},
		{1, 1},
		{500, 500},
		{501, 100},
	}

	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Fatalf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
