package session

import "testing"

func TestRollTrustScore(t *testing.T) {
	cases := []struct {
		old, rating, want float64
	}{
		{0, 5, 2.5},
		{3, 4, 3.5},
		{4.5, 5, 4.75},
		{2.5, 2.5, 2.5},
	}
	for _, tc := range cases {
		if got := RollTrustScore(tc.old, tc.rating); got != tc.want {
			t.Errorf("RollTrustScore(%v, %v) = %v, want %v", tc.old, tc.rating, got, tc.want)
		}
	}
}
