package gpu

import "testing"

func TestAlign(t *testing.T) {
	cases := []struct {
		value, alignment, want uint32
	}{
		{0, 64, 0},
		{1, 64, 64},
		{64, 64, 64},
		{65, 64, 128},
		{32, 16, 32},
		{33, 16, 48},
		{10, 0, 10},
	}
	for _, c := range cases {
		if got := align(c.value, c.alignment); got != c.want {
			t.Errorf("align(%d, %d) = %d, want %d", c.value, c.alignment, got, c.want)
		}
	}
}
