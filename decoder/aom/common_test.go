package aom

import (
	"testing"
)

func TestSubsample(t *testing.T) {
	cases := []struct {
		n        int
		shift    uint
		expected int
	}{
		{0, 0, 0},
		{0, 1, 0},
		{1, 0, 1},
		{1, 1, 1},
		{4, 1, 2},
		{5, 1, 3},
		{7, 2, 2},
	}

	for _, c := range cases {
		ret := subsample(c.n, c.shift)
		if ret != c.expected {
			t.Errorf("subsample(%d, %d) should return %d but got %d", c.n, c.shift, c.expected, ret)
		}
	}
}

func TestPlaneLen(t *testing.T) {
	cases := []struct {
		rows, stride, rowBytes, expected int
	}{
		{0, 8, 4, 0},
		{1, 8, 4, 4},
		{2, 8, 4, 12},
		{3, 4, 4, 12},
		{2, 0, 4, 0},
		{2, -8, 4, 0},
	}

	for _, c := range cases {
		ret := planeLen(c.rows, c.stride, c.rowBytes)
		if ret != c.expected {
			t.Errorf("planeLen(%d, %d, %d) should return %d but got %d", c.rows, c.stride, c.rowBytes, c.expected, ret)
		}
	}
}
