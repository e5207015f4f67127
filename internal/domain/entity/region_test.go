package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionCenter(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := r.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
}

func TestRegionExpand(t *testing.T) {
	r := Region{X: 50, Y: 50, Width: 100, Height: 100}
	out := r.Expand(10, 640, 480)
	require.Equal(t, Region{X: 40, Y: 40, Width: 120, Height: 120}, out)
}

func TestRegionExpand_ClampsToImageBounds(t *testing.T) {
	r := Region{X: 5, Y: 5, Width: 630, Height: 470}
	out := r.Expand(20, 640, 480)
	require.Equal(t, Region{X: 0, Y: 0, Width: 640, Height: 480}, out)
}
