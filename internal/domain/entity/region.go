package entity

// Region is an axis-aligned image area proposed by the localizer.
type Region struct {
	X          int     // top-left X in pixels
	Y          int     // top-left Y in pixels
	Width      int     // width in pixels
	Height     int     // height in pixels
	Confidence float64 // detector confidence, 0..1
}

// Center returns the region centre coordinates.
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Expand grows the region by margin pixels on every side, clamped to the
// image bounds.
func (r Region) Expand(margin, imageW, imageH int) Region {
	x := r.X - margin
	y := r.Y - margin
	x2 := r.X + r.Width + margin
	y2 := r.Y + r.Height + margin

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x2 > imageW {
		x2 = imageW
	}
	if y2 > imageH {
		y2 = imageH
	}

	return Region{X: x, Y: y, Width: x2 - x, Height: y2 - y, Confidence: r.Confidence}
}
