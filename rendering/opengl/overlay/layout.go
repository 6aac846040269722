package overlay

// Cell geometry in pixels, top-left origin.
const (
	margin     = 10
	gap        = 4
	cellHeight = 14
	maxWidth   = 60
)

// Rect is a screen rectangle in pixels with a top-left origin.
type Rect struct {
	X, Y, W, H float32
}

// Layout places n equal cells in a row anchored to the bottom-left corner.
// Cells shrink to fit narrow windows; nothing is returned when they would
// vanish.
func Layout(n, width, height int) []Rect {
	if n <= 0 || width <= 0 || height <= 2*margin+cellHeight {
		return nil
	}

	w := float32(width-2*margin-(n-1)*gap) / float32(n)
	if w > maxWidth {
		w = maxWidth
	}
	if w < 1 {
		return nil
	}

	y := float32(height - margin - cellHeight)
	cells := make([]Rect, n)
	for i := range cells {
		cells[i] = Rect{
			X: margin + float32(i)*(w+gap),
			Y: y,
			W: w,
			H: cellHeight,
		}
	}
	return cells
}

// Hit returns the index of the cell containing (x, y), or -1.
func Hit(cells []Rect, x, y float32) int {
	for i, c := range cells {
		if x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H {
			return i
		}
	}
	return -1
}
