package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutWideWindow(t *testing.T) {
	cells := Layout(9, 1280, 800)
	require.Len(t, cells, 9)

	assert.Equal(t, Rect{X: 10, Y: 776, W: 60, H: 14}, cells[0])
	for i := 1; i < len(cells); i++ {
		assert.InDelta(t, 64, cells[i].X-cells[i-1].X, 1e-4)
		assert.Equal(t, cells[0].Y, cells[i].Y)
	}
}

func TestLayoutShrinksToFit(t *testing.T) {
	cells := Layout(9, 320, 240)
	require.Len(t, cells, 9)

	last := cells[len(cells)-1]
	assert.InDelta(t, 310, last.X+last.W, 1e-3)
	assert.Less(t, cells[0].W, float32(60))
}

func TestLayoutDegenerate(t *testing.T) {
	assert.Nil(t, Layout(0, 1280, 800))
	assert.Nil(t, Layout(9, 0, 800))
	assert.Nil(t, Layout(9, 1280, 20))
	assert.Nil(t, Layout(9, 40, 800))
}

func TestCellColor(t *testing.T) {
	assert.Equal(t, float32(1), CellColor(true).X())
	assert.Less(t, CellColor(false).W(), CellColor(true).W())
}

func TestProgram(t *testing.T) {
	p := Program()
	assert.Equal(t, "overlay", p.Name)
	assert.Contains(t, p.Vertex, "#version 410 core")
	assert.Contains(t, p.Fragment, "uniform vec4 color")
}

func TestHit(t *testing.T) {
	cells := Layout(9, 1280, 800)

	assert.Equal(t, 0, Hit(cells, 10, 776))
	assert.Equal(t, 3, Hit(cells, 10+3*64+30, 780))
	assert.Equal(t, -1, Hit(cells, 70+1, 780), "gap between cells")
	assert.Equal(t, -1, Hit(cells, 100, 400))
	assert.Equal(t, -1, Hit(nil, 10, 776))
}
