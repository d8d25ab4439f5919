package arrangement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBounds(t *testing.T) {
	monitors := []Monitor{
		{ID: 1, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 2, X: -2560, Y: -360, Width: 2560, Height: 1440},
		{ID: 3, X: 1920, Y: 200, Width: 1280, Height: 1024},
	}

	b := ComputeBounds(monitors)

	assert.False(t, b.Empty)
	assert.Equal(t, -2560, b.MinX)
	assert.Equal(t, -360, b.MinY)
	assert.Equal(t, 3200, b.MaxX)
	assert.Equal(t, 1224, b.MaxY)
	assert.Equal(t, 5760, b.Width)
	assert.Equal(t, 1584, b.Height)
	assert.InDelta(t, 320.0, b.CenterX, 1e-9)
	assert.InDelta(t, 432.0, b.CenterY, 1e-9)
}

func TestComputeBoundsOrderIndependent(t *testing.T) {
	a := Monitor{ID: 1, X: 0, Y: 0, Width: 1920, Height: 1080}
	b := Monitor{ID: 2, X: 1920, Y: -200, Width: 2560, Height: 1440}
	c := Monitor{ID: 3, X: -1080, Y: 0, Width: 1080, Height: 1920}

	want := ComputeBounds([]Monitor{a, b, c})
	for _, order := range [][]Monitor{{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a}} {
		assert.Equal(t, want, ComputeBounds(order))
	}
}

func TestComputeBoundsIgnoresDisabled(t *testing.T) {
	monitors := []Monitor{
		{ID: 1, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 2, X: -500, Y: -500, Width: 100, Height: 100, Disabled: true},
	}

	assert.Equal(t, ComputeBounds(monitors[:1]), ComputeBounds(monitors))
}

func TestComputeBoundsEmpty(t *testing.T) {
	assert.Equal(t, EmptyBounds, ComputeBounds(nil))
	assert.True(t, ComputeBounds([]Monitor{{Width: 10, Height: 10, Disabled: true}}).Empty)
}
