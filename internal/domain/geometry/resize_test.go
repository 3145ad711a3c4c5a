package geometry

import (
	"testing"

	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = types.Rect{X: 100, Y: 100, Width: 400, Height: 300}

func TestResizeDirections(t *testing.T) {
	tests := []struct {
		name  string
		dir   Direction
		delta Point
		want  types.Rect
	}{
		{"right grows width", Right, Point{50, 30}, types.Rect{X: 100, Y: 100, Width: 450, Height: 300}},
		{"bottom grows height", Bottom, Point{50, 30}, types.Rect{X: 100, Y: 100, Width: 400, Height: 330}},
		{"left anchors right edge", Left, Point{-40, 0}, types.Rect{X: 60, Y: 100, Width: 440, Height: 300}},
		{"top anchors bottom edge", Top, Point{0, 25}, types.Rect{X: 100, Y: 125, Width: 400, Height: 275}},
		{"bottom-right", BottomRight, Point{10, 20}, types.Rect{X: 100, Y: 100, Width: 410, Height: 320}},
		{"top-left", TopLeft, Point{10, 20}, types.Rect{X: 110, Y: 120, Width: 390, Height: 280}},
		{"top-right", TopRight, Point{10, 20}, types.Rect{X: 100, Y: 120, Width: 410, Height: 280}},
		{"bottom-left", BottomLeft, Point{10, 20}, types.Rect{X: 110, Y: 100, Width: 390, Height: 320}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resize(tt.dir, tt.delta, base, nil))
		})
	}
}

func TestResizeFloors(t *testing.T) {
	deltas := []Point{{-10000, -10000}, {10000, 10000}, {-399, -299}, {399, 299}, {0, 0}}

	for _, dir := range Directions {
		for _, delta := range deltas {
			got := Resize(dir, delta, base, nil)
			assert.GreaterOrEqual(t, got.Width, MinWidth, "%s %v", dir, delta)
			assert.GreaterOrEqual(t, got.Height, MinHeight, "%s %v", dir, delta)
		}
	}
}

func TestResizeFloorKeepsOppositeEdge(t *testing.T) {
	got := Resize(Left, Point{X: 10000}, base, nil)
	assert.Equal(t, MinWidth, got.Width)
	assert.Equal(t, base.X+base.Width, got.X+got.Width)

	got = Resize(Top, Point{Y: 10000}, base, nil)
	assert.Equal(t, MinHeight, got.Height)
	assert.Equal(t, base.Y+base.Height, got.Y+got.Height)
}

func TestResizeUndersizedStart(t *testing.T) {
	small := types.Rect{X: 0, Y: 0, Width: 50, Height: 50}
	got := Resize(Right, Point{}, small, nil)
	assert.Equal(t, MinWidth, got.Width)
	assert.Equal(t, MinHeight, got.Height)
}

func TestResizeWithBounds(t *testing.T) {
	bounds := &Bounds{X: 0, Y: 0, Width: 800, Height: 600}

	t.Run("left edge stops at bounds and right edge stays", func(t *testing.T) {
		got := Resize(Left, Point{X: -500}, base, bounds)
		assert.Equal(t, 0, got.X)
		assert.Equal(t, 500, got.Width)
	})

	t.Run("right edge stops at bounds", func(t *testing.T) {
		got := Resize(Right, Point{X: 1000}, base, bounds)
		assert.Equal(t, 100, got.X)
		assert.Equal(t, 700, got.Width)
	})

	t.Run("top edge stops at bounds", func(t *testing.T) {
		got := Resize(TopLeft, Point{X: -500, Y: -500}, base, bounds)
		assert.Equal(t, types.Rect{X: 0, Y: 0, Width: 500, Height: 400}, got)
	})

	t.Run("bottom edge stops at bounds", func(t *testing.T) {
		got := Resize(Bottom, Point{Y: 1000}, base, bounds)
		assert.Equal(t, 500, got.Height)
	})

	t.Run("result fits inside bounds", func(t *testing.T) {
		for _, dir := range Directions {
			got := Resize(dir, Point{X: -2000, Y: 2000}, base, bounds)
			assert.GreaterOrEqual(t, got.X, bounds.X)
			assert.GreaterOrEqual(t, got.Y, bounds.Y)
			assert.LessOrEqual(t, got.X+got.Width, bounds.Right())
			assert.LessOrEqual(t, got.Y+got.Height, bounds.Bottom())
		}
	})

	t.Run("minimum wins over tiny bounds", func(t *testing.T) {
		tiny := &Bounds{Width: 100, Height: 100}
		got := Resize(BottomRight, Point{X: -1000, Y: -1000}, base, tiny)
		assert.Equal(t, MinWidth, got.Width)
		assert.Equal(t, MinHeight, got.Height)
		assert.Equal(t, 0, got.X)
		assert.Equal(t, 0, got.Y)
	})
}

func TestDrag(t *testing.T) {
	size := types.Size{Width: 300, Height: 200}

	pos := Drag(Point{X: 500, Y: 400}, Point{X: 20, Y: 10}, size, nil)
	assert.Equal(t, types.Position{X: 480, Y: 390}, pos)

	pos = Drag(Point{X: -100, Y: 5000}, Point{X: 20, Y: 10}, size, &Bounds{Width: 800, Height: 600})
	assert.Equal(t, types.Position{X: 0, Y: 400}, pos)
}

func TestParseDirection(t *testing.T) {
	for _, dir := range Directions {
		got, err := ParseDirection(string(dir))
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	}

	_, err := ParseDirection("middle")
	assert.Error(t, err)
	assert.False(t, Direction("").Valid())
}
