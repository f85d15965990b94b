package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

func TestProjection_ToScreen(t *testing.T) {
	p := Projection{TileW: 64, TileH: 32, OriginX: 400, OriginY: 40}

	tests := []struct {
		name   string
		x, y   float64
		sx, sy float64
	}{
		{"origin", 0, 0, 400, 40},
		{"east step goes right and down", 1, 0, 432, 56},
		{"south step goes left and down", 0, 1, 368, 56},
		{"diagonal goes straight down", 1, 1, 400, 72},
		{"fractional", 0.5, 0, 416, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := p.ToScreen(tt.x, tt.y)
			assert.InDelta(t, tt.sx, sx, 1e-9)
			assert.InDelta(t, tt.sy, sy, 1e-9)
		})
	}
}

func TestProjection_ToTileRoundTrip(t *testing.T) {
	p := CenteredProjection(64, 32, 800, 20)
	for y := -2; y < 12; y++ {
		for x := -2; x < 12; x++ {
			pos := core.Pos(x, y)
			cx, cy := p.TileCenter(pos)
			assert.Equal(t, pos, p.ToTile(int(cx), int(cy)), "center of %v", pos)
		}
	}
}

func TestProjection_ToTileInsideDiamond(t *testing.T) {
	p := Projection{TileW: 64, TileH: 32}
	// points just inside each corner of tile (0,0)
	assert.Equal(t, core.Pos(0, 0), p.ToTile(0, -14))
	assert.Equal(t, core.Pos(0, 0), p.ToTile(30, 0))
	assert.Equal(t, core.Pos(0, 0), p.ToTile(0, 14))
	assert.Equal(t, core.Pos(0, 0), p.ToTile(-30, 0))
	// and just past them
	assert.Equal(t, core.Pos(1, 0), p.ToTile(20, 10))
	assert.Equal(t, core.Pos(0, 1), p.ToTile(-20, 10))
	assert.Equal(t, core.Pos(-1, 0), p.ToTile(-20, -10))
	assert.Equal(t, core.Pos(0, -1), p.ToTile(20, -10))
}

func TestProjection_Diamond(t *testing.T) {
	p := Projection{TileW: 64, TileH: 32, OriginX: 100, OriginY: 100}
	d := p.Diamond(core.Pos(0, 0))
	assert.Equal(t, [2]float32{100, 84}, d[0])
	assert.Equal(t, [2]float32{132, 100}, d[1])
	assert.Equal(t, [2]float32{100, 116}, d[2])
	assert.Equal(t, [2]float32{68, 100}, d[3])
}

func TestProjection_BoardSize(t *testing.T) {
	p := Projection{TileW: 64, TileH: 32}
	w, h := p.BoardSize(10, 8)
	assert.Equal(t, 576, w)
	assert.Equal(t, 288, h)
}
