package common

import (
	"math"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// Projection maps tile coordinates to screen pixels on a 2:1 isometric
// grid. Origin is the screen position of the center of tile (0,0).
type Projection struct {
	TileW, TileH     int
	OriginX, OriginY float64
}

// CenteredProjection places a w x h board horizontally centered on a
// screen screenW pixels wide, with its top corner margin pixels down
func CenteredProjection(tileW, tileH, screenW, margin int) Projection {
	return Projection{
		TileW:   tileW,
		TileH:   tileH,
		OriginX: float64(screenW) / 2,
		OriginY: float64(margin) + float64(tileH)/2,
	}
}

// ToScreen returns the screen center of a possibly fractional tile position
func (p Projection) ToScreen(x, y float64) (float64, float64) {
	sx := p.OriginX + (x-y)*float64(p.TileW)/2
	sy := p.OriginY + (x+y)*float64(p.TileH)/2
	return sx, sy
}

// TileCenter returns the screen center of a tile
func (p Projection) TileCenter(pos core.Position) (float64, float64) {
	return p.ToScreen(float64(pos.X), float64(pos.Y))
}

// ToTile returns the tile whose diamond contains the screen point. The
// result may lie outside the board.
func (p Projection) ToTile(sx, sy int) core.Position {
	a := (float64(sx) - p.OriginX) / (float64(p.TileW) / 2)
	b := (float64(sy) - p.OriginY) / (float64(p.TileH) / 2)
	x := (a + b) / 2
	y := (b - a) / 2
	return core.Pos(int(math.Floor(x+0.5)), int(math.Floor(y+0.5)))
}

// Diamond returns the four corners of a tile (top, right, bottom, left)
func (p Projection) Diamond(pos core.Position) [4][2]float32 {
	cx, cy := p.TileCenter(pos)
	hw, hh := float64(p.TileW)/2, float64(p.TileH)/2
	return [4][2]float32{
		{float32(cx), float32(cy - hh)},
		{float32(cx + hw), float32(cy)},
		{float32(cx), float32(cy + hh)},
		{float32(cx - hw), float32(cy)},
	}
}

// BoardSize returns the pixel extent of a w x h board
func (p Projection) BoardSize(w, h int) (int, int) {
	return (w + h) * p.TileW / 2, (w + h) * p.TileH / 2
}
