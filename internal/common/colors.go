package common

import (
	"image/color"
)

// PlayerColors defines the color scheme for each side; -1 is unowned
var PlayerColors = map[int]color.RGBA{
	-1: {120, 120, 120, 255}, // Neutral – gray
	0:  {200, 50, 50, 255},   // Red
	1:  {50, 100, 200, 255},  // Blue
}

// Tile colors
var (
	FloorColor        = color.RGBA{96, 112, 88, 255}
	BlockedColor      = color.RGBA{80, 80, 80, 255}
	CapturePointColor = color.RGBA{220, 190, 60, 255}
	MonsterColor      = color.RGBA{60, 170, 70, 255}
	BossColor         = color.RGBA{150, 60, 170, 255}
	UnitOutlineColor  = color.RGBA{20, 20, 20, 255}
)

// Highlight colors, drawn translucent over tiles
var (
	MoveHighlight   = color.RGBA{80, 160, 255, 110}
	TargetHighlight = color.RGBA{255, 70, 70, 130}
	SiteHighlight   = color.RGBA{255, 220, 90, 110}
	HoverHighlight  = color.RGBA{255, 255, 255, 60}
)

// UI colors
var (
	BackgroundColor = color.RGBA{30, 30, 36, 255}
	GridLineColor   = color.RGBA{50, 50, 50, 255}
	HPBarBack       = color.RGBA{40, 0, 0, 255}
	HPBarFill       = color.RGBA{90, 220, 90, 255}
)

// PlayerColor returns the color for a side, falling back to neutral
func PlayerColor(id int) color.RGBA {
	if c, ok := PlayerColors[id]; ok {
		return c
	}
	return PlayerColors[-1]
}

// Shade returns c lightened (amount > 0) or darkened (amount < 0),
// clamped per channel. Alpha is kept.
func Shade(c color.RGBA, amount int) color.RGBA {
	return color.RGBA{
		R: clampByte(int(c.R) + amount),
		G: clampByte(int(c.G) + amount),
		B: clampByte(int(c.B) + amount),
		A: c.A,
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
