package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerColors(t *testing.T) {
	red := PlayerColor(0)
	assert.True(t, red.R > red.G && red.R > red.B, "player 0 is red")

	blue := PlayerColor(1)
	assert.True(t, blue.B > blue.R && blue.B > blue.G, "player 1 is blue")

	neutral := PlayerColor(-1)
	assert.Equal(t, neutral.R, neutral.G)
	assert.Equal(t, neutral.G, neutral.B)

	assert.Equal(t, neutral, PlayerColor(7), "unknown sides fall back to neutral")

	for id, c := range PlayerColors {
		assert.Equal(t, uint8(255), c.A, "player %d color should be opaque", id)
	}
}

func TestHighlightsAreTranslucent(t *testing.T) {
	for name, c := range map[string]color.RGBA{
		"move":   MoveHighlight,
		"target": TargetHighlight,
		"site":   SiteHighlight,
		"hover":  HoverHighlight,
	} {
		assert.Less(t, c.A, uint8(255), name)
		assert.Greater(t, c.A, uint8(0), name)
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		name   string
		in     color.RGBA
		amount int
		want   color.RGBA
	}{
		{"lighten", color.RGBA{100, 100, 100, 255}, 30, color.RGBA{130, 130, 130, 255}},
		{"darken", color.RGBA{100, 50, 20, 255}, -30, color.RGBA{70, 20, 0, 255}},
		{"clamps high", color.RGBA{250, 10, 200, 128}, 30, color.RGBA{255, 40, 230, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shade(tt.in, tt.amount))
		})
	}
}
