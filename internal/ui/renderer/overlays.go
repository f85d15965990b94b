package renderer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/mitchelldurbincs/IsoTactics/internal/common"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

var SelectionColor = color.RGBA{255, 255, 100, 255}

// DrawOverlays highlights whatever the pending action can reach, plus the
// hovered tile and the tower picked for purchases
func (br *BoardRenderer) DrawOverlays(screen *ebiten.Image, snap game.Snapshot, hover core.Position, selectedTower int) {
	switch snap.PendingAction {
	case core.ActionMove.String():
		for _, p := range snap.LegalMoves {
			br.fillDiamond(screen, p, common.MoveHighlight)
		}
	case core.ActionBuildTower.String():
		for _, p := range snap.TowerSites {
			br.fillDiamond(screen, p, common.SiteHighlight)
		}
	case core.ActionAttack.String():
		for _, t := range snap.LegalTargets {
			br.fillDiamond(screen, core.Pos(t.X, t.Y), common.TargetHighlight)
		}
	}

	if hover.X >= 0 && hover.Y >= 0 && hover.X < snap.Width && hover.Y < snap.Height {
		br.fillDiamond(screen, hover, common.HoverHighlight)
	}

	for _, t := range snap.Towers {
		if t.ID == selectedTower {
			br.strokeDiamond(screen, core.Pos(t.X, t.Y), SelectionColor)
		}
	}
}

func (br *BoardRenderer) strokeDiamond(screen *ebiten.Image, pos core.Position, c color.Color) {
	corners := br.proj.Diamond(pos)
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		vector.StrokeLine(screen, a[0], a[1], b[0], b[1], 2, c, true)
	}
}
