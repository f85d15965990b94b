package renderer

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/IsoTactics/internal/common"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

var unitLetters = map[string]string{
	"soldier": "S",
	"archer":  "A",
	"mage":    "M",
	"cavalry": "C",
}

// BoardRenderer draws a match snapshot as isometric diamonds
type BoardRenderer struct {
	proj        common.Projection
	defaultFont font.Face
	showCoords  bool

	fillImg *ebiten.Image
	vs      []ebiten.Vertex
	is      []uint16
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(proj common.Projection, f font.Face, showCoords bool) *BoardRenderer {
	fillImg := ebiten.NewImage(1, 1)
	fillImg.Fill(color.White)
	return &BoardRenderer{
		proj:        proj,
		defaultFont: f,
		showCoords:  showCoords,
		fillImg:     fillImg,
		vs:          make([]ebiten.Vertex, 0, 8),
		is:          make([]uint16, 0, 12),
	}
}

func (br *BoardRenderer) Projection() common.Projection { return br.proj }

// Draw renders terrain, then entities back to front
func (br *BoardRenderer) Draw(screen *ebiten.Image, snap game.Snapshot) {
	for y, row := range snap.Rows {
		for x := 0; x < len(row); x++ {
			c := common.FloorColor
			if row[x] == '#' {
				c = common.BlockedColor
			}
			// checkerboard shading keeps tile edges readable
			if (x+y)%2 == 1 {
				c = common.Shade(c, -10)
			}
			br.fillDiamond(screen, core.Pos(x, y), c)
			if br.showCoords && br.defaultFont != nil && (x+y)%4 == 0 {
				cx, cy := br.proj.TileCenter(core.Pos(x, y))
				text.Draw(screen, strconv.Itoa(x)+","+strconv.Itoa(y), br.defaultFont, int(cx)-12, int(cy)+4, common.GridLineColor)
			}
		}
	}

	for _, cp := range snap.CapturePoints {
		br.drawCapturePoint(screen, cp)
	}
	for _, t := range snap.Towers {
		br.drawTower(screen, t)
	}
	for _, m := range snap.Monsters {
		cx, cy := br.proj.TileCenter(core.Pos(m.X, m.Y))
		vector.DrawFilledCircle(screen, float32(cx), float32(cy-4), float32(br.proj.TileH)/4, common.MonsterColor, true)
	}
	if b := snap.Boss; b != nil {
		cx, cy := br.proj.TileCenter(core.Pos(b.X, b.Y))
		r := float32(br.proj.TileH) / 2
		vector.DrawFilledCircle(screen, float32(cx), float32(cy)-r/2, r, common.BossColor, true)
		br.drawHPBar(screen, cx, cy-float64(r)*1.8, b.HP, b.MaxHP)
	}
	for _, u := range snap.Units {
		br.drawUnit(screen, u, u.ID == snap.SelectedUnit)
	}
}

func (br *BoardRenderer) drawCapturePoint(screen *ebiten.Image, cp game.CapturePointView) {
	pos := core.Pos(cp.X, cp.Y)
	c := common.CapturePointColor
	if cp.Owner != core.NoOwner {
		c = common.PlayerColor(cp.Owner)
	}
	c.A = 160
	br.fillDiamond(screen, pos, c)

	// progress as a bar under the tile
	cx, cy := br.proj.TileCenter(pos)
	w := float32(br.proj.TileW) / 2
	x := float32(cx) - w/2
	y := float32(cy) + float32(br.proj.TileH)/4
	vector.DrawFilledRect(screen, x, y, w, 3, common.HPBarBack, false)
	vector.DrawFilledRect(screen, x, y, w*float32(cp.Progress)/100, 3, common.CapturePointColor, false)
}

func (br *BoardRenderer) drawTower(screen *ebiten.Image, t game.TowerView) {
	cx, cy := br.proj.TileCenter(core.Pos(t.X, t.Y))
	w := float32(br.proj.TileW) / 4
	h := float32(br.proj.TileH)
	x := float32(cx) - w/2
	y := float32(cy) - h
	vector.DrawFilledRect(screen, x, y, w, h, common.PlayerColor(t.Owner), true)
	vector.StrokeRect(screen, x, y, w, h, 1, common.UnitOutlineColor, true)
}

func (br *BoardRenderer) drawUnit(screen *ebiten.Image, u game.UnitView, selected bool) {
	fx, fy := float64(u.X), float64(u.Y)
	if u.InTransit {
		fx, fy = u.FX, u.FY
	}
	cx, cy := br.proj.ToScreen(fx, fy)
	r := float32(br.proj.TileH) / 3
	ux, uy := float32(cx), float32(cy)-r

	c := common.PlayerColor(u.Owner)
	if u.HasMoved && u.HasAttacked {
		c = common.Shade(c, -60)
	}
	if selected {
		vector.DrawFilledCircle(screen, ux, uy, r+3, color.White, true)
	}
	vector.DrawFilledCircle(screen, ux, uy, r, c, true)
	vector.StrokeCircle(screen, ux, uy, r, 1, common.UnitOutlineColor, true)

	if br.defaultFont != nil {
		letter := unitLetters[u.Kind]
		b := text.BoundString(br.defaultFont, letter)
		text.Draw(screen, letter, br.defaultFont, int(ux)-b.Dx()/2, int(uy)+b.Dy()/2, color.White)
	}
	br.drawHPBar(screen, cx, float64(uy-r-5), u.HP, u.MaxHP)
}

func (br *BoardRenderer) drawHPBar(screen *ebiten.Image, cx, y float64, hp, maxHP int) {
	if maxHP <= 0 {
		return
	}
	w := float32(br.proj.TileW) / 3
	x := float32(cx) - w/2
	vector.DrawFilledRect(screen, x, float32(y), w, 3, common.HPBarBack, false)
	vector.DrawFilledRect(screen, x, float32(y), w*float32(hp)/float32(maxHP), 3, common.HPBarFill, false)
}

// fillDiamond fills one tile with c
func (br *BoardRenderer) fillDiamond(screen *ebiten.Image, pos core.Position, c color.RGBA) {
	corners := br.proj.Diamond(pos)
	var path vector.Path
	path.MoveTo(corners[0][0], corners[0][1])
	for _, p := range corners[1:] {
		path.LineTo(p[0], p[1])
	}
	path.Close()

	br.vs, br.is = path.AppendVerticesAndIndicesForFilling(br.vs[:0], br.is[:0])
	for i := range br.vs {
		br.vs[i].ColorR = float32(c.R) / 255
		br.vs[i].ColorG = float32(c.G) / 255
		br.vs[i].ColorB = float32(c.B) / 255
		br.vs[i].ColorA = float32(c.A) / 255
	}
	screen.DrawTriangles(br.vs, br.is, br.fillImg, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
