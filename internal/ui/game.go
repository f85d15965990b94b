package ui

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/IsoTactics/internal/common"
	"github.com/mitchelldurbincs/IsoTactics/internal/config"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/ui/control"
	"github.com/mitchelldurbincs/IsoTactics/internal/ui/input"
	"github.com/mitchelldurbincs/IsoTactics/internal/ui/renderer"
)

const (
	frameDuration = time.Second / 60
	boardMargin   = 60
)

// UI configuration functions
func ScreenWidth() int {
	return config.Get().UI.Window.Width
}

func ScreenHeight() int {
	return config.Get().UI.Window.Height
}

// TacticsGame runs one local match: a human seat driven by mouse and
// keyboard against a random opponent
type TacticsGame struct {
	engine        *game.Engine
	session       *control.Session
	boardRenderer *renderer.BoardRenderer
	inputHandler  *input.Handler
	defaultFont   font.Face

	rng           *rand.Rand
	turnTimer     int
	autoTurnDelay int // frames to wait before the opponent moves

	statusMessage string
	messageTimer  int
	logger        zerolog.Logger
}

// NewTacticsGame creates the ebiten game for engine with the human
// playing humanPlayer
func NewTacticsGame(engine *game.Engine, humanPlayer int, rng *rand.Rand, logger zerolog.Logger) *TacticsGame {
	cfg := config.Get().UI
	proj := common.CenteredProjection(cfg.Game.TileWidth, cfg.Game.TileHeight, cfg.Window.Width, boardMargin)

	g := &TacticsGame{
		engine:        engine,
		session:       control.NewSession(engine, humanPlayer, logger),
		defaultFont:   basicfont.Face7x13,
		rng:           rng,
		autoTurnDelay: 30, // 0.5 seconds at 60 FPS
		logger:        logger,
	}
	g.boardRenderer = renderer.NewBoardRenderer(proj, g.defaultFont, cfg.Game.ShowCoords)
	g.inputHandler = input.NewHandler(proj)
	return g
}

// Update proceeds the game state.
func (g *TacticsGame) Update() error {
	g.engine.Tick(frameDuration, g.engine.Now().Add(frameDuration))
	g.inputHandler.Update()

	if g.messageTimer > 0 {
		g.messageTimer--
	}
	if g.engine.IsGameOver() {
		return nil
	}

	if g.session.MyTurn() {
		for _, in := range g.inputHandler.Drain() {
			if _, err := g.session.Handle(in); err != nil {
				g.showMessage(err.Error(), 90)
			}
		}
		return nil
	}

	g.inputHandler.Drain()
	g.turnTimer++
	if g.turnTimer < g.autoTurnDelay {
		return nil
	}
	g.turnTimer = 0
	if g.session.PlayOpponent(g.rng) {
		g.showMessage("Opponent ended their turn", 60)
	}
	return nil
}

func (g *TacticsGame) showMessage(msg string, frames int) {
	g.statusMessage = msg
	g.messageTimer = frames
}

// Draw renders the game screen.
func (g *TacticsGame) Draw(screen *ebiten.Image) {
	screen.Fill(common.BackgroundColor)

	snap := g.engine.Snapshot()
	g.boardRenderer.Draw(screen, snap)
	if g.session.MyTurn() {
		g.boardRenderer.DrawOverlays(screen, snap, g.inputHandler.HoveredTile(), g.session.SelectedTower())
	}
	g.drawHUD(screen, snap)
}

func (g *TacticsGame) drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Round %d  Turn %d", snap.Round, snap.TurnCount), 5, 5)

	for i, p := range snap.Players {
		line := fmt.Sprintf("P%d: $%d  units=%d towers=%d points=%d income=%d",
			p.PlayerID, p.Treasury, p.Units, p.Towers, p.CapturePoints, p.Income)
		if p.PlayerID == snap.CurrentPlayer {
			line = "> " + line
		}
		text.Draw(screen, line, g.defaultFont, 5, 35+i*16, common.PlayerColor(p.PlayerID))
	}

	if snap.GameOver {
		msg := fmt.Sprintf("Game over - player %d wins", snap.Winner)
		text.Draw(screen, msg, g.defaultFont, ScreenWidth()/2-len(msg)*3, ScreenHeight()/2, color.White)
		return
	}

	if g.session.MyTurn() {
		helpY := ScreenHeight() - 64
		text.Draw(screen, "Click: select / confirm   M: move  A: attack  B: build tower", g.defaultFont, 5, helpY, color.Gray{200})
		text.Draw(screen, "1-4: buy soldier/archer/mage/cavalry at selected tower", g.defaultFont, 5, helpY+15, color.Gray{200})
		text.Draw(screen, "Enter: end turn   Esc: deselect", g.defaultFont, 5, helpY+30, color.Gray{200})
		text.Draw(screen, "Pending: "+snap.PendingAction, g.defaultFont, ScreenWidth()-150, 5, color.White)
	}

	if g.messageTimer > 0 && g.statusMessage != "" {
		text.Draw(screen, g.statusMessage, g.defaultFont, ScreenWidth()/2-len(g.statusMessage)*3, ScreenHeight()-12, color.White)
	}
}

// Layout defines the Ebitengine screen size.
func (g *TacticsGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth(), ScreenHeight()
}
