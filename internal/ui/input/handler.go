package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/IsoTactics/internal/common"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/ui/control"
)

type keyBinding struct {
	key    ebiten.Key
	intent control.Intent
}

var keyBindings = []keyBinding{
	{ebiten.KeyM, control.Intent{Kind: control.IntentBegin, Action: core.ActionMove}},
	{ebiten.KeyA, control.Intent{Kind: control.IntentBegin, Action: core.ActionAttack}},
	{ebiten.KeyB, control.Intent{Kind: control.IntentBegin, Action: core.ActionBuildTower}},
	{ebiten.Key1, control.Intent{Kind: control.IntentBuy, Unit: core.Soldier}},
	{ebiten.Key2, control.Intent{Kind: control.IntentBuy, Unit: core.Archer}},
	{ebiten.Key3, control.Intent{Kind: control.IntentBuy, Unit: core.Mage}},
	{ebiten.Key4, control.Intent{Kind: control.IntentBuy, Unit: core.Cavalry}},
	{ebiten.KeyEnter, control.Intent{Kind: control.IntentEndTurn}},
	{ebiten.KeyEscape, control.Intent{Kind: control.IntentDeselect}},
}

// Handler polls mouse and keyboard once per frame and queues intents
type Handler struct {
	proj           common.Projection
	mouseX, mouseY int
	intents        []control.Intent
}

func NewHandler(proj common.Projection) *Handler {
	return &Handler{proj: proj}
}

func (h *Handler) Update() {
	h.mouseX, h.mouseY = ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.intents = append(h.intents, control.Intent{Kind: control.IntentClick, Tile: h.HoveredTile()})
	}
	// Right click cancels selection
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		h.intents = append(h.intents, control.Intent{Kind: control.IntentDeselect})
	}
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			h.intents = append(h.intents, b.intent)
		}
	}
}

// Drain returns the intents queued since the last call
func (h *Handler) Drain() []control.Intent {
	out := h.intents
	h.intents = nil
	return out
}

func (h *Handler) HoveredTile() core.Position {
	return h.proj.ToTile(h.mouseX, h.mouseY)
}

func (h *Handler) SetProjection(p common.Projection) {
	h.proj = p
}
