package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// ANSI color codes for Board rendering
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue}

const (
	EmptySymbol    = "·"
	BlockedSymbol  = "▲"
	TowerSymbol    = "T"
	PointSymbol    = "◆"
	MonsterSymbol  = "m"
	BossSymbol     = "B"
	PlayerSymbols  = "AB"
	selectedMarker = "*"
)

var unitSymbols = map[core.UnitKind]string{
	core.Soldier: "s",
	core.Archer:  "a",
	core.Mage:    "g",
	core.Cavalry: "c",
}

// Board returns a text rendering of the map, one cell per tile. Set color
// to false for plain output (logs, tests).
func (e *Engine) Board(color bool) string {
	width, height := e.grid.W, e.grid.H

	var sb strings.Builder
	sb.Grow((width*12+8)*(height+4) + 200)

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		fmt.Fprintf(&sb, "%3d", x)
	}
	sb.WriteString("\n")

	for y := 0; y < height; y++ {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 0; x < width; x++ {
			c, symbol := e.cellDisplay(core.Pos(x, y))
			if color && c != "" {
				sb.WriteString(c)
			}
			fmt.Fprintf(&sb, "%3s", symbol)
			if color && c != "" {
				sb.WriteString(ColorReset)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nround %d  turn %d  player %s to move", e.round, e.turnCount, string(PlayerSymbols[e.currentPlayer]))
	for pid := 0; pid < core.NumPlayers; pid++ {
		fmt.Fprintf(&sb, "  %s:$%d", string(PlayerSymbols[pid]), e.economy.Treasury(pid))
	}
	sb.WriteString("\n")
	sb.WriteString(EmptySymbol + "=empty " + BlockedSymbol + "=blocked " + PointSymbol + "=capture point " +
		MonsterSymbol + "=monster " + BossSymbol + "=boss  A/B + s,a,g,c=units T=tower\n")
	return sb.String()
}

// cellDisplay returns the color and symbol for one tile. Occupants win
// over capture points, which win over terrain.
func (e *Engine) cellDisplay(p core.Position) (string, string) {
	if e.grid.IsBlocked(p.X, p.Y) {
		return ColorGray, BlockedSymbol
	}

	if occ, ok := e.reg.OccupantAt(p); ok {
		switch occ.Kind {
		case entity.OccupantUnit:
			u, _ := e.reg.Unit(occ.ID)
			symbol := string(PlayerSymbols[u.Owner]) + unitSymbols[u.Kind]
			if u.ID == e.selectedUnit {
				symbol += selectedMarker
			}
			return getPlayerColor(u.Owner), symbol
		case entity.OccupantTower:
			t, _ := e.reg.Tower(occ.ID)
			return getPlayerColor(t.Owner), string(PlayerSymbols[t.Owner]) + TowerSymbol
		case entity.OccupantMonster:
			return ColorGreen, MonsterSymbol
		case entity.OccupantBoss:
			return ColorPurple, BossSymbol
		}
	}

	if cp, ok := e.reg.CapturePointAt(p); ok {
		if cp.Owned() {
			return getPlayerColor(cp.Owner), string(PlayerSymbols[cp.Owner]) + PointSymbol
		}
		return ColorYellow, PointSymbol
	}
	return ColorGray, EmptySymbol
}

func getPlayerColor(playerID int) string {
	if playerID >= 0 && playerID < len(playerColors) {
		return playerColors[playerID]
	}
	return ColorWhite
}
