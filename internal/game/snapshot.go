package game

import (
	"time"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/combat"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// UnitView is the read-only state of one unit
type UnitView struct {
	ID          int     `json:"id"`
	Owner       int     `json:"owner"`
	Kind        string  `json:"kind"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"max_hp"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	FX          float64 `json:"fx"`
	FY          float64 `json:"fy"`
	HasMoved    bool    `json:"has_moved"`
	HasAttacked bool    `json:"has_attacked"`
	InTransit   bool    `json:"in_transit"`
}

type TowerView struct {
	ID    int `json:"id"`
	Owner int `json:"owner"`
	X     int `json:"x"`
	Y     int `json:"y"`
	HP    int `json:"hp"`
}

type CapturePointView struct {
	ID       int `json:"id"`
	X        int `json:"x"`
	Y        int `json:"y"`
	Owner    int `json:"owner"`
	Progress int `json:"progress"`
	Value    int `json:"value"`
}

type MonsterView struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
	HP int `json:"hp"`
}

type BossView struct {
	ID    int `json:"id"`
	X     int `json:"x"`
	Y     int `json:"y"`
	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
}

// TargetView names an attack target
type TargetView struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// PlayerStats summarises one side of the board
type PlayerStats struct {
	PlayerID           int  `json:"player_id"`
	Treasury           int  `json:"treasury"`
	TowerBuiltThisTurn bool `json:"tower_built_this_turn"`
	Units              int  `json:"units"`
	Towers             int  `json:"towers"`
	CapturePoints      int  `json:"capture_points"`
	Income             int  `json:"income"`
}

// Snapshot is everything a renderer or remote client needs to draw the
// match and offer legal input. It shares no memory with the engine.
type Snapshot struct {
	MatchID string    `json:"match_id"`
	Time    time.Time `json:"time"`
	Phase   string    `json:"phase"`

	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`

	CurrentPlayer int  `json:"current_player"`
	Round         int  `json:"round"`
	TurnCount     int  `json:"turn_count"`
	GameOver      bool `json:"game_over"`
	Winner        int  `json:"winner"`

	Players       []PlayerStats      `json:"players"`
	Units         []UnitView         `json:"units"`
	Towers        []TowerView        `json:"towers"`
	CapturePoints []CapturePointView `json:"capture_points"`
	Monsters      []MonsterView      `json:"monsters"`
	Boss          *BossView          `json:"boss,omitempty"`

	SelectedUnit  int             `json:"selected_unit"`
	PendingAction string          `json:"pending_action"`
	LegalMoves    []core.Position `json:"legal_moves"`
	LegalTargets  []TargetView    `json:"legal_targets"`
	TowerSites    []core.Position `json:"tower_sites"`
}

// Snapshot captures the current match state
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		MatchID:       e.matchID,
		Time:          e.now,
		Phase:         e.Phase().String(),
		Width:         e.grid.W,
		Height:        e.grid.H,
		Rows:          e.gridRows(),
		CurrentPlayer: e.currentPlayer,
		Round:         e.round,
		TurnCount:     e.turnCount,
		GameOver:      e.gameOver,
		Winner:        e.GetWinner(),
		Players:       e.playerStats(),
		SelectedUnit:  e.selectedUnit,
		PendingAction: e.pending.String(),
	}

	for _, u := range e.reg.Units() {
		s.Units = append(s.Units, UnitView{
			ID: u.ID, Owner: u.Owner, Kind: u.Kind.String(),
			HP: u.HP, MaxHP: u.Stats.MaxHP,
			X: u.Pos.X, Y: u.Pos.Y, FX: u.FX, FY: u.FY,
			HasMoved: u.HasMoved, HasAttacked: u.HasAttacked, InTransit: u.InTransit(),
		})
	}
	for _, t := range e.reg.Towers() {
		s.Towers = append(s.Towers, TowerView{ID: t.ID, Owner: t.Owner, X: t.Pos.X, Y: t.Pos.Y, HP: t.HP})
	}
	for _, cp := range e.reg.CapturePoints() {
		s.CapturePoints = append(s.CapturePoints, CapturePointView{
			ID: cp.ID, X: cp.Pos.X, Y: cp.Pos.Y, Owner: cp.Owner, Progress: cp.Progress, Value: cp.Value,
		})
	}
	for _, m := range e.reg.Monsters() {
		s.Monsters = append(s.Monsters, MonsterView{ID: m.ID, X: m.Pos.X, Y: m.Pos.Y, HP: m.HP})
	}
	if b := e.reg.Boss(); b != nil {
		s.Boss = &BossView{ID: b.ID, X: b.Pos.X, Y: b.Pos.Y, HP: b.HP, MaxHP: b.MaxHP}
	}

	if u, ok := e.selected(); ok && !e.gameOver {
		s.SelectedUnit = u.ID
		if !u.HasMoved {
			s.LegalMoves = e.legalMoves.MoveDestinations(u)
			if !e.economy.TowerBuiltThisTurn(u.Owner) {
				s.TowerSites = e.legalMoves.TowerSites(u)
			}
		}
		for _, t := range e.combat.LegalTargets(u.ID) {
			s.LegalTargets = append(s.LegalTargets, e.targetView(t))
		}
	} else {
		s.SelectedUnit = 0
		s.PendingAction = core.ActionNone.String()
	}
	return s
}

func (e *Engine) gridRows() []string {
	rows := make([]string, e.grid.H)
	buf := make([]byte, e.grid.W)
	for y := 0; y < e.grid.H; y++ {
		for x := 0; x < e.grid.W; x++ {
			if e.grid.IsBlocked(x, y) {
				buf[x] = '#'
			} else {
				buf[x] = '.'
			}
		}
		rows[y] = string(buf)
	}
	return rows
}

func (e *Engine) targetView(t combat.Target) TargetView {
	tv := TargetView{Kind: t.Kind.String(), ID: t.ID}
	switch t.Kind {
	case combat.TargetUnit:
		if u, ok := e.reg.Unit(t.ID); ok {
			tv.X, tv.Y = u.Pos.X, u.Pos.Y
		}
	case combat.TargetTower:
		if tw, ok := e.reg.Tower(t.ID); ok {
			tv.X, tv.Y = tw.Pos.X, tw.Pos.Y
		}
	case combat.TargetMonster:
		if m, ok := e.reg.Monster(t.ID); ok {
			tv.X, tv.Y = m.Pos.X, m.Pos.Y
		}
	case combat.TargetBoss:
		if b := e.reg.Boss(); b != nil {
			tv.ID = b.ID
			tv.X, tv.Y = b.Pos.X, b.Pos.Y
		}
	}
	return tv
}

// playerStats recalculates the per-player summary from the registry
func (e *Engine) playerStats() []PlayerStats {
	stats := make([]PlayerStats, core.NumPlayers)
	for pid := range stats {
		stats[pid] = PlayerStats{
			PlayerID:           pid,
			Treasury:           e.economy.Treasury(pid),
			TowerBuiltThisTurn: e.economy.TowerBuiltThisTurn(pid),
			Units:              e.reg.LiveUnitCount(pid),
			Income:             e.rules.Economy.EndTurnBonus,
		}
	}
	for _, t := range e.reg.Towers() {
		stats[t.Owner].Towers++
	}
	for _, cp := range e.reg.CapturePoints() {
		if cp.Owned() {
			stats[cp.Owner].CapturePoints++
			stats[cp.Owner].Income += cp.Value
		}
	}
	return stats
}
