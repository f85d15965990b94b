package game

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

// GenerateRandomCommands builds one turn of random, currently legal
// commands for the player to move, ending with end_turn. Commands are
// chosen against the state at call time, so later ones may be refused
// once earlier ones change the board.
// This is a helper function intended for demos, testing, or simple baseline agents.
func GenerateRandomCommands(g *Engine, rng *rand.Rand) []processor.Command {
	var cmds []processor.Command
	player := g.CurrentPlayer()
	towerCost := g.rules.Economy.TowerCost
	treasury := g.Treasury(player)
	canBuild := !g.economy.TowerBuiltThisTurn(player) && treasury >= towerCost

	for _, u := range g.reg.UnitsOf(player) {
		if !u.HasAttacked {
			if targets := g.combat.LegalTargets(u.ID); len(targets) > 0 {
				t := targets[rng.Intn(len(targets))]
				cmds = append(cmds, processor.Command{Type: processor.CommandAttack, UnitID: u.ID, Target: processor.RefFor(t)})
			}
		}
		if u.HasMoved {
			continue
		}
		if canBuild && rng.Float32() < 0.2 {
			if sites := g.legalMoves.TowerSites(u); len(sites) > 0 {
				p := sites[rng.Intn(len(sites))]
				cmds = append(cmds, processor.Command{Type: processor.CommandBuildTower, UnitID: u.ID, X: p.X, Y: p.Y})
				canBuild = false
				treasury -= towerCost
				continue
			}
		}
		if dests := g.legalMoves.MoveDestinations(u); len(dests) > 0 {
			p := dests[rng.Intn(len(dests))]
			cmds = append(cmds, processor.Command{Type: processor.CommandMove, UnitID: u.ID, X: p.X, Y: p.Y})
		}
	}

	for _, t := range g.reg.Towers() {
		if t.Owner != player || rng.Float32() > 0.5 {
			continue
		}
		kind := core.AllUnitKinds[rng.Intn(len(core.AllUnitKinds))]
		if cost, ok := g.economy.UnitCost(kind); ok && cost <= treasury {
			cmds = append(cmds, processor.Command{Type: processor.CommandCreateUnit, TowerID: t.ID, Kind: kind.String()})
			treasury -= cost
		}
	}

	cmds = append(cmds, processor.Command{Type: processor.CommandEndTurn})
	log.Debug().Int("player_id", player).Int("commands", len(cmds)).Msg("Generated random commands")
	return cmds
}

// PlayRandomTurn applies one turn of random commands, skipping any that
// the engine refuses. It always ends the turn unless the match is over.
func PlayRandomTurn(g *Engine, rng *rand.Rand) (applied, rejected int) {
	player := g.CurrentPlayer()
	for _, cmd := range GenerateRandomCommands(g, rng) {
		if g.IsGameOver() {
			break
		}
		if _, err := g.Apply(player, cmd); err != nil {
			rejected++
			continue
		}
		applied++
	}
	g.SettleMovement()
	return applied, rejected
}
