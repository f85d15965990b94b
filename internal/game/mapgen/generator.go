// Package mapgen builds walkability grids and picks where each army starts.
package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/pathfind"
)

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width  int
	Height int

	// One obstacle vein per VeinRatio tiles; 0 disables obstacles
	VeinRatio          int
	VeinMinLength      int
	VeinMaxLengthRatio float64

	// Minimum Manhattan distance between the two spawn anchors
	MinSpawnSpacing int

	MaxRetries int
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h int) MapConfig {
	return MapConfig{
		Width:              w,
		Height:             h,
		VeinRatio:          60,
		VeinMinLength:      3,
		VeinMaxLengthRatio: 0.2,
		MinSpawnSpacing:    (w + h) / 2,
		MaxRetries:         20,
	}
}

// SpawnAnchor is where a player's starting pair stands: Pos and Pos+(1,0)
type SpawnAnchor struct {
	PlayerID int
	Pos      core.Position
}

// Tiles returns both starting tiles of the anchor
func (a SpawnAnchor) Tiles() [2]core.Position {
	return [2]core.Position{a.Pos, a.Pos.Add(core.Pos(1, 0))}
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{config: config, rng: rng}
}

// GenerateMap returns a grid with obstacle veins and one spawn anchor per
// player. Anchors are always connected by a walkable route; layouts that
// fail that check are regenerated, and after MaxRetries the obstacles are
// dropped.
func (g *Generator) GenerateMap() (*core.GridMap, []SpawnAnchor, error) {
	if g.config.Width < 4 || g.config.Height < 2 {
		return nil, nil, fmt.Errorf("map %dx%d too small for two armies", g.config.Width, g.config.Height)
	}

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		grid := core.NewGridMap(g.config.Width, g.config.Height)
		if attempt < g.config.MaxRetries {
			g.placeVeins(grid)
		}
		anchors, err := g.PlaceAnchors(grid)
		if err == nil {
			return grid, anchors, nil
		}
	}
	return nil, nil, fmt.Errorf("could not place spawn anchors on %dx%d map", g.config.Width, g.config.Height)
}

func (g *Generator) placeVeins(grid *core.GridMap) {
	if g.config.VeinRatio <= 0 {
		return
	}
	veins := (grid.W * grid.H) / g.config.VeinRatio
	maxLen := int(float64(max(grid.W, grid.H)) * g.config.VeinMaxLengthRatio)
	if maxLen < g.config.VeinMinLength {
		maxLen = g.config.VeinMinLength
	}

	for i := 0; i < veins; i++ {
		p := core.Pos(g.rng.Intn(grid.W), g.rng.Intn(grid.H))
		length := g.config.VeinMinLength + g.rng.Intn(maxLen-g.config.VeinMinLength+1)
		// Veins wander but favour one heading so they read as ridges
		heading := core.Directions[g.rng.Intn(4)]
		for step := 0; step < length; step++ {
			grid.SetBlocked(p.X, p.Y, true)
			d := heading
			if g.rng.Intn(3) == 0 {
				d = core.Directions[g.rng.Intn(len(core.Directions))]
			}
			p = p.Add(d)
			if !grid.InBounds(p.X, p.Y) {
				break
			}
		}
	}
}

// PlaceAnchors picks one spawn anchor per player on an existing grid. It
// fails if there is no room for both pairs or the anchors are not connected.
func (g *Generator) PlaceAnchors(grid *core.GridMap) ([]SpawnAnchor, error) {
	anchors := make([]SpawnAnchor, 0, core.NumPlayers)
	for pid := 0; pid < core.NumPlayers; pid++ {
		a, ok := g.findAnchor(grid, pid, anchors)
		if !ok {
			return nil, fmt.Errorf("no room for player %d spawn", pid)
		}
		anchors = append(anchors, a)
	}
	if !connected(grid, anchors) {
		return nil, fmt.Errorf("spawn anchors %s and %s are not connected", anchors[0].Pos, anchors[1].Pos)
	}
	return anchors, nil
}

func (g *Generator) findAnchor(grid *core.GridMap, pid int, existing []SpawnAnchor) (SpawnAnchor, bool) {
	// Anchors closer than 2 could share a tile
	minDist := max(g.config.MinSpawnSpacing, 2)
	usable := func(p core.Position) bool {
		for _, t := range (SpawnAnchor{Pos: p}).Tiles() {
			if !grid.IsWalkablePos(t) {
				return false
			}
		}
		for _, other := range existing {
			if p.ManhattanTo(other.Pos) < minDist {
				return false
			}
		}
		return true
	}

	maxAttempts := grid.W * grid.H
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p := core.Pos(g.rng.Intn(grid.W-1), g.rng.Intn(grid.H))
		if usable(p) {
			return SpawnAnchor{PlayerID: pid, Pos: p}, true
		}
	}

	// Fallback: farthest usable tile from the other anchors
	best, bestDist := core.Position{}, -1
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W-1; x++ {
			p := core.Pos(x, y)
			if !grid.IsWalkablePos(p) || !grid.IsWalkablePos(p.Add(core.Pos(1, 0))) {
				continue
			}
			d := 0
			for _, other := range existing {
				d += p.ManhattanTo(other.Pos)
			}
			if d > bestDist {
				best, bestDist = p, d
			}
		}
	}
	if bestDist < 0 || (len(existing) > 0 && bestDist < 2) {
		return SpawnAnchor{}, false
	}
	return SpawnAnchor{PlayerID: pid, Pos: best}, true
}

func connected(grid *core.GridMap, anchors []SpawnAnchor) bool {
	pf := pathfind.New(grid)
	for i := 1; i < len(anchors); i++ {
		if len(pf.FindPath(anchors[0].Pos, anchors[i].Pos)) == 0 {
			return false
		}
	}
	return true
}
