// Package entity owns every piece on the board and the tile index used to
// keep at most one blocking piece per tile.
package entity

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// OccupantKind identifies which collection a tile occupant lives in
type OccupantKind int

const (
	OccupantUnit OccupantKind = iota
	OccupantTower
	OccupantMonster
	OccupantBoss
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantUnit:
		return "unit"
	case OccupantTower:
		return "tower"
	case OccupantMonster:
		return "monster"
	case OccupantBoss:
		return "boss"
	default:
		return fmt.Sprintf("OccupantKind(%d)", int(k))
	}
}

// Occupant is the blocking piece standing on a tile
type Occupant struct {
	Kind OccupantKind
	ID   int
}

// Registry holds all live entities of one match. Ids are unique across
// every entity kind and start at 1.
type Registry struct {
	nextID   int
	units    map[int]*Unit
	towers   map[int]*Tower
	monsters map[int]*Monster
	points   map[int]*CapturePoint
	boss     *Boss

	occupants map[core.Position]Occupant
	pointAt   map[core.Position]int
}

func NewRegistry() *Registry {
	return &Registry{
		nextID:    1,
		units:     make(map[int]*Unit),
		towers:    make(map[int]*Tower),
		monsters:  make(map[int]*Monster),
		points:    make(map[int]*CapturePoint),
		occupants: make(map[core.Position]Occupant),
		pointAt:   make(map[core.Position]int),
	}
}

func (r *Registry) allocID() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Registry) claim(pos core.Position, occ Occupant) error {
	if _, taken := r.occupants[pos]; taken {
		return core.ErrTileOccupied
	}
	r.occupants[pos] = occ
	return nil
}

// AddUnit places a full-health unit of the given kind at pos
func (r *Registry) AddUnit(owner int, kind core.UnitKind, stats core.UnitStats, pos core.Position) (*Unit, error) {
	if _, taken := r.occupants[pos]; taken {
		return nil, core.ErrTileOccupied
	}
	u := &Unit{
		ID:    r.allocID(),
		Owner: owner,
		Kind:  kind,
		Stats: stats,
		HP:    stats.MaxHP,
		Pos:   pos,
		FX:    float64(pos.X),
		FY:    float64(pos.Y),
	}
	r.occupants[pos] = Occupant{Kind: OccupantUnit, ID: u.ID}
	r.units[u.ID] = u
	return u, nil
}

func (r *Registry) AddTower(owner int, pos core.Position, hp, attack, attackRange int) (*Tower, error) {
	if _, taken := r.occupants[pos]; taken {
		return nil, core.ErrTileOccupied
	}
	t := &Tower{ID: r.allocID(), Owner: owner, Pos: pos, HP: hp, Attack: attack, AttackRange: attackRange}
	r.occupants[pos] = Occupant{Kind: OccupantTower, ID: t.ID}
	r.towers[t.ID] = t
	return t, nil
}

func (r *Registry) AddMonster(pos core.Position, hp, attack, bounty int) (*Monster, error) {
	if _, taken := r.occupants[pos]; taken {
		return nil, core.ErrTileOccupied
	}
	m := &Monster{ID: r.allocID(), Pos: pos, HP: hp, Attack: attack, Bounty: bounty}
	r.occupants[pos] = Occupant{Kind: OccupantMonster, ID: m.ID}
	r.monsters[m.ID] = m
	return m, nil
}

// SpawnBoss places the boss. Only one boss may be alive.
func (r *Registry) SpawnBoss(pos core.Position, hp, attack, bounty int) (*Boss, error) {
	if r.boss != nil {
		return nil, fmt.Errorf("spawn boss: boss %d already alive", r.boss.ID)
	}
	if _, taken := r.occupants[pos]; taken {
		return nil, core.ErrTileOccupied
	}
	b := &Boss{ID: r.allocID(), Pos: pos, HP: hp, MaxHP: hp, Attack: attack, Bounty: bounty}
	r.occupants[pos] = Occupant{Kind: OccupantBoss, ID: b.ID}
	r.boss = b
	return b, nil
}

// AddCapturePoint adds a neutral point. Points do not block movement but
// two points may not share a tile.
func (r *Registry) AddCapturePoint(pos core.Position, value, speed int) (*CapturePoint, error) {
	if _, taken := r.pointAt[pos]; taken {
		return nil, core.ErrTileOccupied
	}
	c := &CapturePoint{ID: r.allocID(), Pos: pos, Owner: core.NoOwner, Speed: speed, Value: value}
	r.points[c.ID] = c
	r.pointAt[pos] = c.ID
	return c, nil
}

func (r *Registry) release(pos core.Position, id int) {
	occ, ok := r.occupants[pos]
	if !ok || occ.ID != id {
		panic(fmt.Sprintf("entity registry: tile %s not held by entity %d", pos, id))
	}
	delete(r.occupants, pos)
}

func (r *Registry) RemoveUnit(id int) {
	u, ok := r.units[id]
	if !ok {
		return
	}
	r.release(u.Pos, id)
	delete(r.units, id)
}

func (r *Registry) RemoveTower(id int) {
	t, ok := r.towers[id]
	if !ok {
		return
	}
	r.release(t.Pos, id)
	delete(r.towers, id)
}

func (r *Registry) RemoveMonster(id int) {
	m, ok := r.monsters[id]
	if !ok {
		return
	}
	r.release(m.Pos, id)
	delete(r.monsters, id)
}

func (r *Registry) RemoveBoss() {
	if r.boss == nil {
		return
	}
	r.release(r.boss.Pos, r.boss.ID)
	r.boss = nil
}

func (r *Registry) relocate(from, to core.Position, occ Occupant) error {
	if from == to {
		return nil
	}
	if err := r.claim(to, occ); err != nil {
		return err
	}
	r.release(from, occ.ID)
	return nil
}

// MoveUnit moves a unit's logical position; it does not touch FX/FY or Path
func (r *Registry) MoveUnit(id int, to core.Position) error {
	u, ok := r.units[id]
	if !ok {
		return core.ErrUnknownEntity
	}
	if err := r.relocate(u.Pos, to, Occupant{Kind: OccupantUnit, ID: id}); err != nil {
		return err
	}
	u.Pos = to
	return nil
}

func (r *Registry) MoveMonster(id int, to core.Position) error {
	m, ok := r.monsters[id]
	if !ok {
		return core.ErrUnknownEntity
	}
	if err := r.relocate(m.Pos, to, Occupant{Kind: OccupantMonster, ID: id}); err != nil {
		return err
	}
	m.Pos = to
	return nil
}

func (r *Registry) MoveBoss(to core.Position) error {
	if r.boss == nil {
		return core.ErrUnknownEntity
	}
	if err := r.relocate(r.boss.Pos, to, Occupant{Kind: OccupantBoss, ID: r.boss.ID}); err != nil {
		return err
	}
	r.boss.Pos = to
	return nil
}

func (r *Registry) Unit(id int) (*Unit, bool) {
	u, ok := r.units[id]
	return u, ok
}

func (r *Registry) Tower(id int) (*Tower, bool) {
	t, ok := r.towers[id]
	return t, ok
}

func (r *Registry) Monster(id int) (*Monster, bool) {
	m, ok := r.monsters[id]
	return m, ok
}

func (r *Registry) CapturePoint(id int) (*CapturePoint, bool) {
	c, ok := r.points[id]
	return c, ok
}

// Boss returns nil when no boss is alive
func (r *Registry) Boss() *Boss { return r.boss }

// OccupantAt returns the blocking piece on a tile, if any
func (r *Registry) OccupantAt(pos core.Position) (Occupant, bool) {
	occ, ok := r.occupants[pos]
	return occ, ok
}

func (r *Registry) IsOccupied(pos core.Position) bool {
	_, ok := r.occupants[pos]
	return ok
}

func (r *Registry) UnitAt(pos core.Position) (*Unit, bool) {
	occ, ok := r.occupants[pos]
	if !ok || occ.Kind != OccupantUnit {
		return nil, false
	}
	return r.mustUnit(occ.ID), true
}

func (r *Registry) TowerAt(pos core.Position) (*Tower, bool) {
	occ, ok := r.occupants[pos]
	if !ok || occ.Kind != OccupantTower {
		return nil, false
	}
	t, found := r.towers[occ.ID]
	if !found {
		panic(fmt.Sprintf("entity registry: tile %s references missing tower %d", pos, occ.ID))
	}
	return t, true
}

func (r *Registry) CapturePointAt(pos core.Position) (*CapturePoint, bool) {
	id, ok := r.pointAt[pos]
	if !ok {
		return nil, false
	}
	return r.points[id], true
}

func (r *Registry) mustUnit(id int) *Unit {
	u, ok := r.units[id]
	if !ok {
		panic(fmt.Sprintf("entity registry: dangling unit id %d", id))
	}
	return u
}

// Units returns every live unit ordered by id
func (r *Registry) Units() []*Unit {
	out := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnitsOf returns the live units of one player ordered by id
func (r *Registry) UnitsOf(owner int) []*Unit {
	var out []*Unit
	for _, u := range r.Units() {
		if u.Owner == owner {
			out = append(out, u)
		}
	}
	return out
}

// LiveUnitCount counts units with HP > 0 for a player
func (r *Registry) LiveUnitCount(owner int) int {
	n := 0
	for _, u := range r.units {
		if u.Owner == owner && u.Alive() {
			n++
		}
	}
	return n
}

func (r *Registry) Towers() []*Tower {
	out := make([]*Tower, 0, len(r.towers))
	for _, t := range r.towers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Monsters() []*Monster {
	out := make([]*Monster, 0, len(r.monsters))
	for _, m := range r.monsters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) MonsterCount() int { return len(r.monsters) }

func (r *Registry) CapturePoints() []*CapturePoint {
	out := make([]*CapturePoint, 0, len(r.points))
	for _, c := range r.points {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
