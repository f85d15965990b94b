// Package combat resolves unit attacks against units, towers, monsters and the boss.
package combat

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// Treasury receives bounties for neutral kills
type Treasury interface {
	Credit(player, amount int)
}

// CounterAttack describes the boss striking back at its attacker
type CounterAttack struct {
	Damage          int
	AttackerHPAfter int
	AttackerKilled  bool
}

// Outcome is the result of one accepted attack
type Outcome struct {
	AttackerID    int
	AttackerOwner int
	Target        Target
	TargetOwner   int
	Damage        int
	TargetHPAfter int
	Killed        bool
	Bounty        int
	Counter       *CounterAttack
}

// Resolver applies attacks to the registry
type Resolver struct {
	reg      *entity.Registry
	treasury Treasury
	logger   zerolog.Logger
}

func NewResolver(reg *entity.Registry, treasury Treasury, logger zerolog.Logger) *Resolver {
	return &Resolver{
		reg:      reg,
		treasury: treasury,
		logger:   logger.With().Str("component", "CombatResolver").Logger(),
	}
}

// Validate checks an attack without applying it. Range is Euclidean,
// unlike the hop distance used for movement highlighting.
func (r *Resolver) Validate(attackerID int, target Target) error {
	attacker, ok := r.reg.Unit(attackerID)
	if !ok || !attacker.Alive() {
		return core.ErrUnknownEntity
	}
	if attacker.HasAttacked {
		return core.ErrActionAlreadyPerformed
	}
	v, ok := resolve(r.reg, target)
	if !ok {
		return core.ErrIllegalTarget
	}
	if v.owner == attacker.Owner {
		return core.ErrIllegalTarget
	}
	if !attacker.Pos.WithinRange(v.pos, attacker.Stats.AttackRange) {
		return core.ErrOutOfRange
	}
	return nil
}

// Attack applies one attack. A rejected attack changes nothing.
func (r *Resolver) Attack(attackerID int, target Target) (Outcome, error) {
	if err := r.Validate(attackerID, target); err != nil {
		r.logger.Debug().Err(err).Int("unit_id", attackerID).Str("target", target.String()).Msg("Attack rejected")
		return Outcome{}, core.WrapActionError("attack", attackerID, err)
	}

	attacker, _ := r.reg.Unit(attackerID)
	v, _ := resolve(r.reg, target)

	before := *v.hp
	after := before - attacker.Stats.Attack
	if after < 0 {
		after = 0
	}
	*v.hp = after
	attacker.HasAttacked = true

	out := Outcome{
		AttackerID:    attackerID,
		AttackerOwner: attacker.Owner,
		Target:        target,
		TargetOwner:   v.owner,
		Damage:        before - after,
		TargetHPAfter: after,
		Killed:        after == 0,
	}

	if out.Killed {
		r.removeTarget(target)
		if v.bounty > 0 {
			r.treasury.Credit(attacker.Owner, v.bounty)
			out.Bounty = v.bounty
		}
	} else if target.Kind == TargetBoss {
		out.Counter = r.counterAttack(attacker)
	}

	r.logger.Debug().
		Int("unit_id", attackerID).
		Int("player_id", attacker.Owner).
		Str("target", target.String()).
		Int("damage", out.Damage).
		Int("target_hp", after).
		Bool("killed", out.Killed).
		Msg("Attack resolved")

	return out, nil
}

func (r *Resolver) counterAttack(attacker *entity.Unit) *CounterAttack {
	boss := r.reg.Boss()
	before := attacker.HP
	attacker.HP -= boss.Attack
	if attacker.HP < 0 {
		attacker.HP = 0
	}
	c := &CounterAttack{
		Damage:          before - attacker.HP,
		AttackerHPAfter: attacker.HP,
		AttackerKilled:  attacker.HP == 0,
	}
	if c.AttackerKilled {
		r.reg.RemoveUnit(attacker.ID)
	}
	return c
}

func (r *Resolver) removeTarget(t Target) {
	switch t.Kind {
	case TargetUnit:
		r.reg.RemoveUnit(t.ID)
	case TargetTower:
		r.reg.RemoveTower(t.ID)
	case TargetMonster:
		r.reg.RemoveMonster(t.ID)
	case TargetBoss:
		r.reg.RemoveBoss()
	}
}

// LegalTargets lists every target the unit could attack right now, in
// registry order: units, towers, monsters, then the boss.
func (r *Resolver) LegalTargets(attackerID int) []Target {
	var out []Target
	consider := func(t Target) {
		if r.Validate(attackerID, t) == nil {
			out = append(out, t)
		}
	}
	for _, u := range r.reg.Units() {
		consider(UnitTarget(u.ID))
	}
	for _, tw := range r.reg.Towers() {
		consider(TowerTarget(tw.ID))
	}
	for _, m := range r.reg.Monsters() {
		consider(MonsterTarget(m.ID))
	}
	if r.reg.Boss() != nil {
		consider(BossTarget())
	}
	return out
}
