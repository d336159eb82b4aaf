package sim

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

// AttackProfile is everything a hit needs to know about the weapon.
type AttackProfile struct {
	Damage      int
	Range       int
	StatusOnHit *catalog.StatusGrant
	Knockback   int
}

// ItemProfile builds the attack profile of a weapon item.
func ItemProfile(it catalog.ItemDef) AttackProfile {
	return AttackProfile{Damage: it.Damage, Range: it.Range, StatusOnHit: it.StatusOnHit}
}

// EnemyProfile builds the attack profile of an enemy's built-in weapon.
func EnemyProfile(t catalog.EnemyTemplate) AttackProfile {
	return AttackProfile{
		Damage:      t.Weapon.Damage,
		Range:       t.Weapon.Range,
		StatusOnHit: t.StatusOnHit,
		Knockback:   t.Knockback,
	}
}

// PendingDamage is a hit queued during command resolution.
type PendingDamage struct {
	TargetID  string
	SourcePos core.Vec2
	Amount    int
	Status    *catalog.StatusGrant
	Knockback int
}

// CanShoot reports whether target is within Manhattan range and visible.
func CanShoot(s *GameState, attacker, target *Unit, rangeTiles int) bool {
	if attacker.Pos.Manhattan(target.Pos) > rangeTiles {
		return false
	}
	return LineOfSight(&s.Grid, s.Doors, attacker.Pos, target.Pos)
}

// BuildDamage computes one hit:
//
//	max(0, base - max(0, armor - shred) - cover)
//
// where MARKED lowers the target's cover by one half-step.
func BuildDamage(s *GameState, rules config.CombatRules, attacker, target *Unit, p AttackProfile) PendingDamage {
	cover := CoverReduction(&s.Grid, target.Pos, rules)
	if target.HasStatus(catalog.StatusMarked) {
		cover = max(0, cover-rules.CoverHalf)
	}
	armor := max(0, target.Armor-shredStacks(target))
	return PendingDamage{
		TargetID:  target.ID,
		SourcePos: attacker.Pos,
		Amount:    max(0, p.Damage-armor-cover),
		Status:    p.StatusOnHit,
		Knockback: max(0, p.Knockback),
	}
}

// shredStacks counts active SHRED entries. Refreshing keeps one entry, so
// this is 0 or 1.
func shredStacks(u *Unit) int {
	n := 0
	for _, st := range u.Statuses {
		if st.ID == catalog.StatusShred && st.Turns > 0 {
			n++
		}
	}
	return n
}

// ApplyDamage resolves queued hits. Hits on the same target are summed and
// reported once, targets in order of their first hit. Status grants follow
// the damage report of their target. It returns the ids of units that lost
// hp this turn.
func ApplyDamage(s *GameState, pending []PendingDamage, events *Events) mapset.Set[string] {
	damaged := mapset.New[string]()

	var order []string
	grouped := map[string][]PendingDamage{}
	for _, p := range pending {
		if _, seen := grouped[p.TargetID]; !seen {
			order = append(order, p.TargetID)
		}
		grouped[p.TargetID] = append(grouped[p.TargetID], p)
	}

	for _, id := range order {
		target := s.Units[id]
		if target == nil {
			continue
		}
		total := 0
		for _, p := range grouped[id] {
			total += p.Amount
		}
		if total != 0 {
			target.HP = max(0, target.HP-total)
			damaged.Put(id)
			events.emit(DamageAppliedEvent{TargetID: id, Amount: total, HPLeft: target.HP})
		}
		for _, p := range grouped[id] {
			if p.Status == nil {
				continue
			}
			ApplyStatus(target, p.Status.Status, p.Status.Turns)
			events.emit(StatusAppliedEvent{TargetID: id, StatusID: p.Status.Status, Turns: p.Status.Turns})
		}
	}
	return damaged
}

// ApplyKnockback pushes surviving targets away from the shooter along the
// dominant axis (x on ties), one tile at a time, stopping at the first
// impassable or occupied tile.
func ApplyKnockback(s *GameState, pending []PendingDamage) {
	occupied := livingOccupancy(s)
	for _, p := range pending {
		if p.Knockback <= 0 {
			continue
		}
		target := s.Units[p.TargetID]
		if target == nil || !target.Alive() {
			continue
		}
		dir, ok := knockbackDirection(p.SourcePos, target.Pos)
		if !ok {
			continue
		}
		current := target.Pos
		for i := 0; i < p.Knockback; i++ {
			next := current.Add(dir.X, dir.Y)
			if !IsPassable(&s.Grid, next, s.Doors) || occupied.Has(next) {
				break
			}
			occupied.Remove(current)
			occupied.Put(next)
			current = next
		}
		target.Pos = current
	}
}

func knockbackDirection(from, to core.Vec2) (core.Vec2, bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx == 0 && dy == 0 {
		return core.Vec2{}, false
	}
	if core.Abs(dx) >= core.Abs(dy) {
		return core.V(core.Sign(dx), 0), true
	}
	return core.V(0, core.Sign(dy)), true
}

func livingOccupancy(s *GameState) mapset.Set[core.Vec2] {
	occupied := mapset.New[core.Vec2]()
	for _, u := range s.Units {
		if u.Alive() {
			occupied.Put(u.Pos)
		}
	}
	return occupied
}

// ApplyStatus adds a status or refreshes it to the longer duration.
func ApplyStatus(u *Unit, id catalog.StatusID, turns int) {
	for i := range u.Statuses {
		if u.Statuses[i].ID == id {
			u.Statuses[i].Turns = max(u.Statuses[i].Turns, turns)
			return
		}
	}
	u.Statuses = append(u.Statuses, Status{ID: id, Turns: turns})
}

// TickStatuses decrements every status on every unit and drops expired ones.
func TickStatuses(s *GameState) {
	for _, u := range s.Units {
		kept := make([]Status, 0, len(u.Statuses))
		for _, st := range u.Statuses {
			st.Turns--
			if st.Turns > 0 {
				kept = append(kept, st)
			}
		}
		u.Statuses = kept
	}
}
