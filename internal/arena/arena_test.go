package arena

import (
	"testing"

	"ringside/internal/character"
	"ringside/internal/stats"
)

func defaultDerived() stats.Derived {
	return stats.Derive(character.Default("test"))
}

func newTestArena(seed int32) *Arena {
	derived := defaultDerived()
	return New(Config{
		Seed: seed,
		Fighters: [2]FighterSetup{
			{Name: "left", Derived: derived},
			{Name: "right", Derived: derived},
		},
	})
}

// placeInMeleeRange moves the fighters close enough for a punch to connect
// without their body boxes overlapping.
func placeInMeleeRange(a *Arena) {
	a.fighters[0].X = 30000
	a.fighters[1].X = 37000
}

func stepN(a *Arena, n int, inputs [2]InputMask) StepResult {
	var last StepResult
	for i := 0; i < n; i++ {
		last = a.Step(inputs)
	}
	return last
}

func TestLightAttackInRangeDamagesAndStunsDefender(t *testing.T) {
	a := newTestArena(1)
	placeInMeleeRange(a)
	startHealth := a.fighters[1].Health

	var hit *HitEvent
	inputs := [2]InputMask{InputLight, 0}
	for i := 0; i < int(punchSpec.total) && hit == nil; i++ {
		result := a.Step(inputs)
		if len(result.Hits) > 0 {
			hit = &result.Hits[0]
		}
	}

	if hit == nil {
		t.Fatalf("expected the punch to connect within %d frames", punchSpec.total)
	}
	if hit.Attacker != 0 || hit.Defender != 1 || hit.Kind != HitPunch {
		t.Fatalf("unexpected hit event %+v", hit)
	}
	lost := startHealth - a.fighters[1].Health
	if lost < DamageMin || lost > DamageMax {
		t.Fatalf("health loss %d outside [%d,%d]", lost, DamageMin, DamageMax)
	}
	if lost != hit.Damage {
		t.Fatalf("health loss %d does not match reported damage %d", lost, hit.Damage)
	}
	if got := a.fighters[1].State; got != StateHurt {
		t.Fatalf("expected defender in hurt state, got %s", got)
	}
}

func TestSpecialRefusedWithoutMeter(t *testing.T) {
	a := newTestArena(1)
	a.fighters[0].Meter = SpecialCost - 1

	stepN(a, int(specialSpec.total), [2]InputMask{InputSpecial, 0})

	if got := a.fighters[0].Meter; got != SpecialCost-1 {
		t.Fatalf("refused special must not touch meter: got %d, want %d", got, SpecialCost-1)
	}
	if len(a.projectiles) != 0 {
		t.Fatalf("refused special must not spawn a projectile, found %d", len(a.projectiles))
	}
	if a.fighters[0].SpecialCooldown != 0 {
		t.Fatalf("refused special must not start its cooldown")
	}
}

func TestSpecialConsumesMeterAndSpawnsProjectile(t *testing.T) {
	a := newTestArena(1)
	a.fighters[0].Meter = 50

	stepN(a, specialSpawnFrame, [2]InputMask{InputSpecial, 0})

	if got := a.fighters[0].Meter; got != 50-SpecialCost {
		t.Fatalf("meter after special = %d, want %d", got, 50-SpecialCost)
	}
	if len(a.projectiles) != 1 {
		t.Fatalf("expected one projectile, found %d", len(a.projectiles))
	}
	p := a.projectiles[0]
	if p.Owner != 0 {
		t.Fatalf("projectile owner = %d, want 0", p.Owner)
	}
	if p.VX <= 0 {
		t.Fatalf("projectile should travel toward the opponent, VX=%d", p.VX)
	}
}

func TestSimultaneousKnockoutIsADraw(t *testing.T) {
	a := newTestArena(1)
	placeInMeleeRange(a)
	a.fighters[0].Health = 1
	a.fighters[1].Health = 1

	// Fighter 1's earlier special is in flight, timed to reach fighter 0 on
	// the same frame the punch becomes active.
	a.projectiles = append(a.projectiles, Projectile{
		Owner:  1,
		X:      a.fighters[0].X + 5000,
		Y:      a.fighters[0].Y + 8000,
		VX:     -defaultDerived().ProjectileSpeed,
		Extent: defaultDerived().ProjectileExtent,
		Damage: specialSpec.baseDamage,
		Life:   120,
	})

	var final StepResult
	inputs := [2]InputMask{InputLight, 0}
	for i := 0; i < int(punchSpec.total); i++ {
		final = a.Step(inputs)
		if final.Over {
			break
		}
	}

	if final.Outcome != OutcomeDraw {
		t.Fatalf("expected a draw, got %s", final.Outcome)
	}
	for i := range a.fighters {
		if got := a.fighters[i].State; got != StateKnockedOut {
			t.Fatalf("fighter %d should be knocked out, got %s", i, got)
		}
	}
}

func TestKnockoutIsTerminal(t *testing.T) {
	a := newTestArena(1)
	placeInMeleeRange(a)
	a.fighters[1].Health = 1

	inputs := [2]InputMask{InputLight, 0}
	var result StepResult
	for i := 0; i < int(punchSpec.total); i++ {
		result = a.Step(inputs)
		if result.Over {
			break
		}
	}
	if result.Outcome != OutcomeWinner0 {
		t.Fatalf("expected fighter 0 to win, got %s", result.Outcome)
	}
	if a.fighters[1].State != StateKnockedOut {
		t.Fatalf("defender should be knocked out within the deciding step")
	}

	// No input combination moves a finished match.
	before := a.Snapshot()
	for i := 0; i < 30; i++ {
		again := a.Step([2]InputMask{MaxMask, MaxMask})
		if !again.Over || again.Outcome != OutcomeWinner0 {
			t.Fatalf("terminal match changed outcome: %+v", again)
		}
	}
	after := a.Snapshot()
	if before.Fighters != after.Fighters {
		t.Fatalf("terminal match mutated fighter state")
	}
	if after.Frame != before.Frame {
		t.Fatalf("terminal match advanced the frame counter")
	}
}

func TestHitstopFreezesBothFighters(t *testing.T) {
	a := newTestArena(1)
	placeInMeleeRange(a)

	inputs := [2]InputMask{InputLight, 0}
	var hitFrame int64
	for i := 0; i < int(punchSpec.total); i++ {
		result := a.Step(inputs)
		if len(result.Hits) > 0 {
			hitFrame = result.Frame
			break
		}
	}
	if hitFrame == 0 {
		t.Fatalf("expected the punch to connect")
	}
	if a.Hitstop() != hitstopFrames {
		t.Fatalf("hitstop after confirm = %d, want %d", a.Hitstop(), hitstopFrames)
	}

	frozen := a.fighters
	for i := 0; i < hitstopFrames; i++ {
		a.Step([2]InputMask{InputRight, InputLeft})
		if a.fighters != frozen {
			t.Fatalf("fighter state changed during hitstop frame %d", i)
		}
	}
	if a.Hitstop() != 0 {
		t.Fatalf("hitstop should have expired, remaining %d", a.Hitstop())
	}
}

func TestBlockingReducesDamageAndPreventsHurt(t *testing.T) {
	openArena := newTestArena(1)
	placeInMeleeRange(openArena)
	var openDamage int32
	inputs := [2]InputMask{InputLight, 0}
	for i := 0; i < int(punchSpec.total); i++ {
		result := openArena.Step(inputs)
		if len(result.Hits) > 0 {
			openDamage = result.Hits[0].Damage
			break
		}
	}
	if openDamage == 0 {
		t.Fatalf("open hit never landed")
	}

	blockArena := newTestArena(1)
	placeInMeleeRange(blockArena)
	var blockedDamage int32
	inputs = [2]InputMask{InputLight, InputBlock}
	for i := 0; i < int(punchSpec.total); i++ {
		result := blockArena.Step(inputs)
		if len(result.Hits) > 0 {
			if !result.Hits[0].Blocked {
				t.Fatalf("hit against a blocking defender must report blocked")
			}
			blockedDamage = result.Hits[0].Damage
			break
		}
	}
	if blockedDamage == 0 {
		t.Fatalf("blocked hit never landed")
	}
	if blockedDamage >= openDamage {
		t.Fatalf("blocked damage %d not below open damage %d", blockedDamage, openDamage)
	}
	if got := blockArena.fighters[1].State; got != StateBlock {
		t.Fatalf("blocked defender should stay in block, got %s", got)
	}
}

func TestDamageAlwaysClampedForAllStatExtremes(t *testing.T) {
	for _, strength := range []int{1, 10} {
		for _, guard := range []int{1, 10} {
			attacker := character.Default("att")
			attacker.Stats.Strength = strength
			defender := character.Default("def")
			defender.Stats.Guard = guard

			a := New(Config{
				Seed: 1,
				Fighters: [2]FighterSetup{
					{Name: "att", Derived: stats.Derive(attacker)},
					{Name: "def", Derived: stats.Derive(defender)},
				},
			})
			var result StepResult
			for _, kind := range []hitProfile{
				{kind: HitPunch, base: punchSpec.baseDamage, stun: punchSpec.stun, knockback: punchSpec.knockback, facing: 1},
				{kind: HitKick, base: kickSpec.baseDamage, stun: kickSpec.stun, knockback: kickSpec.knockback, facing: 1},
				{kind: HitProjectile, base: specialSpec.baseDamage, stun: specialSpec.stun, knockback: specialSpec.knockback, facing: 1},
			} {
				a.resolveHit(0, 1, kind, &result)
			}
			for _, hit := range result.Hits {
				if hit.Damage < DamageMin || hit.Damage > DamageMax {
					t.Fatalf("strength=%d guard=%d kind=%s damage %d outside [%d,%d]",
						strength, guard, hit.Kind, hit.Damage, DamageMin, DamageMax)
				}
			}
		}
	}
}

func TestFacingFollowsRelativePosition(t *testing.T) {
	a := newTestArena(1)
	if a.fighters[0].Facing != 1 || a.fighters[1].Facing != -1 {
		t.Fatalf("spawn facing wrong: %d %d", a.fighters[0].Facing, a.fighters[1].Facing)
	}

	// Swap the fighters and let one step recompute facing.
	a.fighters[0].X, a.fighters[1].X = a.fighters[1].X, a.fighters[0].X
	a.Step([2]InputMask{0, 0})
	if a.fighters[0].Facing != -1 || a.fighters[1].Facing != 1 {
		t.Fatalf("facing not recomputed after crossover: %d %d", a.fighters[0].Facing, a.fighters[1].Facing)
	}
}

func TestOverlapSeparationPushesFightersApart(t *testing.T) {
	a := newTestArena(1)
	a.fighters[0].X = 40000
	a.fighters[1].X = 40500 // deep body overlap

	a.Step([2]InputMask{0, 0})

	b0, b1 := a.fighters[0].bodyBox(), a.fighters[1].bodyBox()
	if b0.overlaps(b1) {
		overlap := min32(b0.x1, b1.x1) - max32(b0.x0, b1.x0)
		initial := a.fighters[0].Width // full overlap at start was near one body width
		if overlap >= initial {
			t.Fatalf("separation did not reduce the overlap: %d", overlap)
		}
	}
	if a.fighters[0].X >= a.fighters[1].X {
		t.Fatalf("fighters should keep their relative order")
	}
}

func TestMeterClampedToRange(t *testing.T) {
	a := newTestArena(1)
	placeInMeleeRange(a)
	a.fighters[0].Meter = 99

	inputs := [2]InputMask{InputLight, 0}
	for i := 0; i < int(punchSpec.total); i++ {
		if result := a.Step(inputs); len(result.Hits) > 0 {
			break
		}
	}
	if got := a.fighters[0].Meter; got != MeterMax {
		t.Fatalf("meter should clamp at %d, got %d", MeterMax, got)
	}
}

func TestJumpRequiresGroundGrace(t *testing.T) {
	a := newTestArena(1)

	a.Step([2]InputMask{InputJump, 0})
	if a.fighters[0].State != StateJump {
		t.Fatalf("grounded jump should enter jump state, got %s", a.fighters[0].State)
	}
	if a.fighters[0].VY <= 0 {
		t.Fatalf("jump should set an upward impulse, VY=%d", a.fighters[0].VY)
	}

	// Re-pressing mid-air must not jump again once coyote frames expire.
	stepN(a, coyoteFrames+1, [2]InputMask{0, 0})
	vyBefore := a.fighters[0].VY
	a.Step([2]InputMask{InputJump, 0})
	if a.fighters[0].VY > vyBefore {
		t.Fatalf("air jump should be refused: VY went %d -> %d", vyBefore, a.fighters[0].VY)
	}
}
