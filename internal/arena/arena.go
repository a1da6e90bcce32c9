// Package arena runs the deterministic combat simulation. One Arena owns two
// fighters, the live projectiles, and the cosmetic particles, and advances
// exactly one frame per Step call given both fighters' input for that frame.
// All outcome-affecting math is integer fixed-point; given the same seed and
// the same per-frame inputs, two Arena instances produce bit-identical state.
package arena

import "ringside/internal/stats"

// Outcome is the win condition. Once it leaves OutcomeOpen the match is
// terminal and Step no longer mutates gameplay state.
type Outcome uint8

const (
	OutcomeOpen Outcome = iota
	OutcomeWinner0
	OutcomeWinner1
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWinner0:
		return "winner-0"
	case OutcomeWinner1:
		return "winner-1"
	case OutcomeDraw:
		return "draw"
	default:
		return "open"
	}
}

// HitEvent reports one confirmed hit to the rendering collaborator.
type HitEvent struct {
	Attacker int
	Defender int
	Kind     HitKind
	Damage   int32
	Blocked  bool
	KO       bool
}

// StepResult is the outward effect of one simulated frame.
type StepResult struct {
	Frame   int64
	Hits    []HitEvent
	Outcome Outcome
	Over    bool
}

// FighterSetup describes one combatant at match start.
type FighterSetup struct {
	Name    string
	Derived stats.Derived
}

// Config seeds a new arena. Seed and both fighter setups must match on both
// peers; the start handshake guarantees that.
type Config struct {
	Seed     int32
	Fighters [2]FighterSetup
}

// Arena is the whole simulation state for one match.
type Arena struct {
	frame       int64
	fighters    [2]Fighter
	projectiles []Projectile
	particles   []Particle
	rng         *RNG

	hitstop int32
	shake   int32
	outcome Outcome
}

// New places the fighters a quarter stage in from each wall, facing each
// other, at full health and empty meter.
func New(cfg Config) *Arena {
	a := &Arena{rng: NewRNG(cfg.Seed)}
	a.fighters[0] = newFighter(0, cfg.Fighters[0].Name, cfg.Fighters[0].Derived, StageWidth/4, 1)
	a.fighters[1] = newFighter(1, cfg.Fighters[1].Name, cfg.Fighters[1].Derived, StageWidth*3/4, -1)
	return a
}

// Frame returns the number of frames simulated so far.
func (a *Arena) Frame() int64 { return a.frame }

// Outcome returns the current win condition.
func (a *Arena) Outcome() Outcome { return a.outcome }

// Shake returns the decaying screen-shake magnitude for the renderer.
func (a *Arena) Shake() int32 { return a.shake }

// Hitstop returns the remaining freeze frames.
func (a *Arena) Hitstop() int32 { return a.hitstop }

// Step advances one frame using both fighters' input samples. During hitstop
// the whole step is a no-op apart from the freeze/shake counters, so both
// peers pause identically; after the outcome is decided nothing moves at all.
func (a *Arena) Step(inputs [2]InputMask) StepResult {
	result := StepResult{Frame: a.frame, Outcome: a.outcome, Over: a.outcome != OutcomeOpen}
	if result.Over {
		return result
	}

	a.frame++
	result.Frame = a.frame

	if a.hitstop > 0 {
		a.hitstop--
		if a.shake > 0 {
			a.shake--
		}
		return result
	}
	if a.shake > 0 {
		a.shake--
	}

	for i := range a.fighters {
		a.advanceFighter(&a.fighters[i], inputs[i])
	}
	a.separateFighters()
	a.recomputeFacing()
	a.meleePass(&result)
	a.stepProjectiles(&result)
	a.stepParticles()

	a.checkWin(&result)
	return result
}

// advanceFighter applies the fixed per-frame transition order to one
// combatant: KO promotion, timer decrements, jump bookkeeping, block
// resolution, action selection, movement, animation advance, then physics.
func (a *Arena) advanceFighter(f *Fighter, input InputMask) {
	pressed := input &^ f.prevInput
	f.prevInput = input

	// (1) knock-out promotion
	if f.Health <= 0 {
		f.knockOut()
	}

	// (2) timers
	if f.Stun > 0 {
		f.Stun--
	}
	if f.PunchCooldown > 0 {
		f.PunchCooldown--
	}
	if f.KickCooldown > 0 {
		f.KickCooldown--
	}
	if f.SpecialCooldown > 0 {
		f.SpecialCooldown--
	}

	// (3) jump buffer and ground grace
	if pressed.Has(InputJump) {
		f.JumpBuffer = jumpBufferFrames
	} else if f.JumpBuffer > 0 {
		f.JumpBuffer--
	}
	if f.grounded() {
		f.Coyote = coyoteFrames
	} else if f.Coyote > 0 {
		f.Coyote--
	}

	// (4) block intent
	switch {
	case f.State == StateBlock && (!input.Has(InputBlock) || !f.grounded()):
		f.enterState(StateIdle)
	case input.Has(InputBlock) && f.grounded() && (f.State == StateIdle || f.State == StateRun):
		f.enterState(StateBlock)
	}

	// (5) jump, then mutually exclusive attack selection
	if f.State.canAct() {
		if f.JumpBuffer > 0 && f.Coyote > 0 {
			f.VY = f.Stats.JumpImpulse
			f.JumpBuffer = 0
			f.Coyote = 0
			f.enterState(StateJump)
		}
		switch {
		case pressed.Has(InputLight) && f.PunchCooldown == 0:
			f.enterState(StatePunch)
			f.attackStartFrame = a.frame
			f.PunchCooldown = punchSpec.cooldown
		case pressed.Has(InputHeavy) && f.KickCooldown == 0:
			f.enterState(StateKick)
			f.attackStartFrame = a.frame
			f.KickCooldown = kickSpec.cooldown
		case pressed.Has(InputSpecial) && f.SpecialCooldown == 0:
			// Insufficient meter refuses the move entirely.
			if f.Meter >= SpecialCost {
				f.Meter -= SpecialCost
				f.enterState(StateSpecial)
				f.attackStartFrame = a.frame
				f.SpecialCooldown = specialSpec.cooldown
			}
		}
	}

	// (6) horizontal movement
	dir := input.Dir()
	moving := f.State.canMove() && dir != 0
	if moving {
		accel := int32(airAccel)
		if f.grounded() {
			accel = groundAccel
		}
		f.VX = clamp32(f.VX+dir*accel, -f.Stats.RunSpeed, f.Stats.RunSpeed)
	} else if f.grounded() {
		// Ground friction also bleeds off knockback slides.
		switch {
		case f.VX > groundFriction:
			f.VX -= groundFriction
		case f.VX < -groundFriction:
			f.VX += groundFriction
		default:
			f.VX = 0
		}
	}
	if f.grounded() {
		if moving && f.State == StateIdle {
			f.enterState(StateRun)
		} else if !moving && f.State == StateRun {
			f.enterState(StateIdle)
		}
	}

	// (7) animation advance and automatic exits
	f.StateFrame++
	switch f.State {
	case StatePunch:
		if f.StateFrame >= punchSpec.total {
			f.enterState(StateIdle)
		}
	case StateKick:
		if f.StateFrame >= kickSpec.total {
			f.enterState(StateIdle)
		}
	case StateSpecial:
		if f.StateFrame == specialSpawnFrame {
			a.spawnProjectile(f)
		}
		if f.StateFrame >= specialSpec.total {
			f.enterState(StateIdle)
		}
	case StateHurt:
		if f.Stun <= 0 {
			f.enterState(StateIdle)
		}
	case StateJump:
		if f.grounded() && f.VY <= 0 {
			f.enterState(StateIdle)
		}
	}

	// (8) gravity and integration
	f.VY -= gravity
	f.X += f.VX
	f.Y += f.VY
	if f.Y <= 0 {
		f.Y = 0
		if f.VY < 0 {
			f.VY = 0
		}
	}
	half := f.Width / 2
	if f.X < half {
		f.X = half
		f.VX = 0
	}
	if f.X > StageWidth-half {
		f.X = StageWidth - half
		f.VX = 0
	}
}

// separateFighters pushes overlapping body boxes apart symmetrically along
// the horizontal axis. Cosmetic separation, not a physical force.
func (a *Arena) separateFighters() {
	f0, f1 := &a.fighters[0], &a.fighters[1]
	b0, b1 := f0.bodyBox(), f1.bodyBox()
	if !b0.overlaps(b1) {
		return
	}
	overlap := min32(b0.x1, b1.x1) - max32(b0.x0, b1.x0)
	push := overlap / 2
	if push == 0 {
		push = 1
	}
	left, right := f0, f1
	if f1.X < f0.X {
		left, right = f1, f0
	}
	left.X -= push
	right.X += push

	for _, f := range []*Fighter{left, right} {
		half := f.Width / 2
		f.X = clamp32(f.X, half, StageWidth-half)
	}
}

// recomputeFacing derives facing from relative position every frame, never
// stored stale. On exact overlap the previous facing holds.
func (a *Arena) recomputeFacing() {
	f0, f1 := &a.fighters[0], &a.fighters[1]
	switch {
	case f0.X < f1.X:
		f0.Facing, f1.Facing = 1, -1
	case f0.X > f1.X:
		f0.Facing, f1.Facing = -1, 1
	}
}

// meleePass tests each attacker's active hit region against the opposing
// hurt region. An attack instance lands at most one hit, and a knocked-out
// defender is never hit again.
func (a *Arena) meleePass(result *StepResult) {
	for i := range a.fighters {
		attacker := &a.fighters[i]
		defender := &a.fighters[1-i]

		spec, active := attacker.inActiveWindow(a.frame)
		if !active || defender.State == StateKnockedOut {
			continue
		}
		if !attacker.hitBox(spec).overlaps(defender.hurtBox()) {
			continue
		}
		attacker.LastHitFrame = a.frame
		a.resolveHit(i, 1-i, hitProfile{
			kind:      spec.kind,
			base:      spec.baseDamage,
			stun:      spec.stun,
			knockback: spec.knockback,
			facing:    attacker.Facing,
		}, result)
	}
}

// hitProfile carries one confirmed contact into damage resolution.
type hitProfile struct {
	kind      HitKind
	base      int32
	stun      int32
	knockback int32
	facing    int32
}

// resolveHit applies damage, meter, knockback, stun, hitstop, and the
// particle burst for one confirmed hit.
func (a *Arena) resolveHit(attIdx, defIdx int, hit hitProfile, result *StepResult) {
	attacker := &a.fighters[attIdx]
	defender := &a.fighters[defIdx]

	blocked := defender.State == StateBlock

	damage := hit.base * (100 + attacker.Stats.AttackPower) / (100 + defender.Stats.DefensePower)
	if blocked {
		percent := int32(meleeBlockPercent)
		if hit.kind == HitProjectile {
			percent = projBlockPercent
		}
		damage = damage * percent / 100
	}
	damage = clamp32(damage, DamageMin, DamageMax)

	defender.Health = clamp32(defender.Health-damage, 0, defender.Stats.MaxHealth)
	attacker.Meter = clamp32(attacker.Meter+damage*attacker.Stats.MeterGain/16, 0, MeterMax)
	defender.Meter = clamp32(defender.Meter+damage/2, 0, MeterMax)

	knockback := hit.knockback
	if blocked {
		knockback /= blockKnockbackDiv
	}
	defender.VX = knockback * hit.facing
	if !blocked {
		if defender.grounded() {
			defender.VY = popUpImpulse
		}
		defender.enterState(StateHurt)
		defender.Stun = hit.stun
	}

	ko := defender.Health <= 0
	if ko {
		defender.knockOut()
	}

	a.hitstop = hitstopFrames
	a.shake = shakeOnHit
	a.spawnImpactBurst(defender.X, defender.Y+defender.Height*2/3)

	result.Hits = append(result.Hits, HitEvent{
		Attacker: attIdx,
		Defender: defIdx,
		Kind:     hit.kind,
		Damage:   damage,
		Blocked:  blocked,
		KO:       ko,
	})
}

func (a *Arena) checkWin(result *StepResult) {
	if a.outcome != OutcomeOpen {
		return
	}
	dead0 := a.fighters[0].Health <= 0
	dead1 := a.fighters[1].Health <= 0
	switch {
	case dead0 && dead1:
		a.outcome = OutcomeDraw
	case dead0:
		a.outcome = OutcomeWinner1
	case dead1:
		a.outcome = OutcomeWinner0
	}
	result.Outcome = a.outcome
	result.Over = a.outcome != OutcomeOpen
}

// Snapshot is a copy of the renderable state for the presentation layer.
type Snapshot struct {
	Frame       int64
	Fighters    [2]Fighter
	Projectiles []Projectile
	Particles   []Particle
	Hitstop     int32
	Shake       int32
	Outcome     Outcome
}

// Snapshot copies the current state. The arena retains no reference to the
// returned slices.
func (a *Arena) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:    a.frame,
		Fighters: a.fighters,
		Hitstop:  a.hitstop,
		Shake:    a.shake,
		Outcome:  a.outcome,
	}
	if len(a.projectiles) > 0 {
		snap.Projectiles = append([]Projectile(nil), a.projectiles...)
	}
	if len(a.particles) > 0 {
		snap.Particles = append([]Particle(nil), a.particles...)
	}
	return snap
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
