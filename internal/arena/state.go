package arena

// FighterState enumerates the discrete state machine. Exactly one state is
// active per fighter per frame; KnockedOut is terminal.
type FighterState uint8

const (
	StateIdle FighterState = iota
	StateRun
	StateJump
	StatePunch
	StateKick
	StateSpecial
	StateHurt
	StateBlock
	StateKnockedOut

	stateCount
)

var stateNames = [stateCount]string{
	"idle", "run", "jump", "punch", "kick", "special", "hurt", "block", "knocked-out",
}

func (s FighterState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Attacking reports whether the state is one of the three attack animations.
func (s FighterState) Attacking() bool {
	return s == StatePunch || s == StateKick || s == StateSpecial
}

// canAct states may start a jump or an attack this frame.
func (s FighterState) canAct() bool {
	return s == StateIdle || s == StateRun || s == StateJump
}

// canMove states accept horizontal movement input.
func (s FighterState) canMove() bool {
	return s == StateIdle || s == StateRun || s == StateJump
}

// HitKind distinguishes the damage sources for blocking fractions and stun
// durations.
type HitKind uint8

const (
	HitPunch HitKind = iota
	HitKick
	HitProjectile
)

var hitKindNames = [...]string{"punch", "kick", "projectile"}

func (k HitKind) String() string {
	if int(k) < len(hitKindNames) {
		return hitKindNames[k]
	}
	return "unknown"
}

// moveSpec fixes one attack's animation length, active-hit window, cooldown,
// and damage profile. Frame values index StateFrame after the per-frame
// advance, so activeFrom/activeTo are 1-based.
type moveSpec struct {
	total      int32
	activeFrom int32
	activeTo   int32
	cooldown   int32
	baseDamage int32
	stun       int32
	knockback  int32
	kind       HitKind
}

var (
	punchSpec = moveSpec{
		total:      14,
		activeFrom: 3,
		activeTo:   6,
		cooldown:   20,
		baseDamage: 8,
		stun:       12,
		knockback:  350,
		kind:       HitPunch,
	}
	kickSpec = moveSpec{
		total:      18,
		activeFrom: 5,
		activeTo:   9,
		cooldown:   30,
		baseDamage: 12,
		stun:       16,
		knockback:  500,
		kind:       HitKick,
	}
	specialSpec = moveSpec{
		total:      24,
		cooldown:   90,
		baseDamage: 16,
		stun:       20,
		knockback:  650,
		kind:       HitProjectile,
	}
)

// attackSpec returns the move table entry for an attacking state.
func attackSpec(s FighterState) (moveSpec, bool) {
	switch s {
	case StatePunch:
		return punchSpec, true
	case StateKick:
		return kickSpec, true
	case StateSpecial:
		return specialSpec, true
	default:
		return moveSpec{}, false
	}
}
