package arena

import "ringside/internal/stats"

// Simulation tuning. All distances are fixed-point units (Scale units per
// display pixel); all rates are per frame. These are gameplay constants, not
// configuration: both peers must compile with identical values.
const (
	// Scale is the fixed-point factor: 1 display pixel = Scale units.
	Scale = 100

	// StageWidth spans the playfield in units (800 display pixels).
	StageWidth = 800 * Scale

	gravity        = 55
	groundAccel    = 40
	airAccel       = 18
	groundFriction = 50

	jumpBufferFrames = 4
	coyoteFrames     = 3

	// SpecialCost is the meter consumed by a special move.
	SpecialCost       = 35
	specialSpawnFrame = 8

	popUpImpulse = 700
	hurtInset    = 300

	// DamageMin and DamageMax clamp every resolved hit.
	DamageMin = 1
	DamageMax = 120

	meleeBlockPercent = 25
	projBlockPercent  = 50
	blockKnockbackDiv = 4

	// MeterMax caps the special-move resource.
	MeterMax = 100

	hitstopFrames = 4
	shakeOnHit    = 6
)

// Fighter is one combatant's full mutable state. Every field is integer so
// that two independently compiled peers advancing the same inputs stay
// bit-identical.
type Fighter struct {
	Index  int
	Name   string
	Stats  stats.Derived
	Facing int32 // +1 faces right, -1 faces left

	X, Y   int32 // bottom-center of the body box
	VX, VY int32

	Width, Height int32

	Health int32
	Meter  int32

	State      FighterState
	StateFrame int32

	Stun            int32
	PunchCooldown   int32
	KickCooldown    int32
	SpecialCooldown int32
	JumpBuffer      int32
	Coyote          int32

	// attackStartFrame and LastHitFrame gate each attack instance to a
	// single confirmed hit across its active window.
	attackStartFrame int64
	LastHitFrame     int64

	prevInput InputMask
}

func newFighter(index int, name string, derived stats.Derived, x int32, facing int32) Fighter {
	return Fighter{
		Index:        index,
		Name:         name,
		Stats:        derived,
		Facing:       facing,
		X:            x,
		Width:        derived.BodyWidth,
		Height:       derived.BodyHeight,
		Health:       derived.MaxHealth,
		State:        StateIdle,
		LastHitFrame: -1,
	}
}

func (f *Fighter) grounded() bool {
	return f.Y <= 0
}

// bodyBox is the fighter's collision rectangle.
func (f *Fighter) bodyBox() box {
	half := f.Width / 2
	return box{x0: f.X - half, y0: f.Y, x1: f.X + half, y1: f.Y + f.Height}
}

// hurtBox is the body box inset slightly so grazing contact does not
// register as a hit.
func (f *Fighter) hurtBox() box {
	b := f.bodyBox()
	return box{x0: b.x0 + hurtInset, y0: b.y0 + hurtInset, x1: b.x1 - hurtInset, y1: b.y1 - hurtInset}
}

// hitBox is the forward-offset region tested against the defender during an
// attack's active window. Punches cover the upper half of the attacker's
// height, kicks the lower half.
func (f *Fighter) hitBox(spec moveSpec) box {
	reach := f.Stats.MeleeReach
	var x0, x1 int32
	if f.Facing >= 0 {
		x0 = f.X + f.Width/2
		x1 = x0 + reach
	} else {
		x1 = f.X - f.Width/2
		x0 = x1 - reach
	}
	y0, y1 := f.Y, f.Y+f.Height
	switch spec.kind {
	case HitPunch:
		y0 = f.Y + f.Height/2
	case HitKick:
		y1 = f.Y + f.Height/2
	}
	return box{x0: x0, y0: y0, x1: x1, y1: y1}
}

// inActiveWindow reports whether the current animation frame can land a hit
// and the attack has not already connected.
func (f *Fighter) inActiveWindow(frame int64) (moveSpec, bool) {
	spec, ok := attackSpec(f.State)
	if !ok || spec.kind == HitProjectile {
		return moveSpec{}, false
	}
	if f.StateFrame < spec.activeFrom || f.StateFrame > spec.activeTo {
		return moveSpec{}, false
	}
	if f.LastHitFrame >= f.attackStartFrame {
		return moveSpec{}, false
	}
	return spec, true
}

func (f *Fighter) enterState(s FighterState) {
	f.State = s
	f.StateFrame = 0
}

// knockOut is the terminal transition: velocity and stun are zeroed and no
// further state changes occur.
func (f *Fighter) knockOut() {
	if f.State == StateKnockedOut {
		return
	}
	f.enterState(StateKnockedOut)
	f.VX = 0
	f.VY = 0
	f.Stun = 0
}

type box struct {
	x0, y0, x1, y1 int32
}

func (b box) overlaps(o box) bool {
	return b.x0 < o.x1 && o.x0 < b.x1 && b.y0 < o.y1 && o.y0 < b.y1
}

func clamp32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
