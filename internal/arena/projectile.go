package arena

// Projectile is a special-move bullet owned by the arena. It travels
// horizontally, expires on lifetime, stage exit, or hit confirmation.
type Projectile struct {
	Owner  int
	X, Y   int32
	VX     int32
	Extent int32 // half-size of the square collision box
	Damage int32
	Life   int32
	Shape  int32 // cosmetic tag forwarded to the renderer
}

func (p Projectile) collisionBox() box {
	return box{x0: p.X - p.Extent, y0: p.Y - p.Extent, x1: p.X + p.Extent, y1: p.Y + p.Extent}
}

func (p Projectile) offStage() bool {
	return p.X+p.Extent < 0 || p.X-p.Extent > StageWidth
}

// spawnProjectile fires the owner's special projectile from their front edge
// at three-fifths of body height.
func (a *Arena) spawnProjectile(f *Fighter) {
	derived := f.Stats
	p := Projectile{
		Owner:  f.Index,
		X:      f.X + f.Facing*(f.Width/2+derived.ProjectileExtent),
		Y:      f.Y + f.Height*3/5,
		VX:     f.Facing * derived.ProjectileSpeed,
		Extent: derived.ProjectileExtent,
		Damage: specialSpec.baseDamage,
		Life:   derived.ProjectileLife,
		Shape:  derived.ProjectileExtent / 100,
	}
	a.projectiles = append(a.projectiles, p)
}

// stepProjectiles advances, collides, and expires every projectile. Runs
// after the melee pass so a projectile launched this frame cannot also hit
// this frame.
func (a *Arena) stepProjectiles(result *StepResult) {
	kept := a.projectiles[:0]
	for _, p := range a.projectiles {
		p.X += p.VX
		p.Life--
		if p.Life <= 0 || p.offStage() {
			continue
		}

		defender := &a.fighters[1-p.Owner]
		if defender.State != StateKnockedOut && p.collisionBox().overlaps(defender.hurtBox()) {
			a.resolveHit(p.Owner, 1-p.Owner, hitProfile{
				kind:      HitProjectile,
				base:      p.Damage,
				stun:      specialSpec.stun,
				knockback: specialSpec.knockback,
				facing:    sign(p.VX),
			}, result)
			continue
		}
		kept = append(kept, p)
	}
	a.projectiles = kept
}

func sign(v int32) int32 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
