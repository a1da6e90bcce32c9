package arena

import "math"

// Particles are pure presentation: they are the only floating-point math in
// the package, they read nothing back into gameplay state, and the renderer
// is their only consumer. The RNG draws that shape them are still made at
// deterministic points so both peers keep identical RNG streams.

const (
	particlesPerHit  = 6
	particleGravity  = 0.35
	particleBaseLife = 18
)

// Particle is one cosmetic spark, in display-pixel coordinates.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   int32
}

func (a *Arena) spawnImpactBurst(x, y int32) {
	px := float64(x) / Scale
	py := float64(y) / Scale
	for i := 0; i < particlesPerHit; i++ {
		angleDeg := a.rng.Intn(360)
		speed := 150 + a.rng.Intn(200) // display px/s scaled down per frame
		life := particleBaseLife + a.rng.Intn(12)

		rad := float64(angleDeg) * math.Pi / 180
		a.particles = append(a.particles, Particle{
			X:    px,
			Y:    py,
			VX:   math.Cos(rad) * float64(speed) / 60,
			VY:   math.Sin(rad) * float64(speed) / 60,
			Life: life,
		})
	}
}

func (a *Arena) stepParticles() {
	kept := a.particles[:0]
	for _, p := range a.particles {
		p.Life--
		if p.Life <= 0 {
			continue
		}
		p.X += p.VX
		p.Y += p.VY
		p.VY -= particleGravity
		kept = append(kept, p)
	}
	a.particles = kept
}
