package arena

// RNG is the match's deterministic 32-bit generator (xorshift32). It is
// seeded once from the start handshake and advanced only for cosmetic
// particle parameters; gameplay logic never reads it, so both peers consume
// the stream at identical points.
type RNG struct {
	state uint32
}

// NewRNG seeds the generator. A zero seed is remapped because xorshift32
// cannot leave the all-zero state.
func NewRNG(seed int32) *RNG {
	s := uint32(seed)
	if s == 0 {
		s = 0x9e3779b9
	}
	return &RNG{state: s}
}

func (r *RNG) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn returns a value in [0, n). n must be positive.
func (r *RNG) Intn(n int32) int32 {
	return int32(r.next() % uint32(n))
}
