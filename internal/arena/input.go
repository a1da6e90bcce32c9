package arena

// InputMask packs one fighter's intent for one simulation frame into seven
// bits. The same encoding travels on the wire, so MaxMask bounds what the
// protocol layer will accept.
type InputMask uint8

const (
	InputLeft InputMask = 1 << iota
	InputRight
	InputJump
	InputLight
	InputHeavy
	InputSpecial
	InputBlock
)

// MaxMask is the largest well-formed input sample.
const MaxMask InputMask = 1<<7 - 1

// Has reports whether every bit of flag is set.
func (m InputMask) Has(flag InputMask) bool {
	return m&flag == flag
}

// Dir resolves the horizontal movement intent: -1, 0, or +1. Holding both
// directions cancels out.
func (m InputMask) Dir() int32 {
	switch {
	case m.Has(InputLeft) && m.Has(InputRight):
		return 0
	case m.Has(InputLeft):
		return -1
	case m.Has(InputRight):
		return 1
	default:
		return 0
	}
}
