package api

// Key is a physical key the contract exposes to guests. Only keys relevant
// to movement and interaction cross the boundary; everything else stays with
// the host UI.
type Key uint8

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyShift
	KeyControl

	keyCount
)

func (k Key) String() string {
	switch k {
	case KeyW:
		return "w"
	case KeyA:
		return "a"
	case KeyS:
		return "s"
	case KeyD:
		return "d"
	case KeySpace:
		return "space"
	case KeyShift:
		return "shift"
	case KeyControl:
		return "control"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a key the contract defines.
func (k Key) Valid() bool {
	return k < keyCount
}

// KeyboardEvent is one physical key transition. Events are per-transition,
// not per-frame: holding a key produces one press event (plus repeats if the
// platform reports them), then one release event.
type KeyboardEvent struct {
	Key      Key
	Released bool
	Repeat   bool
}
