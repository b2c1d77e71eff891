package physics

import "github.com/jakecoffman/cp"

// Preset is a global gravity and damping pair. Damping is the fraction of
// velocity a body keeps per second.
type Preset struct {
	Gravity cp.Vector
	Damping float64
}

// Screen space grows downwards, so gravity points along +Y.
var (
	PresetGravity   = Preset{Gravity: cp.Vector{X: 0, Y: 900}, Damping: 0.95}
	PresetSetup     = Preset{Gravity: cp.Vector{}, Damping: 0}
	PresetNoGravity = Preset{Gravity: cp.Vector{}, Damping: 1}
)
