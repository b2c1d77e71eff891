package sandbox

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
)

// Kind is the closed set of entity kinds.
type Kind int

const (
	KindCircle Kind = iota + 1
	KindBox
	KindPlank
	KindPipe
	KindStatic
	KindLine
)

var kindNames = map[Kind]string{
	KindCircle: "circle",
	KindBox:    "box",
	KindPlank:  "plank",
	KindPipe:   "pipe",
	KindStatic: "static",
	KindLine:   "line",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// prefab is the kinds.yaml entry backing k. Decorative lines use the
// link entry.
func (k Kind) prefab(decorative bool) string {
	if k == KindLine && decorative {
		return "link"
	}
	return k.String()
}

// PipeState is carried by pipes only.
type PipeState struct {
	Emit   cp.Vector
	Target Kind
}

// Entity is the registry's view of one body and shape pair. Position,
// Angle and Velocity are refreshed from the engine by Registry.Sync.
type Entity struct {
	ID         ecs.Entity
	Kind       Kind
	Dynamic    bool
	Locked     bool
	Decorative bool

	Position cp.Vector
	Angle    float64
	Velocity cp.Vector

	// Radius is set for circles, the half extents for everything else.
	Radius     float64
	HalfWidth  float64
	HalfHeight float64

	Pipe *PipeState
}

// Params carries the optional per-entity settings of Registry.Create.
type Params struct {
	Angle float64
	// Length overrides the box width of planks and lines.
	Length float64
	// Decorative selects the link geometry for lines.
	Decorative bool
	// Emit and Target configure pipes. A zero Target uses the registry
	// default.
	Emit   cp.Vector
	Target Kind
}
