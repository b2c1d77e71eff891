package sandbox

import (
	"fmt"
	"strings"

	"github.com/milk9111/careenium/physics"
)

// Mode selects the global gravity and damping preset. Setup also pauses
// the emitter.
type Mode int

const (
	ModeGravity Mode = iota
	ModeSetup
	ModeNoGravity
)

var modeNames = []string{"gravity", "setup", "no_gravity"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) Preset() physics.Preset {
	switch m {
	case ModeSetup:
		return physics.PresetSetup
	case ModeNoGravity:
		return physics.PresetNoGravity
	default:
		return physics.PresetGravity
	}
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// ToolSlot is one entry of the tool cycle: either a create kind or a
// joint kind.
type ToolSlot struct {
	Joint     bool
	Kind      Kind
	JointKind JointKind
}

func (s ToolSlot) String() string {
	if s.Joint {
		return s.JointKind.String() + " joint"
	}
	return s.Kind.String()
}

// toolCycle is the scroll order: create kinds first, then joint kinds.
var toolCycle = []ToolSlot{
	{Kind: KindCircle},
	{Kind: KindPipe},
	{Kind: KindBox},
	{Kind: KindStatic},
	{Kind: KindPlank},
	{Joint: true, JointKind: JointPin},
	{Joint: true, JointKind: JointSlide},
	{Joint: true, JointKind: JointMotor},
	{Joint: true, JointKind: JointPivot},
	{Joint: true, JointKind: JointBridgeLink},
}
