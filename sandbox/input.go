package sandbox

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// Modifier is a set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// ModDelete is the set of modifiers that turn a click into a delete.
const ModDelete = ModCtrl | ModAlt

func (m Modifier) Has(x Modifier) bool { return m&x != 0 }

// Delete reports whether any delete modifier is held.
func (m Modifier) Delete() bool { return m.Has(ModDelete) }

// Key is a keyboard key the sandbox reacts to.
type Key int

const (
	KeySpace Key = iota // toggle grid snapping
	KeyShift            // axis lock while held
	KeyUp               // next game mode
	KeyDown             // previous game mode
	KeyF                // follow the entity under the pointer
	KeyEscape           // cancel the gesture in progress
)
