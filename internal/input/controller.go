// Package input implements controller handling for the NES.
package input

// Button represents NES controller buttons
type Button uint8

const (
	ButtonA Button = 1 << (7 - iota)
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Convenience constants for shorter names used in host integrations.
const (
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
	Up     = ButtonUp
	Down   = ButtonDown
	Left   = ButtonLeft
	Right  = ButtonRight
)

// buttonOrder is the NES serial read order, MSB to LSB of the latched status
// byte: A, B, Select, Start, Up, Down, Left, Right.
var buttonOrder = [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}

// Controller is one NES controller port: a live button mask, a status byte
// latched at strobe time, a 3-bit read index, and a 1-bit strobe.
type Controller struct {
	playerID int

	buttons uint8 // live, host-set button mask
	status  uint8 // snapshot shifted out one bit per Read
	index   uint8 // 0..7 valid; >7 reads as open-bus 1
	strobe  bool
}

// New creates a Controller for the given player slot (1 or 2).
func New(playerID int) *Controller {
	return &Controller{playerID: playerID}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets every button at once, in buttonOrder (A, B, Select, Start,
// Up, Down, Left, Right).
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= uint8(buttonOrder[i])
		}
	}
}

// IsPressed reports whether button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Strobe sets the controller's strobe line (memory.ControllerPort). Setting
// it high latches the current button state and resets the read index.
func (c *Controller) Strobe(set bool) {
	c.strobe = set
	if c.strobe {
		c.status = c.buttons
		c.index = 0
	}
}

// Read shifts out one status bit of the controller's serial protocol:
// index>7 reads as 1; otherwise the bit at index, advancing index only
// while strobe is low.
func (c *Controller) Read() uint8 {
	if c.index > 7 {
		return 1
	}
	bit := (c.status >> (7 - c.index)) & 1
	if !c.strobe {
		c.index++
	}
	return bit
}

// Reset clears all latched and live state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.status = 0
	c.index = 0
	c.strobe = false
}

// InputState owns both controller ports and dispatches $4016/$4017.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates the two-port controller aggregate.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(1),
		Controller2: New(2),
	}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}
