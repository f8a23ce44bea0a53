package sequencer

import "rhythm-studio/debug"

type gestureState int

const (
	gestureIdle gestureState = iota
	gesturePressing
	gestureDragging
)

// Composer turns press gestures into pattern edits. A press toggles the
// step under it; dragging along the same row then paints a sustained note.
type Composer struct {
	pattern *Pattern
	state   gestureState
	voice   int
	anchor  int
}

// NewComposer creates a composer editing p
func NewComposer(p *Pattern) *Composer {
	return &Composer{pattern: p}
}

// SetPattern points the composer at another pattern and drops any gesture
func (c *Composer) SetPattern(p *Pattern) {
	c.pattern = p
	c.PressEnd()
}

// PressStart anchors a gesture and toggles the pressed step, so a tap is
// complete without a following move.
func (c *Composer) PressStart(voice, step int) {
	c.pattern.ToggleStep(voice, step)
	c.state = gesturePressing
	c.voice = voice
	c.anchor = step
}

// PressMove paints anchor..step on the anchor's row with a new group id.
// Moves on other rows, back onto the anchor, or without a press are ignored.
func (c *Composer) PressMove(voice, step int) bool {
	if c.state == gestureIdle || voice != c.voice || step == c.anchor {
		return false
	}
	// the grid shrank under the press
	if c.anchor >= c.pattern.StepCount() {
		debug.Log("drag", "anchor %d gone after resize to %d, gesture dropped", c.anchor, c.pattern.StepCount())
		c.PressEnd()
		return false
	}
	lo, hi := min(c.anchor, step), max(c.anchor, step)
	id := NextGroupID()
	c.pattern.SetSpan(voice, lo, hi, id)
	c.state = gestureDragging
	debug.Log("drag", "voice=%d span=%d..%d group=%d", voice, lo, hi, id)
	return true
}

// PressEnd finishes the gesture
func (c *Composer) PressEnd() {
	c.state = gestureIdle
	c.voice = -1
	c.anchor = -1
}
