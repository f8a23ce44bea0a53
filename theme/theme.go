package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	StepEmpty    rune // · inactive step
	StepActive   rune // ● tapped hit
	StepHeld     rune // ━ inside a dragged note
	StepHeldHead rune // ◆ first step of a dragged note
	StepPlayhead rune // ▶ playhead over an empty step

	Cursor rune // ○ cursor on empty

	Expanded  rune // ▾
	Collapsed rune // ▸
	Muted     rune // M
	Solo      rune // S
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepActive:   '●',
			StepHeld:     '━',
			StepHeldHead: '◆',
			StepPlayhead: '▶',

			Cursor: '○',

			Expanded:  '▾',
			Collapsed: '▸',
			Muted:     'M',
			Solo:      'S',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.2
	RoleFG      = 0.5
	RoleAccent  = 0.6
	RoleCursor  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Cursor() lipgloss.Color  { return t.Color(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// ChannelColor resolves a channel's hex color, falling back to the accent
// role when it does not parse. Below 1, dim fades it toward the background
// for inaudible channels.
func (t *Theme) ChannelColor(hex string, dim float64) lipgloss.Color {
	c, err := ParseHex(hex)
	if err != nil {
		c = t.Palette.Lookup(RoleAccent)
	}
	if dim < 1 {
		c = c.Fade(t.Palette.Lookup(RoleBG), dim)
	}
	return lipgloss.Color(c.Hex())
}
