package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"rhythm-studio/widgets"
)

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Toggle                key.Binding

	Play                 key.Binding
	TempoUp, TempoDown   key.Binding
	StepsUp, StepsDown   key.Binding
	Mute, Solo           key.Binding
	VolumeUp, VolumeDown key.Binding
	OctaveUp, OctaveDown key.Binding
	Expand               key.Binding
	Clear, Randomize     key.Binding
	Save, Load, Delete   key.Binding
	PlayBeat             key.Binding
	Help, Quit           key.Binding
}

var keys = keyMap{
	Up:    Key("up", "up", "k"),
	Down:  Key("down", "down", "j"),
	Left:  Key("left", "left", "h"),
	Right: Key("right", "right", "l"),
	// bubbletea reports the space bar as " "
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "toggle step")),

	Play:       Key("play/stop", "p"),
	TempoUp:    Key("tempo +5", "+", "="),
	TempoDown:  Key("tempo -5", "-", "_"),
	StepsUp:    Key("4 more steps", "]"),
	StepsDown:  Key("4 fewer steps", "["),
	Mute:       Key("mute channel", "m"),
	Solo:       Key("solo channel", "s"),
	VolumeUp:   Key("volume +0.1", "."),
	VolumeDown: Key("volume -0.1", ","),
	OctaveUp:   Key("octave up", "O"),
	OctaveDown: Key("octave down", "o"),
	Expand:     Key("fold channel", "e"),
	Clear:      Key("clear grid", "c"),
	Randomize:  Key("randomize", "r"),
	Save:       Key("save beat", "w"),
	Load:       Key("next beat", "L"),
	PlayBeat:   Key("play next beat", "P"),
	Delete:     Key("delete loaded beat", "D"),
	Help:       Key("help", "?"),
	Quit:       Key("quit", "q", "ctrl+c"),
}

// ShortHelp is the one-line help under the grid
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.TempoUp, k.TempoDown, k.Mute, k.Solo, k.Save, k.Load, k.Help, k.Quit}
}

// FullHelp satisfies help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// helpSections groups the bindings for the ? panel
func (k keyMap) helpSections() []widgets.KeySection {
	section := func(title string, bs ...key.Binding) widgets.KeySection {
		s := widgets.KeySection{Title: title}
		for _, b := range bs {
			s.Keys = append(s.Keys, widgets.KeyBinding{Key: b.Help().Key, Desc: b.Help().Desc})
		}
		return s
	}
	return []widgets.KeySection{
		section("Grid", k.Up, k.Down, k.Left, k.Right, k.Toggle),
		{Keys: []widgets.KeyBinding{{Key: "drag", Desc: "draw a held note"}}},
		section("Transport", k.Play, k.TempoUp, k.TempoDown, k.StepsUp, k.StepsDown),
		section("Channel", k.Mute, k.Solo, k.VolumeUp, k.VolumeDown, k.OctaveUp, k.OctaveDown, k.Expand),
		section("Pattern", k.Clear, k.Randomize),
		section("Beats", k.Save, k.Load, k.PlayBeat, k.Delete),
		section("", k.Help, k.Quit),
	}
}
