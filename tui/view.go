package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rhythm-studio/debug"
	"rhythm-studio/sequencer"
	"rhythm-studio/widgets"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellTap
	cellHeldHead
	cellHeld
)

// frame is a consistent copy of engine state for one render
type frame struct {
	channels []sequencer.Channel
	states   map[string]sequencer.ChannelState
	voices   []sequencer.Voice
	cells    [][]cellKind
	steps    int
	tempo    float64
	playhead int
	running  bool
}

func (f frame) channel(id string) (sequencer.Channel, bool) {
	for _, c := range f.channels {
		if c.ID == id {
			return c, true
		}
	}
	return sequencer.Channel{}, false
}

func (m Model) frame() frame {
	var f frame
	m.Engine.Read(func(p *sequencer.Pattern, t *sequencer.Transport) {
		f.channels = p.Channels()
		f.states = p.ChannelStates()
		f.voices = p.Voices()
		f.steps = p.StepCount()
		f.tempo = p.Tempo()
		f.playhead = t.Playhead()
		f.running = t.Running()
		f.cells = make([][]cellKind, len(f.voices))
		for i := range f.voices {
			f.cells[i] = cellsFor(f.steps, p.Groups(i))
		}
	})
	return f
}

// cellsFor marks dragged notes as a head plus held steps; taps stay single
func cellsFor(steps int, groups []sequencer.NoteGroup) []cellKind {
	cells := make([]cellKind, steps)
	for _, g := range groups {
		for i, s := range g.Steps {
			switch {
			case !g.WasDragged:
				cells[s] = cellTap
			case i == 0:
				cells[s] = cellHeldHead
			default:
				cells[s] = cellHeld
			}
		}
	}
	return cells
}

// buildRows lists the screen rows: every channel header, then its voices
// when expanded
func buildRows(f frame) []rowRef {
	var rows []rowRef
	for _, c := range f.channels {
		rows = append(rows, rowRef{channel: c.ID, voice: -1})
		if !f.states[c.ID].Expanded {
			continue
		}
		for i, v := range f.voices {
			if v.ChannelID == c.ID {
				rows = append(rows, rowRef{channel: c.ID, voice: i})
			}
		}
	}
	return rows
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	f := m.frame()
	rows := buildRows(f)
	m.bounds.rows = rows
	m.bounds.steps = f.steps

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())

	playState := "STOP"
	if f.running {
		playState = "PLAY"
	}
	step := "--"
	if f.playhead >= 0 {
		step = fmt.Sprintf("%02d", f.playhead+1)
	}
	header := headerStyle.Render(fmt.Sprintf("rhythm-studio  %s  %3.0fbpm  %d steps  step:%s",
		playState, f.tempo, f.steps, step))
	if m.MIDI != nil {
		if m.MIDI.Connected() {
			header += "  " + lipgloss.NewStyle().Foreground(m.Theme.Success()).Render("midi")
		} else {
			header += "  " + lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render("no midi")
		}
	}
	if debug.Enabled() {
		header += "  " + lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render("[debug log]")
	}

	audible := sequencer.AudibleChannels(f.states)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	for i, ref := range rows {
		if ref.voice < 0 {
			out.WriteString(m.renderChannelHeader(f, ref.channel, i == m.cursorRow))
		} else {
			out.WriteString(m.renderVoiceRow(f, ref, audible[ref.channel], i == m.cursorRow))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	if m.status != "" {
		color := m.Theme.Success()
		if m.statusErr {
			color = m.Theme.Warning()
		}
		out.WriteString(lipgloss.NewStyle().Foreground(color).Render(m.status))
	}
	out.WriteString("\n")
	if m.showHelp {
		out.WriteString(m.renderHelp())
	} else {
		out.WriteString(m.help.View(keys))
	}
	return out.String()
}

func (m Model) renderHelp() string {
	sym := m.Theme.Symbols
	accent := m.Theme.Accent()
	legend := []string{
		"Cells",
		widgets.RenderLegendItem(accent, string(sym.StepActive), "tapped step"),
		widgets.RenderLegendItem(accent, string(sym.StepHeldHead)+string(sym.StepHeld)+string(sym.StepHeld), "held note (drag)"),
		widgets.RenderLegendItem(m.Theme.Muted(), string(sym.StepPlayhead), "playhead"),
	}
	return widgets.RenderKeyHelp(keys.helpSections()) + "\n" + strings.Join(legend, "\n")
}

func (m Model) renderChannelHeader(f frame, id string, selected bool) string {
	c, _ := f.channel(id)
	st := f.states[id]
	sym := m.Theme.Symbols

	fold := sym.Collapsed
	if st.Expanded {
		fold = sym.Expanded
	}
	flags := "   "
	if st.Muted {
		flags = string(sym.Muted) + "  "
	}
	if st.Solo {
		flags = flags[:1] + " " + string(sym.Solo)
	}

	name := fmt.Sprintf("%c %-*s", fold, labelWidth-2, c.Name)
	style := lipgloss.NewStyle().Foreground(m.Theme.ChannelColor(c.Color, 1)).Bold(true)
	if selected {
		style = style.Reverse(true)
	}

	line := style.Render(name) + " " + flags + " " + widgets.RenderMeter(st.Volume, 8) + fmt.Sprintf(" %.2f", st.Volume)
	if c.Kind == sequencer.KindSynthesized {
		line += fmt.Sprintf("  oct %d", c.Octave)
	}
	return line
}

func (m Model) renderVoiceRow(f frame, ref rowRef, audible, selected bool) string {
	v := f.voices[ref.voice]
	c, _ := f.channel(ref.channel)
	sym := m.Theme.Symbols

	dim := 1.0
	if !audible {
		dim = 0.4
	}
	on := lipgloss.NewStyle().Foreground(m.Theme.ChannelColor(c.Color, dim))
	off := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	label := fmt.Sprintf("  %-*s", labelWidth-2, v.Name)
	var line strings.Builder
	if selected {
		line.WriteString(lipgloss.NewStyle().Reverse(true).Render(label))
	} else {
		line.WriteString(off.Render(label))
	}

	for s, kind := range f.cells[ref.voice] {
		var r rune
		style := on
		switch kind {
		case cellTap:
			r = sym.StepActive
		case cellHeldHead:
			r = sym.StepHeldHead
		case cellHeld:
			r = sym.StepHeld
		default:
			r = sym.StepEmpty
			style = off
			if s == f.playhead {
				r = sym.StepPlayhead
			}
		}
		if selected && s == m.cursorStep && kind == cellEmpty {
			r = sym.Cursor
			style = lipgloss.NewStyle().Foreground(m.Theme.Cursor())
		}
		if s == f.playhead {
			style = style.Background(m.Theme.BG())
		}
		if selected && s == m.cursorStep {
			style = style.Underline(true)
		}
		line.WriteString(style.Render(string(r)))
		// held notes read as one bar
		if kind == cellHeldHead || kind == cellHeld {
			if s+1 < len(f.cells[ref.voice]) && f.cells[ref.voice][s+1] == cellHeld {
				line.WriteString(style.Render(string(sym.StepHeld)))
				continue
			}
		}
		line.WriteString(" ")
	}
	return line.String()
}
