package tui

import (
	"fmt"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rhythm-studio/debug"
	"rhythm-studio/sequencer"
	"rhythm-studio/theme"
)

// grid geometry, in terminal cells
const (
	labelWidth = 14
	cellWidth  = 2
	gridTop    = 3 // blank line, header, blank line
)

// rowRef is one screen row of the grid: a channel header (voice -1) or a voice
type rowRef struct {
	channel string
	voice   int
}

// layoutBounds holds the rows drawn by the last View, for mouse hit tests
type layoutBounds struct {
	rows  []rowRef
	steps int
}

// Connection reports whether the sound output has a port; nil hides the indicator
type Connection interface {
	Connected() bool
}

type Model struct {
	Engine  *sequencer.Engine
	Library sequencer.Library
	Theme   *theme.Theme
	MIDI    Connection
	Density float64

	cursorRow  int
	cursorStep int
	pressing   bool
	beatIdx    int
	loadedID   string // library id of the beat on the grid, "" for unsaved work
	status     string
	statusErr  bool
	showHelp   bool
	quitting   bool
	help       help.Model
	bounds     *layoutBounds
}

type UpdateMsg struct{}

func NewModel(engine *sequencer.Engine, library sequencer.Library, th *theme.Theme) Model {
	return Model{
		Engine:  engine,
		Library: library,
		Theme:   th,
		Density: sequencer.DefaultDensity,
		beatIdx: -1,
		help:    help.New(),
		bounds:  &layoutBounds{},
	}
}

// WithLoadedBeat records the library id of a beat loaded before the UI
// started, so it can be deleted from the UI
func (m Model) WithLoadedBeat(id string) Model {
	m.loadedID = id
	return m
}

func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit
	}
	if key.Matches(msg, keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}

	m.status, m.statusErr = "", false

	f := m.frame()
	rows := buildRows(f)
	if len(rows) == 0 {
		return m, nil
	}
	m.cursorRow = clamp(m.cursorRow, 0, len(rows)-1)
	m.cursorStep = clamp(m.cursorStep, 0, f.steps-1)
	cur := rows[m.cursorRow]
	st := f.states[cur.channel]

	var err error
	switch {
	case key.Matches(msg, keys.Up):
		m.cursorRow = max(0, m.cursorRow-1)
	case key.Matches(msg, keys.Down):
		m.cursorRow = min(len(rows)-1, m.cursorRow+1)
	case key.Matches(msg, keys.Left):
		m.cursorStep = max(0, m.cursorStep-1)
	case key.Matches(msg, keys.Right):
		m.cursorStep = min(f.steps-1, m.cursorStep+1)

	case key.Matches(msg, keys.Toggle):
		if cur.voice < 0 {
			err = m.Engine.SetExpanded(cur.channel, !st.Expanded)
		} else {
			m.Engine.ToggleStep(cur.voice, m.cursorStep)
		}

	case key.Matches(msg, keys.Play):
		m.Engine.TogglePlay()

	case key.Matches(msg, keys.TempoUp):
		m.status = fmt.Sprintf("tempo %.0f", m.Engine.SetTempo(f.tempo+5))
	case key.Matches(msg, keys.TempoDown):
		m.status = fmt.Sprintf("tempo %.0f", m.Engine.SetTempo(f.tempo-5))

	case key.Matches(msg, keys.StepsUp):
		m.status = fmt.Sprintf("%d steps", m.Engine.SetStepCount(f.steps+4))
	case key.Matches(msg, keys.StepsDown):
		n := m.Engine.SetStepCount(f.steps - 4)
		m.cursorStep = min(m.cursorStep, n-1)
		m.status = fmt.Sprintf("%d steps", n)

	case key.Matches(msg, keys.Mute):
		err = m.Engine.SetMute(cur.channel, !st.Muted)
	case key.Matches(msg, keys.Solo):
		err = m.Engine.SetSolo(cur.channel, !st.Solo)
	case key.Matches(msg, keys.VolumeDown):
		err = m.Engine.SetVolume(cur.channel, st.Volume-0.1)
	case key.Matches(msg, keys.VolumeUp):
		err = m.Engine.SetVolume(cur.channel, st.Volume+0.1)
	case key.Matches(msg, keys.OctaveDown):
		ch, _ := f.channel(cur.channel)
		err = m.Engine.SetOctave(cur.channel, ch.Octave-1)
	case key.Matches(msg, keys.OctaveUp):
		ch, _ := f.channel(cur.channel)
		err = m.Engine.SetOctave(cur.channel, ch.Octave+1)
	case key.Matches(msg, keys.Expand):
		err = m.Engine.SetExpanded(cur.channel, !st.Expanded)

	case key.Matches(msg, keys.Clear):
		m.Engine.Clear()
		m.status = "cleared"
	case key.Matches(msg, keys.Randomize):
		m.Engine.Randomize(m.Density, nil)
		m.status = "randomized"

	case key.Matches(msg, keys.Save):
		err = m.save()
	case key.Matches(msg, keys.Load):
		err = m.cycleBeat(false)
	case key.Matches(msg, keys.PlayBeat):
		err = m.cycleBeat(true)
	case key.Matches(msg, keys.Delete):
		err = m.deleteLoaded()
	}

	if err != nil {
		m.status, m.statusErr = errorText(err), true
		debug.Log("engine", "key %q: %v", msg.String(), err)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	ref, step, ok := m.hitTest(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !ok {
			return
		}
		if ref.voice < 0 {
			f := m.frame()
			_ = m.Engine.SetExpanded(ref.channel, !f.states[ref.channel].Expanded)
			return
		}
		m.Engine.PressStart(ref.voice, step)
		m.pressing = true

	case tea.MouseActionMotion:
		if m.pressing && ok && ref.voice >= 0 {
			m.Engine.PressMove(ref.voice, step)
		}

	case tea.MouseActionRelease:
		if m.pressing {
			m.Engine.PressEnd()
			m.pressing = false
		}
	}
}

// hitTest maps a screen position to a grid row and step. Header rows hit
// with any x; voice rows only over a step cell.
func (m Model) hitTest(x, y int) (rowRef, int, bool) {
	i := y - gridTop
	if i < 0 || i >= len(m.bounds.rows) {
		return rowRef{}, 0, false
	}
	ref := m.bounds.rows[i]
	if ref.voice < 0 {
		return ref, 0, true
	}
	if x < labelWidth {
		return rowRef{}, 0, false
	}
	step := (x - labelWidth) / cellWidth
	if step >= m.bounds.steps {
		return rowRef{}, 0, false
	}
	return ref, step, true
}

func (m *Model) save() error {
	if m.Library == nil {
		return fault.New("no library configured")
	}
	name := "Beat " + time.Now().Format("Jan 2 15:04")
	s, err := m.Library.Save(m.Engine.Snapshot(name))
	if err != nil {
		return err
	}
	m.loadedID = s.ID
	m.status = fmt.Sprintf("saved %q", s.Name)
	return nil
}

// cycleBeat loads the next beat from the built-in and saved lists,
// starting playback when play is set
func (m *Model) cycleBeat(play bool) error {
	beats := sequencer.DefaultBeats()
	if m.Library != nil {
		saved, err := m.Library.Load()
		if err != nil {
			return err
		}
		beats = append(beats, saved...)
	}
	m.beatIdx = (m.beatIdx + 1) % len(beats)
	b := beats[m.beatIdx]
	m.Engine.Load(b)
	m.loadedID = b.ID
	m.status = fmt.Sprintf("loaded %q (%d/%d)", b.Name, m.beatIdx+1, len(beats))
	if play {
		m.Engine.Play()
	}
	return nil
}

// deleteLoaded removes the beat on the grid from the library. The grid
// keeps its contents as unsaved work.
func (m *Model) deleteLoaded() error {
	switch {
	case m.Library == nil:
		return fault.New("no library configured")
	case m.loadedID == "":
		return fault.New("no saved beat loaded", ftag.With(ftag.NotFound),
			fmsg.WithDesc("nothing to delete", "Load or save a beat first"))
	case sequencer.IsDefaultBeat(m.loadedID):
		return fault.New("built-in beat "+m.loadedID, ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("cannot delete a built-in beat", "Built-in beats cannot be deleted"))
	}
	if err := m.Library.Delete(m.loadedID); err != nil {
		return err
	}
	debug.Log("library", "deleted %s", m.loadedID)
	m.status = "deleted " + m.loadedID
	m.loadedID = ""
	// the list shrank; keep cycling from the same place
	m.beatIdx = max(-1, m.beatIdx-1)
	return nil
}

func errorText(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return "error: " + issue
	}
	return "error: " + err.Error()
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
