package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rhythm-studio/sequencer"
	"rhythm-studio/theme"
)

func newTestModel(t *testing.T) (Model, *sequencer.Engine) {
	t.Helper()
	e := sequencer.NewEngine(sequencer.NewPattern(sequencer.DefaultChannels()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.Run(ctx)

	m := NewModel(e, nil, theme.New(nil))
	m.View() // lay out rows for hit tests
	return m, e
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestBuildRowsSkipsCollapsedChannels(t *testing.T) {
	p := sequencer.NewPattern(sequencer.DefaultChannels())
	if err := p.SetChannelExpanded("drums", false); err != nil {
		t.Fatal(err)
	}
	f := frame{channels: p.Channels(), states: p.ChannelStates(), voices: p.Voices()}

	rows := buildRows(f)
	// 6 channel headers plus every voice except the 6 drums
	if want := 6 + 48 - 6; len(rows) != want {
		t.Fatalf("got %d rows, want %d", len(rows), want)
	}
	if rows[0].voice != -1 || rows[1].voice != -1 || rows[1].channel != "percussion" {
		t.Fatalf("collapsed drums should be a bare header, got %+v %+v", rows[0], rows[1])
	}
}

func TestCellsFor(t *testing.T) {
	groups := []sequencer.NoteGroup{
		{Steps: []int{0}},
		{Steps: []int{2, 3, 4}, WasDragged: true},
	}
	got := cellsFor(6, groups)
	want := []cellKind{cellTap, cellEmpty, cellHeldHead, cellHeld, cellHeld, cellEmpty}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cells = %v, want %v", got, want)
		}
	}
}

func TestMouseDragDrawsHeldNote(t *testing.T) {
	m, e := newTestModel(t)
	kickY := gridTop + 1 // drums header, then kick
	stepX := func(s int) int { return labelWidth + s*cellWidth }

	m = send(m, mouse(tea.MouseActionPress, stepX(2), kickY))
	m = send(m, mouse(tea.MouseActionMotion, stepX(4), kickY))
	m = send(m, mouse(tea.MouseActionMotion, stepX(5), kickY))
	m = send(m, mouse(tea.MouseActionRelease, stepX(5), kickY))

	e.Read(func(p *sequencer.Pattern, _ *sequencer.Transport) {
		id := p.GroupID(0, 2)
		if id == sequencer.NoGroup {
			t.Error("dragged steps have no group")
			return
		}
		for s := 2; s <= 5; s++ {
			if !p.Step(0, s) || p.GroupID(0, s) != id {
				t.Errorf("step %d: active=%v group=%d, want active in group %d", s, p.Step(0, s), p.GroupID(0, s), id)
			}
		}
		if p.Step(0, 6) {
			t.Error("step 6 should be untouched")
		}
	})
}

func TestMotionWithoutPressDoesNothing(t *testing.T) {
	m, e := newTestModel(t)
	m = send(m, mouse(tea.MouseActionMotion, labelWidth+3*cellWidth, gridTop+1))
	e.Read(func(p *sequencer.Pattern, _ *sequencer.Transport) {
		if p.Step(0, 3) {
			t.Error("hover changed the grid")
		}
	})
}

func TestKeysEditPatternAndMix(t *testing.T) {
	m, e := newTestModel(t)

	m = send(m, keyPress("]"))
	m = send(m, keyPress("m")) // cursor starts on the drums header
	m = send(m, keyPress("+"))

	e.Read(func(p *sequencer.Pattern, _ *sequencer.Transport) {
		if p.StepCount() != 20 {
			t.Errorf("steps = %d, want 20", p.StepCount())
		}
		if st, _ := p.ChannelState("drums"); !st.Muted {
			t.Error("drums not muted")
		}
		if p.Tempo() != 125 {
			t.Errorf("tempo = %v, want 125", p.Tempo())
		}
	})
}

func TestOctaveKeyOnSampleChannelReportsError(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(m, keyPress("O"))
	if m.status == "" {
		t.Fatal("expected an error status for drums octave change")
	}
}

func TestCycleBeatLoadsBuiltIns(t *testing.T) {
	m, e := newTestModel(t)
	m = send(m, keyPress("L"))

	e.Read(func(p *sequencer.Pattern, _ *sequencer.Transport) {
		if p.Name != "Simple Drum Loop" || p.StepCount() != 30 {
			t.Errorf("loaded %q with %d steps", p.Name, p.StepCount())
		}
	})
}

func TestHitTestOutsideGrid(t *testing.T) {
	m, _ := newTestModel(t)
	if _, _, ok := m.hitTest(0, 0); ok {
		t.Error("header line hit the grid")
	}
	if _, _, ok := m.hitTest(labelWidth-1, gridTop+1); ok {
		t.Error("voice label hit a step")
	}
	if _, _, ok := m.hitTest(labelWidth+16*cellWidth, gridTop+1); ok {
		t.Error("past the last step hit the grid")
	}
	ref, _, ok := m.hitTest(0, gridTop)
	if !ok || ref.voice != -1 || ref.channel != "drums" {
		t.Errorf("channel header hit = %+v, %v", ref, ok)
	}
}

func TestDeleteRemovesSavedBeat(t *testing.T) {
	m, _ := newTestModel(t)
	lib := sequencer.NewDirLibrary(t.TempDir())
	m.Library = lib

	m = send(m, keyPress("w"))
	saved, err := lib.Load()
	if err != nil || len(saved) != 1 {
		t.Fatalf("after save: %d beats, err %v", len(saved), err)
	}

	m = send(m, keyPress("D"))
	if m.statusErr {
		t.Fatalf("delete failed: %s", m.status)
	}
	if saved, _ := lib.Load(); len(saved) != 0 {
		t.Fatalf("%d beats left after delete", len(saved))
	}

	// nothing is loaded any more
	m = send(m, keyPress("D"))
	if !m.statusErr {
		t.Fatal("second delete should report an error")
	}
}

func TestDeleteRefusesBuiltInBeat(t *testing.T) {
	m, _ := newTestModel(t)
	m.Library = sequencer.NewDirLibrary(t.TempDir())

	m = send(m, keyPress("L"))
	m = send(m, keyPress("D"))
	if !m.statusErr || m.status != "error: Built-in beats cannot be deleted" {
		t.Fatalf("status = %q (err %v)", m.status, m.statusErr)
	}
}

func TestPlayBeatLoadsAndStarts(t *testing.T) {
	m, e := newTestModel(t)
	m = send(m, keyPress("P"))

	_, playing, tempo := e.State()
	if !playing || tempo != 90 {
		t.Fatalf("playing=%v tempo=%v, want the simple beat playing", playing, tempo)
	}

	m = send(m, keyPress("L"))
	if _, playing, _ := e.State(); playing {
		t.Fatal("plain load should stop playback")
	}
}

type fakeConnection bool

func (c fakeConnection) Connected() bool { return bool(c) }

func TestHeaderShowsMIDIState(t *testing.T) {
	m, _ := newTestModel(t)
	if strings.Contains(m.View(), "midi") {
		t.Fatal("indicator shown without an output")
	}
	m.MIDI = fakeConnection(false)
	if !strings.Contains(m.View(), "no midi") {
		t.Fatal("disconnected output not shown")
	}
	m.MIDI = fakeConnection(true)
	if v := m.View(); !strings.Contains(v, "midi") || strings.Contains(v, "no midi") {
		t.Fatal("connected output not shown")
	}
}
