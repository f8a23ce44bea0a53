package sequencer

import (
	"math/rand/v2"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestNewPattern(t *testing.T) {
	p := NewPattern(DefaultChannels())
	if p.VoiceCount() != 48 {
		t.Fatalf("VoiceCount = %d, want 48", p.VoiceCount())
	}
	if p.StepCount() != DefaultSteps || p.Tempo() != DefaultTempo {
		t.Fatalf("steps=%d tempo=%v", p.StepCount(), p.Tempo())
	}
	for v := 0; v < p.VoiceCount(); v++ {
		for s := 0; s < p.StepCount(); s++ {
			if p.Step(v, s) || p.GroupID(v, s) != NoGroup {
				t.Fatalf("voice %d step %d not empty", v, s)
			}
		}
	}
	st, ok := p.ChannelState("bass")
	if !ok || st.Muted || st.Solo || st.Volume != DefaultVolume || !st.Expanded {
		t.Fatalf("bass state = %+v", st)
	}
}

func checkShape(t *testing.T, p *Pattern) {
	t.Helper()
	for v := 0; v < p.VoiceCount(); v++ {
		if len(p.Row(v)) != p.StepCount() || len(p.Meta(v)) != p.StepCount() {
			t.Fatalf("voice %d: %d steps, %d meta, step count %d", v, len(p.Row(v)), len(p.Meta(v)), p.StepCount())
		}
	}
}

func TestSetStepCountKeepsPrefix(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.ToggleStep(kick, 0)
	p.ToggleStep(kick, 7)
	p.ToggleStep(kick, 15)
	id := NextGroupID()
	p.SetSpan(c4, 2, 5, id)

	for _, n := range []int{8, 12, 64, 9, 16} {
		p.SetStepCount(n)
		checkShape(t, p)
	}

	want := map[int]bool{0: true, 7: true}
	for s := 0; s < 16; s++ {
		if p.Step(kick, s) != want[s] {
			t.Errorf("kick step %d = %v, want %v", s, p.Step(kick, s), want[s])
		}
	}
	for s := 2; s <= 5; s++ {
		if !p.Step(c4, s) || p.GroupID(c4, s) != id {
			t.Errorf("piano step %d lost its group", s)
		}
	}
	for s := 8; s < 16; s++ {
		if p.GroupID(kick, s) != NoGroup {
			t.Errorf("padded step %d has a group", s)
		}
	}
}

func TestSetStepCountClamps(t *testing.T) {
	tests := []struct{ in, want int }{
		{3, MinSteps},
		{8, 8},
		{33, 33},
		{64, 64},
		{1000, MaxSteps},
	}
	for _, tt := range tests {
		p := NewPattern(DefaultChannels())
		if got := p.SetStepCount(tt.in); got != tt.want || p.StepCount() != tt.want {
			t.Errorf("SetStepCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
		checkShape(t, p)
	}
}

func TestSetTempoClamps(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{10, MinTempo},
		{60, 60},
		{97.5, 97.5},
		{500, MaxTempo},
	}
	for _, tt := range tests {
		p := NewPattern(DefaultChannels())
		if got := p.SetTempo(tt.in); got != tt.want {
			t.Errorf("SetTempo(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToggleStepClearsGroup(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.SetSpan(c4, 0, 3, NextGroupID())

	p.ToggleStep(c4, 2) // off
	if p.Step(c4, 2) || p.GroupID(c4, 2) != NoGroup {
		t.Fatal("re-tapped step still active or grouped")
	}
	p.ToggleStep(c4, 2) // on again, as a tap
	if !p.Step(c4, 2) || p.GroupID(c4, 2) != NoGroup {
		t.Fatal("tap should leave an ungrouped active step")
	}
}

func TestRetapSplitsDraggedGroup(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.SetSpan(c4, 2, 8, NextGroupID())
	p.ToggleStep(c4, 5)

	groups := p.Groups(c4)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}
	want := [][]int{{2, 3, 4}, {6, 7, 8}}
	for i, g := range groups {
		if !g.WasDragged || !equalInts(g.Steps, want[i]) {
			t.Errorf("group %d = %+v, want dragged %v", i, g, want[i])
		}
	}
}

func TestClearKeepsSettings(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.SetTempo(140)
	p.SetStepCount(24)
	p.SetChannelMute("drums", true)
	p.ToggleStep(kick, 3)
	p.SetSpan(c4, 0, 4, NextGroupID())

	p.Clear()

	for v := 0; v < p.VoiceCount(); v++ {
		for s := 0; s < p.StepCount(); s++ {
			if p.Step(v, s) || p.GroupID(v, s) != NoGroup {
				t.Fatalf("voice %d step %d survived clear", v, s)
			}
		}
	}
	if st, _ := p.ChannelState("drums"); p.Tempo() != 140 || p.StepCount() != 24 || !st.Muted {
		t.Fatal("clear changed tempo, length or mix")
	}
}

func TestRandomize(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.SetSpan(c4, 0, 4, NextGroupID())

	p.Randomize(1, nil)
	for v := 0; v < p.VoiceCount(); v++ {
		for s := 0; s < p.StepCount(); s++ {
			if !p.Step(v, s) || p.GroupID(v, s) != NoGroup {
				t.Fatalf("density 1: voice %d step %d = %v group %d", v, s, p.Step(v, s), p.GroupID(v, s))
			}
		}
	}

	p.Randomize(0, nil)
	for v := 0; v < p.VoiceCount(); v++ {
		for s := 0; s < p.StepCount(); s++ {
			if p.Step(v, s) {
				t.Fatalf("density 0: voice %d step %d active", v, s)
			}
		}
	}
}

func TestRandomizeSeededIsReproducible(t *testing.T) {
	a := NewPattern(DefaultChannels())
	b := NewPattern(DefaultChannels())
	a.Randomize(DefaultDensity, rand.New(rand.NewPCG(1, 2)))
	b.Randomize(DefaultDensity, rand.New(rand.NewPCG(1, 2)))

	active := 0
	for v := 0; v < a.VoiceCount(); v++ {
		for s := 0; s < a.StepCount(); s++ {
			if a.Step(v, s) != b.Step(v, s) {
				t.Fatalf("voice %d step %d differs between equal seeds", v, s)
			}
			if a.Step(v, s) {
				active++
			}
		}
	}
	// 768 cells at 0.25: far outside these bounds only if density is ignored
	if active < 100 || active > 300 {
		t.Fatalf("%d active cells, want roughly 192", active)
	}
}

func TestOctaveChangeMigratesRowsByVoice(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.ToggleStep(c4, 3)
	p.SetSpan(e4, 4, 7, NextGroupID())
	p.ToggleStep(kick, 1)

	if err := p.SetChannelOctave("piano", 5); err != nil {
		t.Fatal(err)
	}

	if v := p.Voice(c4); v.Note != "C5" {
		t.Fatalf("row %d plays %s, want C5", c4, v.Note)
	}
	if !p.Step(c4, 3) {
		t.Error("C row lost its step")
	}
	if g := p.Groups(e4); len(g) != 1 || !g[0].WasDragged || g[0].Len() != 4 {
		t.Errorf("E row groups = %+v", g)
	}
	if !p.Step(kick, 1) {
		t.Error("kick row disturbed")
	}
	checkShape(t, p)

	if ch, _ := p.Channel("piano"); ch.Octave != 5 {
		t.Fatalf("piano octave = %d", ch.Octave)
	}
}

func TestOctaveClamped(t *testing.T) {
	p := NewPattern(DefaultChannels())
	if err := p.SetChannelOctave("bass", 99); err != nil {
		t.Fatal(err)
	}
	if ch, _ := p.Channel("bass"); ch.Octave != MaxOctave {
		t.Fatalf("octave = %d, want %d", ch.Octave, MaxOctave)
	}
}

func TestChannelErrors(t *testing.T) {
	p := NewPattern(DefaultChannels())

	err := p.SetChannelOctave("drums", 3)
	if err == nil || ftag.Get(err) != ftag.InvalidArgument {
		t.Errorf("octave on sample channel: err = %v", err)
	}

	for _, fn := range []func() error{
		func() error { return p.SetChannelMute("nope", true) },
		func() error { return p.SetChannelSolo("nope", true) },
		func() error { return p.SetChannelVolume("nope", 1) },
		func() error { return p.SetChannelExpanded("nope", false) },
		func() error { return p.SetChannelOctave("nope", 4) },
	} {
		if err := fn(); err == nil || ftag.Get(err) != ftag.NotFound {
			t.Errorf("unknown channel: err = %v, want NotFound", err)
		}
	}
}

func TestSetChannelVolumeClamps(t *testing.T) {
	p := NewPattern(DefaultChannels())
	p.SetChannelVolume("drums", 1.5)
	p.SetChannelVolume("bass", -1)
	if st, _ := p.ChannelState("drums"); st.Volume != 1 {
		t.Errorf("drums volume = %v", st.Volume)
	}
	if st, _ := p.ChannelState("bass"); st.Volume != 0 {
		t.Errorf("bass volume = %v", st.Volume)
	}
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	p := NewPattern(DefaultChannels())
	tests := []struct {
		name string
		fn   func()
	}{
		{"voice too high", func() { p.Step(48, 0) }},
		{"voice negative", func() { p.ToggleStep(-1, 0) }},
		{"step too high", func() { p.Step(0, 16) }},
		{"step negative", func() { p.GroupID(0, -1) }},
		{"span past end", func() { p.SetSpan(0, 10, 16, NextGroupID()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestNextGroupIDIncreases(t *testing.T) {
	a := NextGroupID()
	b := NextGroupID()
	if a == NoGroup || b <= a {
		t.Fatalf("ids %d then %d", a, b)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
