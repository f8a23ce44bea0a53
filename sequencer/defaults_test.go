package sequencer

import "testing"

func TestDefaultBeats(t *testing.T) {
	beats := DefaultBeats()
	wantIDs := []string{"simple-beat", "1760860551660", "old-macdonald", "synth-way-hym"}
	if len(beats) != len(wantIDs) {
		t.Fatalf("got %d built-in beats", len(beats))
	}
	for i, id := range wantIDs {
		if beats[i].ID != id {
			t.Errorf("beat %d id = %q, want %q", i, beats[i].ID, id)
		}
	}

	simple := PatternFromSnapshot(DefaultChannels(), beats[0])
	if simple.StepCount() != 30 || simple.Tempo() != 90 {
		t.Fatalf("simple beat: %d steps at %v bpm", simple.StepCount(), simple.Tempo())
	}
	kicks := 0
	for _, on := range simple.Row(kick) {
		if on {
			kicks++
		}
	}
	if kicks != 6 {
		t.Errorf("simple beat has %d kicks, want 6", kicks)
	}
	if st, _ := simple.ChannelState("piano"); !st.Muted {
		t.Error("simple beat should mute the piano")
	}

	song := PatternFromSnapshot(DefaultChannels(), beats[1])
	const g4 = c4 + 7
	g := song.Groups(g4)
	if len(g) == 0 || g[0].Start() != 0 || g[0].Len() != 6 {
		t.Fatalf("melody opens with %+v, want a six-step G4", g)
	}
}

func TestModernBeatDoublesMelody(t *testing.T) {
	p := PatternFromSnapshot(DefaultChannels(), DefaultBeats()[2])
	if p.StepCount() != 50 || p.Name != "Old MacDonald Modern" {
		t.Fatalf("%q: %d steps", p.Name, p.StepCount())
	}

	const g = 7
	var rows [][]bool
	for i, v := range p.Voices() {
		if v.Kind == KindSynthesized && v.ID == makeVoiceID(v.ChannelID, g) {
			rows = append(rows, p.Row(i))
		}
	}
	if len(rows) != 3 {
		t.Fatalf("found %d G rows", len(rows))
	}
	for _, r := range rows[1:] {
		if !equalBools(r, rows[0]) {
			t.Fatal("bass or synth melody differs from the piano")
		}
	}
	for _, id := range []string{"drums", "piano", "bass", "synth"} {
		if st, _ := p.ChannelState(id); st.Muted {
			t.Errorf("%s muted", id)
		}
	}
}

func TestLongBeatIsTruncatedOnLoad(t *testing.T) {
	s := DefaultBeats()[3]
	if s.NumSteps != 92 || len(s.Grid[0]) != 92 {
		t.Fatalf("stored beat has %d steps", s.NumSteps)
	}

	p := PatternFromSnapshot(DefaultChannels(), s)
	if p.StepCount() != MaxSteps || p.Tempo() != 180 {
		t.Fatalf("%d steps at %v bpm", p.StepCount(), p.Tempo())
	}
	checkShape(t, p)

	// stored: tap at 0, drag 1..2
	g := p.Groups(0)
	if len(g) != 2 || g[0].WasDragged || !g[1].WasDragged || !equalInts(g[1].Steps, []int{1, 2}) {
		t.Fatalf("kick groups = %+v", g)
	}

	// a stored id on inactive steps 50..51 is dropped, so 52..53 stay taps
	if p.GroupID(33, 52) != NoGroup || p.GroupID(33, 53) != NoGroup {
		t.Error("group id leaked onto taps")
	}
	// the 54..60 id only covers its active part
	if id := p.GroupID(33, 56); id == NoGroup || p.GroupID(33, 60) != id || p.GroupID(33, 61) != NoGroup {
		t.Errorf("row 33 ids: 56=%d 60=%d 61=%d", id, p.GroupID(33, 60), p.GroupID(33, 61))
	}

	// every load allocates fresh ids
	a := PatternFromSnapshot(DefaultChannels(), s)
	if a.GroupID(0, 1) == p.GroupID(0, 1) {
		t.Error("reloading reused group ids")
	}
}

func TestIsDefaultBeat(t *testing.T) {
	for _, id := range []string{"simple-beat", "1760860551660", "old-macdonald", "synth-way-hym"} {
		if !IsDefaultBeat(id) {
			t.Errorf("%s not recognised as built-in", id)
		}
	}
	if IsDefaultBeat("1700000000000") {
		t.Error("saved id reported as built-in")
	}
}
