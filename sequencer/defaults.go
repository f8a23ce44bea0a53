package sequencer

// DefaultBeats returns the built-in demo beats. They are listed next to
// saved beats but cannot be deleted.
func DefaultBeats() []Snapshot {
	return []Snapshot{simpleDrumLoop(), oldMacDonaldSimple(), oldMacDonaldModern(), warHymSynth()}
}

// IsDefaultBeat reports whether id belongs to a built-in beat
func IsDefaultBeat(id string) bool {
	for _, b := range DefaultBeats() {
		if b.ID == id {
			return true
		}
	}
	return false
}

type beatBuilder struct {
	p     *Pattern
	index map[VoiceID]int
}

func newBeatBuilder(steps int, tempo float64) *beatBuilder {
	p := NewPattern(DefaultChannels())
	p.SetStepCount(steps)
	p.SetTempo(tempo)
	b := &beatBuilder{p: p, index: make(map[VoiceID]int)}
	for i, v := range p.voices {
		b.index[v.ID] = i
	}
	return b
}

func (b *beatBuilder) hits(channel string, slot int, steps ...int) {
	v := b.index[makeVoiceID(channel, slot)]
	for _, s := range steps {
		b.p.rows[b.p.voices[v].ID].steps[s] = true
	}
}

func (b *beatBuilder) run(channel string, slot, from, to int) {
	for s := from; s <= to; s++ {
		b.hits(channel, slot, s)
	}
}

func (b *beatBuilder) mix(channel string, muted bool, volume float64) {
	b.p.states[channel] = ChannelState{Muted: muted, Volume: volume}
}

func (b *beatBuilder) snapshot(id, name, color string) Snapshot {
	b.p.Name = name
	s := b.p.Snapshot()
	s.ID = id
	s.Author = "Rhythm Studio"
	s.Color = color
	return s
}

func simpleDrumLoop() Snapshot {
	b := newBeatBuilder(30, 90)
	b.hits("drums", 0, 0, 7, 10, 16, 23, 26) // kick
	b.hits("drums", 1, 4, 12, 20, 28)        // snare
	b.run("drums", 2, 0, 29)                 // closed hat

	b.mix("percussion", false, 0.7)
	b.mix("piano", true, 0.6)
	b.mix("bass", false, 0.9)
	b.mix("synth", true, 0.5)
	b.mix("fx", true, 0.4)
	b.p.states["drums"] = ChannelState{Volume: 1.0, Expanded: true}
	return b.snapshot("simple-beat", "Simple Drum Loop", "#00d4ff")
}

func oldMacDonaldSimple() Snapshot {
	const (
		d4 = 2
		e4 = 4
		g4 = 7
		a4 = 9
		b4 = 11
	)
	b := newBeatBuilder(50, 120)
	b.run("piano", g4, 0, 5)
	b.run("piano", d4, 6, 7)
	b.run("piano", e4, 8, 11)
	b.run("piano", d4, 12, 15)
	b.run("piano", b4, 16, 19)
	b.run("piano", a4, 20, 23)
	b.run("piano", g4, 24, 29)
	b.run("piano", d4, 30, 31)
	b.run("piano", g4, 32, 37)
	b.run("piano", d4, 38, 39)
	b.run("piano", e4, 40, 43)
	b.run("piano", d4, 44, 47)

	b.mix("drums", true, 0.7)
	b.mix("percussion", true, 0.8)
	b.mix("bass", true, 0.7)
	b.mix("synth", true, 0.5)
	b.mix("fx", true, 0.6)
	b.p.states["piano"] = ChannelState{Volume: 0.9, Expanded: true}
	s := b.snapshot("1760860551660", "Old MacDonald Simple", "#fab1a0")
	s.Timestamp = 1760860551660
	return s
}

func oldMacDonaldModern() Snapshot {
	const (
		d = 2
		e = 4
		g = 7
		a = 9
		b = 11
	)
	bb := newBeatBuilder(50, 120)
	bb.hits("drums", 0, 0, 4, 8, 12, 16, 20, 24, 28, 32, 36, 40, 44, 48) // kick
	bb.hits("drums", 1, 4, 12, 20, 28, 36, 44)                           // snare
	bb.run("drums", 2, 0, 49)                                            // closed hat

	// melody doubled on piano, bass and synth
	for _, ch := range []string{"piano", "bass", "synth"} {
		bb.hits(ch, d, 4, 8, 18, 24, 28)
		bb.hits(ch, e, 5, 6, 25, 26)
		bb.hits(ch, g, 0, 1, 2, 16, 20, 21, 22, 36)
		bb.hits(ch, a, 13, 14, 33, 34)
		bb.hits(ch, b, 10, 11, 30, 31)
	}

	bb.mix("drums", false, 0.7)
	bb.mix("percussion", true, 0.8)
	bb.mix("bass", false, 0.7)
	bb.mix("synth", false, 0.5)
	bb.mix("fx", true, 0.6)
	bb.p.states["piano"] = ChannelState{Volume: 0.9, Expanded: true}
	return bb.snapshot("old-macdonald", "Old MacDonald Modern", "#5e548e")
}

// rawBeat writes a snapshot row by row as the library stores it. It can
// hold more steps than a pattern; hydration truncates them.
type rawBeat struct {
	s Snapshot
}

func newRawBeat(steps int, tempo float64) *rawBeat {
	voices := NewPattern(DefaultChannels()).VoiceCount()
	b := &rawBeat{s: Snapshot{
		Tempo:        tempo,
		NumSteps:     steps,
		Grid:         make([][]bool, voices),
		StepMetadata: make([][]SnapshotStep, voices),
	}}
	for i := range voices {
		b.s.Grid[i] = make([]bool, steps)
		b.s.StepMetadata[i] = make([]SnapshotStep, steps)
	}
	return b
}

// hits activates inclusive from,to pairs on a row
func (b *rawBeat) hits(row int, runs ...[2]int) {
	for _, r := range runs {
		for s := r[0]; s <= r[1]; s++ {
			b.s.Grid[row][s] = true
		}
	}
}

// group stores a drag group id over from..to
func (b *rawBeat) group(row int, id uint64, from, to int) {
	for s := from; s <= to; s++ {
		gid := id
		b.s.StepMetadata[row][s] = SnapshotStep{GroupID: &gid}
	}
}

// warHymSynth is stored longer than MaxSteps and with some group ids on
// inactive steps, so loading it always goes through hydration cleanup.
func warHymSynth() Snapshot {
	b := newRawBeat(92, 180)

	b.hits(0, [2]int{0, 2})
	b.group(0, 4, 1, 2)

	b.hits(33, [2]int{30, 37}, [2]int{42, 43}, [2]int{52, 53}, [2]int{56, 62})
	b.group(33, 24, 30, 31)
	b.group(33, 25, 32, 32)
	b.group(33, 26, 34, 35)
	b.group(33, 27, 36, 37)
	b.group(33, 50, 42, 43)
	b.group(33, 55, 50, 51)
	b.group(33, 64, 54, 60)

	b.hits(34, [2]int{14, 19}, [2]int{22, 23})
	b.group(34, 15, 14, 15)
	b.group(34, 16, 16, 16)
	b.group(34, 17, 18, 19)
	b.group(34, 19, 22, 23)

	b.hits(36, [2]int{38, 41}, [2]int{44, 45})
	b.group(36, 49, 38, 41)
	b.group(36, 51, 44, 45)

	b.hits(38, [2]int{0, 7}, [2]int{11, 12}, [2]int{26, 29}, [2]int{46, 51})
	b.group(38, 7, 2, 2)
	b.group(38, 8, 4, 5)
	b.group(38, 9, 6, 7)
	b.group(38, 13, 11, 12)
	b.group(38, 23, 25, 28)
	b.group(38, 52, 45, 46)
	b.group(38, 53, 47, 47)
	b.group(38, 54, 49, 50)

	b.hits(42, [2]int{8, 11}, [2]int{13, 14}, [2]int{20, 21}, [2]int{24, 25})
	b.group(42, 12, 8, 11)
	b.group(42, 14, 13, 14)
	b.group(42, 18, 20, 21)
	b.group(42, 20, 24, 25)

	s := b.s
	s.ID = "synth-way-hym"
	s.Name = "War HYM Synth"
	s.Author = "Rhythm Studio"
	s.Color = "#500000"
	s.Timestamp = 1760864241532
	s.ChannelStates = map[string]SnapshotChannel{
		"drums":      {Muted: true, Volume: 0.7},
		"percussion": {Muted: true, Volume: 0.8},
		"piano":      {Volume: 0.9, Expanded: true},
		"bass":       {Volume: 0.7},
		"synth":      {Volume: 0.5, Expanded: true},
		"fx":         {Muted: true, Volume: 0.6},
	}
	s.OctaveSettings = map[string]int{"piano": 3}
	return s
}
