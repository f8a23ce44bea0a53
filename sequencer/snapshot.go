package sequencer

// Snapshot is the persisted form of a pattern. Field names follow the
// storage format shared with the beat library.
type Snapshot struct {
	ID             string                     `json:"id,omitempty"`
	Name           string                     `json:"name"`
	Author         string                     `json:"author,omitempty"`
	Color          string                     `json:"color,omitempty"`
	Tempo          float64                    `json:"tempo"`
	NumSteps       int                        `json:"numSteps"`
	Timestamp      int64                      `json:"timestamp,omitempty"` // unix ms
	Grid           [][]bool                   `json:"grid"`
	StepMetadata   [][]SnapshotStep           `json:"stepMetadata"`
	ChannelStates  map[string]SnapshotChannel `json:"channelStates"`
	OctaveSettings map[string]int             `json:"octaveSettings,omitempty"`
}

// SnapshotStep is one step's metadata; GroupID is null for taps
type SnapshotStep struct {
	GroupID *uint64 `json:"groupId"`
}

// SnapshotChannel is a channel's persisted mix state
type SnapshotChannel struct {
	Muted    bool    `json:"muted"`
	Solo     bool    `json:"solo"`
	Volume   float64 `json:"volume"`
	Expanded bool    `json:"expanded"`
}

// Snapshot captures the pattern. Rows are written in voice index order.
func (p *Pattern) Snapshot() Snapshot {
	s := Snapshot{
		Name:           p.Name,
		Tempo:          p.tempo,
		NumSteps:       p.stepCount,
		Grid:           make([][]bool, len(p.voices)),
		StepMetadata:   make([][]SnapshotStep, len(p.voices)),
		ChannelStates:  make(map[string]SnapshotChannel, len(p.states)),
		OctaveSettings: make(map[string]int),
	}
	for i, v := range p.voices {
		r := p.rows[v.ID]
		s.Grid[i] = append([]bool(nil), r.steps...)
		meta := make([]SnapshotStep, len(r.meta))
		for j, m := range r.meta {
			if m.GroupID != NoGroup {
				id := uint64(m.GroupID)
				meta[j].GroupID = &id
			}
		}
		s.StepMetadata[i] = meta
	}
	for id, st := range p.states {
		s.ChannelStates[id] = SnapshotChannel{
			Muted:    st.Muted,
			Solo:     st.Solo,
			Volume:   st.Volume,
			Expanded: st.Expanded,
		}
	}
	for _, c := range p.channels {
		if c.Kind == KindSynthesized {
			s.OctaveSettings[c.ID] = c.Octave
		}
	}
	return s
}

// PatternFromSnapshot hydrates a pattern over channels. Octaves are applied
// before rows so rows land on the right voices; rows are matched by index,
// padded or truncated to the step count. Stored group ids are remapped to
// fresh ids so they can never collide with ids handed out by later drags,
// and ids on inactive steps are dropped.
func PatternFromSnapshot(channels []Channel, s Snapshot) *Pattern {
	chans := append([]Channel(nil), channels...)
	for i, c := range chans {
		if oct, ok := s.OctaveSettings[c.ID]; ok {
			chans[i] = c.WithOctave(oct)
		}
	}
	p := NewPattern(chans)
	p.Name = s.Name
	if s.NumSteps > 0 {
		p.SetStepCount(s.NumSteps)
	}
	if s.Tempo > 0 {
		p.SetTempo(s.Tempo)
	}

	for id, cs := range s.ChannelStates {
		if _, ok := p.states[id]; !ok {
			continue // channel no longer exists
		}
		p.states[id] = ChannelState{
			Muted:    cs.Muted,
			Solo:     cs.Solo,
			Volume:   clampFloat(cs.Volume, 0, 1),
			Expanded: cs.Expanded,
		}
	}

	remap := make(map[uint64]GroupID)
	for i, v := range p.voices {
		if i >= len(s.Grid) {
			break
		}
		r := p.rows[v.ID]
		src := s.Grid[i]
		var meta []SnapshotStep
		if i < len(s.StepMetadata) {
			meta = s.StepMetadata[i]
		}
		for step := 0; step < p.stepCount && step < len(src); step++ {
			r.steps[step] = src[step]
			if !src[step] || step >= len(meta) || meta[step].GroupID == nil {
				continue
			}
			old := *meta[step].GroupID
			id, ok := remap[old]
			if !ok {
				id = NextGroupID()
				remap[old] = id
			}
			r.meta[step] = StepMeta{GroupID: id}
		}
	}
	return p
}
