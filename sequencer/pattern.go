package sequencer

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Pattern bounds and defaults
const (
	MinSteps       = 8
	MaxSteps       = 64
	DefaultSteps   = 16
	MinTempo       = 60.0
	MaxTempo       = 180.0
	DefaultTempo   = 120.0
	DefaultDensity = 0.25
)

// groupSeq hands out drag group ids; never reset, never reused
var groupSeq atomic.Uint64

// NextGroupID allocates a fresh drag group id
func NextGroupID() GroupID {
	return GroupID(groupSeq.Add(1))
}

type row struct {
	steps []bool
	meta  []StepMeta
}

func newRow(n int) *row {
	return &row{steps: make([]bool, n), meta: make([]StepMeta, n)}
}

// resize truncates from the end or pads with inactive, ungrouped steps
func (r *row) resize(n int) {
	if n <= len(r.steps) {
		r.steps = r.steps[:n:n]
		r.meta = r.meta[:n:n]
		return
	}
	r.steps = append(r.steps, make([]bool, n-len(r.steps))...)
	r.meta = append(r.meta, make([]StepMeta, n-len(r.meta))...)
}

// Pattern is the multi-track step grid with its mix and transport settings.
// It is not safe for concurrent use; Engine owns it.
type Pattern struct {
	Name string

	channels []Channel
	voices   []Voice // flattened channel -> voice order
	rows     map[VoiceID]*row
	states   map[string]ChannelState

	stepCount int
	tempo     float64
}

// NewPattern creates an empty pattern for the given channels
func NewPattern(channels []Channel) *Pattern {
	p := &Pattern{
		channels:  append([]Channel(nil), channels...),
		rows:      make(map[VoiceID]*row),
		states:    make(map[string]ChannelState, len(channels)),
		stepCount: DefaultSteps,
		tempo:     DefaultTempo,
	}
	for _, c := range channels {
		p.states[c.ID] = defaultChannelState()
	}
	p.rebuildVoices()
	return p
}

// rebuildVoices flattens channel voices and migrates rows by voice id.
// Rows of voices that disappeared are dropped, new voices get empty rows.
func (p *Pattern) rebuildVoices() {
	p.voices = p.voices[:0]
	rows := make(map[VoiceID]*row, len(p.rows))
	for _, c := range p.channels {
		for _, v := range c.voices {
			p.voices = append(p.voices, v)
			if r, ok := p.rows[v.ID]; ok {
				rows[v.ID] = r
			} else {
				rows[v.ID] = newRow(p.stepCount)
			}
		}
	}
	p.rows = rows
}

// StepCount returns the number of steps per row
func (p *Pattern) StepCount() int { return p.stepCount }

// Tempo returns the BPM
func (p *Pattern) Tempo() float64 { return p.tempo }

// Interval is the sixteenth-note tick period at the current tempo
func (p *Pattern) Interval() time.Duration {
	return SixteenthNote(p.tempo)
}

// SixteenthNote returns the length of a sixteenth note at bpm
func SixteenthNote(bpm float64) time.Duration {
	return time.Duration(float64(time.Minute) / bpm / 4)
}

// VoiceCount returns the number of grid rows
func (p *Pattern) VoiceCount() int { return len(p.voices) }

// Voice returns the voice at a row index
func (p *Pattern) Voice(i int) Voice {
	p.checkVoice(i)
	return p.voices[i]
}

// Voices returns all voices in row order
func (p *Pattern) Voices() []Voice {
	return append([]Voice(nil), p.voices...)
}

// Channels returns the channels in display order
func (p *Pattern) Channels() []Channel {
	return append([]Channel(nil), p.channels...)
}

// Channel looks up a channel by id
func (p *Pattern) Channel(id string) (Channel, bool) {
	for _, c := range p.channels {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}

// ChannelState returns the mix state of a channel
func (p *Pattern) ChannelState(id string) (ChannelState, bool) {
	st, ok := p.states[id]
	return st, ok
}

// ChannelStates returns a copy of every channel's mix state
func (p *Pattern) ChannelStates() map[string]ChannelState {
	out := make(map[string]ChannelState, len(p.states))
	for id, st := range p.states {
		out[id] = st
	}
	return out
}

// Step reports whether a step is active
func (p *Pattern) Step(voice, step int) bool {
	r := p.row(voice)
	p.checkStep(step)
	return r.steps[step]
}

// GroupID returns the drag group of a step (NoGroup for taps)
func (p *Pattern) GroupID(voice, step int) GroupID {
	r := p.row(voice)
	p.checkStep(step)
	return r.meta[step].GroupID
}

// Row returns a copy of a voice's steps
func (p *Pattern) Row(voice int) []bool {
	return append([]bool(nil), p.row(voice).steps...)
}

// Meta returns a copy of a voice's step metadata
func (p *Pattern) Meta(voice int) []StepMeta {
	return append([]StepMeta(nil), p.row(voice).meta...)
}

// Groups computes the note groups of a voice
func (p *Pattern) Groups(voice int) []NoteGroup {
	r := p.row(voice)
	return GroupConsecutiveSteps(r.steps, r.meta)
}

// SetStepCount resizes every row, keeping existing steps in place.
// Out of range values are clamped; the applied count is returned.
func (p *Pattern) SetStepCount(n int) int {
	n = clampInt(n, MinSteps, MaxSteps)
	if n == p.stepCount {
		return n
	}
	for _, r := range p.rows {
		r.resize(n)
	}
	p.stepCount = n
	return n
}

// SetTempo sets the BPM, clamped to the supported range
func (p *Pattern) SetTempo(bpm float64) float64 {
	p.tempo = clampFloat(bpm, MinTempo, MaxTempo)
	return p.tempo
}

// ToggleStep flips a step. A tap always leaves the step ungrouped.
func (p *Pattern) ToggleStep(voice, step int) {
	r := p.row(voice)
	p.checkStep(step)
	r.steps[step] = !r.steps[step]
	r.meta[step] = StepMeta{}
}

// SetSpan activates steps from..to inclusive and tags them with id
func (p *Pattern) SetSpan(voice, from, to int, id GroupID) {
	if from > to {
		from, to = to, from
	}
	r := p.row(voice)
	p.checkStep(from)
	p.checkStep(to)
	for s := from; s <= to; s++ {
		r.steps[s] = true
		r.meta[s] = StepMeta{GroupID: id}
	}
}

// Clear deactivates every step. Tempo, length and mix are kept.
func (p *Pattern) Clear() {
	for _, r := range p.rows {
		clear(r.steps)
		clear(r.meta)
	}
}

// Randomize activates each step with probability density and drops all
// grouping. A nil rng uses the global source.
func (p *Pattern) Randomize(density float64, rng *rand.Rand) {
	density = clampFloat(density, 0, 1)
	roll := rand.Float64
	if rng != nil {
		roll = rng.Float64
	}
	// walk in voice order so a seeded rng is reproducible
	for _, v := range p.voices {
		r := p.rows[v.ID]
		for s := range r.steps {
			r.steps[s] = roll() < density
			r.meta[s] = StepMeta{}
		}
	}
}

// SetChannelMute sets a channel's mute flag
func (p *Pattern) SetChannelMute(id string, muted bool) error {
	return p.updateState(id, func(st *ChannelState) { st.Muted = muted })
}

// SetChannelSolo sets a channel's solo flag
func (p *Pattern) SetChannelSolo(id string, solo bool) error {
	return p.updateState(id, func(st *ChannelState) { st.Solo = solo })
}

// SetChannelVolume sets a channel's volume, clamped to 0-1
func (p *Pattern) SetChannelVolume(id string, volume float64) error {
	return p.updateState(id, func(st *ChannelState) { st.Volume = clampFloat(volume, 0, 1) })
}

// SetChannelExpanded sets whether a channel's rows are shown
func (p *Pattern) SetChannelExpanded(id string, expanded bool) error {
	return p.updateState(id, func(st *ChannelState) { st.Expanded = expanded })
}

// SetChannelOctave moves a pitched channel to another octave. Its voices are
// regenerated; rows follow their voice id so the pattern keeps its shape.
func (p *Pattern) SetChannelOctave(id string, octave int) error {
	for i, c := range p.channels {
		if c.ID != id {
			continue
		}
		if c.Kind != KindSynthesized {
			return fault.New(fmt.Sprintf("channel %s has no octave", id), ftag.With(ftag.InvalidArgument))
		}
		p.channels[i] = c.WithOctave(octave)
		p.rebuildVoices()
		return nil
	}
	return errUnknownChannel(id)
}

func (p *Pattern) updateState(id string, fn func(*ChannelState)) error {
	st, ok := p.states[id]
	if !ok {
		return errUnknownChannel(id)
	}
	fn(&st)
	p.states[id] = st
	return nil
}

func errUnknownChannel(id string) error {
	return fault.New("unknown channel "+id,
		ftag.With(ftag.NotFound),
		fmsg.WithDesc("unknown channel", fmt.Sprintf("There is no channel called %q", id)))
}

func (p *Pattern) row(voice int) *row {
	p.checkVoice(voice)
	return p.rows[p.voices[voice].ID]
}

func (p *Pattern) checkVoice(i int) {
	if i < 0 || i >= len(p.voices) {
		panic(fmt.Sprintf("sequencer: voice index %d out of range [0,%d)", i, len(p.voices)))
	}
}

func (p *Pattern) checkStep(i int) {
	if i < 0 || i >= p.stepCount {
		panic(fmt.Sprintf("sequencer: step index %d out of range [0,%d)", i, p.stepCount))
	}
}
