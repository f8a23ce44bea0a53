package sequencer

import (
	"time"

	"rhythm-studio/debug"
)

// VoiceOutput is the sound layer the transport triggers. Implementations
// must not block; Ready reports whether a voice's sound is loaded.
type VoiceOutput interface {
	Ready(v Voice) bool
	PlaySample(v Voice, volume float64)
	TriggerSynth(v Voice, note string, d time.Duration, volume float64)
	ReleaseSynth(v Voice)
}

type soundingNote struct {
	voice Voice
	until time.Time
}

// Transport is the playback clock. While running it fires once per
// sixteenth note; each firing advances the playhead and triggers voices.
// It is driven by its owner (see Engine): select on C, then call Fire.
type Transport struct {
	pattern *Pattern
	out     VoiceOutput
	now     func() time.Time

	running  bool
	playhead int
	timer    *time.Timer
	armed    time.Duration // period the timer was last set to
	sounding map[VoiceID]soundingNote

	// OnStep is called after every tick with the new playhead
	OnStep func(step int)
}

// NewTransport creates a stopped transport over p
func NewTransport(p *Pattern, out VoiceOutput) *Transport {
	return &Transport{
		pattern:  p,
		out:      out,
		now:      time.Now,
		playhead: -1,
		sounding: make(map[VoiceID]soundingNote),
	}
}

// SetPattern swaps the pattern being played. The transport is stopped first.
func (t *Transport) SetPattern(p *Pattern) {
	t.Stop()
	t.pattern = p
}

// Running reports whether the clock is running
func (t *Transport) Running() bool { return t.running }

// Playhead returns the last triggered step, -1 when stopped
func (t *Transport) Playhead() int { return t.playhead }

// Period is the current tick interval, read fresh from the pattern tempo
func (t *Transport) Period() time.Duration { return t.pattern.Interval() }

// C is the timer channel; nil while stopped so a select on it blocks.
func (t *Transport) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C
}

// Start begins playback from the top. The first step fires one period later.
func (t *Transport) Start() bool {
	if t.running {
		return false
	}
	t.running = true
	t.playhead = -1
	t.arm()
	debug.Log("tick", "start tempo=%.1f steps=%d period=%s", t.pattern.Tempo(), t.pattern.StepCount(), t.Period())
	return true
}

// Stop cancels the timer, resets the playhead and releases sustained notes
func (t *Transport) Stop() bool {
	if !t.running {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.armed = 0
	t.running = false
	t.playhead = -1

	now := t.now()
	for id, n := range t.sounding {
		if now.Before(n.until) && t.out != nil {
			t.out.ReleaseSynth(n.voice)
		}
		delete(t.sounding, id)
	}
	debug.Log("tick", "stop")
	return true
}

// Fire handles one timer firing: tick, then re-arm with the current tempo
func (t *Transport) Fire() {
	if !t.running {
		return
	}
	t.Tick()
	t.arm()
}

// arm sets the timer to one period at the current tempo
func (t *Transport) arm() {
	t.armed = t.Period()
	if t.timer == nil {
		t.timer = time.NewTimer(t.armed)
		return
	}
	t.timer.Reset(t.armed)
}

// Tick advances the playhead one step and triggers every audible voice.
// It works without the timer, which keeps playback testable.
func (t *Transport) Tick() int {
	p := t.pattern
	next := (t.playhead + 1) % p.stepCount
	audible := AudibleChannels(p.states)
	sixteenth := p.Interval()
	now := t.now()

	for i, v := range p.voices {
		if !audible[v.ChannelID] {
			continue
		}
		volume := p.states[v.ChannelID].Volume

		switch v.Kind {
		case KindSample:
			if !p.rows[v.ID].steps[next] || !t.ready(v) {
				continue
			}
			debug.Log("trigger", "step=%d sample %s vol=%.2f", next, v.ID, volume)
			t.out.PlaySample(v, volume)

		case KindSynthesized:
			g, ok := groupStartingAt(p.Groups(i), next)
			if !ok || !t.ready(v) {
				continue
			}
			// one note per voice: the new trigger cuts the old one
			if n, ok := t.sounding[v.ID]; ok && now.Before(n.until) {
				t.out.ReleaseSynth(n.voice)
			}
			d := sixteenth * time.Duration(g.Len())
			debug.Log("trigger", "step=%d synth %s %s dur=%s vol=%.2f", next, v.ID, v.Note, d, volume)
			t.out.TriggerSynth(v, v.Note, d, volume)
			t.sounding[v.ID] = soundingNote{voice: v, until: now.Add(d)}
		}
	}

	t.playhead = next
	debug.LogEvery(16, "tick", "playhead=%d", next)
	if t.OnStep != nil {
		t.OnStep(next)
	}
	return next
}

// ready drops the trigger for this tick if the voice isn't loaded yet
func (t *Transport) ready(v Voice) bool {
	if t.out == nil || !t.out.Ready(v) {
		debug.Log("drop", "voice %s not ready", v.ID)
		return false
	}
	return true
}
