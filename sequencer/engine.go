package sequencer

import (
	"context"
	"math/rand/v2"

	"rhythm-studio/debug"
)

// Engine owns a pattern, its drag composer and its transport, and
// serializes all access to them on one goroutine (Run). Timer firings are
// handled in the same loop, so every tick reads a consistent pattern.
type Engine struct {
	pattern   *Pattern
	composer  *Composer
	transport *Transport
	channels  []Channel

	cmds chan func()

	// UpdateChan gets a non-blocking send after every step and edit
	UpdateChan chan struct{}
}

// NewEngine creates an engine over p. Call Run before any other method.
func NewEngine(p *Pattern, out VoiceOutput) *Engine {
	e := &Engine{
		pattern:    p,
		composer:   NewComposer(p),
		transport:  NewTransport(p, out),
		channels:   p.Channels(),
		cmds:       make(chan func()),
		UpdateChan: make(chan struct{}, 1),
	}
	e.transport.OnStep = func(int) { e.notify() }
	return e
}

// Run processes commands and timer firings until ctx is done.
// Playback is stopped on the way out.
func (e *Engine) Run(ctx context.Context) {
	debug.Log("engine", "run loop started")
	defer func() {
		e.transport.Stop()
		debug.Log("engine", "run loop exited")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-e.cmds:
			fn()
		case <-e.transport.C():
			e.transport.Fire()
		}
	}
}

// do runs fn on the engine goroutine and waits for it
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	e.cmds <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// edit runs a mutation and tells listeners
func (e *Engine) edit(fn func()) {
	e.do(fn)
	e.notify()
}

func (e *Engine) notify() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

// Read gives fn read access to the pattern and transport on the engine
// goroutine. fn must not keep references past its return.
func (e *Engine) Read(fn func(p *Pattern, t *Transport)) {
	e.do(func() { fn(e.pattern, e.transport) })
}

// Play starts the transport
func (e *Engine) Play() { e.edit(func() { e.transport.Start() }) }

// Stop stops the transport
func (e *Engine) Stop() { e.edit(func() { e.transport.Stop() }) }

// TogglePlay starts or stops the transport and reports whether it now runs
func (e *Engine) TogglePlay() bool {
	var running bool
	e.edit(func() {
		if e.transport.Running() {
			e.transport.Stop()
		} else {
			e.transport.Start()
		}
		running = e.transport.Running()
	})
	return running
}

// State returns playhead, running and tempo
func (e *Engine) State() (step int, playing bool, tempo float64) {
	e.do(func() {
		step, playing, tempo = e.transport.Playhead(), e.transport.Running(), e.pattern.Tempo()
	})
	return
}

// SetTempo changes the BPM; a running transport uses it from the next period
func (e *Engine) SetTempo(bpm float64) (applied float64) {
	e.edit(func() { applied = e.pattern.SetTempo(bpm) })
	return
}

// SetStepCount resizes the pattern
func (e *Engine) SetStepCount(n int) (applied int) {
	e.edit(func() { applied = e.pattern.SetStepCount(n) })
	return
}

// PressStart begins a gesture on a cell
func (e *Engine) PressStart(voice, step int) {
	e.edit(func() { e.composer.PressStart(voice, step) })
}

// PressMove extends the current gesture
func (e *Engine) PressMove(voice, step int) (changed bool) {
	e.edit(func() { changed = e.composer.PressMove(voice, step) })
	return
}

// PressEnd finishes the current gesture
func (e *Engine) PressEnd() {
	e.do(func() { e.composer.PressEnd() })
}

// ToggleStep flips one step
func (e *Engine) ToggleStep(voice, step int) {
	e.edit(func() { e.pattern.ToggleStep(voice, step) })
}

// Clear empties the grid
func (e *Engine) Clear() {
	e.edit(func() { e.pattern.Clear() })
}

// Randomize fills the grid at density
func (e *Engine) Randomize(density float64, rng *rand.Rand) {
	e.edit(func() { e.pattern.Randomize(density, rng) })
}

// SetMute sets a channel's mute flag
func (e *Engine) SetMute(id string, muted bool) (err error) {
	e.edit(func() { err = e.pattern.SetChannelMute(id, muted) })
	return
}

// SetSolo sets a channel's solo flag
func (e *Engine) SetSolo(id string, solo bool) (err error) {
	e.edit(func() { err = e.pattern.SetChannelSolo(id, solo) })
	return
}

// SetVolume sets a channel's volume
func (e *Engine) SetVolume(id string, volume float64) (err error) {
	e.edit(func() { err = e.pattern.SetChannelVolume(id, volume) })
	return
}

// SetOctave moves a pitched channel to another octave
func (e *Engine) SetOctave(id string, octave int) (err error) {
	e.edit(func() { err = e.pattern.SetChannelOctave(id, octave) })
	return
}

// SetExpanded shows or hides a channel's rows
func (e *Engine) SetExpanded(id string, expanded bool) (err error) {
	e.edit(func() { err = e.pattern.SetChannelExpanded(id, expanded) })
	return
}

// Snapshot captures the current pattern under name
func (e *Engine) Snapshot(name string) (s Snapshot) {
	e.do(func() {
		e.pattern.Name = name
		s = e.pattern.Snapshot()
	})
	return
}

// Load replaces the pattern with a snapshot. Playback stops.
func (e *Engine) Load(s Snapshot) {
	e.edit(func() {
		p := PatternFromSnapshot(e.channels, s)
		e.transport.SetPattern(p)
		e.composer.SetPattern(p)
		e.pattern = p
		debug.Log("engine", "loaded %q (%d steps, %.0f bpm)", s.Name, p.StepCount(), p.Tempo())
	})
}
