package midi

import (
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"rhythm-studio/debug"
	"rhythm-studio/sequencer"
)

// Output plays sequencer voices on a MIDI port. Sample voices become short
// note on/off pairs on their channel's MIDI channel; synth voices hold a
// note for the requested duration. Until a port is connected every voice
// reports not ready and the transport skips it.
type Output struct {
	mu       sync.Mutex
	send     func(gomidi.Message) error
	port     drivers.Out
	channels map[string]uint8 // channel id -> MIDI channel 0-15

	held    map[sequencer.VoiceID]heldNote
	gen     uint64
	timbres map[string]bool // channels whose envelope was sent

	afterFunc func(time.Duration, func()) *time.Timer
}

type heldNote struct {
	channel uint8
	key     uint8
	gen     uint64
	timer   *time.Timer
}

// NewOutput creates a disconnected output. channels maps channel ids to
// 1-based MIDI channels; unmapped channels use MIDI channel 1.
func NewOutput(channels map[string]int) *Output {
	o := &Output{
		channels:  make(map[string]uint8, len(channels)),
		held:      make(map[sequencer.VoiceID]heldNote),
		timbres:   make(map[string]bool),
		afterFunc: time.AfterFunc,
	}
	for id, ch := range channels {
		if ch >= 1 && ch <= 16 {
			o.channels[id] = uint8(ch - 1)
		}
	}
	return o
}

// Connect routes output through send, e.g. the result of gomidi.SendTo
func (o *Output) Connect(send func(gomidi.Message) error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send = send
	clear(o.timbres)
}

// Open connects to the output port matching name
func (o *Output) Open(name string) error {
	port, err := FindOutPort(name)
	if err != nil {
		return err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("cannot open midi output", "Could not open "+port.String()))
	}
	o.Connect(send)
	o.mu.Lock()
	o.port = port
	o.mu.Unlock()
	debug.Log("midi", "output connected: %s", port.String())
	return nil
}

// OpenAsync opens the port in the background; voices stay unready until it
// succeeds. Errors go to onErr, which may be nil.
func (o *Output) OpenAsync(name string, onErr func(error)) {
	go func() {
		if err := o.Open(name); err != nil {
			debug.Log("midi", "open %q: %v", name, err)
			if onErr != nil {
				onErr(err)
			}
		}
	}()
}

// Connected reports whether a port is attached
func (o *Output) Connected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.send != nil
}

// Ready implements sequencer.VoiceOutput
func (o *Output) Ready(v sequencer.Voice) bool {
	o.mu.Lock()
	connected := o.send != nil
	o.mu.Unlock()
	if !connected {
		return false
	}
	if v.Kind == sequencer.KindSynthesized {
		_, err := sequencer.NoteNumber(v.Note)
		return err == nil
	}
	return true
}

// PlaySample implements sequencer.VoiceOutput
func (o *Output) PlaySample(v sequencer.Voice, volume float64) {
	vel := velocity(volume)
	if vel == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := o.channels[v.ChannelID]
	o.emit(gomidi.NoteOn(ch, v.Sample, vel))
	o.emit(gomidi.NoteOff(ch, v.Sample))
}

// TriggerSynth implements sequencer.VoiceOutput. A note still held on the
// voice is cut first; the new note is released after d.
func (o *Output) TriggerSynth(v sequencer.Voice, note string, d time.Duration, volume float64) {
	key, err := sequencer.NoteNumber(note)
	if err != nil {
		debug.Log("midi", "voice %s: %v", v.ID, err)
		return
	}
	vel := velocity(volume)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseLocked(v.ID)
	if vel == 0 {
		return
	}

	ch := o.channels[v.ChannelID]
	if !o.timbres[v.ChannelID] {
		env := v.Timbre.Envelope
		o.emit(gomidi.ControlChange(ch, CCAttackTime, envelopeCC(env.Attack)))
		o.emit(gomidi.ControlChange(ch, CCDecayTime, envelopeCC(env.Decay)))
		o.emit(gomidi.ControlChange(ch, CCReleaseTime, envelopeCC(env.Release)))
		o.timbres[v.ChannelID] = true
	}
	o.emit(gomidi.NoteOn(ch, key, vel))

	o.gen++
	gen := o.gen
	id := v.ID
	o.held[id] = heldNote{
		channel: ch,
		key:     key,
		gen:     gen,
		timer:   o.afterFunc(d, func() { o.expire(id, gen) }),
	}
}

// ReleaseSynth implements sequencer.VoiceOutput
func (o *Output) ReleaseSynth(v sequencer.Voice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseLocked(v.ID)
}

// Close releases held notes and closes the port
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id := range o.held {
		o.releaseLocked(id)
	}
	o.send = nil
	if o.port != nil {
		err := o.port.Close()
		o.port = nil
		if err != nil {
			return fault.Wrap(err, fmsg.With("cannot close midi output"))
		}
	}
	return nil
}

// expire is the scheduled release. A stale generation means the note was
// already released or replaced, so the callback does nothing.
func (o *Output) expire(id sequencer.VoiceID, gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n, ok := o.held[id]; ok && n.gen == gen {
		o.releaseLocked(id)
	}
}

func (o *Output) releaseLocked(id sequencer.VoiceID) {
	n, ok := o.held[id]
	if !ok {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	delete(o.held, id)
	o.emit(gomidi.NoteOff(n.channel, n.key))
}

// emit assumes mu is held
func (o *Output) emit(msg gomidi.Message) {
	if o.send == nil {
		return
	}
	if err := o.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}
