package sequencer

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelKind identifies how a channel's voices make sound
type ChannelKind string

const (
	KindSample      ChannelKind = "sample"
	KindSynthesized ChannelKind = "synthesized"
)

// Octave bounds for pitched channels
const (
	MinOctave = 1
	MaxOctave = 7
)

// Oscillator is the waveform of a synthesized channel
type Oscillator string

const (
	OscSine     Oscillator = "sine"
	OscTriangle Oscillator = "triangle"
	OscSquare   Oscillator = "square"
	OscSawtooth Oscillator = "sawtooth"
)

// Envelope is an ADSR envelope. Times in seconds, sustain is a 0-1 level.
type Envelope struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// Timbre describes the synth voice for a pitched channel
type Timbre struct {
	Oscillator Oscillator `json:"oscillator"`
	Envelope   Envelope   `json:"envelope"`
}

// VoiceID identifies a voice across octave changes: channel id plus slot.
type VoiceID string

func makeVoiceID(channelID string, slot int) VoiceID {
	return VoiceID(channelID + "/" + strconv.Itoa(slot))
}

// Voice is one grid row: a single sample or a single pitch.
type Voice struct {
	ID        VoiceID
	ChannelID string
	Kind      ChannelKind
	Name      string

	// sample voices
	Sample uint8 // GM drum key used as the sample reference

	// synthesized voices
	Note   string // e.g. "C4", "F#2"
	Timbre Timbre
}

// Sample is one entry of a sample channel's kit
type Sample struct {
	Name string
	Key  uint8
}

// Channel is a named instrument bus
type Channel struct {
	ID     string
	Name   string
	Color  string // hex, "#ff6b6b"
	Kind   ChannelKind
	Octave int // synthesized only
	Timbre Timbre

	samples []Sample
	voices  []Voice
}

// chromatic scale, one voice per semitone
var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NewSampleChannel builds a sample channel with one voice per sample
func NewSampleChannel(id, name, color string, samples []Sample) Channel {
	c := Channel{
		ID:      id,
		Name:    name,
		Color:   color,
		Kind:    KindSample,
		samples: append([]Sample(nil), samples...),
	}
	for i, s := range samples {
		c.voices = append(c.voices, Voice{
			ID:        makeVoiceID(id, i),
			ChannelID: id,
			Kind:      KindSample,
			Name:      s.Name,
			Sample:    s.Key,
		})
	}
	return c
}

// NewSynthChannel builds a pitched channel with twelve chromatic voices
func NewSynthChannel(id, name, color string, octave int, timbre Timbre) Channel {
	c := Channel{
		ID:     id,
		Name:   name,
		Color:  color,
		Kind:   KindSynthesized,
		Timbre: timbre,
	}
	return c.WithOctave(octave)
}

// WithOctave returns a copy with voices regenerated for the octave.
// Voice ids keep their slot so grid rows follow the pitch class.
func (c Channel) WithOctave(octave int) Channel {
	if c.Kind != KindSynthesized {
		return c
	}
	octave = clampInt(octave, MinOctave, MaxOctave)
	c.Octave = octave
	c.voices = make([]Voice, len(noteNames))
	for i, n := range noteNames {
		note := n + strconv.Itoa(octave)
		c.voices[i] = Voice{
			ID:        makeVoiceID(c.ID, i),
			ChannelID: c.ID,
			Kind:      KindSynthesized,
			Name:      note,
			Note:      note,
			Timbre:    c.Timbre,
		}
	}
	return c
}

// Voices returns the channel's voices in row order
func (c Channel) Voices() []Voice {
	return append([]Voice(nil), c.voices...)
}

// NoteNumber converts a note name like "C4" or "F#2" to a MIDI key (C4 = 60).
func NoteNumber(name string) (uint8, error) {
	i := strings.IndexAny(name, "-0123456789")
	if i <= 0 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	pitch := -1
	for n, s := range noteNames {
		if s == name[:i] {
			pitch = n
			break
		}
	}
	if pitch < 0 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	octave, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q", name)
	}
	key := (octave+1)*12 + pitch
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %q out of MIDI range", name)
	}
	return uint8(key), nil
}

// DefaultChannels returns the studio's instrument layout.
// GM keys stand in for the drum samples.
func DefaultChannels() []Channel {
	return []Channel{
		NewSampleChannel("drums", "Drums", "#ff6b6b", []Sample{
			{"Kick", 36},
			{"Snare", 38},
			{"Hi-Hat C", 42},
			{"Hi-Hat O", 46},
			{"Clap", 39},
			{"Tom", 45},
		}),
		NewSampleChannel("percussion", "Percussion", "#4ecdc4", []Sample{
			{"Ride", 51},
			{"Rimshot", 37},
			{"Cowbell", 56},
			{"Clave", 75},
			{"Maracas", 70},
		}),
		NewSynthChannel("piano", "Piano", "#a29bfe", 4, Timbre{
			Oscillator: OscTriangle,
			Envelope:   Envelope{Attack: 0.005, Decay: 0.3, Sustain: 0.4, Release: 0.8},
		}),
		NewSynthChannel("bass", "Bass", "#45b7d1", 2, Timbre{
			Oscillator: OscSawtooth,
			Envelope:   Envelope{Attack: 0.01, Decay: 0.2, Sustain: 0.7, Release: 0.3},
		}),
		NewSynthChannel("synth", "Synths", "#feca57", 4, Timbre{
			Oscillator: OscSquare,
			Envelope:   Envelope{Attack: 0.05, Decay: 0.2, Sustain: 0.6, Release: 1.0},
		}),
		NewSampleChannel("fx", "FX", "#e67e22", []Sample{
			{"Crash", 49},
		}),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
