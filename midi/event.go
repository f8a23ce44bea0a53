package midi

// Sound controller numbers used to pass a synth channel's envelope
const (
	CCReleaseTime uint8 = 72
	CCAttackTime  uint8 = 73
	CCDecayTime   uint8 = 75
)

// envelopeFullScale is the envelope time mapped to CC value 127
const envelopeFullScale = 2.0 // seconds

// envelopeCC maps an envelope time in seconds onto 0-127
func envelopeCC(seconds float64) uint8 {
	if seconds <= 0 {
		return 0
	}
	v := seconds / envelopeFullScale * 127
	if v > 127 {
		return 127
	}
	return uint8(v + 0.5)
}

// velocity maps a 0-1 volume onto a note-on velocity. Zero means silent.
func velocity(volume float64) uint8 {
	if volume <= 0 {
		return 0
	}
	v := volume*127 + 0.5
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
