package sequencer

// ChannelState is the mix state of a channel
type ChannelState struct {
	Muted    bool
	Solo     bool
	Volume   float64 // 0-1
	Expanded bool    // display only
}

// DefaultVolume is the volume new channels start at
const DefaultVolume = 0.8

func defaultChannelState() ChannelState {
	return ChannelState{Volume: DefaultVolume, Expanded: true}
}

// anySolo reports whether any channel is soloed
func anySolo(states map[string]ChannelState) bool {
	for _, st := range states {
		if st.Solo {
			return true
		}
	}
	return false
}

// ShouldTrigger reports whether a channel is audible. While any channel is
// soloed only soloed, unmuted channels sound; otherwise every unmuted one does.
func ShouldTrigger(states map[string]ChannelState, channelID string) bool {
	return audible(states[channelID], anySolo(states))
}

// AudibleChannels resolves every channel once, for use within a single tick
func AudibleChannels(states map[string]ChannelState) map[string]bool {
	solo := anySolo(states)
	out := make(map[string]bool, len(states))
	for id, st := range states {
		out[id] = audible(st, solo)
	}
	return out
}

func audible(st ChannelState, soloActive bool) bool {
	if soloActive {
		return st.Solo && !st.Muted
	}
	return !st.Muted
}
