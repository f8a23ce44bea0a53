package midi

import (
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// scanTimeout bounds port enumeration; CoreMIDI can hang
const scanTimeout = 3 * time.Second

// OutPorts lists MIDI output ports, giving up after scanTimeout
func OutPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(scanTimeout):
		return nil, fault.New("midi port scan timed out",
			fmsg.WithDesc("midi port scan timed out", "MIDI system is not responding (try: sudo killall coreaudiod midiserver)"))
	}
}

// FindOutPort returns the output whose name contains name (case-insensitive).
// An empty name picks the first port.
func FindOutPort(name string) (drivers.Out, error) {
	outs, err := OutPorts()
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, fault.New("no midi output ports", ftag.With(ftag.NotFound),
			fmsg.WithDesc("no midi output ports", "No MIDI devices found. Please ensure a MIDI device or virtual synth is connected"))
	}
	if name == "" {
		return outs[0], nil
	}
	want := strings.ToLower(name)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fault.New("midi output "+name+" not found", ftag.With(ftag.NotFound))
}
