package main

import (
	"fmt"
	"os"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"rhythm-studio/midi"
	"rhythm-studio/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "ping":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		err = ping(port)
	case "kit":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		err = playKit(port)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list         - List MIDI output ports")
	fmt.Println("  ping [port]  - Send a C4 note to a port (default: first)")
	fmt.Println("  kit [port]   - Play every drum and percussion voice once")
}

func listPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	outs, err := midi.OutPorts()
	if err != nil {
		return err
	}
	if len(outs) == 0 {
		fmt.Println("  (none)")
	}
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func ping(name string) error {
	port, err := midi.FindOutPort(name)
	if err != nil {
		return err
	}
	fmt.Printf("Using output: %s\n", port.String())

	send, err := gomidi.SendTo(port)
	if err != nil {
		return err
	}
	defer port.Close()

	key, _ := sequencer.NoteNumber("C4")
	if err := send(gomidi.NoteOn(0, key, 100)); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	if err := send(gomidi.NoteOff(0, key)); err != nil {
		return err
	}
	fmt.Println("Done! You should have heard middle C")
	return nil
}

// playKit walks the sample voices through the same Output the studio uses
func playKit(name string) error {
	out := midi.NewOutput(map[string]int{"drums": 10, "percussion": 10, "fx": 10})
	if err := out.Open(name); err != nil {
		return err
	}
	defer out.Close()

	for _, c := range sequencer.DefaultChannels() {
		if c.Kind != sequencer.KindSample {
			continue
		}
		for _, v := range c.Voices() {
			fmt.Printf("  %-10s %-10s key %d\n", c.Name, v.Name, v.Sample)
			out.PlaySample(v, sequencer.DefaultVolume)
			time.Sleep(300 * time.Millisecond)
		}
	}
	return nil
}
