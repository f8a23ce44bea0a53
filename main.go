package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	tea "github.com/charmbracelet/bubbletea"

	"rhythm-studio/config"
	"rhythm-studio/debug"
	"rhythm-studio/midi"
	"rhythm-studio/sequencer"
	"rhythm-studio/theme"
	"rhythm-studio/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log to the config directory")
	port := flag.String("port", "", "MIDI output port (substring match, default from config or first port)")
	load := flag.String("load", "", "id of a saved or built-in beat to open")
	play := flag.Bool("play", false, "start playing the -load beat right away")
	palette := flag.String("palette", "", "GIMP .gpl palette for the UI")
	flag.Parse()

	if err := run(*debugFlag, *port, *load, *play, *palette); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func run(debugFlag bool, port, load string, play bool, palette string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if debugFlag || cfg.Debug {
		dir, err := config.LogDir()
		if err == nil {
			err = debug.Enable(dir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
		}
		defer debug.Disable()
	}

	th := theme.New(nil)
	if palette != "" {
		p, err := theme.LoadGPL(palette)
		if err != nil {
			return err
		}
		th = theme.New(p)
	}

	beatsDir, err := cfg.BeatsPath()
	if err != nil {
		return err
	}
	library := sequencer.NewDirLibrary(beatsDir)

	// Voices stay silent until the port opens; the transport skips them.
	out := midi.NewOutput(cfg.MIDI.Channels)
	if port == "" {
		port = cfg.MIDI.PortName
	}
	out.OpenAsync(port, nil)
	defer out.Close()

	pattern := sequencer.NewPattern(sequencer.DefaultChannels())
	pattern.SetTempo(cfg.Pattern.Tempo)
	pattern.SetStepCount(cfg.Pattern.Steps)
	engine := sequencer.NewEngine(pattern, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	var loadedID string
	if load != "" {
		beat, err := findBeat(library, load)
		if err != nil {
			return err
		}
		engine.Load(beat)
		loadedID = beat.ID
		if play {
			engine.Play()
		}
	}

	m := tui.NewModel(engine, library, th)
	m.MIDI = out
	m = m.WithLoadedBeat(loadedID)
	if cfg.Pattern.Density > 0 {
		m.Density = cfg.Pattern.Density
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func findBeat(library sequencer.Library, id string) (sequencer.Snapshot, error) {
	for _, b := range sequencer.DefaultBeats() {
		if b.ID == id {
			return b, nil
		}
	}
	saved, err := library.Load()
	if err != nil {
		return sequencer.Snapshot{}, err
	}
	for _, b := range saved {
		if b.ID == id {
			return b, nil
		}
	}
	return sequencer.Snapshot{}, fault.New("no beat with id "+id, ftag.With(ftag.NotFound),
		fmsg.WithDesc("beat not found", fmt.Sprintf("There is no saved or built-in beat %q", id)))
}

func describe(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
