package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// MIDIConfig defines the MIDI output used for playback
type MIDIConfig struct {
	PortName string         `json:"portName,omitempty"` // substring match, empty = first port
	Channels map[string]int `json:"channels,omitempty"` // sequencer channel id -> MIDI channel 1-16
}

// PatternConfig holds the settings a new pattern starts with
type PatternConfig struct {
	Tempo   float64 `json:"tempo,omitempty"`
	Steps   int     `json:"steps,omitempty"`
	Density float64 `json:"density,omitempty"` // randomize probability
}

// Config is the main configuration structure
type Config struct {
	MIDI     MIDIConfig    `json:"midi"`
	Pattern  PatternConfig `json:"pattern"`
	Debug    bool          `json:"debug,omitempty"`
	BeatsDir string        `json:"beatsDir,omitempty"` // empty = <config dir>/beats
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Channels: map[string]int{
				"drums":      10,
				"percussion": 10,
				"piano":      1,
				"bass":       2,
				"synth":      3,
				"fx":         10,
			},
		},
		Pattern: PatternConfig{
			Tempo:   120,
			Steps:   16,
			Density: 0.25,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("cannot find home directory"))
	}
	return filepath.Join(home, ".config", "rhythm-studio"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Fields missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fault.Wrap(err, fmsg.With("cannot read config"))
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("cannot parse config", "The config file "+path+" is not valid JSON"))
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("cannot create config directory"))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("cannot encode config"))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("cannot write config"))
	}
	return nil
}

// BeatsPath returns where saved beats live
func (c *Config) BeatsPath() (string, error) {
	if c.BeatsDir != "" {
		return c.BeatsDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "beats"), nil
}

// LogDir returns where the debug log is written
func LogDir() (string, error) {
	return ConfigDir()
}
