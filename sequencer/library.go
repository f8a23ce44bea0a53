package sequencer

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"rhythm-studio/debug"
)

// Library stores saved beats keyed by an opaque id
type Library interface {
	// Load returns every saved beat, newest first
	Load() ([]Snapshot, error)
	// Save assigns an id and timestamp and stores the beat
	Save(s Snapshot) (Snapshot, error)
	// Delete removes a beat by id
	Delete(id string) error
}

// DirLibrary keeps one JSON file per beat in a directory
type DirLibrary struct {
	dir string
	now func() time.Time
}

// NewDirLibrary creates a library rooted at dir. The directory is created on first save.
func NewDirLibrary(dir string) *DirLibrary {
	return &DirLibrary{dir: dir, now: time.Now}
}

// Dir returns the directory beats are stored in
func (l *DirLibrary) Dir() string { return l.dir }

// Load reads every beat file. Unreadable files are skipped.
func (l *DirLibrary) Load() ([]Snapshot, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, fault.Wrap(err, fmsg.With("cannot list beats"))
	}

	beats := []Snapshot{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			debug.Log("library", "skip %s: %v", name, err)
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			debug.Log("library", "skip %s: %v", name, err)
			continue
		}
		if s.ID == "" {
			s.ID = strings.TrimSuffix(name, ".json")
		}
		beats = append(beats, s)
	}

	sort.SliceStable(beats, func(i, j int) bool {
		return beats[i].Timestamp > beats[j].Timestamp
	})
	return beats, nil
}

// Save writes s under a new id. Ids are the save time in milliseconds,
// bumped until unused.
func (l *DirLibrary) Save(s Snapshot) (Snapshot, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return Snapshot{}, fault.Wrap(err, fmsg.With("cannot create beats directory"))
	}

	ts := l.now().UnixMilli()
	n := ts
	for {
		if _, err := os.Stat(l.path(strconv.FormatInt(n, 10))); errors.Is(err, fs.ErrNotExist) {
			break
		}
		n++
	}
	s.ID = strconv.FormatInt(n, 10)
	s.Timestamp = ts

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return Snapshot{}, fault.Wrap(err, fmsg.With("cannot encode beat"))
	}

	// write then rename so a crash never leaves half a beat behind
	tmp := l.path(s.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Snapshot{}, fault.Wrap(err, fmsg.WithDesc("cannot write beat", "The beat could not be saved"))
	}
	if err := os.Rename(tmp, l.path(s.ID)); err != nil {
		os.Remove(tmp)
		return Snapshot{}, fault.Wrap(err, fmsg.WithDesc("cannot write beat", "The beat could not be saved"))
	}

	debug.Log("library", "saved %s %q", s.ID, s.Name)
	return s, nil
}

// Delete removes the beat with the given id
func (l *DirLibrary) Delete(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fault.New("invalid beat id "+strconv.Quote(id), ftag.With(ftag.InvalidArgument))
	}
	err := os.Remove(l.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fault.Wrap(err, fmsg.With("beat "+id+" not found"), ftag.With(ftag.NotFound))
	}
	if err != nil {
		return fault.Wrap(err, fmsg.With("cannot delete beat "+id))
	}
	debug.Log("library", "deleted %s", id)
	return nil
}

func (l *DirLibrary) path(id string) string {
	return filepath.Join(l.dir, id+".json")
}
