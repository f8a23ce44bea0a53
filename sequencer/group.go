package sequencer

// NoGroup marks a step that was not written by a drag
const NoGroup GroupID = 0

// GroupID tags the steps written by one drag gesture
type GroupID uint64

// StepMeta is the per-step grouping metadata
type StepMeta struct {
	GroupID GroupID
}

// NoteGroup is a run of adjacent active steps that plays as one note
type NoteGroup struct {
	Steps      []int // ascending, contiguous
	WasDragged bool
}

// Start returns the first step of the group
func (g NoteGroup) Start() int { return g.Steps[0] }

// Len returns the number of steps the note spans
func (g NoteGroup) Len() int { return len(g.Steps) }

// GroupConsecutiveSteps splits a row into note groups. A group closes on an
// inactive step or whenever the group id changes between two active steps,
// so adjacent taps and a dragged span next to them stay separate notes.
func GroupConsecutiveSteps(steps []bool, meta []StepMeta) []NoteGroup {
	var groups []NoteGroup
	var cur []int
	var curID GroupID

	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, NoteGroup{Steps: cur, WasDragged: curID != NoGroup})
		}
		cur = nil
		curID = NoGroup
	}

	for i, active := range steps {
		if !active {
			flush()
			continue
		}
		id := NoGroup
		if i < len(meta) {
			id = meta[i].GroupID
		}
		if len(cur) > 0 && id != curID {
			flush()
		}
		if len(cur) == 0 {
			curID = id
		}
		cur = append(cur, i)
	}
	flush()
	return groups
}

// groupStartingAt returns the group whose first step is step
func groupStartingAt(groups []NoteGroup, step int) (NoteGroup, bool) {
	for _, g := range groups {
		if g.Start() == step {
			return g, true
		}
		if g.Start() > step {
			break
		}
	}
	return NoteGroup{}, false
}
