package sequencer

import "testing"

func stepsOf(pattern string) []bool {
	steps := make([]bool, len(pattern))
	for i, c := range pattern {
		steps[i] = c == 'x'
	}
	return steps
}

func TestGroupTapsMatchRuns(t *testing.T) {
	tests := []struct {
		row  string
		want [][]int
	}{
		{"........", nil},
		{"x.......", [][]int{{0}}},
		{"xx.xxx.x", [][]int{{0, 1}, {3, 4, 5}, {7}}},
		{"xxxxxxxx", [][]int{{0, 1, 2, 3, 4, 5, 6, 7}}},
		{".x.x.x.x", [][]int{{1}, {3}, {5}, {7}}},
	}
	for _, tt := range tests {
		steps := stepsOf(tt.row)
		groups := GroupConsecutiveSteps(steps, make([]StepMeta, len(steps)))
		if len(groups) != len(tt.want) {
			t.Errorf("%s: got %d groups, want %d", tt.row, len(groups), len(tt.want))
			continue
		}
		for i, g := range groups {
			if g.WasDragged || !equalInts(g.Steps, tt.want[i]) {
				t.Errorf("%s: group %d = %+v, want tapped %v", tt.row, i, g, tt.want[i])
			}
		}
	}
}

func TestGroupSplitsOnTagChange(t *testing.T) {
	steps := stepsOf("xxxxxx.x")
	meta := []StepMeta{{}, {7}, {7}, {9}, {}, {}, {}, {9}}

	groups := GroupConsecutiveSteps(steps, meta)
	want := []NoteGroup{
		{Steps: []int{0}},
		{Steps: []int{1, 2}, WasDragged: true},
		{Steps: []int{3}, WasDragged: true},
		{Steps: []int{4, 5}},
		{Steps: []int{7}, WasDragged: true},
	}
	if len(groups) != len(want) {
		t.Fatalf("got %+v, want %+v", groups, want)
	}
	for i := range want {
		if groups[i].WasDragged != want[i].WasDragged || !equalInts(groups[i].Steps, want[i].Steps) {
			t.Errorf("group %d = %+v, want %+v", i, groups[i], want[i])
		}
	}
}

func TestGroupShortMetaTreatedAsTaps(t *testing.T) {
	groups := GroupConsecutiveSteps(stepsOf("xxx"), nil)
	if len(groups) != 1 || groups[0].WasDragged || groups[0].Len() != 3 || groups[0].Start() != 0 {
		t.Fatalf("got %+v", groups)
	}
}

func TestGroupStartingAt(t *testing.T) {
	groups := GroupConsecutiveSteps(stepsOf(".xx..xxx"), nil)
	tests := []struct {
		step   int
		ok     bool
		length int
	}{
		{0, false, 0},
		{1, true, 2},
		{2, false, 0},
		{5, true, 3},
		{6, false, 0},
	}
	for _, tt := range tests {
		g, ok := groupStartingAt(groups, tt.step)
		if ok != tt.ok || (ok && g.Len() != tt.length) {
			t.Errorf("groupStartingAt(%d) = %+v, %v", tt.step, g, ok)
		}
	}
}
