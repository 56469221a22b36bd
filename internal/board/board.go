package board

import (
	"fmt"
	"slices"
	"strings"
)

// Board is the partition of scenes across the acts of one project.
//
// INVARIANTS (checked by Validate):
//   - every scene belongs to exactly one act of the board
//   - scene numbers within an act are exactly 1..N
//   - act numbers are exactly 1..M
//
// The index maps scene id → act id and is updated by every setter, so
// lookups never scan the whole board.
type Board struct {
	projectID string
	acts      []Act
	scenes    map[string][]Scene
	index     map[string]string
}

// New builds a board from rows as loaded from the store.
// Acts are ordered by Number and scenes by Number within their act; ties
// are broken by id so the result is deterministic. New does not renumber.
//
// Returns an error if a scene references an act not in acts, or if an id
// appears twice.
func New(projectID string, acts []Act, scenes []Scene) (*Board, error) {
	b := &Board{
		projectID: projectID,
		acts:      slices.Clone(acts),
		scenes:    make(map[string][]Scene, len(acts)),
		index:     make(map[string]string, len(scenes)),
	}

	slices.SortStableFunc(b.acts, func(x, y Act) int {
		if x.Number != y.Number {
			return x.Number - y.Number
		}
		return strings.Compare(x.ID, y.ID)
	})

	for _, a := range b.acts {
		if _, dup := b.scenes[a.ID]; dup {
			return nil, fmt.Errorf("duplicate act id %q", a.ID)
		}
		b.scenes[a.ID] = nil
	}

	for _, s := range scenes {
		if _, ok := b.scenes[s.ActID]; !ok {
			return nil, fmt.Errorf("scene %q references unknown act %q", s.ID, s.ActID)
		}
		if _, dup := b.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scene id %q", s.ID)
		}
		b.scenes[s.ActID] = append(b.scenes[s.ActID], s)
		b.index[s.ID] = s.ActID
	}

	for id, seq := range b.scenes {
		slices.SortStableFunc(seq, func(x, y Scene) int {
			if x.Number != y.Number {
				return x.Number - y.Number
			}
			return strings.Compare(x.ID, y.ID)
		})
		b.scenes[id] = seq
	}

	return b, nil
}

// ProjectID returns the project the board belongs to.
func (b *Board) ProjectID() string {
	return b.projectID
}

// Acts returns the acts in ordinal order. The slice is a copy.
func (b *Board) Acts() []Act {
	return slices.Clone(b.acts)
}

// Act returns the act with the given id.
func (b *Board) Act(id string) (Act, bool) {
	i := b.ActIndex(id)
	if i < 0 {
		return Act{}, false
	}
	return b.acts[i], true
}

// ActIndex returns the position of the act in ordinal order, or -1.
func (b *Board) ActIndex(id string) int {
	return slices.IndexFunc(b.acts, func(a Act) bool { return a.ID == id })
}

// HasAct reports whether the act is part of the board.
func (b *Board) HasAct(id string) bool {
	_, ok := b.scenes[id]
	return ok
}

// Scenes returns the scenes of an act in order. The slice is a copy.
func (b *Board) Scenes(actID string) []Scene {
	return slices.Clone(b.scenes[actID])
}

// SceneCount returns the number of scenes in an act.
func (b *Board) SceneCount(actID string) int {
	return len(b.scenes[actID])
}

// Len returns the total number of scenes on the board.
func (b *Board) Len() int {
	return len(b.index)
}

// ActOf returns the id of the act holding the scene.
func (b *Board) ActOf(sceneID string) (string, bool) {
	id, ok := b.index[sceneID]
	return id, ok
}

// Scene returns the scene with the given id.
func (b *Board) Scene(id string) (Scene, bool) {
	actID, ok := b.index[id]
	if !ok {
		return Scene{}, false
	}
	i := b.SceneIndex(id)
	return b.scenes[actID][i], true
}

// SceneIndex returns the zero-based position of the scene within its act,
// or -1 if the scene is not on the board.
func (b *Board) SceneIndex(id string) int {
	actID, ok := b.index[id]
	if !ok {
		return -1
	}
	return slices.IndexFunc(b.scenes[actID], func(s Scene) bool { return s.ID == id })
}

// Flatten returns every scene in reading order: acts by ordinal, then
// scenes by order key.
func (b *Board) Flatten() []Scene {
	out := make([]Scene, 0, len(b.index))
	for _, a := range b.acts {
		out = append(out, b.scenes[a.ID]...)
	}
	return out
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{
		projectID: b.projectID,
		acts:      slices.Clone(b.acts),
		scenes:    make(map[string][]Scene, len(b.scenes)),
		index:     make(map[string]string, len(b.index)),
	}
	for id, seq := range b.scenes {
		c.scenes[id] = slices.Clone(seq)
	}
	for k, v := range b.index {
		c.index[k] = v
	}
	return c
}

// SetScenes replaces the sequence of an act and points the index of every
// scene in seq at that act. Scenes are stored as given; ActID fields are
// overwritten with actID.
//
// Callers moving a scene between acts must SetScenes on both acts.
func (b *Board) SetScenes(actID string, seq []Scene) {
	seq = slices.Clone(seq)
	for i := range seq {
		seq[i].ActID = actID
		b.index[seq[i].ID] = actID
	}
	b.scenes[actID] = seq
}

// SetActs replaces the act list. Acts must be the same set already on the
// board; only order and attributes may change.
func (b *Board) SetActs(acts []Act) {
	b.acts = slices.Clone(acts)
}

// Validate checks the board invariants and returns the first violation.
func (b *Board) Validate() error {
	for i, a := range b.acts {
		if a.Number != i+1 {
			return &InvariantError{ActID: a.ID, Detail: fmt.Sprintf("act number %d at position %d", a.Number, i+1)}
		}
	}

	seen := 0
	for _, a := range b.acts {
		for i, s := range b.scenes[a.ID] {
			if s.ActID != a.ID {
				return &InvariantError{ActID: a.ID, SceneID: s.ID, Detail: fmt.Sprintf("scene act reference %q", s.ActID)}
			}
			if b.index[s.ID] != a.ID {
				return &InvariantError{ActID: a.ID, SceneID: s.ID, Detail: "index out of step"}
			}
			if s.Number != i+1 {
				return &InvariantError{ActID: a.ID, SceneID: s.ID, Detail: fmt.Sprintf("scene number %d at position %d", s.Number, i+1)}
			}
			seen++
		}
	}
	if seen != len(b.index) {
		return &InvariantError{Detail: fmt.Sprintf("index holds %d scenes, acts hold %d", len(b.index), seen)}
	}
	return nil
}

// InvariantError reports a board that breaks the partition invariants.
type InvariantError struct {
	ActID   string
	SceneID string
	Detail  string
}

func (e *InvariantError) Error() string {
	switch {
	case e.SceneID != "":
		return fmt.Sprintf("board invariant: act %s scene %s: %s", e.ActID, e.SceneID, e.Detail)
	case e.ActID != "":
		return fmt.Sprintf("board invariant: act %s: %s", e.ActID, e.Detail)
	default:
		return "board invariant: " + e.Detail
	}
}

// Renumber returns seq with order keys reassigned to 1..N in slice order.
func Renumber(seq []Scene) []Scene {
	out := slices.Clone(seq)
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}
