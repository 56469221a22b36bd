package reorder

import "github.com/roach88/plotboard/internal/board"

// ActChange is the persisted projection of an act whose ordinal changed.
type ActChange struct {
	ActID  string `json:"act_id"`
	Number int    `json:"act_number"`
}

// ActResult is the outcome of MoveAct.
type ActResult struct {
	Board   *board.Board
	Changes []ActChange
	NoOp    NoOpReason
}

// Applied reports whether the act move was resolved against the board.
func (r ActResult) Applied() bool {
	return r.NoOp == ""
}

// MoveAct moves an act to ordinal number (1-based) and renumbers every act
// to 1..M. Scenes keep their act and order key.
func MoveAct(b *board.Board, actID string, number int) ActResult {
	from := b.ActIndex(actID)
	if from < 0 {
		return ActResult{Board: b, NoOp: NoOpUnknownAct}
	}
	acts := b.Acts()
	if number < 1 || number > len(acts) {
		return ActResult{Board: b, NoOp: NoOpOutOfRange}
	}

	moved := arrayMove(acts, from, number-1)
	var changes []ActChange
	for i := range moved {
		if moved[i].Number != i+1 {
			moved[i].Number = i + 1
			changes = append(changes, ActChange{ActID: moved[i].ID, Number: i + 1})
		}
	}
	if len(changes) == 0 {
		return ActResult{Board: b}
	}

	next := b.Clone()
	next.SetActs(moved)
	return ActResult{Board: next, Changes: changes}
}
