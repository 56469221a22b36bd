package reorder

import "github.com/roach88/plotboard/internal/board"

// Move describes a single drag of a scene.
type Move struct {
	SceneID     string `json:"scene_id" yaml:"scene"`
	TargetActID string `json:"target_act_id" yaml:"act"`

	// TargetSceneID is the sibling the scene was dropped on. Empty means the
	// drop target is the act itself.
	TargetSceneID string `json:"target_scene_id,omitempty" yaml:"over,omitempty"`
}

// Unresolved reports whether the move targets an act rather than a sibling.
func (m Move) Unresolved() bool {
	return m.TargetSceneID == ""
}

// NoOpReason explains why a move was not applied.
type NoOpReason string

const (
	NoOpUnknownScene   NoOpReason = "unknown_scene"
	NoOpUnknownAct     NoOpReason = "unknown_act"
	NoOpUnknownTarget  NoOpReason = "unknown_target"
	NoOpTargetMismatch NoOpReason = "target_not_in_act"
	NoOpOutOfRange     NoOpReason = "ordinal_out_of_range"
)

// Change is the persisted projection of one scene whose act or order key
// differs after a move.
type Change struct {
	SceneID string `json:"scene_id"`
	ActID   string `json:"act_id"`
	Number  int    `json:"scene_number"`
}

// Anchor is the scene an unresolved cross-act drop was placed after.
type Anchor struct {
	ActID   string `json:"act_id"`
	SceneID string `json:"scene_id"`
}

// Result is the outcome of Apply.
type Result struct {
	// Board is the board after the move. On a no-op it is the input board.
	Board *board.Board

	// Changes lists scenes whose act or order key changed, in reading order
	// of the new board. Empty when the move leaves every position unchanged.
	Changes []Change

	// Anchor is set when the anchor rule ran and found a preceding scene.
	Anchor *Anchor

	// NoOp is empty when the move was applied.
	NoOp NoOpReason
}

// Applied reports whether the move was resolved against the board.
func (r Result) Applied() bool {
	return r.NoOp == ""
}

func noop(b *board.Board, reason NoOpReason) Result {
	return Result{Board: b, NoOp: reason}
}
