// Package reorder implements the drag-reorder engine for scene boards.
//
// The engine is a pure function of (board, move) → result. It performs no
// I/O, never suspends and never mutates the board it is given, so it can be
// replayed and tested without any store or asynchronous harness.
//
// # Moves
//
// A Move names the dragged scene, the destination act and an optional
// sibling scene. With a sibling the scene lands at the sibling's position.
// Without one (a drop on the act itself, typically an empty act) the target
// is resolved through the anchor rule: the last scene of the nearest
// preceding non-empty act.
//
// # No-op
//
// Moves that cannot be resolved against the board return a Result whose
// NoOp field names the reason. The returned board is the input board and no
// renumbering is observable.
package reorder
