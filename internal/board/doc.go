// Package board provides the in-memory model shared by the reorder engine,
// the repository and the board controller.
//
// This package contains type definitions and the Board partition only. It
// performs no I/O and imports nothing internal.
//
// # Model
//
//   - Act: an ordered container ("act") with a dense ordinal 1..M per project
//   - Scene: the orderable unit, carrying its act reference and a dense
//     order key 1..N within that act
//   - Board: the partition of scenes across the acts of one project, plus a
//     scene id → act id index kept in step with every mutation
//
// Boards are treated as values. Callers that need a modified board Clone it
// first; the reorder engine never mutates the board it was given.
package board
