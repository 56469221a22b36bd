package reorder

import (
	"slices"

	"github.com/roach88/plotboard/internal/board"
)

// Apply computes the board that results from mv.
//
// Same-act moves are a stable array move to the sibling's index followed by
// renumbering of that act. Cross-act moves remove the scene from its source,
// insert it into the destination (at the sibling, or via the anchor rule)
// and renumber both acts.
//
// Apply never mutates b.
func Apply(b *board.Board, mv Move) Result {
	srcActID, ok := b.ActOf(mv.SceneID)
	if !ok {
		return noop(b, NoOpUnknownScene)
	}
	if !b.HasAct(mv.TargetActID) {
		return noop(b, NoOpUnknownAct)
	}
	if !mv.Unresolved() {
		overAct, ok := b.ActOf(mv.TargetSceneID)
		if !ok {
			return noop(b, NoOpUnknownTarget)
		}
		if overAct != mv.TargetActID {
			return noop(b, NoOpTargetMismatch)
		}
	}

	if srcActID == mv.TargetActID {
		return applyWithinAct(b, mv)
	}
	return applyAcrossActs(b, srcActID, mv)
}

func applyWithinAct(b *board.Board, mv Move) Result {
	actID := mv.TargetActID

	// A drop on the scene itself or on its own act keeps every position.
	if mv.Unresolved() || mv.TargetSceneID == mv.SceneID {
		return Result{Board: b}
	}

	seq := b.Scenes(actID)
	from := b.SceneIndex(mv.SceneID)
	to := b.SceneIndex(mv.TargetSceneID)

	seq = board.Renumber(arrayMove(seq, from, to))

	next := b.Clone()
	next.SetScenes(actID, seq)

	return Result{
		Board:   next,
		Changes: diff(b, next, actID),
	}
}

func applyAcrossActs(b *board.Board, srcActID string, mv Move) Result {
	dstActID := mv.TargetActID

	src := b.Scenes(srcActID)
	from := b.SceneIndex(mv.SceneID)
	moved := src[from]
	src = slices.Delete(src, from, from+1)
	moved.ActID = dstActID

	next := b.Clone()
	next.SetScenes(srcActID, board.Renumber(src))

	dst := b.Scenes(dstActID)
	var anchor *Anchor
	at := 0
	if mv.Unresolved() {
		// The anchor always lives in an act that precedes the destination,
		// so the slot right after it in reading order is the head of dst.
		anchor = resolveAnchor(next, dstActID)
	} else {
		at = slices.IndexFunc(dst, func(s board.Scene) bool { return s.ID == mv.TargetSceneID })
	}
	dst = slices.Insert(dst, at, moved)
	next.SetScenes(dstActID, board.Renumber(dst))

	return Result{
		Board:   next,
		Changes: diff(b, next, srcActID, dstActID),
		Anchor:  anchor,
	}
}

// resolveAnchor returns the last scene of the nearest act that precedes
// actID in ordinal order and holds at least one scene, or nil.
func resolveAnchor(b *board.Board, actID string) *Anchor {
	acts := b.Acts()
	for i := b.ActIndex(actID) - 1; i >= 0; i-- {
		seq := b.Scenes(acts[i].ID)
		if len(seq) == 0 {
			continue
		}
		return &Anchor{ActID: acts[i].ID, SceneID: seq[len(seq)-1].ID}
	}
	return nil
}

// ResolveDrop turns a raw drop event into a Move. overID may name a scene
// (the sibling dropped on) or an act (the container dropped on).
// Returns false when neither id resolves against the board.
func ResolveDrop(b *board.Board, activeID, overID string) (Move, bool) {
	if _, ok := b.ActOf(activeID); !ok {
		return Move{}, false
	}
	if b.HasAct(overID) {
		return Move{SceneID: activeID, TargetActID: overID}, true
	}
	if actID, ok := b.ActOf(overID); ok {
		return Move{SceneID: activeID, TargetActID: actID, TargetSceneID: overID}, true
	}
	return Move{}, false
}

// arrayMove removes the element at from and reinserts it at to, preserving
// the relative order of every other element.
func arrayMove[T any](seq []T, from, to int) []T {
	out := slices.Clone(seq)
	if from == to {
		return out
	}
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

// diff lists scenes of the given acts whose act or number differs between
// prev and next, in reading order of next.
func diff(prev, next *board.Board, actIDs ...string) []Change {
	var changes []Change
	for _, a := range next.Acts() {
		if !slices.Contains(actIDs, a.ID) {
			continue
		}
		for _, s := range next.Scenes(a.ID) {
			old, ok := prev.Scene(s.ID)
			if ok && old.ActID == s.ActID && old.Number == s.Number {
				continue
			}
			changes = append(changes, Change{SceneID: s.ID, ActID: s.ActID, Number: s.Number})
		}
	}
	return changes
}
