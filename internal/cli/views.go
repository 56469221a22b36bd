package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/reorder"
)

// projectView is a single project.
type projectView struct {
	board.Project
}

func (v projectView) String() string {
	return fmt.Sprintf("%s  %s  (%d acts, %s)", v.ID, v.Name, v.ActStructure, v.LayoutDirection)
}

// projectList renders one project per line.
type projectList []board.Project

func (l projectList) String() string {
	if len(l) == 0 {
		return "no projects"
	}
	lines := make([]string, 0, len(l))
	for _, p := range l {
		lines = append(lines, projectView{p}.String())
	}
	return strings.Join(lines, "\n")
}

// sceneView is a single scene.
type sceneView struct {
	board.Scene
}

func (v sceneView) String() string {
	return fmt.Sprintf("%s  #%d  %s", v.ID, v.Number, describe(v.Payload))
}

func describe(p board.Payload) string {
	parts := []string{p.Title}
	if p.Location != "" {
		parts = append(parts, p.Location)
	}
	if p.TimeOfDay != "" {
		parts = append(parts, p.TimeOfDay)
	}
	return strings.Join(parts, " - ")
}

// boardView is a project with its acts and scenes in reading order.
type boardView struct {
	Project board.Project `json:"project"`
	Acts    []actView     `json:"acts"`
}

type actView struct {
	board.Act
	Scenes []board.Scene `json:"scenes"`
}

func newBoardView(p board.Project, b *board.Board) boardView {
	v := boardView{Project: p, Acts: make([]actView, 0, len(b.Acts()))}
	for _, a := range b.Acts() {
		scenes := b.Scenes(a.ID)
		if scenes == nil {
			scenes = []board.Scene{}
		}
		v.Acts = append(v.Acts, actView{Act: a, Scenes: scenes})
	}
	return v
}

func (v boardView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  (%s)\n", v.Project.ID, v.Project.Name, v.Project.LayoutDirection)
	for _, a := range v.Acts {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("Act %d", a.Number)
		}
		fmt.Fprintf(&sb, "\n%d. %s  [%s]\n", a.Number, name, a.ID)
		if len(a.Scenes) == 0 {
			sb.WriteString("   (empty)\n")
		}
		for _, s := range a.Scenes {
			fmt.Fprintf(&sb, "   %d. %s  [%s]\n", s.Number, describe(s.Payload), s.ID)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// moveView reports what a scene move wrote.
type moveView struct {
	Move    reorder.Move     `json:"move"`
	Changes []reorder.Change `json:"changes"`
	Anchor  *reorder.Anchor  `json:"anchor,omitempty"`
}

func newMoveView(mv reorder.Move, res reorder.Result) moveView {
	changes := res.Changes
	if changes == nil {
		changes = []reorder.Change{}
	}
	return moveView{Move: mv, Changes: changes, Anchor: res.Anchor}
}

func (v moveView) String() string {
	if len(v.Changes) == 0 {
		return fmt.Sprintf("%s already in place", v.Move.SceneID)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "moved %s to %s", v.Move.SceneID, v.Move.TargetActID)
	if v.Anchor != nil {
		fmt.Fprintf(&sb, " after %s", v.Anchor.SceneID)
	}
	for _, c := range v.Changes {
		fmt.Fprintf(&sb, "\n  %s -> %s #%d", c.SceneID, c.ActID, c.Number)
	}
	return sb.String()
}

// actMoveView reports the renumbering of acts.
type actMoveView struct {
	ActID   string              `json:"act_id"`
	Number  int                 `json:"act_number"`
	Changes []reorder.ActChange `json:"changes"`
}

func (v actMoveView) String() string {
	if len(v.Changes) == 0 {
		return fmt.Sprintf("%s already at %d", v.ActID, v.Number)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "moved act %s to %d", v.ActID, v.Number)
	for _, c := range v.Changes {
		fmt.Fprintf(&sb, "\n  %s -> %d", c.ActID, c.Number)
	}
	return sb.String()
}

// message is a plain confirmation with a JSON body.
type message struct {
	Text string `json:"message"`
	ID   string `json:"id,omitempty"`
}

func (m message) String() string { return m.Text }
