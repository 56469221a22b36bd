// Package seed reads CUE documents describing a project with its acts and
// scenes, and writes them to the store.
//
// A seed file has a single top-level project field:
//
//	project: {
//		name: "Heist"
//		acts: [
//			{name: "Setup", scenes: [{title: "Opening", time_of_day: "NIGHT"}]},
//			{scenes: []},
//		]
//	}
//
// Documents are unified with an embedded schema before decoding, so
// unknown time_of_day values, empty titles and projects without acts are
// rejected with a source position.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/plotboard/internal/board"
)

//go:embed schema.cue
var schemaSrc string

// Project is a decoded seed document.
type Project struct {
	Name   string `json:"name"`
	Layout string `json:"layout,omitempty"`
	Acts   []Act  `json:"acts"`
}

// Act is one act of a seed project, in ordinal order.
type Act struct {
	Name   string          `json:"name,omitempty"`
	Ratio  float64         `json:"ratio,omitempty"`
	Scenes []board.Payload `json:"scenes"`
}

// SceneCount returns the number of scenes across all acts.
func (p *Project) SceneCount() int {
	n := 0
	for _, a := range p.Acts {
		n += len(a.Scenes)
	}
	return n
}

// Error is a seed validation failure with its source position.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and validates the seed file at path.
func Load(path string) (*Project, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(path, src)
}

// Parse validates src against the seed schema and decodes it. filename is
// used in error positions only.
func Parse(filename string, src []byte) (*Project, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, positioned(err)
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, positioned(err)
	}

	var p Project
	if err := v.LookupPath(cue.ParsePath("project")).Decode(&p); err != nil {
		return nil, positioned(err)
	}
	return &p, nil
}

// positioned reduces a CUE error list to its first error, keeping the
// position when CUE reports one.
func positioned(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	e := &Error{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

// Writer is the persistence Import needs. *repository.Repository
// implements it.
type Writer interface {
	CreateProject(ctx context.Context, name string, actCount int) (board.Project, error)
	LoadBoard(ctx context.Context, projectID string) (*board.Board, error)
	SetLayout(ctx context.Context, projectID string, layout board.Layout) error
	RenameAct(ctx context.Context, actID, name string) error
	SetActRatio(ctx context.Context, actID string, ratio float64) error
	AddScene(ctx context.Context, actID string, payload board.Payload) (board.Scene, error)
}

// Import creates the project described by p and returns it.
func Import(ctx context.Context, w Writer, p *Project) (board.Project, error) {
	proj, err := w.CreateProject(ctx, p.Name, len(p.Acts))
	if err != nil {
		return board.Project{}, fmt.Errorf("import seed: %w", err)
	}
	if p.Layout != "" {
		if err := w.SetLayout(ctx, proj.ID, board.Layout(p.Layout)); err != nil {
			return proj, fmt.Errorf("import seed: %w", err)
		}
		proj.LayoutDirection = board.Layout(p.Layout)
	}
	b, err := w.LoadBoard(ctx, proj.ID)
	if err != nil {
		return board.Project{}, fmt.Errorf("import seed: %w", err)
	}

	acts := b.Acts()
	for i, act := range p.Acts {
		actID := acts[i].ID
		if act.Name != "" {
			if err := w.RenameAct(ctx, actID, act.Name); err != nil {
				return proj, fmt.Errorf("import seed act %d: %w", i+1, err)
			}
		}
		if act.Ratio > 0 {
			if err := w.SetActRatio(ctx, actID, act.Ratio); err != nil {
				return proj, fmt.Errorf("import seed act %d: %w", i+1, err)
			}
		}
		for j, payload := range act.Scenes {
			if _, err := w.AddScene(ctx, actID, payload); err != nil {
				return proj, fmt.Errorf("import seed act %d scene %d: %w", i+1, j+1, err)
			}
		}
	}
	return proj, nil
}
