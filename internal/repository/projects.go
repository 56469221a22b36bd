package repository

import (
	"context"
	"fmt"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/rpc"
)

const projectColumns = `id, name, act_structure, layout_direction, primary_color,
	secondary_color, cell_dimension_ratio, created_at, last_modified`

func scanProject(row rpc.Row) board.Project {
	return board.Project{
		ID:              row.Text("id"),
		Name:            row.Text("name"),
		ActStructure:    int(row.Int("act_structure")),
		LayoutDirection: board.Layout(row.Text("layout_direction")),
		PrimaryColor:    row.Text("primary_color"),
		SecondaryColor:  row.Text("secondary_color"),
		CellRatio:       row.Real("cell_dimension_ratio"),
		CreatedAt:       row.Text("created_at"),
		LastModified:    row.Text("last_modified"),
	}
}

// CreateProject inserts a project with actCount empty acts numbered 1..M.
// actCount 0 means board.DefaultActStructure.
func (r *Repository) CreateProject(ctx context.Context, name string, actCount int) (board.Project, error) {
	name = normalizeText(name)
	if name == "" {
		return board.Project{}, fmt.Errorf("create project: %w: name is empty", ErrInvalid)
	}
	if actCount == 0 {
		actCount = board.DefaultActStructure
	}
	if actCount < 0 {
		return board.Project{}, fmt.Errorf("create project: %w: act count %d", ErrInvalid, actCount)
	}

	id := r.ids.NewID()
	futures := []*rpc.Future[[]rpc.Row]{
		r.exec.Execute(
			"INSERT INTO Projects (id, name, act_structure) VALUES (?, ?, ?)",
			rpc.Text(id), rpc.Text(name), rpc.Integer(actCount),
		),
	}
	for n := 1; n <= actCount; n++ {
		futures = append(futures, r.exec.Execute(
			"INSERT INTO Acts (id, project_id, act_number, name) VALUES (?, ?, ?, ?)",
			rpc.Text(r.ids.NewID()), rpc.Text(id), rpc.Integer(n), rpc.Text(fmt.Sprintf("Act %d", n)),
		))
	}
	if err := awaitAll(ctx, "create project", futures); err != nil {
		return board.Project{}, err
	}

	r.logger.Info().Str("project", id).Str("name", name).Int("acts", actCount).Msg("project created")
	return r.GetProject(ctx, id)
}

// GetProject returns one project.
func (r *Repository) GetProject(ctx context.Context, id string) (board.Project, error) {
	rows, err := await(ctx, "get project", r.exec.Execute(
		"SELECT "+projectColumns+" FROM Projects WHERE id = ?", rpc.Text(id),
	))
	if err != nil {
		return board.Project{}, err
	}
	if len(rows) == 0 {
		return board.Project{}, fmt.Errorf("get project %s: %w", id, ErrNotFound)
	}
	return scanProject(rows[0]), nil
}

// ListProjects returns every project, most recently modified first.
func (r *Repository) ListProjects(ctx context.Context) ([]board.Project, error) {
	rows, err := await(ctx, "list projects", r.exec.Execute(
		"SELECT " + projectColumns + " FROM Projects ORDER BY last_modified DESC, created_at DESC, id DESC",
	))
	if err != nil {
		return nil, err
	}
	projects := make([]board.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, scanProject(row))
	}
	return projects, nil
}

// DeleteProject removes a project with all its acts and scenes.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	rows, err := await(ctx, "delete project", r.exec.Execute(
		"DELETE FROM Projects WHERE id = ? RETURNING id", rpc.Text(id),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}
	r.logger.Info().Str("project", id).Msg("project deleted")
	return nil
}

// SetProjectRatio updates the project-wide cell dimension ratio.
func (r *Repository) SetProjectRatio(ctx context.Context, id string, ratio float64) error {
	if !validRatio(ratio) {
		return fmt.Errorf("set project ratio: %w: %v", ErrInvalid, ratio)
	}
	rows, err := await(ctx, "set project ratio", r.exec.Execute(
		"UPDATE Projects SET cell_dimension_ratio = ? WHERE id = ? RETURNING id",
		rpc.Real(ratio), rpc.Text(id),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("set project ratio %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetLayout changes the direction scenes flow in the project's acts.
func (r *Repository) SetLayout(ctx context.Context, id string, layout board.Layout) error {
	if layout != board.LayoutVertical && layout != board.LayoutHorizontal {
		return fmt.Errorf("set layout: %w: %q", ErrInvalid, layout)
	}
	rows, err := await(ctx, "set layout", r.exec.Execute(
		"UPDATE Projects SET layout_direction = ? WHERE id = ? RETURNING id",
		rpc.Text(string(layout)), rpc.Text(id),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("set layout %s: %w", id, ErrNotFound)
	}
	return nil
}
