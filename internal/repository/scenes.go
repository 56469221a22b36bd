package repository

import (
	"context"
	"fmt"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/reorder"
	"github.com/roach88/plotboard/internal/rpc"
)

func scanScene(row rpc.Row) board.Scene {
	return board.Scene{
		ID:        row.Text("id"),
		ProjectID: row.Text("project_id"),
		ActID:     row.Text("act_id"),
		Number:    int(row.Int("scene_number")),
		Payload: board.Payload{
			Title:        row.Text("title"),
			Location:     row.Text("location"),
			TimeOfDay:    row.Text("time_of_day"),
			HeroImageURL: row.Text("hero_image_url"),
		},
	}
}

func scanAct(row rpc.Row) board.Act {
	return board.Act{
		ID:        row.Text("id"),
		ProjectID: row.Text("project_id"),
		Number:    int(row.Int("act_number")),
		Name:      row.Text("name"),
		Ratio:     row.Real("cell_dimension_ratio"),
	}
}

// LoadBoard reads a project's acts and scenes into a Board.
func (r *Repository) LoadBoard(ctx context.Context, projectID string) (*board.Board, error) {
	pid := rpc.Text(projectID)
	projectF := r.exec.Execute("SELECT id FROM Projects WHERE id = ?", pid)
	actsF := r.exec.Execute(
		`SELECT id, project_id, act_number, name, cell_dimension_ratio
		FROM Acts WHERE project_id = ? ORDER BY act_number, id`, pid)
	scenesF := r.exec.Execute(
		`SELECT id, project_id, act_id, scene_number, title, location, time_of_day, hero_image_url
		FROM Scenes WHERE project_id = ? ORDER BY scene_number, id`, pid)

	projectRows, err := await(ctx, "load board", projectF)
	if err != nil {
		return nil, err
	}
	actRows, err := await(ctx, "load acts", actsF)
	if err != nil {
		return nil, err
	}
	sceneRows, err := await(ctx, "load scenes", scenesF)
	if err != nil {
		return nil, err
	}
	if len(projectRows) == 0 {
		return nil, fmt.Errorf("load board %s: %w", projectID, ErrNotFound)
	}

	acts := make([]board.Act, 0, len(actRows))
	for _, row := range actRows {
		acts = append(acts, scanAct(row))
	}
	scenes := make([]board.Scene, 0, len(sceneRows))
	for _, row := range sceneRows {
		scenes = append(scenes, scanScene(row))
	}

	b, err := board.New(projectID, acts, scenes)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", projectID, err)
	}
	if err := b.Validate(); err != nil {
		r.logger.Warn().Err(err).Str("project", projectID).Msg("stored board breaks ordering invariants")
	}
	return b, nil
}

// GetScene reads one scene.
func (r *Repository) GetScene(ctx context.Context, id string) (board.Scene, error) {
	rows, err := await(ctx, "get scene", r.exec.Execute(
		`SELECT id, project_id, act_id, scene_number, title, location, time_of_day, hero_image_url
		FROM Scenes WHERE id = ?`, rpc.Text(id)))
	if err != nil {
		return board.Scene{}, err
	}
	if len(rows) == 0 {
		return board.Scene{}, fmt.Errorf("get scene %s: %w", id, ErrNotFound)
	}
	return scanScene(rows[0]), nil
}

// AddScene appends a scene to the end of an act.
func (r *Repository) AddScene(ctx context.Context, actID string, payload board.Payload) (board.Scene, error) {
	payload, err := normalizePayload(payload)
	if err != nil {
		return board.Scene{}, fmt.Errorf("add scene: %w", err)
	}

	rows, err := await(ctx, "add scene", r.exec.Execute(
		`INSERT INTO Scenes (id, project_id, act_id, scene_number, title, location, time_of_day, hero_image_url)
		SELECT ?, project_id, id,
			(SELECT COALESCE(MAX(scene_number), 0) + 1 FROM Scenes WHERE act_id = ?),
			?, ?, ?, ?
		FROM Acts WHERE id = ?
		RETURNING id, project_id, act_id, scene_number, title, location, time_of_day, hero_image_url`,
		rpc.Text(r.ids.NewID()), rpc.Text(actID),
		rpc.Text(payload.Title), textOrNull(payload.Location), textOrNull(payload.TimeOfDay), textOrNull(payload.HeroImageURL),
		rpc.Text(actID),
	))
	if err != nil {
		return board.Scene{}, err
	}
	if len(rows) == 0 {
		return board.Scene{}, fmt.Errorf("add scene to act %s: %w", actID, ErrNotFound)
	}

	scene := scanScene(rows[0])
	r.logger.Debug().Str("scene", scene.ID).Str("act", actID).Int("number", scene.Number).Msg("scene added")
	return scene, nil
}

// UpdateScenePayload replaces a scene's descriptive fields. Its act and
// order key are untouched.
func (r *Repository) UpdateScenePayload(ctx context.Context, sceneID string, payload board.Payload) (board.Scene, error) {
	payload, err := normalizePayload(payload)
	if err != nil {
		return board.Scene{}, fmt.Errorf("update scene: %w", err)
	}

	rows, err := await(ctx, "update scene", r.exec.Execute(
		`UPDATE Scenes SET title = ?, location = ?, time_of_day = ?, hero_image_url = ?,
			last_modified = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING id, project_id, act_id, scene_number, title, location, time_of_day, hero_image_url`,
		rpc.Text(payload.Title), textOrNull(payload.Location), textOrNull(payload.TimeOfDay), textOrNull(payload.HeroImageURL),
		rpc.Text(sceneID),
	))
	if err != nil {
		return board.Scene{}, err
	}
	if len(rows) == 0 {
		return board.Scene{}, fmt.Errorf("update scene %s: %w", sceneID, ErrNotFound)
	}
	return scanScene(rows[0]), nil
}

// DeleteScene removes a scene and closes the gap in its act's order keys.
func (r *Repository) DeleteScene(ctx context.Context, sceneID string) error {
	rows, err := await(ctx, "delete scene", r.exec.Execute(
		"DELETE FROM Scenes WHERE id = ? RETURNING act_id, scene_number", rpc.Text(sceneID),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("delete scene %s: %w", sceneID, ErrNotFound)
	}

	actID, number := rows[0].Text("act_id"), rows[0].Int("scene_number")
	_, err = await(ctx, "renumber scenes", r.exec.Execute(
		`UPDATE Scenes SET scene_number = scene_number - 1
		WHERE act_id = ? AND scene_number > ?`,
		rpc.Text(actID), rpc.Integer(number),
	))
	if err != nil {
		return err
	}
	r.logger.Debug().Str("scene", sceneID).Str("act", actID).Msg("scene deleted")
	return nil
}

// ApplyChanges persists the act and order key of every changed scene. One
// UPDATE per change is submitted in order, then all are awaited.
func (r *Repository) ApplyChanges(ctx context.Context, changes []reorder.Change) error {
	if len(changes) == 0 {
		return nil
	}
	futures := make([]*rpc.Future[[]rpc.Row], 0, len(changes))
	for _, c := range changes {
		futures = append(futures, r.exec.Execute(
			`UPDATE Scenes SET act_id = ?, scene_number = ?, last_modified = CURRENT_TIMESTAMP
			WHERE id = ?`,
			rpc.Text(c.ActID), rpc.Integer(c.Number), rpc.Text(c.SceneID),
		))
	}
	if err := awaitAll(ctx, "apply changes", futures); err != nil {
		return err
	}
	r.logger.Debug().Int("changes", len(changes)).Msg("reorder persisted")
	return nil
}

// RenameAct sets an act's display name.
func (r *Repository) RenameAct(ctx context.Context, actID, name string) error {
	name = normalizeText(name)
	rows, err := await(ctx, "rename act", r.exec.Execute(
		"UPDATE Acts SET name = ? WHERE id = ? RETURNING id",
		textOrNull(name), rpc.Text(actID),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("rename act %s: %w", actID, ErrNotFound)
	}
	return nil
}

// SetActOrdinals persists new act numbers after an act move.
func (r *Repository) SetActOrdinals(ctx context.Context, changes []reorder.ActChange) error {
	if len(changes) == 0 {
		return nil
	}
	futures := make([]*rpc.Future[[]rpc.Row], 0, len(changes))
	for _, c := range changes {
		futures = append(futures, r.exec.Execute(
			"UPDATE Acts SET act_number = ? WHERE id = ?",
			rpc.Integer(c.Number), rpc.Text(c.ActID),
		))
	}
	return awaitAll(ctx, "set act ordinals", futures)
}

// SetActRatio updates an act's display ratio.
func (r *Repository) SetActRatio(ctx context.Context, actID string, ratio float64) error {
	if !validRatio(ratio) {
		return fmt.Errorf("set act ratio: %w: %v", ErrInvalid, ratio)
	}
	rows, err := await(ctx, "set act ratio", r.exec.Execute(
		"UPDATE Acts SET cell_dimension_ratio = ? WHERE id = ? RETURNING id",
		rpc.Real(ratio), rpc.Text(actID),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("set act ratio %s: %w", actID, ErrNotFound)
	}
	return nil
}
