package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/ids"
	"github.com/roach88/plotboard/internal/reorder"
	"github.com/roach88/plotboard/internal/rpc"
	"github.com/roach88/plotboard/internal/storeowner"
	"github.com/roach88/plotboard/internal/testutil"
)

func testCtx(t *testing.T) context.Context {
	return testutil.Context(t)
}

// newRepo returns a repository over a fresh database. IDs are "id-1",
// "id-2", ... in generation order.
func newRepo(t *testing.T) (*Repository, *rpc.Proxy) {
	t.Helper()
	p := testutil.OpenStore(t).Proxy
	return New(p, WithIDs(ids.NewSequence("id"))), p
}

func sceneIDs(b *board.Board, actID string) []string {
	var out []string
	for _, s := range b.Scenes(actID) {
		out = append(out, s.ID)
	}
	return out
}

func TestCreateProject(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "  Heist  ", 0)
	require.NoError(t, err)

	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "Heist", p.Name)
	assert.Equal(t, board.DefaultActStructure, p.ActStructure)
	assert.Equal(t, board.LayoutVertical, p.LayoutDirection)
	assert.NotEmpty(t, p.CreatedAt)

	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, b.Acts(), 3)
	for i, a := range b.Acts() {
		assert.Equal(t, i+1, a.Number)
		assert.Equal(t, p.ID, a.ProjectID)
	}
	assert.Equal(t, "Act 1", b.Acts()[0].Name)
	assert.Zero(t, b.Len())
}

func TestCreateProject_NormalizesName(t *testing.T) {
	repo, _ := newRepo(t)

	// "e" + combining acute composes to a single code point under NFC.
	p, err := repo.CreateProject(testCtx(t), "  Cafe\u0301 ", 2)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", p.Name)
	assert.Equal(t, 2, p.ActStructure)
}

func TestCreateProject_Invalid(t *testing.T) {
	repo, p := newRepo(t)
	ctx := testCtx(t)

	_, err := repo.CreateProject(ctx, "   ", 3)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = repo.CreateProject(ctx, "ok", -1)
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Equal(t, 0, p.Stats().Sent, "rejected input never reaches the store")
}

func TestListAndDeleteProjects(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	first, err := repo.CreateProject(ctx, "First", 1)
	require.NoError(t, err)
	second, err := repo.CreateProject(ctx, "Second", 1)
	require.NoError(t, err)

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, second.ID, projects[0].ID, "ties on last_modified fall back to newest first")

	require.NoError(t, repo.DeleteProject(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteProject(ctx, first.ID), ErrNotFound)

	projects, err = repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Second", projects[0].Name)

	_, err = repo.LoadBoard(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddScene_AppendsWithNextNumber(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 2)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	act := b.Acts()[0].ID

	s1, err := repo.AddScene(ctx, act, board.Payload{Title: "Opening", Location: "INT. BANK", TimeOfDay: "night"})
	require.NoError(t, err)
	s2, err := repo.AddScene(ctx, act, board.Payload{Title: "Getaway"})
	require.NoError(t, err)

	assert.Equal(t, 1, s1.Number)
	assert.Equal(t, 2, s2.Number)
	assert.Equal(t, "NIGHT", s1.Payload.TimeOfDay)
	assert.Equal(t, p.ID, s1.ProjectID)
	assert.Empty(t, s2.Payload.Location)

	b, err = repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{s1.ID, s2.ID}, sceneIDs(b, act))
	require.NoError(t, b.Validate())
}

func TestAddScene_Rejects(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	_, err := repo.AddScene(ctx, "nope", board.Payload{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.AddScene(ctx, "nope", board.Payload{Title: " "})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = repo.AddScene(ctx, "nope", board.Payload{Title: "x", TimeOfDay: "NOON"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateScenePayload(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 1)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	s, err := repo.AddScene(ctx, b.Acts()[0].ID, board.Payload{Title: "Draft", Location: "EXT. ROOF"})
	require.NoError(t, err)

	got, err := repo.UpdateScenePayload(ctx, s.ID, board.Payload{Title: "Final", TimeOfDay: "DAWN"})
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Payload.Title)
	assert.Empty(t, got.Payload.Location, "fields are replaced, not merged")
	assert.Equal(t, s.Number, got.Number)

	_, err = repo.UpdateScenePayload(ctx, "ghost", board.Payload{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	read, err := repo.GetScene(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, got, read)

	_, err = repo.GetScene(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteScene_Renumbers(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 1)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	act := b.Acts()[0].ID

	var scenes []board.Scene
	for _, title := range []string{"a", "b", "c", "d"} {
		s, err := repo.AddScene(ctx, act, board.Payload{Title: title})
		require.NoError(t, err)
		scenes = append(scenes, s)
	}

	require.NoError(t, repo.DeleteScene(ctx, scenes[1].ID))
	assert.ErrorIs(t, repo.DeleteScene(ctx, scenes[1].ID), ErrNotFound)

	b, err = repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, b.Validate())
	assert.Equal(t, []string{scenes[0].ID, scenes[2].ID, scenes[3].ID}, sceneIDs(b, act))
}

func TestApplyChanges_PersistsEngineResult(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 2)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	actA, actB := b.Acts()[0].ID, b.Acts()[1].ID

	var created []string
	for _, title := range []string{"s1", "s2", "s3"} {
		s, err := repo.AddScene(ctx, actA, board.Payload{Title: title})
		require.NoError(t, err)
		created = append(created, s.ID)
	}
	b, err = repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)

	res := reorder.Apply(b, reorder.Move{SceneID: created[1], TargetActID: actB})
	require.True(t, res.Applied())
	require.NoError(t, repo.ApplyChanges(ctx, res.Changes))

	reloaded, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, sceneIDs(res.Board, actA), sceneIDs(reloaded, actA))
	assert.Equal(t, sceneIDs(res.Board, actB), sceneIDs(reloaded, actB))
	assert.Equal(t, []string{created[0], created[2]}, sceneIDs(reloaded, actA))
	assert.Equal(t, []string{created[1]}, sceneIDs(reloaded, actB))
	require.NoError(t, reloaded.Validate())

	assert.NoError(t, repo.ApplyChanges(ctx, nil))
}

func TestApplyChanges_LaterChangeWins(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 2)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	actA, actB := b.Acts()[0].ID, b.Acts()[1].ID
	s, err := repo.AddScene(ctx, actA, board.Payload{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.ApplyChanges(ctx, []reorder.Change{
		{SceneID: s.ID, ActID: actB, Number: 1},
		{SceneID: s.ID, ActID: actA, Number: 1},
	}))

	b, err = repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	actID, _ := b.ActOf(s.ID)
	assert.Equal(t, actA, actID)
}

func TestSetActOrdinalsAndRatio(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 3)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)

	res := reorder.MoveAct(b, b.Acts()[2].ID, 1)
	require.True(t, res.Applied())
	require.NoError(t, repo.SetActOrdinals(ctx, res.Changes))

	lastAct := b.Acts()[2].ID
	require.NoError(t, repo.SetActRatio(ctx, lastAct, 0.4))
	assert.ErrorIs(t, repo.SetActRatio(ctx, lastAct, -1), ErrInvalid)
	assert.ErrorIs(t, repo.SetActRatio(ctx, "ghost", 0.5), ErrNotFound)

	reloaded, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, reloaded.Validate())
	assert.Equal(t, lastAct, reloaded.Acts()[0].ID)
	assert.InDelta(t, 0.4, reloaded.Acts()[0].Ratio, 1e-9)

	require.NoError(t, repo.SetProjectRatio(ctx, p.ID, 1.25))
	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, got.CellRatio, 1e-9)
}

func TestRepository_NotReadyProxy(t *testing.T) {
	p := rpc.NewProxy(storeowner.Spawner(filepath.Join(t.TempDir(), "board.db")))
	repo := New(p)

	_, err := repo.ListProjects(testCtx(t))
	assert.ErrorIs(t, err, rpc.ErrNotReady)
}

func TestRenameActAndLayout(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := testCtx(t)

	p, err := repo.CreateProject(ctx, "Heist", 1)
	require.NoError(t, err)
	b, err := repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	act := b.Acts()[0].ID

	require.NoError(t, repo.RenameAct(ctx, act, " Setup "))
	assert.ErrorIs(t, repo.RenameAct(ctx, "ghost", "x"), ErrNotFound)

	require.NoError(t, repo.SetLayout(ctx, p.ID, board.LayoutHorizontal))
	assert.ErrorIs(t, repo.SetLayout(ctx, p.ID, "diagonal"), ErrInvalid)

	b, err = repo.LoadBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Setup", b.Acts()[0].Name)

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, board.LayoutHorizontal, got.LayoutDirection)
}
