package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/reorder"
)

// isolateConfig keeps tests away from the user's config and data dirs.
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"CONFIG", "DATABASE_PATH", "DATABASE_INIT_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv("PLOTBOARD_"+key, "")
	}
}

// tester runs CLI invocations against one database file.
type tester struct {
	t  *testing.T
	db string
}

func newTester(t *testing.T) *tester {
	t.Helper()
	isolateConfig(t)
	return &tester{t: t, db: filepath.Join(t.TempDir(), "board.db")}
}

func (h *tester) exec(format string, args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", h.db, "--format", format}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// text runs a command with text output and requires success.
func (h *tester) text(args ...string) string {
	h.t.Helper()
	out, err := h.exec("text", args...)
	require.NoError(h.t, err, "plotboard %v: %s", args, out)
	return out
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// json runs a command with JSON output and decodes data into v on success.
func (h *tester) json(v any, args ...string) {
	h.t.Helper()
	out, err := h.exec("json", args...)
	require.NoError(h.t, err, "plotboard %v: %s", args, out)

	var resp jsonResponse
	require.NoError(h.t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(h.t, "ok", resp.Status)
	if v != nil {
		require.NoError(h.t, json.Unmarshal(resp.Data, v))
	}
}

// fail runs a command expected to fail and returns its error code and exit code.
func (h *tester) fail(args ...string) (string, int) {
	h.t.Helper()
	out, err := h.exec("json", args...)
	require.Error(h.t, err, "plotboard %v should fail", args)

	var resp jsonResponse
	require.NoError(h.t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(h.t, "error", resp.Status)
	require.NotNil(h.t, resp.Error)
	return resp.Error.Code, GetExitCode(err)
}

type boardJSON struct {
	Project board.Project `json:"project"`
	Acts    []struct {
		board.Act
		Scenes []board.Scene `json:"scenes"`
	} `json:"acts"`
}

func (b boardJSON) titles(act int) []string {
	out := []string{}
	for _, s := range b.Acts[act].Scenes {
		out = append(out, s.Payload.Title)
	}
	return out
}

func (h *tester) board(projectID string) boardJSON {
	h.t.Helper()
	var b boardJSON
	h.json(&b, "board", "show", projectID)
	return b
}

func (h *tester) project(name string, acts string) board.Project {
	h.t.Helper()
	var p board.Project
	h.json(&p, "project", "create", name, "--acts", acts)
	return p
}

func (h *tester) scene(actID, title string, extra ...string) board.Scene {
	h.t.Helper()
	var s board.Scene
	h.json(&s, append([]string{"scene", "add", actID, "--title", title}, extra...)...)
	return s
}

func TestProjectLifecycle(t *testing.T) {
	h := newTester(t)

	p := h.project("The Heist", "3")
	assert.Equal(t, "The Heist", p.Name)
	assert.Equal(t, 3, p.ActStructure)
	assert.Equal(t, board.LayoutVertical, p.LayoutDirection)

	var list []board.Project
	h.json(&list, "project", "list")
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	assert.Contains(t, h.text("project", "list"), "The Heist")

	var laid board.Project
	h.json(&laid, "project", "layout", p.ID, "horizontal")
	assert.Equal(t, board.LayoutHorizontal, laid.LayoutDirection)

	var sized board.Project
	h.json(&sized, "project", "ratio", p.ID, "1.25")
	assert.InDelta(t, 1.25, sized.CellRatio, 1e-9)

	h.json(nil, "project", "delete", p.ID)
	h.json(&list, "project", "list")
	assert.Empty(t, list)

	code, exit := h.fail("project", "delete", p.ID)
	assert.Equal(t, ErrCodeNotFound, code)
	assert.Equal(t, ExitCommandError, exit)
}

func TestProjectCreate_Invalid(t *testing.T) {
	h := newTester(t)

	code, exit := h.fail("project", "create", "   ")
	assert.Equal(t, ErrCodeInvalid, code)
	assert.Equal(t, ExitCommandError, exit)

	p := h.project("Heist", "1")
	code, _ = h.fail("project", "ratio", p.ID, "wide")
	assert.Equal(t, ErrCodeInvalid, code)
	code, _ = h.fail("project", "layout", p.ID, "diagonal")
	assert.Equal(t, ErrCodeInvalid, code)
}

func TestSceneCommands(t *testing.T) {
	h := newTester(t)
	p := h.project("Heist", "1")
	act := h.board(p.ID).Acts[0].ID

	s1 := h.scene(act, "Opening", "--location", "EXT. ROOF", "--time", "night")
	assert.Equal(t, 1, s1.Number)
	assert.Equal(t, "NIGHT", s1.Payload.TimeOfDay)
	h.scene(act, "Crew")
	h.scene(act, "Vault")

	var edited board.Scene
	h.json(&edited, "scene", "edit", s1.ID, "--location", "INT. VAULT")
	assert.Equal(t, "Opening", edited.Payload.Title, "unset flags keep their value")
	assert.Equal(t, "INT. VAULT", edited.Payload.Location)
	assert.Equal(t, "NIGHT", edited.Payload.TimeOfDay)

	h.json(&edited, "scene", "edit", s1.ID, "--time", "")
	assert.Empty(t, edited.Payload.TimeOfDay)

	code, _ := h.fail("scene", "edit", s1.ID, "--time", "NOON")
	assert.Equal(t, ErrCodeInvalid, code)
	code, _ = h.fail("scene", "add", "ghost-act", "--title", "x")
	assert.Equal(t, ErrCodeNotFound, code)

	h.json(nil, "scene", "delete", s1.ID)
	b := h.board(p.ID)
	assert.Equal(t, []string{"Crew", "Vault"}, b.titles(0))
	assert.Equal(t, 1, b.Acts[0].Scenes[0].Number)
	assert.Equal(t, 2, b.Acts[0].Scenes[1].Number)

	out := h.text("board", "show", p.ID)
	assert.Contains(t, out, "1. Crew")
	assert.Contains(t, out, "2. Vault")
}

func TestMoveCommand(t *testing.T) {
	h := newTester(t)
	p := h.project("Heist", "2")
	b := h.board(p.ID)
	actA, actB := b.Acts[0].ID, b.Acts[1].ID

	s1 := h.scene(actA, "One")
	s2 := h.scene(actA, "Two")
	s3 := h.scene(actA, "Three")

	var mv struct {
		Move    reorder.Move     `json:"move"`
		Changes []reorder.Change `json:"changes"`
		Anchor  *reorder.Anchor  `json:"anchor"`
	}
	h.json(&mv, "move", p.ID, s2.ID, actB)
	assert.Equal(t, []reorder.Change{
		{SceneID: s3.ID, ActID: actA, Number: 2},
		{SceneID: s2.ID, ActID: actB, Number: 1},
	}, mv.Changes)
	require.NotNil(t, mv.Anchor)
	assert.Equal(t, s3.ID, mv.Anchor.SceneID)

	b = h.board(p.ID)
	assert.Equal(t, []string{"One", "Three"}, b.titles(0))
	assert.Equal(t, []string{"Two"}, b.titles(1))

	h.json(&mv, "move", p.ID, s1.ID, actB, "--over", s2.ID)
	b = h.board(p.ID)
	assert.Equal(t, []string{"Three"}, b.titles(0))
	assert.Equal(t, []string{"One", "Two"}, b.titles(1))

	assert.Contains(t, h.text("move", p.ID, s1.ID, actB, "--over", s1.ID), "already in place")

	code, exit := h.fail("move", p.ID, s1.ID, "ghost")
	assert.Equal(t, ErrCodeMoveIgnored, code)
	assert.Equal(t, ExitFailure, exit)

	code, _ = h.fail("move", "ghost-project", s1.ID, actA)
	assert.Equal(t, ErrCodeNotFound, code)
}

func TestDropCommand(t *testing.T) {
	h := newTester(t)
	p := h.project("Heist", "2")
	b := h.board(p.ID)
	actA, actB := b.Acts[0].ID, b.Acts[1].ID

	x := h.scene(actA, "X")
	y := h.scene(actA, "Y")
	z := h.scene(actB, "Z")

	h.json(nil, "drop", p.ID, x.ID, z.ID)
	b = h.board(p.ID)
	assert.Equal(t, []string{"Y"}, b.titles(0))
	assert.Equal(t, []string{"X", "Z"}, b.titles(1))

	h.json(nil, "drop", p.ID, y.ID, actB)
	b = h.board(p.ID)
	assert.Empty(t, b.titles(0))
	assert.Equal(t, []string{"Y", "X", "Z"}, b.titles(1), "no earlier act has scenes, so Y goes to the head")

	code, _ := h.fail("drop", p.ID, x.ID, "nowhere")
	assert.Equal(t, ErrCodeMoveIgnored, code)
}

func TestActCommands(t *testing.T) {
	h := newTester(t)
	p := h.project("Heist", "3")
	b := h.board(p.ID)
	first, last := b.Acts[0].ID, b.Acts[2].ID

	h.json(nil, "act", "rename", last, "Finale")
	h.json(nil, "act", "ratio", last, "0.5")

	var moved struct {
		Changes []reorder.ActChange `json:"changes"`
	}
	h.json(&moved, "act", "move", p.ID, last, "1")
	assert.Len(t, moved.Changes, 3)

	b = h.board(p.ID)
	assert.Equal(t, last, b.Acts[0].ID)
	assert.Equal(t, "Finale", b.Acts[0].Name)
	assert.InDelta(t, 0.5, b.Acts[0].Ratio, 1e-9)
	assert.Equal(t, first, b.Acts[1].ID)

	code, exit := h.fail("act", "move", p.ID, last, "9")
	assert.Equal(t, ErrCodeMoveIgnored, code)
	assert.Equal(t, ExitFailure, exit)

	code, _ = h.fail("act", "ratio", last, "NaN")
	assert.Equal(t, ErrCodeInvalid, code)
	code, _ = h.fail("act", "rename", "ghost", "x")
	assert.Equal(t, ErrCodeNotFound, code)
}

func TestExportCommand(t *testing.T) {
	h := newTester(t)
	p := h.project("Heist", "1")
	h.scene(h.board(p.ID).Acts[0].ID, "Opening")

	out := filepath.Join(t.TempDir(), "snapshot.db")
	var exp exportView
	h.json(&exp, "export", out)
	assert.Equal(t, out, exp.Path)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.EqualValues(t, exp.Bytes, info.Size())

	copyOf := &tester{t: t, db: out}
	b := copyOf.board(p.ID)
	assert.Equal(t, []string{"Opening"}, b.titles(0))
}

func TestSeedCommand(t *testing.T) {
	h := newTester(t)
	file := filepath.Join("..", "seed", "testdata", "heist.cue")

	var dry seedView
	h.json(&dry, "seed", file, "--dry-run")
	assert.True(t, dry.DryRun)
	assert.Equal(t, 3, dry.Acts)
	assert.Equal(t, 3, dry.Scenes)

	var list []board.Project
	h.json(&list, "project", "list")
	assert.Empty(t, list, "dry run writes nothing")

	var seeded seedView
	h.json(&seeded, "seed", file)
	require.NotEmpty(t, seeded.ProjectID)

	b := h.board(seeded.ProjectID)
	assert.Equal(t, []string{"Opening", "The Crew"}, b.titles(0))
	assert.Equal(t, "Setup", b.Acts[0].Name)

	code, exit := h.fail("seed", filepath.Join("..", "seed", "testdata", "bad_time.cue"))
	assert.Equal(t, ErrCodeSeedInvalid, code)
	assert.Equal(t, ExitFailure, exit)
}

func TestStoreUnavailable(t *testing.T) {
	h := newTester(t)
	h.db = t.TempDir()

	code, exit := h.fail("project", "list")
	assert.Equal(t, ErrCodeStore, code)
	assert.Equal(t, ExitCommandError, exit)
}
