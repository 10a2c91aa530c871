package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zennote/logging"
	"zennote/models"
)

type notesFixture struct {
	env   *testEnv
	alice string
	bob   string
}

func newNotesFixture(t *testing.T) *notesFixture {
	t.Helper()
	env := newTestEnv(t)
	alice := register(t, env, "Alice", "alice@example.com", "secret1")["user"].(map[string]any)["id"].(string)
	bob := register(t, env, "Bob", "bob@example.com", "secret1")["user"].(map[string]any)["id"].(string)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	env.notes.WithClock(func() time.Time {
		base = base.Add(time.Minute)
		return base
	})
	return &notesFixture{env: env, alice: alice, bob: bob}
}

func (f *notesFixture) create(t *testing.T, userID string, body map[string]string) map[string]any {
	t.Helper()
	rr := call(t, f.env.notesH.CreateNote, request{body: body, userID: userID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody(t, rr)["note"].(map[string]any)
}

func (f *notesFixture) list(t *testing.T, userID string) []any {
	t.Helper()
	rr := call(t, f.env.notesH.GetNotes, request{method: http.MethodGet, userID: userID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeBody(t, rr)["notes"].([]any)
}

func TestCreateNote(t *testing.T) {
	f := newNotesFixture(t)

	t.Run("Default tag", func(t *testing.T) {
		note := f.create(t, f.alice, map[string]string{"title": "T", "description": "D"})
		assert.Equal(t, "T", note["title"])
		assert.Equal(t, "D", note["description"])
		assert.Equal(t, models.DefaultTag, note["tag"])
		assert.Equal(t, f.alice, note["user_id"])
		assert.NotEmpty(t, note["id"])
		assert.NotEmpty(t, note["created_at"])
	})

	t.Run("Explicit tag", func(t *testing.T) {
		note := f.create(t, f.alice, map[string]string{"title": "T", "description": "D", "tag": "work"})
		assert.Equal(t, "work", note["tag"])
	})

	missing := map[string]map[string]string{
		"Missing title":       {"description": "D"},
		"Missing description": {"title": "T"},
		"Blank title":         {"title": "  ", "description": "D"},
		"Empty body":          {},
	}
	for name, body := range missing {
		t.Run(name, func(t *testing.T) {
			rr := call(t, f.env.notesH.CreateNote, request{body: body, userID: f.bob})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Title and description are required", decodeBody(t, rr)["error"])
		})
	}
	assert.Empty(t, f.list(t, f.bob), "failed creates must not persist")

	t.Run("No user ID in context", func(t *testing.T) {
		rr := call(t, f.env.notesH.CreateNote, request{body: map[string]string{"title": "T", "description": "D"}})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetNotes(t *testing.T) {
	f := newNotesFixture(t)
	first := f.create(t, f.alice, map[string]string{"title": "first", "description": "d"})
	second := f.create(t, f.alice, map[string]string{"title": "second", "description": "d"})
	f.create(t, f.bob, map[string]string{"title": "bob", "description": "d"})

	t.Run("Newest first, own notes only", func(t *testing.T) {
		notes := f.list(t, f.alice)
		require.Len(t, notes, 2)
		assert.Equal(t, second["id"], notes[0].(map[string]any)["id"])
		assert.Equal(t, first["id"], notes[1].(map[string]any)["id"])
	})

	t.Run("Other user", func(t *testing.T) {
		notes := f.list(t, f.bob)
		require.Len(t, notes, 1)
		assert.Equal(t, f.bob, notes[0].(map[string]any)["user_id"])
	})

	t.Run("Empty list is an array", func(t *testing.T) {
		rr := call(t, f.env.notesH.GetNotes, request{method: http.MethodGet, userID: uuid.NewString()})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"notes":[]}`, rr.Body.String())
	})

	t.Run("No user ID in context", func(t *testing.T) {
		rr := call(t, f.env.notesH.GetNotes, request{method: http.MethodGet})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUpdateNote(t *testing.T) {
	f := newNotesFixture(t)
	note := f.create(t, f.alice, map[string]string{"title": "T", "description": "D"})
	id := note["id"].(string)

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{"tag": "work"}, userID: f.alice, noteID: id})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		updated := decodeBody(t, rr)["note"].(map[string]any)
		assert.Equal(t, "T", updated["title"])
		assert.Equal(t, "D", updated["description"])
		assert.Equal(t, "work", updated["tag"])

		stored, err := f.env.notes.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "work", stored.Tag)
		assert.Equal(t, "T", stored.Title)
	})

	t.Run("Empty values are ignored", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{"title": "", "description": "new"}, userID: f.alice, noteID: id})
		require.Equal(t, http.StatusOK, rr.Code)
		updated := decodeBody(t, rr)["note"].(map[string]any)
		assert.Equal(t, "T", updated["title"])
		assert.Equal(t, "new", updated["description"])
	})

	t.Run("No changes", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{}, userID: f.alice, noteID: id})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Someone else's note", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{"title": "hijacked"}, userID: f.bob, noteID: id})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Unauthorized action", decodeBody(t, rr)["error"])

		stored, err := f.env.notes.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "T", stored.Title)
	})

	t.Run("Non-existent note", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{"title": "x"}, userID: f.alice, noteID: uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Note not found", decodeBody(t, rr)["error"])
	})

	t.Run("Malformed id", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, body: map[string]string{"title": "x"}, userID: f.alice, noteID: "42"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		rr := call(t, f.env.notesH.UpdateNote, request{method: http.MethodPut, rawBody: "[", userID: f.alice, noteID: id})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteNote(t *testing.T) {
	f := newNotesFixture(t)
	note := f.create(t, f.alice, map[string]string{"title": "T", "description": "D"})
	id := note["id"].(string)

	t.Run("Someone else's note", func(t *testing.T) {
		rr := call(t, f.env.notesH.DeleteNote, request{method: http.MethodDelete, userID: f.bob, noteID: id})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Len(t, f.list(t, f.alice), 1)
	})

	t.Run("Delete own note", func(t *testing.T) {
		rr := call(t, f.env.notesH.DeleteNote, request{method: http.MethodDelete, userID: f.alice, noteID: id})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"message":"Note deleted successfully"}`, rr.Body.String())
		assert.Empty(t, f.list(t, f.alice))
	})

	t.Run("Delete non-existent note", func(t *testing.T) {
		rr := call(t, f.env.notesH.DeleteNote, request{method: http.MethodDelete, userID: f.alice, noteID: id})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

type failingNotes struct{ err error }

func (f failingNotes) ListByOwner(context.Context, string) ([]models.Note, error) { return nil, f.err }
func (f failingNotes) Create(context.Context, *models.Note) error                 { return f.err }
func (f failingNotes) Get(context.Context, string) (*models.Note, error)          { return nil, f.err }
func (f failingNotes) Update(context.Context, *models.Note) error                 { return f.err }
func (f failingNotes) Delete(context.Context, string, string) error               { return f.err }

func TestNotesStoreFailure(t *testing.T) {
	h := NewNotesHandler(failingNotes{err: errors.New("disk I/O error")}, logging.Discard())
	user := uuid.NewString()

	tests := map[string]struct {
		fn  http.HandlerFunc
		req request
	}{
		"list":   {h.GetNotes, request{method: http.MethodGet, userID: user}},
		"create": {h.CreateNote, request{body: map[string]string{"title": "T", "description": "D"}, userID: user}},
		"update": {h.UpdateNote, request{method: http.MethodPut, body: map[string]string{"tag": "x"}, userID: user, noteID: uuid.NewString()}},
		"delete": {h.DeleteNote, request{method: http.MethodDelete, userID: user, noteID: uuid.NewString()}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rr := call(t, tt.fn, tt.req)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, `{"success":false,"error":"Internal Server Error"}`, rr.Body.String())
		})
	}
}
