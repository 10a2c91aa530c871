package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"zennote/auth"
	"zennote/db"
	"zennote/db/dbtest"
	"zennote/logging"
)

type testEnv struct {
	users  *db.UserStore
	notes  *db.NoteStore
	tokens *auth.TokenService
	auth   *AuthHandler
	notesH *NotesHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.Open(t)
	env := &testEnv{
		users:  db.NewUserStore(conn),
		notes:  db.NewNoteStore(conn),
		tokens: auth.NewTokenService([]byte("handlers-test-secret"), time.Hour),
	}
	env.auth = NewAuthHandler(env.users, env.tokens, bcrypt.MinCost, logging.Discard())
	env.notesH = NewNotesHandler(env.notes, logging.Discard())
	return env
}

type request struct {
	method  string
	body    any
	rawBody string
	userID  string
	noteID  string
}

func call(t *testing.T, h http.HandlerFunc, r request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch {
	case r.rawBody != "":
		buf.WriteString(r.rawBody)
	case r.body != nil:
		require.NoError(t, json.NewEncoder(&buf).Encode(r.body))
	}
	method := r.method
	if method == "" {
		method = http.MethodPost
	}
	req := httptest.NewRequest(method, "/", &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if r.userID != "" {
		ctx = auth.WithUserID(ctx, r.userID)
	}
	if r.noteID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", r.noteID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	rr := httptest.NewRecorder()
	h(rr, req.WithContext(ctx))
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}
