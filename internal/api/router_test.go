package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isdelr/exercise-tracker/internal/database"
	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/isdelr/exercise-tracker/internal/services"
	"github.com/isdelr/exercise-tracker/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	svc     Services
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	publicDir := filepath.Join(dir, "public")
	viewsDir := filepath.Join(dir, "views")
	require.NoError(t, os.MkdirAll(publicDir, 0o755))
	require.NoError(t, os.MkdirAll(viewsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(viewsDir, "index.html"), []byte("<h1>Exercise tracker</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "style.css"), []byte("body{}"), 0o644))

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	events := services.NewEventService(db)
	svc := Services{
		Users:     services.NewUserService(db),
		Exercises: services.NewExerciseService(db),
		Events:    events,
		Activity:  services.NewActivityRecorder(events, hub),
	}
	return &testServer{
		handler: NewRouter(Options{PublicDir: publicDir, ViewsDir: viewsDir}, hub, svc),
		svc:     svc,
	}
}

func (s *testServer) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(t *testing.T, target string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return s.do(t, http.MethodPost, target, "application/json", string(body))
}

func (s *testServer) createUser(t *testing.T, username string) models.User {
	t.Helper()
	rec := s.postJSON(t, "/api/users", map[string]string{"username": username})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (s *testServer) addExercise(t *testing.T, userID string, body map[string]interface{}) models.ExerciseResponse {
	t.Helper()
	rec := s.postJSON(t, "/api/users/"+userID+"/exercises", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ExerciseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *testServer) getLog(t *testing.T, userID, rawQuery string) models.LogResponse {
	t.Helper()
	target := "/api/users/" + userID + "/logs"
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	rec := s.do(t, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.LogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateThenListUsers(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice")
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice", alice.Username)

	rec := s.do(t, http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var users []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Equal(t, []map[string]string{{"id": alice.ID, "username": "alice"}}, users)
}

func TestListUsersEmptyIsArray(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateUserFromForm(t *testing.T) {
	s := setupTestServer(t)
	form := url.Values{"username": {"bob"}}
	rec := s.do(t, http.MethodPost, "/api/users", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "bob", user.Username)
}

func TestCreateUserMalformedJSON(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/users", "application/json", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddExerciseUnknownUser(t *testing.T) {
	s := setupTestServer(t)
	rec := s.postJSON(t, "/api/users/nobody/exercises", map[string]interface{}{"description": "run", "duration": 30})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found\n", rec.Body.String())
}

func TestGetLogUnknownUser(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/users/nobody/logs", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddExerciseEndToEnd(t *testing.T) {
	s := setupTestServer(t)
	alice := s.createUser(t, "alice")

	rec := s.postJSON(t, "/api/users/"+alice.ID+"/exercises", map[string]interface{}{
		"description": "run",
		"duration":    30,
		"date":        "2023-05-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(
		`{"id":%q,"username":"alice","description":"run","duration":30,"date":"Mon May 01 2023"}`, alice.ID,
	), rec.Body.String())
}

func TestAddExerciseDefaultsToToday(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "carol")

	resp := s.addExercise(t, user.ID, map[string]interface{}{"description": "walk", "duration": 20})
	assert.Equal(t, models.FormatDate(models.Today()), resp.Date)

	logResp := s.getLog(t, user.ID, "")
	require.Len(t, logResp.Log, 1)
	assert.Equal(t, resp.Date, logResp.Log[0].Date)
}

func TestAddExerciseFromForm(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "dave")

	form := url.Values{"description": {"row"}, "duration": {"12.5"}, "date": {"2023-01-02"}}
	rec := s.do(t, http.MethodPost, "/api/users/"+user.ID+"/exercises", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ExerciseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12.5, resp.Duration)
	assert.Equal(t, "Mon Jan 02 2023", resp.Date)
}

func TestAddExerciseRejectsMalformedInput(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "erin")

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{"bad date", map[string]interface{}{"description": "run", "duration": 30, "date": "someday"}, "Invalid date\n"},
		{"bad duration", map[string]interface{}{"description": "run", "duration": "half an hour"}, "Invalid request body\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.postJSON(t, "/api/users/"+user.ID+"/exercises", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	form := url.Values{"description": {"run"}, "duration": {"abc"}}
	rec := s.do(t, http.MethodPost, "/api/users/"+user.ID+"/exercises", "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid duration\n", rec.Body.String())

	assert.Empty(t, s.getLog(t, user.ID, "").Log)
}

func TestGetLogFiltersAndCaps(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "frank")
	for _, d := range []string{"2023-01-01", "2023-02-01", "2023-03-01"} {
		s.addExercise(t, user.ID, map[string]interface{}{"description": "run", "duration": 30, "date": d})
	}

	all := s.getLog(t, user.ID, "")
	assert.Equal(t, "frank", all.Username)
	assert.Equal(t, user.ID, all.ID)
	assert.Equal(t, 3, all.Count)
	assert.Len(t, all.Log, 3)

	ranged := s.getLog(t, user.ID, "from=2023-01-15&to=2023-02-15")
	require.Len(t, ranged.Log, 1)
	assert.Equal(t, ranged.Count, len(ranged.Log))
	assert.Equal(t, models.LogEntry{Description: "run", Duration: 30, Date: "Wed Feb 01 2023"}, ranged.Log[0])

	limited := s.getLog(t, user.ID, "limit=1")
	assert.Equal(t, 1, limited.Count)
	assert.Len(t, limited.Log, 1)

	for _, q := range []string{"limit=0", "limit=-2", "limit=abc"} {
		assert.Equal(t, 3, s.getLog(t, user.ID, q).Count, q)
	}
}

func TestGetLogRejectsMalformedBounds(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "gina")

	rec := s.do(t, http.MethodGet, "/api/users/"+user.ID+"/logs?from=notadate", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid from\n", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/users/"+user.ID+"/logs?to=2023-99-01", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid to\n", rec.Body.String())
}

func TestGetLogDefaultCap(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "hank")

	for i := 0; i < models.DefaultLogLimit+5; i++ {
		_, err := s.svc.Exercises.AddExercise(context.Background(), models.Exercise{UserID: user.ID, Description: "lap", Duration: 1, Date: models.Today()})
		require.NoError(t, err)
	}

	resp := s.getLog(t, user.ID, "")
	assert.Equal(t, models.DefaultLogLimit, resp.Count)
	assert.Len(t, resp.Log, models.DefaultLogLimit)
}

func TestActivityIsRecorded(t *testing.T) {
	s := setupTestServer(t)
	user := s.createUser(t, "ivy")
	s.addExercise(t, user.ID, map[string]interface{}{"description": "yoga", "duration": 60})

	rec := s.do(t, http.MethodGet, "/api/events?limit=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	types := []string{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []string{models.EventUserCreate, models.EventExerciseCreate}, types)
	for _, e := range events {
		require.NotNil(t, e.UserID)
		assert.Equal(t, user.ID, *e.UserID)
	}
}

func TestStoreFailureIsGeneric(t *testing.T) {
	s := setupTestServer(t)
	failing := &testServer{handler: NewRouter(Options{}, websocket.NewHub(), Services{
		Users:     failingUsers{},
		Exercises: s.svc.Exercises,
		Events:    s.svc.Events,
		Activity:  s.svc.Activity,
	})}

	rec := failing.do(t, http.MethodGet, "/api/users", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error\n", rec.Body.String())

	rec = failing.do(t, http.MethodGet, "/api/users/x/logs", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk")
}

func TestLandingPageAndStatic(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Exercise tracker")

	rec = s.do(t, http.MethodGet, "/style.css", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	s := setupTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
