package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alintm4/taskdesk/internal/identity"
)

type httpApp struct {
	t       *testing.T
	handler *Handler
	svc     *Service
}

func newHTTPApp(t *testing.T) *httpApp {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	return &httpApp{t: t, handler: NewHandler(svc, nil), svc: svc}
}

func (a *httpApp) request(method, target, ownerID string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if ownerID != "" {
		ctx := identity.ContextWithUser(context.Background(), identity.User{ID: ownerID})
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	switch {
	case target == "/api/tasks" || strings.HasPrefix(target, "/api/tasks?"):
		a.handler.TasksRoot(rec, req)
	case target == "/api/dashboard":
		a.handler.Dashboard(rec, req)
	default:
		a.handler.TasksSub(rec, req)
	}
	return rec
}

func (a *httpApp) decode(rec *httptest.ResponseRecorder, out any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHandler_RequiresIdentity(t *testing.T) {
	app := newHTTPApp(t)

	for _, target := range []string{"/api/tasks", "/api/tasks/some-id", "/api/dashboard"} {
		rec := app.request(http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s without identity", target)
	}
}

func TestHandler_CreateAndFetch(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{
		"title":       "  Buy milk  ",
		"description": "two liters",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created WriteResult
	app.decode(rec, &created)
	assert.Equal(t, "Buy milk", created.Task.Title)
	assert.Equal(t, PriorityHigh, created.Task.Priority)
	assert.Equal(t, StatusPending, created.Task.Status)
	assert.Empty(t, created.Advisories)

	rec = app.request(http.MethodGet, "/api/tasks/"+created.Task.ID, "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Task
	app.decode(rec, &got)
	assert.Equal(t, created.Task.ID, got.ID)
}

func TestHandler_CreateValidationFailure(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{
		"title":    "ab",
		"priority": "urgent",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors []FieldError `json:"errors"`
	}
	app.decode(rec, &body)
	require.Len(t, body.Errors, 2)
}

func TestHandler_CreateAdvisory(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{
		"title":   "Ship release",
		"status":  "completed",
		"dueDate": "2099-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res WriteResult
	app.decode(rec, &res)
	require.Len(t, res.Advisories, 1)
	assert.Equal(t, AdvisoryCompletedWithFutureDueDate, res.Advisories[0].Kind)
}

func TestHandler_CrossOwnerIsNotFound(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{"title": "Mine alone"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created WriteResult
	app.decode(rec, &created)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := app.request(method, "/api/tasks/"+created.Task.ID, "owner2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s as non-owner", method)
	}

	rec = app.request(http.MethodPatch, "/api/tasks/"+created.Task.ID, "owner2", map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Identical outcome for an id that does not exist at all.
	rec = app.request(http.MethodGet, "/api/tasks/no-such-id", "owner2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{"title": "Draft notes"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created WriteResult
	app.decode(rec, &created)

	rec = app.request(http.MethodPatch, "/api/tasks/"+created.Task.ID, "owner1", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated WriteResult
	app.decode(rec, &updated)
	assert.Equal(t, StatusCompleted, updated.Task.Status)

	rec = app.request(http.MethodDelete, "/api/tasks/"+created.Task.ID, "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(http.MethodGet, "/api/tasks/"+created.Task.ID, "owner1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListFilteringAndPaging(t *testing.T) {
	app := newHTTPApp(t)

	for i := 0; i < 12; i++ {
		rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{
			"title": fmt.Sprintf("Task number %02d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := app.request(http.MethodGet, "/api/tasks?page=1", "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page Page
	app.decode(rec, &page)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 12, page.TotalCount)
	assert.True(t, page.HasNext)

	// Unknown filter values act as "no filter".
	rec = app.request(http.MethodGet, "/api/tasks?status=bogus&priority=nope&page=99", "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	app.decode(rec, &page)
	assert.Equal(t, 2, page.Number, "page clamps to last")
	assert.Len(t, page.Items, 2)

	rec = app.request(http.MethodGet, "/api/tasks?search=number+03", "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	app.decode(rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Task number 03", page.Items[0].Title)
}

func TestHandler_Dashboard(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPost, "/api/tasks", "owner1", map[string]any{"title": "Only task", "priority": "high"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(http.MethodGet, "/api/dashboard", "owner1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sum Summary
	app.decode(rec, &sum)
	assert.Equal(t, 1, sum.TotalTasks)
	assert.Equal(t, 1, sum.HighPriorityTasks)
	require.Len(t, sum.RecentTasks, 1)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	app := newHTTPApp(t)

	rec := app.request(http.MethodPut, "/api/tasks", "owner1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = app.request(http.MethodPost, "/api/dashboard", "owner1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
