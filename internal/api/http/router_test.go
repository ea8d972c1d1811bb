package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-board/internal/api/http"
	"github.com/spec-kit/issue-board/internal/api/http/handlers"
	"github.com/spec-kit/issue-board/internal/events"
	"github.com/spec-kit/issue-board/internal/observability"
	"github.com/spec-kit/issue-board/internal/persistence"
	"github.com/spec-kit/issue-board/internal/repository"
	"github.com/spec-kit/issue-board/internal/seed"
	"github.com/spec-kit/issue-board/internal/service"
)

type testServer struct {
	app     *fiber.App
	store   *repository.TicketStore
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	fixture, err := seed.Load("")
	require.NoError(t, err)
	users := repository.NewUserDirectory(fixture.Users)
	store, err := repository.NewTicketStore(users, repository.StoreConfig{
		Projects:       []string{"PROJECT", "DEMO", "TEST"},
		DefaultProject: "PROJECT",
		CurrentUserID:  "1",
	})
	require.NoError(t, err)
	require.NoError(t, store.Seed(fixture.Tickets))

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Users:      users,
		History:    repository.NewTicketHistoryRepository(),
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler("issue-board", "test", store, &persistence.Redis{}),
		Board:     handlers.NewBoardHandler(ticketService, metrics),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Selection: handlers.NewSelectionHandler(ticketService, service.NewSelection(store)),
	})
	return testServer{app: app, store: store, metrics: metrics}
}

func (s testServer) do(t *testing.T, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data object in %v", body)
	return data
}

func ticketKeys(t *testing.T, body map[string]any) []string {
	t.Helper()
	items, ok := body["data"].([]any)
	require.True(t, ok, "missing data list in %v", body)
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.(map[string]any)["key"].(string))
	}
	return keys
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = srv.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["redis"])

	srv.store.Close()
	status, body = srv.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(body))
}

func TestMetaAndUsers(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/meta", "")
	require.Equal(t, http.StatusOK, status)
	meta := dataMap(t, body)
	assert.Equal(t, "PROJECT", meta["default_project"])
	assert.Equal(t, []any{"todo", "in-progress", "in-review", "done"}, meta["statuses"])
	assert.Equal(t, []any{"low", "medium", "high", "urgent"}, meta["priorities"])
	assert.Equal(t, "1", meta["current_user"].(map[string]any)["id"])

	status, body = srv.do(t, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 4)
}

func TestListTicketsFilters(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all", query: "", want: []string{"PROJ-101", "PROJ-102", "PROJ-103", "PROJ-104", "PROJ-105"}},
		{name: "search summary", query: "?search=DARK", want: []string{"PROJ-103"}},
		{name: "search key", query: "?search=proj-10", want: []string{"PROJ-101", "PROJ-102", "PROJ-103", "PROJ-104", "PROJ-105"}},
		{name: "status list", query: "?status=todo,done", want: []string{"PROJ-102", "PROJ-104"}},
		{name: "priority", query: "?priority=urgent", want: []string{"PROJ-105"}},
		{name: "assignee", query: "?assignee=1", want: []string{"PROJ-101", "PROJ-105"}},
		{name: "no match", query: "?search=nothing-like-this", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := srv.do(t, http.MethodGet, "/api/tickets"+tc.query, "")
			require.Equal(t, http.StatusOK, status)
			got := ticketKeys(t, body)
			if diff := cmp.Diff(tc.want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			assert.EqualValues(t, len(tc.want), body["total"])
		})
	}
}

func TestListTicketsRejectsUnknownStatus(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/tickets?status=blocked", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestCreateTicket(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPost, "/api/tickets",
		`{"summary":"Export board","description":"CSV export of the list view","priority":"high","assignee_id":"3"}`)
	require.Equal(t, http.StatusCreated, status)
	ticket := dataMap(t, body)
	assert.Equal(t, "PROJECT-101", ticket["key"])
	assert.Equal(t, "todo", ticket["status"])
	assert.Equal(t, "high", ticket["priority"])
	assert.Equal(t, "story", ticket["issue_type"])
	assert.Equal(t, "3", ticket["assignee"].(map[string]any)["id"])
	assert.Equal(t, "1", ticket["reporter"].(map[string]any)["id"])
	assert.Equal(t, 6, srv.store.Len())

	_, list := srv.do(t, http.MethodGet, "/api/tickets", "")
	assert.Equal(t, "PROJECT-101", ticketKeys(t, list)[0])
}

func TestCreateTicketValidation(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPost, "/api/tickets", `{"summary":"  ","description":"","priority":"whenever"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "summary")
	assert.Contains(t, details, "description")
	assert.Contains(t, details, "priority")
	assert.Equal(t, 5, srv.store.Len())

	status, body = srv.do(t, http.MethodPost, "/api/tickets", `{"summary":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestGetTicketByIDOrKey(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/tickets/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PROJ-101", dataMap(t, body)["key"])
	assert.Len(t, dataMap(t, body)["comments"], 2)

	status, body = srv.do(t, http.MethodGet, "/api/tickets/proj-103", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "3", dataMap(t, body)["id"])

	status, body = srv.do(t, http.MethodGet, "/api/tickets/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestUpdateTicket(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPatch, "/api/tickets/2", `{"status":"done","assignee_id":""}`)
	require.Equal(t, http.StatusOK, status)
	ticket := dataMap(t, body)
	assert.Equal(t, "done", ticket["status"])
	assert.Nil(t, ticket["assignee"])
	assert.Equal(t, "medium", ticket["priority"])

	status, body = srv.do(t, http.MethodPatch, "/api/tickets/2", `{"status":"blocked"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = srv.do(t, http.MethodPatch, "/api/tickets/999", `{"status":"done"}`)
	assert.Equal(t, http.StatusNotFound, status)

	untouched, ok := srv.store.SelectByID("1")
	require.True(t, ok)
	assert.Equal(t, "in-progress", string(untouched.Status))
}

func TestTicketHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/tickets/3/history", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	_, _ = srv.do(t, http.MethodPatch, "/api/tickets/3", `{"status":"done"}`)
	status, body = srv.do(t, http.MethodGet, "/api/tickets/PROJ-103/history", "")
	require.Equal(t, http.StatusOK, status)
	entries := body["data"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "STATUS_CHANGE", entry["change_type"])
	assert.Equal(t, map[string]any{"status": "in-review"}, entry["old_value"])
	assert.Equal(t, map[string]any{"status": "done"}, entry["new_value"])

	status, _ = srv.do(t, http.MethodGet, "/api/tickets/missing/history", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddComment(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPost, "/api/tickets/PROJ-102/comments", `{"content":"Profiling shows N+1 queries."}`)
	require.Equal(t, http.StatusCreated, status)
	comments := dataMap(t, body)["comments"].([]any)
	require.Len(t, comments, 1)
	comment := comments[0].(map[string]any)
	assert.Equal(t, "Profiling shows N+1 queries.", comment["content"])
	assert.Equal(t, "1", comment["author"].(map[string]any)["id"])

	status, body = srv.do(t, http.MethodPost, "/api/tickets/2/comments", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	ticket, ok := srv.store.SelectByID("2")
	require.True(t, ok)
	assert.Len(t, ticket.Comments, 1)
}

func TestSelectionFollowsStore(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/selection", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, http.MethodPut, "/api/selection/PROJ-104", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4", dataMap(t, body)["id"])

	_, _ = srv.do(t, http.MethodPatch, "/api/tickets/4", `{"priority":"low"}`)
	status, body = srv.do(t, http.MethodGet, "/api/selection", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "low", dataMap(t, body)["priority"])

	status, _ = srv.do(t, http.MethodDelete, "/api/selection", "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = srv.do(t, http.MethodGet, "/api/selection", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, _ = srv.do(t, http.MethodGet, "/api/tickets/missing", "")
	status, body := srv.do(t, http.MethodGet, "/debug/metrics", "")
	require.Equal(t, http.StatusOK, status)
	snapshot := dataMap(t, body)
	assert.NotEmpty(t, snapshot["requests"])
	assert.NotEmpty(t, snapshot["errors"])
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-42")
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
