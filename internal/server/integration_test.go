package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-lists/internal/auth"
	"github.com/Tomlord1122/todo-lists/internal/database/dbtest"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/metrics"
	"github.com/Tomlord1122/todo-lists/internal/repository"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a container runtime")
	}
	db := dbtest.New(t)
	views, err := web.NewRenderer()
	require.NoError(t, err)

	lists := repository.NewGormListRepository(db.GetDB())
	tasks := repository.NewGormTaskRepository(db.GetDB())
	env := &testEnv{tokens: auth.NewTokens("e2e-secret", time.Hour)}
	env.handler = (&Server{Deps: Deps{
		Lists:     service.NewListService(lists),
		Tasks:     service.NewTaskService(tasks, lists, 10),
		Dashboard: service.NewDashboardService(lists),
		DB:        db,
		Flash:     flash.NewCookieStore(),
		Tokens:    env.tokens,
		Metrics:   metrics.New(),
		Views:     views,
	}}).RegisterRoutes()

	aliceToken := env.token(t, alice)
	bobToken := env.token(t, bob)

	getJSON := func(t *testing.T, path, token string) map[string]any {
		t.Helper()
		rec := env.do(t, request{method: http.MethodGet, path: path, token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decodeBody(t, rec)
	}
	taskTitles := func(t *testing.T, path, token string) []string {
		t.Helper()
		data := getJSON(t, path, token)["tasks"].(map[string]any)["data"].([]any)
		out := make([]string, 0, len(data))
		for _, d := range data {
			out = append(out, d.(map[string]any)["title"].(string))
		}
		return out
	}

	t.Run("groceries", func(t *testing.T) {
		rec := env.do(t, request{method: http.MethodPost, path: "/lists", form: url.Values{"title": {"Groceries"}}, html: true, token: aliceToken})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		created := getJSON(t, "/lists", aliceToken)["lists"].([]any)
		require.Len(t, created, 1)
		listID := uint(created[0].(map[string]any)["id"].(float64))

		rec = env.do(t, request{method: http.MethodPost, path: "/tasks", json: fmt.Sprintf(`{"title":"Milk","list_id":%d}`, listID), token: aliceToken})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		data := getJSON(t, "/tasks", aliceToken)["tasks"].(map[string]any)["data"].([]any)
		require.Len(t, data, 1)
		taskID := uint(data[0].(map[string]any)["id"].(float64))
		assert.Equal(t, false, data[0].(map[string]any)["is_completed"])

		rec = env.do(t, request{
			method: http.MethodPost,
			path:   fmt.Sprintf("/tasks/%d", taskID),
			form: url.Values{
				"_method":      {"PUT"},
				"title":        {"Milk"},
				"list_id":      {fmt.Sprint(listID)},
				"is_completed": {"0", "1"},
			},
			html:  true,
			token: aliceToken,
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		assert.Equal(t, []string{"Milk"}, taskTitles(t, "/tasks?filter=completed", aliceToken))
		assert.Empty(t, taskTitles(t, "/tasks?filter=incomplete", aliceToken))

		// Bob sees nothing and can change nothing.
		assert.Empty(t, getJSON(t, "/lists", bobToken)["lists"])
		assert.Empty(t, taskTitles(t, "/tasks", bobToken))
		rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/lists/%d", listID), token: bobToken})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = env.do(t, request{method: http.MethodPut, path: fmt.Sprintf("/tasks/%d", taskID), json: fmt.Sprintf(`{"title":"Mine","list_id":%d}`, listID), token: bobToken})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/lists/%d", listID), token: aliceToken})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Empty(t, taskTitles(t, "/tasks", aliceToken))

		stats := getJSON(t, "/dashboard", aliceToken)["stats"].(map[string]any)
		assert.Equal(t, float64(0), stats["total_tasks"])
	})

	t.Run("paging and search", func(t *testing.T) {
		dbtest.Reset(t, db.GetDB())
		rec := env.do(t, request{method: http.MethodPost, path: "/lists", json: `{"title":"Big"}`, token: aliceToken})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		for i := 1; i <= 25; i++ {
			title := fmt.Sprintf("chore %02d", i)
			if i%5 == 0 {
				title = fmt.Sprintf("Shopping %02d", i)
			}
			rec := env.do(t, request{method: http.MethodPost, path: "/tasks", json: fmt.Sprintf(`{"title":%q,"list_id":1}`, title), token: aliceToken})
			require.Equal(t, http.StatusSeeOther, rec.Code)
		}

		third := getJSON(t, "/tasks?page=3", aliceToken)["tasks"].(map[string]any)
		assert.Len(t, third["data"], 5)
		assert.Equal(t, float64(3), third["last_page"])
		assert.Equal(t, float64(21), third["from"])

		huge := getJSON(t, "/tasks?page=9223372036854775807", aliceToken)["tasks"].(map[string]any)
		assert.Empty(t, huge["data"])
		assert.Equal(t, float64(0), huge["from"])
		assert.Equal(t, float64(0), huge["to"])

		assert.Equal(t, []string{"Shopping 05", "Shopping 10", "Shopping 15", "Shopping 20", "Shopping 25"},
			taskTitles(t, "/tasks?search=SHOP", aliceToken))

		rec = env.do(t, request{method: http.MethodPost, path: "/tasks", json: `{"title":"","list_id":1}`, token: aliceToken})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, float64(25), getJSON(t, "/dashboard", aliceToken)["stats"].(map[string]any)["total_tasks"])
	})
}
