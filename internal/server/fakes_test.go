package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-lists/internal/auth"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/metrics"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

type listCall struct {
	userID, id uint
	in         service.ListInput
}

type fakeLists struct {
	byUser map[uint][]service.ListResponse
	err    error

	created []listCall
	updated []listCall
	deleted []listCall
}

func (f *fakeLists) GetLists(_ context.Context, userID uint) ([]service.ListResponse, error) {
	if out, ok := f.byUser[userID]; ok {
		return out, nil
	}
	return []service.ListResponse{}, nil
}

func (f *fakeLists) CreateList(_ context.Context, userID uint, in service.ListInput) (*service.ListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, listCall{userID: userID, in: in})
	return &service.ListResponse{ID: uint(len(f.created)), Title: in.Title}, nil
}

func (f *fakeLists) UpdateList(_ context.Context, userID, id uint, in service.ListInput) (*service.ListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, listCall{userID: userID, id: id, in: in})
	return &service.ListResponse{ID: id, Title: in.Title}, nil
}

func (f *fakeLists) DeleteList(_ context.Context, userID, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, listCall{userID: userID, id: id})
	return nil
}

type taskCall struct {
	userID, id uint
	in         service.TaskInput
}

type fakeTasks struct {
	page    *service.TaskPage
	err     error
	queries []service.TaskQuery

	created []taskCall
	updated []taskCall
	deleted []taskCall
}

func (f *fakeTasks) GetTasks(_ context.Context, _ uint, q service.TaskQuery) (*service.TaskPage, error) {
	f.queries = append(f.queries, q)
	if f.page != nil {
		return f.page, nil
	}
	return &service.TaskPage{Data: []service.TaskResponse{}, Pagination: service.Paginate(0, q.Page, 10)}, nil
}

func (f *fakeTasks) CreateTask(_ context.Context, userID uint, in service.TaskInput) (*service.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, taskCall{userID: userID, in: in})
	return &service.TaskResponse{ID: uint(len(f.created)), Title: in.Title}, nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, userID, id uint, in service.TaskInput) (*service.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, taskCall{userID: userID, id: id, in: in})
	return &service.TaskResponse{ID: id, Title: in.Title}, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, userID, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, taskCall{userID: userID, id: id})
	return nil
}

type fakeDashboard struct {
	stats service.StatsResponse
}

func (f *fakeDashboard) GetStats(context.Context, uint) (*service.StatsResponse, error) {
	st := f.stats
	return &st, nil
}

type fakeDB struct {
	status string
}

func (f *fakeDB) Health() map[string]string {
	return map[string]string{"status": f.status, "message": "It's healthy"}
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) GetDB() *gorm.DB { return nil }

func (f *fakeDB) Migrate(context.Context, string) error { return nil }

type testEnv struct {
	lists     *fakeLists
	tasks     *fakeTasks
	dashboard *fakeDashboard
	db        *fakeDB
	metrics   *metrics.Metrics
	tokens    *auth.Tokens
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	views, err := web.NewRenderer()
	require.NoError(t, err)

	env := &testEnv{
		lists:     &fakeLists{byUser: map[uint][]service.ListResponse{}},
		tasks:     &fakeTasks{},
		dashboard: &fakeDashboard{},
		db:        &fakeDB{status: "up"},
		metrics:   metrics.New(),
		tokens:    auth.NewTokens("test-secret", time.Hour),
	}
	s := &Server{Deps: Deps{
		Lists:     env.lists,
		Tasks:     env.tasks,
		Dashboard: env.dashboard,
		DB:        env.db,
		Flash:     flash.NewCookieStore(),
		Tokens:    env.tokens,
		Metrics:   env.metrics,
		Views:     views,
	}}
	env.handler = s.RegisterRoutes()
	return env
}

func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	raw, err := e.tokens.Generate(userID)
	require.NoError(t, err)
	return raw
}
