package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		page  int
		want  Pagination
	}{
		{"empty", 0, 1, Pagination{CurrentPage: 1, LastPage: 1, PerPage: 10}},
		{"first of three", 25, 1, Pagination{CurrentPage: 1, LastPage: 3, PerPage: 10, Total: 25, From: 1, To: 10}},
		{"partial last page", 25, 3, Pagination{CurrentPage: 3, LastPage: 3, PerPage: 10, Total: 25, From: 21, To: 25}},
		{"exact multiple", 20, 2, Pagination{CurrentPage: 2, LastPage: 2, PerPage: 10, Total: 20, From: 11, To: 20}},
		{"past the end", 25, 9, Pagination{CurrentPage: 9, LastPage: 3, PerPage: 10, Total: 25}},
		{"page zero is page one", 5, 0, Pagination{CurrentPage: 1, LastPage: 1, PerPage: 10, Total: 5, From: 1, To: 5}},
		{"huge page", 25, math.MaxInt, Pagination{CurrentPage: math.MaxInt, LastPage: 3, PerPage: 10, Total: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, tt.page, 10))
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(-4, 10))
	assert.Equal(t, 0, pageOffset(1, 10))
	assert.Equal(t, 20, pageOffset(3, 10))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 10))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/10+2, 10))
	assert.Equal(t, (math.MaxInt/10)*10, pageOffset(math.MaxInt/10+1, 10))
}

func TestPaginationNavigation(t *testing.T) {
	p := Paginate(25, 2, 10)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	first := Paginate(25, 1, 10)
	assert.False(t, first.HasPrev())

	last := Paginate(25, 3, 10)
	assert.False(t, last.HasNext())
}

func TestDashboardService_GetStats(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	dash := NewDashboardService(memLists{f.store})

	home := f.list(t, alice, "Home")
	f.list(t, alice, "Empty")
	f.list(t, bob, "Bob's")
	for i, done := range []bool{true, false, false} {
		_, err := f.tasks.CreateTask(ctx, alice, TaskInput{Title: string(rune('a' + i)), ListID: home, IsCompleted: boolPtr(done)})
		require.NoError(t, err)
	}

	st, err := dash.GetStats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, &StatsResponse{TotalLists: 2, TotalTasks: 3, CompletedTasks: 1, IncompleteTasks: 2}, st)

	f.store.fail = errStoreDown
	_, err = dash.GetStats(ctx, alice)
	assert.ErrorIs(t, err, ErrPersistence)
}
