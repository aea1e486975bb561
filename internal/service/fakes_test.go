package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Tomlord1122/todo-lists/internal/domain"
	"github.com/Tomlord1122/todo-lists/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// memStore backs both fake repositories so tasks can see list ownership.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	lists  map[uint]*domain.List
	tasks  map[uint]*domain.Task
	fail   error
}

func newMemStore() *memStore {
	return &memStore{lists: map[uint]*domain.List{}, tasks: map[uint]*domain.Task{}}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) ownerOf(listID uint) (uint, bool) {
	l, ok := m.lists[listID]
	if !ok {
		return 0, false
	}
	return l.UserID, true
}

type memLists struct{ *memStore }

func (r memLists) Create(_ context.Context, list *domain.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	list.ID = r.id()
	list.CreatedAt, list.UpdatedAt = time.Now(), time.Now()
	cp := *list
	r.lists[list.ID] = &cp
	return nil
}

func (r memLists) FindForUser(_ context.Context, id, userID uint) (*domain.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	l, ok := r.lists[id]
	if !ok || l.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r memLists) AllForUser(_ context.Context, userID uint) ([]domain.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []domain.List
	for id := uint(1); id <= r.nextID; id++ {
		l, ok := r.lists[id]
		if !ok || l.UserID != userID {
			continue
		}
		cp := *l
		for _, t := range r.tasks {
			if t.ListID == id {
				cp.TasksCount++
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r memLists) Update(_ context.Context, list *domain.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	l, ok := r.lists[list.ID]
	if !ok || l.UserID != list.UserID {
		return domain.ErrNotFound
	}
	l.Title, l.Description = list.Title, list.Description
	return nil
}

func (r memLists) Delete(_ context.Context, id, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	l, ok := r.lists[id]
	if !ok || l.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.lists, id)
	for tid, t := range r.tasks {
		if t.ListID == id {
			delete(r.tasks, tid)
		}
	}
	return nil
}

func (r memLists) Stats(_ context.Context, userID uint) (domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return domain.Stats{}, r.fail
	}
	var st domain.Stats
	for _, l := range r.lists {
		if l.UserID == userID {
			st.TotalLists++
		}
	}
	for _, t := range r.tasks {
		if owner, _ := r.ownerOf(t.ListID); owner != userID {
			continue
		}
		st.TotalTasks++
		if t.IsCompleted {
			st.CompletedTasks++
		} else {
			st.IncompleteTasks++
		}
	}
	return st, nil
}

type memTasks struct{ *memStore }

func (r memTasks) Create(_ context.Context, userID uint, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if owner, ok := r.ownerOf(task.ListID); !ok || owner != userID {
		return domain.ErrListNotOwned
	}
	task.ID = r.id()
	task.CreatedAt, task.UpdatedAt = time.Now(), time.Now()
	cp := *task
	cp.List = nil
	r.tasks[task.ID] = &cp
	return nil
}

func (r memTasks) FindForUser(_ context.Context, id, userID uint) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if owner, _ := r.ownerOf(t.ListID); owner != userID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTasks) Page(_ context.Context, q repository.TaskQuery) ([]domain.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, 0, r.fail
	}
	var matched []domain.Task
	for id := uint(1); id <= r.nextID; id++ {
		t, ok := r.tasks[id]
		if !ok {
			continue
		}
		if owner, _ := r.ownerOf(t.ListID); owner != q.UserID {
			continue
		}
		if q.Filter == domain.FilterCompleted && !t.IsCompleted ||
			q.Filter == domain.FilterIncomplete && t.IsCompleted {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) {
			continue
		}
		cp := *t
		cp.List = &domain.List{ID: t.ListID, Title: r.lists[t.ListID].Title}
		matched = append(matched, cp)
	}
	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := min(q.Offset+q.Limit, len(matched))
	return matched[q.Offset:end], total, nil
}

func (r memTasks) Update(_ context.Context, userID uint, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if owner, ok := r.ownerOf(task.ListID); !ok || owner != userID {
		return domain.ErrListNotOwned
	}
	t, ok := r.tasks[task.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if owner, _ := r.ownerOf(t.ListID); owner != userID {
		return domain.ErrNotFound
	}
	cp := *task
	cp.List = nil
	r.tasks[task.ID] = &cp
	return nil
}

func (r memTasks) Delete(_ context.Context, id, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if owner, _ := r.ownerOf(t.ListID); owner != userID {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
