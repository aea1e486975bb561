package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/service"
)

type DashboardPage struct {
	Stats *service.StatsResponse
	Flash flash.Flash
}

type ListFormValues struct {
	Title       string
	Description string
}

type ListsPage struct {
	Lists  []service.ListResponse
	Form   FormState
	Values ListFormValues
	Errors map[string]string
	Flash  flash.Flash
}

// NewListsPage prepares the list collection view. In edit mode the form is
// prefilled from the target list; an unknown target falls back to create mode.
func NewListsPage(lists []service.ListResponse, form FormState, fl flash.Flash) *ListsPage {
	p := &ListsPage{Lists: lists, Form: form, Flash: fl}
	if form.IsEditing() {
		p.Form = CreateForm()
		for _, l := range lists {
			if l.ID == form.TargetID {
				p.Form = form
				p.Values = ListFormValues{Title: l.Title, Description: deref(l.Description)}
				break
			}
		}
	}
	return p
}

// Filters echoes the task index query back to the page.
type Filters struct {
	Search string `json:"search"`
	Filter string `json:"filter"`
}

// PageURL links to page n of the task index with the same search and filter.
func (f Filters) PageURL(n int) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Filter != "" && f.Filter != "all" {
		q.Set("filter", f.Filter)
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if len(q) == 0 {
		return "/tasks"
	}
	return "/tasks?" + q.Encode()
}

type TaskFormValues struct {
	Title       string
	Description string
	DueDate     string
	ListID      uint
	IsCompleted bool
}

type TasksPage struct {
	Tasks   *service.TaskPage
	Lists   []service.ListResponse
	Filters Filters
	Form    FormState
	Values  TaskFormValues
	Errors  map[string]string
	Flash   flash.Flash
}

func NewTasksPage(tasks *service.TaskPage, lists []service.ListResponse, filters Filters, form FormState, fl flash.Flash) *TasksPage {
	p := &TasksPage{Tasks: tasks, Lists: lists, Filters: filters, Form: form, Flash: fl}
	if form.IsEditing() {
		p.Form = CreateForm()
		for _, t := range tasks.Data {
			if t.ID == form.TargetID {
				p.Form = form
				p.Values = TaskFormValues{
					Title:       t.Title,
					Description: deref(t.Description),
					DueDate:     deref(t.DueDate),
					ListID:      t.ListID,
					IsCompleted: t.IsCompleted,
				}
				break
			}
		}
	}
	return p
}

func (p *TasksPage) PrevURL() string { return p.Filters.PageURL(p.Tasks.CurrentPage - 1) }

func (p *TasksPage) NextURL() string { return p.Filters.PageURL(p.Tasks.CurrentPage + 1) }

// FormAction submits to the create or update URL, carrying the current query
// so a failed submission re-renders the same page.
func (p *TasksPage) FormAction() string {
	return p.Form.Action("/tasks") + strings.TrimPrefix(p.Filters.PageURL(p.Tasks.CurrentPage), "/tasks")
}

// EditURL keeps the current query so the edited row stays on screen.
func (p *TasksPage) EditURL(id uint) string {
	u := p.Filters.PageURL(p.Tasks.CurrentPage)
	sep := "?"
	if len(u) > len("/tasks") {
		sep = "&"
	}
	return u + sep + "edit=" + strconv.FormatUint(uint64(id), 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
