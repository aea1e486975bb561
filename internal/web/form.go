package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// FormMode says whether the page's dialog creates a new record or edits one.
type FormMode int

const (
	Creating FormMode = iota
	Editing
)

// FormState is the dialog state of a collection page: create mode, or edit
// mode for exactly one target record.
type FormState struct {
	Mode     FormMode
	TargetID uint
}

func CreateForm() FormState { return FormState{Mode: Creating} }

func EditForm(id uint) FormState { return FormState{Mode: Editing, TargetID: id} }

// FormFromQuery reads ?edit=<id>. Anything else means create mode.
func FormFromQuery(q url.Values) FormState {
	id, err := strconv.ParseUint(q.Get("edit"), 10, 64)
	if err != nil || id == 0 {
		return CreateForm()
	}
	return EditForm(uint(id))
}

func (f FormState) IsEditing() bool { return f.Mode == Editing }

// Action is the URL the form submits to under collection base.
func (f FormState) Action(base string) string {
	if f.IsEditing() {
		return fmt.Sprintf("%s/%d", base, f.TargetID)
	}
	return base
}

// Method is the logical HTTP method, sent through the _method field.
func (f FormState) Method() string {
	if f.IsEditing() {
		return http.MethodPut
	}
	return http.MethodPost
}

func (f FormState) Heading(noun string) string {
	if f.IsEditing() {
		return "Edit " + noun
	}
	return "New " + noun
}

func (f FormState) SubmitLabel() string {
	if f.IsEditing() {
		return "Update"
	}
	return "Create"
}
