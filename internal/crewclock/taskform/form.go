// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package taskform holds the new-task form as an immutable value, a reducer
// over it and the submission path to the backend.
package taskform

import (
	"strings"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/validate"
)

// FormState is the content of the new-task form. It is passed by value and
// never modified in place.
type FormState struct {
	Title       string         `json:"title" validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"max=1000"`
	Priority    model.Priority `json:"priority" validate:"oneof=low medium high"`
	AssigneeID  string         `json:"assignee_id"`
	ProjectID   string         `json:"project_id"`
	ListID      string         `json:"list_id"`
}

// Initial is the empty form. listID preselects a task list.
func Initial(listID string) FormState {
	return FormState{Priority: model.PriorityMedium, ListID: listID}
}

type ActionType string

const (
	SetTitle       ActionType = "set_title"
	SetDescription ActionType = "set_description"
	SetPriority    ActionType = "set_priority"
	SetAssignee    ActionType = "set_assignee"
	SetProject     ActionType = "set_project"
	SetList        ActionType = "set_list"
	Reset          ActionType = "reset"
)

// Action is one edit of the form. For Reset, Value is the list to keep
// preselected.
type Action struct {
	Type  ActionType
	Value string
}

// Reduce applies a to s and returns the new state.
func Reduce(s FormState, a Action) FormState {
	switch a.Type {
	case SetTitle:
		s.Title = a.Value
	case SetDescription:
		s.Description = a.Value
	case SetPriority:
		s.Priority = model.Priority(a.Value)
	case SetAssignee:
		s.AssigneeID = a.Value
	case SetProject:
		s.ProjectID = a.Value
	case SetList:
		s.ListID = a.Value
	case Reset:
		return Initial(a.Value)
	}
	return s
}

// Result of Validate. Errors is keyed by json field name.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Validate checks the trimmed form.
func Validate(s FormState) Result {
	errs := validate.Struct(trimmed(s))
	if len(errs) == 0 {
		return Result{Valid: true}
	}
	return Result{Errors: errs}
}

func trimmed(s FormState) FormState {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	return s
}

// Sanitize drops angle brackets and surrounding space.
func Sanitize(v string) string {
	v = strings.NewReplacer("<", "", ">", "").Replace(v)
	return strings.TrimSpace(v)
}
