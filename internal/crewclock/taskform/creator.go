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

package taskform

import (
	"context"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/validate"
	"github.com/pkg/errors"
)

const rateLimitOperation = "task_creation"

type Backend interface {
	CheckRateLimit(ctx context.Context, operation string) (bool, error)
	InsertTask(ctx context.Context, task model.Task) (model.Task, error)
}

// Creator submits forms as new tasks.
type Creator struct {
	backend  Backend
	notifier notify.Notifier
}

func NewCreator(b Backend, n notify.Notifier) *Creator {
	return &Creator{backend: b, notifier: n}
}

// Create checks the rate limit, validates and sanitizes the form and inserts
// the task for userID. The assignee defaults to userID.
func (c *Creator) Create(ctx context.Context, userID string, form FormState) (model.Task, error) {
	if userID == "" {
		c.notifier.Notify(notify.Error("Error", "You must be logged in to create tasks"))
		return model.Task{}, model.ErrNotSignedIn
	}

	allowed, err := c.backend.CheckRateLimit(ctx, rateLimitOperation)
	if err != nil {
		log.Errorw("rate limit check failed", "user", userID, "error", err)
		c.notifier.Notify(notify.Error("Error", "Failed to create task: "+err.Error()))
		return model.Task{}, err
	}
	if !allowed {
		c.notifier.Notify(notify.Error("Rate limit exceeded", "Please wait before creating more tasks"))
		return model.Task{}, model.ErrRateLimited
	}

	if res := Validate(form); !res.Valid {
		msg := validate.First(res.Errors)
		c.notifier.Notify(notify.Error("Validation Error", msg))
		return model.Task{}, &model.ValidationError{Fields: res.Errors, Message: msg}
	}

	assignee := form.AssigneeID
	if assignee == "" {
		assignee = userID
	}
	task := model.Task{
		Title:       Sanitize(form.Title),
		Description: model.StringPtr(Sanitize(form.Description)),
		Priority:    form.Priority,
		AssigneeID:  assignee,
		Status:      model.TaskStatusTodo,
		ProjectID:   model.StringPtr(form.ProjectID),
		ListID:      model.StringPtr(form.ListID),
	}
	saved, err := c.backend.InsertTask(ctx, task)
	if err != nil {
		log.Errorw("failed to create task", "user", userID, "error", err)
		c.notifier.Notify(notify.Error("Error", "Failed to create task: "+err.Error()))
		return model.Task{}, errors.Wrap(err, "create task")
	}
	log.Infow("task created", "id", saved.ID, "assignee", saved.AssigneeID)
	c.notifier.Notify(notify.Info("Task Created", "Task created successfully"))
	return saved, nil
}
