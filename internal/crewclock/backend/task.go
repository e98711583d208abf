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

package backend

import (
	"context"
	"net/url"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/pkg/errors"
)

func (c *Client) InsertTask(ctx context.Context, task model.Task) (model.Task, error) {
	var rows []model.Task
	if err := c.insert(ctx, "tasks", task, &rows); err != nil {
		return model.Task{}, errors.Wrap(err, "insert task")
	}
	if len(rows) == 0 {
		return task, nil
	}
	return rows[0], nil
}

// TaskMaterials lists the materials planned for a task, ordered by name.
// Rows whose material join came back empty are dropped.
func (c *Client) TaskMaterials(ctx context.Context, taskID string) ([]model.TaskMaterial, error) {
	q := url.Values{}
	q.Set("select", "id,task_id,material_id,planned_qty,used_flag,materials:material_id(id,name,sku,unit)")
	q.Set("task_id", eq(taskID))
	q.Set("order", "materials(name)")

	var rows []model.TaskMaterial
	if err := c.selectRows(ctx, "project_materials", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load task materials")
	}
	out := rows[:0]
	for _, r := range rows {
		if r.Material != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Client) SetMaterialUsed(ctx context.Context, id string, used bool) error {
	q := url.Values{}
	q.Set("id", eq(id))
	err := c.update(ctx, "project_materials", q, map[string]bool{"used_flag": used}, nil)
	return errors.Wrapf(err, "update material %s", id)
}

// Projects lists the projects visible to the caller, by name.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	q := url.Values{}
	q.Set("select", "id,name")
	q.Set("order", "name")

	var rows []model.Project
	if err := c.selectRows(ctx, "projects", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load projects")
	}
	return rows, nil
}

// ProjectWorkers lists users holding a worker, manager or admin role on a
// project. The display name falls back to the user id.
func (c *Client) ProjectWorkers(ctx context.Context, projectID string) ([]model.ProjectWorker, error) {
	q := url.Values{}
	q.Set("select", "user_id,profiles!inner(id,full_name)")
	q.Set("project_id", eq(projectID))
	q.Set("role", "in.(worker,manager,admin)")
	q.Set("order", "user_id")

	var rows []struct {
		UserID  string `json:"user_id"`
		Profile *struct {
			FullName *string `json:"full_name"`
		} `json:"profiles"`
	}
	if err := c.selectRows(ctx, "user_project_role", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load project workers")
	}
	out := make([]model.ProjectWorker, 0, len(rows))
	for _, r := range rows {
		name := r.UserID
		if r.Profile != nil && r.Profile.FullName != nil && *r.Profile.FullName != "" {
			name = *r.Profile.FullName
		}
		out = append(out, model.ProjectWorker{ID: r.UserID, Name: name})
	}
	return out, nil
}

// GrantProjectAccess gives each user the worker role on a project.
func (c *Client) GrantProjectAccess(ctx context.Context, projectID string, userIDs []string) error {
	rows := make([]map[string]string, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, map[string]string{"project_id": projectID, "user_id": uid, "role": string(model.RoleWorker)})
	}
	return errors.Wrap(c.upsert(ctx, "user_project_role", "project_id,user_id", rows, nil), "grant project access")
}
