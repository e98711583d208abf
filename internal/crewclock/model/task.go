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

package model

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const TaskStatusTodo = "todo"

type Task struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Priority    Priority `json:"priority"`
	AssigneeID  string   `json:"assignee"`
	Status      string   `json:"status"`
	ProjectID   *string  `json:"project_id"`
	ListID      *string  `json:"list_id"`
	OrgID       string   `json:"org_id,omitempty"`
	CreatedBy   string   `json:"created_by,omitempty"`
}

// Material is a catalogue entry.
type Material struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
	Unit string `json:"unit"`
}

// TaskMaterial is a project_materials row joined to its material.
type TaskMaterial struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	MaterialID string    `json:"material_id"`
	PlannedQty float64   `json:"planned_qty"`
	UsedFlag   bool      `json:"used_flag"`
	Material   *Material `json:"materials"`
}

// MaterialUpdate flips the used flag of one project_materials row.
type MaterialUpdate struct {
	ID       string `json:"id" validate:"required"`
	UsedFlag bool   `json:"used_flag"`
}

// ProjectWorker is a user with access to a project.
type ProjectWorker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
