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

import "time"

// TimeLog is a project timer row of time_logs.
type TimeLog struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	OrgID       string     `json:"org_id,omitempty"`
	ProjectID   string     `json:"project_id"`
	TaskID      *string    `json:"task_id"`
	Description *string    `json:"description"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	ShiftID     *string    `json:"shift_id"`

	Project *Project `json:"projects,omitempty"`
	Task    *TaskRef `json:"tasks,omitempty"`
}

// Open reports whether the timer is still running.
func (l *TimeLog) Open() bool {
	return l != nil && l.EndAt == nil
}

// Duration is the closed interval length, or zero while open.
func (l *TimeLog) Duration() time.Duration {
	if l == nil || l.EndAt == nil {
		return 0
	}
	return l.EndAt.Sub(l.StartAt)
}

// TaskIDOrEmpty dereferences TaskID.
func (l *TimeLog) TaskIDOrEmpty() string {
	if l == nil || l.TaskID == nil {
		return ""
	}
	return *l.TaskID
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
