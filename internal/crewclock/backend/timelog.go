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
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/pkg/errors"
)

const timeLogSelect = "*,projects:project_id(id,name),tasks:task_id(id,title)"

// OpenTimeLog returns the caller's running time log, or nil.
func (c *Client) OpenTimeLog(ctx context.Context, userID string) (*model.TimeLog, error) {
	q := url.Values{}
	q.Set("select", timeLogSelect)
	q.Set("user_id", eq(userID))
	q.Set("end_at", "is.null")
	q.Set("order", "start_at.desc")
	q.Set("limit", "1")

	var rows []model.TimeLog
	if err := c.selectRows(ctx, "time_logs", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load open time log")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InsertTimeLog starts a project timer. The backend guard against a second
// open row is reported as model.ErrTimerAlreadyRunning.
func (c *Client) InsertTimeLog(ctx context.Context, entry model.TimeLog) (model.TimeLog, error) {
	body := map[string]any{
		"user_id":     entry.UserID,
		"project_id":  entry.ProjectID,
		"task_id":     entry.TaskID,
		"description": entry.Description,
		"start_at":    ts(entry.StartAt),
		"shift_id":    entry.ShiftID,
	}
	if entry.OrgID != "" {
		body["org_id"] = entry.OrgID
	}

	var rows []model.TimeLog
	if err := c.insert(ctx, "time_logs", body, &rows); err != nil {
		if overlapRejection(err) {
			return model.TimeLog{}, errors.Wrap(model.ErrTimerAlreadyRunning, err.Error())
		}
		return model.TimeLog{}, errors.Wrap(err, "insert time log")
	}
	if len(rows) == 0 {
		return model.TimeLog{}, errors.New("insert time log: empty representation")
	}
	return rows[0], nil
}

// CloseTimeLog sets end_at on the time log.
func (c *Client) CloseTimeLog(ctx context.Context, id string, endAt time.Time) (model.TimeLog, error) {
	q := url.Values{}
	q.Set("id", eq(id))

	var rows []model.TimeLog
	if err := c.update(ctx, "time_logs", q, map[string]string{"end_at": ts(endAt)}, &rows); err != nil {
		return model.TimeLog{}, errors.Wrap(err, "close time log")
	}
	if len(rows) == 0 {
		return model.TimeLog{}, errors.Errorf("close time log: %s not found", id)
	}
	return rows[0], nil
}

// TimeLogsBetween lists time logs started in [from, to), newest first.
func (c *Client) TimeLogsBetween(ctx context.Context, userID string, from, to time.Time) ([]model.TimeLog, error) {
	q := url.Values{}
	q.Set("select", timeLogSelect)
	q.Set("user_id", eq(userID))
	q.Add("start_at", "gte."+ts(from))
	q.Add("start_at", "lt."+ts(to))
	q.Set("order", "start_at.desc")

	var rows []model.TimeLog
	if err := c.selectRows(ctx, "time_logs", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load time logs")
	}
	return rows, nil
}
