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

// FindActiveShift returns the open active_shifts row for worker and org, or nil.
func (c *Client) FindActiveShift(ctx context.Context, workerID, orgID string) (*model.ActiveShiftRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("worker_id", eq(workerID))
	if orgID != "" {
		q.Set("org_id", eq(orgID))
	}
	q.Set("order", "shift_start.desc")
	q.Set("limit", "1")

	var rows []model.ActiveShiftRecord
	if err := c.selectRows(ctx, "active_shifts", q, &rows); err != nil {
		return nil, errors.Wrap(err, "find active shift")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) InsertActiveShift(ctx context.Context, rec model.ActiveShiftRecord) (model.ActiveShiftRecord, error) {
	var rows []model.ActiveShiftRecord
	if err := c.insert(ctx, "active_shifts", rec, &rows); err != nil {
		return model.ActiveShiftRecord{}, errors.Wrap(err, "insert active shift")
	}
	if len(rows) == 0 {
		return model.ActiveShiftRecord{}, errors.New("insert active shift: empty representation")
	}
	return rows[0], nil
}

// TouchActiveShift bumps updated_at as a heartbeat.
func (c *Client) TouchActiveShift(ctx context.Context, id string, at time.Time) error {
	q := url.Values{}
	q.Set("id", eq(id))
	err := c.update(ctx, "active_shifts", q, map[string]string{"updated_at": ts(at)}, nil)
	return errors.Wrap(err, "touch active shift")
}

// RestartActiveShift moves shift_start of an existing row to start.
func (c *Client) RestartActiveShift(ctx context.Context, id string, start time.Time) error {
	q := url.Values{}
	q.Set("id", eq(id))
	body := map[string]string{"shift_start": ts(start), "updated_at": ts(start)}
	return errors.Wrap(c.update(ctx, "active_shifts", q, body, nil), "restart active shift")
}

func (c *Client) DeleteActiveShift(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))
	return errors.Wrap(c.remove(ctx, "active_shifts", q), "delete active shift")
}

func (c *Client) InsertTimeSheet(ctx context.Context, entry model.TimeSheetEntry) (model.TimeSheetEntry, error) {
	var rows []model.TimeSheetEntry
	if err := c.insert(ctx, "time_sheets", entry, &rows); err != nil {
		return model.TimeSheetEntry{}, errors.Wrap(err, "insert time sheet")
	}
	if len(rows) == 0 {
		return entry, nil
	}
	return rows[0], nil
}

// TimeSheetHours sums the hours recorded for userID on workDate.
func (c *Client) TimeSheetHours(ctx context.Context, userID, orgID, workDate string) (float64, error) {
	q := url.Values{}
	q.Set("select", "hours")
	q.Set("user_id", eq(userID))
	q.Set("work_date", eq(workDate))
	if orgID != "" {
		q.Set("org_id", eq(orgID))
	}

	var rows []struct {
		Hours float64 `json:"hours"`
	}
	if err := c.selectRows(ctx, "time_sheets", q, &rows); err != nil {
		return 0, errors.Wrap(err, "load time sheets")
	}
	var total float64
	for _, r := range rows {
		total += r.Hours
	}
	return total, nil
}
