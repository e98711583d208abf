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

func (c *Client) WeeklyAvailability(ctx context.Context, workerID string) ([]model.WeeklyAvailability, error) {
	q := url.Values{}
	q.Set("select", "worker_id,day_of_week,is_available,start_time,end_time,max_hours")
	q.Set("worker_id", eq(workerID))
	q.Set("order", "day_of_week")

	var rows []struct {
		WorkerID    string   `json:"worker_id"`
		DayOfWeek   int      `json:"day_of_week"`
		IsAvailable bool     `json:"is_available"`
		StartTime   *string  `json:"start_time"`
		EndTime     *string  `json:"end_time"`
		MaxHours    *float64 `json:"max_hours"`
	}
	if err := c.selectRows(ctx, "worker_availability", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load weekly availability")
	}
	out := make([]model.WeeklyAvailability, 0, len(rows))
	for _, r := range rows {
		day := model.WeeklyAvailability{WorkerID: r.WorkerID, DayOfWeek: r.DayOfWeek, IsAvailable: r.IsAvailable}
		if r.StartTime != nil {
			day.StartTime = clock(*r.StartTime)
		}
		if r.EndTime != nil {
			day.EndTime = clock(*r.EndTime)
		}
		if r.MaxHours != nil {
			day.MaxHours = *r.MaxHours
		}
		out = append(out, day)
	}
	return out, nil
}

// clock trims a postgres time value such as 08:00:00 to HH:MM.
func clock(v string) string {
	if len(v) > 5 {
		return v[:5]
	}
	return v
}

// UpsertWeeklyAvailability writes one row per day. Unavailable days carry
// no hours or times.
func (c *Client) UpsertWeeklyAvailability(ctx context.Context, days []model.WeeklyAvailability) error {
	type row struct {
		WorkerID    string   `json:"worker_id"`
		DayOfWeek   int      `json:"day_of_week"`
		IsAvailable bool     `json:"is_available"`
		StartTime   *string  `json:"start_time"`
		EndTime     *string  `json:"end_time"`
		MaxHours    *float64 `json:"max_hours"`
	}
	rows := make([]row, 0, len(days))
	for _, d := range days {
		r := row{WorkerID: d.WorkerID, DayOfWeek: d.DayOfWeek, IsAvailable: d.IsAvailable}
		if d.IsAvailable {
			r.StartTime = model.StringPtr(d.StartTime)
			r.EndTime = model.StringPtr(d.EndTime)
			hours := d.MaxHours
			r.MaxHours = &hours
		}
		rows = append(rows, r)
	}
	return errors.Wrap(c.upsert(ctx, "worker_availability", "worker_id,day_of_week", rows, nil), "save weekly availability")
}

func (c *Client) DateAvailability(ctx context.Context, workerID string) ([]model.DateAvailability, error) {
	q := url.Values{}
	q.Set("select", "worker_id,date,is_available,note")
	q.Set("worker_id", eq(workerID))
	q.Set("order", "date")

	var rows []model.DateAvailability
	if err := c.selectRows(ctx, "worker_date_availability", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load date overrides")
	}
	return rows, nil
}

func (c *Client) UpsertDateAvailability(ctx context.Context, rows []model.DateAvailability) error {
	return errors.Wrap(c.upsert(ctx, "worker_date_availability", "worker_id,date", rows, nil), "save date overrides")
}

func (c *Client) DeleteDateAvailability(ctx context.Context, workerID, date string) error {
	q := url.Values{}
	q.Set("worker_id", eq(workerID))
	q.Set("date", eq(date))
	return errors.Wrap(c.remove(ctx, "worker_date_availability", q), "remove date override")
}

func (c *Client) ClearDateAvailability(ctx context.Context, workerID string) error {
	q := url.Values{}
	q.Set("worker_id", eq(workerID))
	return errors.Wrap(c.remove(ctx, "worker_date_availability", q), "clear date overrides")
}
