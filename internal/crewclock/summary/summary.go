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

// Package summary turns the day's project time logs into totals.
package summary

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/duration"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/tick"
	"github.com/pkg/errors"
)

// DefaultOvertimeThreshold is the number of hours after which time counts as
// overtime.
const DefaultOvertimeThreshold = 8.0

// ProjectHours is one line of the per-project breakdown.
type ProjectHours struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Clock string  `json:"clock"`
}

// Daily is the summary of one UTC day.
type Daily struct {
	Date          string         `json:"date"`
	TotalHours    float64        `json:"total_hours"`
	RegularHours  float64        `json:"regular_hours"`
	OvertimeHours float64        `json:"overtime_hours"`
	TotalClock    string         `json:"total_clock"`
	Projects      []ProjectHours `json:"projects"`
}

// Compute sums the closed logs that started on now's UTC day. Open logs do
// not count until they are stopped.
func Compute(logs []model.TimeLog, now time.Time, threshold float64) Daily {
	if threshold <= 0 {
		threshold = DefaultOvertimeThreshold
	}
	day := model.WorkDate(now)
	d := Daily{Date: day, Projects: []ProjectHours{}}

	byProject := map[string]float64{}
	for i := range logs {
		l := &logs[i]
		if l.Open() || model.WorkDate(l.StartAt) != day {
			continue
		}
		hours := l.Duration().Hours()
		d.TotalHours += hours
		if l.Project != nil {
			byProject[l.Project.Name] += hours
		}
	}

	d.RegularHours = math.Min(d.TotalHours, threshold)
	d.OvertimeHours = math.Max(d.TotalHours-threshold, 0)
	d.TotalClock = FormatClock(d.TotalHours)
	for name, hours := range byProject {
		d.Projects = append(d.Projects, ProjectHours{Name: name, Hours: hours, Clock: FormatClock(hours)})
	}
	sort.Slice(d.Projects, func(i, j int) bool {
		if d.Projects[i].Hours != d.Projects[j].Hours {
			return d.Projects[i].Hours > d.Projects[j].Hours
		}
		return d.Projects[i].Name < d.Projects[j].Name
	})
	return d
}

// FormatClock renders fractional hours as HH:MM:SS.
func FormatClock(hours float64) string {
	return duration.FormatClock(time.Duration(hours * float64(time.Hour)))
}

type Backend interface {
	TimeLogsBetween(ctx context.Context, userID string, from, to time.Time) ([]model.TimeLog, error)
}

type Identity interface {
	UserID() string
}

// Conf is the [summary] section.
type Conf struct {
	OvertimeThreshold float64 `mapstructure:"overtime_threshold"`
}

// Service builds the summary for the signed-in user.
type Service struct {
	backend   Backend
	identity  Identity
	clock     tick.Clock
	threshold float64
}

func NewService(conf Conf, b Backend, identity Identity, clock tick.Clock) *Service {
	return &Service{backend: b, identity: identity, clock: clock, threshold: conf.OvertimeThreshold}
}

// Today loads today's logs and summarizes them.
func (s *Service) Today(ctx context.Context) (Daily, error) {
	userID := s.identity.UserID()
	if userID == "" {
		return Daily{}, model.ErrNotSignedIn
	}
	now := s.clock.Now()
	from := now.UTC().Truncate(24 * time.Hour)
	logs, err := s.backend.TimeLogsBetween(ctx, userID, from, from.Add(24*time.Hour))
	if err != nil {
		log.Errorw("failed to load today's time logs", "user", userID, "error", err)
		return Daily{}, errors.Wrap(err, "daily summary")
	}
	return Compute(logs, now, s.threshold), nil
}
