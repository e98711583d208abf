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

// Package schedule manages a worker's recurring weekly availability and the
// per-date overrides on top of it.
package schedule

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/validate"
)

type Backend interface {
	WeeklyAvailability(ctx context.Context, workerID string) ([]model.WeeklyAvailability, error)
	UpsertWeeklyAvailability(ctx context.Context, days []model.WeeklyAvailability) error
	DateAvailability(ctx context.Context, workerID string) ([]model.DateAvailability, error)
	UpsertDateAvailability(ctx context.Context, rows []model.DateAvailability) error
	DeleteDateAvailability(ctx context.Context, workerID, date string) error
	ClearDateAvailability(ctx context.Context, workerID string) error
}

type Identity interface {
	UserID() string
}

// DefaultWeek is Monday to Friday 08:00-17:00 with an 8 hour cap.
func DefaultWeek() []model.WeeklyAvailability {
	week := make([]model.WeeklyAvailability, 7)
	for d := range week {
		week[d] = model.WeeklyAvailability{
			DayOfWeek:   d,
			IsAvailable: d != 0 && d != 6,
			StartTime:   "08:00",
			EndTime:     "17:00",
			MaxHours:    8,
		}
	}
	return week
}

// Merge lays stored rows over the default week. Missing times and hours keep
// their defaults.
func Merge(stored []model.WeeklyAvailability) []model.WeeklyAvailability {
	week := DefaultWeek()
	for _, row := range stored {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		day := &week[row.DayOfWeek]
		day.IsAvailable = row.IsAvailable
		if row.StartTime != "" {
			day.StartTime = row.StartTime
		}
		if row.EndTime != "" {
			day.EndTime = row.EndTime
		}
		if row.MaxHours > 0 {
			day.MaxHours = row.MaxHours
		}
	}
	return week
}

// TotalWeeklyHours sums the caps of the available days.
func TotalWeeklyHours(week []model.WeeklyAvailability) float64 {
	var total float64
	for _, d := range week {
		if d.IsAvailable {
			total += d.MaxHours
		}
	}
	return total
}

// ValidateWeek returns field errors keyed by "<day>.<field>".
func ValidateWeek(week []model.WeeklyAvailability) map[string]string {
	errs := map[string]string{}
	seen := map[int]bool{}
	for _, d := range week {
		prefix := fmt.Sprintf("%d.", d.DayOfWeek)
		for field, msg := range validate.Struct(d) {
			errs[prefix+field] = msg
		}
		if seen[d.DayOfWeek] {
			errs[prefix+"day_of_week"] = "The day appears more than once."
		}
		seen[d.DayOfWeek] = true
		if !d.IsAvailable {
			continue
		}
		if d.StartTime == "" || d.EndTime == "" {
			errs[prefix+"start_time"] = "Available days need a start and end time."
			continue
		}
		// HH:MM compares correctly as text
		if validate.Clock(d.StartTime) && validate.Clock(d.EndTime) && d.StartTime >= d.EndTime {
			errs[prefix+"end_time"] = "The end time must be after the start time."
		}
	}
	return errs
}

// Service reads and writes availability for the signed-in worker.
type Service struct {
	backend  Backend
	identity Identity
	notifier notify.Notifier
}

func NewService(b Backend, identity Identity, n notify.Notifier) *Service {
	return &Service{backend: b, identity: identity, notifier: n}
}

func (s *Service) worker() (string, error) {
	id := s.identity.UserID()
	if id == "" {
		return "", model.ErrNotSignedIn
	}
	return id, nil
}

func (s *Service) fail(msg string, err error) error {
	log.Errorw(msg, "error", err)
	s.notifier.Notify(notify.Error("Error", msg))
	return err
}

// Weekly returns the stored week merged over the defaults.
func (s *Service) Weekly(ctx context.Context) ([]model.WeeklyAvailability, error) {
	worker, err := s.worker()
	if err != nil {
		return nil, err
	}
	stored, err := s.backend.WeeklyAvailability(ctx, worker)
	if err != nil {
		return nil, s.fail("Failed to load availability settings", err)
	}
	week := Merge(stored)
	for i := range week {
		week[i].WorkerID = worker
	}
	return week, nil
}

// SaveWeekly validates and stores the week.
func (s *Service) SaveWeekly(ctx context.Context, week []model.WeeklyAvailability) error {
	worker, err := s.worker()
	if err != nil {
		return err
	}
	if errs := ValidateWeek(week); len(errs) > 0 {
		return &model.ValidationError{Fields: errs, Message: validate.First(errs)}
	}
	rows := slices.Clone(week)
	for i := range rows {
		rows[i].WorkerID = worker
	}
	if err := s.backend.UpsertWeeklyAvailability(ctx, rows); err != nil {
		return s.fail("Failed to save availability settings", err)
	}
	s.notifier.Notify(notify.Info("Success", "Availability settings saved successfully"))
	return nil
}

// Dates lists the worker's overrides by date.
func (s *Service) Dates(ctx context.Context) ([]model.DateAvailability, error) {
	worker, err := s.worker()
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.DateAvailability(ctx, worker)
	if err != nil {
		return nil, s.fail("Failed to load date overrides", err)
	}
	slices.SortFunc(rows, func(a, b model.DateAvailability) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return rows, nil
}

// SetDate marks one date available or unavailable.
func (s *Service) SetDate(ctx context.Context, date string, available bool, note string) error {
	if err := s.setDates(ctx, []string{date}, available, note); err != nil {
		return err
	}
	s.notifier.Notify(notify.Info("Success", "Date marked as "+availableWord(available)))
	return nil
}

// SetDates marks several dates in one write.
func (s *Service) SetDates(ctx context.Context, dates []string, available bool, note string) error {
	if len(dates) == 0 {
		s.notifier.Notify(notify.Error("No dates selected", "Please select one or more dates first."))
		return &model.ValidationError{
			Fields:  map[string]string{"dates": "Please select one or more dates first."},
			Message: "Please select one or more dates first.",
		}
	}
	if err := s.setDates(ctx, dates, available, note); err != nil {
		return err
	}
	s.notifier.Notify(notify.Info("Success", fmt.Sprintf("Marked %d date(s) as %s.", len(dates), availableWord(available))))
	return nil
}

func (s *Service) setDates(ctx context.Context, dates []string, available bool, note string) error {
	worker, err := s.worker()
	if err != nil {
		return err
	}
	rows := make([]model.DateAvailability, 0, len(dates))
	for _, date := range dates {
		row := model.DateAvailability{WorkerID: worker, Date: date, IsAvailable: available, Note: model.StringPtr(note)}
		if errs := validate.Struct(row); len(errs) > 0 {
			return &model.ValidationError{Fields: errs, Message: validate.First(errs)}
		}
		rows = append(rows, row)
	}
	if err := s.backend.UpsertDateAvailability(ctx, rows); err != nil {
		return s.fail("Failed to update date availability", err)
	}
	return nil
}

// RemoveDate drops the override for one date.
func (s *Service) RemoveDate(ctx context.Context, date string) error {
	worker, err := s.worker()
	if err != nil {
		return err
	}
	if err := s.backend.DeleteDateAvailability(ctx, worker, date); err != nil {
		return s.fail("Failed to remove date override", err)
	}
	s.notifier.Notify(notify.Info("Success", "Date override removed"))
	return nil
}

// ClearDates drops every override of the worker.
func (s *Service) ClearDates(ctx context.Context) error {
	worker, err := s.worker()
	if err != nil {
		return err
	}
	if err := s.backend.ClearDateAvailability(ctx, worker); err != nil {
		return s.fail("Failed to clear date overrides", err)
	}
	s.notifier.Notify(notify.Info("Success", "All date overrides cleared"))
	return nil
}

func availableWord(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}
