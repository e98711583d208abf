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

// Package workers manages who can book time against a project.
package workers

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/pkg/log"
)

type Backend interface {
	Projects(ctx context.Context) ([]model.Project, error)
	ProjectWorkers(ctx context.Context, projectID string) ([]model.ProjectWorker, error)
	GrantProjectAccess(ctx context.Context, projectID string, userIDs []string) error
}

type Service struct {
	backend  Backend
	notifier notify.Notifier
}

func NewService(b Backend, n notify.Notifier) *Service {
	return &Service{backend: b, notifier: n}
}

// Projects lists the projects the caller can see.
func (s *Service) Projects(ctx context.Context) ([]model.Project, error) {
	return s.backend.Projects(ctx)
}

// ForProject lists the project's workers by display name.
func (s *Service) ForProject(ctx context.Context, projectID string) ([]model.ProjectWorker, error) {
	if projectID == "" {
		return []model.ProjectWorker{}, nil
	}
	rows, err := s.backend.ProjectWorkers(ctx, projectID)
	if err != nil {
		log.Errorw("failed to load project workers", "project", projectID, "error", err)
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b model.ProjectWorker) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return rows, nil
}

// GrantAccess gives each user the worker role on the project. Duplicate and
// empty ids are dropped.
func (s *Service) GrantAccess(ctx context.Context, projectID string, userIDs []string) error {
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if projectID == "" || len(ids) == 0 {
		return &model.ValidationError{
			Fields:  map[string]string{"user_ids": "Select at least one worker."},
			Message: "Select at least one worker.",
		}
	}
	if err := s.backend.GrantProjectAccess(ctx, projectID, ids); err != nil {
		log.Errorw("failed to add project workers", "project", projectID, "error", err)
		s.notifier.Notify(notify.Error("Error", "Failed to add workers: "+err.Error()))
		return err
	}
	log.Infow("project workers added", "project", projectID, "count", len(ids))
	s.notifier.Notify(notify.Info("Workers Added", fmt.Sprintf("Successfully added %d worker(s) to the project", len(ids))))
	return nil
}
