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

// Package materials lists the materials planned for a task and records which
// of them were used.
package materials

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/pkg/log"
)

type Backend interface {
	TaskMaterials(ctx context.Context, taskID string) ([]model.TaskMaterial, error)
	SetMaterialUsed(ctx context.Context, id string, used bool) error
}

// UpdateError reports the materials that could not be updated. The others
// were written.
type UpdateError struct {
	Failed  []string
	Updated int
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("Failed to update %d materials", len(e.Failed))
}

type Service struct {
	backend  Backend
	notifier notify.Notifier
}

func NewService(b Backend, n notify.Notifier) *Service {
	return &Service{backend: b, notifier: n}
}

// ForTask lists the task's materials ordered by material name.
func (s *Service) ForTask(ctx context.Context, taskID string) ([]model.TaskMaterial, error) {
	if strings.TrimSpace(taskID) == "" {
		return []model.TaskMaterial{}, nil
	}
	rows, err := s.backend.TaskMaterials(ctx, taskID)
	if err != nil {
		log.Errorw("failed to load task materials", "task", taskID, "error", err)
		return nil, err
	}
	return rows, nil
}

// MarkUsed flags each material as used. Every id is attempted; failures are
// collected into an *UpdateError.
func (s *Service) MarkUsed(ctx context.Context, ids []string) error {
	return s.Apply(ctx, updatesFor(ids, true))
}

// Apply writes the used flag of each update.
func (s *Service) Apply(ctx context.Context, updates []model.MaterialUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	var failed []string
	for _, u := range updates {
		if err := s.backend.SetMaterialUsed(ctx, u.ID, u.UsedFlag); err != nil {
			log.Warnw("failed to update material", "id", u.ID, "error", err)
			failed = append(failed, u.ID)
		}
	}
	if len(failed) > 0 {
		err := &UpdateError{Failed: failed, Updated: len(updates) - len(failed)}
		s.notifier.Notify(notify.Error("Error updating materials", err.Error()))
		return err
	}

	plural := "s"
	if len(updates) == 1 {
		plural = ""
	}
	s.notifier.Notify(notify.Info("Materials updated", fmt.Sprintf("Updated %d material%s", len(updates), plural)))
	return nil
}

func updatesFor(ids []string, used bool) []model.MaterialUpdate {
	out := make([]model.MaterialUpdate, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.MaterialUpdate{ID: id, UsedFlag: used})
	}
	return out
}
