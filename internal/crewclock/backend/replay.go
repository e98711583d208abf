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

// Replay applies a queued mutation: an insert when RecordID is
// model.NewRecord, otherwise a patch of that row.
func (c *Client) Replay(ctx context.Context, m model.Mutation) error {
	if m.Table == "" {
		return errors.Errorf("mutation %s has no table", m.ID)
	}
	if m.RecordID == "" || m.RecordID == model.NewRecord {
		err := c.insert(ctx, m.Table, m.Patch, nil)
		if err != nil && m.Table == "time_logs" && overlapRejection(err) {
			return errors.Wrap(model.ErrTimerAlreadyRunning, err.Error())
		}
		return errors.Wrapf(err, "replay insert into %s", m.Table)
	}
	q := url.Values{}
	q.Set("id", eq(m.RecordID))
	return errors.Wrapf(c.update(ctx, m.Table, q, m.Patch, nil), "replay patch %s/%s", m.Table, m.RecordID)
}
