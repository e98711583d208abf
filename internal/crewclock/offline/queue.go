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

// Package offline keeps backend writes that failed for transient reasons and
// replays them in order once the backend answers again.
package offline

import (
	"context"
	"sync"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/id"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/pkg/errors"
)

// Replayer applies one queued mutation to the backend.
type Replayer interface {
	Replay(ctx context.Context, m model.Mutation) error
}

// FlushResult summarises one flush.
type FlushResult struct {
	Applied int `json:"applied"`
	Dropped int `json:"dropped"`
	Pending int `json:"pending"`
}

// Queue is a FIFO of mutations persisted under localstore.KeyOfflineQueue.
type Queue struct {
	store localstore.Store
	now   func() time.Time

	mu sync.Mutex
}

func NewQueue(store localstore.Store) *Queue {
	return &Queue{store: store, now: time.Now}
}

// load and save must be called with mu held.
func (q *Queue) load(ctx context.Context) ([]model.Mutation, error) {
	var items []model.Mutation
	if _, err := q.store.Get(ctx, localstore.KeyOfflineQueue, &items); err != nil {
		return nil, errors.Wrap(err, "load offline queue")
	}
	return items, nil
}

func (q *Queue) save(ctx context.Context, items []model.Mutation) error {
	metrics.OfflineQueueDepth.Set(float64(len(items)))
	if len(items) == 0 {
		return errors.Wrap(q.store.Delete(ctx, localstore.KeyOfflineQueue), "save offline queue")
	}
	return errors.Wrap(q.store.Set(ctx, localstore.KeyOfflineQueue, items), "save offline queue")
}

// Enqueue stamps the mutation with an id and time and appends it.
func (q *Queue) Enqueue(ctx context.Context, m model.Mutation) (model.Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return model.Mutation{}, err
	}
	now := q.now()
	m.ID = id.GetULID(now)
	m.EnqueuedAt = now
	m.Attempts = 0
	items = append(items, m)
	if err := q.save(ctx, items); err != nil {
		return model.Mutation{}, err
	}
	log.Infow("mutation queued for replay", "id", m.ID, "table", m.Table, "record", m.RecordID)
	return m, nil
}

// Pending lists queued mutations, oldest first.
func (q *Queue) Pending(ctx context.Context) ([]model.Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Flush replays mutations oldest first. A policy rejection drops the
// mutation; any other failure records the attempt and stops the flush so
// later mutations never overtake an earlier one.
func (q *Queue) Flush(ctx context.Context, r Replayer) (FlushResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return FlushResult{}, err
	}
	if len(items) == 0 {
		metrics.OfflineQueueDepth.Set(0)
		return FlushResult{}, nil
	}

	var res FlushResult
	var flushErr error
	for len(items) > 0 {
		head := items[0]
		err := r.Replay(ctx, head)
		if err == nil {
			res.Applied++
			items = items[1:]
			continue
		}
		if backend.IsPolicyRejection(err) {
			log.Warnw("dropping rejected offline mutation", "id", head.ID, "table", head.Table, "error", err)
			res.Dropped++
			items = items[1:]
			continue
		}
		items[0].Attempts++
		items[0].LastError = err.Error()
		flushErr = err
		break
	}

	res.Pending = len(items)
	if err := q.save(ctx, items); err != nil {
		return res, err
	}
	if res.Applied > 0 || res.Dropped > 0 {
		log.Infow("offline queue flushed", "applied", res.Applied, "dropped", res.Dropped, "pending", res.Pending)
	}
	return res, flushErr
}
