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

package materials

import (
	"context"
	"errors"
	"testing"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	fail    map[string]bool
	updated []string
}

func (f *fakeBackend) TaskMaterials(_ context.Context, taskID string) ([]model.TaskMaterial, error) {
	return []model.TaskMaterial{{ID: "pm1", TaskID: taskID, Material: &model.Material{Name: "Rebar"}}}, nil
}

func (f *fakeBackend) SetMaterialUsed(_ context.Context, id string, _ bool) error {
	if f.fail[id] {
		return errors.New("denied")
	}
	f.updated = append(f.updated, id)
	return nil
}

type recorder struct{ got []notify.Notification }

func (r *recorder) Notify(n notify.Notification) { r.got = append(r.got, n) }

func TestMarkUsed(t *testing.T) {
	b := &fakeBackend{}
	notes := &recorder{}
	s := NewService(b, notes)

	require.NoError(t, s.MarkUsed(context.Background(), []string{"a"}))
	assert.Equal(t, "Updated 1 material", notes.got[0].Description)

	require.NoError(t, s.MarkUsed(context.Background(), []string{"b", "c"}))
	assert.Equal(t, "Updated 2 materials", notes.got[1].Description)
	assert.Equal(t, []string{"a", "b", "c"}, b.updated)

	require.NoError(t, s.MarkUsed(context.Background(), nil))
	assert.Len(t, notes.got, 2)
}

func TestMarkUsedPartialFailure(t *testing.T) {
	b := &fakeBackend{fail: map[string]bool{"b": true, "d": true}}
	notes := &recorder{}
	err := NewService(b, notes).MarkUsed(context.Background(), []string{"a", "b", "c", "d"})

	var uerr *UpdateError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Failed to update 2 materials", err.Error())
	assert.Equal(t, []string{"b", "d"}, uerr.Failed)
	assert.Equal(t, 2, uerr.Updated)
	assert.Equal(t, []string{"a", "c"}, b.updated)
	assert.Equal(t, notify.VariantDestructive, notes.got[0].Variant)
}

func TestForTask(t *testing.T) {
	s := NewService(&fakeBackend{}, &recorder{})
	rows, err := s.ForTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", rows[0].TaskID)

	rows, err = s.ForTask(context.Background(), " ")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
