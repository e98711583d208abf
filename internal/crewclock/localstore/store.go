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

// Package localstore is the daemon's durable key/value state: the active
// organization, the open shift mirror and the offline queue.
package localstore

import (
	"context"
)

// Well-known keys.
const (
	KeyCurrentOrg   = "bb.current_org_id"
	KeyActiveShift  = "activeShift"
	KeyOfflineQueue = "offlineQueue"
)

// Store persists JSON-encodable values by key.
type Store interface {
	// Get decodes the value into out and reports whether the key existed.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
