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

package localstore

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/pkg/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Cached stores keys in an ICache: redis for a shared durable store, or the
// in-process fastcache when durability across restarts is not wanted.
type Cached struct {
	cache  cache.ICache
	prefix string
}

func NewCached(c cache.ICache, prefix string) *Cached {
	return &Cached{cache: c, prefix: prefix}
}

func (c *Cached) key(k string) string {
	return c.prefix + k
}

func (c *Cached) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.cache.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get key %s", key)
	}
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return false, errors.Wrapf(err, "decode key %s", key)
	}
	return true, nil
}

func (c *Cached) Set(ctx context.Context, key string, value any) error {
	encoded, err := sonic.MarshalString(value)
	if err != nil {
		return errors.Wrapf(err, "encode key %s", key)
	}
	return errors.Wrapf(c.cache.Set(ctx, c.key(key), encoded, 0).Err(), "set key %s", key)
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(c.cache.Del(ctx, c.key(key)).Err(), "delete key %s", key)
}
