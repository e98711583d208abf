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
	"fmt"

	"github.com/go-arcade/crewclock/pkg/cache"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/google/wire"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Conf is the [store] section.
type Conf struct {
	Driver   string      `mapstructure:"driver"`
	Path     string      `mapstructure:"path"`
	Prefix   string      `mapstructure:"prefix"`
	MaxBytes int         `mapstructure:"maxBytes"`
	Redis    cache.Redis `mapstructure:"redis"`
}

func (c *Conf) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverFile
	}
	if c.Path == "" {
		c.Path = "data/crewclock-state.json"
	}
	if c.Prefix == "" {
		c.Prefix = "crewclock:"
	}
}

var ProviderSet = wire.NewSet(ProvideStore)

// ProvideStore opens the configured backend. The cleanup closes the redis
// connection when one was opened.
func ProvideStore(conf Conf) (Store, func(), error) {
	conf.SetDefaults()
	switch conf.Driver {
	case DriverFile:
		log.Infow("local store opened", "driver", conf.Driver, "path", conf.Path)
		return NewFile(conf.Path), func() {}, nil
	case DriverMemory:
		log.Warnw("local store is in memory, state is lost on restart")
		return NewCached(cache.NewFastCache(cache.FastCacheConfig{MaxBytes: conf.MaxBytes}), conf.Prefix), func() {}, nil
	case DriverRedis:
		client, err := cache.NewRedis(conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Errorw("failed to close redis", "error", err)
			}
		}
		return NewCached(cache.NewRedisCache(client), conf.Prefix), cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", conf.Driver)
}
