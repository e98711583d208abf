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

package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/spf13/viper"
)

// Config holds all configuration settings of the daemon.
type Config struct {
	Backend backend.Conf          `mapstructure:"backend"`
	Store   localstore.Conf       `mapstructure:"store"`
	Sync    worktrack.Conf        `mapstructure:"sync"`
	Org     org.Conf              `mapstructure:"org"`
	Summary summary.Conf          `mapstructure:"summary"`
	Notify  notify.Conf           `mapstructure:"notify"`
	Log     log.Conf              `mapstructure:"log"`
	Http    http.Http             `mapstructure:"http"`
	Metrics metrics.MetricsConfig `mapstructure:"metrics"`
}

var (
	cfg  Config
	mu   sync.RWMutex
	once sync.Once
)

// NewConf loads the file once per process. A load failure is fatal.
func NewConf(path string) Config {
	once.Do(func() {
		loaded, err := Load(path)
		mu.Lock()
		cfg = loaded
		mu.Unlock()
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return Current()
}

// Current returns the latest loaded configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Load reads path without touching the process-wide copy. Later edits to
// the file are logged and re-applied to the process-wide copy; engines that
// already read their section keep the values they started with.
func Load(path string) (Config, error) {
	var out Config

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("CREWCLOCK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return out, fmt.Errorf("failed to read configuration file: %v", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("The configuration changes, re-analyze the configuration file", "file", e.Name)
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "file", e.Name, "error", err)
			return
		}
		next.setDefaults()
		mu.Lock()
		cfg = next
		mu.Unlock()
	})
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	out.setDefaults()

	if err := out.validate(); err != nil {
		return out, err
	}

	log.Infow("config file loaded",
		"path", path,
		"backend.url", out.Backend.URL,
		"store.driver", out.Store.Driver,
		"http.addr", out.Http.Addr(),
	)
	return out, nil
}

func (c *Config) setDefaults() {
	c.Backend.SetDefaults()
	c.Store.SetDefaults()
	c.Sync.SetDefaults()
	c.Org.SetDefaults()
	c.Http.SetDefaults()
	if c.Summary.OvertimeThreshold <= 0 {
		c.Summary.OvertimeThreshold = summary.DefaultOvertimeThreshold
	}
	if c.Log.Output == "" {
		c.Log = *log.SetDefaults()
	}
	if c.Metrics.Host == "" {
		c.Metrics.Host = "127.0.0.1"
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 7421
	}
}

func (c *Config) validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("url is required in [backend] section")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("invalid [log] section: %w", err)
	}
	return nil
}
