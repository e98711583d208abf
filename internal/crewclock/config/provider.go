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
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供配置相关的依赖
var ProviderSet = wire.NewSet(
	NewConf,
	ProvideBackendConfig,
	ProvideStoreConfig,
	ProvideSyncConfig,
	ProvideOrgConfig,
	ProvideSummaryConfig,
	ProvideNotifyConfig,
	ProvideLogConfig,
	ProvideHttpConfig,
	ProvideMetricsConfig,
)

func ProvideBackendConfig(conf Config) backend.Conf {
	return conf.Backend
}

func ProvideStoreConfig(conf Config) localstore.Conf {
	return conf.Store
}

func ProvideSyncConfig(conf Config) worktrack.Conf {
	return conf.Sync
}

func ProvideOrgConfig(conf Config) org.Conf {
	return conf.Org
}

func ProvideSummaryConfig(conf Config) summary.Conf {
	return conf.Summary
}

func ProvideNotifyConfig(conf Config) notify.Conf {
	return conf.Notify
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(conf Config) *log.Conf {
	return &conf.Log
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(conf Config) *http.Http {
	httpConfig := &conf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(conf Config) metrics.MetricsConfig {
	return conf.Metrics
}
