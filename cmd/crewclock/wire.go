//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/bootstrap"
	"github.com/go-arcade/crewclock/internal/crewclock/config"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/materials"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/offline"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/router"
	"github.com/go-arcade/crewclock/internal/crewclock/schedule"
	"github.com/go-arcade/crewclock/internal/crewclock/session"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/workers"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/go-arcade/crewclock/pkg/tick"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志层（依赖 config）
		log.ProviderSet,
		// 调度层
		tick.ProviderSet,
		// 身份与后端
		session.ProviderSet,
		backend.ProviderSet,
		// 本地存储（依赖 config）
		localstore.ProviderSet,
		offline.ProviderSet,
		notify.ProviderSet,
		// 引擎层
		org.ProviderSet,
		worktrack.ProviderSet,
		taskform.ProviderSet,
		summary.ProviderSet,
		schedule.ProviderSet,
		materials.ProviderSet,
		workers.ProviderSet,
		// 指标层（依赖 config）
		metrics.ProviderSet,
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
