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

package http

import (
	"strings"
	"time"

	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// AccessLogFormat logs one line per request through pkg/log. Requests to
// excluded paths and all requests when AccessLog is off pass through silently.
func AccessLogFormat(cfg *Http) fiber.Handler {
	// exclude api path
	excludedPaths := []string{
		"/health",
		"/api/v1/notifications",
	}

	return func(c *fiber.Ctx) error {
		if cfg != nil && !cfg.AccessLog {
			return c.Next()
		}
		path := c.Path()
		for _, p := range excludedPaths {
			if path == p || strings.HasPrefix(path, p+"/") {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		query := string(c.Request().URI().QueryString())
		if query != "" {
			query = "?" + query
		}

		log.Infow("HTTP request",
			"method", c.Method(),
			"path", path,
			"query", query,
			"status", c.Response().StatusCode(),
			"ip", c.IP(),
			"latency", latency.String(),
			"request_id", c.Locals("request_id"),
		)
		return err
	}
}
