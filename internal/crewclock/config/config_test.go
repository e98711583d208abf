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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crewclock.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConf(t, `
[backend]
url = "db.example.test"
userId = "8d0f3b52-4a55-4a2b-9a57-0f0f1c3b8a11"
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://db.example.test", conf.Backend.URL)
	assert.Equal(t, 15, conf.Backend.Timeout)
	assert.Equal(t, "file", conf.Store.Driver)
	assert.Equal(t, "30s", conf.Sync.Interval)
	assert.Equal(t, "1s", conf.Sync.FirstSyncDelay)
	assert.Equal(t, "7d", conf.Org.ExpiringWindow)
	assert.Equal(t, "60s", conf.Org.SweepInterval)
	assert.Equal(t, 8.0, conf.Summary.OvertimeThreshold)
	assert.Equal(t, "stdout", conf.Log.Output)
	assert.Equal(t, "127.0.0.1:7420", conf.Http.Addr())
	assert.Equal(t, 10*time.Second, conf.Http.ShutdownWait())
	assert.Equal(t, 7421, conf.Metrics.Port)
}

func TestLoadReadsSections(t *testing.T) {
	path := writeConf(t, `
[backend]
url = "https://db.example.test/"
anonKey = "anon"

[store]
driver = "memory"
prefix = "cc:"

[sync]
interval = "45s"

[org]
expiring_window = "3d"

[summary]
overtime_threshold = 7.5

[notify]
feedSize = 20
webhookUrl = "https://hooks.example.test/crew"

[http]
host = "0.0.0.0"
port = 9000

[metrics]
enable = true
port = 9100
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://db.example.test", conf.Backend.URL)
	assert.Equal(t, "anon", conf.Backend.AnonKey)
	assert.Equal(t, "memory", conf.Store.Driver)
	assert.Equal(t, "cc:", conf.Store.Prefix)
	assert.Equal(t, "45s", conf.Sync.Interval)
	assert.Equal(t, "3d", conf.Org.ExpiringWindow)
	assert.Equal(t, 7.5, conf.Summary.OvertimeThreshold)
	assert.Equal(t, 20, conf.Notify.FeedSize)
	assert.Equal(t, "https://hooks.example.test/crew", conf.Notify.WebhookURL)
	assert.Equal(t, "0.0.0.0:9000", conf.Http.Addr())
	assert.True(t, conf.Metrics.Enable)
	assert.Equal(t, 9100, conf.Metrics.Port)
}

func TestLoadRequiresBackendURL(t *testing.T) {
	path := writeConf(t, `
[http]
port = 9000
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "[backend]")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestProvidersCopySections(t *testing.T) {
	conf := Config{}
	conf.Backend.URL = "https://db.example.test"
	conf.Http.Port = 8100

	assert.Equal(t, "https://db.example.test", ProvideBackendConfig(conf).URL)
	h := ProvideHttpConfig(conf)
	assert.Equal(t, 8100, h.Port)
	assert.Equal(t, "127.0.0.1", h.Host)
}
