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

package notify

import (
	"time"

	"github.com/google/wire"
)

// Conf is the [notify] section.
type Conf struct {
	FeedSize       int               `mapstructure:"feedSize"`
	WebhookURL     string            `mapstructure:"webhookUrl"`
	WebhookMethod  string            `mapstructure:"webhookMethod"`
	WebhookHeaders map[string]string `mapstructure:"webhookHeaders"`
	WebhookTimeout int               `mapstructure:"webhookTimeout"` // seconds
}

var ProviderSet = wire.NewSet(ProvideFeed, ProvideNotifier)

func ProvideFeed(conf Conf) *Feed {
	return NewFeed(conf.FeedSize)
}

// ProvideNotifier fans out to the log, the feed and, when configured, a webhook.
func ProvideNotifier(conf Conf, feed *Feed) Notifier {
	sinks := Multi{Log{}, feed}
	if conf.WebhookURL != "" {
		sinks = append(sinks, NewWebhook(conf.WebhookURL, conf.WebhookMethod, conf.WebhookHeaders,
			time.Duration(conf.WebhookTimeout)*time.Second))
	}
	return sinks
}
