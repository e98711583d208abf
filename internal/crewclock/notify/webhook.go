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
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/safe"
	"github.com/go-resty/resty/v2"
)

// Webhook forwards notifications to an HTTP endpoint as JSON.
type Webhook struct {
	url     string
	method  string
	headers map[string]string
	timeout time.Duration
	client  *resty.Client
}

// NewWebhook creates a webhook sink. method defaults to POST.
func NewWebhook(url, method string, headers map[string]string, timeout time.Duration) *Webhook {
	if method == "" {
		method = http.MethodPost
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:     url,
		method:  method,
		headers: headers,
		timeout: timeout,
		client: resty.New().
			SetJSONMarshaler(sonic.Marshal).
			SetJSONUnmarshaler(sonic.Unmarshal),
	}
}

// Notify sends in the background; failures are logged.
func (w *Webhook) Notify(n Notification) {
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if err := w.Send(ctx, n); err != nil {
			log.Warnw("notification webhook failed", "url", w.url, "error", err)
		}
	})
}

// Send delivers synchronously.
func (w *Webhook) Send(ctx context.Context, n Notification) error {
	if w.url == "" {
		return fmt.Errorf("webhook URL is required")
	}
	req := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(w.headers).
		SetBody(n)

	resp, err := req.Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode())
	}
	return nil
}
