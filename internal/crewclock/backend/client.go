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

// Package backend is the PostgREST data client and RPC gateway for the
// workforce backend.
package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/pkg/retry"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const restPrefix = "/rest/v1/"

// Conf is the [backend] section.
type Conf struct {
	URL         string `mapstructure:"url"`
	AnonKey     string `mapstructure:"anonKey"`
	AccessToken string `mapstructure:"accessToken"`
	UserID      string `mapstructure:"userId"`
	Timeout     int    `mapstructure:"timeout"`    // seconds
	ReadRetries int    `mapstructure:"readRetries"` // attempts for idempotent reads
}

func (c *Conf) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15
	}
	if c.ReadRetries <= 0 {
		c.ReadRetries = 3
	}
	if c.URL != "" && !strings.HasPrefix(c.URL, "http") {
		c.URL = "https://" + c.URL
	}
	c.URL = strings.TrimRight(c.URL, "/")
}

// TokenSource yields the bearer token for each request.
type TokenSource interface {
	AccessToken() string
}

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	http        *resty.Client
	anonKey     string
	tokens      TokenSource
	readBackoff retry.Backoff
	readTries   int
}

// NewClient builds a Client on resty with sonic as the JSON codec.
func NewClient(conf Conf, tokens TokenSource) *Client {
	conf.SetDefaults()
	rc := resty.New().
		SetBaseURL(conf.URL).
		SetTimeout(time.Duration(conf.Timeout)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Client{
		http:        rc,
		anonKey:     conf.AnonKey,
		tokens:      tokens,
		readBackoff: retry.Exponential(200*time.Millisecond, 2*time.Second),
		readTries:   conf.ReadRetries,
	}
}

// request builds a resty request with the PostgREST auth headers.
func (c *Client) request(ctx context.Context) *resty.Request {
	token := ""
	if c.tokens != nil {
		token = c.tokens.AccessToken()
	}
	apikey := c.anonKey
	if apikey == "" {
		apikey = token
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", apikey).
		SetHeader("Prefer", "return=representation")
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// call sends one request and decodes a successful body into out.
func (c *Client) call(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		return decodeError(resp.StatusCode(), resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

// selectRows runs a GET on table. Reads are retried on transient failures.
func (c *Client) selectRows(ctx context.Context, table string, query url.Values, out any) error {
	path := restPrefix + table
	return retry.Do(ctx, func(ctx context.Context) error {
		return c.call(c.request(ctx).SetQueryParamsFromValues(query), http.MethodGet, path, out)
	},
		retry.WithMaxAttempts(c.readTries),
		retry.WithBackoff(c.readBackoff),
		retry.WithRetryIf(IsTransient),
	)
}

func (c *Client) insert(ctx context.Context, table string, body any, out any) error {
	return c.call(c.request(ctx).SetBody(body), http.MethodPost, restPrefix+table, out)
}

// upsert inserts or merges rows on the onConflict columns.
func (c *Client) upsert(ctx context.Context, table, onConflict string, body any, out any) error {
	req := c.request(ctx).
		SetHeader("Prefer", "return=representation,resolution=merge-duplicates").
		SetQueryParam("on_conflict", onConflict).
		SetBody(body)
	return c.call(req, http.MethodPost, restPrefix+table, out)
}

func (c *Client) update(ctx context.Context, table string, filter url.Values, body any, out any) error {
	req := c.request(ctx).SetQueryParamsFromValues(filter).SetBody(body)
	return c.call(req, http.MethodPatch, restPrefix+table, out)
}

func (c *Client) remove(ctx context.Context, table string, filter url.Values) error {
	req := c.request(ctx).SetQueryParamsFromValues(filter)
	return c.call(req, http.MethodDelete, restPrefix+table, nil)
}

// rpc invokes a stored procedure.
func (c *Client) rpc(ctx context.Context, fn string, args any, out any) error {
	return c.call(c.request(ctx).SetBody(args), http.MethodPost, restPrefix+"rpc/"+fn, out)
}

// eq builds a PostgREST equality filter value.
func eq(v string) string {
	return "eq." + v
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
