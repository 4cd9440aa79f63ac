/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend talks to the motion controller service: playback of stored
// curves, live position preview during drags, and an optional shared curve
// library on Postgres.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "gomotion/internal/log"
	"gomotion/internal/spline"
)

// Client is a minimal HTTP client for the motion controller API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
	log     *slog.Logger
}

// NewClient creates a new controller client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     applog.WithComponent("backend"),
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("controller %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Health checks the controller health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Motor describes one controllable axis as reported by the controller.
type Motor struct {
	Channel int     `json:"channel"`
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// ListMotors returns the controller's axes.
func (c *Client) ListMotors(ctx context.Context) ([]Motor, error) {
	var list []Motor
	if err := c.doJSON(ctx, http.MethodGet, "/api/motors", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type playRequest struct {
	Name     string          `json:"name"`
	Channels []spline.Record `json:"channels"`
	Loop     bool            `json:"loop"`
	Offset   float64         `json:"offset"`
}

type playResponse struct {
	StartTime float64 `json:"start_time"`
}

// Play uploads a curve snapshot and starts playback. The returned startTime
// is the controller's absolute timestamp of curve time zero; the transport
// uses it to synchronize its own position clock.
func (c *Client) Play(ctx context.Context, name string, channels []spline.Record, loop bool, offset float64) (float64, error) {
	req := playRequest{Name: name, Channels: channels, Loop: loop, Offset: offset}
	var resp playResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/play", req, &resp); err != nil {
		return 0, err
	}
	return resp.StartTime, nil
}

// StopPlayback halts any running playback on the controller.
func (c *Client) StopPlayback(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/stop", nil, nil)
}

type positionRequest struct {
	Channel int     `json:"channel"`
	Value   float64 `json:"value"`
}

// SetPosition forwards a single live position, best effort. It never blocks
// the caller: the request runs on its own goroutine with a short timeout and
// failures are only logged. Implements the editor's preview sink.
func (c *Client) SetPosition(value float64, channel int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.doJSON(ctx, http.MethodPost, "/api/position", positionRequest{Channel: channel, Value: value}, nil); err != nil {
			c.log.Debug("live preview send failed", slog.Any("err", err))
		}
	}()
}
