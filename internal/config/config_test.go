/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"testing"
)

type fakeTokenStore struct{ tokens map[string]string }

func (f *fakeTokenStore) Get(service, key string) (string, error) {
	return f.tokens[service+"/"+key], nil
}
func (f *fakeTokenStore) Set(service, key, value string) error {
	f.tokens[service+"/"+key] = value
	return nil
}
func (f *fakeTokenStore) Delete(service, key string) error {
	delete(f.tokens, service+"/"+key)
	return nil
}

func stubKeyring(t *testing.T) *fakeTokenStore {
	t.Helper()
	old := tokenStore
	f := &fakeTokenStore{tokens: map[string]string{}}
	tokenStore = f
	t.Cleanup(func() { tokenStore = old })
	return f
}

func TestEnvOverridesBackendURL(t *testing.T) {
	stubKeyring(t)
	old := os.Getenv(EnvBackendURL)
	_ = os.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvBackendURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesLivePreview(t *testing.T) {
	stubKeyring(t)
	old := os.Getenv(EnvLivePreview)
	_ = os.Setenv(EnvLivePreview, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvLivePreview, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.LivePreview {
		t.Fatalf("General.LivePreview expected true from env override")
	}
}

func TestEnvOverridesSnapTolerance(t *testing.T) {
	stubKeyring(t)
	old := os.Getenv(EnvSnapTolerance)
	_ = os.Setenv(EnvSnapTolerance, "0.01")
	t.Cleanup(func() { _ = os.Setenv(EnvSnapTolerance, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Motion.SnapTolerance != 0.01 {
		t.Fatalf("Motion.SnapTolerance = %v, want 0.01", cfg.Motion.SnapTolerance)
	}
}

func TestMergeIncludesMotionLimits(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Motion.LimitMin = -90
	src.Motion.LimitMax = 90
	src.Motion.FitKnots = 17
	mergeInto(&dst, &src)
	if dst.Motion.LimitMin != -90 || dst.Motion.LimitMax != 90 {
		t.Fatalf("motion limits not merged: %#v", dst.Motion)
	}
	if dst.Motion.FitKnots != 17 {
		t.Fatalf("fit knots not merged: %#v", dst.Motion)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gomotion.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gomotion.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeKeepsSnapDefaultWhenUnset(t *testing.T) {
	dst := Defaults()
	var src AppConfig // as parsed from an empty file
	mergeInto(&dst, &src)
	if dst.Motion.SnapTolerance != 0.001 {
		t.Fatalf("snap tolerance default lost: %v", dst.Motion.SnapTolerance)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	f := stubKeyring(t)
	if err := f.Set(keyringService, keyringToken, "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "secret" {
		t.Fatalf("token = %q, want %q", tok, "secret")
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, tok, _ := Load(); tok != "" {
		t.Fatalf("token survived deletion: %q", tok)
	}
}
