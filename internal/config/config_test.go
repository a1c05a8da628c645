// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package config

import (
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for port 0")
	}

	cfg = defaultConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for port 70000")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"OBSERVATUS_DATABASE_PATH", "database.path"},
		{"OBSERVATUS_SERVER_PORT", "server.port"},
		{"OBSERVATUS_SERVICE_MAX_PAGE_SIZE", "service.max_page_size"},
		{"OBSERVATUS_DATABASE_STORAGE_SRID", "database.storage_srid"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithDefaultsOnly(t *testing.T) {
	// No config file in the test working directory and no OBSERVATUS_ env
	// vars set by the test harness, so Load yields pure defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.StorageSRID != 4326 {
		t.Errorf("expected default storage SRID 4326, got %d", cfg.Database.StorageSRID)
	}
	if cfg.Service.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.Service.DefaultPageSize)
	}
}
