// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package config provides layered configuration loading for Observatus.
//
// Configuration is loaded with the following precedence (highest wins):
//
//  1. Environment variables (OBSERVATUS_ prefix)
//  2. YAML config file (CONFIG_PATH or default search paths)
//  3. Built-in defaults
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the service.
type Config struct {
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Logging  LoggingConfig  `koanf:"logging"`
	Service  ServiceConfig  `koanf:"service"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Use ":memory:" for an ephemeral store.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory caps DuckDB memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads sets the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`

	// StorageSRID is the spatial reference system all stored geometries use.
	StorageSRID int `koanf:"storage_srid" validate:"gt=0"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ServiceConfig holds query-layer tunables.
type ServiceConfig struct {
	// DefaultPageSize applies when a request carries no limit parameter.
	DefaultPageSize int `koanf:"default_page_size" validate:"gt=0"`

	// MaxPageSize caps the limit parameter.
	MaxPageSize int `koanf:"max_page_size" validate:"gt=0"`

	// NoDataValues are service-wide sentinel raw values treated as "no
	// measurement" in addition to the per-dataset markers.
	NoDataValues []string `koanf:"no_data_values"`

	// AssemblyWorkers is the worker pool size for bulk output conversion.
	// 0 = runtime.NumCPU().
	AssemblyWorkers int `koanf:"assembly_workers" validate:"gte=0"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "/data/observatus.duckdb",
			MaxMemory:   "2GB",
			Threads:     0,
			StorageSRID: 4326,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8081,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Service: ServiceConfig{
			DefaultPageSize: 20,
			MaxPageSize:     10000,
			NoDataValues:    []string{},
			AssemblyWorkers: 0,
		},
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
