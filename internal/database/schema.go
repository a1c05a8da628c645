// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package database

import (
	"context"
	"fmt"
)

// schemaDDL creates the core tables. Geometries are stored as WKT text in
// the configured storage SRID. The samplings and measuring_programs tables
// and their dataset_samplings/dataset_measuring_programs linkage tables are
// optional and only exist when an ingestion populated them; the DAO layer
// probes information_schema before touching them.
var schemaDDL = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_entity_id START 1`,

	`CREATE TABLE IF NOT EXISTS vertical_metadata (
		id BIGINT PRIMARY KEY,
		unit VARCHAR,
		origin_name VARCHAR,
		orientation_up BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS procedures (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS phenomena (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS offerings (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS features (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT,
		geometry VARCHAR
	)`,

	`CREATE TABLE IF NOT EXISTS platforms (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL UNIQUE,
		name VARCHAR,
		description VARCHAR,
		parent_id BIGINT,
		geometry VARCHAR
	)`,

	`CREATE TABLE IF NOT EXISTS units (
		id BIGINT PRIMARY KEY,
		symbol VARCHAR NOT NULL,
		name VARCHAR
	)`,

	`CREATE TABLE IF NOT EXISTS datasets (
		id BIGINT PRIMARY KEY,
		domain_id VARCHAR NOT NULL,
		label VARCHAR,
		value_type VARCHAR NOT NULL,
		dataset_type VARCHAR NOT NULL,
		observation_type VARCHAR,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		mobile BOOLEAN NOT NULL DEFAULT FALSE,
		insitu BOOLEAN NOT NULL DEFAULT TRUE,
		first_value_at TIMESTAMP,
		last_value_at TIMESTAMP,
		first_quantity_value DOUBLE,
		last_quantity_value DOUBLE,
		number_of_decimals INTEGER,
		origin_timezone VARCHAR,
		unit VARCHAR,
		no_data_values VARCHAR,
		procedure_id BIGINT,
		phenomenon_id BIGINT,
		offering_id BIGINT,
		category_id BIGINT,
		feature_id BIGINT,
		platform_id BIGINT,
		vertical_metadata_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS dataset_reference_values (
		dataset_id BIGINT NOT NULL,
		reference_dataset_id BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS observations (
		id BIGINT PRIMARY KEY,
		dataset_id BIGINT NOT NULL,
		sampling_time_start TIMESTAMP NOT NULL,
		sampling_time_end TIMESTAMP NOT NULL,
		result_time TIMESTAMP,
		valid_time_start TIMESTAMP,
		valid_time_end TIMESTAMP,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		is_parent BOOLEAN NOT NULL DEFAULT FALSE,
		parent_id BIGINT,
		quantity_value DOUBLE,
		count_value BIGINT,
		category_value VARCHAR,
		boolean_value BOOLEAN,
		text_value VARCHAR,
		geometry VARCHAR,
		detection_limit_flag INTEGER,
		detection_limit DOUBLE,
		vertical_from DOUBLE,
		vertical_to DOUBLE
	)`,

	`CREATE TABLE IF NOT EXISTS observation_parameters (
		observation_id BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		value VARCHAR
	)`,

	`CREATE INDEX IF NOT EXISTS idx_observations_dataset_time
		ON observations (dataset_id, sampling_time_end)`,
	`CREATE INDEX IF NOT EXISTS idx_datasets_domain ON datasets (domain_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("DDL failed: %w", err)
		}
	}
	return nil
}
