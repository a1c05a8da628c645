// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import "github.com/observatus/observatus/internal/params"

// EntityDescriptor describes one describable entity family: where its rows
// live, how datasets reference it, and which request parameter filters it.
type EntityDescriptor struct {
	// Name labels the family in logs, metrics and API paths.
	Name string

	// Table is the backing table.
	Table string

	// DatasetFK is the datasets column referencing this family, empty for
	// families datasets do not reference directly.
	DatasetFK string

	// JoinTable and JoinFK describe the many-to-many linkage for families
	// without a direct foreign key on datasets: JoinTable rows carry a
	// dataset_id column and a JoinFK column referencing the family. Like the
	// family tables of optional families, the join table may be absent from
	// the store.
	JoinTable string
	JoinFK    string

	// ParamKey is the request parameter carrying id filters for this family.
	ParamKey string

	// Hierarchical marks families whose rows form a parent/child tree via
	// the parent_id column.
	Hierarchical bool

	// HasGeometry marks families carrying a geometry column.
	HasGeometry bool

	// Optional marks families whose table may be absent from the store.
	// Queries probe information_schema first and short-circuit to empty.
	Optional bool
}

// The describable entity families.
var (
	Procedures = EntityDescriptor{
		Name: "procedure", Table: "procedures", DatasetFK: "procedure_id",
		ParamKey: params.KeyProcedures, Hierarchical: true,
	}
	Phenomena = EntityDescriptor{
		Name: "phenomenon", Table: "phenomena", DatasetFK: "phenomenon_id",
		ParamKey: params.KeyPhenomena, Hierarchical: true,
	}
	Offerings = EntityDescriptor{
		Name: "offering", Table: "offerings", DatasetFK: "offering_id",
		ParamKey: params.KeyOfferings, Hierarchical: true,
	}
	Categories = EntityDescriptor{
		Name: "category", Table: "categories", DatasetFK: "category_id",
		ParamKey: params.KeyCategories, Hierarchical: true,
	}
	Features = EntityDescriptor{
		Name: "feature", Table: "features", DatasetFK: "feature_id",
		ParamKey: params.KeyFeatures, Hierarchical: true, HasGeometry: true,
	}
	Platforms = EntityDescriptor{
		Name: "platform", Table: "platforms", DatasetFK: "platform_id",
		ParamKey: params.KeyPlatforms, HasGeometry: true,
	}
	Samplings = EntityDescriptor{
		Name: "sampling", Table: "samplings",
		JoinTable: "dataset_samplings", JoinFK: "sampling_id",
		ParamKey: params.KeySamplings, Optional: true,
	}
	MeasuringPrograms = EntityDescriptor{
		Name: "measuring_program", Table: "measuring_programs",
		JoinTable: "dataset_measuring_programs", JoinFK: "measuring_program_id",
		ParamKey: params.KeyMeasuringPrograms, Optional: true,
	}
)

// AllFamilies lists every describable family in count/collection order.
var AllFamilies = []EntityDescriptor{
	Procedures, Phenomena, Offerings, Categories,
	Features, Platforms, Samplings, MeasuringPrograms,
}
