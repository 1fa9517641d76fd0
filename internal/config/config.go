// Package config loads gocas engine and server settings from an optional
// YAML file and GOCAS_* environment variables.
package config

import (
	"time"

	"github.com/njchilds90/gocas"
)

// Config holds all configuration for the gocas binaries.
type Config struct {
	Engine EngineConfig `mapstructure:"engine" validate:"required"`
	Server ServerConfig `mapstructure:"server" validate:"required"`
}

// EngineConfig mirrors gocas.Settings.
type EngineConfig struct {
	Precision           int           `mapstructure:"precision" validate:"gte=0,lte=10000"`
	Timeout             time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Immutable           bool          `mapstructure:"immutable"`
	DecimalOutput       bool          `mapstructure:"decimal_output"`
	IntegrationDepth    int           `mapstructure:"integration_depth" validate:"gt=0,lte=1000"`
	TransformDepthBoost int           `mapstructure:"transform_depth_boost" validate:"gte=0,lte=1000"`
	SolveDepth          int           `mapstructure:"solve_depth" validate:"gt=0,lte=1000"`
	SimplifyPasses      int           `mapstructure:"simplify_passes" validate:"gt=0,lte=1000"`
	MaxIterations       int           `mapstructure:"max_iterations" validate:"gt=0"`
	Tolerance           float64       `mapstructure:"tolerance" validate:"gte=0"`
	SearchRange         float64       `mapstructure:"search_range" validate:"gt=0"`
	SearchSamples       int           `mapstructure:"search_samples" validate:"gt=1"`
	ExpandLimit         int           `mapstructure:"expand_limit" validate:"gt=0,lte=4096"`
}

// ServerConfig contains the HTTP tool server settings.
type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// Settings converts the engine section into session settings.
func (c *Config) Settings() gocas.Settings {
	e := c.Engine
	return gocas.Settings{
		Precision:           e.Precision,
		Timeout:             e.Timeout,
		Immutable:           e.Immutable,
		DecimalOutput:       e.DecimalOutput,
		IntegrationDepth:    e.IntegrationDepth,
		TransformDepthBoost: e.TransformDepthBoost,
		SolveDepth:          e.SolveDepth,
		SimplifyPasses:      e.SimplifyPasses,
		MaxIterations:       e.MaxIterations,
		Tolerance:           e.Tolerance,
		SearchRange:         e.SearchRange,
		SearchSamples:       e.SearchSamples,
		ExpandLimit:         e.ExpandLimit,
	}
}
