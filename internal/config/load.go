package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/njchilds90/gocas"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. GOCAS_ENGINE_TIMEOUT.
const EnvPrefix = "GOCAS"

// Load reads configuration from configPath (skipped when empty) and the
// environment. Environment variables take precedence over the file, and
// unset keys fall back to gocas.DefaultSettings.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := gocas.DefaultSettings()
	v.SetDefault("engine.precision", d.Precision)
	v.SetDefault("engine.timeout", d.Timeout)
	v.SetDefault("engine.immutable", d.Immutable)
	v.SetDefault("engine.decimal_output", d.DecimalOutput)
	v.SetDefault("engine.integration_depth", d.IntegrationDepth)
	v.SetDefault("engine.transform_depth_boost", d.TransformDepthBoost)
	v.SetDefault("engine.solve_depth", d.SolveDepth)
	v.SetDefault("engine.simplify_passes", d.SimplifyPasses)
	v.SetDefault("engine.max_iterations", d.MaxIterations)
	v.SetDefault("engine.tolerance", d.Tolerance)
	v.SetDefault("engine.search_range", d.SearchRange)
	v.SetDefault("engine.search_samples", d.SearchSamples)
	v.SetDefault("engine.expand_limit", d.ExpandLimit)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_body_bytes", 1<<20)
}
