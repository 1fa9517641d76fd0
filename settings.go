package gocas

import (
	"fmt"
	"time"
)

// Settings tunes a Session. The zero value is not usable; start from
// DefaultSettings.
type Settings struct {
	// Precision is the number of fractional digits used for decimal output.
	Precision int `json:"precision"`
	// Timeout bounds every top-level call. Zero or negative disables it.
	Timeout time.Duration `json:"timeout"`
	// Immutable makes arithmetic clone its operands. Transforms always run
	// immutably.
	Immutable bool `json:"immutable"`
	// DecimalOutput makes Session.Format render decimals instead of fractions.
	DecimalOutput bool `json:"decimal_output"`
	// IntegrationDepth caps recursive rule application in Integrate.
	IntegrationDepth int `json:"integration_depth"`
	// TransformDepthBoost is added to IntegrationDepth when a transform falls
	// back to integration.
	TransformDepthBoost int `json:"transform_depth_boost"`
	// SolveDepth caps recursive isolation in Solve.
	SolveDepth int `json:"solve_depth"`
	// SimplifyPasses caps the fixed-point loop in Simplify.
	SimplifyPasses int `json:"simplify_passes"`
	// MaxIterations bounds every numeric method.
	MaxIterations int `json:"max_iterations"`
	// Tolerance is the absolute convergence tolerance of numeric methods.
	Tolerance float64 `json:"tolerance"`
	// SearchRange is the half-width of the interval scanned for numeric roots.
	SearchRange float64 `json:"search_range"`
	// SearchSamples is the number of sample points in that interval.
	SearchSamples int `json:"search_samples"`
	// ExpandLimit is the largest integer power Expand multiplies out.
	ExpandLimit int `json:"expand_limit"`
}

// DefaultSettings returns the settings a new Session starts with.
func DefaultSettings() Settings {
	return Settings{
		Precision:           21,
		Timeout:             10 * time.Second,
		Immutable:           true,
		IntegrationDepth:    10,
		TransformDepthBoost: 4,
		SolveDepth:          10,
		SimplifyPasses:      10,
		MaxIterations:       200,
		Tolerance:           1e-10,
		SearchRange:         100,
		SearchSamples:       400,
		ExpandLimit:         32,
	}
}

// Validate reports the first out-of-range field.
func (st Settings) Validate() error {
	check := func(ok bool, field string, v any) error {
		if ok {
			return nil
		}
		return &Error{Op: "settings", Msg: fmt.Sprintf("%s = %v", field, v), Err: ErrOutOfRange}
	}
	for _, err := range []error{
		check(st.Precision >= 0, "Precision", st.Precision),
		check(st.IntegrationDepth > 0, "IntegrationDepth", st.IntegrationDepth),
		check(st.TransformDepthBoost >= 0, "TransformDepthBoost", st.TransformDepthBoost),
		check(st.SolveDepth > 0, "SolveDepth", st.SolveDepth),
		check(st.SimplifyPasses > 0, "SimplifyPasses", st.SimplifyPasses),
		check(st.MaxIterations > 0, "MaxIterations", st.MaxIterations),
		check(st.Tolerance >= 0, "Tolerance", st.Tolerance),
		check(st.SearchRange > 0, "SearchRange", st.SearchRange),
		check(st.SearchSamples > 1, "SearchSamples", st.SearchSamples),
		check(st.ExpandLimit > 0, "ExpandLimit", st.ExpandLimit),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Settings returns a copy of the session's current settings.
func (s *Session) Settings() Settings { return s.settings }

// SetSettings replaces the session's settings after validating them.
func (s *Session) SetSettings(st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.settings = st
	return nil
}

// WithSettings runs fn under settings modified by mutate and restores the
// previous settings on every exit path, including a panic in fn.
func (s *Session) WithSettings(mutate func(*Settings), fn func() error) error {
	prev := s.settings
	defer func() { s.settings = prev }()
	mutate(&s.settings)
	if err := s.settings.Validate(); err != nil {
		return err
	}
	return fn()
}

// scoped is WithSettings for internal callers that signal failure by throw.
func (s *Session) scoped(mutate func(*Settings), fn func()) {
	prev := s.settings
	defer func() { s.settings = prev }()
	mutate(&s.settings)
	fn()
}
