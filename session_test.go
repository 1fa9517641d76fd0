package gocas_test

import (
	"errors"
	"testing"
	"time"

	"github.com/njchilds90/gocas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, gocas.DefaultSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*gocas.Settings)
	}{
		{"precision", func(st *gocas.Settings) { st.Precision = -1 }},
		{"integration depth", func(st *gocas.Settings) { st.IntegrationDepth = 0 }},
		{"max iterations", func(st *gocas.Settings) { st.MaxIterations = 0 }},
		{"tolerance", func(st *gocas.Settings) { st.Tolerance = -1e-3 }},
		{"search samples", func(st *gocas.Settings) { st.SearchSamples = 1 }},
		{"expand limit", func(st *gocas.Settings) { st.ExpandLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := gocas.DefaultSettings()
			tt.mutate(&st)
			assert.ErrorIs(t, st.Validate(), gocas.ErrOutOfRange)

			s := gocas.NewSession()
			assert.ErrorIs(t, s.SetSettings(st), gocas.ErrOutOfRange)
			assert.Equal(t, gocas.DefaultSettings(), s.Settings())
		})
	}
}

func TestWithConfig(t *testing.T) {
	st := gocas.DefaultSettings()
	st.Precision = 4
	s := gocas.NewSession(gocas.WithConfig(st))
	assert.Equal(t, 4, s.Settings().Precision)

	st.MaxIterations = 0
	s = gocas.NewSession(gocas.WithConfig(st))
	assert.Equal(t, gocas.DefaultSettings(), s.Settings())
}

func TestWithSettingsRestores(t *testing.T) {
	s := gocas.NewSession()
	before := s.Settings()

	err := s.WithSettings(func(st *gocas.Settings) { st.Precision = 3 }, func() error {
		assert.Equal(t, 3, s.Settings().Precision)
		return gocas.ErrUndefined
	})
	assert.ErrorIs(t, err, gocas.ErrUndefined)
	assert.Equal(t, before, s.Settings())

	assert.Panics(t, func() {
		_ = s.WithSettings(func(st *gocas.Settings) { st.Immutable = false }, func() error {
			panic("boom")
		})
	})
	assert.Equal(t, before, s.Settings())

	err = s.WithSettings(func(st *gocas.Settings) { st.SimplifyPasses = 0 }, func() error {
		t.Fatal("fn must not run with invalid settings")
		return nil
	})
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
	assert.Equal(t, before, s.Settings())
}

// stepClock advances by step on every reading.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestDeadlineFakeClock(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: time.Hour}
	s := gocas.NewSession(gocas.WithClock(clock.Now))

	_, err := s.Parse("x+1")
	require.ErrorIs(t, err, gocas.ErrTimeout)
	var e *gocas.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "evaluate", e.Op)

	// the guard is released after a timeout
	clock.step = 0
	n, err := s.Parse("x+1")
	require.NoError(t, err)
	assert.Equal(t, "x+1", n.String())
}

func TestDeadlineDisabled(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: time.Hour}
	st := gocas.DefaultSettings()
	st.Timeout = 0
	s := gocas.NewSession(gocas.WithConfig(st), gocas.WithClock(clock.Now))

	d, err := s.Diff(parse(t, s, "x^3"), "x")
	require.NoError(t, err)
	assert.Equal(t, "3*x^2", d.String())
}

func TestDeadlineQuadrature(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	clock := &stepClock{now: time.Unix(0, 0), step: time.Millisecond}
	s := gocas.NewSession(gocas.WithLogger(zap.New(core)), gocas.WithClock(clock.Now))
	before := s.Settings()

	err := s.WithSettings(func(st *gocas.Settings) {
		st.Tolerance = 0
		st.MaxIterations = 1 << 30
		st.Timeout = 10 * time.Millisecond
	}, func() error {
		_, err := s.DefiniteIntegral(parse(t, s, "abs(x-1/3)"), "x", gocas.N(0), gocas.N(1))
		return err
	})
	require.ErrorIs(t, err, gocas.ErrTimeout)
	assert.Equal(t, before, s.Settings())
	assert.Equal(t, 1, logs.FilterMessage("deadline exceeded").Len())

	clock.step = 0
	n, err := s.Parse("2*x+3*x")
	require.NoError(t, err)
	assert.Equal(t, "5*x", n.String())
}

func TestMaximumIterations(t *testing.T) {
	s := gocas.NewSession()
	err := s.WithSettings(func(st *gocas.Settings) {
		st.Tolerance = 0
		st.MaxIterations = 5
	}, func() error {
		v, err := s.DefiniteIntegral(parse(t, s, "sin(1/x)"), "x", gocas.N(0), gocas.N(1))
		require.NoError(t, err)
		assert.Contains(t, v.String(), "defint(")
		return nil
	})
	require.NoError(t, err)
}

func TestTracePeeker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := gocas.NewSession()
	s.AddPeeker("*", gocas.TracePeeker(zap.New(core)))

	_, err := s.Parse("x*y+1")
	require.NoError(t, err)
	ops := logs.FilterMessage("apply").AllUntimed()
	require.Len(t, ops, 2)
	assert.Equal(t, "multiply", ops[0].ContextMap()["op"])
	assert.Equal(t, "add", ops[1].ContextMap()["op"])
}

func TestSessionIsolation(t *testing.T) {
	a, b := gocas.NewSession(), gocas.NewSession()
	require.NotEqual(t, a.ID, b.ID)
	require.NoError(t, a.SetVarExpr("k", "2"))
	require.NoError(t, a.RegisterFunction("f", []string{"x"}, "x+k"))

	n, err := a.Parse("f(1)")
	require.NoError(t, err)
	assert.Equal(t, "3", n.String())

	n, err = b.Parse("k")
	require.NoError(t, err)
	assert.Equal(t, "k", n.String())
	n, err = b.Parse("f(1)")
	require.NoError(t, err)
	assert.Equal(t, "f", n.String())
	assert.Contains(t, a.String(), a.ID.String())
}
