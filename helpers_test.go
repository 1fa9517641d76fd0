package gocas_test

import (
	"math"
	"testing"

	"github.com/njchilds90/gocas"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func posInf() float64 { return math.Inf(1) }

func parse(t *testing.T, s *gocas.Session, src string) *gocas.Node {
	t.Helper()
	n, err := s.Parse(src)
	require.NoError(t, err, "parse %q", src)
	return n
}

// canonical returns the canonical rendering of src, so tests can compare
// results without depending on term order.
func canonical(t *testing.T, src string) string {
	t.Helper()
	return parse(t, gocas.NewSession(), src).String()
}

// sameFunction checks that got and want agree numerically in x at a
// handful of sample points.
func sameFunction(t *testing.T, s *gocas.Session, got *gocas.Node, want string, x string, points ...float64) {
	t.Helper()
	if len(points) == 0 {
		points = []float64{0.3, 0.7, 1.3, 2.1}
	}
	f, err := s.Compile(got, x)
	require.NoError(t, err, "compile %s", got)
	g, err := s.Compile(parse(t, s, want), x)
	require.NoError(t, err, "compile %s", want)
	for _, p := range points {
		a, err := f(p)
		require.NoError(t, err)
		b, err := g(p)
		require.NoError(t, err)
		require.InDelta(t, b, a, 1e-8*math.Max(1, math.Abs(b)), "%s vs %s at %s=%v", got, want, x, p)
	}
}
