package gocas_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/gocas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"x^3", "3*x^2"},
		{"5", "0"},
		{"y^2", "0"},
		{"sin(x)", "cos(x)"},
		{"cos(x)", "-sin(x)"},
		{"e^x", "e^x"},
		{"log(x)", "1/x"},
		{"x^(1/2)", "1/(2*x^(1/2))"},
		{"3*x^2+2*x+1", "6*x+2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := s.Diff(parse(t, s, tt.in), "x")
			require.NoError(t, err)
			assert.Equal(t, canonical(t, tt.want), d.String())
		})
	}
}

func TestDiffChainAndProduct(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"x*sin(x)", "sin(x)+x*cos(x)"},
		{"e^(2*x)", "2*e^(2*x)"},
		{"sin(x^2)", "2*x*cos(x^2)"},
		{"(x^2+1)^3", "6*x*(x^2+1)^2"},
		{"tan(x)", "1/cos(x)^2"},
		{"atan(x)", "1/(1+x^2)"},
		{"2^x", "log(2)*2^x"},
		{"x^x", "x^x*(log(x)+1)"},
		{"sqrt(1-x^2)", "-x/sqrt(1-x^2)"},
		{"log(x^2+1)/x", "2/(x^2+1)-log(x^2+1)/x^2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := s.Diff(parse(t, s, tt.in), "x")
			require.NoError(t, err)
			sameFunction(t, s, d, tt.want, "x", 0.3, 0.5, 0.9)
		})
	}
}

func TestDiffN(t *testing.T) {
	s := gocas.NewSession()
	d, err := s.DiffN(parse(t, s, "x^3"), "x", 3)
	require.NoError(t, err)
	assert.Equal(t, "6", d.String())

	d, err = s.DiffN(parse(t, s, "sin(x)"), "x", 4)
	require.NoError(t, err)
	assert.Equal(t, "sin(x)", d.String())

	d, err = s.DiffN(parse(t, s, "x^2"), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, "x^2", d.String())

	_, err = s.DiffN(parse(t, s, "x"), "x", -1)
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
	_, err = s.Diff(parse(t, s, "x"), "2x")
	assert.ErrorIs(t, err, gocas.ErrInvalidVariableName)
}

func TestIntegrateExact(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"x^2", "x^3/3"},
		{"5", "5*x"},
		{"y", "x*y"},
		{"sin(x)", "-cos(x)"},
		{"cos(x)", "sin(x)"},
		{"e^x", "e^x"},
		{"3*x^2+2*x", "x^3+x^2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := s.Integrate(parse(t, s, tt.in), "x")
			require.NoError(t, err)
			assert.Equal(t, canonical(t, tt.want), f.String())
		})
	}
}

// TestIntegrateByDerivative checks each antiderivative by differentiating
// it back.
func TestIntegrateByDerivative(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{
		"1/x",
		"e^(2*x)",
		"x*e^x",
		"x*sin(x)",
		"x^2*cos(x)",
		"1/(x^2+1)",
		"2*x*cos(x^2)",
		"x/(x^2+1)",
		"log(x)",
		"sin(x)*cos(x)",
		"1/(x^2+3*x+2)",
		"(x+1)^5",
		"2^x",
		"tan(x)",
		"x^(1/2)",
		"1/(4-x^2)^(1/2)",
		"sin(x)^3",
		"cos(2*x)^4",
		"sin(x)^5",
		"sin(2*x)*cos(3*x)",
		"cos(x)*cos(4*x)",
		"1/(x^4+5*x^2+4)",
		"(x^2+2)/(x^4+x^3+2*x^2+x+1)",
	} {
		t.Run(src, func(t *testing.T) {
			f := parse(t, s, src)
			F, err := s.Integrate(f, "x")
			require.NoError(t, err)
			require.NotContains(t, F.String(), "integrate(", "no antiderivative found for %s", src)
			d, err := s.Diff(F, "x")
			require.NoError(t, err)
			sameFunction(t, s, d, src, "x", 0.3, 0.7, 1.1)
		})
	}
}

func TestIntegrateCircle(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{"(1-x^2)^(1/2)", "(4-9*x^2)^(1/2)", "3*(2-x^2)^(1/2)"} {
		t.Run(src, func(t *testing.T) {
			F, err := s.Integrate(parse(t, s, src), "x")
			require.NoError(t, err)
			require.NotContains(t, F.String(), "integrate(")
			d, err := s.Diff(F, "x")
			require.NoError(t, err)
			sameFunction(t, s, d, src, "x", 0.1, 0.3, 0.5)
		})
	}
}

func TestIntegrateInert(t *testing.T) {
	s := gocas.NewSession()
	F, err := s.Integrate(parse(t, s, "sin(x)/x"), "x")
	require.NoError(t, err)
	assert.Contains(t, F.String(), "integrate(")

	_, err = s.Integrate(parse(t, s, "x"), "")
	assert.ErrorIs(t, err, gocas.ErrInvalidVariableName)
}

func TestDefiniteIntegral(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		f    string
		a, b string
		want float64
	}{
		{"x^2", "0", "3", 9},
		{"sin(x)", "0", "pi", 2},
		{"1/x", "1", "e", 1},
		{"e^(-x^2)", "0", "1", 0.746824132812427},
		{"x^2", "3", "0", -9},
		{"sin(x)/x", "1", "2", 0.659329906435512},
	}
	for _, tt := range tests {
		t.Run(tt.f, func(t *testing.T) {
			v, err := s.DefiniteIntegral(parse(t, s, tt.f), "x", parse(t, s, tt.a), parse(t, s, tt.b))
			require.NoError(t, err)
			got, ok := v.Float64()
			require.True(t, ok, "%s is not numeric", v)
			assert.InDelta(t, tt.want, got, 1e-8)
		})
	}

	v, err := s.DefiniteIntegral(parse(t, s, "x^2"), "x", parse(t, s, "0"), parse(t, s, "3"))
	require.NoError(t, err)
	assert.Equal(t, "9", v.String())

	v, err = s.DefiniteIntegral(parse(t, s, "sin(x)/x"), "x", parse(t, s, "0"), parse(t, s, "a"))
	require.NoError(t, err)
	assert.Contains(t, v.String(), "defint(")

	v, err = s.DefiniteIntegral(parse(t, s, "1/x^2"), "x", parse(t, s, "1"), parse(t, s, "2"))
	require.NoError(t, err)
	assert.Equal(t, "1/2", v.String())

	v, err = s.DefiniteIntegral(parse(t, s, "1/x^(1/2)"), "x", parse(t, s, "0"), parse(t, s, "1"))
	require.NoError(t, err)
	assert.Equal(t, "2", v.String())
}

func TestDefiniteIntegralAcrossPole(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		f    string
		a, b string
	}{
		{"1/x^2", "-1", "1"},
		{"1/(x-1/2)^2", "0", "1"},
		{"1/x", "-1", "2"},
		{"tan(x)", "0", "3"},
		{"1/(x^2-2)", "0", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.f, func(t *testing.T) {
			v, err := s.DefiniteIntegral(parse(t, s, tt.f), "x", parse(t, s, tt.a), parse(t, s, tt.b))
			require.NoError(t, err)
			assert.Contains(t, v.String(), "defint(", "divergent integral gave %s", v)
		})
	}
}

func TestLaplace(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		f    string
		want string
	}{
		{"1", "1/s"},
		{"t", "1/s^2"},
		{"t^2", "2/s^3"},
		{"e^(2*t)", "1/(s-2)"},
		{"sin(3*t)", "3/(s^2+9)"},
		{"cos(t)", "s/(s^2+1)"},
		{"t*e^(-t)", "1/(s+1)^2"},
		{"e^(-t)*sin(t)", "1/((s+1)^2+1)"},
		{"sinh(2*t)", "2/(s^2-4)"},
		{"3*t+4", "3/s^2+4/s"},
		{"sin(t)*cos(t)", "1/(s^2+4)"},
		{"cos(t)*cos(2*t)", "(s/(s^2+1)+s/(s^2+9))/2"},
		{"sin(t)*sin(3*t)", "(s/(s^2+4)-s/(s^2+16))/2"},
	}
	for _, tt := range tests {
		t.Run(tt.f, func(t *testing.T) {
			F, err := s.Laplace(parse(t, s, tt.f), "t", "s")
			require.NoError(t, err)
			assert.NotContains(t, F.String(), "laplace(")
			sameFunction(t, s, F, tt.want, "s", 3.5, 5, 7.25)
		})
	}

	F, err := s.Laplace(parse(t, s, "t^2"), "t", "s")
	require.NoError(t, err)
	assert.Equal(t, "2/s^3", F.String())

	_, err = s.Laplace(parse(t, s, "t"), "t", "1s")
	assert.ErrorIs(t, err, gocas.ErrInvalidVariableName)
}

func TestInverseLaplace(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		F    string
		want string
	}{
		{"1/s", "1"},
		{"2/s^3", "t^2"},
		{"1/(s-2)", "e^(2*t)"},
		{"1/(s^2+1)", "sin(t)"},
		{"s/(s^2+4)", "cos(2*t)"},
		{"1/(s^2+3*s+2)", "e^(-t)-e^(-2*t)"},
		{"1/(s+1)^2", "t*e^(-t)"},
		{"1/(s^4+5*s^2+4)", "sin(t)/3-sin(2*t)/6"},
		{"s/((s^2+1)*(s^2+4))", "(cos(t)-cos(2*t))/3"},
	}
	for _, tt := range tests {
		t.Run(tt.F, func(t *testing.T) {
			f, err := s.InverseLaplace(parse(t, s, tt.F), "s", "t")
			require.NoError(t, err)
			assert.NotContains(t, f.String(), "ilt(")
			sameFunction(t, s, f, tt.want, "t")
		})
	}
}

func TestLaplaceRoundTrip(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{"t^3", "e^(-3*t)", "sin(2*t)", "t*e^(2*t)", "2+cos(t)"} {
		t.Run(src, func(t *testing.T) {
			F, err := s.Laplace(parse(t, s, src), "t", "s")
			require.NoError(t, err)
			f, err := s.InverseLaplace(F, "s", "t")
			require.NoError(t, err)
			sameFunction(t, s, f, src, "t")
		})
	}
}

func TestApart(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in    string
		terms int
	}{
		{"1/(x^2-1)", 2},
		{"(3*x+5)/(x^2+3*x+2)", 2},
		{"1/(x*(x+1)^2)", 3},
		{"(x^3+1)/(x^2-4)", 3},
		{"1/(x^2+1)", 1},
		{"1/(x^4+5*x^2+4)", 2},
		{"1/(x^4+x^3+2*x^2+x+1)", 2},
		{"x/((x-1)*(x^2+2))", 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := s.Apart(parse(t, s, tt.in), "x")
			require.NoError(t, err)
			assert.Len(t, r.Terms(), tt.terms, "apart gave %s", r)
			sameFunction(t, s, r, tt.in, "x", 0.3, 0.7, 3.1)
		})
	}
}

func TestExpand(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"(x+1)^2", "x^2+2*x+1"},
		{"(x+1)*(x-1)", "x^2-1"},
		{"2*(x+y)", "2*x+2*y"},
		{"(x+1)^3", "x^3+3*x^2+3*x+1"},
		{"x*(x+1)", "x^2+x"},
		{"(a+b)*(a-b)", "a^2-b^2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := s.Expand(parse(t, s, tt.in))
			require.NoError(t, err)
			assert.Equal(t, canonical(t, tt.want), r.String())
		})
	}
}

func TestFactor(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"x^2-1", "(x-1)*(x+1)"},
		{"x^2+2*x+1", "(x+1)^2"},
		{"2*x^2-8", "2*(x-2)*(x+2)"},
		{"x^2+1", "x^2+1"},
		{"y*x+x", "y*x+x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := s.Factor(parse(t, s, tt.in))
			require.NoError(t, err)
			assert.Equal(t, canonical(t, tt.want), r.String())
		})
	}

	r, err := s.Factor(parse(t, s, "x^3-6*x^2+11*x-6"))
	require.NoError(t, err)
	assert.Equal(t, gocas.Product, r.Shape)
	assert.Len(t, r.Children, 3)
	sameFunction(t, s, r, "x^3-6*x^2+11*x-6", "x")
}

func TestSimplify(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"sin(x)^2+cos(x)^2", "1"},
		{"sin(x)^2+cos(x)^2+x", "x+1"},
		{"3*sin(x)^2+3*cos(x)^2", "3"},
		{"(x^2-1)/(x-1)", "x+1"},
		{"(x^2+2*x+1)/(x+1)", "x+1"},
		{"x/(x^2+x)", "1/(x+1)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := s.Simplify(parse(t, s, tt.in))
			require.NoError(t, err)
			assert.Equal(t, canonical(t, tt.want), r.String())
		})
	}

	r, err := s.Simplify(parse(t, s, "1/x+1/(x+1)"))
	require.NoError(t, err)
	sameFunction(t, s, r, "1/x+1/(x+1)", "x")
}

func TestTaylor(t *testing.T) {
	s := gocas.NewSession()
	r, err := s.Taylor(parse(t, s, "e^x"), "x", gocas.N(0), 3)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, "x^3/6+x^2/2+x+1"), r.String())

	r, err = s.Taylor(parse(t, s, "sin(x)"), "x", gocas.N(0), 5)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, "x^5/120-x^3/6+x"), r.String())

	r, err = s.Taylor(parse(t, s, "log(x)"), "x", gocas.N(1), 2)
	require.NoError(t, err)
	sameFunction(t, s, r, "(x-1)-(x-1)^2/2", "x")

	r, err = s.Taylor(parse(t, s, "x^2+1"), "x", gocas.N(0), 10)
	require.NoError(t, err)
	assert.Equal(t, "x^2+1", r.String())

	_, err = s.Taylor(parse(t, s, "x"), "x", gocas.N(0), -1)
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
	_, err = s.Taylor(parse(t, s, "x"), "x", parse(t, s, "x+1"), 2)
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
}

func TestSubstitute(t *testing.T) {
	s := gocas.NewSession()
	r, err := s.Substitute(parse(t, s, "x^2+y"), "x", parse(t, s, "y+1"))
	require.NoError(t, err)
	assert.Equal(t, canonical(t, "(y+1)^2+y"), r.String())

	r, err = s.Substitute(parse(t, s, "sin(x)"), "x", parse(t, s, "pi/2"))
	require.NoError(t, err)
	assert.Equal(t, "1", r.String())

	_, err = s.Substitute(parse(t, s, "1/x"), "x", gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
	_, err = s.Substitute(parse(t, s, "x"), "", gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrInvalidVariableName)
}

func rootStrings(roots []*gocas.Node) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.String()
	}
	return out
}

func TestSolveExact(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want []string
	}{
		{"x^2-4", []string{"-2", "2"}},
		{"2*x+1", []string{"-1/2"}},
		{"x^2-2*x+1", []string{"1"}},
		{"x^3-6*x^2+11*x-6", []string{"1", "2", "3"}},
		{"(x^2-1)/(x-1)", []string{"-1"}},
		{"x/(x-1)", []string{"0"}},
		{"x^2-2", []string{"-2^(1/2)", "2^(1/2)"}},
		{"x*e^x", []string{"0"}},
		{"(x-1)^2*e^x", []string{"1"}},
		{"x*e^x+x^2*e^x", []string{"-1", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			roots, err := s.Solve(parse(t, s, tt.in), "x")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, rootStrings(roots)); diff != "" {
				t.Errorf("Solve(%s) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSolveNoSolution(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{"x^2+1", "y+1", "e^x+1", "e^x", "e^(-x^2)", "2^x", "3*e^(2*x)", "sin(x)-2"} {
		roots, err := s.Solve(parse(t, s, src), "x")
		require.NoError(t, err)
		assert.Empty(t, roots, "Solve(%s)", src)
	}
	_, err := s.Solve(parse(t, s, "x"), "pi")
	assert.ErrorIs(t, err, gocas.ErrInvalidVariableName)
}

func TestSolveTranscendental(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		eq   string
		want []float64
	}{
		{"e^x=2", []float64{math.Log(2)}},
		{"sin(x)=1/2", []float64{math.Pi / 6, 5 * math.Pi / 6}},
		{"log(x)=1", []float64{math.E}},
		{"x^(1/2)=3", []float64{9}},
		{"x^3-2*x-5=0", []float64{2.0945514815}},
		{"x=cos(x)", []float64{0.7390851332}},
		{"2^(x+1)=16", []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.eq, func(t *testing.T) {
			roots, err := s.SolveEquation(tt.eq, "x")
			require.NoError(t, err)
			require.Len(t, roots, len(tt.want), "roots %v", rootStrings(roots))
			for i, r := range roots {
				v, ok := r.Float64()
				require.True(t, ok, "%s is not numeric", r)
				assert.InDelta(t, tt.want[i], v, 1e-9)
			}
		})
	}
}

func TestSolveSymbolic(t *testing.T) {
	s := gocas.NewSession()
	roots, err := s.SolveEquation("a*x+b=0", "x")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, canonical(t, "-b/a"), roots[0].String())

	roots, err = s.SolveEquation("y=2*x+3", "x")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	sameFunction(t, s, roots[0], "(y-3)/2", "y")
}

func TestTransformCalls(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"diff(x^3, x)", "3*x^2"},
		{"diff(x^3)", "3*x^2"},
		{"diff(x^3, x, 2)", "6*x"},
		{"integrate(2*x)", "x^2"},
		{"defint(x^2, x, 0, 3)", "9"},
		{"laplace(t^2)", "2/s^3"},
		{"ilt(2/s^3)", "t^2"},
		{"expand((x+1)^2)", "x^2+2*x+1"},
		{"factor(x^2-1)", canonical(t, "(x-1)*(x+1)")},
		{"simplify(sin(x)^2+cos(x)^2)", "1"},
		{"taylor(e^x, x, 0, 2)", canonical(t, "x^2/2+x+1")},
		{"subst(x^2, x, 3)", "9"},
		{"diff(integrate(sin(x), x), x)", "sin(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := s.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}

	errs := []struct {
		in   string
		kind error
	}{
		{"diff(x*y)", gocas.ErrInvalidVariableName},
		{"diff(x^2, 2)", gocas.ErrInvalidVariableName},
		{"diff(x^2, x, -1)", gocas.ErrOutOfRange},
		{"taylor(x, x, x)", gocas.ErrOutOfRange},
		{"subst(x)", gocas.ErrDimension},
	}
	for _, tt := range errs {
		t.Run(tt.in, func(t *testing.T) {
			_, err := s.Parse(tt.in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestTransformLinearity(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		name  string
		v     string
		run   func(n *gocas.Node) (*gocas.Node, error)
		at    []float64
		pairs [][2]string
	}{
		{
			name:  "laplace",
			v:     "s",
			run:   func(n *gocas.Node) (*gocas.Node, error) { return s.Laplace(n, "t", "s") },
			at:    []float64{3.5, 5, 7.25},
			pairs: [][2]string{{"t^2", "sin(3*t)"}, {"e^(2*t)", "cos(t)"}, {"t*e^(-t)", "3"}, {"sinh(t)", "t^3"}},
		},
		{
			name:  "integrate",
			v:     "x",
			run:   func(n *gocas.Node) (*gocas.Node, error) { return s.Integrate(n, "x") },
			at:    []float64{0.4, 1.2, 2.5},
			pairs: [][2]string{{"x^2", "sin(x)"}, {"e^x", "1/x"}, {"x*cos(x)", "x^3"}, {"1/(x^2+1)", "log(x)"}},
		},
	}
	for _, tt := range tests {
		for _, pair := range tt.pairs {
			t.Run(tt.name+"/"+pair[0]+"+"+pair[1], func(t *testing.T) {
				a, b := parse(t, s, pair[0]), parse(t, s, pair[1])
				ab, err := s.Add(a, b)
				require.NoError(t, err)
				whole, err := tt.run(ab)
				require.NoError(t, err)
				ta, err := tt.run(a)
				require.NoError(t, err)
				tb, err := tt.run(b)
				require.NoError(t, err)
				parts, err := s.Add(ta, tb)
				require.NoError(t, err)
				sameFunction(t, s, whole, parts.String(), tt.v, tt.at...)

				a3, err := s.Multiply(gocas.N(3), a)
				require.NoError(t, err)
				t3, err := tt.run(a3)
				require.NoError(t, err)
				want, err := s.Multiply(gocas.N(3), ta)
				require.NoError(t, err)
				sameFunction(t, s, t3, want.String(), tt.v, tt.at...)
			})
		}
	}
}
