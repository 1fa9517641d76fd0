package gocas_test

import (
	"testing"

	"github.com/njchilds90/gocas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalForms(t *testing.T) {
	s := gocas.NewSession()
	tests := []struct {
		in   string
		want string
	}{
		{"2*x+3*x", "5*x"},
		{"x+y+x", "2*x+y"},
		{"y-x", "-x+y"},
		{"x-x", "0"},
		{"0*x", "0"},
		{"x^0", "1"},
		{"x*x", "x^2"},
		{"x^2*x^-2", "1"},
		{"x^-2", "1/x^2"},
		{"x/2", "x/2"},
		{"3/(2*x)", "3/(2*x)"},
		{"-x", "-x"},
		{"x^(1/2)", "x^(1/2)"},
		{"(x*y)^2", "x^2*y^2"},
		{"(2*x)^3", "8*x^3"},
		{"(x+1)*(x+1)", "(x+1)^2"},
		{"2*(x+1)", "2*(x+1)"},
		{"x^2+2*x+1", "x^2+2*x+1"},
		{"1+2*x+x^2", "x^2+2*x+1"},
		{"sin(x)^2", "sin(x)^2"},
		{"e^x*e^x", "e^(2*x)"},
		{"1/3+1/6", "1/2"},
		{"8^(1/2)", "2*2^(1/2)"},
		{"2^(1/2)*2^(1/2)", "2"},
		{"(1/4)^(1/2)", "1/2"},
		{"(-8)^(1/3)", "-2"},
		{"2/s^3", "2/s^3"},
		{"e^log(x)", "x"},
		{"sin(-x)", "-sin(x)"},
		{"cos(-x)", "cos(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := s.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{
		"x^2+2*x+1",
		"3/(2*x)",
		"e^(2*x)*sin(x)",
		"(x+1)^(1/2)/(x-1)",
		"2*2^(1/2)",
		"-x^3/7+y",
		"log(x+1)^2",
		"2^x+3^(x+1)",
	} {
		t.Run(src, func(t *testing.T) {
			a := parse(t, s, src)
			b := parse(t, s, a.String())
			assert.True(t, a.Equal(b), "%s reparsed as %s", a, b)
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	s := gocas.NewSession()
	for _, src := range []string{"x*y+y*x", "(x+1)*(x+1)*2", "sin(pi/4)*x", "e^(x+1)*e^(1-x)"} {
		n := parse(t, s, src)
		c, err := s.Canonicalize(n)
		require.NoError(t, err)
		assert.Equal(t, n.String(), c.String())
	}
}

func TestSessionArithmetic(t *testing.T) {
	s := gocas.NewSession()
	x := parse(t, s, "x")
	xp1 := parse(t, s, "x+1")

	sum, err := s.Add(x, xp1)
	require.NoError(t, err)
	assert.Equal(t, "2*x+1", sum.String())

	diff, err := s.Subtract(xp1, x)
	require.NoError(t, err)
	assert.Equal(t, "1", diff.String())

	prod, err := s.Multiply(xp1, xp1)
	require.NoError(t, err)
	assert.Equal(t, "(x+1)^2", prod.String())

	quot, err := s.Divide(prod, xp1)
	require.NoError(t, err)
	assert.Equal(t, "x+1", quot.String())

	p, err := s.Pow(x, gocas.F(1, 2))
	require.NoError(t, err)
	assert.Equal(t, "x^(1/2)", p.String())

	assert.Equal(t, "-(x+1)", s.Negate(xp1).String())

	// operands are left untouched
	assert.Equal(t, "x", x.String())
	assert.Equal(t, "x+1", xp1.String())

	_, err = s.Divide(x, gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
	_, err = s.Pow(gocas.N(0), gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrUndefined)
}

func TestNodeInspection(t *testing.T) {
	s := gocas.NewSession()
	n := parse(t, s, "x*y+sin(z)+pi")
	assert.Equal(t, []string{"x", "y", "z"}, n.Variables())
	assert.True(t, n.Contains("z"))
	assert.False(t, n.Contains("w"))

	terms := parse(t, s, "x^2+2*x+1").Terms()
	got := make([]string, len(terms))
	for i, tm := range terms {
		got[i] = tm.String()
	}
	assert.Equal(t, []string{"x^2", "2*x", "1"}, got)

	assert.Len(t, parse(t, s, "2*(x+1)").Terms(), 2)
	assert.Len(t, parse(t, s, "x*y").Terms(), 1)

	assert.True(t, parse(t, s, "0").IsZero())
	assert.True(t, parse(t, s, "2/2").IsOne())
	assert.True(t, parse(t, s, "3/4").IsConstant())
	assert.Equal(t, gocas.Sum, parse(t, s, "x+y").Shape)
	assert.Equal(t, gocas.PolyList, parse(t, s, "x^2+x").Shape)
	assert.Equal(t, gocas.Product, parse(t, s, "x*y").Shape)
	assert.Equal(t, gocas.Exponential, parse(t, s, "2^x").Shape)
}

func TestClone(t *testing.T) {
	s := gocas.NewSession()
	n := parse(t, s, "x*sin(x)+1")
	c := n.Clone()
	require.True(t, n.Equal(c))
	c.Mult = gocas.RatInt(3)
	assert.Equal(t, "x*sin(x)+1", n.String())
}

func TestDecimal(t *testing.T) {
	s := gocas.NewSession()
	assert.Equal(t, "0.25*x", parse(t, s, "x/4").Decimal(3))
	assert.Equal(t, "0.33333", parse(t, s, "1/3").Decimal(5))
	assert.Equal(t, "x^2+0.5", parse(t, s, "x^2+1/2").Decimal(4))

	require.NoError(t, s.WithSettings(func(st *gocas.Settings) {
		st.DecimalOutput = true
		st.Precision = 2
	}, func() error {
		assert.Equal(t, "0.75", s.Format(parse(t, s, "3/4")))
		return nil
	}))
	assert.Equal(t, "3/4", s.Format(parse(t, s, "3/4")))
}

func TestArithmeticIdentities(t *testing.T) {
	s := gocas.NewSession()
	shapes := []string{
		"7/3",
		"x",
		"x^2+2*x+1",
		"x*y",
		"sin(x)",
		"2^x",
		"3*(x+1)",
		"e^(2*x)*sin(x)",
		"2^(1/2)",
		"1/(x-1)",
	}
	for _, as := range shapes {
		a := parse(t, s, as)
		t.Run(as, func(t *testing.T) {
			sum, err := s.Add(a, gocas.N(0))
			require.NoError(t, err)
			assert.True(t, a.Equal(sum), "%s+0 = %s", a, sum)

			prod, err := s.Multiply(a, gocas.N(1))
			require.NoError(t, err)
			assert.True(t, a.Equal(prod), "%s*1 = %s", a, prod)

			zero, err := s.Multiply(a, gocas.N(0))
			require.NoError(t, err)
			assert.True(t, zero.IsZero(), "%s*0 = %s", a, zero)

			for _, bs := range shapes {
				b := parse(t, s, bs)
				ab, err := s.Add(a, b)
				require.NoError(t, err)
				ba, err := s.Add(b, a)
				require.NoError(t, err)
				assert.True(t, ab.Equal(ba), "(%s)+(%s): %s vs %s", a, b, ab, ba)

				ab, err = s.Multiply(a, b)
				require.NoError(t, err)
				ba, err = s.Multiply(b, a)
				require.NoError(t, err)
				assert.True(t, ab.Equal(ba), "(%s)*(%s): %s vs %s", a, b, ab, ba)
			}
		})
	}
}

func TestPowerSizeLimit(t *testing.T) {
	s := gocas.NewSession()
	_, err := s.Parse("3^(2^26)")
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)

	n, err := s.Parse("2^64")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", n.String())

	n, err = s.Parse("(-1)^(2^40)")
	require.NoError(t, err)
	assert.Equal(t, "1", n.String())
}
