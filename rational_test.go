package gocas_test

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/njchilds90/gocas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rat(t *testing.T, s string) gocas.Rational {
	t.Helper()
	r, err := gocas.ParseRational(s)
	require.NoError(t, err)
	return r
}

func TestNewRational(t *testing.T) {
	r, err := gocas.NewRational(6, -8)
	require.NoError(t, err)
	assert.Equal(t, "-3/4", r.String())
	assert.Equal(t, "4", r.Den().String())

	_, err = gocas.NewRational(1, 0)
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)

	var zero gocas.Rational
	assert.True(t, zero.IsZero())
	assert.Equal(t, "0", zero.String())
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"0.125", "1/8"},
		{"1.5e-3", "3/2000"},
		{"2E3", "2000"},
		{"3/4", "3/4"},
		{"10/4", "5/2"},
		{" 1/3 ", "1/3"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, rat(t, tc.in).String())
		})
	}

	_, err := gocas.ParseRational("5/0")
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
	_, err = gocas.ParseRational("abc")
	assert.ErrorIs(t, err, gocas.ErrParse)
	_, err = gocas.ParseRational("")
	assert.ErrorIs(t, err, gocas.ErrParse)
}

func TestRationalArithmetic(t *testing.T) {
	a, b := rat(t, "1/3"), rat(t, "1/6")
	assert.Equal(t, "1/2", a.Add(b).String())
	assert.Equal(t, "1/6", a.Sub(b).String())
	assert.Equal(t, "1/18", a.Mul(b).String())
	assert.Equal(t, "-1/3", a.Neg().String())
	assert.Equal(t, "1/3", a.Neg().Abs().String())

	q, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, "2", q.String())

	_, err = a.Div(gocas.RatInt(0))
	assert.True(t, errors.Is(err, gocas.ErrDivisionByZero))
	_, err = gocas.RatInt(0).Inv()
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)

	inv, err := rat(t, "-2/5").Inv()
	require.NoError(t, err)
	assert.Equal(t, "-5/2", inv.String())
}

func TestRationalMod(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"7", "3", "1"},
		{"-7", "3", "2"},
		{"7", "-3", "-2"},
		{"7/2", "1", "1/2"},
	}
	for _, tc := range tests {
		m, err := rat(t, tc.a).Mod(rat(t, tc.b))
		require.NoError(t, err)
		assert.Equal(t, tc.want, m.String(), "%s mod %s", tc.a, tc.b)
	}
	_, err := gocas.RatInt(1).Mod(gocas.RatInt(0))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestRationalPow(t *testing.T) {
	p, err := rat(t, "2/3").Pow(5)
	require.NoError(t, err)
	assert.Equal(t, "32/243", p.String())

	p, err = rat(t, "2/3").Pow(-2)
	require.NoError(t, err)
	assert.Equal(t, "9/4", p.String())

	p, err = gocas.RatInt(7).Pow(0)
	require.NoError(t, err)
	assert.True(t, p.IsOne())

	_, err = gocas.RatInt(0).Pow(0)
	assert.ErrorIs(t, err, gocas.ErrUndefined)
	_, err = gocas.RatInt(0).Pow(-1)
	assert.ErrorIs(t, err, gocas.ErrUndefined)

	big, err := gocas.RatInt(3).Pow(100)
	require.NoError(t, err)
	assert.Equal(t, "515377520732011331036461129765621272702107522001", big.String())

	p, err = gocas.RatInt(-1).Pow(1<<40 + 1)
	require.NoError(t, err)
	assert.Equal(t, "-1", p.String())
	p, err = rat(t, "-1").Pow(-(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, "1", p.String())

	_, err = gocas.RatInt(3).Pow(1 << 26)
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
	_, err = rat(t, "1/2").Pow(-(1 << 30))
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
	_, err = gocas.RatInt(2).Pow(math.MinInt64)
	assert.ErrorIs(t, err, gocas.ErrOutOfRange)
}

func TestRationalRoot(t *testing.T) {
	r, ok := rat(t, "8/27").Root(3)
	require.True(t, ok)
	assert.Equal(t, "2/3", r.String())

	r, ok = gocas.RatInt(-32).Root(5)
	require.True(t, ok)
	assert.Equal(t, "-2", r.String())

	_, ok = gocas.RatInt(2).Root(2)
	assert.False(t, ok)
	_, ok = gocas.RatInt(-4).Root(2)
	assert.False(t, ok)
}

func TestRationalConversions(t *testing.T) {
	r := rat(t, "-7/2")
	assert.Equal(t, "-4", r.Floor().String())
	assert.Equal(t, "-3", r.Ceil().String())
	assert.Equal(t, -3.5, r.Float64())
	assert.Equal(t, -1, r.Sign())
	assert.False(t, r.IsInt())

	n, ok := gocas.RatInt(12).Int64()
	assert.True(t, ok)
	assert.EqualValues(t, 12, n)
	_, ok = r.Int64()
	assert.False(t, ok)

	assert.True(t, rat(t, "2/4").Equal(rat(t, "1/2")))
	assert.Equal(t, -1, rat(t, "1/3").Cmp(rat(t, "1/2")))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		in     string
		digits int
		want   string
	}{
		{"1/4", 21, "0.25"},
		{"1/3", 5, "0.33333"},
		{"2/3", 3, "0.667"},
		{"-1/8", 2, "-0.13"},
		{"5", 4, "5"},
		{"-1/1000", 2, "0"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, rat(t, tc.in).ToDecimal(tc.digits), "%s to %d digits", tc.in, tc.digits)
	}
}

func TestToDecimalMatchesFloatDivision(t *testing.T) {
	tests := []struct{ p, q int64 }{
		{1, 3}, {2, 7}, {-5, 9}, {22, 7}, {355, 113}, {1, 1024},
		{123456789, 1000}, {-1, 6}, {17, 19}, {999, 1001},
	}
	for _, tc := range tests {
		r, err := gocas.NewRational(tc.p, tc.q)
		require.NoError(t, err)
		dec := r.ToDecimal(20)
		v, err := strconv.ParseFloat(dec, 64)
		require.NoError(t, err, dec)
		want := float64(tc.p) / float64(tc.q)
		assert.InDelta(t, want, v, 1e-15*math.Max(1, math.Abs(want)), "%d/%d rendered as %s", tc.p, tc.q, dec)
	}
}

func TestRationalFromFloat(t *testing.T) {
	r, err := gocas.RationalFromFloat(0.1)
	require.NoError(t, err)
	assert.Equal(t, "1/10", r.String())

	r, err = gocas.RationalFromFloat(-2.5)
	require.NoError(t, err)
	assert.Equal(t, "-5/2", r.String())

	_, err = gocas.RationalFromFloat(posInf())
	assert.ErrorIs(t, err, gocas.ErrUndefined)
}
