package gocas

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Rational is an exact fraction kept in lowest terms with a positive
// denominator. The zero value is 0. Rationals are immutable: every method
// returns a fresh value.
type Rational struct{ r *big.Rat }

var (
	ratZero   = RatInt(0)
	ratOne    = RatInt(1)
	ratNegOne = RatInt(-1)
	ratHalf   = ratFrac(1, 2)
)

// RatInt returns the integer n as a Rational.
func RatInt(n int64) Rational { return Rational{r: new(big.Rat).SetInt64(n)} }

// NewRational returns p/q reduced to lowest terms.
func NewRational(p, q int64) (Rational, error) {
	if q == 0 {
		return Rational{}, &Error{Op: "rational", Msg: fmt.Sprintf("%d/0", p), Err: ErrDivisionByZero}
	}
	return Rational{r: big.NewRat(p, q)}, nil
}

// ratFrac is NewRational for literals with a known non-zero denominator.
func ratFrac(p, q int64) Rational { return Rational{r: big.NewRat(p, q)} }

func ratBigInt(n *big.Int) Rational { return Rational{r: new(big.Rat).SetInt(n)} }

// ParseRational parses an integer ("42"), a decimal ("0.125"), scientific
// notation ("1.5e-3") or a fraction ("3/4").
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, &Error{Op: "rational", Msg: "empty number", Err: ErrParse}
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		d, dok := new(big.Int).SetString(strings.TrimSpace(den), 10)
		if dok && d.Sign() == 0 {
			return Rational{}, &Error{Op: "rational", Msg: num + "/0", Err: ErrDivisionByZero}
		}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rational{}, &Error{Op: "rational", Token: s, Msg: "malformed number", Err: ErrParse}
	}
	return Rational{r: r}, nil
}

// RationalFromFloat converts f through its shortest 15-digit decimal form,
// so 0.1 becomes 1/10 rather than the exact binary expansion.
func RationalFromFloat(f float64) (Rational, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Rational{}, &Error{Op: "rational", Msg: fmt.Sprint(f), Err: ErrUndefined}
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', 15, 64))
	if !ok {
		return Rational{}, &Error{Op: "rational", Msg: fmt.Sprint(f), Err: ErrParse}
	}
	return Rational{r: r}, nil
}

func (a Rational) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

func (a Rational) Add(b Rational) Rational { return Rational{r: new(big.Rat).Add(a.rat(), b.rat())} }
func (a Rational) Sub(b Rational) Rational { return Rational{r: new(big.Rat).Sub(a.rat(), b.rat())} }
func (a Rational) Mul(b Rational) Rational { return Rational{r: new(big.Rat).Mul(a.rat(), b.rat())} }
func (a Rational) Neg() Rational { return Rational{r: new(big.Rat).Neg(a.rat())} }
func (a Rational) Abs() Rational { return Rational{r: new(big.Rat).Abs(a.rat())} }

// Div returns a/b.
func (a Rational) Div(b Rational) (Rational, error) {
	if b.IsZero() {
		return Rational{}, &Error{Op: "divide", Msg: a.String() + "/0", Err: ErrDivisionByZero}
	}
	return Rational{r: new(big.Rat).Quo(a.rat(), b.rat())}, nil
}

// Inv returns 1/a.
func (a Rational) Inv() (Rational, error) { return ratOne.Div(a) }

// Mod returns a - b*floor(a/b); the result has the sign of b.
func (a Rational) Mod(b Rational) (Rational, error) {
	q, err := a.Div(b)
	if err != nil {
		return Rational{}, err
	}
	return a.Sub(b.Mul(ratBigInt(q.Floor()))), nil
}

// maxPowBits bounds the size of an exact integer power.
const maxPowBits = 1 << 20

// Pow raises a to an integer power by repeated squaring. Results wider than
// maxPowBits fail with ErrOutOfRange.
func (a Rational) Pow(n int64) (Rational, error) {
	if a.IsZero() {
		switch {
		case n == 0:
			return Rational{}, &Error{Op: "pow", Msg: "0^0", Err: ErrUndefined}
		case n < 0:
			return Rational{}, &Error{Op: "pow", Msg: fmt.Sprintf("0^%d", n), Err: ErrUndefined}
		}
		return ratZero, nil
	}
	if a.Abs().IsOne() {
		if a.Sign() < 0 && n%2 != 0 {
			return a, nil
		}
		return ratOne, nil
	}
	neg := n < 0
	if neg {
		n = -n
	}
	bits := int64(max(a.rat().Num().BitLen(), a.rat().Denom().BitLen()))
	if n < 0 || n > maxPowBits/bits {
		return Rational{}, &Error{Op: "pow", Msg: fmt.Sprintf("result of %s^%d exceeds %d bits", a, n, maxPowBits), Err: ErrOutOfRange}
	}
	result := new(big.Rat).SetInt64(1)
	base := new(big.Rat).Set(a.rat())
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		n >>= 1
		if n > 0 {
			base.Mul(base, base)
		}
	}
	if neg {
		result.Inv(result)
	}
	return Rational{r: result}, nil
}

// Root returns the exact q-th root of a when one exists.
func (a Rational) Root(q int64) (Rational, bool) {
	if q < 1 {
		return Rational{}, false
	}
	neg := a.Sign() < 0
	if neg && q%2 == 0 {
		return Rational{}, false
	}
	x := a.Abs()
	n, ok := intRoot(x.rat().Num(), q)
	if !ok {
		return Rational{}, false
	}
	d, ok := intRoot(x.rat().Denom(), q)
	if !ok {
		return Rational{}, false
	}
	r := Rational{r: new(big.Rat).SetFrac(n, d)}
	if neg {
		r = r.Neg()
	}
	return r, true
}

func (a Rational) Cmp(b Rational) int { return a.rat().Cmp(b.rat()) }
func (a Rational) Equal(b Rational) bool { return a.Cmp(b) == 0 }
func (a Rational) Sign() int { return a.rat().Sign() }
func (a Rational) IsZero() bool { return a.Sign() == 0 }
func (a Rational) IsOne() bool { return a.rat().Cmp(ratOne.r) == 0 }
func (a Rational) IsInt() bool { return a.rat().IsInt() }

// Num returns a copy of the numerator.
func (a Rational) Num() *big.Int { return new(big.Int).Set(a.rat().Num()) }

// Den returns a copy of the (positive) denominator.
func (a Rational) Den() *big.Int { return new(big.Int).Set(a.rat().Denom()) }

// Int64 returns a as an int64 when it is an integer that fits.
func (a Rational) Int64() (int64, bool) {
	if !a.IsInt() || !a.rat().Num().IsInt64() {
		return 0, false
	}
	return a.rat().Num().Int64(), true
}

// Floor returns the largest integer not greater than a.
func (a Rational) Floor() *big.Int {
	return new(big.Int).Div(a.rat().Num(), a.rat().Denom())
}

// Ceil returns the smallest integer not less than a.
func (a Rational) Ceil() *big.Int {
	f := a.Floor()
	if !a.IsInt() {
		f.Add(f, big.NewInt(1))
	}
	return f
}

func (a Rational) Float64() float64 {
	f, _ := a.rat().Float64()
	return f
}

// String renders integers bare and fractions as "p/q".
func (a Rational) String() string { return a.rat().RatString() }

// ToDecimal renders a with the given number of fractional digits, rounding
// the last one, and trims trailing zeros. It is the only lossy conversion.
func (a Rational) ToDecimal(digits int) string {
	if digits < 0 {
		digits = 0
	}
	s := a.rat().FloatString(digits)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// intRoot returns the integer k-th root of n >= 0 and whether it is exact.
func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	switch {
	case n.Sign() == 0:
		return new(big.Int), true
	case k == 1:
		return new(big.Int).Set(n), true
	case k == 2:
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	bk := big.NewInt(k)
	bk1 := big.NewInt(k - 1)
	x := new(big.Int).Lsh(big.NewInt(1), uint(int64(n.BitLen())/k+1))
	for {
		y := new(big.Int).Div(n, new(big.Int).Exp(x, bk1, nil))
		y.Add(y, new(big.Int).Mul(bk1, x))
		y.Div(y, bk)
		if y.Cmp(x) >= 0 {
			break
		}
		x = y
	}
	return x, new(big.Int).Exp(x, bk, nil).Cmp(n) == 0
}

// extractRoot splits n >= 1 as out^k * in where in has no small k-th power
// divisors left.
func extractRoot(n *big.Int, k int64) (out, in *big.Int) {
	if r, ok := intRoot(n, k); ok {
		return r, big.NewInt(1)
	}
	out = big.NewInt(1)
	in = new(big.Int).Set(n)
	bk := big.NewInt(k)
	dk := new(big.Int)
	quo, rem := new(big.Int), new(big.Int)
	for d := int64(2); d <= 1000; d++ {
		bd := big.NewInt(d)
		dk.Exp(bd, bk, nil)
		if dk.Cmp(in) > 0 {
			break
		}
		for {
			quo.QuoRem(in, dk, rem)
			if rem.Sign() != 0 {
				break
			}
			in.Set(quo)
			out.Mul(out, bd)
		}
	}
	return out, in
}
