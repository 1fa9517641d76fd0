package gocas

import (
	"fmt"
	"math"
	"sort"
)

type realFunc func(float64) (float64, error)

// 10-point Gauss-Legendre rule on [-1, 1]; nodes are symmetric.
var (
	glNodes   = [5]float64{0.1488743389816312, 0.4333953941292472, 0.6794095682990244, 0.8650633666889845, 0.9739065285171717}
	glWeights = [5]float64{0.2955242247147529, 0.2692667193099963, 0.2190863625159820, 0.1494513491505806, 0.0666713443086881}
)

func gaussLegendre(f realFunc, a, b float64) (float64, error) {
	mid, half := (a+b)/2, (b-a)/2
	sum := 0.0
	for i, t := range glNodes {
		lo, err := f(mid - half*t)
		if err != nil {
			return 0, err
		}
		hi, err := f(mid + half*t)
		if err != nil {
			return 0, err
		}
		sum += glWeights[i] * (lo + hi)
	}
	return half * sum, nil
}

func iterationError(op string, n int) error {
	return &Error{Op: op, Msg: fmt.Sprintf("no convergence after %d iterations", n), Err: ErrMaximumIterations}
}

// quadrature integrates f over [a, b] by adaptive bisection with a
// Gauss-Legendre rule on each panel. Panels live on an explicit stack so
// the depth of subdivision never grows the goroutine stack.
func (s *Session) quadrature(f realFunc, a, b float64) (float64, error) {
	if a == b {
		return 0, nil
	}
	sign := 1.0
	if a > b {
		a, b, sign = b, a, -1
	}
	type panel struct{ a, b, whole, tol float64 }
	whole, err := gaussLegendre(f, a, b)
	if err != nil {
		return 0, err
	}
	stack := []panel{{a, b, whole, s.settings.Tolerance}}
	total := 0.0
	for iter := 0; len(stack) > 0; iter++ {
		s.check()
		if iter >= s.settings.MaxIterations {
			return 0, iterationError("quadrature", iter)
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m := (p.a + p.b) / 2
		left, err := gaussLegendre(f, p.a, m)
		if err != nil {
			return 0, err
		}
		right, err := gaussLegendre(f, m, p.b)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(left+right) || math.IsInf(left+right, 0) {
			return 0, &Error{Op: "quadrature", Msg: "integrand is not finite", Err: ErrUndefined}
		}
		if math.Abs(left+right-p.whole) <= p.tol || m <= p.a || m >= p.b {
			total += left + right
			continue
		}
		stack = append(stack, panel{m, p.b, right, p.tol / 2}, panel{p.a, m, left, p.tol / 2})
	}
	return sign * total, nil
}

// bisect finds a root of f in [lo, hi], where f changes sign.
func (s *Session) bisect(f realFunc, lo, hi float64) (float64, error) {
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	for iter := 0; iter < s.settings.MaxIterations; iter++ {
		s.check()
		mid := (lo + hi) / 2
		fm, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fm == 0 || (hi-lo)/2 < s.settings.Tolerance {
			return mid, nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return 0, iterationError("bisect", s.settings.MaxIterations)
}

// newton runs Newton's method from x0.
func (s *Session) newton(f, df realFunc, x0 float64) (float64, error) {
	x := x0
	for iter := 0; iter < s.settings.MaxIterations; iter++ {
		s.check()
		fx, err := f(x)
		if err != nil {
			return 0, err
		}
		if math.Abs(fx) < s.settings.Tolerance {
			return x, nil
		}
		d, err := df(x)
		if err != nil {
			return 0, err
		}
		if math.Abs(d) < 1e-15 {
			return 0, &Error{Op: "newton", Msg: "flat derivative", Err: ErrMaximumIterations}
		}
		x -= fx / d
		if math.Abs(x) > s.settings.SearchRange*10 {
			return 0, &Error{Op: "newton", Msg: "diverged", Err: ErrOutOfRange}
		}
	}
	return 0, iterationError("newton", s.settings.MaxIterations)
}

// scanRoots samples f over [-SearchRange, SearchRange], bisects every sign
// change and runs Newton from each sample to catch roots of even
// multiplicity. Failed attempts are skipped.
func (s *Session) scanRoots(f, df realFunc) []float64 {
	r := s.settings.SearchRange
	n := s.settings.SearchSamples
	tol := math.Max(s.settings.Tolerance, 1e-12)
	var roots []float64
	addRoot := func(x float64) {
		for _, old := range roots {
			if math.Abs(old-x) < tol*1e3*math.Max(1, math.Abs(x)) {
				return
			}
		}
		roots = append(roots, x)
	}
	prevX, prevF, prevOK := 0.0, 0.0, false
	for i := 0; i <= n; i++ {
		s.check()
		x := -r + 2*r*float64(i)/float64(n)
		fx, err := f(x)
		ok := err == nil && !math.IsNaN(fx) && !math.IsInf(fx, 0)
		if ok && fx == 0 && isolatedZero(f, x) {
			addRoot(x)
		}
		if ok && prevOK && math.Signbit(fx) != math.Signbit(prevF) && fx != 0 && prevF != 0 {
			if root, err := s.bisect(f, prevX, x); err == nil {
				if v, err := f(root); err == nil && math.Abs(v) < math.Sqrt(tol) {
					addRoot(root)
				}
			}
		}
		if ok && df != nil {
			if root, err := s.newton(f, df, x); err == nil && isolatedZero(f, root) {
				addRoot(root)
			}
		}
		prevX, prevF, prevOK = x, fx, ok
	}
	sort.Float64s(roots)
	return roots
}

// isolatedZero reports whether a small |f(r)| marks a real root rather than
// a tail decaying towards zero: f must change sign around r, or |f| must
// rise on both sides of it.
func isolatedZero(f realFunc, r float64) bool {
	d := 1e-3 * math.Max(1, math.Abs(r))
	fr, err := f(r)
	if err != nil {
		return false
	}
	lo, errLo := f(r - d)
	hi, errHi := f(r + d)
	if errLo != nil || errHi != nil {
		return false
	}
	if fr == 0 && lo != 0 && hi != 0 {
		return true
	}
	if lo != 0 && hi != 0 && math.Signbit(lo) != math.Signbit(hi) {
		return true
	}
	return math.Abs(lo) > math.Abs(fr) && math.Abs(hi) > math.Abs(fr)
}

// roundRoot snaps a numeric root to ten decimal places before converting it
// to an exact rational.
func roundRoot(x float64) (Rational, error) {
	const places = 1e10
	v := math.Round(x*places) / places
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return RationalFromFloat(v)
}
