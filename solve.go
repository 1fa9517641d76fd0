package gocas

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Solve returns the real solutions of n = 0 for x in ascending order.
// Polynomials are solved exactly where their roots are rational or
// quadratic radicals; other real roots are located numerically and rounded.
// Roots that make a denominator vanish are discarded and complex roots are
// never returned. An empty result means no solution was found.
func (s *Session) Solve(n *Node, x string) (roots []*Node, err error) {
	defer recoverTo(&err)
	defer s.arm("solve")()
	if !validName(x) || constSymbols[x] {
		return nil, &Error{Op: "solve", Token: x, Err: ErrInvalidVariableName}
	}
	s.log.Debug("solve", zap.Stringer("expr", n), zap.String("var", x))
	return s.solve(n, x), nil
}

// SolveEquation parses "lhs = rhs" and solves it for x. Source without an
// equals sign is read as lhs = 0.
func (s *Session) SolveEquation(src, x string) ([]*Node, error) {
	lhs, rhs, found := strings.Cut(src, "=")
	n, err := s.Parse(lhs)
	if err != nil {
		return nil, err
	}
	if found {
		r, err := s.Parse(rhs)
		if err != nil {
			return nil, err
		}
		if n, err = s.Subtract(n, r); err != nil {
			return nil, err
		}
	}
	return s.Solve(n, x)
}

func (s *Session) solve(n *Node, x string) []*Node {
	if !n.Contains(x) {
		return nil
	}
	eq := n
	if t := s.together(n); t != nil {
		eq = t
	}
	num, den := numDen(s.cancelRational(eq))
	var out []*Node
	seen := map[string]bool{}
	for _, r := range s.solveZero(num, x, 0) {
		key := r.String()
		if seen[key] || !s.admissible(n, den, x, r) {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	sortRoots(out)
	return out
}

// admissible rejects roots that make the original expression undefined.
func (s *Session) admissible(n, den *Node, x string, r *Node) bool {
	err := attempt(func() {
		if d := s.substitute(den, x, r); d.IsZero() {
			throwf("solve", ErrDivisionByZero, "%s = %s zeroes a denominator", x, r)
		}
		s.substitute(n, x, r)
	})
	if err != nil {
		s.log.Debug("root rejected", zap.Stringer("root", r), zap.Error(err))
		return false
	}
	return true
}

func sortRoots(roots []*Node) {
	sort.SliceStable(roots, func(i, j int) bool {
		a, okA := roots[i].Float64()
		b, okB := roots[j].Float64()
		switch {
		case okA && okB:
			return a < b
		case okA != okB:
			return okA
		}
		return roots[i].String() < roots[j].String()
	})
}

// solveZero finds candidate roots of n = 0. Candidates may repeat and are
// filtered by the caller.
func (s *Session) solveZero(n *Node, x string, depth int) []*Node {
	s.check()
	if depth > s.settings.SolveDepth || !n.Contains(x) {
		return nil
	}
	if p, ok := s.toPoly(n, x); ok {
		return s.solvePoly(p, x)
	}
	if coeffs, ok := s.polyCoeffs(n, x); ok {
		if roots, ok := solveSymbolic(coeffs); ok {
			return roots
		}
	}
	switch {
	case n.Shape == Product:
		var roots []*Node
		for _, f := range sortedChildren(n) {
			if f.Contains(x) && f.Power.Sign() > 0 {
				roots = append(roots, s.solveZero(f, x, depth+1)...)
			}
		}
		return roots
	case n.Shape != Exponential && n.Power.Sign() > 0 && !n.Power.IsOne():
		return s.solveZero(n.unit(), x, depth+1)
	}
	lhs, rhs := N(0), N(0)
	for _, t := range n.Terms() {
		if t.Contains(x) {
			lhs = addInto(lhs, t.Clone())
		} else {
			rhs = subInto(rhs, t.Clone())
		}
	}
	if lhs.Shape != Sum && lhs.Shape != PolyList || !lhs.Power.IsOne() {
		var roots []*Node
		var solved bool
		if attempt(func() { roots, solved = s.isolate(lhs, rhs, x, depth+1) }) == nil && solved {
			return roots
		}
	}
	return s.solveNumeric(n, x)
}

// solvePoly returns the real roots of p: rational roots exactly, a
// remaining quadratic by radicals and anything else numerically.
func (s *Session) solvePoly(p poly, x string) []*Node {
	if p.degree() < 1 {
		return nil
	}
	var roots []*Node
	for _, r := range p.rationalRoots() {
		_, p = p.multiplicity(r)
		roots = append(roots, R(r))
	}
	switch p.degree() {
	case 2:
		a, b, c := p[2], p[1], p[0]
		disc := b.Mul(b).Sub(RatInt(4).Mul(a).Mul(c))
		if disc.Sign() < 0 {
			return roots
		}
		two := a.Mul(RatInt(2))
		for _, sign := range [...]int64{-1, 1} {
			r := addInto(R(b.Neg()), scale(sqrtOf(disc), RatInt(sign)))
			roots = append(roots, scale(r, mustInv(two)))
		}
	case -1, 0, 1:
	default:
		q := p
		dq := q.deriv()
		f := func(t float64) (float64, error) { return q.evalFloat(t), nil }
		df := func(t float64) (float64, error) { return dq.evalFloat(t), nil }
		for _, v := range s.scanRoots(f, df) {
			if r, err := roundRoot(v); err == nil {
				roots = append(roots, R(r))
			}
		}
	}
	return roots
}

// solveSymbolic handles linear and quadratic equations whose coefficients
// are free symbols.
func solveSymbolic(coeffs map[int]*Node) ([]*Node, bool) {
	a, b, c := coeffAt(coeffs, 2), coeffAt(coeffs, 1), coeffAt(coeffs, 0)
	switch polyDegree(coeffs) {
	case 1:
		return []*Node{neg(div(c, b))}, true
	case 2:
		disc := subInto(mul(b, b), scale(mul(a, c), RatInt(4)))
		if disc.Shape == Constant && disc.Mult.Sign() < 0 {
			return nil, true
		}
		root := powRat(disc, ratHalf)
		twoA := scaled(a, RatInt(2))
		plus := divInto(addInto(neg(b), root.Clone()), twoA.Clone())
		minus := divInto(subInto(neg(b), root), twoA)
		return []*Node{minus, plus}, true
	}
	return nil, false
}

// isolate solves f = rhs, where rhs is free of x, by peeling inverse
// functions off f. It reports false when some layer of f has no known
// inverse; an empty result with true means f = rhs has no real solution.
func (s *Session) isolate(f, rhs *Node, x string, depth int) ([]*Node, bool) {
	s.check()
	if depth > s.settings.SolveDepth {
		return nil, false
	}
	if !f.Mult.IsOne() {
		rhs = divInto(rhs, R(f.Mult))
		f = f.unitMult()
	}
	if f.isSymbol(x) {
		return []*Node{rhs}, true
	}
	if f.isSum() && f.Power.IsOne() {
		return s.solveZero(subInto(f, rhs), x, depth), true
	}
	if f.Shape != Exponential && f.Shape != Product && !f.Power.IsOne() {
		var roots []*Node
		for _, v := range invertPower(rhs, f.Power) {
			sub, ok := s.isolate(f.withPower(ratOne), v, x, depth+1)
			if !ok {
				return nil, false
			}
			roots = append(roots, sub...)
		}
		return roots, true
	}
	var values []*Node
	var inner *Node
	switch f.Shape {
	case Function:
		if len(f.Args) != 1 {
			return nil, false
		}
		inner = f.Args[0]
		var ok bool
		if values, ok = s.invertCall(f.Value, rhs); !ok {
			return nil, false
		}
	case Exponential:
		switch {
		case !f.Base.Contains(x):
			// b^u is positive for every real u
			if rhs.Shape == Constant && rhs.Mult.Sign() <= 0 {
				return nil, true
			}
			inner = f.Exp
			values = []*Node{divInto(s.fn("log", rhs), s.fn("log", f.Base.Clone()))}
		case !f.Exp.Contains(x):
			inner = f.Base
			values = []*Node{powInto(rhs, powRat(f.Exp.Clone(), ratNegOne))}
		default:
			return nil, false
		}
	case Product:
		coef, rest := splitFree(f, x)
		if coef.IsOne() {
			return nil, false
		}
		return s.isolate(rest, divInto(rhs, coef), x, depth+1)
	default:
		return nil, false
	}
	var roots []*Node
	for _, v := range values {
		v := v
		var sub []*Node
		ok := true
		if attempt(func() { sub, ok = s.isolate(inner.Clone(), v, x, depth+1) }) != nil {
			continue
		}
		if !ok {
			return nil, false
		}
		roots = append(roots, sub...)
	}
	return roots, true
}

// invertPower returns the real v with v^p = rhs.
func invertPower(rhs *Node, p Rational) []*Node {
	evenNum, evenDen := p.Num().Bit(0) == 0, p.Den().Bit(0) == 0
	if (evenNum || evenDen) && rhs.Shape == Constant && rhs.Mult.Sign() < 0 {
		return nil
	}
	v := powRat(rhs, mustInv(p))
	if !evenNum || evenDen || v.IsZero() {
		return []*Node{v}
	}
	return []*Node{neg(v), v}
}

// invertCall lists the values u with name(u) = rhs. It reports false for
// functions without a known inverse.
func (s *Session) invertCall(name string, rhs *Node) ([]*Node, bool) {
	outside := func(lo, hi float64) bool {
		v, ok := rhs.Float64()
		return ok && (v < lo || v > hi)
	}
	switch name {
	case "sin":
		if outside(-1, 1) {
			return nil, true
		}
		v := s.fn("asin", rhs)
		return []*Node{v, subInto(S("pi"), v.Clone())}, true
	case "cos":
		if outside(-1, 1) {
			return nil, true
		}
		v := s.fn("acos", rhs)
		return []*Node{neg(v), v}, true
	case "tan":
		return []*Node{s.fn("atan", rhs)}, true
	case "asin":
		if outside(-math.Pi/2, math.Pi/2) {
			return nil, true
		}
		return []*Node{s.fn("sin", rhs)}, true
	case "acos":
		if outside(0, math.Pi) {
			return nil, true
		}
		return []*Node{s.fn("cos", rhs)}, true
	case "atan":
		if outside(-math.Pi/2, math.Pi/2) {
			return nil, true
		}
		return []*Node{s.fn("tan", rhs)}, true
	case "log":
		return []*Node{powInto(S("e"), rhs)}, true
	case "abs":
		if outside(0, math.Inf(1)) {
			return nil, true
		}
		return []*Node{neg(rhs), rhs}, true
	case "sinh":
		// asinh(v) = log(v + sqrt(v^2+1))
		return []*Node{s.fn("log", addInto(rhs.Clone(), powRat(addInto(powR(rhs, RatInt(2)), N(1)), ratHalf)))}, true
	case "cosh":
		if outside(1, math.Inf(1)) {
			return nil, true
		}
		v := s.fn("log", addInto(rhs.Clone(), powRat(subInto(powR(rhs, RatInt(2)), N(1)), ratHalf)))
		return []*Node{neg(v), v}, true
	case "tanh":
		if outside(-1, 1) {
			return nil, true
		}
		// atanh(v) = log((1+v)/(1-v))/2
		return []*Node{scale(s.fn("log", divInto(add(N(1), rhs), sub(N(1), rhs))), ratHalf)}, true
	}
	return nil, false
}

// solveNumeric scans for real roots of a univariate n and rounds them.
func (s *Session) solveNumeric(n *Node, x string) []*Node {
	if vars := n.Variables(); len(vars) != 1 || vars[0] != x {
		return nil
	}
	f, err := compileNode(n, []string{x})
	if err != nil {
		return nil
	}
	var df realFunc
	var dn *Node
	if attempt(func() { dn = s.diff(n, x) }) == nil {
		if d, err := compileNode(dn, []string{x}); err == nil {
			df = func(t float64) (float64, error) { return d([]float64{t}) }
		}
	}
	fx := func(t float64) (float64, error) { return f([]float64{t}) }
	s.log.Debug("numeric root scan", zap.Stringer("expr", n))
	var roots []*Node
	for _, v := range s.scanRoots(fx, df) {
		if fv, err := fx(v); err != nil || math.Abs(fv) > math.Sqrt(math.Max(s.settings.Tolerance, 1e-12)) {
			continue
		}
		if r, err := roundRoot(v); err == nil {
			roots = append(roots, R(r))
		}
	}
	return roots
}
