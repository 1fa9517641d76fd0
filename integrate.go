package gocas

import (
	"errors"
	"math"

	"go.uber.org/zap"
)

// Integrate returns an antiderivative of n with respect to x. Parts that no
// rule can integrate stay as inert integrate(f,x) calls.
func (s *Session) Integrate(n *Node, x string) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("integrate")()
	if !validName(x) {
		return nil, &Error{Op: "integrate", Token: x, Err: ErrInvalidVariableName}
	}
	s.log.Debug("integrate", zap.Stringer("expr", n), zap.String("var", x))
	return s.integrate(n, x, 0), nil
}

func inertIntegral(f *Node, x string) *Node {
	return newFunc("integrate", []*Node{f.Clone(), S(x)})
}

func (s *Session) integrate(n *Node, x string, depth int) *Node {
	s.check()
	if !n.Contains(x) {
		return mul(n, S(x))
	}
	if n.isSum() && n.Power.IsOne() {
		acc := N(0)
		for _, t := range n.Terms() {
			acc = addInto(acc, s.integrate(t, x, depth))
		}
		return acc
	}
	coef, rest := splitFree(n, x)
	if depth <= s.settings.IntegrationDepth {
		if res := s.integrateUnit(rest, x, depth); res != nil {
			return mulInto(coef, res)
		}
	}
	return mulInto(coef, inertIntegral(rest, x))
}

// tryIntegrate integrates n and reports whether every part was eliminated.
func (s *Session) tryIntegrate(n *Node, x string, depth int) (*Node, bool) {
	res := s.integrate(n, x, depth)
	return res, !res.hasCall("integrate")
}

// integrateUnit integrates an x-dependent node with Mult 1, returning nil
// when no rule applies.
func (s *Session) integrateUnit(f *Node, x string, depth int) *Node {
	switch f.Shape {
	case Monomial:
		return s.integratePower(S(x), f.Power, N(1))
	case Sum, PolyList:
		return s.integrateSumPower(f, x, depth)
	case Function:
		return s.integrateCall(f, x, depth)
	case Exponential:
		return s.integrateExponential(f, x, depth)
	case Product:
		return s.integrateProduct(f, x, depth)
	}
	return nil
}

// integratePower integrates u^p where u is linear with du/dx = a.
func (s *Session) integratePower(u *Node, p Rational, a *Node) *Node {
	if p.Equal(ratNegOne) {
		return divInto(s.fn("log", u), a.Clone())
	}
	p1 := p.Add(ratOne)
	return divInto(powRat(u, p1), scale(a.Clone(), p1))
}

func (s *Session) integrateSumPower(f *Node, x string, depth int) *Node {
	inner := f.unit()
	p := f.Power
	if a, _, ok := decomposeLinear(inner, x); ok {
		return s.integratePower(inner, p, a)
	}
	if k, ok := p.Int64(); ok && k > 1 && k <= int64(s.settings.ExpandLimit) {
		return s.integrate(s.expand(f), x, depth+1)
	}
	if r := s.integrateRational(f, x, depth); r != nil {
		return r
	}
	if p.Equal(ratFrac(-1, 2)) {
		if r := s.integrateArcsine(inner, x); r != nil {
			return r
		}
	}
	if p.Equal(ratHalf) {
		if r := s.integrateCircle(inner, x); r != nil {
			return r
		}
	}
	return s.integrateSubstitution(f, x, depth)
}

// integrateArcsine handles (c - a*x^2)^(-1/2) with a, c > 0.
func (s *Session) integrateArcsine(inner *Node, x string) *Node {
	p, ok := s.toPoly(inner, x)
	if !ok || p.degree() != 2 || !p.coeff(1).IsZero() {
		return nil
	}
	a, c := p.coeff(2).Neg(), p.coeff(0)
	if a.Sign() <= 0 || c.Sign() <= 0 {
		return nil
	}
	k, _ := a.Div(c)
	arg := mulInto(sqrtOf(k), S(x))
	return divInto(s.fn("asin", arg), sqrtOf(a))
}

// integrateCircle handles (c - a*x^2)^(1/2) with a, c > 0:
// x/2*(c - a*x^2)^(1/2) + c/(2*a^(1/2))*asin((a/c)^(1/2)*x).
func (s *Session) integrateCircle(inner *Node, x string) *Node {
	p, ok := s.toPoly(inner, x)
	if !ok || p.degree() != 2 || !p.coeff(1).IsZero() {
		return nil
	}
	a, c := p.coeff(2).Neg(), p.coeff(0)
	if a.Sign() <= 0 || c.Sign() <= 0 {
		return nil
	}
	k, _ := a.Div(c)
	half := scale(mulInto(S(x), powRat(inner.Clone(), ratHalf)), ratHalf)
	arc := divInto(s.fn("asin", mulInto(sqrtOf(k), S(x))), sqrtOf(a))
	return addInto(half, scale(arc, c.Mul(ratHalf)))
}

// integrateTrigPower reduces sin(u)^n and cos(u)^n for integer n >= 3:
//
//	sin^n: -sin^(n-1)*cos/(n*a) + (n-1)/n * integral of sin^(n-2)
//	cos^n:  cos^(n-1)*sin/(n*a) + (n-1)/n * integral of cos^(n-2)
func (s *Session) integrateTrigPower(name string, u, a *Node, n int64, x string, depth int) *Node {
	s.check()
	switch n {
	case 0:
		return S(x)
	case 1:
		return divInto(antiderivatives[name](s, u.Clone()), a.Clone())
	case 2:
		return divInto(squareAntiderivatives[name](s, u.Clone()), a.Clone())
	}
	other := "cos"
	sign := ratNegOne
	if name == "cos" {
		other, sign = "sin", ratOne
	}
	k := RatInt(n)
	head := mulInto(powRat(s.fn(name, u.Clone()), RatInt(n-1)), s.fn(other, u.Clone()))
	head = divInto(scale(head, sign), scale(a.Clone(), k))
	w, _ := RatInt(n - 1).Div(k)
	return addInto(head, scale(s.integrateTrigPower(name, u, a, n-2, x, depth+1), w))
}

// antiderivatives maps f to F with F' = f; squareAntiderivatives does the
// same for f^2.
var antiderivatives, squareAntiderivatives map[string]func(s *Session, u *Node) *Node

func init() {
	antiderivatives = map[string]func(s *Session, u *Node) *Node{
		"sin":  func(s *Session, u *Node) *Node { return negInto(s.fn("cos", u)) },
		"cos":  func(s *Session, u *Node) *Node { return s.fn("sin", u) },
		"tan":  func(s *Session, u *Node) *Node { return negInto(s.fn("log", s.fn("cos", u))) },
		"sec":  func(s *Session, u *Node) *Node { return s.fn("log", addInto(s.fn("sec", u.Clone()), s.fn("tan", u))) },
		"csc":  func(s *Session, u *Node) *Node { return negInto(s.fn("log", addInto(s.fn("csc", u.Clone()), s.fn("cot", u)))) },
		"cot":  func(s *Session, u *Node) *Node { return s.fn("log", s.fn("sin", u)) },
		"sinh": func(s *Session, u *Node) *Node { return s.fn("cosh", u) },
		"cosh": func(s *Session, u *Node) *Node { return s.fn("sinh", u) },
		"tanh": func(s *Session, u *Node) *Node { return s.fn("log", s.fn("cosh", u)) },
		"log": func(s *Session, u *Node) *Node {
			return subInto(mulInto(u.Clone(), s.fn("log", u.Clone())), u)
		},
		"asin": func(s *Session, u *Node) *Node {
			return addInto(mulInto(u.Clone(), s.fn("asin", u.Clone())),
				powRat(subInto(N(1), powRat(u, RatInt(2))), ratHalf))
		},
		"acos": func(s *Session, u *Node) *Node {
			return subInto(mulInto(u.Clone(), s.fn("acos", u.Clone())),
				powRat(subInto(N(1), powRat(u, RatInt(2))), ratHalf))
		},
		"atan": func(s *Session, u *Node) *Node {
			return subInto(mulInto(u.Clone(), s.fn("atan", u.Clone())),
				scale(s.fn("log", addInto(N(1), powRat(u, RatInt(2)))), ratHalf))
		},
	}
	squareAntiderivatives = map[string]func(s *Session, u *Node) *Node{
		"sin": func(s *Session, u *Node) *Node {
			return subInto(scale(u.Clone(), ratHalf), scale(s.fn("sin", scale(u, RatInt(2))), ratFrac(1, 4)))
		},
		"cos": func(s *Session, u *Node) *Node {
			return addInto(scale(u.Clone(), ratHalf), scale(s.fn("sin", scale(u, RatInt(2))), ratFrac(1, 4)))
		},
		"tan":  func(s *Session, u *Node) *Node { return subInto(s.fn("tan", u.Clone()), u) },
		"sec":  func(s *Session, u *Node) *Node { return s.fn("tan", u) },
		"csc":  func(s *Session, u *Node) *Node { return negInto(s.fn("cot", u)) },
		"cot":  func(s *Session, u *Node) *Node { return negInto(addInto(s.fn("cot", u.Clone()), u)) },
		"sinh": func(s *Session, u *Node) *Node {
			return subInto(scale(s.fn("sinh", scale(u.Clone(), RatInt(2))), ratFrac(1, 4)), scale(u, ratHalf))
		},
		"cosh": func(s *Session, u *Node) *Node {
			return addInto(scale(s.fn("sinh", scale(u.Clone(), RatInt(2))), ratFrac(1, 4)), scale(u, ratHalf))
		},
	}
}

// byPartsFunctions integrate as x*f - integral of x*f'.
var byPartsFunctions = map[string]bool{"log": true, "asin": true, "acos": true, "atan": true}

func (s *Session) integrateCall(f *Node, x string, depth int) *Node {
	if len(f.Args) == 1 {
		u := f.Args[0]
		if a, _, ok := decomposeLinear(u, x); ok {
			if n, isInt := f.Power.Int64(); isInt && n >= 3 && n <= int64(s.settings.ExpandLimit) &&
				(f.Value == "sin" || f.Value == "cos") {
				return s.integrateTrigPower(f.Value, u, a, n, x, depth)
			}
			var table map[string]func(*Session, *Node) *Node
			switch {
			case f.Power.IsOne():
				table = antiderivatives
			case f.Power.Equal(RatInt(2)):
				table = squareAntiderivatives
			}
			if F := table[f.Value]; F != nil {
				return divInto(F(s, u.Clone()), a)
			}
		}
	}
	if r := s.integrateSubstitution(f, x, depth); r != nil {
		return r
	}
	if byPartsFunctions[f.Value] && f.Power.Sign() > 0 {
		inner, ok := s.tryIntegrate(s.simplifyQuick(mul(S(x), s.diff(f, x))), x, depth+1)
		if ok {
			return subInto(mul(S(x), f), inner)
		}
	}
	return nil
}

func (s *Session) integrateExponential(f *Node, x string, depth int) *Node {
	if !f.Base.Contains(x) {
		if a, _, ok := decomposeLinear(f.Exp, x); ok {
			den := a
			if !f.Base.isSymbol("e") {
				den = mulInto(a, s.fn("log", f.Base.Clone()))
			}
			return divInto(f.Clone(), den)
		}
	}
	return s.integrateSubstitution(f, x, depth)
}

func (s *Session) integrateProduct(f *Node, x string, depth int) *Node {
	if r := s.integrateRational(f, x, depth); r != nil {
		return r
	}
	if r := s.integrateExpTrig(f, x); r != nil {
		return r
	}
	if r := s.integrateSubstitution(f, x, depth); r != nil {
		return r
	}
	if r := s.integrateByParts(f, x, depth); r != nil {
		return r
	}
	if g := s.productToSum(f); g != nil {
		if r, ok := s.tryIntegrate(g, x, depth+1); ok {
			return r
		}
	}
	if e := s.expand(f); e.String() != f.String() {
		if r, ok := s.tryIntegrate(e, x, depth+1); ok {
			return r
		}
	}
	return nil
}

// integrateRational integrates N(x)/D(x) with numeric coefficients through
// partial fractions.
func (s *Session) integrateRational(f *Node, x string, depth int) *Node {
	num, den := numDen(f)
	np, ok1 := s.toPoly(num, x)
	dp, ok2 := s.toPoly(den, x)
	if !ok1 || !ok2 || dp.isZero() {
		return nil
	}
	if dp.degree() == 0 {
		return integratePoly(np.scale(mustInv(dp[0])), x)
	}
	pf, ok := s.partialFractions(np, dp)
	if !ok {
		return nil
	}
	acc := integratePoly(pf.quotient, x)
	for _, t := range pf.terms {
		acc = addInto(acc, s.integrateFraction(t, x))
	}
	return acc
}

func integratePoly(p poly, x string) *Node {
	acc := N(0)
	for i, c := range p.trim() {
		if c.IsZero() {
			continue
		}
		k := RatInt(int64(i + 1))
		q, _ := c.Div(k)
		acc = addInto(acc, scale(powRat(S(x), k), q))
	}
	return acc
}

func (s *Session) integrateFraction(t fraction, x string) *Node {
	switch t.kind {
	case linearFraction:
		u := linear(t.root).node(x)
		if t.power == 1 {
			return scale(s.fn("log", u), t.coef)
		}
		k := RatInt(int64(1 - t.power))
		c, _ := t.coef.Div(k)
		return scale(powRat(u, k), c)
	case quadraticFraction:
		if t.power > 1 {
			return inertIntegral(t.node(x), x)
		}
		b, c := t.num.coeff(1), t.num.coeff(0)
		h := t.den.coeff(1).Mul(ratHalf)
		k2 := t.den.coeff(0).Sub(h.Mul(h))
		res := scale(s.fn("log", t.den.node(x)), b.Mul(ratHalf))
		c2 := c.Sub(b.Mul(h))
		if c2.IsZero() {
			return res
		}
		shifted := addInto(S(x), R(h))
		switch k2.Sign() {
		case 1:
			w := sqrtOf(k2)
			at := s.fn("atan", divInto(shifted, w.Clone()))
			return addInto(res, scale(divInto(at, w), c2))
		case -1:
			m := sqrtOf(k2.Neg())
			ratio := divInto(subInto(shifted.Clone(), m.Clone()), addInto(shifted, m.Clone()))
			return addInto(res, scale(divInto(s.fn("log", ratio), scale(m, RatInt(2))), c2))
		}
		return addInto(res, scale(powRat(shifted, ratNegOne), c2.Neg()))
	}
	return inertIntegral(divInto(t.num.node(x), t.den.node(x)), x)
}

// integrateExpTrig handles e^(a*x+b)*sin(c*x+d) and the cosine analogue.
func (s *Session) integrateExpTrig(f *Node, x string) *Node {
	if f.Shape != Product || len(f.Children) != 2 {
		return nil
	}
	var ex, tr *Node
	for _, c := range f.Children {
		switch {
		case c.Shape == Exponential && c.Base.isSymbol("e"):
			ex = c
		case c.Shape == Function && (c.Value == "sin" || c.Value == "cos") && c.Power.IsOne() && len(c.Args) == 1:
			tr = c
		}
	}
	if ex == nil || tr == nil {
		return nil
	}
	a, _, ok1 := decomposeLinear(ex.Exp, x)
	c, _, ok2 := decomposeLinear(tr.Args[0], x)
	if !ok1 || !ok2 {
		return nil
	}
	u := tr.Args[0]
	sin, cos := s.fn("sin", u.Clone()), s.fn("cos", u.Clone())
	var body *Node
	if tr.Value == "sin" {
		body = subInto(mul(a, sin), mul(c, cos))
	} else {
		body = addInto(mul(a, cos), mul(c, sin))
	}
	den := addInto(pow(a, N(2)), pow(c, N(2)))
	return divInto(mulInto(ex.Clone(), body), den)
}

// integrateSubstitution tries u = g(x) for each inner expression g of f,
// accepting the first one for which f/g' rewrites free of x.
func (s *Session) integrateSubstitution(f *Node, x string, depth int) *Node {
	if depth >= s.settings.IntegrationDepth {
		return nil
	}
	const u = "#u"
	for _, g := range substitutionCandidates(f, x) {
		s.check()
		dg := s.diff(g, x)
		if dg.IsZero() {
			continue
		}
		var ratio *Node
		if attempt(func() { ratio = s.replaceSub(s.simplifyQuick(div(f, dg)), g, u) }) != nil {
			continue
		}
		if ratio.Contains(x) {
			continue
		}
		G, ok := s.tryIntegrate(ratio, u, depth+1)
		if !ok {
			continue
		}
		return s.substitute(G, u, g)
	}
	return nil
}

func substitutionCandidates(f *Node, x string) []*Node {
	var out []*Node
	seen := map[string]bool{}
	addCand := func(g *Node) {
		if !g.Contains(x) || g.isSymbol(x) {
			return
		}
		if _, _, lin := decomposeLinear(g, x); lin {
			return
		}
		if k := g.String(); !seen[k] {
			seen[k] = true
			out = append(out, g)
		}
	}
	var visit func(n *Node)
	visit = func(n *Node) {
		switch n.Shape {
		case Function:
			for _, a := range n.Args {
				addCand(a)
			}
			addCand(n.unit())
		case Exponential:
			addCand(n.Exp)
			addCand(n.Base)
			e := n.Clone()
			e.Mult = ratOne
			addCand(e)
		case Sum, PolyList:
			if !n.Power.IsOne() {
				addCand(n.unit())
			}
		case Monomial:
			if !n.Power.IsOne() {
				addCand(n.unit().withPower(n.Power))
			}
		case Product:
			for _, c := range sortedChildren(n) {
				visit(c)
			}
		}
	}
	visit(f)
	return out
}

func (n *Node) withPower(p Rational) *Node {
	c := n.Clone()
	c.Power = p
	return c
}

// replaceSub rewrites occurrences of target inside n as the symbol u.
func (s *Session) replaceSub(n, target *Node, u string) *Node {
	key := target.String()
	switch {
	case n.String() == key:
		return S(u)
	case n.Shape == Constant:
		return n.Clone()
	case n.Shape != Exponential && n.Shape != Monomial && n.unit().String() == key:
		return scale(powR(S(u), n.Power), n.Mult)
	case n.Shape == Exponential && n.unit().String() == key:
		return scale(S(u), n.Mult)
	case n.Shape == Monomial && target.Shape == Monomial && target.Value == n.Value && target.Mult.IsOne():
		if m, err := n.Power.Div(target.Power); err == nil && m.IsInt() {
			return scale(powR(S(u), m), n.Mult)
		}
		return n.Clone()
	case n.Shape == Exponential && target.Shape == Exponential && target.Mult.IsOne() &&
		n.Base.String() == target.Base.String():
		if q := s.simplifyQuick(div(n.Exp, target.Exp)); q.Shape == Constant {
			return scale(powR(S(u), q.Mult), n.Mult)
		}
	}
	return s.mapNode(n, func(c *Node) *Node { return s.replaceSub(c, target, u) })
}

// integrateByParts handles polynomial*g (u = polynomial) and
// log/inverse-trig*algebraic (u = the transcendental factor).
func (s *Session) integrateByParts(f *Node, x string, depth int) *Node {
	if f.Shape != Product || depth >= s.settings.IntegrationDepth {
		return nil
	}
	fs := sortedChildren(f)
	polyPart, rest := N(1), N(1)
	for _, c := range fs {
		if p, ok := s.toPoly(c, x); ok && p.degree() >= 1 {
			polyPart = mulInto(polyPart, c.Clone())
		} else {
			rest = mulInto(rest, c.Clone())
		}
	}
	if !polyPart.IsOne() && !rest.IsOne() {
		if V, ok := s.tryIntegrate(rest, x, depth+1); ok {
			inner, ok := s.tryIntegrate(s.expand(mul(s.diff(polyPart, x), V)), x, depth+1)
			if ok {
				return subInto(mul(polyPart, V), inner)
			}
		}
	}
	for i, c := range fs {
		if c.Shape != Function || !byPartsFunctions[c.Value] || !c.Power.IsOne() {
			continue
		}
		others := N(1)
		for j, o := range fs {
			if j != i {
				others = mulInto(others, o.Clone())
			}
		}
		V, ok := s.tryIntegrate(others, x, depth+1)
		if !ok {
			continue
		}
		inner, ok := s.tryIntegrate(s.simplifyQuick(mul(V, s.diff(c, x))), x, depth+1)
		if ok {
			return subInto(mul(c, V), inner)
		}
	}
	return nil
}

// DefiniteIntegral evaluates the integral of n over [a, b]. It uses the
// antiderivative when one exists and adaptive quadrature otherwise; a
// quadrature that does not converge leaves an inert defint(f,x,a,b).
func (s *Session) DefiniteIntegral(n *Node, x string, a, b *Node) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("defint")()
	if !validName(x) {
		return nil, &Error{Op: "defint", Token: x, Err: ErrInvalidVariableName}
	}
	return s.defint(n, x, a, b), nil
}

func (s *Session) defint(f *Node, x string, a, b *Node) *Node {
	lo, ok1 := a.Float64()
	hi, ok2 := b.Float64()
	if ok1 && ok2 && s.singularIn(f, x, lo, hi) {
		s.log.Debug("integrand has a pole in range", zap.Stringer("expr", f))
	} else if F, ok := s.tryIntegrate(f, x, 0); ok {
		var res *Node
		err := attempt(func() { res = subInto(s.substitute(F, x, b), s.substitute(F, x, a)) })
		if err == nil {
			return res
		}
		if !errors.Is(err, ErrDivisionByZero) && !errors.Is(err, ErrOutOfFunctionDomain) && !errors.Is(err, ErrUndefined) {
			throw(err)
		}
	}
	inert := newFunc("defint", []*Node{f.Clone(), S(x), a.Clone(), b.Clone()})
	if !ok1 || !ok2 {
		return inert
	}
	fn, err := compileNode(f, []string{x})
	if err != nil {
		return inert
	}
	v, err := s.quadrature(func(t float64) (float64, error) { return fn([]float64{t}) }, lo, hi)
	if err != nil {
		s.log.Debug("quadrature failed", zap.Stringer("expr", f), zap.Error(err))
		return inert
	}
	r, err := RationalFromFloat(v)
	if err != nil {
		return inert
	}
	return R(r)
}

// singularIn reports whether f has a pole strictly inside (lo, hi): a
// denominator that vanishes there or a tan, sec, cot or csc at its
// asymptote. The antiderivative cannot be trusted across such a point.
func (s *Session) singularIn(f *Node, x string, lo, hi float64) bool {
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, g := range s.poleFactors(f, x) {
		if s.vanishesIn(g, x, lo, hi) {
			return true
		}
	}
	return false
}

// poleFactors lists the expressions whose zeros are poles of n.
func (s *Session) poleFactors(n *Node, x string) []*Node {
	if !n.Contains(x) {
		return nil
	}
	var out []*Node
	switch n.Shape {
	case Sum, PolyList, Product:
		for _, c := range sortedChildren(n) {
			out = append(out, s.poleFactors(c, x)...)
		}
	case Function:
		for _, a := range n.Args {
			out = append(out, s.poleFactors(a, x)...)
		}
		if len(n.Args) == 1 {
			switch n.Value {
			case "tan", "sec":
				out = append(out, s.fn("cos", n.Args[0].Clone()))
			case "cot", "csc":
				out = append(out, s.fn("sin", n.Args[0].Clone()))
			}
		}
	case Exponential:
		out = append(out, s.poleFactors(n.Base, x)...)
		out = append(out, s.poleFactors(n.Exp, x)...)
	}
	if n.Power.Sign() < 0 && n.Shape != Exponential {
		out = append(out, n.unit())
	}
	return out
}

// vanishesIn reports whether g has a zero inside (lo, hi), found exactly or
// by a sign change between samples.
func (s *Session) vanishesIn(g *Node, x string, lo, hi float64) bool {
	var roots []*Node
	if attempt(func() { roots = s.solveZero(g, x, 0) }) == nil {
		for _, r := range roots {
			if v, ok := r.Float64(); ok && v > lo && v < hi {
				return true
			}
		}
	}
	fn, err := compileNode(g, []string{x})
	if err != nil {
		return false
	}
	const samples = 64
	prev, seen := 0.0, false
	for i := 0; i <= samples; i++ {
		s.check()
		v, err := fn([]float64{lo + (hi-lo)*float64(i)/samples})
		bad := err != nil || v == 0 || math.IsNaN(v)
		if i == 0 || i == samples {
			// endpoint poles surface when the antiderivative is evaluated
			if bad {
				continue
			}
		} else if bad {
			return true
		}
		if seen && math.Signbit(v) != math.Signbit(prev) {
			return true
		}
		prev, seen = v, true
	}
	return false
}
