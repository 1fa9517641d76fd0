package gocas

import (
	"math/big"

	"go.uber.org/zap"
)

// Laplace returns the Laplace transform of f(t) as a function of s. A
// transform that cannot be found stays as an inert laplace(f,t,s) call.
func (s *Session) Laplace(f *Node, t, sv string) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("laplace")()
	for _, v := range []string{t, sv} {
		if !validName(v) {
			return nil, &Error{Op: "laplace", Token: v, Err: ErrInvalidVariableName}
		}
	}
	s.log.Debug("laplace", zap.Stringer("expr", f), zap.String("t", t), zap.String("s", sv))
	return s.laplace(f, t, sv, 0), nil
}

func inertLaplace(f *Node, t, sv string) *Node {
	return newFunc("laplace", []*Node{f.Clone(), S(t), S(sv)})
}

func (s *Session) laplace(f *Node, t, sv string, depth int) *Node {
	s.check()
	if f.isSum() && f.Power.IsOne() {
		acc := N(0)
		for _, term := range f.Terms() {
			acc = addInto(acc, s.laplace(term, t, sv, depth))
		}
		return acc
	}
	coef, rest := splitFree(f, t)
	var res *Node
	if depth <= s.settings.IntegrationDepth {
		res = s.laplaceTable(rest, t, sv, depth)
		if res == nil {
			res = s.laplaceByIntegral(rest, t, sv)
		}
	}
	if res == nil {
		res = inertLaplace(rest, t, sv)
	}
	return mulInto(coef, res)
}

// laplaceTable applies the transform table and the shift and t^n rules to
// a t-dependent node with Mult 1.
func (s *Session) laplaceTable(f *Node, t, sv string, depth int) *Node {
	sn := S(sv)
	switch f.Shape {
	case Constant:
		return powRat(sn, ratNegOne)
	case Monomial:
		return laplacePower(f.Power, sn)
	case Exponential:
		a, b, ok := s.exponentRate(f, t)
		if !ok {
			return nil
		}
		return mulInto(exponential(S("e"), b), powRat(subInto(sn, a), ratNegOne))
	case Function:
		return s.laplaceTrig(f, t, sn, depth)
	case Product:
		fs := sortedChildren(f)
		for i, c := range fs {
			others := N(1)
			for j, o := range fs {
				if j != i {
					others = mulInto(others, o.Clone())
				}
			}
			if c.Shape == Exponential {
				if a, b, ok := s.exponentRate(c, t); ok {
					g := s.laplace(others, t, sv, depth+1)
					return mulInto(exponential(S("e"), b), s.substitute(g, sv, subInto(S(sv), a)))
				}
			}
			if c.Shape == Monomial && c.Power.IsInt() && c.Power.Sign() > 0 {
				n, _ := c.Power.Int64()
				g := s.laplace(others, t, sv, depth+1)
				if g.hasCall("laplace") {
					return nil
				}
				d := s.diffN(g, sv, int(n))
				if n%2 == 1 {
					d = negInto(d)
				}
				return d
			}
		}
		if g := s.productToSum(f); g != nil {
			if r := s.laplace(g, t, sv, depth+1); !r.hasCall("laplace") {
				return r
			}
		}
		if e := s.expand(f); e.String() != f.String() {
			if r := s.laplace(e, t, sv, depth+1); !r.hasCall("laplace") {
				return r
			}
		}
	}
	return nil
}

// exponentRate writes an exponential in t as e^(a*t+b).
func (s *Session) exponentRate(f *Node, t string) (a, b *Node, ok bool) {
	if f.Base.Contains(t) {
		return nil, nil, false
	}
	a, b, ok = decomposeLinear(f.Exp, t)
	if !ok {
		return nil, nil, false
	}
	if !f.Base.isSymbol("e") {
		l := s.fn("log", f.Base.Clone())
		a, b = mul(a, l), mulInto(b, l)
	}
	return a, b, true
}

// laplacePower transforms t^p: n!/s^(n+1) for integers and
// Gamma(p+1)/s^(p+1) for half-integers.
func laplacePower(p Rational, sv *Node) *Node {
	switch {
	case p.IsInt() && p.Sign() >= 0:
		n, _ := p.Int64()
		f := ratBigInt(new(big.Int).MulRange(1, n))
		return scale(powRat(sv, RatInt(-n-1)), f)
	case p.Den().Int64() == 2 && p.Cmp(RatInt(-1)) > 0:
		// Gamma(m+1/2) = (2m)!/(4^m m!) * sqrt(pi) with m = p+1/2
		m, _ := p.Add(ratHalf).Int64()
		num := new(big.Int).MulRange(1, 2*m)
		den := new(big.Int).Mul(new(big.Int).Exp(big.NewInt(4), big.NewInt(m), nil), new(big.Int).MulRange(1, m))
		g := Rational{r: new(big.Rat).SetFrac(num, den)}
		return scale(mulInto(powRat(S("pi"), ratHalf), powRat(sv, p.Add(ratOne).Neg())), g)
	}
	return nil
}

func (s *Session) laplaceTrig(f *Node, t string, sv *Node, depth int) *Node {
	if len(f.Args) != 1 {
		return nil
	}
	u := f.Args[0]
	if f.Power.Equal(RatInt(2)) && (f.Value == "sin" || f.Value == "cos") {
		// sin^2 u = (1 - cos 2u)/2, cos^2 u = (1 + cos 2u)/2
		c2 := scale(s.fn("cos", scale(u.Clone(), RatInt(2))), ratHalf)
		if f.Value == "sin" {
			c2 = negInto(c2)
		}
		return s.laplace(addInto(F(1, 2), c2), t, sv.Value, depth+1)
	}
	if !f.Power.IsOne() {
		return nil
	}
	a, b, ok := decomposeLinear(u, t)
	if !ok {
		return nil
	}
	sa := powRat(a.Clone(), RatInt(2))
	switch f.Value {
	case "sin":
		// (a cos b + s sin b)/(s^2 + a^2)
		num := addInto(mul(a, s.fn("cos", b.Clone())), mul(sv, s.fn("sin", b.Clone())))
		return divInto(num, addInto(powR(sv, RatInt(2)), sa))
	case "cos":
		// (s cos b - a sin b)/(s^2 + a^2)
		num := subInto(mul(sv, s.fn("cos", b.Clone())), mul(a, s.fn("sin", b.Clone())))
		return divInto(num, addInto(powR(sv, RatInt(2)), sa))
	case "sinh":
		if b.IsZero() {
			return divInto(a, subInto(powR(sv, RatInt(2)), sa))
		}
	case "cosh":
		if b.IsZero() {
			return divInto(sv.Clone(), subInto(powR(sv, RatInt(2)), sa))
		}
	}
	return nil
}

// laplaceByIntegral integrates f*e^(-s*t) with a deeper integration budget
// and evaluates the antiderivative from 0 to infinity. The upper limit is
// taken as 0 only when every term decays.
func (s *Session) laplaceByIntegral(f *Node, t, sv string) *Node {
	kernel := mulInto(f.Clone(), exponential(S("e"), negInto(mul(S(sv), S(t)))))
	var F *Node
	s.scoped(func(st *Settings) { st.IntegrationDepth += st.TransformDepthBoost }, func() {
		F = s.integrate(kernel, t, 0)
	})
	if F.hasCall("integrate") || !s.decaysAtInfinity(F, t, sv) {
		return nil
	}
	var res *Node
	if attempt(func() { res = negInto(s.substitute(F, t, N(0))) }) != nil {
		return nil
	}
	return res
}

// decaysAtInfinity checks that every term of F carries a factor e^(a*t)
// whose rate a is negative for large s.
func (s *Session) decaysAtInfinity(F *Node, t, sv string) bool {
	for _, term := range s.expand(F).Terms() {
		if !term.Contains(t) {
			continue
		}
		decays := false
		for _, c := range factorsOf(term.unitMult()) {
			if c.Shape != Exponential || !c.Base.isSymbol("e") {
				continue
			}
			a, _, ok := decomposeLinear(c.Exp, t)
			if !ok {
				continue
			}
			var rate float64
			err := attempt(func() {
				v := s.substitute(a, sv, N(1000))
				for _, free := range v.Variables() {
					v = s.substitute(v, free, N(1))
				}
				rate, ok = v.Float64()
			})
			if err == nil && ok && rate < 0 {
				decays = true
			}
		}
		if !decays {
			return false
		}
	}
	return true
}

// InverseLaplace returns f(t) whose Laplace transform is F(s).
func (s *Session) InverseLaplace(F *Node, sv, t string) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("ilt")()
	for _, v := range []string{t, sv} {
		if !validName(v) {
			return nil, &Error{Op: "ilt", Token: v, Err: ErrInvalidVariableName}
		}
	}
	return s.ilt(F, sv, t), nil
}

func inertILT(F *Node, sv, t string) *Node {
	return newFunc("ilt", []*Node{F.Clone(), S(sv), S(t)})
}

func (s *Session) ilt(F *Node, sv, t string) *Node {
	s.check()
	if F.isSum() && F.Power.IsOne() {
		if res := s.iltRational(F, sv, t); res != nil {
			return res
		}
		acc := N(0)
		for _, term := range F.Terms() {
			acc = addInto(acc, s.ilt(term, sv, t))
		}
		return acc
	}
	coef, rest := splitFree(F, sv)
	if rest.IsOne() {
		return inertILT(F, sv, t)
	}
	if res := s.iltRational(rest, sv, t); res != nil {
		return mulInto(coef, res)
	}
	if res := s.iltSymbolic(rest, sv, t); res != nil {
		return mulInto(coef, res)
	}
	return mulInto(coef, inertILT(rest, sv, t))
}

// iltRational inverts a proper rational function with numeric
// coefficients through partial fractions.
func (s *Session) iltRational(F *Node, sv, t string) *Node {
	num, den := numDen(F)
	np, ok1 := s.toPoly(num, sv)
	dp, ok2 := s.toPoly(den, sv)
	if !ok1 || !ok2 || dp.degree() < 1 {
		return nil
	}
	set, ok := s.partialFractions(np, dp)
	if !ok || !set.quotient.isZero() {
		return nil
	}
	acc := N(0)
	T := S(t)
	for _, term := range set.terms {
		switch term.kind {
		case linearFraction:
			// c/(s-r)^k -> c t^(k-1) e^(r t)/(k-1)!
			k := int64(term.power)
			f := ratBigInt(new(big.Int).MulRange(1, k-1))
			c, _ := term.coef.Div(f)
			e := exponential(S("e"), scale(T.Clone(), term.root))
			acc = addInto(acc, scale(mulInto(powRat(T.Clone(), RatInt(k-1)), e), c))
		case quadraticFraction:
			if term.power > 1 {
				return nil
			}
			acc = addInto(acc, s.iltQuadratic(term, T))
		default:
			return nil
		}
	}
	return acc
}

// iltQuadratic inverts (b s + c)/((s+h)^2 + k2).
func (s *Session) iltQuadratic(term fraction, T *Node) *Node {
	b, c := term.num.coeff(1), term.num.coeff(0)
	h := term.den.coeff(1).Mul(ratHalf)
	k2 := term.den.coeff(0).Sub(h.Mul(h))
	c2 := c.Sub(b.Mul(h))
	damp := N(1)
	if !h.IsZero() {
		damp = exponential(S("e"), scale(T.Clone(), h.Neg()))
	}
	var body *Node
	switch k2.Sign() {
	case 1:
		w := sqrtOf(k2)
		wt := mul(w, T)
		body = addInto(scale(s.fn("cos", wt.Clone()), b), scale(divInto(s.fn("sin", wt), w), c2))
	case -1:
		w := sqrtOf(k2.Neg())
		wt := mul(w, T)
		body = addInto(scale(s.fn("cosh", wt.Clone()), b), scale(divInto(s.fn("sinh", wt), w), c2))
	default:
		body = addInto(R(b), scale(T.Clone(), c2))
	}
	return mulInto(damp, body)
}

// iltSymbolic inverts the table forms whose coefficients are symbolic:
// s^-n, (a s + b)^-n and 1/(A s^2 + C), s/(A s^2 + C).
func (s *Session) iltSymbolic(F *Node, sv, t string) *Node {
	T := S(t)
	switch F.Shape {
	case Monomial:
		if n, ok := F.Power.Neg().Int64(); ok && F.Power.IsInt() && n >= 1 {
			return scale(powRat(T, RatInt(n-1)), factorialInv(n-1))
		}
	case Sum, PolyList:
		n, ok := F.Power.Neg().Int64()
		if !ok || !F.Power.IsInt() || n < 1 {
			return nil
		}
		inner := F.unit()
		if a, b, ok := decomposeLinear(inner, sv); ok {
			// (a s + b)^-n -> a^-n t^(n-1) e^(-b t/a)/(n-1)!
			rate := neg(div(b, a))
			e := exponential(S("e"), mulInto(rate, T.Clone()))
			body := scale(mulInto(powRat(T, RatInt(n-1)), e), factorialInv(n-1))
			return mulInto(powRat(a, RatInt(-n)), body)
		}
		if n == 1 {
			return s.iltOscillator(inner, nil, sv, T)
		}
	case Product:
		if len(F.Children) != 2 {
			return nil
		}
		var lin, quad *Node
		for _, c := range F.Children {
			switch {
			case c.isSymbol(sv):
				lin = c
			case c.isSum() && c.Power.Equal(ratNegOne):
				quad = c
			}
		}
		if lin != nil && quad != nil {
			return s.iltOscillator(quad.unit(), lin, sv, T)
		}
	}
	return nil
}

// iltOscillator inverts 1/(A s^2 + C) or s/(A s^2 + C).
func (s *Session) iltOscillator(q, numerator *Node, sv string, T *Node) *Node {
	c, ok := s.polyCoeffs(q, sv)
	if !ok || polyDegree(c) != 2 || !coeffAt(c, 1).IsZero() {
		return nil
	}
	A, C := coeffAt(c, 2), coeffAt(c, 0)
	k2 := div(C, A)
	w := powR(k2, ratHalf)
	wt := mul(w, T)
	if numerator == nil {
		return div(s.fn("sin", wt), mul(A, w))
	}
	return div(s.fn("cos", wt), A)
}

func factorialInv(n int64) Rational {
	f := ratBigInt(new(big.Int).MulRange(1, n))
	inv, _ := f.Inv()
	return inv
}
