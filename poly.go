package gocas

import (
	"math/big"
	"sort"
)

// poly is a dense univariate polynomial with exact coefficients; p[i] is
// the coefficient of x^i.
type poly []Rational

func (p poly) trim() poly {
	n := len(p)
	for n > 0 && p[n-1].IsZero() {
		n--
	}
	return p[:n]
}

// degree is -1 for the zero polynomial.
func (p poly) degree() int { return len(p.trim()) - 1 }

func (p poly) isZero() bool { return p.degree() < 0 }

func (p poly) lead() Rational {
	t := p.trim()
	if len(t) == 0 {
		return ratZero
	}
	return t[len(t)-1]
}

func (p poly) coeff(i int) Rational {
	if i < len(p) {
		return p[i]
	}
	return ratZero
}

func (p poly) eval(x Rational) Rational {
	acc := ratZero
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p[i])
	}
	return acc
}

func (p poly) evalFloat(x float64) float64 {
	acc := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc*x + p[i].Float64()
	}
	return acc
}

func (p poly) add(q poly) poly {
	n := max(len(p), len(q))
	out := make(poly, n)
	for i := range out {
		out[i] = p.coeff(i).Add(q.coeff(i))
	}
	return out.trim()
}

func (p poly) sub(q poly) poly { return p.add(q.scale(ratNegOne)) }

func (p poly) scale(c Rational) poly {
	out := make(poly, len(p))
	for i, a := range p {
		out[i] = a.Mul(c)
	}
	return out.trim()
}

func (p poly) mul(q poly) poly {
	if p.isZero() || q.isZero() {
		return nil
	}
	out := make(poly, len(p)+len(q)-1)
	for i := range out {
		out[i] = ratZero
	}
	for i, a := range p {
		for j, b := range q {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return out.trim()
}

// divmod divides p by the non-zero polynomial q.
func (p poly) divmod(q poly) (quo, rem poly) {
	q = q.trim()
	rem = append(poly(nil), p.trim()...)
	dq := len(q) - 1
	if dq < 0 {
		throwf("poly", ErrDivisionByZero, "division by the zero polynomial")
	}
	if len(rem)-1 < dq {
		return nil, rem
	}
	quo = make(poly, len(rem)-dq)
	for i := range quo {
		quo[i] = ratZero
	}
	lc := q[dq]
	for len(rem)-1 >= dq {
		d := len(rem) - 1
		c, _ := rem[d].Div(lc)
		quo[d-dq] = c
		for i := 0; i <= dq; i++ {
			rem[d-dq+i] = rem[d-dq+i].Sub(c.Mul(q[i]))
		}
		rem = rem[:d].trim()
	}
	return quo.trim(), rem
}

func (p poly) deriv() poly {
	if len(p) < 2 {
		return nil
	}
	out := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = p[i].Mul(RatInt(int64(i)))
	}
	return out.trim()
}

func (p poly) monic() poly {
	lc := p.lead()
	if lc.IsZero() {
		return nil
	}
	inv, _ := lc.Inv()
	return p.scale(inv)
}

func polyGCD(a, b poly) poly {
	a, b = a.trim(), b.trim()
	for !b.isZero() {
		_, r := a.divmod(b)
		a, b = b, r
	}
	return a.monic()
}

// linear returns x - r.
func linear(r Rational) poly { return poly{r.Neg(), ratOne} }

// content returns the positive rational c with p/c primitive over the
// integers, signed so p/c has a positive leading coefficient.
func (p poly) content() Rational {
	g := new(big.Int)
	l := big.NewInt(1)
	for _, a := range p.trim() {
		if a.IsZero() {
			continue
		}
		g.GCD(nil, nil, g, new(big.Int).Abs(a.Num()))
		d := a.Den()
		l.Div(new(big.Int).Mul(l, d), new(big.Int).GCD(nil, nil, l, d))
	}
	if g.Sign() == 0 {
		return ratOne
	}
	c := Rational{r: new(big.Rat).SetFrac(g, l)}
	if p.lead().Sign() < 0 {
		c = c.Neg()
	}
	return c
}

// node converts p back to an expression in x.
func (p poly) node(x string) *Node {
	acc := N(0)
	for i, a := range p.trim() {
		if a.IsZero() {
			continue
		}
		acc = addInto(acc, scale(powRat(S(x), RatInt(int64(i))), a))
	}
	return acc
}

// toPoly expands n and reads it as a polynomial in x with numeric
// coefficients.
func (s *Session) toPoly(n *Node, x string) (poly, bool) {
	var p poly
	for _, t := range s.expand(n).Terms() {
		var k int64
		switch {
		case t.Shape == Constant:
		case t.Shape == Monomial && t.Value == x && t.Power.IsInt() && t.Power.Sign() > 0:
			var ok bool
			if k, ok = t.Power.Int64(); !ok || k > int64(s.settings.ExpandLimit)*8 {
				return nil, false
			}
		default:
			return nil, false
		}
		for int64(len(p)) <= k {
			p = append(p, ratZero)
		}
		p[k] = p[k].Add(t.Mult)
	}
	return p.trim(), true
}

// maxDivisorSearch bounds the trial division used to enumerate candidate
// rational roots.
const maxDivisorSearch = 1_000_000

func divisors(n *big.Int) ([]int64, bool) {
	if !n.IsInt64() {
		return nil, false
	}
	v := n.Int64()
	if v < 0 {
		v = -v
	}
	var small, large []int64
	for d := int64(1); d*d <= v; d++ {
		if d > maxDivisorSearch {
			return nil, false
		}
		if v%d == 0 {
			small = append(small, d)
			if d != v/d {
				large = append(large, v/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small, true
}

// rationalRoots returns the distinct rational roots of p in ascending order.
func (p poly) rationalRoots() []Rational {
	p = p.trim()
	var roots []Rational
	k := 0
	for k < len(p) && p[k].IsZero() {
		k++
	}
	if k > 0 && len(p) > 1 {
		roots = append(roots, ratZero)
		p = p[k:]
	}
	if p.degree() < 1 {
		return roots
	}
	c := p.content()
	ip := p.scale(mustInv(c))
	ps, ok1 := divisors(ip[0].Num())
	qs, ok2 := divisors(ip[len(ip)-1].Num())
	if !ok1 || !ok2 {
		return roots
	}
	seen := map[string]bool{}
	for _, a := range ps {
		for _, b := range qs {
			for _, sign := range [...]int64{1, -1} {
				r := ratFrac(sign*a, b)
				key := r.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				if p.eval(r).IsZero() {
					roots = append(roots, r)
				}
			}
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots
}

// multiplicity divides out (x - r) as often as it divides p.
func (p poly) multiplicity(r Rational) (int, poly) {
	m := 0
	for p.degree() > 0 && p.eval(r).IsZero() {
		p, _ = p.divmod(linear(r))
		m++
	}
	return m, p
}

func mustInv(c Rational) Rational {
	inv, err := c.Inv()
	if err != nil {
		throw(err)
	}
	return inv
}

// quadFactor is a monic quadratic factor with its multiplicity.
type quadFactor struct {
	q    poly
	mult int
}

// quadraticFactors splits a monic p without rational roots into monic
// rational quadratics. What cannot be split is returned as rest.
func (p poly) quadraticFactors() (factors []quadFactor, rest poly) {
	rest = p.monic()
	for rest.degree() >= 2 {
		q, ok := rest.findQuadratic()
		if !ok {
			break
		}
		m := 0
		for rest.degree() >= 2 {
			quo, rem := rest.divmod(q)
			if !rem.isZero() {
				break
			}
			rest = quo
			m++
		}
		factors = append(factors, quadFactor{q: q, mult: m})
	}
	return factors, rest
}

func (p poly) findQuadratic() (poly, bool) {
	if p.degree() == 2 {
		return p.monic(), true
	}
	if q, ok := p.evenQuadratic(); ok {
		return q, true
	}
	return p.searchQuadratic()
}

// evenQuadratic finds x^2 - r from a rational root r of u when p(x) = u(x^2).
func (p poly) evenQuadratic() (poly, bool) {
	p = p.trim()
	u := make(poly, 0, len(p)/2+1)
	for i, c := range p {
		if i%2 == 0 {
			u = append(u, c)
		} else if !c.IsZero() {
			return nil, false
		}
	}
	for _, r := range u.rationalRoots() {
		if r.Sign() != 0 {
			return poly{r.Neg(), ratZero, ratOne}, true
		}
	}
	return nil, false
}

// maxQuadraticCandidates bounds the trial divisions of searchQuadratic.
const maxQuadraticCandidates = 100_000

// searchQuadratic looks for an integer factor a x^2 + b x + c of the
// primitive form of p. a divides the leading coefficient, c the constant
// term, and a+b+c must divide p(1) while a-b+c divides p(-1).
func (p poly) searchQuadratic() (poly, bool) {
	ip := p.scale(mustInv(p.content()))
	p1, pm1 := ip.eval(ratOne), ip.eval(ratNegOne)
	if p1.IsZero() || pm1.IsZero() || ip[0].IsZero() {
		return nil, false
	}
	as, ok1 := divisors(ip.lead().Num())
	cs, ok2 := divisors(ip[0].Num())
	es, ok3 := divisors(p1.Num())
	if !ok1 || !ok2 || !ok3 || 4*len(as)*len(cs)*len(es) > maxQuadraticCandidates {
		return nil, false
	}
	for _, a := range as {
		for _, c0 := range cs {
			for _, c := range [...]int64{c0, -c0} {
				for _, e0 := range es {
					for _, e := range [...]int64{e0, -e0} {
						b := e - a - c
						v := a - b + c
						if v == 0 || new(big.Int).Rem(pm1.Num(), big.NewInt(v)).Sign() != 0 {
							continue
						}
						q := poly{RatInt(c), RatInt(b), RatInt(a)}
						if _, rem := ip.divmod(q); rem.isZero() {
							return q.monic(), true
						}
					}
				}
			}
		}
	}
	return nil, false
}
