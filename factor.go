package gocas

// Factor factors a univariate polynomial over the rationals into its
// content, linear factors (q*x-p)^m for every rational root p/q and an
// irreducible remainder. Other expressions come back canonicalized.
func (s *Session) Factor(n *Node) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("factor")()
	return s.factor(n), nil
}

func (s *Session) factor(n *Node) *Node {
	vars := n.Variables()
	if len(vars) != 1 {
		return s.canon(n)
	}
	x := vars[0]
	num, den := numDen(n)
	if !den.IsOne() {
		return div(s.factor(num), s.factor(den))
	}
	p, ok := s.toPoly(n, x)
	if !ok || p.degree() < 1 {
		return s.canon(n)
	}
	c := p.content()
	p = p.scale(mustInv(c))
	res := R(c)
	for _, r := range p.rationalRoots() {
		s.check()
		m, q := p.multiplicity(r)
		p = q
		// x - a/b = (b*x - a)/b
		b := ratBigInt(r.Den())
		f := poly{ratBigInt(r.Num()).Neg(), b}
		res = mulInto(res, powRat(f.node(x), RatInt(int64(m))))
		res = scale(res, mustPow(mustInv(b), int64(m)))
	}
	if p.degree() >= 1 {
		pc := p.content()
		res = scale(res, pc)
		res = mulInto(res, p.scale(mustInv(pc)).node(x))
	} else if p.degree() == 0 {
		res = scale(res, p[0])
	}
	return res
}

func mustPow(r Rational, n int64) Rational {
	v, err := r.Pow(n)
	if err != nil {
		throw(err)
	}
	return v
}
