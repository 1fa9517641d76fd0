package gocas

// Expand multiplies out products and integer powers of sums.
func (s *Session) Expand(n *Node) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("expand")()
	return s.expand(n), nil
}

func (s *Session) expand(n *Node) *Node {
	s.check()
	switch n.Shape {
	case Sum, PolyList:
		acc := N(0)
		for _, c := range sortedChildren(n) {
			acc = addInto(acc, s.expand(c))
		}
		return s.distribute(R(n.Mult), s.expandPow(acc, n.Power))
	case Product:
		acc := R(n.Mult)
		for _, c := range sortedChildren(n) {
			acc = s.distribute(acc, s.expand(c))
		}
		return acc
	case Function:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.expand(a)
		}
		return scale(s.expandPow(s.fn(n.Value, args...), n.Power), n.Mult)
	case Exponential:
		return scale(powInto(n.Base.Clone(), s.expand(n.Exp)), n.Mult)
	}
	return n.Clone()
}

// expandPow raises an expanded node to p, multiplying sums out for small
// positive integer powers.
func (s *Session) expandPow(base *Node, p Rational) *Node {
	k, ok := p.Int64()
	if !ok || k < 2 || k > int64(s.settings.ExpandLimit) || !base.isSum() || !base.Power.IsOne() {
		return powRat(base, p)
	}
	res := base.Clone()
	for i := int64(1); i < k; i++ {
		res = s.distribute(res, base)
	}
	return res
}

// distribute multiplies two expanded nodes term by term.
func (s *Session) distribute(a, b *Node) *Node {
	ta, tb := a.Terms(), b.Terms()
	if len(ta) == 1 && len(tb) == 1 {
		return mul(a, b)
	}
	acc := N(0)
	for _, x := range ta {
		for _, y := range tb {
			s.check()
			acc = addInto(acc, mul(x, y))
		}
	}
	return acc
}
