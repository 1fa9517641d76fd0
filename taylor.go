package gocas

// Taylor returns the Taylor polynomial of n in x about a, up to and
// including the term of degree order.
func (s *Session) Taylor(n *Node, x string, a *Node, order int) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("taylor")()
	if !validName(x) {
		return nil, &Error{Op: "taylor", Token: x, Err: ErrInvalidVariableName}
	}
	if order < 0 {
		return nil, &Error{Op: "taylor", Msg: "negative order", Err: ErrOutOfRange}
	}
	if a.Contains(x) {
		return nil, &Error{Op: "taylor", Msg: "expansion point depends on " + x, Err: ErrOutOfRange}
	}
	return s.taylor(n, x, a, order), nil
}

func (s *Session) taylor(n *Node, x string, a *Node, order int) *Node {
	shift := sub(S(x), a)
	acc := N(0)
	cur := n.Clone()
	fact := ratOne
	for k := 0; k <= order; k++ {
		s.check()
		if k > 0 {
			fact = fact.Mul(RatInt(int64(k)))
			cur = s.diff(cur, x)
		}
		c := s.substitute(cur, x, a)
		if c.IsZero() {
			continue
		}
		term := mulInto(scale(c, mustInv(fact)), powRat(shift.Clone(), RatInt(int64(k))))
		acc = addInto(acc, term)
	}
	return acc
}
