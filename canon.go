package gocas

// canon rebuilds n bottom-up through the arithmetic kernel and the
// elementary function rules. It never mutates n.
func (s *Session) canon(n *Node) *Node {
	switch n.Shape {
	case Constant:
		return R(n.Mult)
	case Monomial:
		return scale(powRat(S(n.Value), n.Power), n.Mult)
	}
	return s.mapNode(n, s.canon)
}

// Substitute replaces every occurrence of the symbol name in n by value and
// re-canonicalizes the result.
func (s *Session) Substitute(n *Node, name string, value *Node) (res *Node, err error) {
	defer recoverTo(&err)
	if !validName(name) {
		return nil, &Error{Op: "substitute", Token: name, Err: ErrInvalidVariableName}
	}
	return s.substitute(n, name, value), nil
}

func (s *Session) substitute(n *Node, name string, value *Node) *Node {
	if !n.Contains(name) {
		return n.Clone()
	}
	switch n.Shape {
	case Monomial:
		if value.IsZero() && n.Power.Sign() < 0 {
			throwf("substitute", ErrDivisionByZero, "%s = 0 in %s", name, n)
		}
		return scale(powRat(value.Clone(), n.Power), n.Mult)
	case Sum, PolyList:
		acc := N(0)
		for _, c := range sortedChildren(n) {
			acc = addInto(acc, s.substitute(c, name, value))
		}
		if acc.IsZero() && n.Power.Sign() < 0 {
			throwf("substitute", ErrDivisionByZero, "%s = 0 in %s", name, n)
		}
		return scale(powRat(acc, n.Power), n.Mult)
	case Product:
		acc := R(n.Mult)
		for _, c := range sortedChildren(n) {
			acc = mulInto(acc, s.substitute(c, name, value))
		}
		return acc
	case Function:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.substitute(a, name, value)
		}
		f := s.fn(n.Value, args...)
		if f.IsZero() && n.Power.Sign() < 0 {
			throwf("substitute", ErrDivisionByZero, "%s = 0 in %s", name, n)
		}
		return scale(powRat(f, n.Power), n.Mult)
	case Exponential:
		return scale(powInto(s.substitute(n.Base, name, value), s.substitute(n.Exp, name, value)), n.Mult)
	}
	return n.Clone()
}

// mapNode rebuilds n with fn applied to each direct sub-expression.
func (s *Session) mapNode(n *Node, fn func(*Node) *Node) *Node {
	switch n.Shape {
	case Sum, PolyList:
		acc := N(0)
		for _, c := range sortedChildren(n) {
			acc = addInto(acc, fn(c))
		}
		return scale(powRat(acc, n.Power), n.Mult)
	case Product:
		acc := R(n.Mult)
		for _, c := range sortedChildren(n) {
			acc = mulInto(acc, fn(c))
		}
		return acc
	case Function:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = fn(a)
		}
		return scale(powRat(s.fn(n.Value, args...), n.Power), n.Mult)
	case Exponential:
		return scale(powInto(fn(n.Base), fn(n.Exp)), n.Mult)
	}
	return n.Clone()
}
