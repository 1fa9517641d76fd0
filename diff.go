package gocas

// Diff returns the derivative of n with respect to x.
func (s *Session) Diff(n *Node, x string) (res *Node, err error) {
	return s.DiffN(n, x, 1)
}

// DiffN returns the k-th derivative of n with respect to x.
func (s *Session) DiffN(n *Node, x string, k int) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("diff")()
	if !validName(x) {
		return nil, &Error{Op: "diff", Token: x, Err: ErrInvalidVariableName}
	}
	if k < 0 {
		return nil, &Error{Op: "diff", Msg: "negative order", Err: ErrOutOfRange}
	}
	return s.diffN(n, x, k), nil
}

func (s *Session) diffN(n *Node, x string, k int) *Node {
	res := n.Clone()
	for i := 0; i < k; i++ {
		res = s.diff(res, x)
	}
	return res
}

// derivatives maps a function name to f'(u).
var derivatives map[string]func(s *Session, u *Node) *Node

func init() {
	derivatives = map[string]func(s *Session, u *Node) *Node{
		"sin": func(s *Session, u *Node) *Node { return s.fn("cos", u) },
		"cos": func(s *Session, u *Node) *Node { return negInto(s.fn("sin", u)) },
		"tan": func(s *Session, u *Node) *Node { return powRat(s.fn("sec", u), RatInt(2)) },
		"sec": func(s *Session, u *Node) *Node { return mulInto(s.fn("sec", u.Clone()), s.fn("tan", u)) },
		"csc": func(s *Session, u *Node) *Node {
			return negInto(mulInto(s.fn("csc", u.Clone()), s.fn("cot", u)))
		},
		"cot": func(s *Session, u *Node) *Node { return negInto(powRat(s.fn("csc", u), RatInt(2))) },
		"asin": func(s *Session, u *Node) *Node {
			return powRat(subInto(N(1), powRat(u, RatInt(2))), ratFrac(-1, 2))
		},
		"acos": func(s *Session, u *Node) *Node {
			return negInto(powRat(subInto(N(1), powRat(u, RatInt(2))), ratFrac(-1, 2)))
		},
		"atan": func(s *Session, u *Node) *Node { return powRat(addInto(N(1), powRat(u, RatInt(2))), ratNegOne) },
		"sinh": func(s *Session, u *Node) *Node { return s.fn("cosh", u) },
		"cosh": func(s *Session, u *Node) *Node { return s.fn("sinh", u) },
		"tanh": func(s *Session, u *Node) *Node { return subInto(N(1), powRat(s.fn("tanh", u), RatInt(2))) },
		"log":  func(s *Session, u *Node) *Node { return powRat(u, ratNegOne) },
		"abs":  func(s *Session, u *Node) *Node { return divInto(u.Clone(), s.fn("abs", u)) },
	}
}

func (s *Session) diff(n *Node, x string) *Node {
	s.check()
	if !n.Contains(x) {
		return N(0)
	}
	switch n.Shape {
	case Monomial:
		return scale(powR(S(x), n.Power.Sub(ratOne)), n.Mult.Mul(n.Power))
	case Sum, PolyList:
		if n.Power.IsOne() {
			acc := N(0)
			for _, c := range sortedChildren(n) {
				acc = addInto(acc, s.diff(c, x))
			}
			return scale(acc, n.Mult)
		}
		return s.chainPower(n, s.diff(n.unit(), x))
	case Product:
		fs := sortedChildren(n)
		acc := N(0)
		for i := range fs {
			term := s.diff(fs[i], x)
			for j := range fs {
				if j != i && !term.IsZero() {
					term = mulInto(term, fs[j].Clone())
				}
			}
			acc = addInto(acc, term)
		}
		return scale(acc, n.Mult)
	case Function:
		return s.chainPower(n, s.diffCall(n.unit(), x))
	case Exponential:
		unit := n.Clone()
		unit.Mult = ratOne
		b, u := n.Base, n.Exp
		var inner *Node
		switch {
		case b.isSymbol("e"):
			inner = s.diff(u, x)
		case !b.Contains(x):
			inner = mulInto(s.diff(u, x), s.fn("log", b.Clone()))
		default:
			// d(b^u) = b^u * (u' log b + u b'/b)
			inner = addInto(
				mulInto(s.diff(u, x), s.fn("log", b.Clone())),
				mulInto(u.Clone(), divInto(s.diff(b, x), b.Clone())))
		}
		return scale(mulInto(unit, inner), n.Mult)
	}
	return N(0)
}

// chainPower applies d(m*f^p) = m*p*f^(p-1)*f' given f' for the unit f.
func (s *Session) chainPower(n, df *Node) *Node {
	if n.Power.IsOne() {
		return scale(df, n.Mult)
	}
	outer := scale(powR(n.unit(), n.Power.Sub(ratOne)), n.Mult.Mul(n.Power))
	return mulInto(outer, df)
}

// diffCall differentiates a unit function call by the chain rule. Calls
// without a known derivative stay as an inert diff(f,x).
func (s *Session) diffCall(f *Node, x string) *Node {
	d := derivatives[f.Value]
	if d == nil || len(f.Args) != 1 {
		return newFunc("diff", []*Node{f, S(x)})
	}
	u := f.Args[0]
	return mulInto(d(s, u.Clone()), s.diff(u, x))
}
