package gocas

// transformCall exposes a transform as a function callable from parsed
// source, e.g. diff(x^3, x) or laplace(t^2).
type transformCall struct {
	min, max int
	rule     funcRule
}

var transformCalls map[string]transformCall

func init() {
	transformCalls = map[string]transformCall{
		"diff": {1, 3, func(s *Session, args []*Node) *Node {
			defer s.arm("diff")()
			x := varArg("diff", args, 1, args[0])
			k := 1
			if len(args) == 3 {
				k = intArg("diff", args[2])
			}
			return s.diffN(args[0], x, k)
		}},
		"integrate": {1, 2, func(s *Session, args []*Node) *Node {
			defer s.arm("integrate")()
			return s.integrate(args[0], varArg("integrate", args, 1, args[0]), 0)
		}},
		"defint": {4, 4, func(s *Session, args []*Node) *Node {
			defer s.arm("defint")()
			return s.defint(args[0], symArg("defint", args[1]), args[2], args[3])
		}},
		"laplace": {1, 3, func(s *Session, args []*Node) *Node {
			defer s.arm("laplace")()
			t := varArg("laplace", args, 1, args[0])
			sv := "s"
			if len(args) == 3 {
				sv = symArg("laplace", args[2])
			}
			return s.laplace(args[0], t, sv, 0)
		}},
		"ilt": {1, 3, func(s *Session, args []*Node) *Node {
			defer s.arm("ilt")()
			sv := varArg("ilt", args, 1, args[0])
			t := "t"
			if len(args) == 3 {
				t = symArg("ilt", args[2])
			}
			return s.ilt(args[0], sv, t)
		}},
		"expand": {1, 1, func(s *Session, args []*Node) *Node {
			defer s.arm("expand")()
			return s.expand(args[0])
		}},
		"factor": {1, 1, func(s *Session, args []*Node) *Node {
			defer s.arm("factor")()
			return s.factor(args[0])
		}},
		"simplify": {1, 1, func(s *Session, args []*Node) *Node {
			defer s.arm("simplify")()
			return s.simplify(args[0])
		}},
		"apart": {1, 2, func(s *Session, args []*Node) *Node {
			defer s.arm("apart")()
			return s.apart(args[0], varArg("apart", args, 1, args[0]))
		}},
		"taylor": {2, 4, func(s *Session, args []*Node) *Node {
			defer s.arm("taylor")()
			x := symArg("taylor", args[1])
			a, order := N(0), 5
			if len(args) > 2 {
				a = args[2]
			}
			if len(args) > 3 {
				order = intArg("taylor", args[3])
			}
			if a.Contains(x) {
				throwf("taylor", ErrOutOfRange, "expansion point depends on %s", x)
			}
			return s.taylor(args[0], x, a, order)
		}},
		"subst": {3, 3, func(s *Session, args []*Node) *Node {
			return s.substitute(args[0], symArg("subst", args[1]), args[2])
		}},
	}
}

// symArg reads a bare symbol argument such as the x in diff(f, x).
func symArg(op string, n *Node) string {
	if n.Shape != Monomial || !n.Mult.IsOne() || !n.Power.IsOne() || constSymbols[n.Value] {
		throw(&Error{Op: op, Token: n.String(), Msg: "expected a variable", Err: ErrInvalidVariableName})
	}
	return n.Value
}

// varArg returns args[i] as a variable, or the only free variable of f when
// the argument is omitted.
func varArg(op string, args []*Node, i int, f *Node) string {
	if i < len(args) {
		return symArg(op, args[i])
	}
	vars := f.Variables()
	switch len(vars) {
	case 0:
		return "x"
	case 1:
		return vars[0]
	}
	throwf(op, ErrInvalidVariableName, "variable required: %s has %d free variables", f, len(vars))
	return ""
}

// intArg reads a small non-negative integer argument.
func intArg(op string, n *Node) int {
	if n.Shape == Constant && n.Mult.IsInt() && n.Mult.Sign() >= 0 {
		if k, ok := n.Mult.Int64(); ok && k <= 1<<16 {
			return int(k)
		}
	}
	throwf(op, ErrOutOfRange, "expected a non-negative integer, got %s", n)
	return 0
}
