package gocas

// splitFree factors n as coef*rest where coef is free of x and rest carries
// every x-dependent factor with Mult 1. Symbolic constants such as pi or
// sqrt(2) stay exact inside coef.
func splitFree(n *Node, x string) (coef, rest *Node) {
	if !n.Contains(x) {
		return n.Clone(), N(1)
	}
	if n.Shape != Product {
		return R(n.Mult), n.unitMult()
	}
	coef, rest = R(n.Mult), N(1)
	for _, c := range sortedChildren(n) {
		if c.Contains(x) {
			rest = mulInto(rest, c.Clone())
		} else {
			coef = mulInto(coef, c.Clone())
		}
	}
	return coef, rest
}

// unitMult returns a copy of n with Mult reset to 1 and Power kept.
func (n *Node) unitMult() *Node {
	c := n.Clone()
	c.Mult = ratOne
	return c
}

// decomposeLinear writes n as a*x+b with a and b free of x.
func decomposeLinear(n *Node, x string) (a, b *Node, ok bool) {
	if !n.Contains(x) {
		return N(0), n.Clone(), true
	}
	switch n.Shape {
	case Monomial:
		if n.Power.IsOne() {
			return R(n.Mult), N(0), true
		}
	case Product:
		coef, rest := splitFree(n, x)
		if rest.isSymbol(x) {
			return coef, N(0), true
		}
	case Sum, PolyList:
		if !n.Power.IsOne() {
			return nil, nil, false
		}
		a, b = N(0), N(0)
		for _, t := range n.Terms() {
			ta, tb, ok := decomposeLinear(t, x)
			if !ok {
				return nil, nil, false
			}
			a = addInto(a, ta)
			b = addInto(b, tb)
		}
		return a, b, !a.IsZero()
	}
	return nil, nil, false
}

// polyCoeffs reads n as a polynomial in x whose coefficients may be any
// x-free expressions. The result maps degree to coefficient.
func (s *Session) polyCoeffs(n *Node, x string) (map[int]*Node, bool) {
	out := map[int]*Node{}
	put := func(k int, c *Node) {
		if prev, ok := out[k]; ok {
			out[k] = addInto(prev, c)
			return
		}
		out[k] = c
	}
	for _, t := range s.expand(n).Terms() {
		coef, rest := splitFree(t, x)
		switch {
		case rest.IsOne():
			put(0, coef)
		case rest.Shape == Monomial && rest.Value == x && rest.Power.IsInt() && rest.Power.Sign() > 0:
			k, ok := rest.Power.Int64()
			if !ok || k > int64(s.settings.ExpandLimit)*8 {
				return nil, false
			}
			put(int(k), coef)
		default:
			return nil, false
		}
	}
	for k, c := range out {
		if c.IsZero() {
			delete(out, k)
		}
	}
	return out, true
}

func polyDegree(coeffs map[int]*Node) int {
	d := -1
	for k := range coeffs {
		if k > d {
			d = k
		}
	}
	return d
}

func coeffAt(coeffs map[int]*Node, k int) *Node {
	if c, ok := coeffs[k]; ok {
		return c
	}
	return N(0)
}

// numDen splits n into numerator and denominator by moving factors with
// negative powers below the bar. Sums of fractions are not combined.
func numDen(n *Node) (num, den *Node) {
	num, den = N(1), N(1)
	var factors []*Node
	coef := n.Mult
	if n.Shape == Product {
		factors = sortedChildren(n)
	} else if n.Shape != Constant {
		factors = []*Node{n.unitMult()}
	}
	for _, f := range factors {
		if f.Shape != Exponential && f.Shape != Constant && f.Power.Sign() < 0 {
			den = mulInto(den, powR(f, ratNegOne))
			continue
		}
		num = mulInto(num, f.Clone())
	}
	return scale(num, coef), den
}

func isPlainTrig(n *Node) bool {
	return n.Shape == Function && (n.Value == "sin" || n.Value == "cos") &&
		len(n.Args) == 1 && n.Power.IsOne() && n.Mult.IsOne()
}

// productToSum rewrites sin(A)*cos(B), sin(A)*sin(B) and cos(A)*cos(B) as
// half the sum or difference of single sines and cosines. It returns nil
// for anything else.
func (s *Session) productToSum(f *Node) *Node {
	if f.Shape != Product || len(f.Children) != 2 {
		return nil
	}
	fs := sortedChildren(f)
	a, b := fs[0], fs[1]
	if !isPlainTrig(a) || !isPlainTrig(b) {
		return nil
	}
	if a.Value == "cos" && b.Value == "sin" {
		a, b = b, a
	}
	A, B := a.Args[0], b.Args[0]
	var res *Node
	switch {
	case a.Value == "sin" && b.Value == "cos":
		res = addInto(s.fn("sin", add(A, B)), s.fn("sin", sub(A, B)))
	case a.Value == "sin":
		res = subInto(s.fn("cos", sub(A, B)), s.fn("cos", add(A, B)))
	default:
		res = addInto(s.fn("cos", sub(A, B)), s.fn("cos", add(A, B)))
	}
	return scale(res, ratHalf)
}
