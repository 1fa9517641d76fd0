package gocas

import (
	"fmt"
	"math/big"
)

// The *Into functions are the arithmetic kernel. They take ownership of
// their operands and may rebuild them in place; callers that still need an
// operand must pass a clone. Every result is canonical.

func addInto(a, b *Node) *Node {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.Shape == Constant && b.Shape == Constant {
		a.Mult = a.Mult.Add(b.Mult)
		return a
	}
	ta, tb := summands(a), summands(b)
	if len(ta) == 1 && len(tb) == 1 && termKey(ta[0]) == termKey(tb[0]) {
		m := ta[0].Mult.Add(tb[0].Mult)
		if m.IsZero() {
			return N(0)
		}
		ta[0].Mult = m
		return ta[0]
	}
	sum := &Node{Shape: Sum, Mult: ratOne, Power: ratOne, Children: make(map[string]*Node, len(ta)+len(tb))}
	for _, t := range ta {
		insertTerm(sum, t)
	}
	for _, t := range tb {
		insertTerm(sum, t)
	}
	return normalizeSum(sum)
}

// summands flattens a Sum with Power 1 into its terms, distributing Mult.
func summands(n *Node) []*Node {
	if !n.isSum() || !n.Power.IsOne() {
		return []*Node{n}
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if !n.Mult.IsOne() {
			c.Mult = c.Mult.Mul(n.Mult)
		}
		out = append(out, c)
	}
	return out
}

func insertTerm(sum *Node, t *Node) {
	if t.IsZero() {
		return
	}
	k := termKey(t)
	prev, ok := sum.Children[k]
	if !ok {
		sum.Children[k] = t
		return
	}
	m := prev.Mult.Add(t.Mult)
	if m.IsZero() {
		delete(sum.Children, k)
		return
	}
	prev.Mult = m
}

// normalizeSum collapses degenerate sums and tags single-variable ones.
func normalizeSum(n *Node) *Node {
	switch len(n.Children) {
	case 0:
		return N(0)
	case 1:
		var only *Node
		for _, c := range n.Children {
			only = c
		}
		return scale(powRat(only, n.Power), n.Mult)
	}
	n.Shape, n.Value = PolyList, ""
	for _, c := range n.Children {
		if c.Shape != Monomial || (n.Value != "" && c.Value != n.Value) {
			n.Shape, n.Value = Sum, ""
			return n
		}
		n.Value = c.Value
	}
	return n
}

// scale multiplies n by the constant c.
func scale(n *Node, c Rational) *Node {
	switch {
	case c.IsOne():
		return n
	case c.IsZero():
		return N(0)
	}
	n.Mult = n.Mult.Mul(c)
	return n
}

func mulInto(a, b *Node) *Node {
	if a.IsZero() || b.IsZero() {
		return N(0)
	}
	if b.Shape == Constant {
		return scale(a, b.Mult)
	}
	if a.Shape == Constant {
		return scale(b, a.Mult)
	}
	m := a.Mult.Mul(b.Mult)
	a.Mult, b.Mult = ratOne, ratOne
	fa, fb := factorsOf(a), factorsOf(b)
	if len(fa) == 1 && len(fb) == 1 && factorKey(fa[0]) == factorKey(fb[0]) {
		return scale(mergeFactors(fa[0], fb[0]), m)
	}
	prod := &Node{Shape: Product, Mult: m, Power: ratOne, Children: make(map[string]*Node, len(fa)+len(fb))}
	for _, f := range fa {
		absorbFactor(prod, f)
	}
	for _, f := range fb {
		absorbFactor(prod, f)
	}
	return normalizeProduct(prod)
}

// factorsOf returns the factors of n, which must have Mult 1.
func factorsOf(n *Node) []*Node {
	if n.Shape != Product {
		return []*Node{n}
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	return out
}

// mergeFactors multiplies two factors with the same factorKey.
func mergeFactors(x, y *Node) *Node {
	if x.Shape == Exponential {
		m := x.Mult.Mul(y.Mult)
		x.Mult = ratOne
		x.Exp = addInto(x.Exp, y.Exp)
		return scale(settleExponential(x), m)
	}
	x.Mult = x.Mult.Mul(y.Mult)
	x.Power = x.Power.Add(y.Power)
	if x.Power.IsZero() {
		return R(x.Mult)
	}
	return x
}

// absorbFactor inserts f into prod, merging with a like factor if present.
// A merge can change the factor's key, so the result is re-inserted.
func absorbFactor(prod *Node, f *Node) {
	if f.Shape == Constant {
		prod.Mult = prod.Mult.Mul(f.Mult)
		return
	}
	if !f.Mult.IsOne() {
		prod.Mult = prod.Mult.Mul(f.Mult)
		f.Mult = ratOne
	}
	if f.Shape == Product {
		for _, c := range f.Children {
			absorbFactor(prod, c)
		}
		return
	}
	k := factorKey(f)
	prev, ok := prod.Children[k]
	if !ok {
		prod.Children[k] = f
		return
	}
	delete(prod.Children, k)
	absorbFactor(prod, mergeFactors(prev, f))
}

func normalizeProduct(p *Node) *Node {
	if p.Mult.IsZero() {
		return N(0)
	}
	switch len(p.Children) {
	case 0:
		return R(p.Mult)
	case 1:
		for _, c := range p.Children {
			return scale(c, p.Mult)
		}
	}
	return p
}

// powInto raises a to the power b.
func powInto(a, b *Node) *Node {
	if b.Shape == Constant {
		return powRat(a, b.Mult)
	}
	if a.Shape == Constant {
		switch {
		case a.IsZero():
			return N(0)
		case a.Mult.IsOne():
			return N(1)
		}
		return exponential(a, b)
	}
	var coeff *Node
	if !a.Mult.IsOne() {
		coeff = exponential(R(a.Mult), b.Clone())
		a.Mult = ratOne
	}
	var res *Node
	switch a.Shape {
	case Exponential:
		a.Exp = mulInto(a.Exp, b)
		res = settleExponential(a)
	case Product:
		res = N(1)
		for _, c := range a.Children {
			res = mulInto(res, powInto(c, b.Clone()))
		}
	default:
		if !a.Power.IsOne() {
			b = scale(b, a.Power)
			a.Power = ratOne
		}
		res = exponential(a, b)
	}
	if coeff != nil {
		res = mulInto(res, coeff)
	}
	return res
}

// exponential builds base^exp. base must have Mult and Power 1 unless it is
// a Constant.
func exponential(base, exp *Node) *Node {
	if exp.Shape == Constant {
		return powRat(base, exp.Mult)
	}
	if base.isSymbol("e") && exp.Shape == Function && exp.Value == "log" && exp.Power.IsOne() && len(exp.Args) == 1 {
		return powRat(exp.Args[0], exp.Mult)
	}
	return &Node{Shape: Exponential, Mult: ratOne, Power: ratOne, Base: base, Exp: exp}
}

// settleExponential folds x back into a power when its exponent became
// constant.
func settleExponential(x *Node) *Node {
	if x.Exp.Shape != Constant {
		return x
	}
	return scale(powRat(x.Base, x.Exp.Mult), x.Mult)
}

// powRat raises a to the rational power r.
func powRat(a *Node, r Rational) *Node {
	if r.IsZero() {
		if a.IsZero() {
			throwf("pow", ErrUndefined, "0^0")
		}
		return N(1)
	}
	if r.IsOne() {
		return a
	}
	switch a.Shape {
	case Constant:
		return powConst(a.Mult, r)
	case Product:
		res := powConst(a.Mult, r)
		for _, c := range a.Children {
			res = mulInto(res, powRat(c, r))
		}
		return res
	case Exponential:
		coeff := powConst(a.Mult, r)
		a.Mult = ratOne
		a.Exp = scale(a.Exp, r)
		return mulInto(settleExponential(a), coeff)
	}
	coeff := powConst(a.Mult, r)
	a.Mult = ratOne
	a.Power = a.Power.Mul(r)
	return mulInto(a, coeff)
}

// maxRootDegree bounds q in c^(p/q) so exact root extraction stays cheap.
const maxRootDegree = 64

// powConst evaluates c^r exactly. Irrational results come back as an
// Exponential over an integer base whose q-th power-free part remains,
// e.g. 8^(1/2) = 2*2^(1/2).
func powConst(c, r Rational) *Node {
	if r.IsInt() {
		n, ok := r.Int64()
		if !ok {
			throwf("pow", ErrOutOfRange, "exponent %s too large", r)
		}
		v, err := c.Pow(n)
		if err != nil {
			throw(err)
		}
		return R(v)
	}
	switch {
	case c.IsZero():
		if r.Sign() < 0 {
			throwf("pow", ErrUndefined, "0^(%s)", r)
		}
		return N(0)
	case c.IsOne():
		return N(1)
	}
	p, q := r.Num(), r.Den()
	if !p.IsInt64() || !q.IsInt64() || q.Int64() > maxRootDegree {
		throwf("pow", ErrOutOfRange, "exponent %s too large", r)
	}
	k := q.Int64()
	base, err := c.Pow(p.Int64())
	if err != nil {
		throw(err)
	}
	neg := base.Sign() < 0
	if neg {
		if k%2 == 0 {
			throwf("pow", ErrOutOfFunctionDomain, "even root of negative number %s", c)
		}
		base = base.Neg()
	}
	// base^(1/k) = (num*den^(k-1))^(1/k) / den
	num, den := base.Num(), base.Den()
	m := new(big.Int).Mul(num, new(big.Int).Exp(den, big.NewInt(k-1), nil))
	out, in := extractRoot(m, k)
	coeff := Rational{r: new(big.Rat).SetFrac(out, den)}
	if neg {
		coeff = coeff.Neg()
	}
	if in.IsInt64() && in.Int64() == 1 {
		return R(coeff)
	}
	return &Node{Shape: Exponential, Mult: coeff, Power: ratOne, Base: R(ratBigInt(in)), Exp: R(ratFrac(1, k))}
}

func negInto(a *Node) *Node { return scale(a, ratNegOne) }

func subInto(a, b *Node) *Node { return addInto(a, negInto(b)) }

func divInto(a, b *Node) *Node {
	if b.IsZero() {
		throw(&Error{Op: "divide", Msg: fmt.Sprintf("%s/0", a), Err: ErrDivisionByZero})
	}
	return mulInto(a, powRat(b, ratNegOne))
}

// Non-destructive forms used throughout the transforms.

func add(a, b *Node) *Node { return addInto(a.Clone(), b.Clone()) }
func sub(a, b *Node) *Node { return subInto(a.Clone(), b.Clone()) }
func mul(a, b *Node) *Node { return mulInto(a.Clone(), b.Clone()) }
func div(a, b *Node) *Node { return divInto(a.Clone(), b.Clone()) }
func pow(a, b *Node) *Node { return powInto(a.Clone(), b.Clone()) }
func powR(a *Node, r Rational) *Node { return powRat(a.Clone(), r) }
func neg(a *Node) *Node { return negInto(a.Clone()) }
func scaled(a *Node, c Rational) *Node { return scale(a.Clone(), c) }

// sqrtOf returns r^(1/2), exact where possible.
func sqrtOf(r Rational) *Node { return powConst(r, ratHalf) }

// sumOf adds all terms without touching them.
func sumOf(terms ...*Node) *Node {
	acc := N(0)
	for _, t := range terms {
		acc = addInto(acc, t.Clone())
	}
	return acc
}

// productOf multiplies all factors without touching them.
func productOf(factors ...*Node) *Node {
	acc := N(1)
	for _, f := range factors {
		acc = mulInto(acc, f.Clone())
	}
	return acc
}
