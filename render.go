package gocas

import (
	"math/big"
	"strings"
)

// renderer turns canonical nodes into re-parseable text. Output has no
// spaces, e.g. "x^2+3*x-4", "2/s^3" or "e^(2*x)".
type renderer struct {
	decimal bool
	digits  int
}

// String renders n exactly. Parsing the result yields an equal node.
func (n *Node) String() string {
	var r renderer
	return r.node(n)
}

// Decimal renders n with non-integer coefficients as decimals carrying the
// given number of fractional digits. The result is not exact.
func (n *Node) Decimal(digits int) string {
	r := renderer{decimal: true, digits: digits}
	return r.node(n)
}

func (r *renderer) node(n *Node) string {
	switch n.Shape {
	case Constant:
		return r.number(n.Mult)
	case Sum, PolyList:
		if n.Power.IsOne() && n.Mult.IsOne() {
			return r.terms(n)
		}
	}
	return r.product(n)
}

func (r *renderer) number(c Rational) string {
	if r.decimal && !c.IsInt() {
		return c.ToDecimal(r.digits)
	}
	return c.String()
}

func (r *renderer) terms(n *Node) string {
	var b strings.Builder
	for i, t := range sortedChildren(n) {
		s := r.node(t)
		if i > 0 && !strings.HasPrefix(s, "-") {
			b.WriteByte('+')
		}
		b.WriteString(s)
	}
	return b.String()
}

// product renders a coefficient and a list of factors, moving factors with
// negative powers below a fraction bar.
func (r *renderer) product(n *Node) string {
	var factors []*Node
	if n.Shape == Product {
		factors = sortedChildren(n)
	} else {
		u := n.shallow()
		u.Mult = ratOne
		factors = []*Node{u}
	}

	var top, bottom []string
	for _, f := range factors {
		if f.Shape != Exponential && f.Shape != Constant && f.Power.Sign() < 0 {
			inv := f.shallow()
			inv.Power = f.Power.Neg()
			bottom = append(bottom, r.factor(inv))
			continue
		}
		top = append(top, r.factor(f))
	}

	c := n.Mult
	num := new(big.Int).Abs(c.Num())
	den := c.Den()
	if r.decimal && !c.IsInt() {
		if s := c.Abs().ToDecimal(r.digits); s != "1" || len(top) == 0 {
			top = append([]string{s}, top...)
		}
	} else {
		if !num.IsInt64() || num.Int64() != 1 || len(top) == 0 {
			top = append([]string{num.String()}, top...)
		}
		if !den.IsInt64() || den.Int64() != 1 {
			bottom = append([]string{den.String()}, bottom...)
		}
	}

	s := strings.Join(top, "*")
	switch len(bottom) {
	case 0:
	case 1:
		s += "/" + bottom[0]
	default:
		s += "/(" + strings.Join(bottom, "*") + ")"
	}
	if c.Sign() < 0 {
		s = "-" + s
	}
	return s
}

// factor renders a node whose Mult is 1.
func (r *renderer) factor(f *Node) string {
	switch f.Shape {
	case Constant:
		return r.number(f.Mult)
	case Monomial:
		return f.Value + r.power(f.Power)
	case Function:
		return r.call(f) + r.power(f.Power)
	case Sum, PolyList:
		return "(" + r.terms(f) + ")" + r.power(f.Power)
	case Exponential:
		return r.atom(f.Base) + "^" + r.atom(f.Exp)
	}
	return "(" + r.node(f) + ")"
}

func (r *renderer) call(f *Node) string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = r.node(a)
	}
	return f.Value + "(" + strings.Join(args, ",") + ")"
}

func (r *renderer) power(p Rational) string {
	switch {
	case p.IsOne():
		return ""
	case p.IsInt() && p.Sign() > 0:
		return "^" + p.String()
	}
	return "^(" + r.number(p) + ")"
}

// atom renders the base or exponent of a power, parenthesised unless it
// is a single token.
func (r *renderer) atom(e *Node) string {
	switch {
	case e.Shape == Constant && e.Mult.IsInt() && e.Mult.Sign() >= 0:
		return e.Mult.String()
	case e.Mult.IsOne() && e.Power.IsOne() && (e.Shape == Monomial || e.Shape == Function):
		return r.factor(e)
	}
	return "(" + r.node(e) + ")"
}
