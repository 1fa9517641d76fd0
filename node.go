package gocas

import "sort"

// Shape classifies a Node.
type Shape uint8

const (
	// Constant is a pure number held in Mult.
	Constant Shape = iota
	// Monomial is a symbol raised to a rational Power.
	Monomial
	// Function is a named call with ordered Args.
	Function
	// Sum is a sum of its Children, optionally scaled and raised to a power.
	Sum
	// Product is a product of its Children.
	Product
	// PolyList is a Sum whose terms are all monomials in one variable, Value.
	PolyList
	// Exponential is Base raised to a non-constant (or irrational) Exp.
	Exponential
)

var shapeNames = [...]string{"constant", "monomial", "function", "sum", "product", "polylist", "exponential"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "shape(?)"
}

// Node is a canonical expression tree. The value of a node is
//
//	Mult * (body)^Power
//
// where the body depends on Shape. Canonical nodes obey:
//   - Constant: Power is 1, the value is Mult.
//   - Product: every child has Mult 1, the product has Power 1.
//   - Exponential: Power is 1, Base has Mult 1 unless it is a Constant.
//   - Sum/PolyList with Power 1 never contain a Sum with Power 1.
//
// Two canonical nodes are equal iff their String forms are equal.
type Node struct {
	Shape    Shape
	Value    string
	Mult     Rational
	Power    Rational
	Args     []*Node
	Base     *Node
	Exp      *Node
	Children map[string]*Node
}

// N returns the integer n.
func N(n int64) *Node { return R(RatInt(n)) }

// F returns the fraction p/q; q must be non-zero.
func F(p, q int64) *Node { return R(ratFrac(p, q)) }

// R returns a Constant holding r.
func R(r Rational) *Node { return &Node{Shape: Constant, Mult: r, Power: ratOne} }

// S returns the symbol name.
func S(name string) *Node { return &Node{Shape: Monomial, Value: name, Mult: ratOne, Power: ratOne} }

func newFunc(name string, args []*Node) *Node {
	return &Node{Shape: Function, Value: name, Args: args, Mult: ratOne, Power: ratOne}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Shape: n.Shape, Value: n.Value, Mult: n.Mult, Power: n.Power}
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = a.Clone()
		}
	}
	c.Base = n.Base.Clone()
	c.Exp = n.Exp.Clone()
	if n.Children != nil {
		c.Children = make(map[string]*Node, len(n.Children))
		for k, v := range n.Children {
			c.Children[k] = v.Clone()
		}
	}
	return c
}

func cloneAll(ns []*Node) []*Node {
	out := make([]*Node, len(ns))
	for i, n := range ns {
		out[i] = n.Clone()
	}
	return out
}

// shallow copies the top level of n only; children are shared.
func (n *Node) shallow() *Node {
	c := *n
	return &c
}

// unit returns a copy of n with Mult and Power reset to 1.
func (n *Node) unit() *Node {
	c := n.Clone()
	c.Mult, c.Power = ratOne, ratOne
	return c
}

func (n *Node) IsConstant() bool { return n.Shape == Constant }
func (n *Node) IsZero() bool { return n.Shape == Constant && n.Mult.IsZero() }
func (n *Node) IsOne() bool { return n.Shape == Constant && n.Mult.IsOne() }

// isSymbol reports whether n is exactly the bare symbol name.
func (n *Node) isSymbol(name string) bool {
	return n.Shape == Monomial && n.Value == name && n.Mult.IsOne() && n.Power.IsOne()
}

func (n *Node) isSum() bool { return n.Shape == Sum || n.Shape == PolyList }

// Equal reports structural equality of canonical nodes.
func (n *Node) Equal(m *Node) bool { return n.String() == m.String() }

// constSymbols are symbols that denote numbers rather than variables.
var constSymbols = map[string]bool{"pi": true, "e": true}

// Variables returns the sorted free variables of n.
func (n *Node) Variables() []string {
	seen := map[string]bool{}
	n.walk(func(m *Node) {
		if m.Shape == Monomial && !constSymbols[m.Value] {
			seen[m.Value] = true
		}
	})
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Contains reports whether the symbol x occurs anywhere in n.
func (n *Node) Contains(x string) bool {
	switch n.Shape {
	case Constant:
		return false
	case Monomial:
		return n.Value == x
	case Function:
		for _, a := range n.Args {
			if a.Contains(x) {
				return true
			}
		}
	case Exponential:
		return n.Base.Contains(x) || n.Exp.Contains(x)
	default:
		for _, c := range n.Children {
			if c.Contains(x) {
				return true
			}
		}
	}
	return false
}

// hasCall reports whether a Function named name occurs in n.
func (n *Node) hasCall(name string) bool {
	found := false
	n.walk(func(m *Node) {
		if m.Shape == Function && m.Value == name {
			found = true
		}
	})
	return found
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, a := range n.Args {
		a.walk(fn)
	}
	if n.Base != nil {
		n.Base.walk(fn)
	}
	if n.Exp != nil {
		n.Exp.walk(fn)
	}
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// termKey identifies like terms: nodes that differ only in Mult.
func termKey(n *Node) string {
	if n.Shape == Constant {
		return "#"
	}
	if n.Mult.IsOne() {
		return n.String()
	}
	c := n.shallow()
	c.Mult = ratOne
	return c.String()
}

// factorKey identifies like factors: nodes that differ only in Mult and Power.
func factorKey(n *Node) string {
	switch n.Shape {
	case Constant:
		return "#"
	case Exponential:
		return "^" + n.Base.String()
	}
	if n.Mult.IsOne() && n.Power.IsOne() {
		return n.String()
	}
	c := n.shallow()
	c.Mult, c.Power = ratOne, ratOne
	return c.String()
}

// Terms returns the summands of n in rendering order. A node that is not a
// Sum with Power 1 is its own single term.
func (n *Node) Terms() []*Node {
	if n.isSum() && n.Power.IsOne() {
		ts := sortedChildren(n)
		if !n.Mult.IsOne() {
			for i, t := range ts {
				ts[i] = scale(t.Clone(), n.Mult)
			}
		}
		return ts
	}
	return []*Node{n}
}

// sortedChildren orders the children of a Sum or Product deterministically.
// Sums put higher degrees first and constants last; products put symbols
// before functions, exponentials and parenthesised sums.
func sortedChildren(n *Node) []*Node {
	out := make([]*Node, 0, len(n.Children))
	keys := make(map[*Node]string, len(n.Children))
	for k, c := range n.Children {
		out = append(out, c)
		keys[c] = k
	}
	if n.Shape == Product {
		sort.Slice(out, func(i, j int) bool {
			ri, rj := factorRank(out[i]), factorRank(out[j])
			if ri != rj {
				return ri < rj
			}
			return keys[out[i]] < keys[out[j]]
		})
		return out
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Shape == Constant, out[j].Shape == Constant
		if ci != cj {
			return cj
		}
		di, dj := degree(out[i]), degree(out[j])
		if di != dj {
			return di > dj
		}
		return keys[out[i]] < keys[out[j]]
	})
	return out
}

func factorRank(n *Node) int {
	switch n.Shape {
	case Monomial:
		return 0
	case Function:
		return 1
	case Exponential:
		return 2
	}
	return 3
}

// degree is the total symbolic degree used to order the terms of a sum.
func degree(n *Node) float64 {
	switch n.Shape {
	case Monomial:
		return n.Power.Float64()
	case Product:
		d := 0.0
		for _, c := range n.Children {
			d += degree(c)
		}
		return d
	case Sum, PolyList:
		d := 0.0
		for _, c := range n.Children {
			if cd := degree(c); cd > d {
				d = cd
			}
		}
		return d * n.Power.Float64()
	}
	return 0
}

// validName reports whether s is a legal identifier.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isIdentChar(c) || (i == 0 && isDigit(c)) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }
