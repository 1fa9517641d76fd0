package gocas

type fractionKind uint8

const (
	linearFraction    fractionKind = iota // coef/(x-root)^power
	quadraticFraction                     // num/den^power, den an irreducible monic quadratic
	generalFraction                       // num/den for a leftover factor of higher degree
)

// fraction is one term of a partial fraction decomposition.
type fraction struct {
	kind  fractionKind
	coef  Rational
	root  Rational
	power int
	num   poly
	den   poly
}

func (t fraction) node(x string) *Node {
	switch t.kind {
	case linearFraction:
		return scale(powRat(linear(t.root).node(x), RatInt(int64(-t.power))), t.coef)
	case quadraticFraction:
		return divInto(t.num.node(x), powRat(t.den.node(x), RatInt(int64(t.power))))
	}
	return divInto(t.num.node(x), t.den.node(x))
}

type partialFractionSet struct {
	quotient poly
	terms    []fraction
}

// partialFractions decomposes n/d. The denominator is split into rational
// linear and quadratic factors with multiplicity plus at most one leftover
// factor; the numerators come from an exact linear system.
func (s *Session) partialFractions(n, d poly) (partialFractionSet, bool) {
	lc := d.lead()
	inv := mustInv(lc)
	n, d = n.scale(inv), d.scale(inv)
	quo, rem := n.divmod(d)
	set := partialFractionSet{quotient: quo}
	if rem.isZero() {
		return set, true
	}

	type slot struct {
		kind  fractionKind
		root  Rational
		den   poly
		power int
		width int
	}
	var slots []slot
	var basis []poly
	rest := d
	for _, r := range d.rationalRoots() {
		s.check()
		m, q := rest.multiplicity(r)
		rest = q
		for k := 1; k <= m; k++ {
			f := poly{ratOne}
			for i := 0; i < k; i++ {
				f = f.mul(linear(r))
			}
			b, _ := d.divmod(f)
			basis = append(basis, b)
			slots = append(slots, slot{kind: linearFraction, root: r, power: k, width: 1})
		}
	}
	quads, rest := rest.monic().quadraticFactors()
	for _, qf := range quads {
		s.check()
		f := poly{ratOne}
		for k := 1; k <= qf.mult; k++ {
			f = f.mul(qf.q)
			b, _ := d.divmod(f)
			basis = append(basis, b, b.mul(poly{ratZero, ratOne}))
			slots = append(slots, slot{kind: quadraticFraction, den: qf.q, power: k, width: 2})
		}
	}
	if deg := rest.degree(); deg >= 1 {
		b, _ := d.divmod(rest)
		xi := poly{ratOne}
		for i := 0; i < deg; i++ {
			basis = append(basis, b.mul(xi))
			xi = xi.mul(poly{ratZero, ratOne})
		}
		slots = append(slots, slot{kind: generalFraction, den: rest, width: deg})
	}

	size := d.degree()
	if len(basis) != size {
		return set, false
	}
	m := make([][]Rational, size)
	rhs := make([]Rational, size)
	for i := range m {
		m[i] = make([]Rational, size)
		for j, b := range basis {
			m[i][j] = b.coeff(i)
		}
		rhs[i] = rem.coeff(i)
	}
	sol, ok := solveLinear(m, rhs)
	if !ok {
		return set, false
	}

	col := 0
	for _, sl := range slots {
		switch sl.kind {
		case linearFraction:
			if !sol[col].IsZero() {
				set.terms = append(set.terms, fraction{kind: linearFraction, coef: sol[col], root: sl.root, power: sl.power})
			}
		default:
			num := poly(append([]Rational(nil), sol[col:col+sl.width]...)).trim()
			if !num.isZero() {
				set.terms = append(set.terms, fraction{kind: sl.kind, num: num, den: sl.den, power: sl.power})
			}
		}
		col += sl.width
	}
	return set, true
}

// solveLinear solves m*x = rhs exactly by Gaussian elimination.
func solveLinear(m [][]Rational, rhs []Rational) ([]Rational, bool) {
	n := len(rhs)
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if !m[r][col].IsZero() {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		inv := mustInv(m[col][col])
		for r := 0; r < n; r++ {
			if r == col || m[r][col].IsZero() {
				continue
			}
			f := m[r][col].Mul(inv)
			for c := col; c < n; c++ {
				m[r][c] = m[r][c].Sub(f.Mul(m[col][c]))
			}
			rhs[r] = rhs[r].Sub(f.Mul(rhs[col]))
		}
	}
	out := make([]Rational, n)
	for i := range out {
		out[i] = rhs[i].Mul(mustInv(m[i][i]))
	}
	return out, true
}

// Apart returns the partial fraction decomposition of a rational function
// of x with numeric coefficients.
func (s *Session) Apart(n *Node, x string) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("apart")()
	if !validName(x) {
		return nil, &Error{Op: "apart", Token: x, Err: ErrInvalidVariableName}
	}
	return s.apart(n, x), nil
}

func (s *Session) apart(n *Node, x string) *Node {
	num, den := numDen(n)
	np, ok1 := s.toPoly(num, x)
	dp, ok2 := s.toPoly(den, x)
	if !ok1 || !ok2 || dp.degree() < 1 {
		return n.Clone()
	}
	set, ok := s.partialFractions(np, dp)
	if !ok {
		return n.Clone()
	}
	acc := set.quotient.node(x)
	for _, t := range set.terms {
		acc = addInto(acc, t.node(x))
	}
	return acc
}
