package gocas

// Simplify rewrites n until it stops changing or Settings.SimplifyPasses
// runs out. Each pass applies sin(u)^2+cos(u)^2 = 1, cancels common
// polynomial factors of univariate fractions, combines univariate sums of
// fractions and keeps an expansion when it renders shorter.
func (s *Session) Simplify(n *Node) (res *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("simplify")()
	return s.simplify(n), nil
}

func (s *Session) simplify(n *Node) *Node {
	cur := s.canon(n)
	prev := cur.String()
	for i := 0; i < s.settings.SimplifyPasses; i++ {
		s.check()
		cur = s.simplifyPass(cur)
		str := cur.String()
		if str == prev {
			break
		}
		prev = str
	}
	return cur
}

func (s *Session) simplifyPass(n *Node) *Node {
	n = s.mapNode(n, s.simplifyPass)
	n = s.pythagorean(n)
	n = shorter(n, s.together(n))
	n = s.cancelRational(n)
	var expanded *Node
	if attempt(func() { expanded = s.expand(n) }) == nil {
		n = shorter(n, expanded)
	}
	return n
}

// simplifyQuick is the cheap cleanup used inside other transforms.
func (s *Session) simplifyQuick(n *Node) *Node {
	return s.cancelRational(s.canon(n))
}

func shorter(n, alt *Node) *Node {
	if alt != nil && len(alt.String()) < len(n.String()) {
		return alt
	}
	return n
}

// pythagorean replaces c*r*sin(u)^2 + c*r*cos(u)^2 by c*r, one pair at a
// time.
func (s *Session) pythagorean(n *Node) *Node {
	if !n.isSum() || !n.Power.IsOne() {
		return n
	}
	for {
		terms := n.Terms()
		seen := map[string]int{}
		done := true
		for i, t := range terms {
			for _, f := range factorsOf(t) {
				if f.Shape != Function || len(f.Args) != 1 || !f.Power.Equal(RatInt(2)) {
					continue
				}
				partner := map[string]string{"sin": "cos", "cos": "sin"}[f.Value]
				if partner == "" {
					continue
				}
				rest := div(t, f.unitMult())
				arg := f.Args[0].String()
				if j, ok := seen[partner+"|"+arg+"|"+rest.String()]; ok && j != i {
					acc := rest
					for k, u := range terms {
						if k != i && k != j {
							acc = addInto(acc, u.Clone())
						}
					}
					n = acc
					done = false
					break
				}
				seen[f.Value+"|"+arg+"|"+rest.String()] = i
			}
			if !done {
				break
			}
		}
		if done || !n.isSum() || !n.Power.IsOne() {
			return n
		}
	}
}

// together puts a univariate sum of fractions over a common denominator.
// It returns nil when n is not such a sum.
func (s *Session) together(n *Node) *Node {
	vars := n.Variables()
	if len(vars) != 1 || !n.isSum() || !n.Power.IsOne() {
		return nil
	}
	x := vars[0]
	num, den := poly{}, poly{ratOne}
	fractions := 0
	for _, t := range n.Terms() {
		tn, td := numDen(t)
		p, ok1 := s.toPoly(tn, x)
		q, ok2 := s.toPoly(td, x)
		if !ok1 || !ok2 || q.isZero() {
			return nil
		}
		if q.degree() > 0 {
			fractions++
		}
		num = num.mul(q).add(p.mul(den))
		den = den.mul(q)
	}
	if fractions < 2 {
		return nil
	}
	return s.reduceFraction(num, den, x)
}

// cancelRational divides the numerator and denominator of a univariate
// fraction by their polynomial GCD.
func (s *Session) cancelRational(n *Node) *Node {
	num, den := numDen(n)
	if den.IsOne() {
		return n
	}
	vars := n.Variables()
	if len(vars) != 1 {
		return n
	}
	x := vars[0]
	p, ok1 := s.toPoly(num, x)
	q, ok2 := s.toPoly(den, x)
	if !ok1 || !ok2 || q.isZero() || polyGCD(p, q).degree() < 1 {
		return n
	}
	return s.reduceFraction(p, q, x)
}

func (s *Session) reduceFraction(p, q poly, x string) *Node {
	if g := polyGCD(p, q); g.degree() >= 1 {
		p, _ = p.divmod(g)
		q, _ = q.divmod(g)
	}
	lc := q.lead()
	p, q = p.scale(mustInv(lc)), q.scale(mustInv(lc))
	return divInto(p.node(x), q.node(x))
}
