package gocas

import "strconv"

// InstrKind classifies a postfix instruction.
type InstrKind uint8

const (
	PushNumber InstrKind = iota
	PushSymbol
	ApplyOperator
	CallFunction
)

// Instr is one step of a postfix program. Operands are pushed before the
// operator or function that consumes them.
type Instr struct {
	Kind   InstrKind
	Value  string
	Arity  int
	Fixity Fixity
	Pos    int
}

func (in Instr) String() string {
	switch in.Kind {
	case CallFunction:
		return in.Value + "/" + strconv.Itoa(in.Arity)
	case ApplyOperator:
		if in.Fixity == Prefix {
			return "u" + in.Value
		}
	}
	return in.Value
}

// ToPostfix converts tokens into a postfix program by precedence climbing.
func (s *Session) ToPostfix(toks []Token) (code []Instr, err error) {
	defer recoverTo(&err)
	return s.reduce(toks), nil
}

type reducer struct {
	s    *Session
	toks []Token
	pos  int
	out  []Instr
}

func (s *Session) reduce(toks []Token) []Instr {
	r := &reducer{s: s, toks: toks}
	r.run()
	return r.out
}

// run reduces the whole token list as one expression.
func (r *reducer) run() {
	if len(r.toks) == 0 {
		throwAt("reduce", ErrUnexpectedToken, "", 0, "empty expression")
	}
	r.expr(0)
	if r.pos < len(r.toks) {
		t := r.toks[r.pos]
		throwAt("reduce", ErrUnexpectedToken, t.String(), t.Pos, "expected an operator")
	}
}

func (r *reducer) peek() *Token {
	if r.pos < len(r.toks) {
		return &r.toks[r.pos]
	}
	return nil
}

func (r *reducer) expr(minPrec int) {
	r.unary()
	for {
		t := r.peek()
		if t == nil || t.Kind != TokenOperator {
			return
		}
		if op, ok := r.s.postfix[t.Value]; ok {
			if op.Precedence < minPrec {
				return
			}
			r.pos++
			r.out = append(r.out, Instr{Kind: ApplyOperator, Value: op.Symbol, Arity: 1, Fixity: Postfix, Pos: t.Pos})
			continue
		}
		op, ok := r.s.binary[t.Value]
		if !ok {
			throwAt("reduce", ErrUnexpectedToken, t.Value, t.Pos, "not a binary operator")
		}
		if op.Precedence < minPrec {
			return
		}
		r.pos++
		next := op.Precedence + 1
		if op.RightAssoc {
			next = op.Precedence
		}
		r.expr(next)
		r.out = append(r.out, Instr{Kind: ApplyOperator, Value: op.Symbol, Arity: 2, Fixity: Infix, Pos: t.Pos})
	}
}

func (r *reducer) unary() {
	t := r.peek()
	if t == nil {
		pos := 0
		if n := len(r.toks); n > 0 {
			pos = r.toks[n-1].Pos
		}
		throwAt("reduce", ErrUnexpectedToken, "", pos, "unexpected end of expression")
	}
	if t.Kind == TokenOperator {
		op, ok := r.s.prefix[t.Value]
		if !ok {
			throwAt("reduce", ErrUnexpectedToken, t.Value, t.Pos, "operand expected")
		}
		r.pos++
		r.expr(op.Precedence)
		r.out = append(r.out, Instr{Kind: ApplyOperator, Value: op.Symbol, Arity: 1, Fixity: Prefix, Pos: t.Pos})
		return
	}
	r.primary()
}

func (r *reducer) primary() {
	t := r.toks[r.pos]
	r.pos++
	switch t.Kind {
	case TokenNumber:
		r.out = append(r.out, Instr{Kind: PushNumber, Value: t.Value, Pos: t.Pos})
	case TokenIdent:
		if g := r.peek(); g != nil && g.Kind == TokenGroup && r.s.functions[t.Value] != nil {
			r.pos++
			args := splitArgs(*g)
			for _, a := range args {
				r.sub(a)
			}
			r.out = append(r.out, Instr{Kind: CallFunction, Value: t.Value, Arity: len(args), Pos: t.Pos})
			return
		}
		r.out = append(r.out, Instr{Kind: PushSymbol, Value: t.Value, Pos: t.Pos})
	case TokenGroup:
		if len(t.Group) == 0 {
			throwAt("reduce", ErrUnexpectedToken, t.Value+t.Close, t.Pos, "empty group")
		}
		r.sub(t.Group)
	default:
		throwAt("reduce", ErrUnexpectedToken, t.Value, t.Pos, "operand expected")
	}
}

func (r *reducer) sub(toks []Token) {
	inner := &reducer{s: r.s, toks: toks}
	inner.run()
	r.out = append(r.out, inner.out...)
}

// splitArgs splits a call's group on its top-level commas. An empty group
// means no arguments.
func splitArgs(g Token) [][]Token {
	if len(g.Group) == 0 {
		return nil
	}
	var args [][]Token
	start := 0
	for i, t := range g.Group {
		if t.Kind != TokenComma {
			continue
		}
		if i == start {
			throwAt("reduce", ErrUnexpectedToken, ",", t.Pos, "missing argument")
		}
		args = append(args, g.Group[start:i])
		start = i + 1
	}
	if start == len(g.Group) {
		throwAt("reduce", ErrUnexpectedToken, g.Close, g.Pos, "missing argument")
	}
	return append(args, g.Group[start:])
}
