package gocas

import (
	"strings"
)

// Fixity says where an operator sits relative to its operands.
type Fixity uint8

const (
	Infix Fixity = iota
	Prefix
	Postfix
)

// OperatorFunc applies an operator to its evaluated operands.
type OperatorFunc func(s *Session, operands []*Node) (*Node, error)

// Operator is an entry in a session's operator table.
type Operator struct {
	Symbol     string
	Name       string // key used by peekers
	Precedence int
	RightAssoc bool
	Fixity     Fixity
	Apply      OperatorFunc
}

// Built-in precedence levels.
const (
	PrecAdditive       = 1
	PrecMultiplicative = 2
	PrecUnary          = 3
	PrecPower          = 4
	PrecPostfix        = 5
)

func defaultOperators() (binary, prefix, postfix map[string]*Operator) {
	binary = map[string]*Operator{}
	prefix = map[string]*Operator{}
	postfix = map[string]*Operator{}
	for _, op := range []*Operator{
		{Symbol: "+", Name: "add", Precedence: PrecAdditive, Apply: opBinary(addInto)},
		{Symbol: "-", Name: "subtract", Precedence: PrecAdditive, Apply: opBinary(subInto)},
		{Symbol: "*", Name: "multiply", Precedence: PrecMultiplicative, Apply: opBinary(mulInto)},
		{Symbol: "/", Name: "divide", Precedence: PrecMultiplicative, Apply: opBinary(divInto)},
		{Symbol: "%", Name: "mod", Precedence: PrecMultiplicative, Apply: opCall("mod")},
		{Symbol: "^", Name: "pow", Precedence: PrecPower, RightAssoc: true, Apply: opBinary(powInto)},
		{Symbol: "**", Name: "pow", Precedence: PrecPower, RightAssoc: true, Apply: opBinary(powInto)},
		{Symbol: "-", Name: "negate", Precedence: PrecUnary, Fixity: Prefix, Apply: opUnary(negInto)},
		{Symbol: "+", Name: "plus", Precedence: PrecUnary, Fixity: Prefix, Apply: opUnary(func(a *Node) *Node { return a })},
		{Symbol: "!", Name: "factorial", Precedence: PrecPostfix, Fixity: Postfix, Apply: opCall("factorial")},
	} {
		switch op.Fixity {
		case Prefix:
			prefix[op.Symbol] = op
		case Postfix:
			postfix[op.Symbol] = op
		default:
			binary[op.Symbol] = op
		}
	}
	return binary, prefix, postfix
}

func opBinary(fn func(a, b *Node) *Node) OperatorFunc {
	return func(s *Session, o []*Node) (*Node, error) {
		o = s.operands(o...)
		return fn(o[0], o[1]), nil
	}
}

func opUnary(fn func(a *Node) *Node) OperatorFunc {
	return func(s *Session, o []*Node) (*Node, error) {
		return fn(s.operands(o...)[0]), nil
	}
}

// opCall delegates an operator to a function of the same meaning, so "7%3"
// and "mod(7,3)" agree.
func opCall(name string) OperatorFunc {
	return func(s *Session, o []*Node) (*Node, error) {
		return s.invoke(s.functions[name], s.operands(o...)), nil
	}
}

// RegisterOperator adds op to the operator table, replacing any operator
// with the same symbol and fixity.
func (s *Session) RegisterOperator(op Operator) error {
	switch {
	case op.Symbol == "":
		return &Error{Op: "operator", Msg: "empty symbol", Err: ErrOperator}
	case op.Apply == nil:
		return &Error{Op: "operator", Token: op.Symbol, Msg: "no Apply function", Err: ErrOperator}
	case op.Precedence < 0:
		return &Error{Op: "operator", Token: op.Symbol, Msg: "negative precedence", Err: ErrOutOfRange}
	}
	for i := 0; i < len(op.Symbol); i++ {
		c := op.Symbol[i]
		if isIdentChar(c) || c == ',' || c == '.' || strings.IndexByte(" \t\r\n", c) >= 0 {
			return &Error{Op: "operator", Token: op.Symbol, Msg: "symbol must be punctuation", Err: ErrOperator}
		}
	}
	if _, ok := s.brackets[op.Symbol]; ok || s.isCloser(op.Symbol) {
		return &Error{Op: "operator", Token: op.Symbol, Msg: "symbol is a bracket", Err: ErrOperator}
	}
	if op.Name == "" {
		op.Name = op.Symbol
	}
	o := op
	switch op.Fixity {
	case Prefix:
		s.prefix[op.Symbol] = &o
	case Postfix:
		s.postfix[op.Symbol] = &o
	default:
		s.binary[op.Symbol] = &o
	}
	return nil
}

// Operators returns the symbols of every registered operator, longest first.
func (s *Session) Operators() []string { return s.operatorSymbols() }
