package gocas

import (
	"fmt"

	"go.uber.org/zap"
)

// EvaluatePostfix runs a postfix program produced by ToPostfix.
func (s *Session) EvaluatePostfix(code []Instr, bindings map[string]*Node) (n *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("evaluate")()
	return s.evalPostfix(code, bindings), nil
}

func (s *Session) evalPostfix(code []Instr, bindings map[string]*Node) *Node {
	stack := make([]*Node, 0, 8)
	pop := func(in Instr) []*Node {
		if len(stack) < in.Arity {
			throwAt("evaluate", ErrUnexpectedToken, in.Value, in.Pos, "missing operand")
		}
		args := make([]*Node, in.Arity)
		copy(args, stack[len(stack)-in.Arity:])
		stack = stack[:len(stack)-in.Arity]
		return args
	}
	for _, in := range code {
		s.check()
		switch in.Kind {
		case PushNumber:
			r, err := ParseRational(in.Value)
			if err != nil {
				throwAt("evaluate", ErrUnexpectedToken, in.Value, in.Pos, "malformed number")
			}
			stack = append(stack, R(r))
		case PushSymbol:
			stack = append(stack, s.resolve(in.Value, bindings, in.Pos))
		case ApplyOperator:
			op := s.operatorFor(in)
			args := pop(in)
			s.peek(op.Name, args)
			res, err := op.Apply(s, args)
			if err != nil {
				throw(err)
			}
			stack = append(stack, res)
		case CallFunction:
			args := pop(in)
			stack = append(stack, s.call(in.Value, args, in.Pos))
		}
	}
	if len(stack) != 1 {
		throwAt("evaluate", ErrUnexpectedToken, "", 0, fmt.Sprintf("program left %d values", len(stack)))
	}
	return stack[0]
}

func (s *Session) operatorFor(in Instr) *Operator {
	var op *Operator
	switch in.Fixity {
	case Prefix:
		op = s.prefix[in.Value]
	case Postfix:
		op = s.postfix[in.Value]
	default:
		op = s.binary[in.Value]
	}
	if op == nil {
		throwAt("evaluate", ErrOperator, in.Value, in.Pos, "operator is not registered")
	}
	return op
}

// resolve looks an identifier up in bindings, variables and constants, and
// otherwise returns it as a free symbol.
func (s *Session) resolve(name string, bindings map[string]*Node, pos int) *Node {
	if v, ok := bindings[name]; ok {
		return v.Clone()
	}
	if v, ok := s.vars[name]; ok {
		return v.Clone()
	}
	if v, ok := s.constants[name]; ok {
		return v.Clone()
	}
	if !validName(name) {
		throwAt("evaluate", ErrInvalidVariableName, name, pos, "not an identifier")
	}
	if s.functions[name] != nil {
		throwAt("evaluate", ErrUnexpectedToken, name, pos, "function used without arguments")
	}
	return S(name)
}

// call validates arity and applies the named function.
func (s *Session) call(name string, args []*Node, pos int) *Node {
	fn := s.functions[name]
	if fn == nil {
		throwAt("evaluate", ErrUnexpectedToken, name, pos, "unknown function")
	}
	if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
		throwAt("evaluate", ErrDimension, name, pos,
			fmt.Sprintf("%s expects %s, got %d", name, fn.arity(), len(args)))
	}
	s.peek(name, args)
	s.log.Debug("call", zap.String("function", name), zap.Int("args", len(args)))
	return s.invoke(fn, args)
}
