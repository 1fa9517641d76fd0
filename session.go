package gocas

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is an isolated engine instance. It owns the operator, bracket,
// function, constant and variable tables, the preprocessor chain, the
// peekers and the settings. Sessions are not safe for concurrent use; give
// each goroutine its own.
type Session struct {
	ID uuid.UUID

	settings Settings
	log      *zap.Logger
	guard    guard

	binary  map[string]*Operator
	prefix  map[string]*Operator
	postfix map[string]*Operator

	brackets      map[string]Bracket
	aliases       map[string]string
	preprocessors []Preprocessor
	peekers       map[string][]Peeker

	functions map[string]*FunctionDef
	constants map[string]*Node
	vars      map[string]*Node
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger routes session diagnostics to l. The default discards them.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConfig starts the session with st instead of DefaultSettings. Invalid
// settings are ignored.
func WithConfig(st Settings) Option {
	return func(s *Session) {
		if st.Validate() == nil {
			s.settings = st
		}
	}
}

// WithClock replaces the clock used by the deadline guard.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.guard.now = now
		}
	}
}

// NewSession returns a session with the built-in operators, functions and
// preprocessors installed.
func NewSession(opts ...Option) *Session {
	s := &Session{
		ID:       uuid.New(),
		settings: DefaultSettings(),
		log:      zap.NewNop(),
		guard:    guard{now: time.Now},
		brackets: map[string]Bracket{
			"(": {Open: "(", Close: ")"},
			"[": {Open: "[", Close: "]"},
		},
		aliases: map[string]string{
			"ln":     "log",
			"arcsin": "asin",
			"arccos": "acos",
			"arctan": "atan",
			"fact":   "factorial",
		},
		peekers:   map[string][]Peeker{},
		constants: map[string]*Node{},
		vars:      map[string]*Node{},
	}
	s.binary, s.prefix, s.postfix = defaultOperators()
	s.functions = defaultFunctions()
	s.preprocessors = []Preprocessor{aliasPreprocessor(), impliedMultiplication()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session", s.ID.String()))
	return s
}

// Logger returns the session's logger.
func (s *Session) Logger() *zap.Logger { return s.log }

// Parse evaluates src to a canonical node.
func (s *Session) Parse(src string) (*Node, error) { return s.Evaluate(src, nil) }

// Evaluate parses src and evaluates it, resolving identifiers first against
// bindings, then session variables, then constants. Anything left is a free
// symbol.
func (s *Session) Evaluate(src string, bindings map[string]*Node) (n *Node, err error) {
	defer recoverTo(&err)
	defer s.arm("evaluate")()
	s.log.Debug("evaluate", zap.String("src", src))
	return s.parse(src, bindings), nil
}

// MustParse is Parse for inputs known to be valid. It panics on error.
func (s *Session) MustParse(src string) *Node {
	n, err := s.Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func (s *Session) parse(src string, bindings map[string]*Node) *Node {
	pre := s.preprocess(src)
	toks := s.tokenize(pre)
	code := s.reduce(toks)
	return s.evalPostfix(code, bindings)
}

// Format renders n as text, honouring Settings.DecimalOutput.
func (s *Session) Format(n *Node) string {
	if s.settings.DecimalOutput {
		return n.Decimal(s.settings.Precision)
	}
	return n.String()
}

// SetVar binds name to value for later evaluations.
func (s *Session) SetVar(name string, value *Node) error {
	if err := s.checkBindable("setvar", name); err != nil {
		return err
	}
	s.vars[name] = value.Clone()
	return nil
}

// SetVarExpr parses src and binds name to the result.
func (s *Session) SetVarExpr(name, src string) error {
	v, err := s.Parse(src)
	if err != nil {
		return err
	}
	return s.SetVar(name, v)
}

// ClearVar removes a variable binding.
func (s *Session) ClearVar(name string) { delete(s.vars, name) }

// Var returns a copy of a variable's value.
func (s *Session) Var(name string) (*Node, bool) {
	v, ok := s.vars[name]
	return v.Clone(), ok
}

// SetConstant defines a named constant. Constants rank below variables.
func (s *Session) SetConstant(name string, value *Node) error {
	if err := s.checkBindable("setconstant", name); err != nil {
		return err
	}
	s.constants[name] = value.Clone()
	return nil
}

func (s *Session) checkBindable(op, name string) error {
	switch {
	case !validName(name):
		return &Error{Op: op, Token: name, Msg: "not an identifier", Err: ErrInvalidVariableName}
	case constSymbols[name]:
		return &Error{Op: op, Token: name, Msg: "reserved constant", Err: ErrInvalidVariableName}
	case s.functions[name] != nil:
		return &Error{Op: op, Token: name, Msg: "name is a function", Err: ErrInvalidVariableName}
	}
	return nil
}

// Peeker observes an operation and its operands before it is applied. It
// receives copies, so it cannot change the result.
type Peeker func(op string, operands []*Node)

// AddPeeker registers p for the operator or function named op, or for every
// operation when op is "*".
func (s *Session) AddPeeker(op string, p Peeker) {
	s.peekers[op] = append(s.peekers[op], p)
}

// ClearPeekers removes every peeker registered for op.
func (s *Session) ClearPeekers(op string) { delete(s.peekers, op) }

// TracePeeker logs each operation at debug level.
func TracePeeker(l *zap.Logger) Peeker {
	return func(op string, operands []*Node) {
		l.Debug("apply", zap.String("op", op), zap.Stringers("operands", operands))
	}
}

func (s *Session) peek(op string, operands []*Node) {
	if len(s.peekers) == 0 {
		return
	}
	for _, key := range [...]string{op, "*"} {
		for _, p := range s.peekers[key] {
			p(op, cloneAll(operands))
		}
	}
}

// operands hands the arithmetic kernel nodes it may consume.
func (s *Session) operands(ns ...*Node) []*Node {
	if s.settings.Immutable {
		return cloneAll(ns)
	}
	return ns
}

// Add returns a+b.
func (s *Session) Add(a, b *Node) (n *Node, err error) {
	defer recoverTo(&err)
	o := s.operands(a, b)
	return addInto(o[0], o[1]), nil
}

// Subtract returns a-b.
func (s *Session) Subtract(a, b *Node) (n *Node, err error) {
	defer recoverTo(&err)
	o := s.operands(a, b)
	return subInto(o[0], o[1]), nil
}

// Multiply returns a*b.
func (s *Session) Multiply(a, b *Node) (n *Node, err error) {
	defer recoverTo(&err)
	o := s.operands(a, b)
	return mulInto(o[0], o[1]), nil
}

// Divide returns a/b.
func (s *Session) Divide(a, b *Node) (n *Node, err error) {
	defer recoverTo(&err)
	o := s.operands(a, b)
	return divInto(o[0], o[1]), nil
}

// Pow returns a^b.
func (s *Session) Pow(a, b *Node) (n *Node, err error) {
	defer recoverTo(&err)
	o := s.operands(a, b)
	return powInto(o[0], o[1]), nil
}

// Negate returns -a.
func (s *Session) Negate(a *Node) *Node {
	return negInto(s.operands(a)[0])
}

// Canonicalize rebuilds n through the arithmetic kernel. For a canonical
// input the result is equal to it.
func (s *Session) Canonicalize(n *Node) (c *Node, err error) {
	defer recoverTo(&err)
	return s.canon(n), nil
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(%s)", s.ID)
}
