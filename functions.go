package gocas

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
)

// NativeFunc implements a user function in Go. It receives copies of the
// evaluated arguments.
type NativeFunc func(args []*Node) (*Node, error)

// FunctionDef is an entry in a session's function table.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for no limit
	Params  []string
	Body    *Node

	native  NativeFunc
	builtin funcRule
}

type funcRule func(s *Session, args []*Node) *Node

func (fn *FunctionDef) arity() string {
	switch {
	case fn.MinArgs == fn.MaxArgs && fn.MinArgs == 1:
		return "1 argument"
	case fn.MinArgs == fn.MaxArgs:
		return strconv.Itoa(fn.MinArgs) + " arguments"
	case fn.MaxArgs < 0:
		return "at least " + strconv.Itoa(fn.MinArgs) + " arguments"
	}
	return fmt.Sprintf("%d to %d arguments", fn.MinArgs, fn.MaxArgs)
}

// elementaryRules simplify calls to the built-in elementary functions. A
// rule consumes its arguments and returns an inert call when nothing
// applies. Assigned in init to break the reference cycle through s.fn.
var elementaryRules map[string]funcRule

func init() {
	elementaryRules = map[string]funcRule{
		"sin":       unary("sin", sinRule),
		"cos":       unary("cos", cosRule),
		"tan":       unary("tan", tanRule),
		"sec":       unary("sec", secRule),
		"csc":       unary("csc", cscRule),
		"cot":       unary("cot", cotRule),
		"asin":      unary("asin", asinRule),
		"acos":      unary("acos", acosRule),
		"atan":      unary("atan", atanRule),
		"sinh":      unary("sinh", oddRule("sinh", zeroAt(0))),
		"cosh":      unary("cosh", evenRule("cosh", zeroAt(1))),
		"tanh":      unary("tanh", oddRule("tanh", zeroAt(0))),
		"log":       logRule,
		"exp":       unary("exp", func(s *Session, u *Node) *Node { return powInto(S("e"), u) }),
		"sqrt":      unary("sqrt", func(s *Session, u *Node) *Node { return powRat(u, ratHalf) }),
		"abs":       unary("abs", absRule),
		"floor":     unary("floor", roundRule("floor", Rational.Floor)),
		"ceil":      unary("ceil", roundRule("ceil", Rational.Ceil)),
		"sign":      unary("sign", signRule),
		"factorial": unary("factorial", factorialRule),
		"mod":       modRule,
	}
}

func defaultFunctions() map[string]*FunctionDef {
	fns := make(map[string]*FunctionDef, len(elementaryRules)+len(transformCalls))
	for name, rule := range elementaryRules {
		lo, hi := 1, 1
		switch name {
		case "log":
			hi = 2
		case "mod":
			lo, hi = 2, 2
		}
		fns[name] = &FunctionDef{Name: name, MinArgs: lo, MaxArgs: hi, builtin: rule}
	}
	for name, t := range transformCalls {
		fns[name] = &FunctionDef{Name: name, MinArgs: t.min, MaxArgs: t.max, builtin: t.rule}
	}
	return fns
}

// fn applies the named elementary function, or builds an inert call.
func (s *Session) fn(name string, args ...*Node) *Node {
	if rule := elementaryRules[name]; rule != nil {
		return rule(s, args)
	}
	return newFunc(name, args)
}

func (s *Session) invoke(fn *FunctionDef, args []*Node) *Node {
	switch {
	case fn.builtin != nil:
		return fn.builtin(s, args)
	case fn.native != nil:
		res, err := fn.native(cloneAll(args))
		if err != nil {
			throw(err)
		}
		if res == nil {
			throwf(fn.Name, ErrUndefined, "native function returned no value")
		}
		return res
	}
	return s.expandUser(fn, args)
}

// expandUser substitutes args for the parameters of a user function. The
// parameters are first renamed to placeholders so that f(y,x) with body
// x+2*y swaps correctly.
func (s *Session) expandUser(fn *FunctionDef, args []*Node) *Node {
	body := fn.Body.Clone()
	for i, p := range fn.Params {
		body = s.substitute(body, p, S(placeholder(i)))
	}
	for i := range fn.Params {
		body = s.substitute(body, placeholder(i), args[i])
	}
	return body
}

func placeholder(i int) string { return "#" + strconv.Itoa(i) }

// RegisterFunction defines name(params...) = body. Redefining a user
// function replaces it; built-in functions cannot be replaced.
func (s *Session) RegisterFunction(name string, params []string, body string) error {
	if err := s.checkFunctionName(name); err != nil {
		return err
	}
	bindings := make(map[string]*Node, len(params))
	for _, p := range params {
		if !validName(p) || constSymbols[p] {
			return &Error{Op: "function", Token: p, Msg: "bad parameter name", Err: ErrInvalidVariableName}
		}
		if bindings[p] != nil {
			return &Error{Op: "function", Token: p, Msg: "duplicate parameter", Err: ErrInvalidVariableName}
		}
		bindings[p] = S(p)
	}
	n, err := s.Evaluate(body, bindings)
	if err != nil {
		return err
	}
	s.functions[name] = &FunctionDef{
		Name:    name,
		MinArgs: len(params),
		MaxArgs: len(params),
		Params:  append([]string(nil), params...),
		Body:    n,
	}
	return nil
}

// RegisterNative defines name as a Go function taking between minArgs and
// maxArgs arguments; maxArgs -1 means no upper bound.
func (s *Session) RegisterNative(name string, minArgs, maxArgs int, fn NativeFunc) error {
	if err := s.checkFunctionName(name); err != nil {
		return err
	}
	if fn == nil || minArgs < 0 || (maxArgs >= 0 && maxArgs < minArgs) {
		return &Error{Op: "function", Token: name, Msg: "bad arity or nil function", Err: ErrOutOfRange}
	}
	s.functions[name] = &FunctionDef{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, native: fn}
	return nil
}

func (s *Session) checkFunctionName(name string) error {
	switch {
	case !validName(name):
		return &Error{Op: "function", Token: name, Msg: "not an identifier", Err: ErrInvalidVariableName}
	case constSymbols[name]:
		return &Error{Op: "function", Token: name, Msg: "reserved constant", Err: ErrInvalidVariableName}
	}
	if old := s.functions[name]; old != nil && old.builtin != nil {
		return &Error{Op: "function", Token: name, Msg: "cannot replace a built-in function", Err: ErrInvalidVariableName}
	}
	return nil
}

// Functions returns the names of every callable function.
func (s *Session) Functions() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unary(name string, rule func(s *Session, u *Node) *Node) funcRule {
	return func(s *Session, args []*Node) *Node {
		if len(args) != 1 {
			throwf(name, ErrDimension, "expects 1 argument, got %d", len(args))
		}
		return rule(s, args[0])
	}
}

// negLead reports whether u reads with a leading minus sign.
func negLead(u *Node) bool {
	if u.isSum() && u.Power.IsOne() && u.Mult.IsOne() {
		return sortedChildren(u)[0].Mult.Sign() < 0
	}
	return u.Mult.Sign() < 0
}

// piMultiple returns k when u is k*pi.
func piMultiple(u *Node) (Rational, bool) {
	if u.IsZero() {
		return ratZero, true
	}
	if u.Shape == Monomial && u.Value == "pi" && u.Power.IsOne() {
		return u.Mult, true
	}
	return Rational{}, false
}

// sinPi returns sin(k*pi) for the angles with a closed form.
func sinPi(k Rational) (*Node, bool) {
	k, _ = k.Mod(RatInt(2))
	sign := ratOne
	if k.Cmp(ratOne) >= 0 {
		k, sign = k.Sub(ratOne), ratNegOne
	}
	if k.Cmp(ratHalf) > 0 {
		k = ratOne.Sub(k)
	}
	var v *Node
	switch k.String() {
	case "0":
		v = N(0)
	case "1/6":
		v = F(1, 2)
	case "1/4":
		v = scale(sqrtOf(RatInt(2)), ratHalf)
	case "1/3":
		v = scale(sqrtOf(RatInt(3)), ratHalf)
	case "1/2":
		v = N(1)
	default:
		return nil, false
	}
	return scale(v, sign), true
}

func cosPi(k Rational) (*Node, bool) { return sinPi(k.Add(ratHalf)) }

// inverseOf returns the argument of u when u is a bare call to name.
func inverseOf(u *Node, name string) (*Node, bool) {
	if u.Shape == Function && u.Value == name && u.Mult.IsOne() && u.Power.IsOne() && len(u.Args) == 1 {
		return u.Args[0], true
	}
	return nil, false
}

func sinRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		if v, ok := sinPi(k); ok {
			return v
		}
	}
	if v, ok := inverseOf(u, "asin"); ok {
		return v
	}
	if negLead(u) {
		return negInto(sinRule(s, negInto(u)))
	}
	return newFunc("sin", []*Node{u})
}

func cosRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		if v, ok := cosPi(k); ok {
			return v
		}
	}
	if v, ok := inverseOf(u, "acos"); ok {
		return v
	}
	if negLead(u) {
		return cosRule(s, negInto(u))
	}
	return newFunc("cos", []*Node{u})
}

func tanRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		sv, ok1 := sinPi(k)
		cv, ok2 := cosPi(k)
		if ok1 && ok2 {
			if cv.IsZero() {
				throwf("tan", ErrOutOfFunctionDomain, "tan(%s*pi)", k)
			}
			return divInto(sv, cv)
		}
	}
	if v, ok := inverseOf(u, "atan"); ok {
		return v
	}
	if negLead(u) {
		return negInto(tanRule(s, negInto(u)))
	}
	return newFunc("tan", []*Node{u})
}

// reciprocal handles sec, csc and cot at exact angles.
func reciprocal(name string, k Rational, num, den func(Rational) (*Node, bool)) (*Node, bool) {
	nv, ok1 := num(k)
	dv, ok2 := den(k)
	if !ok1 || !ok2 {
		return nil, false
	}
	if dv.IsZero() {
		throwf(name, ErrOutOfFunctionDomain, "%s(%s*pi)", name, k)
	}
	return divInto(nv, dv), true
}

func one(Rational) (*Node, bool) { return N(1), true }

func secRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		if v, ok := reciprocal("sec", k, one, cosPi); ok {
			return v
		}
	}
	if negLead(u) {
		return secRule(s, negInto(u))
	}
	return newFunc("sec", []*Node{u})
}

func cscRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		if v, ok := reciprocal("csc", k, one, sinPi); ok {
			return v
		}
	}
	if negLead(u) {
		return negInto(cscRule(s, negInto(u)))
	}
	return newFunc("csc", []*Node{u})
}

func cotRule(s *Session, u *Node) *Node {
	if k, ok := piMultiple(u); ok {
		if v, ok := reciprocal("cot", k, cosPi, sinPi); ok {
			return v
		}
	}
	if negLead(u) {
		return negInto(cotRule(s, negInto(u)))
	}
	return newFunc("cot", []*Node{u})
}

// unitInterval rejects constants outside [-1, 1] for asin and acos.
func unitInterval(name string, u *Node) {
	if u.Shape == Constant && u.Mult.Abs().Cmp(ratOne) > 0 {
		throwf(name, ErrOutOfFunctionDomain, "%s(%s)", name, u.Mult)
	}
}

var asinTable = map[string]Rational{"0": ratZero, "1/2": ratFrac(1, 6), "1": ratHalf}

func asinRule(s *Session, u *Node) *Node {
	unitInterval("asin", u)
	if u.Shape == Constant {
		if k, ok := asinTable[u.Mult.Abs().String()]; ok {
			if u.Mult.Sign() < 0 {
				k = k.Neg()
			}
			return scale(S("pi"), k)
		}
	}
	if negLead(u) {
		return negInto(asinRule(s, negInto(u)))
	}
	return newFunc("asin", []*Node{u})
}

var acosTable = map[string]Rational{
	"1": ratZero, "1/2": ratFrac(1, 3), "0": ratHalf, "-1/2": ratFrac(2, 3), "-1": ratOne,
}

func acosRule(s *Session, u *Node) *Node {
	unitInterval("acos", u)
	if u.Shape == Constant {
		if k, ok := acosTable[u.Mult.String()]; ok {
			return scale(S("pi"), k)
		}
	}
	return newFunc("acos", []*Node{u})
}

func atanRule(s *Session, u *Node) *Node {
	if u.Shape == Constant {
		switch u.Mult.String() {
		case "0":
			return N(0)
		case "1":
			return scale(S("pi"), ratFrac(1, 4))
		}
	}
	if negLead(u) {
		return negInto(atanRule(s, negInto(u)))
	}
	return newFunc("atan", []*Node{u})
}

func zeroAt(v int64) func(u *Node) (*Node, bool) {
	return func(u *Node) (*Node, bool) {
		if u.IsZero() {
			return N(v), true
		}
		return nil, false
	}
}

func oddRule(name string, exact func(*Node) (*Node, bool)) func(*Session, *Node) *Node {
	var rule func(*Session, *Node) *Node
	rule = func(s *Session, u *Node) *Node {
		if v, ok := exact(u); ok {
			return v
		}
		if negLead(u) {
			return negInto(rule(s, negInto(u)))
		}
		return newFunc(name, []*Node{u})
	}
	return rule
}

func evenRule(name string, exact func(*Node) (*Node, bool)) func(*Session, *Node) *Node {
	return func(s *Session, u *Node) *Node {
		if v, ok := exact(u); ok {
			return v
		}
		if negLead(u) {
			u = negInto(u)
		}
		return newFunc(name, []*Node{u})
	}
}

func logRule(s *Session, args []*Node) *Node {
	if len(args) == 2 {
		base := logRule(s, args[1:])
		if base.IsZero() {
			throwf("log", ErrOutOfFunctionDomain, "logarithm base 1")
		}
		return divInto(logRule(s, args[:1]), base)
	}
	u := args[0]
	switch {
	case u.Shape == Constant:
		if u.Mult.Sign() <= 0 {
			throwf("log", ErrOutOfFunctionDomain, "log(%s)", u.Mult)
		}
		if u.Mult.IsOne() {
			return N(0)
		}
	case u.Shape == Monomial && u.Value == "e" && u.Mult.IsOne():
		return R(u.Power)
	case u.Shape == Exponential && u.Base.isSymbol("e") && u.Mult.IsOne():
		return u.Exp
	}
	return newFunc("log", []*Node{u})
}

func absRule(s *Session, u *Node) *Node {
	switch {
	case u.Shape == Constant:
		return R(u.Mult.Abs())
	case u.Shape == Exponential && u.Base.isSymbol("e"):
		u.Mult = u.Mult.Abs()
		return u
	case u.Shape == Monomial && u.Power.IsInt() && u.Power.Num().Bit(0) == 0:
		u.Mult = u.Mult.Abs()
		return u
	case !u.Mult.IsOne() && !(u.isSum() && u.Power.IsOne()):
		m := u.Mult.Abs()
		u.Mult = ratOne
		return scale(absRule(s, u), m)
	case negLead(u):
		return absRule(s, negInto(u))
	}
	return newFunc("abs", []*Node{u})
}

func roundRule(name string, round func(Rational) *big.Int) func(*Session, *Node) *Node {
	return func(s *Session, u *Node) *Node {
		if u.Shape == Constant {
			return R(ratBigInt(round(u.Mult)))
		}
		return newFunc(name, []*Node{u})
	}
}

func signRule(s *Session, u *Node) *Node {
	if u.Shape == Constant {
		return N(int64(u.Mult.Sign()))
	}
	return newFunc("sign", []*Node{u})
}

// maxFactorial bounds exact factorials.
const maxFactorial = 1000

func factorialRule(s *Session, u *Node) *Node {
	if u.Shape != Constant || !u.Mult.IsInt() {
		return newFunc("factorial", []*Node{u})
	}
	n, ok := u.Mult.Int64()
	switch {
	case !ok || n > maxFactorial:
		throwf("factorial", ErrOutOfRange, "%s! is too large", u.Mult)
	case n < 0:
		throwf("factorial", ErrUndefined, "factorial of negative integer %d", n)
	}
	return R(ratBigInt(new(big.Int).MulRange(1, n)))
}

func modRule(s *Session, args []*Node) *Node {
	if len(args) != 2 {
		throwf("mod", ErrDimension, "expects 2 arguments, got %d", len(args))
	}
	a, b := args[0], args[1]
	if a.Shape == Constant && b.Shape == Constant {
		r, err := a.Mult.Mod(b.Mult)
		if err != nil {
			throw(err)
		}
		return R(r)
	}
	return newFunc("mod", []*Node{a, b})
}
