package gocas

import (
	"fmt"
	"math"
	"strings"
)

// Func is a compiled expression. Arguments bind to the variables given to
// Compile, in order.
type Func func(args ...float64) (float64, error)

type evalFunc func(env []float64) (float64, error)

// floatFuncs are the float64 counterparts of the elementary functions.
var floatFuncs = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"sec":  func(x float64) float64 { return 1 / math.Cos(x) },
	"csc":  func(x float64) float64 { return 1 / math.Sin(x) },
	"cot":  func(x float64) float64 { return 1 / math.Tan(x) },
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"log": math.Log, "exp": math.Exp, "sqrt": math.Sqrt, "abs": math.Abs,
	"floor": math.Floor, "ceil": math.Ceil,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
	"factorial": func(x float64) float64 { return math.Gamma(x + 1) },
}

// Compile turns n into a float64 function of vars. Every free variable of n
// must appear in vars.
func (s *Session) Compile(n *Node, vars ...string) (Func, error) {
	for _, v := range vars {
		if !validName(v) {
			return nil, &Error{Op: "compile", Token: v, Err: ErrInvalidVariableName}
		}
	}
	fn, err := compileNode(n, vars)
	if err != nil {
		return nil, err
	}
	return func(args ...float64) (float64, error) {
		if len(args) != len(vars) {
			return 0, &Error{Op: "compile", Msg: fmt.Sprintf("expected %d arguments, got %d", len(vars), len(args)), Err: ErrDimension}
		}
		return fn(args)
	}, nil
}

// Float64 evaluates a node without free variables.
func (n *Node) Float64() (float64, bool) {
	fn, err := compileNode(n, nil)
	if err != nil {
		return 0, false
	}
	v, err := fn(nil)
	return v, err == nil
}

func compileNode(n *Node, vars []string) (fn evalFunc, err error) {
	defer recoverTo(&err)
	return compileTree(n, vars), nil
}

func compileTree(n *Node, vars []string) evalFunc {
	var body evalFunc
	switch n.Shape {
	case Constant:
		v := n.Mult.Float64()
		return func([]float64) (float64, error) { return v, nil }
	case Monomial:
		body = compileSymbol(n.Value, vars)
	case Sum, PolyList:
		parts := compileAll(sortedChildren(n), vars)
		body = func(env []float64) (float64, error) {
			acc := 0.0
			for _, p := range parts {
				v, err := p(env)
				if err != nil {
					return 0, err
				}
				acc += v
			}
			return acc, nil
		}
	case Product:
		parts := compileAll(sortedChildren(n), vars)
		body = func(env []float64) (float64, error) {
			acc := 1.0
			for _, p := range parts {
				v, err := p(env)
				if err != nil {
					return 0, err
				}
				acc *= v
			}
			return acc, nil
		}
	case Function:
		body = compileCall(n, vars)
	case Exponential:
		base, exp := compileTree(n.Base, vars), compileTree(n.Exp, vars)
		body = func(env []float64) (float64, error) {
			b, err := base(env)
			if err != nil {
				return 0, err
			}
			e, err := exp(env)
			if err != nil {
				return 0, err
			}
			return floatPow(b, e)
		}
	}
	m, p := n.Mult.Float64(), n.Power.Float64()
	if n.Power.IsOne() && n.Mult.IsOne() {
		return body
	}
	return func(env []float64) (float64, error) {
		v, err := body(env)
		if err != nil {
			return 0, err
		}
		if p != 1 {
			if v, err = floatPow(v, p); err != nil {
				return 0, err
			}
		}
		return m * v, nil
	}
}

func compileAll(ns []*Node, vars []string) []evalFunc {
	out := make([]evalFunc, len(ns))
	for i, c := range ns {
		out[i] = compileTree(c, vars)
	}
	return out
}

func compileSymbol(name string, vars []string) evalFunc {
	for i, v := range vars {
		if v == name {
			return func(env []float64) (float64, error) { return env[i], nil }
		}
	}
	switch name {
	case "pi":
		return func([]float64) (float64, error) { return math.Pi, nil }
	case "e":
		return func([]float64) (float64, error) { return math.E, nil }
	}
	throw(&Error{Op: "compile", Token: name, Msg: "unbound variable", Err: ErrUndefined})
	return nil
}

func compileCall(n *Node, vars []string) evalFunc {
	name := n.Value
	if name == "mod" && len(n.Args) == 2 {
		a, b := compileTree(n.Args[0], vars), compileTree(n.Args[1], vars)
		return func(env []float64) (float64, error) {
			x, err := a(env)
			if err != nil {
				return 0, err
			}
			y, err := b(env)
			if err != nil {
				return 0, err
			}
			if y == 0 {
				return 0, &Error{Op: "mod", Msg: "modulo by zero", Err: ErrDivisionByZero}
			}
			return x - y*math.Floor(x/y), nil
		}
	}
	f, ok := floatFuncs[name]
	if !ok || len(n.Args) != 1 {
		throw(&Error{Op: "compile", Token: name, Msg: "no numeric form for " + name, Err: ErrUndefined})
	}
	arg := compileTree(n.Args[0], vars)
	domain := domainCheck(name)
	return func(env []float64) (float64, error) {
		x, err := arg(env)
		if err != nil {
			return 0, err
		}
		if domain != nil && !domain(x) {
			return 0, &Error{Op: name, Msg: fmt.Sprintf("%s(%g)", name, x), Err: ErrOutOfFunctionDomain}
		}
		v := f(x)
		if math.IsInf(v, 0) && strings.Contains("sec csc cot tan", name) {
			return 0, &Error{Op: name, Msg: fmt.Sprintf("%s(%g)", name, x), Err: ErrDivisionByZero}
		}
		return v, nil
	}
}

func domainCheck(name string) func(float64) bool {
	switch name {
	case "log":
		return func(x float64) bool { return x > 0 }
	case "sqrt":
		return func(x float64) bool { return x >= 0 }
	case "asin", "acos":
		return func(x float64) bool { return x >= -1 && x <= 1 }
	}
	return nil
}

func floatPow(b, e float64) (float64, error) {
	if b == 0 && e < 0 {
		return 0, &Error{Op: "pow", Msg: fmt.Sprintf("0^%g", e), Err: ErrDivisionByZero}
	}
	v := math.Pow(b, e)
	if math.IsNaN(v) {
		return 0, &Error{Op: "pow", Msg: fmt.Sprintf("%g^%g", b, e), Err: ErrOutOfFunctionDomain}
	}
	return v, nil
}
