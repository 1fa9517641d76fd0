package tool

import (
	"encoding/json"
	"sort"

	"github.com/njchilds90/gocas"
)

type handler struct {
	description string
	required    []string
	props       map[string]string
	run         func(params) (Response, error)
}

var handlers map[string]handler

func init() {
	expr := map[string]string{"expr": "string"}
	exprVar := map[string]string{"expr": "string", "var": "string"}
	handlers = map[string]handler{
		"eval": {
			"Parse and canonicalize an expression. Optional bindings maps names to expressions",
			[]string{"expr"}, map[string]string{"expr": "string", "bindings": "object"},
			func(p params) (Response, error) {
				src, err := p.str("expr")
				if err != nil {
					return Response{}, err
				}
				bindings, err := p.exprMap("bindings")
				if err != nil {
					return Response{}, err
				}
				n, err := p.s.Evaluate(src, bindings)
				if err != nil {
					return Response{}, err
				}
				return respond(p.s, n), nil
			},
		},
		"simplify":     {"Simplify to a fixed point, including sin^2+cos^2=1", []string{"expr"}, expr, unary((*gocas.Session).Simplify)},
		"expand":       {"Multiply out products and integer powers", []string{"expr"}, expr, unary((*gocas.Session).Expand)},
		"factor":       {"Factor a univariate polynomial over the rationals", []string{"expr"}, expr, unary((*gocas.Session).Factor)},
		"canonicalize": {"Rebuild an expression in canonical form", []string{"expr"}, expr, unary((*gocas.Session).Canonicalize)},
		"integrate":    {"Antiderivative; unsolved parts stay as integrate(f,x)", []string{"expr", "var"}, exprVar, withVar((*gocas.Session).Integrate)},
		"apart":        {"Partial fraction decomposition", []string{"expr", "var"}, exprVar, withVar((*gocas.Session).Apart)},
		"diff": {
			"Derivative d^n/dvar^n. Optional n defaults to 1",
			[]string{"expr", "var"}, map[string]string{"expr": "string", "var": "string", "n": "integer"},
			func(p params) (Response, error) {
				k, err := p.intOr("n", 1)
				if err != nil {
					return Response{}, err
				}
				return withVar(func(s *gocas.Session, n *gocas.Node, x string) (*gocas.Node, error) {
					return s.DiffN(n, x, k)
				})(p)
			},
		},
		"defint": {
			"Definite integral over [a, b], numeric when no antiderivative exists",
			[]string{"expr", "var", "a", "b"}, map[string]string{"expr": "string", "var": "string", "a": "string", "b": "string"},
			func(p params) (Response, error) {
				a, err := p.expr("a")
				if err != nil {
					return Response{}, err
				}
				b, err := p.expr("b")
				if err != nil {
					return Response{}, err
				}
				return withVar(func(s *gocas.Session, n *gocas.Node, x string) (*gocas.Node, error) {
					return s.DefiniteIntegral(n, x, a, b)
				})(p)
			},
		},
		"laplace": {
			"Laplace transform from t to s",
			[]string{"expr"}, map[string]string{"expr": "string", "t": "string", "s": "string"},
			func(p params) (Response, error) {
				n, err := p.expr("expr")
				if err != nil {
					return Response{}, err
				}
				t, err := p.strOr("t", "t")
				if err != nil {
					return Response{}, err
				}
				sv, err := p.strOr("s", "s")
				if err != nil {
					return Response{}, err
				}
				res, err := p.s.Laplace(n, t, sv)
				if err != nil {
					return Response{}, err
				}
				return respond(p.s, res), nil
			},
		},
		"ilt": {
			"Inverse Laplace transform from s to t",
			[]string{"expr"}, map[string]string{"expr": "string", "s": "string", "t": "string"},
			func(p params) (Response, error) {
				n, err := p.expr("expr")
				if err != nil {
					return Response{}, err
				}
				sv, err := p.strOr("s", "s")
				if err != nil {
					return Response{}, err
				}
				t, err := p.strOr("t", "t")
				if err != nil {
					return Response{}, err
				}
				res, err := p.s.InverseLaplace(n, sv, t)
				if err != nil {
					return Response{}, err
				}
				return respond(p.s, res), nil
			},
		},
		"taylor": {
			"Taylor polynomial about around (default 0) up to order (default 5)",
			[]string{"expr", "var"}, map[string]string{"expr": "string", "var": "string", "around": "string", "order": "integer"},
			func(p params) (Response, error) {
				a, err := p.exprOr("around", gocas.N(0))
				if err != nil {
					return Response{}, err
				}
				order, err := p.intOr("order", 5)
				if err != nil {
					return Response{}, err
				}
				return withVar(func(s *gocas.Session, n *gocas.Node, x string) (*gocas.Node, error) {
					return s.Taylor(n, x, a, order)
				})(p)
			},
		},
		"substitute": {
			"Replace var by value",
			[]string{"expr", "var", "value"}, map[string]string{"expr": "string", "var": "string", "value": "string"},
			func(p params) (Response, error) {
				v, err := p.expr("value")
				if err != nil {
					return Response{}, err
				}
				return withVar(func(s *gocas.Session, n *gocas.Node, x string) (*gocas.Node, error) {
					return s.Substitute(n, x, v)
				})(p)
			},
		},
		"solve": {
			"Real solutions of expr = 0, or of an equation lhs = rhs",
			[]string{"expr", "var"}, exprVar,
			func(p params) (Response, error) {
				src, err := p.str("expr")
				if err != nil {
					return Response{}, err
				}
				x, err := p.str("var")
				if err != nil {
					return Response{}, err
				}
				roots, err := p.s.SolveEquation(src, x)
				if err != nil {
					return Response{}, err
				}
				return respondList(p.s, roots), nil
			},
		},
		"numeric": {
			"Evaluate expr as a float64. values maps every free variable to a number",
			[]string{"expr"}, map[string]string{"expr": "string", "values": "object"},
			func(p params) (Response, error) {
				n, err := p.expr("expr")
				if err != nil {
					return Response{}, err
				}
				values, _ := p.raw["values"].(map[string]any)
				vars := n.Variables()
				args := make([]float64, len(vars))
				for i, v := range vars {
					f, ok := values[v].(float64)
					if !ok {
						return Response{}, &gocas.Error{Op: "numeric", Token: v, Msg: "no value given", Err: gocas.ErrUndefined}
					}
					args[i] = f
				}
				fn, err := p.s.Compile(n, vars...)
				if err != nil {
					return Response{}, err
				}
				v, err := fn(args...)
				if err != nil {
					return Response{}, err
				}
				return Response{Result: v, String: p.s.Format(n)}, nil
			},
		},
		"free_symbols": {
			"Sorted free variable names",
			[]string{"expr"}, expr,
			func(p params) (Response, error) {
				n, err := p.expr("expr")
				if err != nil {
					return Response{}, err
				}
				vars := n.Variables()
				return Response{Result: vars, String: p.s.Format(n)}, nil
			},
		},
		"schema": {
			"Return this tool schema", nil, nil,
			func(p params) (Response, error) {
				return Response{Result: json.RawMessage(Spec())}, nil
			},
		},
	}
}

// Spec returns the JSON schema of every tool, in the shape MCP clients
// expect.
func Spec() []byte {
	names := Names()
	tools := make([]map[string]any, 0, len(names))
	for _, name := range names {
		h := handlers[name]
		properties := map[string]any{}
		keys := make([]string, 0, len(h.props))
		for k := range h.props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			properties[k] = map[string]any{"type": h.props[k]}
		}
		required := h.required
		if required == nil {
			required = []string{}
		}
		tools = append(tools, map[string]any{
			"name":        name,
			"description": h.description,
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		})
	}
	b, _ := json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
	return b
}
