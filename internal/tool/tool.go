// Package tool dispatches JSON tool calls to a gocas session. It backs both
// the HTTP server and the CLI.
package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/njchilds90/gocas"
)

// Request is one tool invocation.
type Request struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// Response carries either a result or an error. Result holds the JSON tree
// of a single expression, a list of canonical strings or a plain value.
type Response struct {
	Result any    `json:"result,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// errorKinds names the engine error kinds in responses.
var errorKinds = []struct {
	err  error
	name string
}{
	{gocas.ErrParity, "parity"},
	{gocas.ErrOperator, "operator"},
	{gocas.ErrUnexpectedToken, "unexpected_token"},
	{gocas.ErrParse, "parse"},
	{gocas.ErrDivisionByZero, "division_by_zero"},
	{gocas.ErrUndefined, "undefined"},
	{gocas.ErrOutOfFunctionDomain, "out_of_function_domain"},
	{gocas.ErrMaximumIterations, "maximum_iterations"},
	{gocas.ErrTimeout, "timeout"},
	{gocas.ErrInvalidVariableName, "invalid_variable_name"},
	{gocas.ErrDimension, "dimension"},
	{gocas.ErrOutOfRange, "out_of_range"},
}

// Kind returns the name of the engine error kind err wraps, or "invalid"
// for malformed requests.
func Kind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "invalid"
}

func fail(err error) Response { return Response{Error: err.Error(), Kind: Kind(err)} }

type params struct {
	s   *gocas.Session
	raw map[string]any
}

func (p params) has(key string) bool {
	_, ok := p.raw[key]
	return ok
}

func (p params) str(key string) (string, error) {
	v, ok := p.raw[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p params) strOr(key, def string) (string, error) {
	if !p.has(key) {
		return def, nil
	}
	return p.str(key)
}

// expr reads an expression given as source text, a number or a JSON tree.
func (p params) expr(key string) (*gocas.Node, error) {
	v, ok := p.raw[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	switch v := v.(type) {
	case string:
		return p.s.Parse(v)
	case float64:
		return p.s.Parse(strconv.FormatFloat(v, 'g', -1, 64))
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		n := new(gocas.Node)
		if err := n.UnmarshalJSON(b); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("param %s must be an expression string or tree", key)
}

func (p params) exprOr(key string, def *gocas.Node) (*gocas.Node, error) {
	if !p.has(key) {
		return def, nil
	}
	return p.expr(key)
}

func (p params) intOr(key string, def int) (int, error) {
	v, ok := p.raw[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) || f < 0 {
		return 0, fmt.Errorf("param %s must be a non-negative integer", key)
	}
	return int(f), nil
}

func (p params) exprMap(key string) (map[string]*gocas.Node, error) {
	v, ok := p.raw[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %s must be an object", key)
	}
	out := make(map[string]*gocas.Node, len(m))
	for name := range m {
		n, err := params{s: p.s, raw: m}.expr(name)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", key, name, err)
		}
		out[name] = n
	}
	return out, nil
}

// Handle runs req against s. Engine failures come back in Response.Error;
// Handle itself never fails.
func Handle(s *gocas.Session, req Request) Response {
	p := params{s: s, raw: req.Params}
	if p.raw == nil {
		p.raw = map[string]any{}
	}
	h, ok := handlers[req.Tool]
	if !ok {
		return Response{Error: "unknown tool: " + req.Tool, Kind: "invalid"}
	}
	res, err := h.run(p)
	if err != nil {
		return fail(err)
	}
	return res
}

func respond(s *gocas.Session, n *gocas.Node) Response {
	return Response{Result: n, String: s.Format(n)}
}

func respondList(s *gocas.Session, ns []*gocas.Node) Response {
	strs := make([]string, len(ns))
	for i, n := range ns {
		strs[i] = s.Format(n)
	}
	return Response{Result: strs, String: fmt.Sprint(strs)}
}

// unary wraps a transform of one expression.
func unary(fn func(s *gocas.Session, n *gocas.Node) (*gocas.Node, error)) func(params) (Response, error) {
	return func(p params) (Response, error) {
		n, err := p.expr("expr")
		if err != nil {
			return Response{}, err
		}
		res, err := fn(p.s, n)
		if err != nil {
			return Response{}, err
		}
		return respond(p.s, res), nil
	}
}

// withVar wraps a transform of one expression in one variable.
func withVar(fn func(s *gocas.Session, n *gocas.Node, x string) (*gocas.Node, error)) func(params) (Response, error) {
	return func(p params) (Response, error) {
		n, err := p.expr("expr")
		if err != nil {
			return Response{}, err
		}
		x, err := p.str("var")
		if err != nil {
			return Response{}, err
		}
		res, err := fn(p.s, n, x)
		if err != nil {
			return Response{}, err
		}
		return respond(p.s, res), nil
	}
}

// Names returns the tool names in sorted order.
func Names() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
