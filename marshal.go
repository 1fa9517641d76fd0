package gocas

import (
	"encoding/json"
	"fmt"
)

// nodeJSON is the wire form of a Node. Children are listed in rendering
// order.
type nodeJSON struct {
	Type     string      `json:"type"`
	Value    string      `json:"value,omitempty"`
	Mult     string      `json:"mult"`
	Power    string      `json:"power,omitempty"`
	Args     []*nodeJSON `json:"args,omitempty"`
	Base     *nodeJSON   `json:"base,omitempty"`
	Exp      *nodeJSON   `json:"exp,omitempty"`
	Children []*nodeJSON `json:"children,omitempty"`
	String   string      `json:"string,omitempty"`
}

func toNodeJSON(n *Node, top bool) *nodeJSON {
	j := &nodeJSON{Type: n.Shape.String(), Value: n.Value, Mult: n.Mult.String()}
	if !n.Power.IsOne() {
		j.Power = n.Power.String()
	}
	if top {
		j.String = n.String()
	}
	for _, a := range n.Args {
		j.Args = append(j.Args, toNodeJSON(a, false))
	}
	if n.Base != nil {
		j.Base = toNodeJSON(n.Base, false)
		j.Exp = toNodeJSON(n.Exp, false)
	}
	if n.Children != nil {
		for _, c := range sortedChildren(n) {
			j.Children = append(j.Children, toNodeJSON(c, false))
		}
	}
	return j
}

// MarshalJSON encodes n as a tree of shapes. The top level also carries
// the canonical string form.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toNodeJSON(n, true))
}

// UnmarshalJSON decodes a tree written by MarshalJSON. The tree is rebuilt
// through the arithmetic kernel, so the result is canonical even when the
// input was not.
func (n *Node) UnmarshalJSON(data []byte) (err error) {
	var j nodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return &Error{Op: "json", Msg: err.Error(), Err: ErrParse}
	}
	defer recoverTo(&err)
	*n = *fromNodeJSON(&j)
	return nil
}

func fromNodeJSON(j *nodeJSON) *Node {
	if j == nil {
		throwf("json", ErrParse, "missing node")
	}
	mult, power := jsonRat(j.Mult, "1"), jsonRat(j.Power, "1")
	var body *Node
	switch j.Type {
	case "constant":
		return R(mult)
	case "monomial":
		if !validName(j.Value) {
			throw(&Error{Op: "json", Token: j.Value, Err: ErrInvalidVariableName})
		}
		body = S(j.Value)
	case "function":
		if !validName(j.Value) {
			throw(&Error{Op: "json", Token: j.Value, Err: ErrInvalidVariableName})
		}
		args := make([]*Node, len(j.Args))
		for i, a := range j.Args {
			args[i] = fromNodeJSON(a)
		}
		body = newFunc(j.Value, args)
	case "sum", "polylist":
		body = N(0)
		for _, c := range j.Children {
			body = addInto(body, fromNodeJSON(c))
		}
	case "product":
		body = N(1)
		for _, c := range j.Children {
			body = mulInto(body, fromNodeJSON(c))
		}
	case "exponential":
		body = powInto(fromNodeJSON(j.Base), fromNodeJSON(j.Exp))
	default:
		throwf("json", ErrParse, "unknown node type %q", j.Type)
	}
	return scale(powRat(body, power), mult)
}

func jsonRat(s, def string) Rational {
	if s == "" {
		s = def
	}
	r, err := ParseRational(s)
	if err != nil {
		throw(&Error{Op: "json", Msg: fmt.Sprintf("bad number %q", s), Err: ErrParse})
	}
	return r
}
