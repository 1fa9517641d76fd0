package tool_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, name string, params map[string]any) tool.Response {
	t.Helper()
	return tool.Handle(gocas.NewSession(), tool.Request{Tool: name, Params: params})
}

func TestHandle(t *testing.T) {
	tests := []struct {
		tool   string
		params map[string]any
		want   string
	}{
		{"eval", map[string]any{"expr": "2*x+3*x"}, "5*x"},
		{"eval", map[string]any{"expr": "x*y", "bindings": map[string]any{"y": "x+1"}}, "x*(x+1)"},
		{"diff", map[string]any{"expr": "x^3", "var": "x"}, "3*x^2"},
		{"diff", map[string]any{"expr": "x^3", "var": "x", "n": float64(2)}, "6*x"},
		{"integrate", map[string]any{"expr": "2*x", "var": "x"}, "x^2"},
		{"defint", map[string]any{"expr": "x", "var": "x", "a": float64(0), "b": "2"}, "2"},
		{"laplace", map[string]any{"expr": "t^2"}, "2/s^3"},
		{"expand", map[string]any{"expr": "(x+1)^2"}, "x^2+2*x+1"},
		{"substitute", map[string]any{"expr": "x^2", "var": "x", "value": "3"}, "9"},
	}
	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			res := call(t, tc.tool, tc.params)
			require.Empty(t, res.Error)
			assert.Equal(t, tc.want, res.String)
		})
	}
}

func TestHandleSolve(t *testing.T) {
	res := call(t, "solve", map[string]any{"expr": "x^2 = 4", "var": "x"})
	require.Empty(t, res.Error)
	if diff := cmp.Diff([]string{"-2", "2"}, res.Result); diff != "" {
		t.Errorf("solve mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleNumeric(t *testing.T) {
	res := call(t, "numeric", map[string]any{"expr": "x^2+y", "values": map[string]any{"x": 3.0, "y": 0.5}})
	require.Empty(t, res.Error)
	assert.InDelta(t, 9.5, res.Result, 1e-12)

	res = call(t, "numeric", map[string]any{"expr": "x+1"})
	assert.Equal(t, "undefined", res.Kind)
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name   string
		tool   string
		params map[string]any
		kind   string
	}{
		{"unknown tool", "nope", nil, "invalid"},
		{"missing param", "diff", map[string]any{"expr": "x"}, "invalid"},
		{"parity", "eval", map[string]any{"expr": "(x+1"}, "parity"},
		{"division by zero", "substitute", map[string]any{"expr": "1/x", "var": "x", "value": "0"}, "division_by_zero"},
		{"bad variable", "diff", map[string]any{"expr": "x", "var": "2x"}, "invalid_variable_name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := call(t, tc.tool, tc.params)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, tc.kind, res.Kind)
		})
	}
}

func TestHandleTreeInput(t *testing.T) {
	s := gocas.NewSession()
	n := s.MustParse("x^2+1")
	b, err := json.Marshal(n)
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal(b, &tree))

	res := tool.Handle(s, tool.Request{Tool: "diff", Params: map[string]any{"expr": tree, "var": "x"}})
	require.Empty(t, res.Error)
	assert.Equal(t, "2*x", res.String)
}

func TestSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(tool.Spec(), &spec))
	var names []string
	for _, tl := range spec.Tools {
		names = append(names, tl.Name)
	}
	if diff := cmp.Diff(tool.Names(), names); diff != "" {
		t.Errorf("schema tools mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, names, "solve")
}
