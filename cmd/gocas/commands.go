package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/njchilds90/gocas/internal/tool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// argSpec maps positional arguments onto tool parameters. Names after
// the first optional one may be omitted.
type argSpec struct {
	tool     string
	use      string
	short    string
	params   []string
	required int
}

var toolArgs = []argSpec{
	{"eval", "eval <expr>", "Parse and canonicalize an expression", []string{"expr"}, 1},
	{"simplify", "simplify <expr>", "Simplify an expression", []string{"expr"}, 1},
	{"expand", "expand <expr>", "Multiply out products and powers", []string{"expr"}, 1},
	{"factor", "factor <expr>", "Factor a univariate polynomial", []string{"expr"}, 1},
	{"diff", "diff <expr> <var> [n]", "Differentiate n times (default 1)", []string{"expr", "var", "n"}, 2},
	{"integrate", "integrate <expr> <var>", "Find an antiderivative", []string{"expr", "var"}, 2},
	{"defint", "defint <expr> <var> <a> <b>", "Integrate over [a, b]", []string{"expr", "var", "a", "b"}, 4},
	{"solve", "solve <equation> <var>", "Find real solutions of expr = 0 or lhs = rhs", []string{"expr", "var"}, 2},
	{"laplace", "laplace <expr> [t] [s]", "Laplace transform", []string{"expr", "t", "s"}, 1},
	{"ilt", "ilt <expr> [s] [t]", "Inverse Laplace transform", []string{"expr", "s", "t"}, 1},
	{"taylor", "taylor <expr> <var> [around] [order]", "Taylor polynomial", []string{"expr", "var", "around", "order"}, 2},
	{"apart", "apart <expr> <var>", "Partial fraction decomposition", []string{"expr", "var"}, 2},
}

// integerParams are passed to the tool as numbers rather than source text.
var integerParams = map[string]bool{"n": true, "order": true}

func toolCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(toolArgs))
	for _, spec := range toolArgs {
		spec := spec
		cmds = append(cmds, &cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			Args:  cobra.RangeArgs(spec.required, len(spec.params)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTool(cmd, spec, args)
			},
		})
	}
	return cmds
}

func runTool(cmd *cobra.Command, spec argSpec, args []string) error {
	params := make(map[string]any, len(args))
	for i, a := range args {
		name := spec.params[i]
		if integerParams[name] {
			n, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", name, err)
			}
			params[name] = float64(n)
			continue
		}
		params[name] = a
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	logger.Debug("running tool", zap.String("tool", spec.tool), zap.Strings("args", args))
	res := tool.Handle(s, tool.Request{Tool: spec.tool, Params: params})
	if res.Error != "" {
		return errors.New(res.Error)
	}
	out := res.String
	if list, ok := res.Result.([]string); ok {
		out = strings.Join(list, "\n")
		if len(list) == 0 {
			out = "no solution"
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
