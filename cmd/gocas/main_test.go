package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "2*x+3*x"}, "5*x\n"},
		{[]string{"diff", "x^3", "x"}, "3*x^2\n"},
		{[]string{"diff", "x^3", "x", "3"}, "6\n"},
		{[]string{"solve", "x^2-4", "x"}, "-2\n2\n"},
		{[]string{"laplace", "t^2"}, "2/s^3\n"},
		{[]string{"eval", "1/3+1/6"}, "1/2\n"},
		{[]string{"--decimal", "eval", "1/4"}, "0.25\n"},
	}
	for _, tc := range tests {
		t.Run(tc.args[0], func(t *testing.T) {
			decimal = false
			out, err := execute(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	decimal = false
	_, err := execute(t, "eval", "(x+1")
	assert.Error(t, err)

	_, err = execute(t, "diff", "x^2", "x", "two")
	assert.Error(t, err)
}
