package gocas

import (
	"time"

	"go.uber.org/zap"
)

// guard enforces Settings.Timeout. The outermost public call arms it and
// nested calls share that deadline, so a transform that recurses through
// other transforms is bounded once.
type guard struct {
	depth    int
	op       string
	deadline time.Time
	now      func() time.Time
}

// arm starts the clock for op unless a deadline is already running and
// returns the matching release. Use it as
//
//	defer s.arm("integrate")()
func (s *Session) arm(op string) func() {
	g := &s.guard
	if g.depth == 0 {
		g.op = op
		g.deadline = time.Time{}
		if s.settings.Timeout > 0 {
			g.deadline = g.now().Add(s.settings.Timeout)
		}
	}
	g.depth++
	return func() {
		g.depth--
		if g.depth == 0 {
			g.deadline = time.Time{}
			g.op = ""
		}
	}
}

// check throws a timeout error once the armed deadline has passed. Every
// loop or recursion that can run long calls it.
func (s *Session) check() {
	g := &s.guard
	if g.depth == 0 || g.deadline.IsZero() {
		return
	}
	if g.now().After(g.deadline) {
		s.log.Warn("deadline exceeded",
			zap.String("op", g.op),
			zap.Duration("timeout", s.settings.Timeout))
		throw(&Error{Op: g.op, Msg: "exceeded " + s.settings.Timeout.String(), Err: ErrTimeout})
	}
}
