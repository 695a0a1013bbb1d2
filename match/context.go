package match

import (
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/denis-zhdanov/jenome/util"
)

// frame is one (base type, strict flag) pair pushed around a single match
// invocation. The verdict cell lives here so that it is per-call by
// construction: nested invocations each decide into their own frame.
type frame struct {
	base    typespec.TypeSpec
	strict  bool
	matched bool
	decided bool
}

// Context carries the reentrant state of one chain of match calls. The
// bottom of the stack is a sentinel frame that is never popped; its
// presence is how the engine tells "no match in progress" (depth 1) from
// "a match, possibly nested, in progress" (depth above 1).
//
// A Context must not be shared between goroutines. Engine.Match creates a
// fresh one per top-level call, so a single matcher instance stays safe
// under concurrent use; callers that drive nested comparisons themselves
// pass one Context through Engine.MatchIn instead.
type Context struct {
	frames util.Stack[*frame]
}

func NewContext() *Context {
	c := &Context{}
	c.frames.Push(&frame{})
	return c
}

// Depth is the current stack size, sentinel included. 1 means idle.
func (c *Context) Depth() int {
	return c.frames.Len()
}

// Active reports whether a match call is currently on the stack.
func (c *Context) Active() bool {
	return c.frames.Len() > 1
}

// BaseType is the base type of the innermost active match call, or nil
// when called outside any active match.
func (c *Context) BaseType() typespec.TypeSpec {
	top, _ := c.frames.Peek()
	return top.base
}

// Strict is the strict flag of the innermost active match call. The
// sentinel frame carries strict=false, so outside any match this reads
// false.
func (c *Context) Strict() bool {
	top, _ := c.frames.Peek()
	return top.strict
}

// SetMatched records the verdict of the innermost active match call.
// Visitors call this during dispatch; a call that never does is read back
// as a non-match.
func (c *Context) SetMatched(matched bool) {
	if !c.Active() {
		panic("match: SetMatched called outside of an active match")
	}
	top, _ := c.frames.Peek()
	top.matched = matched
	top.decided = true
}

func (c *Context) push(base typespec.TypeSpec, strict bool) {
	c.frames.Push(&frame{base: base, strict: strict})
}

// pop removes the innermost frame and returns its verdict, false when the
// frame was never decided. Popping the sentinel would corrupt outermost
// call detection for every later call on this context, so it panics
// instead.
func (c *Context) pop() bool {
	if !c.Active() {
		panic("match: imbalanced pop would remove the sentinel frame")
	}
	top, _ := c.frames.Pop()
	return top.decided && top.matched
}
