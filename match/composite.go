package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// CompositeMatcher is the general entry point: it classifies the BASE type
// through the dispatcher and hands the comparison to the per-variant
// matcher for that kind. Every per-variant matcher recurses back through
// the composite for nested comparisons, so one composite instance covers
// arbitrarily nested generic shapes.
type CompositeMatcher struct {
	class         *ClassMatcher
	parameterized *ParameterizedMatcher
	wildcard      *WildcardMatcher
	array         *ArrayMatcher
	variable      *VariableMatcher
	dispatcher    resolve.TypeDispatcher
}

var _ ComplianceMatcher = (*CompositeMatcher)(nil)

func NewCompositeMatcher() *CompositeMatcher {
	c := &CompositeMatcher{}
	c.class = NewClassMatcher()
	c.parameterized = NewParameterizedMatcher(c)
	c.wildcard = NewWildcardMatcher(c)
	c.array = NewArrayMatcher(c)
	c.variable = NewVariableMatcher(c)
	return c
}

func (c *CompositeMatcher) Match(base, candidate typespec.TypeSpec) (bool, error) {
	return c.MatchIn(NewContext(), base, candidate, false)
}

func (c *CompositeMatcher) MatchIn(ctx *Context, base, candidate typespec.TypeSpec, strict bool) (bool, error) {
	if base == nil || candidate == nil {
		return false, errors.Wrap(ErrInvalidArgument, "composite matcher requires non-nil base and candidate")
	}
	selector := &matcherSelector{c: c}
	if err := c.dispatcher.Dispatch(base, selector); err != nil {
		return false, err
	}
	if selector.selected == nil {
		// unknown base representation, fail closed
		return false, nil
	}
	return selector.selected.MatchIn(ctx, base, candidate, strict)
}

// SetTypeArgumentResolver fans the resolver out to every per-variant
// matcher so one comparison chain resolves consistently.
func (c *CompositeMatcher) SetTypeArgumentResolver(resolver resolve.TypeArgumentResolver) {
	for _, m := range c.all() {
		m.SetTypeArgumentResolver(resolver)
	}
}

func (c *CompositeMatcher) TypeArgumentResolver() resolve.TypeArgumentResolver {
	return c.parameterized.TypeArgumentResolver()
}

func (c *CompositeMatcher) all() []ComplianceMatcher {
	return []ComplianceMatcher{c.class, c.parameterized, c.wildcard, c.array, c.variable}
}

// matcherSelector picks the per-variant matcher for a base type; this is
// the second half of the double dispatch, run on the base rather than the
// candidate.
type matcherSelector struct {
	resolve.TypeVisitorAdapter
	c        *CompositeMatcher
	selected ComplianceMatcher
}

func (s *matcherSelector) VisitClass(*typespec.ClassSpec) error {
	s.selected = s.c.class
	return nil
}

func (s *matcherSelector) VisitParameterizedType(*typespec.ParameterizedSpec) error {
	s.selected = s.c.parameterized
	return nil
}

func (s *matcherSelector) VisitWildcardType(*typespec.WildcardSpec) error {
	s.selected = s.c.wildcard
	return nil
}

func (s *matcherSelector) VisitGenericArrayType(*typespec.ArraySpec) error {
	s.selected = s.c.array
	return nil
}

func (s *matcherSelector) VisitTypeVariable(*typespec.VariableSpec) error {
	s.selected = s.c.variable
	return nil
}

// Default is a shared composite with the default resolver; package users
// that do not need a custom resolver can call match.Match directly.
var Default = NewCompositeMatcher()

// Match reports whether candidate may be used where base is expected,
// using the shared Default matcher and lenient top-level semantics.
func Match(base, candidate typespec.TypeSpec) (bool, error) {
	return Default.Match(base, candidate)
}
