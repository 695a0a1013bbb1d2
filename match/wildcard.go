package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// WildcardMatcher decides compliance against a wildcard base: the
// candidate must satisfy every upper bound from below and every lower
// bound from above. Bound checks are inherently lenient, a wildcard
// position is where the type system allows subtype flexibility.
type WildcardMatcher struct {
	*Engine
	delegate ComplianceMatcher
}

func NewWildcardMatcher(delegate ComplianceMatcher) *WildcardMatcher {
	m := &WildcardMatcher{delegate: delegate}
	m.Engine = NewEngine(EngineConfig{
		Name: "wildcard",
		VisitorFor: func(ctx *Context) resolve.TypeVisitor {
			return &wildcardVisitor{m: m, ctx: ctx}
		},
	})
	return m
}

type wildcardVisitor struct {
	resolve.TypeVisitorAdapter
	m   *WildcardMatcher
	ctx *Context
}

func (v *wildcardVisitor) base() (*typespec.WildcardSpec, error) {
	base, ok := v.ctx.BaseType().(*typespec.WildcardSpec)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "wildcard matcher got base %v", v.ctx.BaseType())
	}
	return base, nil
}

func (v *wildcardVisitor) VisitClass(cand *typespec.ClassSpec) error {
	return v.checkBounds(cand)
}

func (v *wildcardVisitor) VisitParameterizedType(cand *typespec.ParameterizedSpec) error {
	return v.checkBounds(cand)
}

func (v *wildcardVisitor) VisitGenericArrayType(cand *typespec.ArraySpec) error {
	return v.checkBounds(cand)
}

func (v *wildcardVisitor) VisitTypeVariable(cand *typespec.VariableSpec) error {
	return v.checkBounds(cand)
}

// checkBounds runs the shared rule for a concrete candidate: below every
// upper bound, above every lower bound. An unbounded wildcard constrains
// nothing and accepts everything.
func (v *wildcardVisitor) checkBounds(cand typespec.TypeSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if v.ctx.Strict() {
		// a concrete type is never identical to a wildcard
		return nil
	}
	for _, upper := range base.UpperBounds() {
		matched, err := v.m.delegate.MatchIn(v.ctx, upper, cand, false)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
	}
	for _, lower := range base.LowerBounds() {
		// the candidate must sit above the lower bound, so the roles swap
		matched, err := v.m.delegate.MatchIn(v.ctx, cand, lower, false)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
	}
	v.ctx.SetMatched(true)
	return nil
}

// A wildcard candidate is compared bound set against bound set: each base
// upper must admit one of the candidate's uppers, each base lower must sit
// below one of the candidate's lowers.
func (v *wildcardVisitor) VisitWildcardType(cand *typespec.WildcardSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if v.ctx.Strict() {
		v.ctx.SetMatched(typespec.Equal(base, cand))
		return nil
	}
	for _, upper := range base.UpperBounds() {
		ok, err := v.anyMatches(upper, cand.UpperBounds(), false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	for _, lower := range base.LowerBounds() {
		ok, err := v.anyMatches(lower, cand.LowerBounds(), true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	v.ctx.SetMatched(true)
	return nil
}

// anyMatches reports whether some element of specs satisfies bound. For
// upper bounds the element must comply with the bound; for lower bounds
// the bound must comply with the element (reversed = true).
func (v *wildcardVisitor) anyMatches(bound typespec.TypeSpec, specs []typespec.TypeSpec, reversed bool) (bool, error) {
	for _, s := range specs {
		base, cand := bound, s
		if reversed {
			base, cand = s, bound
		}
		matched, err := v.m.delegate.MatchIn(v.ctx, base, cand, false)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
