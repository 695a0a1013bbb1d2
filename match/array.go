package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// ArrayMatcher decides compliance against an array base. Arrays are
// covariant under lenient matching (Number[] accepts Integer[]), unlike
// generic-argument positions; a strict check still requires identical
// components.
type ArrayMatcher struct {
	*Engine
	delegate ComplianceMatcher
}

func NewArrayMatcher(delegate ComplianceMatcher) *ArrayMatcher {
	m := &ArrayMatcher{delegate: delegate}
	m.Engine = NewEngine(EngineConfig{
		Name: "array",
		VisitorFor: func(ctx *Context) resolve.TypeVisitor {
			return &arrayVisitor{m: m, ctx: ctx}
		},
	})
	return m
}

type arrayVisitor struct {
	resolve.TypeVisitorAdapter
	m   *ArrayMatcher
	ctx *Context
}

func (v *arrayVisitor) base() (*typespec.ArraySpec, error) {
	base, ok := v.ctx.BaseType().(*typespec.ArraySpec)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "array matcher got base %v", v.ctx.BaseType())
	}
	return base, nil
}

func (v *arrayVisitor) VisitGenericArrayType(cand *typespec.ArraySpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	// covariance: the current strictness passes straight through to the
	// component comparison
	matched, err := v.m.delegate.MatchIn(v.ctx, base.Component(), cand.Component(), v.ctx.Strict())
	if err != nil {
		return err
	}
	v.ctx.SetMatched(matched)
	return nil
}

func (v *arrayVisitor) VisitWildcardType(cand *typespec.WildcardSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.anyBoundMatches(cand.UpperBounds())
}

func (v *arrayVisitor) VisitTypeVariable(cand *typespec.VariableSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.anyBoundMatches(cand.Bounds())
}

func (v *arrayVisitor) anyBoundMatches(bounds []typespec.TypeSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	for _, bound := range bounds {
		matched, err := v.m.delegate.MatchIn(v.ctx, base, bound, false)
		if err != nil {
			return err
		}
		if matched {
			v.ctx.SetMatched(true)
			return nil
		}
	}
	return nil
}
