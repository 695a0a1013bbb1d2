package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// ParameterizedMatcher decides compliance against a generic type applied
// to arguments, e.g. List[Number]. Argument positions are invariant:
// nested comparisons re-enter the delegate with strict=true, except where
// the base argument is a wildcard, which carries its own variance and is
// re-entered leniently.
type ParameterizedMatcher struct {
	*Engine
	delegate ComplianceMatcher
}

func NewParameterizedMatcher(delegate ComplianceMatcher) *ParameterizedMatcher {
	m := &ParameterizedMatcher{delegate: delegate}
	m.Engine = NewEngine(EngineConfig{
		Name: "parameterized",
		VisitorFor: func(ctx *Context) resolve.TypeVisitor {
			return &parameterizedVisitor{m: m, ctx: ctx}
		},
	})
	return m
}

type parameterizedVisitor struct {
	resolve.TypeVisitorAdapter
	m   *ParameterizedMatcher
	ctx *Context
}

func (v *parameterizedVisitor) base() (*typespec.ParameterizedSpec, error) {
	base, ok := v.ctx.BaseType().(*typespec.ParameterizedSpec)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "parameterized matcher got base %v", v.ctx.BaseType())
	}
	return base, nil
}

func (v *parameterizedVisitor) VisitParameterizedType(cand *typespec.ParameterizedSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if typespec.Equal(base.Raw(), cand.Raw()) {
		return v.matchArgs(base, cand.Args())
	}
	if v.ctx.Strict() {
		return nil
	}
	if !base.Raw().AssignableFrom(cand.Raw()) {
		return nil
	}
	// different generic declarations; the candidate's hierarchy supplies
	// the bindings for the base's parameters
	return v.matchResolved(base, cand)
}

func (v *parameterizedVisitor) VisitClass(cand *typespec.ClassSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if v.ctx.Strict() {
		return nil
	}
	if !base.Raw().AssignableFrom(cand) {
		return nil
	}
	return v.matchResolved(base, cand)
}

func (v *parameterizedVisitor) VisitWildcardType(cand *typespec.WildcardSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.anyBoundMatches(cand.UpperBounds())
}

func (v *parameterizedVisitor) VisitTypeVariable(cand *typespec.VariableSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.anyBoundMatches(cand.Bounds())
}

// matchArgs compares same-raw argument lists position by position. Arity
// is equal by construction once the raw types are equal.
func (v *parameterizedVisitor) matchArgs(base *typespec.ParameterizedSpec, candArgs []typespec.TypeSpec) error {
	for i, baseArg := range base.Args() {
		matched, err := v.m.delegate.MatchIn(v.ctx, baseArg, candArgs[i], argStrict(baseArg))
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

// matchResolved checks each base argument against the actual type the
// candidate's inheritance chain binds to the corresponding parameter.
func (v *parameterizedVisitor) matchResolved(base *typespec.ParameterizedSpec, candContext typespec.TypeSpec) error {
	resolver := v.m.TypeArgumentResolver()
	for i, param := range base.Raw().TypeParams() {
		actual := resolver.Resolve(param, candContext)
		baseArg := base.Args()[i]
		matched, err := v.m.delegate.MatchIn(v.ctx, baseArg, actual, argStrict(baseArg))
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

func (v *parameterizedVisitor) anyBoundMatches(bounds []typespec.TypeSpec) error {
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

// argStrict picks the variance for one generic-argument position: exact
// identity unless the base argument is a wildcard, whose bounds are
// checked leniently by the wildcard matcher itself.
func argStrict(baseArg typespec.TypeSpec) bool {
	_, isWildcard := baseArg.(*typespec.WildcardSpec)
	return !isWildcard
}
