package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// ClassMatcher decides compliance against a plain named type. Lenient
// matching accepts any candidate assignable to the base over the supertype
// graph; strict matching requires the very same class.
type ClassMatcher struct {
	*Engine
}

func NewClassMatcher() *ClassMatcher {
	m := &ClassMatcher{}
	m.Engine = NewEngine(EngineConfig{
		Name: "class",
		VisitorFor: func(ctx *Context) resolve.TypeVisitor {
			return &classVisitor{m: m, ctx: ctx}
		},
	})
	return m
}

type classVisitor struct {
	resolve.TypeVisitorAdapter
	m   *ClassMatcher
	ctx *Context
}

func (v *classVisitor) base() (*typespec.ClassSpec, error) {
	base, ok := v.ctx.BaseType().(*typespec.ClassSpec)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "class matcher got base %v", v.ctx.BaseType())
	}
	return base, nil
}

func (v *classVisitor) VisitClass(cand *typespec.ClassSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if v.ctx.Strict() {
		v.ctx.SetMatched(typespec.Equal(base, cand))
		return nil
	}
	v.ctx.SetMatched(base.AssignableFrom(cand))
	return nil
}

// A parameterized candidate complies through its raw type: the base is a
// plain class, so generic arguments carry no information for it.
func (v *classVisitor) VisitParameterizedType(cand *typespec.ParameterizedSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	matched, err := v.m.MatchIn(v.ctx, base, cand.Raw(), v.ctx.Strict())
	if err != nil {
		return err
	}
	v.ctx.SetMatched(matched)
	return nil
}

func (v *classVisitor) VisitWildcardType(cand *typespec.WildcardSpec) error {
	if v.ctx.Strict() {
		// an unknown type is never identical to a concrete class
		return nil
	}
	return v.anyBoundMatches(cand.UpperBounds())
}

func (v *classVisitor) VisitTypeVariable(cand *typespec.VariableSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.anyBoundMatches(cand.Bounds())
}

// anyBoundMatches accepts the candidate when one of its bounds complies
// with the base: every instantiation of the unknown type is a subtype of
// each bound, so one complying bound is enough. An empty bound set keeps
// the verdict unset, an unconstrained unknown could be anything.
func (v *classVisitor) anyBoundMatches(bounds []typespec.TypeSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	for _, bound := range bounds {
		matched, err := v.m.MatchIn(v.ctx, base, bound, false)
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
