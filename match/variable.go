package match

import (
	"github.com/denis-zhdanov/jenome/resolve"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// VariableMatcher decides compliance against a type-variable base. Strict
// matching accepts only the very same variable; lenient matching accepts
// any candidate that satisfies every declared bound. An unbounded variable
// constrains nothing and accepts any candidate.
type VariableMatcher struct {
	*Engine
	delegate ComplianceMatcher
}

func NewVariableMatcher(delegate ComplianceMatcher) *VariableMatcher {
	m := &VariableMatcher{delegate: delegate}
	m.Engine = NewEngine(EngineConfig{
		Name: "variable",
		VisitorFor: func(ctx *Context) resolve.TypeVisitor {
			return &variableVisitor{m: m, ctx: ctx}
		},
	})
	return m
}

type variableVisitor struct {
	resolve.TypeVisitorAdapter
	m   *VariableMatcher
	ctx *Context
}

func (v *variableVisitor) base() (*typespec.VariableSpec, error) {
	base, ok := v.ctx.BaseType().(*typespec.VariableSpec)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "variable matcher got base %v", v.ctx.BaseType())
	}
	return base, nil
}

func (v *variableVisitor) VisitTypeVariable(cand *typespec.VariableSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	if typespec.Equal(base, cand) {
		v.ctx.SetMatched(true)
		return nil
	}
	if v.ctx.Strict() {
		return nil
	}
	return v.checkBounds(cand)
}

func (v *variableVisitor) VisitClass(cand *typespec.ClassSpec) error {
	return v.visitConcrete(cand)
}

func (v *variableVisitor) VisitParameterizedType(cand *typespec.ParameterizedSpec) error {
	return v.visitConcrete(cand)
}

func (v *variableVisitor) VisitWildcardType(cand *typespec.WildcardSpec) error {
	return v.visitConcrete(cand)
}

func (v *variableVisitor) VisitGenericArrayType(cand *typespec.ArraySpec) error {
	return v.visitConcrete(cand)
}

func (v *variableVisitor) visitConcrete(cand typespec.TypeSpec) error {
	if v.ctx.Strict() {
		return nil
	}
	return v.checkBounds(cand)
}

// checkBounds requires the candidate to comply with every bound the
// variable declares; no bounds means no constraints.
func (v *variableVisitor) checkBounds(cand typespec.TypeSpec) error {
	base, err := v.base()
	if err != nil {
		return err
	}
	for _, bound := range base.Bounds() {
		matched, err := v.m.delegate.MatchIn(v.ctx, bound, cand, false)
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
