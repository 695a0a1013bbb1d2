package resolve

import (
	"github.com/denis-zhdanov/jenome/typespec"
)

// TypeDispatcher classifies a TypeSpec into exactly one of the five known
// variants and invokes the matching visitor callback. A representation
// outside the known set goes to VisitType instead; that is not an error
// by itself. The dispatcher never recurses: descending into nested type
// arguments is the visitor's responsibility.
type TypeDispatcher struct{}

func (TypeDispatcher) Dispatch(spec typespec.TypeSpec, visitor TypeVisitor) error {
	switch spec := spec.(type) {
	case *typespec.ClassSpec:
		return visitor.VisitClass(spec)
	case *typespec.ParameterizedSpec:
		return visitor.VisitParameterizedType(spec)
	case *typespec.WildcardSpec:
		return visitor.VisitWildcardType(spec)
	case *typespec.ArraySpec:
		return visitor.VisitGenericArrayType(spec)
	case *typespec.VariableSpec:
		return visitor.VisitTypeVariable(spec)
	default:
		return visitor.VisitType(spec)
	}
}
