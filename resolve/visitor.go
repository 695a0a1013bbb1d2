package resolve

import (
	"github.com/denis-zhdanov/jenome/typespec"
)

// TypeVisitor receives exactly one callback per dispatched type, chosen by
// TypeDispatcher according to the spec's variant. VisitType is the
// fallback for representations outside the five known variants; it never
// runs in addition to a specific callback.
type TypeVisitor interface {
	VisitClass(spec *typespec.ClassSpec) error
	VisitParameterizedType(spec *typespec.ParameterizedSpec) error
	VisitWildcardType(spec *typespec.WildcardSpec) error
	VisitGenericArrayType(spec *typespec.ArraySpec) error
	VisitTypeVariable(spec *typespec.VariableSpec) error
	VisitType(spec typespec.TypeSpec) error
}

// TypeVisitorAdapter implements TypeVisitor with no-op method bodies.
// Embed it to handle only the variants a visitor cares about; under the
// matcher's fail-closed policy an unhandled variant leaves the verdict
// unset, which reads back as a non-match.
type TypeVisitorAdapter struct{}

var _ TypeVisitor = TypeVisitorAdapter{}

func (TypeVisitorAdapter) VisitClass(*typespec.ClassSpec) error { return nil }

func (TypeVisitorAdapter) VisitParameterizedType(*typespec.ParameterizedSpec) error { return nil }

func (TypeVisitorAdapter) VisitWildcardType(*typespec.WildcardSpec) error { return nil }

func (TypeVisitorAdapter) VisitGenericArrayType(*typespec.ArraySpec) error { return nil }

func (TypeVisitorAdapter) VisitTypeVariable(*typespec.VariableSpec) error { return nil }

func (TypeVisitorAdapter) VisitType(typespec.TypeSpec) error { return nil }
