package resolve

import (
	"log/slog"

	"github.com/benbjohnson/immutable"
	"github.com/denis-zhdanov/jenome/internal/log"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/hashicorp/go-set/v3"
)

// TypeArgumentResolver maps a type variable to the actual type bound to it
// at a given use site. The context is the type from whose vantage point the
// variable is observed; the resolver walks the context's parameterized
// supertype graph looking for the nearest binding. When the variable is
// free in that context the result is a wildcard upper-bounded by the
// variable's declared bounds.
type TypeArgumentResolver interface {
	Resolve(variable *typespec.VariableSpec, context typespec.TypeSpec) typespec.TypeSpec
}

// Default is the stateless resolver shared by all matchers unless a custom
// one is installed per matcher instance.
var Default TypeArgumentResolver = defaultResolver{}

type defaultResolver struct{}

var resolverLog = log.DefaultLogger.With(slog.String("section", "resolve"))

func (defaultResolver) Resolve(variable *typespec.VariableSpec, context typespec.TypeSpec) typespec.TypeSpec {
	if variable == nil {
		return nil
	}
	empty := immutable.NewMap[uint64, typespec.TypeSpec](nil)
	seen := set.NewHashSet[*typespec.ClassSpec, uint64](8)
	if bound, ok := resolveIn(variable, context, empty, seen); ok {
		resolverLog.Debug("resolved type variable",
			slog.String("variable", variable.String()),
			slog.String("context", specString(context)),
			slog.String("bound", bound.String()))
		return bound
	}
	resolverLog.Debug("type variable is free, falling back to declared bounds",
		slog.String("variable", variable.String()),
		slog.String("context", specString(context)))
	return typespec.NewWildcardSpec(variable.Bounds(), nil)
}

func specString(t typespec.TypeSpec) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// resolveIn searches t and its supertype graph for a parameterization of
// the variable's declaring class. subst carries the bindings accumulated on
// the way down, keyed by variable hash, so that arguments expressed in
// terms of an intermediate class's own parameters resolve through to the
// concrete types the use site supplied.
func resolveIn(
	variable *typespec.VariableSpec,
	t typespec.TypeSpec,
	subst *immutable.Map[uint64, typespec.TypeSpec],
	seen *set.HashSet[*typespec.ClassSpec, uint64],
) (typespec.TypeSpec, bool) {
	switch t := t.(type) {
	case *typespec.ParameterizedSpec:
		raw := t.Raw()
		if typespec.Equal(raw, variable.Declaration()) {
			for i, param := range raw.TypeParams() {
				if param.Name() == variable.Name() {
					return substitute(t.Args()[i], subst), true
				}
			}
			return nil, false
		}
		if !seen.Insert(raw) {
			return nil, false
		}
		next := subst
		for i, param := range raw.TypeParams() {
			next = next.Set(param.Hash(), substitute(t.Args()[i], subst))
		}
		return resolveInAll(variable, raw.Supertypes(), next, seen)
	case *typespec.ClassSpec:
		// a raw use of the declaring class supplies no binding
		if typespec.Equal(t, variable.Declaration()) {
			return nil, false
		}
		if !seen.Insert(t) {
			return nil, false
		}
		return resolveInAll(variable, t.Supertypes(), subst, seen)
	case *typespec.VariableSpec:
		return resolveInAll(variable, t.Bounds(), subst, seen)
	case *typespec.WildcardSpec:
		return resolveInAll(variable, t.UpperBounds(), subst, seen)
	default:
		return nil, false
	}
}

func resolveInAll(
	variable *typespec.VariableSpec,
	specs []typespec.TypeSpec,
	subst *immutable.Map[uint64, typespec.TypeSpec],
	seen *set.HashSet[*typespec.ClassSpec, uint64],
) (typespec.TypeSpec, bool) {
	for _, s := range specs {
		if bound, ok := resolveIn(variable, s, subst, seen); ok {
			return bound, true
		}
	}
	return nil, false
}

// substitute rewrites t replacing every variable that subst has a binding
// for. Unbound variables are left as they are.
func substitute(t typespec.TypeSpec, subst *immutable.Map[uint64, typespec.TypeSpec]) typespec.TypeSpec {
	switch t := t.(type) {
	case *typespec.VariableSpec:
		if bound, ok := subst.Get(t.Hash()); ok {
			return bound
		}
		return t
	case *typespec.ParameterizedSpec:
		args := make([]typespec.TypeSpec, len(t.Args()))
		changed := false
		for i, a := range t.Args() {
			args[i] = substitute(a, subst)
			changed = changed || args[i] != a
		}
		if !changed {
			return t
		}
		// arity is preserved, construction cannot fail
		p, err := typespec.NewParameterizedSpec(t.Raw(), args...)
		if err != nil {
			return t
		}
		return p
	case *typespec.ArraySpec:
		component := substitute(t.Component(), subst)
		if component == t.Component() {
			return t
		}
		return typespec.NewArraySpec(component)
	case *typespec.WildcardSpec:
		return typespec.NewWildcardSpec(
			substituteAll(t.UpperBounds(), subst),
			substituteAll(t.LowerBounds(), subst),
		)
	default:
		return t
	}
}

func substituteAll(specs []typespec.TypeSpec, subst *immutable.Map[uint64, typespec.TypeSpec]) []typespec.TypeSpec {
	if len(specs) == 0 {
		return specs
	}
	out := make([]typespec.TypeSpec, len(specs))
	for i, s := range specs {
		out[i] = substitute(s, subst)
	}
	return out
}
