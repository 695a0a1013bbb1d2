// Package gotypes adapts the go/types object model to the TypeSpec
// variants the compliance matcher understands. It is a best-effort bridge:
// Go has no declaration-site subtyping, so a converted class only gains
// supertypes from interface embedding and from the interfaces the
// converter is told to probe with types.Implements.
package gotypes

import (
	gotypes "go/types"

	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
)

// ErrUnsupportedGoType reports a Go type shape with no TypeSpec
// counterpart (unnamed structs, maps, channels, signatures).
var ErrUnsupportedGoType = errors.New("go type has no type spec representation")

// Converter builds TypeSpecs out of go/types values. It caches named
// conversions so the same declaration always maps to the same *ClassSpec.
// Not safe for concurrent use.
type Converter struct {
	classes    map[string]*typespec.ClassSpec
	inProgress map[string]bool
	tparams    map[*gotypes.TypeParam]bool
	interfaces []*gotypes.Named
}

// NewConverter builds a converter. The given named interface types are
// probed for every converted class; implemented ones become supertypes,
// which is what raw-type assignability runs on.
func NewConverter(interfaces ...*gotypes.Named) *Converter {
	return &Converter{
		classes:    make(map[string]*typespec.ClassSpec),
		inProgress: make(map[string]bool),
		tparams:    make(map[*gotypes.TypeParam]bool),
		interfaces: interfaces,
	}
}

func (c *Converter) Convert(t gotypes.Type) (typespec.TypeSpec, error) {
	switch t := gotypes.Unalias(t).(type) {
	case *gotypes.Basic:
		return c.classFor(t.Name(), nil), nil
	case *gotypes.Named:
		return c.convertNamed(t)
	case *gotypes.Slice:
		return c.convertArray(t.Elem())
	case *gotypes.Array:
		return c.convertArray(t.Elem())
	case *gotypes.Pointer:
		// pointers are transparent: compliance questions are about the
		// pointed-to declaration
		return c.Convert(t.Elem())
	case *gotypes.TypeParam:
		return c.convertTypeParam(t)
	case *gotypes.Interface:
		if t.Empty() {
			return c.classFor("any", nil), nil
		}
		return nil, errors.Wrap(ErrUnsupportedGoType, "unnamed non-empty interface")
	default:
		return nil, errors.Wrapf(ErrUnsupportedGoType, "%T", t)
	}
}

// classFor returns the cached class for name, creating it on first use.
// Basic types and "any" flow through here so that repeated conversions
// hand out identical specs.
func (c *Converter) classFor(name string, supertypes []typespec.TypeSpec) *typespec.ClassSpec {
	if class, ok := c.classes[name]; ok {
		return class
	}
	class := typespec.NewClassSpec(name, supertypes...)
	c.classes[name] = class
	return class
}

func (c *Converter) convertArray(elem gotypes.Type) (typespec.TypeSpec, error) {
	component, err := c.Convert(elem)
	if err != nil {
		return nil, err
	}
	return typespec.NewArraySpec(component), nil
}

func (c *Converter) convertNamed(t *gotypes.Named) (typespec.TypeSpec, error) {
	raw, err := c.rawClass(t.Origin())
	if err != nil {
		return nil, err
	}
	if t.TypeArgs() == nil || t.TypeArgs().Len() == 0 {
		return raw, nil
	}
	args := make([]typespec.TypeSpec, t.TypeArgs().Len())
	for i := range args {
		args[i], err = c.Convert(t.TypeArgs().At(i))
		if err != nil {
			return nil, err
		}
	}
	return typespec.NewParameterizedSpec(raw, args...)
}

func (c *Converter) convertTypeParam(t *gotypes.TypeParam) (typespec.TypeSpec, error) {
	if c.tparams[t] {
		// the constraint mentions the parameter itself, as in
		// Item[T Comparable[T]]; a bound-free variable breaks the
		// recursion and hashes the same, bounds do not contribute to
		// variable identity
		return typespec.NewVariableSpec(t.Obj().Name(), nil), nil
	}
	c.tparams[t] = true
	defer delete(c.tparams, t)

	var bounds []typespec.TypeSpec
	if constraint, ok := gotypes.Unalias(t.Constraint()).(*gotypes.Named); ok {
		bound, err := c.convertNamed(constraint)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, bound)
	}
	// the declaring generic type is not reachable from a TypeParam, so
	// converted variables are free-standing
	return typespec.NewVariableSpec(t.Obj().Name(), nil, bounds...), nil
}

func (c *Converter) rawClass(origin *gotypes.Named) (*typespec.ClassSpec, error) {
	name := namedName(origin)
	if class, ok := c.classes[name]; ok {
		return class, nil
	}
	if c.inProgress[name] {
		// break conversion cycles with a stub of the same name and arity;
		// the nominal hash covers both, so the stub compares equal to the
		// finished class and parameterizations built on it keep working
		return stubClass(name, origin), nil
	}
	c.inProgress[name] = true
	defer delete(c.inProgress, name)

	supertypes, err := c.supertypesOf(origin)
	if err != nil {
		return nil, err
	}

	var class *typespec.ClassSpec
	if origin.TypeParams() != nil && origin.TypeParams().Len() > 0 {
		params := make([]typespec.TypeParam, origin.TypeParams().Len())
		for i := range params {
			tp := origin.TypeParams().At(i)
			spec, err := c.convertTypeParam(tp)
			if err != nil {
				return nil, err
			}
			params[i] = typespec.TypeParam{
				Name:   tp.Obj().Name(),
				Bounds: spec.(*typespec.VariableSpec).Bounds(),
			}
		}
		class = typespec.NewGenericClassSpec(name, params, supertypes...)
	} else {
		class = typespec.NewClassSpec(name, supertypes...)
	}
	c.classes[name] = class
	return class, nil
}

func (c *Converter) supertypesOf(origin *gotypes.Named) ([]typespec.TypeSpec, error) {
	var supertypes []typespec.TypeSpec
	if iface, ok := origin.Underlying().(*gotypes.Interface); ok {
		for i := 0; i < iface.NumEmbeddeds(); i++ {
			embedded, ok := gotypes.Unalias(iface.EmbeddedType(i)).(*gotypes.Named)
			if !ok {
				continue
			}
			sup, err := c.convertNamed(embedded)
			if err != nil {
				return nil, err
			}
			supertypes = append(supertypes, sup)
		}
	}
	for _, candidate := range c.interfaces {
		if namedName(candidate) == namedName(origin) {
			continue
		}
		iface, ok := candidate.Underlying().(*gotypes.Interface)
		if !ok {
			continue
		}
		if !gotypes.Implements(origin, iface) && !gotypes.Implements(gotypes.NewPointer(origin), iface) {
			continue
		}
		sup, err := c.convertNamed(candidate)
		if err != nil {
			return nil, err
		}
		supertypes = append(supertypes, sup)
	}
	return supertypes, nil
}

func stubClass(name string, origin *gotypes.Named) *typespec.ClassSpec {
	n := origin.TypeParams().Len()
	if n == 0 {
		return typespec.NewClassSpec(name)
	}
	params := make([]typespec.TypeParam, n)
	for i := range params {
		params[i] = typespec.TypeParam{Name: origin.TypeParams().At(i).Obj().Name()}
	}
	return typespec.NewGenericClassSpec(name, params)
}

func namedName(t *gotypes.Named) string {
	obj := t.Obj()
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}
