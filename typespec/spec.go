package typespec

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xtgo/set"
)

// ErrArityMismatch is returned when a ParameterizedSpec is constructed with
// a type-argument count different from its raw type's declared parameter
// count. This is a construction-time failure, never a match-time one.
var ErrArityMismatch = errors.New("type argument arity mismatch")

// TypeSpec is a generic type expression: one of ClassSpec,
// ParameterizedSpec, WildcardSpec, ArraySpec or VariableSpec. Values are
// immutable once constructed and safe to share across goroutines.
//
// The set is open on purpose: foreign implementations are routed to the
// dispatcher's fallback rather than rejected outright.
type TypeSpec interface {
	fmt.Stringer
	// Hash is a structural hash; two specs with equal hashes are treated
	// as the same type (nominal for classes and variables).
	Hash() uint64
}

var (
	_ TypeSpec = (*ClassSpec)(nil)
	_ TypeSpec = (*ParameterizedSpec)(nil)
	_ TypeSpec = (*WildcardSpec)(nil)
	_ TypeSpec = (*ArraySpec)(nil)
	_ TypeSpec = (*VariableSpec)(nil)
)

// Equal compares two specs structurally.
// We compare hashes rather than requiring an Equal method on every variant
// because each variant already encodes its identity in Hash, and it lets
// callers compare across variants without type assertions.
func Equal(a, b TypeSpec) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Hash() == b.Hash()
}

func hashOf(parts ...[]byte) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum64()
}

func hashSpecs(arr []byte, specs []TypeSpec) []byte {
	for _, s := range specs {
		arr = binary.LittleEndian.AppendUint64(arr, s.Hash())
	}
	return arr
}

// ClassSpec is a concrete named type: either non-generic, or the raw form
// of a generic declaration. It doubles as the generic declaration that
// introduces type parameters, which is what VariableSpec points back to.
type ClassSpec struct {
	name       string
	typeParams []*VariableSpec
	supertypes []TypeSpec
}

// TypeParam declares one type parameter of a generic class, with the types
// it is constrained to extend. Bounds may be empty.
type TypeParam struct {
	Name   string
	Bounds []TypeSpec
}

// NewClassSpec builds a non-generic named type. Supertypes are the direct
// superclass and implemented interfaces, each a *ClassSpec or
// *ParameterizedSpec.
func NewClassSpec(name string, supertypes ...TypeSpec) *ClassSpec {
	return &ClassSpec{name: name, supertypes: supertypes}
}

// NewGenericClassSpec builds a generic declaration: a raw named type plus
// the type parameters it introduces. The returned class owns its
// parameters; retrieve them with TypeParams or TypeParam.
func NewGenericClassSpec(name string, params []TypeParam, supertypes ...TypeSpec) *ClassSpec {
	c := &ClassSpec{name: name, supertypes: supertypes}
	for _, p := range params {
		c.typeParams = append(c.typeParams, &VariableSpec{
			name:   p.Name,
			decl:   c,
			bounds: dedupeSpecs(p.Bounds),
		})
	}
	return c
}

// NewGenericClassSpecOf builds a generic declaration out of pre-built
// variables, which lets the supertypes mention the parameters themselves,
// e.g. list[E] extends collection[E]. The new class claims the variables:
// their declaration is set to it, so they must not belong to another
// declaration already.
func NewGenericClassSpecOf(name string, params []*VariableSpec, supertypes ...TypeSpec) *ClassSpec {
	c := &ClassSpec{name: name, typeParams: params, supertypes: supertypes}
	for _, p := range params {
		p.decl = c
	}
	return c
}

func (c *ClassSpec) Name() string { return c.name }

func (c *ClassSpec) TypeParams() []*VariableSpec { return c.typeParams }

func (c *ClassSpec) Supertypes() []TypeSpec { return c.supertypes }

// TypeParam finds a declared parameter by name.
func (c *ClassSpec) TypeParam(name string) (*VariableSpec, bool) {
	for _, p := range c.typeParams {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

func (c *ClassSpec) String() string { return c.name }

// Hash is nominal: the name and parameter count identify the class.
// Supertypes and parameter bounds are deliberately excluded so that
// self-referential declarations (T extends Comparable[T]) terminate.
func (c *ClassSpec) Hash() uint64 {
	arr := []byte("class\x00")
	arr = append(arr, c.name...)
	arr = binary.LittleEndian.AppendUint64(arr, uint64(len(c.typeParams)))
	return hashOf(arr)
}

// ParameterizedSpec is a raw type applied to an ordered list of type
// arguments, e.g. List[String]. Argument order is positional and
// significant.
type ParameterizedSpec struct {
	raw  *ClassSpec
	args []TypeSpec
}

// NewParameterizedSpec applies args to raw. The argument count must equal
// the raw type's declared parameter count; anything else is rejected with
// ErrArityMismatch.
func NewParameterizedSpec(raw *ClassSpec, args ...TypeSpec) (*ParameterizedSpec, error) {
	if len(args) != len(raw.typeParams) {
		return nil, errors.Wrapf(ErrArityMismatch,
			"%s declares %d type parameters but %d arguments were supplied",
			raw.name, len(raw.typeParams), len(args))
	}
	return &ParameterizedSpec{raw: raw, args: args}, nil
}

func (p *ParameterizedSpec) Raw() *ClassSpec { return p.raw }

func (p *ParameterizedSpec) Args() []TypeSpec { return p.args }

func (p *ParameterizedSpec) String() string {
	args := make([]string, len(p.args))
	for i, a := range p.args {
		args[i] = a.String()
	}
	return p.raw.name + "[" + strings.Join(args, ", ") + "]"
}

func (p *ParameterizedSpec) Hash() uint64 {
	arr := []byte("parameterized\x00")
	arr = binary.LittleEndian.AppendUint64(arr, p.raw.Hash())
	arr = hashSpecs(arr, p.args)
	return hashOf(arr)
}

// WildcardSpec is an unknown type constrained from above (types it must
// extend) and/or below (types it must be a supertype of). Either set may
// be empty; both bound sets are deduplicated at construction.
type WildcardSpec struct {
	upper []TypeSpec
	lower []TypeSpec
}

func NewWildcardSpec(upper, lower []TypeSpec) *WildcardSpec {
	return &WildcardSpec{upper: dedupeSpecs(upper), lower: dedupeSpecs(lower)}
}

// NewUpperBoundedWildcard is the common `? extends T` form.
func NewUpperBoundedWildcard(upper ...TypeSpec) *WildcardSpec {
	return NewWildcardSpec(upper, nil)
}

// NewLowerBoundedWildcard is the common `? super T` form.
func NewLowerBoundedWildcard(lower ...TypeSpec) *WildcardSpec {
	return NewWildcardSpec(nil, lower)
}

func (w *WildcardSpec) UpperBounds() []TypeSpec { return w.upper }

func (w *WildcardSpec) LowerBounds() []TypeSpec { return w.lower }

func (w *WildcardSpec) String() string {
	sb := strings.Builder{}
	sb.WriteString("?")
	if len(w.upper) > 0 {
		sb.WriteString(" extends ")
		sb.WriteString(joinSpecs(w.upper, " & "))
	}
	if len(w.lower) > 0 {
		sb.WriteString(" super ")
		sb.WriteString(joinSpecs(w.lower, " & "))
	}
	return sb.String()
}

func (w *WildcardSpec) Hash() uint64 {
	arr := []byte("wildcard\x00")
	arr = hashSpecs(arr, w.upper)
	arr = append(arr, 0x1f)
	arr = hashSpecs(arr, w.lower)
	return hashOf(arr)
}

// ArraySpec is an array of a single component type; components nest
// arbitrarily (ArraySpec of ArraySpec and so on).
type ArraySpec struct {
	component TypeSpec
}

func NewArraySpec(component TypeSpec) *ArraySpec {
	return &ArraySpec{component: component}
}

func (a *ArraySpec) Component() TypeSpec { return a.component }

func (a *ArraySpec) String() string { return a.component.String() + "[]" }

func (a *ArraySpec) Hash() uint64 {
	arr := []byte("array\x00")
	arr = binary.LittleEndian.AppendUint64(arr, a.component.Hash())
	return hashOf(arr)
}

// VariableSpec is a type variable: a name, the generic declaration that
// introduced it, and the types it is constrained to extend. It references
// its declaration, it does not own it.
type VariableSpec struct {
	name   string
	decl   *ClassSpec
	bounds []TypeSpec
}

// NewVariableSpec builds a free-standing variable, e.g. one declared on a
// generic method rather than on a class. Variables declared on a class are
// created by NewGenericClassSpec and retrieved via ClassSpec.TypeParam.
func NewVariableSpec(name string, decl *ClassSpec, bounds ...TypeSpec) *VariableSpec {
	return &VariableSpec{name: name, decl: decl, bounds: dedupeSpecs(bounds)}
}

func (v *VariableSpec) Name() string { return v.name }

func (v *VariableSpec) Declaration() *ClassSpec { return v.decl }

func (v *VariableSpec) Bounds() []TypeSpec { return v.bounds }

func (v *VariableSpec) String() string { return v.name }

// Hash identifies a variable by its name within its declaration. The
// declaration contributes only its name to avoid recursing through the
// parameter list that contains this very variable.
func (v *VariableSpec) Hash() uint64 {
	arr := []byte("typevar\x00")
	if v.decl != nil {
		arr = append(arr, v.decl.name...)
	}
	arr = append(arr, 0x1f)
	arr = append(arr, v.name...)
	return hashOf(arr)
}

func joinSpecs(specs []TypeSpec, sep string) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}

type specsByHash []TypeSpec

func (s specsByHash) Len() int           { return len(s) }
func (s specsByHash) Less(i, j int) bool { return s[i].Hash() < s[j].Hash() }
func (s specsByHash) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// dedupeSpecs canonicalises a bound set: sorted by hash, duplicates
// removed. Keeps nil slices nil so empty bound sets stay cheap.
func dedupeSpecs(specs []TypeSpec) []TypeSpec {
	if len(specs) < 2 {
		return specs
	}
	sorted := make([]TypeSpec, len(specs))
	copy(sorted, specs)
	sort.Sort(specsByHash(sorted))
	n := set.Uniq(specsByHash(sorted))
	return sorted[:n]
}
