package match

import (
	"testing"

	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassCompliance(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	testCases := []struct {
		name            string
		base, candidate typespec.TypeSpec
		strict          bool
		want            bool
	}{
		{"identical classes", f.number, f.number, false, true},
		{"subtype is accepted leniently", f.number, f.integer, false, true},
		{"transitive subtype", f.object, f.integer, false, true},
		{"supertype is rejected", f.integer, f.number, false, false},
		{"unrelated classes", f.number, f.str, false, false},
		{"strict requires identity", f.number, f.integer, true, false},
		{"strict identity holds", f.number, f.number, true, true},
		{"raw base accepts a parameterization of a subtype", f.collection, mustPt(t, f.list, f.str), false, true},
		{"class base rejects an array", f.number, typespec.NewArraySpec(f.number), false, false},
		{"bounded wildcard candidate", f.number, typespec.NewUpperBoundedWildcard(f.integer), false, true},
		{"wildcard candidate outside the base", f.number, typespec.NewUpperBoundedWildcard(f.str), false, false},
		{"unbounded wildcard candidate fails closed", f.number, typespec.NewWildcardSpec(nil, nil), false, false},
		{"bounded variable candidate", f.number, typespec.NewVariableSpec("T", nil, f.integer), false, true},
		{"unbounded variable candidate fails closed", f.number, typespec.NewVariableSpec("T", nil), false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.MatchIn(NewContext(), tc.base, tc.candidate, tc.strict)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParameterizedCompliance(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	testCases := []struct {
		name            string
		base, candidate typespec.TypeSpec
		want            bool
	}{
		{"identical parameterizations", mustPt(t, f.list, f.integer), mustPt(t, f.list, f.integer), true},
		{"argument positions are invariant", mustPt(t, f.list, f.number), mustPt(t, f.list, f.integer), false},
		{"invariance holds in the other direction", mustPt(t, f.list, f.integer), mustPt(t, f.list, f.number), false},
		{"subtype raw with identical argument", mustPt(t, f.collection, f.str), mustPt(t, f.list, f.str), true},
		{"subtype raw with different argument", mustPt(t, f.collection, f.number), mustPt(t, f.list, f.str), false},
		{"wildcard argument admits subtypes", mustPt(t, f.list, typespec.NewUpperBoundedWildcard(f.number)), mustPt(t, f.list, f.integer), true},
		{"wildcard argument still bounds", mustPt(t, f.list, typespec.NewUpperBoundedWildcard(f.number)), mustPt(t, f.list, f.str), false},
		{"lower bounded wildcard argument", mustPt(t, f.list, typespec.NewLowerBoundedWildcard(f.integer)), mustPt(t, f.list, f.number), true},
		{"class candidate bound through its hierarchy", mustPt(t, f.comparable, f.integer), f.intBox, true},
		{"class candidate with the wrong binding", mustPt(t, f.comparable, f.str), f.intBox, false},
		{"non-generic subclass of a parameterization", mustPt(t, f.list, f.str), f.stringList, true},
		{"non-generic subclass two levels down", mustPt(t, f.collection, f.str), f.stringList, true},
		{"binding found two generic levels up", mustPt(t, f.collection, f.str), mustPt(t, f.arrayList, f.str), true},
		{"raw candidate leaves arguments unbound", mustPt(t, f.list, f.str), f.list, false},
		{"array candidate is rejected", mustPt(t, f.list, f.str), typespec.NewArraySpec(f.str), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Match(tc.base, tc.candidate)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWildcardCompliance(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	testCases := []struct {
		name            string
		base, candidate typespec.TypeSpec
		want            bool
	}{
		{"upper bound admits a subtype", typespec.NewUpperBoundedWildcard(f.number), f.integer, true},
		{"upper bound admits itself", typespec.NewUpperBoundedWildcard(f.number), f.number, true},
		{"upper bound admits sibling subtypes", typespec.NewUpperBoundedWildcard(f.number), f.long, true},
		{"upper bound rejects unrelated", typespec.NewUpperBoundedWildcard(f.number), f.str, false},
		{"lower bound admits a supertype", typespec.NewLowerBoundedWildcard(f.integer), f.number, true},
		{"lower bound rejects unrelated", typespec.NewLowerBoundedWildcard(f.integer), f.str, false},
		{"unbounded accepts anything", typespec.NewWildcardSpec(nil, nil), f.str, true},
		{"unbounded accepts arrays", typespec.NewWildcardSpec(nil, nil), typespec.NewArraySpec(f.str), true},
		{"wildcard candidate with narrower upper", typespec.NewUpperBoundedWildcard(f.number), typespec.NewUpperBoundedWildcard(f.integer), true},
		{"wildcard candidate with wider upper", typespec.NewUpperBoundedWildcard(f.integer), typespec.NewUpperBoundedWildcard(f.number), false},
		{"unbounded wildcard candidate against a bound", typespec.NewUpperBoundedWildcard(f.number), typespec.NewWildcardSpec(nil, nil), false},
		{"parameterized candidate under an upper bound", typespec.NewUpperBoundedWildcard(mustPt(t, f.collection, f.str)), mustPt(t, f.list, f.str), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Match(tc.base, tc.candidate)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Arrays are covariant under lenient matching, matching the source type
// system's rule: Number[] accepts Integer[]. This is deliberately
// different from generic-argument invariance.
func TestArrayCompliance(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	numberArray := typespec.NewArraySpec(f.number)
	integerArray := typespec.NewArraySpec(f.integer)

	testCases := []struct {
		name            string
		base, candidate typespec.TypeSpec
		strict          bool
		want            bool
	}{
		{"arrays are covariant leniently", numberArray, integerArray, false, true},
		{"array covariance does not reverse", integerArray, numberArray, false, false},
		{"strict arrays need identical components", numberArray, integerArray, true, false},
		{"strict identical arrays", numberArray, numberArray, true, true},
		{"nested arrays", typespec.NewArraySpec(numberArray), typespec.NewArraySpec(integerArray), false, true},
		{"class candidate is rejected", numberArray, f.number, false, false},
		{"parameterized component stays invariant", typespec.NewArraySpec(mustPt(t, f.list, f.number)), typespec.NewArraySpec(mustPt(t, f.list, f.integer)), false, false},
		{"variable candidate bounded by an array", numberArray, typespec.NewVariableSpec("T", nil, integerArray), false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.MatchIn(NewContext(), tc.base, tc.candidate, tc.strict)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVariableCompliance(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	bounded := typespec.NewVariableSpec("T", nil, f.number)
	unbounded := typespec.NewVariableSpec("U", nil)

	testCases := []struct {
		name            string
		base, candidate typespec.TypeSpec
		strict          bool
		want            bool
	}{
		{"candidate inside the bound", bounded, f.integer, false, true},
		{"candidate outside the bound", bounded, f.str, false, false},
		{"unbounded variable accepts anything", unbounded, f.str, false, true},
		{"strict accepts only the same variable", bounded, bounded, true, true},
		{"strict rejects other variables", bounded, unbounded, true, false},
		{"strict rejects concrete types", bounded, f.integer, true, false},
		{"same variable leniently", bounded, bounded, false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.MatchIn(NewContext(), tc.base, tc.candidate, tc.strict)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultIsLenient(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	pairs := []struct{ base, candidate typespec.TypeSpec }{
		{f.number, f.integer},
		{f.number, f.str},
		{mustPt(t, f.list, f.integer), mustPt(t, f.list, f.integer)},
		{typespec.NewArraySpec(f.number), typespec.NewArraySpec(f.integer)},
		{typespec.NewUpperBoundedWildcard(f.number), f.integer},
	}
	for _, pair := range pairs {
		viaMatch, err := m.Match(pair.base, pair.candidate)
		require.NoError(t, err)
		viaLenient, err := m.MatchIn(NewContext(), pair.base, pair.candidate, false)
		require.NoError(t, err)
		assert.Equal(t, viaLenient, viaMatch, "%v vs %v", pair.base, pair.candidate)
	}
}

func TestStrictReflexivity(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	concrete := []typespec.TypeSpec{
		f.integer,
		mustPt(t, f.list, f.integer),
		mustPt(t, f.comparable, mustPt(t, f.collection, f.str)),
		typespec.NewArraySpec(f.integer),
		typespec.NewArraySpec(mustPt(t, f.list, f.str)),
	}
	for _, spec := range concrete {
		got, err := m.MatchIn(NewContext(), spec, spec, true)
		require.NoError(t, err)
		assert.True(t, got, "%v should strictly match itself", spec)
	}
}

func TestStrictImpliesLenient(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	pairs := []struct{ base, candidate typespec.TypeSpec }{
		{f.number, f.number},
		{f.number, f.integer},
		{f.number, f.str},
		{mustPt(t, f.list, f.integer), mustPt(t, f.list, f.integer)},
		{mustPt(t, f.list, f.number), mustPt(t, f.list, f.integer)},
		{typespec.NewArraySpec(f.number), typespec.NewArraySpec(f.integer)},
		{mustPt(t, f.comparable, f.integer), f.intBox},
	}
	strictlyTrue := 0
	for _, pair := range pairs {
		strict, err := m.MatchIn(NewContext(), pair.base, pair.candidate, true)
		require.NoError(t, err)
		lenient, err := m.MatchIn(NewContext(), pair.base, pair.candidate, false)
		require.NoError(t, err)
		if strict {
			strictlyTrue++
			assert.True(t, lenient, "strict compliance must imply lenient for %v vs %v", pair.base, pair.candidate)
		}
	}
	assert.Positive(t, strictlyTrue, "the table should exercise at least one strict match")
}

// The motivating example for the frame stack: the parameterized matcher
// runs at two nesting levels with different base types within one call.
func TestReentrantNestedComparison(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	base := mustPt(t, f.comparable,
		mustPt(t, f.collection,
			mustPt(t, f.comparable, typespec.NewUpperBoundedWildcard(f.number))))
	candidate := mustPt(t, f.comparable,
		mustPt(t, f.collection,
			mustPt(t, f.comparable, typespec.NewUpperBoundedWildcard(f.number))))
	mismatch := mustPt(t, f.comparable,
		mustPt(t, f.collection,
			mustPt(t, f.comparable, typespec.NewUpperBoundedWildcard(f.str))))

	ctx := NewContext()
	for i := 0; i < 10; i++ {
		depthBefore := ctx.Depth()

		got, err := m.MatchIn(ctx, base, candidate, false)
		require.NoError(t, err)
		assert.True(t, got)

		got, err = m.MatchIn(ctx, base, mismatch, false)
		require.NoError(t, err)
		assert.False(t, got)

		assert.Equal(t, depthBefore, ctx.Depth(), "iteration %d must restore the stack", i)
	}
	assert.Equal(t, 1, ctx.Depth())
}

func TestCompositeRejectsNilArguments(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	_, err := m.Match(nil, f.number)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = m.Match(f.number, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

type unknownSpec struct{}

func (unknownSpec) String() string { return "unknown" }
func (unknownSpec) Hash() uint64   { return 7 }

func TestCompositeFailsClosedOnUnknownKinds(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	t.Run("unknown base", func(t *testing.T) {
		got, err := m.Match(unknownSpec{}, f.number)
		require.NoError(t, err)
		assert.False(t, got)
	})
	t.Run("unknown candidate", func(t *testing.T) {
		got, err := m.Match(f.number, unknownSpec{})
		require.NoError(t, err)
		assert.False(t, got)
	})
}

func TestCustomResolverIsUsed(t *testing.T) {
	f := newFixture(t)
	m := NewCompositeMatcher()

	// plain is unrelated to comparable, but a resolver that pins every
	// variable to integer makes the argument check pass once the raw
	// types line up
	plain := typespec.NewClassSpec("plain", mustPt(t, f.comparable, f.str))
	base := mustPt(t, f.comparable, f.integer)

	got, err := m.Match(base, plain)
	require.NoError(t, err)
	assert.False(t, got)

	m.SetTypeArgumentResolver(pinnedResolver{to: f.integer})
	got, err = m.Match(base, plain)
	require.NoError(t, err)
	assert.True(t, got)

	m.SetTypeArgumentResolver(nil)
	got, err = m.Match(base, plain)
	require.NoError(t, err)
	assert.False(t, got)
}

type pinnedResolver struct {
	to typespec.TypeSpec
}

func (r pinnedResolver) Resolve(*typespec.VariableSpec, typespec.TypeSpec) typespec.TypeSpec {
	return r.to
}

func TestPackageLevelMatch(t *testing.T) {
	f := newFixture(t)

	got, err := Match(f.number, f.integer)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Match(f.integer, f.str)
	require.NoError(t, err)
	assert.False(t, got)
}
