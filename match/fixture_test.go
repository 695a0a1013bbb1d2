package match

import (
	"testing"

	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/stretchr/testify/require"
)

// fixture is a small nominal hierarchy shared by the matcher tests:
//
//	object
//	├── number ── integer, long
//	├── string
//	├── intBox (implements comparable[integer])
//	└── stringList extends list[string]
//	collection[E] ◁─ list[E] ◁─ arrayList[E]
//	comparable[T]
type fixture struct {
	object, number, integer, long, str      *typespec.ClassSpec
	comparable, collection, list, arrayList *typespec.ClassSpec
	stringList, intBox                      *typespec.ClassSpec
}

func mustPt(t *testing.T, raw *typespec.ClassSpec, args ...typespec.TypeSpec) *typespec.ParameterizedSpec {
	t.Helper()
	p, err := typespec.NewParameterizedSpec(raw, args...)
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.object = typespec.NewClassSpec("object")
	f.number = typespec.NewClassSpec("number", f.object)
	f.integer = typespec.NewClassSpec("integer", f.number)
	f.long = typespec.NewClassSpec("long", f.number)
	f.str = typespec.NewClassSpec("string", f.object)

	f.comparable = typespec.NewGenericClassSpec("comparable", []typespec.TypeParam{{Name: "T"}})
	f.collection = typespec.NewGenericClassSpec("collection", []typespec.TypeParam{{Name: "E"}})

	listE := typespec.NewVariableSpec("E", nil)
	f.list = typespec.NewGenericClassSpecOf("list",
		[]*typespec.VariableSpec{listE},
		mustPt(t, f.collection, listE))

	arrayListE := typespec.NewVariableSpec("E", nil)
	f.arrayList = typespec.NewGenericClassSpecOf("arrayList",
		[]*typespec.VariableSpec{arrayListE},
		mustPt(t, f.list, arrayListE))

	f.stringList = typespec.NewClassSpec("stringList", mustPt(t, f.list, f.str))
	f.intBox = typespec.NewClassSpec("intBox", f.object, mustPt(t, f.comparable, f.integer))
	return f
}
