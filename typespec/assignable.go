package typespec

import (
	"github.com/hashicorp/go-set/v3"
)

// RawOf extracts the raw class of a class or parameterized spec. Other
// variants have no raw type.
func RawOf(t TypeSpec) (*ClassSpec, bool) {
	switch t := t.(type) {
	case *ClassSpec:
		return t, true
	case *ParameterizedSpec:
		return t.raw, true
	default:
		return nil, false
	}
}

// AssignableFrom reports whether other may be used where c is expected,
// judged on raw types only: it holds when other is c itself or names c
// anywhere in its supertype graph. Generic arguments are not consulted
// here; that is the matcher's job.
func (c *ClassSpec) AssignableFrom(other *ClassSpec) bool {
	if other == nil {
		return false
	}
	seen := set.NewHashSet[*ClassSpec, uint64](8)
	return c.assignableFrom(other, seen)
}

func (c *ClassSpec) assignableFrom(other *ClassSpec, seen *set.HashSet[*ClassSpec, uint64]) bool {
	if Equal(c, other) {
		return true
	}
	if !seen.Insert(other) {
		// supertype graph cycle, already explored
		return false
	}
	for _, sup := range other.supertypes {
		raw, ok := RawOf(sup)
		if ok && c.assignableFrom(raw, seen) {
			return true
		}
	}
	return false
}
