package order

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestClassify_PropertyBased checks that the duration depends on the type
// alone and the discount on the priority alone, for arbitrary strings.
func TestClassify_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	policy := DefaultPolicy()

	properties.Property("duration ignores priority", prop.ForAll(
		func(typ, p1, p2 string) bool {
			a := policy.Classify(Type(typ), Priority(p1))
			b := policy.Classify(Type(typ), Priority(p2))
			return a.Duration == b.Duration
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("discount ignores type", prop.ForAll(
		func(p, t1, t2 string) bool {
			a := policy.Classify(Type(t1), Priority(p))
			b := policy.Classify(Type(t2), Priority(p))
			return a.Discount == b.Discount
		},
		gen.AnyString(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("unknown types fall to the default bucket", prop.ForAll(
		func(raw string) bool {
			got := policy.Classify(Type(raw), PriorityOther)
			switch Type(raw) {
			case TypeFood, TypeElectronics, TypeClothing:
				return got.Duration > policy.DefaultDuration
			default:
				return got.Duration == policy.DefaultDuration && got.Discount == 0
			}
		},
		gen.AlphaString(),
	))

	properties.Property("normalization is idempotent", prop.ForAll(
		func(raw string) bool {
			t1 := NormalizeType(raw)
			p1 := NormalizePriority(raw)
			return NormalizeType(string(t1)) == t1 && NormalizePriority(string(p1)) == p1
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
