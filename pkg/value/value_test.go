package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kristofer/smogvm/pkg/shared"
)

func TestEqualAndNotEqualOnPrimitives(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"unit", Unit(), Unit(), true},
		{"bool same", NewBool(true), NewBool(true), true},
		{"bool diff", NewBool(true), NewBool(false), false},
		{"integer same", NewInteger(7), NewInteger(7), true},
		{"integer diff", NewInteger(7), NewInteger(8), false},
		{"float same", NewFloat(1.5), NewFloat(1.5), true},
		{"char same", NewChar('x'), NewChar('x'), true},
		{"byte vs integer", NewByte(1), NewInteger(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equal(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Equal returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			neq, err := NotEqual(tt.a, tt.b)
			if err != nil {
				t.Fatalf("NotEqual returned error: %v", err)
			}
			if neq == got {
				t.Errorf("NotEqual should be the negation of Equal, got %v and %v", got, neq)
			}
		})
	}
}

func TestEqualStaticStringVsString(t *testing.T) {
	handle := &StaticString{Text: "hello"}
	a := NewStaticString(handle)
	b := String("hello")

	eq, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if !eq {
		t.Errorf("String content equal to StaticString text should compare equal")
	}

	// Two StaticStrings sharing the same interned handle take the pointer
	// fast path.
	eq, err = Equal(a, NewStaticString(handle))
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if !eq {
		t.Errorf("identical StaticString handles should compare equal")
	}

	// Two StaticStrings with distinct handles but identical text still
	// compare equal via the content fallback.
	other := NewStaticString(&StaticString{Text: "hello"})
	eq, err = Equal(a, other)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if !eq {
		t.Errorf("StaticStrings with equal text but different handles should compare equal")
	}
}

func TestEqualStructural(t *testing.T) {
	v1 := Vec([]Value{NewInteger(1), NewInteger(2)})
	v2 := Vec([]Value{NewInteger(1), NewInteger(2)})
	v3 := Vec([]Value{NewInteger(2), NewInteger(1)})

	if eq, err := Equal(v1, v2); err != nil || !eq {
		t.Errorf("equal-content vecs should compare equal, got %v, err %v", eq, err)
	}
	if eq, err := Equal(v1, v3); err != nil || eq {
		t.Errorf("differently-ordered vecs should compare unequal, got %v, err %v", eq, err)
	}

	m1 := NewOrderedMap()
	m1.Set("a", NewInteger(1))
	m1.Set("b", NewInteger(2))
	m2 := NewOrderedMap()
	m2.Set("b", NewInteger(2))
	m2.Set("a", NewInteger(1))

	o1 := Object(m1)
	o2 := Object(m2)
	if eq, err := Equal(o1, o2); err != nil || !eq {
		t.Errorf("objects with same key/value pairs in different insertion order should compare equal, got %v, err %v", eq, err)
	}
}

func TestEqualUnlistedCombinationsAreUnequal(t *testing.T) {
	if eq, err := Equal(NewInteger(1), Unit()); err != nil || eq {
		t.Errorf("Integer vs Unit should compare unequal, got %v, err %v", eq, err)
	}
	if eq, err := Equal(Some(NewInteger(1)), Ok(NewInteger(1))); err != nil || eq {
		t.Errorf("Option vs Result should compare unequal, got %v, err %v", eq, err)
	}
}

func TestCompareSameVariant(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want Ordering
	}{
		{"integer less", NewInteger(1), NewInteger(2), Less},
		{"integer greater", NewInteger(5), NewInteger(2), Greater},
		{"integer equal", NewInteger(3), NewInteger(3), Equal_},
		{"float less", NewFloat(1.0), NewFloat(2.0), Less},
		{"char less", NewChar('a'), NewChar('b'), Less},
		{"bool less", NewBool(false), NewBool(true), Less},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compare returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareCrossVariantUnsupported(t *testing.T) {
	if _, err := Compare(NewInteger(1), NewFloat(1.0)); err == nil {
		t.Fatalf("expected an error ordering Integer against Float")
	}
	if _, err := Compare(Unit(), Unit()); err == nil {
		t.Fatalf("expected an error ordering Unit, which has no defined ordering")
	}
}

func TestHashFunctionStableAndDistinct(t *testing.T) {
	if HashFunction("a") != HashFunction("a") {
		t.Errorf("HashFunction should be stable for identical input")
	}
	if HashFunction("a") == HashFunction("b") {
		t.Errorf("HashFunction should distinguish different paths")
	}
}

func TestHashInstanceFunctionCombinesBothOperands(t *testing.T) {
	h1 := HashInstanceFunction(TypeInteger, MethodAdd)
	h2 := HashInstanceFunction(TypeFloat, MethodAdd)
	h3 := HashInstanceFunction(TypeInteger, MethodSub)

	if h1 == h2 {
		t.Errorf("instance hash should depend on the type operand")
	}
	if h1 == h3 {
		t.Errorf("instance hash should depend on the method operand")
	}
}

func TestOrderedMapClonePreservesOrderAndSharing(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", NewInteger(1))
	m.Set("a", NewInteger(2))

	clone := m.Clone()
	if diff := cmp.Diff(m.Keys(), clone.Keys()); diff != "" {
		t.Errorf("clone key order mismatch (-want +got):\n%s", diff)
	}

	clone.Set("z", NewInteger(99))
	if v, _ := m.Get("z"); v.AsInteger() != 1 {
		t.Errorf("mutating a clone must not affect the original map's entries")
	}
}

func TestTypeHashPerVariant(t *testing.T) {
	if NewInteger(1).TypeHash() != TypeInteger {
		t.Errorf("Integer TypeHash mismatch")
	}
	if NewStaticString(&StaticString{Text: "x"}).TypeHash() != TypeString {
		t.Errorf("StaticString TypeHash should report the shared string type")
	}
	if String("x").TypeHash() != TypeString {
		t.Errorf("String TypeHash should report the shared string type")
	}

	ty := HashFunction("MyType")
	tt := NewTypedTuple(ty, ttupleCell(ty))
	if tt.TypeHash() != ty {
		t.Errorf("TypedTuple TypeHash should report its tag, not a builtin")
	}
}

func ttupleCell(ty Hash) *shared.Cell[TypedTupleData] {
	return shared.New(TypedTupleData{Ty: ty, Items: nil})
}
