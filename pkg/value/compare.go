package value

import "github.com/kristofer/smogvm/pkg/vmerror"

// Ordering is the result of Compare: -1, 0 or 1.
type Ordering int

const (
	Less    Ordering = -1
	Equal_  Ordering = 0
	Greater Ordering = 1
)

// Compare implements `<`, `<=`, `>`, `>=`, defined only for same-variant
// pairs of Char, Bool, Integer and Float (section 4.1). Any other
// combination fails with UnsupportedBinaryOperation.
func Compare(a, b Value) (Ordering, error) {
	if a.kind != b.kind {
		return 0, vmerror.New(vmerror.KindUnsupportedBinaryOperation,
			"cannot order %s against %s", a.kind, b.kind)
	}

	switch a.kind {
	case KindChar:
		return orderInt64(int64(a.c), int64(b.c)), nil
	case KindBool:
		return orderInt64(boolToInt(a.b), boolToInt(b.b)), nil
	case KindInteger:
		return orderInt64(a.i, b.i), nil
	case KindFloat:
		switch {
		case a.f < b.f:
			return Less, nil
		case a.f > b.f:
			return Greater, nil
		default:
			return Equal_, nil
		}
	default:
		return 0, vmerror.New(vmerror.KindUnsupportedBinaryOperation,
			"type %s does not support ordering", a.kind)
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func orderInt64(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal_
	}
}
