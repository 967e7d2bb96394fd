package value

import "github.com/kristofer/smogvm/pkg/shared"

// Equal implements the `==` structural equality rule from section 4.1:
// recursive on vectors, objects (key sets equal, values recursively
// equal), tuples, and strings (content equal across String/StaticString
// mixes). Primitive equality on Unit/Bool/Char/Integer/Float uses native
// semantics. Unlisted cross-variant combinations compare unequal.
//
// Borrowing the operands can fail (e.g. a Vec exclusively borrowed
// elsewhere); that surfaces as an access error rather than a silent
// false, since returning false would be observably wrong.
func Equal(a, b Value) (bool, error) {
	switch {
	case a.kind == KindUnit && b.kind == KindUnit:
		return true, nil
	case a.kind == KindBool && b.kind == KindBool:
		return a.b == b.b, nil
	case a.kind == KindByte && b.kind == KindByte:
		return a.byt == b.byt, nil
	case a.kind == KindChar && b.kind == KindChar:
		return a.c == b.c, nil
	case a.kind == KindInteger && b.kind == KindInteger:
		return a.i == b.i, nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return a.f == b.f, nil
	case a.kind == KindType && b.kind == KindType:
		return a.typeH == b.typeH, nil
	}

	if isStringLike(a) && isStringLike(b) {
		// StaticString-to-StaticString is short-circuited to identifier
		// (pointer) equality before falling back to content comparison.
		if a.kind == KindStaticString && b.kind == KindStaticString && a.static == b.static {
			return true, nil
		}
		at, err := stringContent(a)
		if err != nil {
			return false, err
		}
		bt, err := stringContent(b)
		if err != nil {
			return false, err
		}
		return at == bt, nil
	}

	switch {
	case a.kind == KindVec && b.kind == KindVec:
		return equalSlices(a.vec, b.vec)
	case a.kind == KindTuple && b.kind == KindTuple:
		return equalSlices(a.tuple, b.tuple)
	case a.kind == KindObject && b.kind == KindObject:
		return equalObjects(a.object, b.object)
	case a.kind == KindTypedTuple && b.kind == KindTypedTuple:
		return equalTypedTuples(a.ttuple, b.ttuple)
	case a.kind == KindTypedObject && b.kind == KindTypedObject:
		return equalTypedObjects(a.tobj, b.tobj)
	case a.kind == KindOption && b.kind == KindOption:
		return equalOptions(a.option, b.option)
	case a.kind == KindResult && b.kind == KindResult:
		return equalResults(a.result, b.result)
	case a.kind == KindBytes && b.kind == KindBytes:
		return equalBytes(a.bytes, b.bytes)
	}

	return false, nil
}

// NotEqual is the negation of Equal, per the `Neq = !Eq` testable property.
func NotEqual(a, b Value) (bool, error) {
	eq, err := Equal(a, b)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func isStringLike(v Value) bool {
	return v.kind == KindString || v.kind == KindStaticString
}

func stringContent(v Value) (string, error) {
	if v.kind == KindStaticString {
		return v.static.Text, nil
	}
	ref, err := v.str.Borrow()
	if err != nil {
		return "", err
	}
	defer ref.Release()
	return *ref.Get(), nil
}

func equalSlices(ca, cb *shared.Cell[[]Value]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	sa, sb := *ra.Get(), *rb.Get()
	if len(sa) != len(sb) {
		return false, nil
	}
	for i := range sa {
		eq, err := Equal(sa[i], sb[i])
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func equalObjects(ca, cb *shared.Cell[*OrderedMap]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	return equalOrderedMaps(*ra.Get(), *rb.Get())
}

func equalOrderedMaps(ma, mb *OrderedMap) (bool, error) {
	if ma.Len() != mb.Len() {
		return false, nil
	}
	var eq = true
	var cause error
	ma.Each(func(k string, v Value) bool {
		bv, ok := mb.Get(k)
		if !ok {
			eq = false
			return false
		}
		e, err := Equal(v, bv)
		if err != nil {
			cause = err
			return false
		}
		if !e {
			eq = false
			return false
		}
		return true
	})
	if cause != nil {
		return false, cause
	}
	return eq, nil
}

func equalTypedTuples(ca, cb *shared.Cell[TypedTupleData]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	da, db := *ra.Get(), *rb.Get()
	if da.Ty != db.Ty || len(da.Items) != len(db.Items) {
		return false, nil
	}
	for i := range da.Items {
		eq, err := Equal(da.Items[i], db.Items[i])
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func equalTypedObjects(ca, cb *shared.Cell[TypedObjectData]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	da, db := *ra.Get(), *rb.Get()
	if da.Ty != db.Ty {
		return false, nil
	}
	return equalOrderedMaps(da.Map, db.Map)
}

func equalOptions(ca, cb *shared.Cell[OptionData]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	da, db := *ra.Get(), *rb.Get()
	if da.Some != db.Some {
		return false, nil
	}
	if !da.Some {
		return true, nil
	}
	return Equal(da.Value, db.Value)
}

func equalResults(ca, cb *shared.Cell[ResultData]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	da, db := *ra.Get(), *rb.Get()
	if da.Ok != db.Ok {
		return false, nil
	}
	return Equal(da.Value, db.Value)
}

func equalBytes(ca, cb *shared.Cell[[]byte]) (bool, error) {
	ra, err := ca.Borrow()
	if err != nil {
		return false, err
	}
	defer ra.Release()
	rb, err := cb.Borrow()
	if err != nil {
		return false, err
	}
	defer rb.Release()

	sa, sb := *ra.Get(), *rb.Get()
	if len(sa) != len(sb) {
		return false, nil
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false, nil
		}
	}
	return true, nil
}
