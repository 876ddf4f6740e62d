package actinide

// eqP implements `eq?`: identity comparison, per spec.md §4.7. Every
// dynamic Value type actinide constructs is either a Go-comparable
// scalar (bool, string) or a pointer type, so a bare interface `==`
// already gives exactly the semantics spec.md wants: interned symbols
// compare equal only to themselves, two separately-parsed numeric
// literals compare unequal even when they denote the same quantity (the
// "1e1 distinct from 10 under eq?" example generalizes to any two
// distinct *Integer/*Decimal objects), and the empty list is a single
// shared value. Strings compare by content rather than by identity,
// since Go strings are immutable values with no separate object
// identity to speak of; this is a deliberate simplification.
func eqP(a, b Value) bool {
	return a == b
}

// equalValue implements `=`: structural equality, per spec.md §4.7.
// Numbers compare by mathematical value across the integer/decimal
// boundary; conses compare element-wise; vectors compare length and
// element-wise; everything else falls back to identity.
func equalValue(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		cmp, err := numericCmp(a, b)
		return err == nil && cmp == 0
	}
	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x == y
	case *Cons:
		y, ok := b.(*Cons)
		if !ok {
			return false
		}
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return equalValue(x.Car, y.Car) && equalValue(x.Cdr, y.Cdr)
	case *Vector:
		y, ok := b.(*Vector)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !equalValue(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
