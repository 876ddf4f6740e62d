package actinide

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/nukata/goarith"
)

// Decimal is Actinide's arbitrary-precision base-10 rational, modeled on
// the (sign, digits, exponent) shape of Python's decimal.Decimal (the
// library the original implementation used): value = (-1)^Neg * Mantissa
// * 10^Exp. Mantissa is always non-negative; Neg carries the sign so that
// a mantissa of zero can still record a distinct negative zero.
type Decimal struct {
	Neg      bool
	Mantissa *big.Int
	Exp      int
}

// decimalDivisionPrecision is the number of digits after the decimal
// point in every decimal quotient: digits beyond it are truncated, and a
// quotient that terminates earlier is padded with zeros. spec.md leaves
// the exact rounding behavior of decimal division to "whatever the
// host's decimal arithmetic library provides"; this rewrite has no such
// library available (see DESIGN.md), so it picks a fixed, generous
// precision instead of guessing at a rounding mode.
const decimalDivisionPrecision = 40

func newDecimalFromParts(neg bool, mantissa *big.Int, exp int) *Decimal {
	return &Decimal{Neg: neg, Mantissa: new(big.Int).Abs(mantissa), Exp: exp}
}

// isZero reports whether d's magnitude is zero (positive or negative).
func (d *Decimal) isZero() bool {
	return d.Mantissa.Sign() == 0
}

// rat converts the decimal to an exact big.Rat.
func (d *Decimal) rat() *big.Rat {
	r := new(big.Rat).SetInt(d.Mantissa)
	if d.Exp > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Exp)), nil)
		r.Mul(r, new(big.Rat).SetInt(scale))
	} else if d.Exp < 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-d.Exp)), nil)
		r.Quo(r, new(big.Rat).SetInt(scale))
	}
	if d.Neg {
		r.Neg(r)
	}
	return r
}

// String renders the decimal in plain fixed-point form, always with a
// decimal point (a decimal with no fractional digits ends in ".0"), so
// the text reads back as a decimal rather than an integer.
func (d *Decimal) String() string {
	digits := d.Mantissa.String()
	sign := ""
	if d.Neg {
		sign = "-"
	}
	if d.Exp >= 0 {
		return sign + digits + strings.Repeat("0", d.Exp) + ".0"
	}
	// Exp < 0: insert a decimal point -Exp digits from the right.
	point := -d.Exp
	if point >= len(digits) {
		digits = strings.Repeat("0", point-len(digits)+1) + digits
	}
	intPart := digits[:len(digits)-point]
	fracPart := digits[len(digits)-point:]
	return sign + intPart + "." + fracPart
}

// alignExps returns the mantissas of a and b scaled to a common,
// minimal exponent.
func alignExps(a, b *Decimal) (*big.Int, *big.Int, int) {
	exp := a.Exp
	if b.Exp < exp {
		exp = b.Exp
	}
	am := new(big.Int).Set(a.Mantissa)
	if a.Neg {
		am.Neg(am)
	}
	bm := new(big.Int).Set(b.Mantissa)
	if b.Neg {
		bm.Neg(bm)
	}
	if a.Exp != exp {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.Exp-exp)), nil)
		am.Mul(am, scale)
	}
	if b.Exp != exp {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(b.Exp-exp)), nil)
		bm.Mul(bm, scale)
	}
	return am, bm, exp
}

func decimalFromSigned(m *big.Int, exp int) *Decimal {
	neg := m.Sign() < 0
	return newDecimalFromParts(neg, m, exp)
}

func decimalAdd(a, b *Decimal) *Decimal {
	am, bm, exp := alignExps(a, b)
	sum := new(big.Int).Add(am, bm)
	if sum.Sign() == 0 {
		return newDecimalFromParts(a.Neg && b.Neg, sum, exp)
	}
	return decimalFromSigned(sum, exp)
}

func decimalSub(a, b *Decimal) *Decimal {
	neg := *b
	neg.Neg = !neg.Neg
	return decimalAdd(a, &neg)
}

func decimalMul(a, b *Decimal) *Decimal {
	m := new(big.Int).Mul(a.Mantissa, b.Mantissa)
	return newDecimalFromParts(a.Neg != b.Neg, m, a.Exp+b.Exp)
}

func decimalDiv(a, b *Decimal) (*Decimal, error) {
	if b.isZero() {
		return nil, newDomainError("division by zero")
	}
	ar, br := a.rat(), b.rat()
	q := new(big.Rat).Quo(ar, br)
	return ratToDecimal(q, decimalDivisionPrecision), nil
}

// ratToDecimal converts an exact rational into a Decimal with exactly
// digits digits after the decimal point, truncating the magnitude of any
// remainder beyond them.
func ratToDecimal(r *big.Rat, digits int) *Decimal {
	neg := r.Sign() < 0
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	scaled := new(big.Int).Mul(num, scale)
	q := new(big.Int).Quo(scaled, den)
	return newDecimalFromParts(neg, q, -digits)
}

func decimalCmp(a, b *Decimal) int {
	return a.rat().Cmp(b.rat())
}

// --- Integer bridge over goarith ---

// integerBigInt bridges an opaque goarith.Number back to a math/big.Int.
// goarith's concrete types are not part of its exported contract this
// rewrite can safely depend on beyond Number's own interface, so the
// bridge goes through the number's own decimal text form, which every
// goarith.Number renders via fmt.Stringer.
func integerBigInt(n goarith.Number) *big.Int {
	s := fmt.Sprintf("%v", n)
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(newDomainError("integer value is not representable as a base-10 integer: " + s))
	}
	return z
}

func integerFromBigInt(z *big.Int) *Integer {
	return NewInteger(goarith.AsNumber(z))
}

// floorDivInt implements spec.md's "integer / rounds toward negative
// infinity" rule, which differs from goarith's own division semantics.
func floorDivInt(a, b *Integer) (*Integer, error) {
	az, bz := integerBigInt(a.Num), integerBigInt(b.Num)
	if bz.Sign() == 0 {
		return nil, newDomainError("division by zero")
	}
	q, m := new(big.Int), new(big.Int)
	q.QuoRem(az, bz, m)
	if m.Sign() != 0 && (m.Sign() < 0) != (bz.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return integerFromBigInt(q), nil
}

// --- Mixed integer/decimal promotion for arithmetic and comparisons ---

func asDecimal(v Value) (*Decimal, bool) {
	switch x := v.(type) {
	case *Decimal:
		return x, true
	case *Integer:
		return newDecimalFromParts(integerBigInt(x.Num).Sign() < 0, integerBigInt(x.Num), 0), true
	default:
		return nil, false
	}
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case *Integer, *Decimal:
		return true
	default:
		return false
	}
}

// numericAdd, numericSub, numericMul implement spec.md §6.2's promotion
// rule: integer arithmetic stays integer unless a decimal operand is
// present, in which case the whole operation promotes to decimal.
// Integer-integer arithmetic calls goarith.Number's own Add/Sub/Mul
// directly, the same way the teacher's own "+"/"-"/"*" builtins do
// (scm.go: `goarith.AsNumber(a).Add(goarith.AsNumber(b))`), rather than
// bouncing through a math/big.Int round trip.
func numericAdd(a, b Value) (Value, error) {
	if ai, ok := a.(*Integer); ok {
		if bi, ok := b.(*Integer); ok {
			return NewInteger(ai.Num.Add(bi.Num)), nil
		}
	}
	ad, ok1 := asDecimal(a)
	bd, ok2 := asDecimal(b)
	if !ok1 || !ok2 {
		return nil, newTypeError("expected a number")
	}
	return decimalAdd(ad, bd), nil
}

func numericSub(a, b Value) (Value, error) {
	if ai, ok := a.(*Integer); ok {
		if bi, ok := b.(*Integer); ok {
			return NewInteger(ai.Num.Sub(bi.Num)), nil
		}
	}
	ad, ok1 := asDecimal(a)
	bd, ok2 := asDecimal(b)
	if !ok1 || !ok2 {
		return nil, newTypeError("expected a number")
	}
	return decimalSub(ad, bd), nil
}

func numericMul(a, b Value) (Value, error) {
	if ai, ok := a.(*Integer); ok {
		if bi, ok := b.(*Integer); ok {
			return NewInteger(ai.Num.Mul(bi.Num)), nil
		}
	}
	ad, ok1 := asDecimal(a)
	bd, ok2 := asDecimal(b)
	if !ok1 || !ok2 {
		return nil, newTypeError("expected a number")
	}
	return decimalMul(ad, bd), nil
}

func numericDiv(a, b Value) (Value, error) {
	if ai, ok := a.(*Integer); ok {
		if bi, ok := b.(*Integer); ok {
			return floorDivInt(ai, bi)
		}
	}
	ad, ok1 := asDecimal(a)
	bd, ok2 := asDecimal(b)
	if !ok1 || !ok2 {
		return nil, newTypeError("expected a number")
	}
	return decimalDiv(ad, bd)
}

// numericCmp compares two numeric values by magnitude, promoting to
// decimal comparison whenever either operand is a decimal. The
// integer-integer case calls goarith.Number.Cmp directly, matching the
// teacher's own "<"/"=" builtins.
func numericCmp(a, b Value) (int, error) {
	if ai, ok := a.(*Integer); ok {
		if bi, ok := b.(*Integer); ok {
			return ai.Num.Cmp(bi.Num), nil
		}
	}
	ad, ok1 := asDecimal(a)
	bd, ok2 := asDecimal(b)
	if !ok1 || !ok2 {
		return 0, newTypeError("expected a number")
	}
	return decimalCmp(ad, bd), nil
}

var zeroNumber = goarith.AsNumber(big.NewInt(0))

// numericIsZero reports whether a numeric value is exactly zero
// (including negative zero decimals), used by the truthiness rule.
func numericIsZero(v Value) bool {
	switch x := v.(type) {
	case *Integer:
		return x.Num.Cmp(zeroNumber) == 0
	case *Decimal:
		return x.isZero()
	}
	return false
}
