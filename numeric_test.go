package actinide

import (
	"math/big"
	"testing"
)

func mustInt(t *testing.T, text string) *Integer {
	t.Helper()
	iv, ok := tryParseInteger(text)
	if !ok {
		t.Fatalf("expected %q to parse as an integer", text)
	}
	return iv
}

func mustDecimal(t *testing.T, text string) *Decimal {
	t.Helper()
	dv, ok := tryParseDecimal(text)
	if !ok {
		t.Fatalf("expected %q to parse as a decimal", text)
	}
	return dv
}

func TestDecimalStringRoundTrip(t *testing.T) {
	cases := []string{"0.0", "3.14", "-3.14", "100.0", "0.001", "-0.001"}
	for _, c := range cases {
		d := mustDecimal(t, c)
		if got := d.String(); got != c {
			t.Errorf("Decimal(%q).String() = %q, want %q", c, got, c)
		}
	}
}

func TestDecimalAddSubMulAgreeWithRat(t *testing.T) {
	a := mustDecimal(t, "1.25")
	b := mustDecimal(t, "2.5")
	if got := decimalAdd(a, b).String(); got != "3.75" {
		t.Errorf("1.25 + 2.5 = %s, want 3.75", got)
	}
	if got := decimalSub(a, b).String(); got != "-1.25" {
		t.Errorf("1.25 - 2.5 = %s, want -1.25", got)
	}
	if got := decimalMul(a, b).String(); got != "3.125" {
		t.Errorf("1.25 * 2.5 = %s, want 3.125", got)
	}
}

func TestDecimalDivisionByZeroIsDomainError(t *testing.T) {
	a := mustDecimal(t, "1.0")
	zero := mustDecimal(t, "0.0")
	_, err := decimalDiv(a, zero)
	if err == nil {
		t.Fatalf("expected an error dividing by zero")
	}
	if ae, ok := err.(*ActinideError); !ok || ae.Kind != DomainErrorKind {
		t.Fatalf("expected a domain error, got %v", err)
	}
}

func TestFloorDivRoundsTowardNegativeInfinity(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}
	for _, c := range cases {
		a := integerFromBigInt(big.NewInt(c.a))
		b := integerFromBigInt(big.NewInt(c.b))
		got, err := floorDivInt(a, b)
		if err != nil {
			t.Fatalf("floorDivInt(%d, %d): %v", c.a, c.b, err)
		}
		if integerBigInt(got.Num).Int64() != c.want {
			t.Errorf("floorDivInt(%d, %d) = %s, want %d", c.a, c.b, integerBigInt(got.Num), c.want)
		}
	}
}

func TestNumericCmpPromotesAcrossIntegerAndDecimal(t *testing.T) {
	i := mustInt(t, "10")
	d := mustDecimal(t, "10.0")
	cmp, err := numericCmp(i, d)
	if err != nil {
		t.Fatalf("numericCmp: %v", err)
	}
	if cmp != 0 {
		t.Fatalf("expected 10 = 10.0 numerically, got cmp=%d", cmp)
	}
}

func TestNumericIsZeroCoversNegativeZero(t *testing.T) {
	negZero := mustDecimal(t, "-0.0")
	if !numericIsZero(negZero) {
		t.Fatalf("expected -0.0 to be numerically zero")
	}
}

func TestIntegerAdditionStaysIntegerUnlessDecimalPresent(t *testing.T) {
	a, b := mustInt(t, "2"), mustInt(t, "3")
	sum, err := numericAdd(a, b)
	if err != nil {
		t.Fatalf("numericAdd: %v", err)
	}
	if _, ok := sum.(*Integer); !ok {
		t.Fatalf("expected integer + integer to stay integer, got %T", sum)
	}
	mixed, err := numericAdd(a, mustDecimal(t, "0.5"))
	if err != nil {
		t.Fatalf("numericAdd: %v", err)
	}
	if _, ok := mixed.(*Decimal); !ok {
		t.Fatalf("expected integer + decimal to promote to decimal, got %T", mixed)
	}
}
