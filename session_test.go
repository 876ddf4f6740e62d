package actinide

import (
	"math/big"
	"testing"
)

func testRun(t *testing.T, input string, want string) {
	t.Helper()
	s := NewSession()
	results, err := s.Run(input)
	if err != nil {
		t.Fatalf("run %q: %v", input, err)
	}
	if len(results) != 1 {
		t.Fatalf("run %q: expected exactly one result value, got %d", input, len(results))
	}
	if got := Display(results[0]); got != want {
		t.Fatalf("run %q: expected %s, got %s", input, want, got)
	}
}

func testRunError(t *testing.T, input string, kind ErrorKind) {
	t.Helper()
	s := NewSession()
	_, err := s.Run(input)
	if err == nil {
		t.Fatalf("run %q: expected an error", input)
	}
	ae, ok := err.(*ActinideError)
	if !ok {
		t.Fatalf("run %q: expected *ActinideError, got %T", input, err)
	}
	if ae.Kind != kind {
		t.Fatalf("run %q: expected error kind %s, got %s", input, kind, ae.Kind)
	}
}

// --- spec.md §8's concrete end-to-end scenarios ---

func TestArithmeticScenario(t *testing.T) {
	testRun(t, "(+ 1 2 3)", "6")
}

func TestClosureCapturesDefinedBinding(t *testing.T) {
	testRun(t, "(begin (define x 5) (lambda () x) ((lambda () x)))", "5")
}

func TestIfTruthiness(t *testing.T) {
	testRun(t, "(if (= 0 0) 'yes 'no)", "yes")
	testRun(t, `(if "" 'yes 'no)`, "no")
}

func TestDefineMacroProcedureShorthand(t *testing.T) {
	s := NewSession()
	if _, err := s.Run("(define-macro (let-one b body) `((lambda (,(head b)) ,body) ,(head (tail b))))"); err != nil {
		t.Fatalf("defining let-one: %v", err)
	}
	results, err := s.Run("(let-one (x 1) (+ x 2))")
	if err != nil {
		t.Fatalf("using let-one: %v", err)
	}
	if got := Display(results[0]); got != "3" {
		t.Fatalf("expected 3, got %s", got)
	}
}

func TestTailRecursiveFactorialDoesNotOverflow(t *testing.T) {
	s := NewSession()
	if _, err := s.Run("(define (fact n a) (if (= n 1) a (fact (- n 1) (* n a))))"); err != nil {
		t.Fatalf("defining fact: %v", err)
	}
	results, err := s.Run("(fact 1000 1)")
	if err != nil {
		t.Fatalf("tail-recursive fact 1000 should not error, got: %v", err)
	}
	if _, ok := results[0].(*Integer); !ok {
		t.Fatalf("expected an integer result, got %T", results[0])
	}
}

func TestNonTailRecursionExceedsDepth(t *testing.T) {
	s := NewSession()
	if _, err := s.Run("(define (count-down n) (if (= n 0) 0 (+ 1 (count-down (- n 1)))))"); err != nil {
		t.Fatalf("defining count-down: %v", err)
	}
	testRunErrorOn(t, s, "(count-down 1000000)", RecursionDepthKind)
}

func testRunErrorOn(t *testing.T, s *Session, input string, kind ErrorKind) {
	t.Helper()
	_, err := s.Run(input)
	if err == nil {
		t.Fatalf("run %q: expected an error", input)
	}
	ae, ok := err.(*ActinideError)
	if !ok {
		t.Fatalf("run %q: expected *ActinideError, got %T", input, err)
	}
	if ae.Kind != kind {
		t.Fatalf("run %q: expected error kind %s, got %s", input, kind, ae.Kind)
	}
}

func TestMultipleValuesSpliceIntoApplication(t *testing.T) {
	testRun(t, "(= (values 53 53))", "#t")
	testRun(t, "(+ (values 1 2) 3)", "6")
}

// --- let prelude ---

func TestLetPrelude(t *testing.T) {
	testRun(t, "(let ((x 1)) x)", "1")
	testRun(t, "(let ((x 1) (y 2)) (+ x y))", "3")
}

// --- basic error kinds ---

func TestUnboundSymbolError(t *testing.T) {
	testRunError(t, "unbound-name", UnboundSymbolKind)
}

func TestArityErrorOnLambdaApplication(t *testing.T) {
	testRunError(t, "((lambda (x y) x) 1)", ArityErrorKind)
}

func TestDivisionByZeroIsDomainError(t *testing.T) {
	testRunError(t, "(/ 1 0)", DomainErrorKind)
}

func TestApplyingNonProcedureIsTypeError(t *testing.T) {
	testRunError(t, "(1 2 3)", TypeErrorKind)
}

// --- Session façade adapters ---

func TestBindVoidFnProc(t *testing.T) {
	s := NewSession()
	var sawArgs []Value
	s.BindVoid("record!", func(args []Value) error {
		sawArgs = args
		return nil
	})
	s.BindFn("double", func(args []Value) (Value, error) {
		wantArgs("double", args, 1)
		i, ok := args[0].(*Integer)
		if !ok {
			return nil, newTypeError("double: expected an integer")
		}
		return numericAdd(i, i)
	})
	s.BindProc("pair-up", func(args []Value) ([]Value, error) {
		wantArgs("pair-up", args, 2)
		return []Value{args[0], args[1]}, nil
	})

	if _, err := s.Run(`(record! 1 2 3)`); err != nil {
		t.Fatalf("record!: %v", err)
	}
	if len(sawArgs) != 3 {
		t.Fatalf("expected record! to see 3 args, got %d", len(sawArgs))
	}
	testSessionRun(t, s, "(double 21)", "42")
	testSessionRun(t, s, "(pair-up 1 2)", "1\n2")
}

func testSessionRun(t *testing.T, s *Session, input, want string) {
	t.Helper()
	results, err := s.Run(input)
	if err != nil {
		t.Fatalf("run %q: %v", input, err)
	}
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = Display(v)
	}
	got := parts[0]
	for _, p := range parts[1:] {
		got += "\n" + p
	}
	if got != want {
		t.Fatalf("run %q: expected %s, got %s", input, want, got)
	}
}

func TestMacroBindFn(t *testing.T) {
	s := NewSession()
	s.MacroBindFn("twice", func(args []Value) (Value, error) {
		wantArgs("twice", args, 1)
		return list(s.Specials.Begin, args[0], args[0]), nil
	})
	results, err := s.Run("(begin (define counter 0) (twice (define counter (+ counter 1))) counter)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if Display(results[0]) != "2" {
		t.Fatalf("expected 2, got %s", Display(results[0]))
	}
}

func TestGetAndCallProcedure(t *testing.T) {
	s := NewSession()
	if _, err := s.Run("(define (square x) (* x x))"); err != nil {
		t.Fatalf("defining square: %v", err)
	}
	proc, ok := s.Get("square")
	if !ok {
		t.Fatalf("expected square to be bound")
	}
	results, err := s.Call(proc, integerFromBigInt(big.NewInt(7)))
	if err != nil {
		t.Fatalf("calling square: %v", err)
	}
	if Display(results[0]) != "49" {
		t.Fatalf("expected 49, got %s", Display(results[0]))
	}
}
