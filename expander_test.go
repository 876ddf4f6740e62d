package actinide

import "testing"

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession()
}

func testExpand(t *testing.T, s *Session, input, want string) {
	t.Helper()
	form, err := s.Read(NewStringPort(input))
	if err != nil {
		t.Fatalf("Read(%q): %v", input, err)
	}
	expanded, err := s.Expand(form)
	if err != nil {
		t.Fatalf("Expand(%q): %v", input, err)
	}
	if got := Display(expanded); got != want {
		t.Fatalf("Expand(%q) = %q, want %q", input, got, want)
	}
}

func TestExpandLeavesQuoteLiteral(t *testing.T) {
	s := newTestSession(t)
	testExpand(t, s, "(quote (a b c))", "(quote (a b c))")
}

func TestExpandDefineProcedureShorthand(t *testing.T) {
	s := newTestSession(t)
	testExpand(t, s, "(define (add x y) (+ x y))", "(define add (lambda (x y) (+ x y)))")
}

func TestExpandQuasiquoteWithNoUnquotes(t *testing.T) {
	s := newTestSession(t)
	form, err := s.Read(NewStringPort("`(a b c)"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	expanded, err := s.Expand(form)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	results, err := s.Eval(expanded)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	original, err := s.Read(NewStringPort("(a b c)"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !equalValue(results[0], original) {
		t.Fatalf("expected `(a b c) to evaluate to (a b c), got %s", Display(results[0]))
	}
}

func TestExpandQuasiquoteWithUnquote(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Run("(define x 5)"); err != nil {
		t.Fatalf("define x: %v", err)
	}
	results, err := s.Run("`(a ,x c)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := Display(results[0]); got != "(a 5 c)" {
		t.Fatalf("expected (a 5 c), got %s", got)
	}
}

func TestExpandQuasiquoteWithUnquoteSplicing(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Run("(define xs (list 1 2 3))"); err != nil {
		t.Fatalf("define xs: %v", err)
	}
	results, err := s.Run("`(a ,@xs c)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := Display(results[0]); got != "(a 1 2 3 c)" {
		t.Fatalf("expected (a 1 2 3 c), got %s", got)
	}
}

func TestMacroExpansionReachesFixedPoint(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Run("(define-macro (m1 x) (list 'm2 x))"); err != nil {
		t.Fatalf("define m1: %v", err)
	}
	if _, err := s.Run("(define-macro (m2 x) (list '+ x 1))"); err != nil {
		t.Fatalf("define m2: %v", err)
	}
	results, err := s.Run("(m1 41)")
	if err != nil {
		t.Fatalf("run (m1 41): %v", err)
	}
	if got := Display(results[0]); got != "42" {
		t.Fatalf("expected chained macro expansion m1->m2 to yield 42, got %s", got)
	}
}

func TestNonTerminatingMacroExpansionIsCaughtAsExpansionError(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Run("(define-macro (loop x) (list 'loop x))"); err != nil {
		t.Fatalf("defining loop: %v", err)
	}
	_, err := s.Run("(loop 1)")
	if err == nil {
		t.Fatalf("expected a non-terminating macro expansion to be caught")
	}
	ae, ok := err.(*ActinideError)
	if !ok {
		t.Fatalf("expected *ActinideError, got %T", err)
	}
	if ae.Kind != ExpansionErrorKind {
		t.Fatalf("expected ExpansionErrorKind, got %s", ae.Kind)
	}
}

func TestDefineMacroNestedInBodyDoesNotAffectCurrentExpansion(t *testing.T) {
	s := newTestSession(t)
	// `later` is defined inside the body being expanded/evaluated; it must
	// not be visible to the expansion of the very form that defines it,
	// only to subsequently read top-level forms.
	testRunErrorOn(t, s, "(begin (define-macro (later x) (list 'quote x)) (later foo))", UnboundSymbolKind)
	if _, err := s.Run("(begin (define-macro (later x) (list 'quote x)) 1)"); err != nil {
		t.Fatalf("run: %v", err)
	}
	results, err := s.Run("(later foo)")
	if err != nil {
		t.Fatalf("using later after its defining form completed: %v", err)
	}
	if got := Display(results[0]); got != "foo" {
		t.Fatalf("expected quoted foo, got %s", got)
	}
}
