package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestElaborateSourceReportsNoDiagnosticsOnSuccess(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.ElaborateSource("axiom T : Sort 0", "t.kibi", &out)

	if !r.OK() {
		t.Fatalf("OK() = false after a well-formed axiom; output: %s", out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output for a well-formed axiom: %q", out.String())
	}
}

func TestElaborateSourcePrintsDiagnostic(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.ElaborateSource("def bad := doesNotExist", "t.kibi", &out)

	if r.OK() {
		t.Fatalf("OK() = true, expected an unresolved-name diagnostic")
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("output = %q, want an error: line", out.String())
	}
}

func TestElaborateSourcePrintsReduceResult(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.ElaborateSource("axiom T : Sort 0\nreduce T", "t.kibi", &out)

	if !r.OK() {
		t.Fatalf("unexpected diagnostics, output: %s", out.String())
	}
	if !strings.Contains(out.String(), "g") {
		t.Fatalf("expected the reduced term in output, got %q", out.String())
	}
}

func TestSuppressReductionsHidesOutput(t *testing.T) {
	r := New()
	r.SetSuppressReductions(true)
	var out bytes.Buffer
	r.ElaborateSource("axiom T : Sort 0\nreduce T", "t.kibi", &out)

	if !r.OK() {
		t.Fatalf("unexpected diagnostics, output: %s", out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output with SuppressReductions, got %q", out.String())
	}
}

func TestHandleCommandResetClearsEnvironment(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.ElaborateSource("axiom T : Sort 0", "t.kibi", &out)

	if quit := r.HandleCommand(":reset", &out); quit {
		t.Fatalf(":reset should not quit the REPL")
	}
	if !r.OK() {
		t.Fatalf("OK() = false after :reset, want a clean slate")
	}

	out.Reset()
	r.showSymbol("T", &out)
	if !strings.Contains(out.String(), "unresolved") {
		t.Fatalf("expected T to be gone after :reset, got %q", out.String())
	}
}

func TestHandleCommandQuit(t *testing.T) {
	r := New()
	var out bytes.Buffer
	if quit := r.HandleCommand(":quit", &out); !quit {
		t.Fatalf(":quit should signal the session to end")
	}
}

func TestHandleCommandEnvAndList(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.ElaborateSource("axiom T : Sort 0", "t.kibi", &out)

	out.Reset()
	r.HandleCommand(":env T", &out)
	if !strings.Contains(out.String(), "T") {
		t.Fatalf(":env T output = %q, want it to mention T", out.String())
	}

	out.Reset()
	r.HandleCommand(":list", &out)
	if !strings.Contains(out.String(), "T") {
		t.Fatalf(":list output = %q, want it to mention T", out.String())
	}
}

func TestDeclarationLooksComplete(t *testing.T) {
	if !declarationLooksComplete("axiom T : Sort 0") {
		t.Fatalf("a plain axiom line should look complete")
	}
	if declarationLooksComplete("inductive Bit : Sort 0 |") {
		t.Fatalf("a line ending in | should look incomplete")
	}
	if declarationLooksComplete("def x :=") {
		t.Fatalf("a line ending in := should look incomplete")
	}
}
