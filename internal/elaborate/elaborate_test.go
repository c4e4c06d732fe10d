package elaborate

import (
	"testing"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/surface"
	"github.com/kibi-lang/kibi/internal/term"
)

func elaborateSource(t *testing.T, src string) *Elaborator {
	t.Helper()
	l := surface.New(src, "t.kibi")
	p := surface.NewParser(l, "t.kibi")
	parse := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	e := New()
	e.ElaborateFile(parse)
	return e
}

func TestElabAxiomAndDef(t *testing.T) {
	e := elaborateSource(t, `axiom T : Sort 0
axiom mkT : T
def alias : T := mkT`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	id, ok := e.Env.Lookup(env.Root, "alias")
	if !ok {
		t.Fatalf("alias was not published")
	}
	if e.Env.Symbol(id).Kind != env.KindDef {
		t.Fatalf("alias is not a KindDef symbol: %+v", e.Env.Symbol(id))
	}
}

func TestElabDefTypeMismatchReportsDiagnostic(t *testing.T) {
	e := elaborateSource(t, `axiom T : Sort 0
axiom U : Sort 0
axiom mkU : U
def bad : T := mkU`)

	if e.Sink.OK() {
		t.Fatalf("expected a type-mismatch diagnostic, got none")
	}
}

func TestElabImplicitArgInsertion(t *testing.T) {
	e := elaborateSource(t, `axiom T : Sort 0
axiom mkT : T
axiom f : forall {A : Sort 0}, A -> A
def result := f mkT`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	if _, ok := e.Env.Lookup(env.Root, "result"); !ok {
		t.Fatalf("result was not published")
	}
}

func TestElabInductiveBit(t *testing.T) {
	e := elaborateSource(t, `inductive Bit : Sort 0
		| zero
		| one
reduce Bit.zero`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	bitID, ok := e.Env.Lookup(env.Root, "Bit")
	if !ok {
		t.Fatalf("Bit was not published")
	}
	if e.Env.Symbol(bitID).Kind != env.KindIndAxiom {
		t.Fatalf("Bit is not a resolved inductive: %+v", e.Env.Symbol(bitID))
	}
	if _, ok := e.Env.Lookup(bitID, "zero"); !ok {
		t.Fatalf("Bit.zero was not published")
	}
	if _, ok := e.Env.Lookup(bitID, "rec"); !ok {
		t.Fatalf("Bit.rec (eliminator) was not published")
	}
	if len(e.Reductions) != 1 {
		t.Fatalf("len(Reductions) = %d, want 1", len(e.Reductions))
	}
}

func TestElabInductiveConstructorUseInDef(t *testing.T) {
	e := elaborateSource(t, `inductive Bit : Sort 0
		| zero
		| one
def useBit := Bit.zero`)
	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	id, ok := e.Env.Lookup(env.Root, "useBit")
	if !ok {
		t.Fatalf("useBit was not published")
	}
	bitID, _ := e.Env.Lookup(env.Root, "Bit")
	if got, want := e.Env.TypeOf(id), term.MkGlobal(bitID, nil); !term.SyntaxEq(got, want) {
		t.Fatalf("useBit's type = %s, want %s", got, want)
	}
}

func TestUnresolvedNameReportsDiagnostic(t *testing.T) {
	e := elaborateSource(t, `def bad := doesNotExist`)
	if e.Sink.OK() {
		t.Fatalf("expected an unresolved-name diagnostic, got none")
	}
}

func TestNameCollisionReportsDiagnostic(t *testing.T) {
	e := elaborateSource(t, `axiom T : Sort 0
axiom T : Sort 0`)
	if e.Sink.OK() {
		t.Fatalf("expected a name-collision diagnostic, got none")
	}
}

func TestDeclarationHasIvarsReported(t *testing.T) {
	e := elaborateSource(t, `def withHole := fun x => x`)
	if e.Sink.OK() {
		t.Fatalf("expected a diagnostic for an unresolved binder type, got none")
	}
	found := false
	for _, d := range e.Sink.Diagnostics() {
		if d.Code == "ELB012" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ELB012 DeclarationHasIvars among diagnostics: %v", e.Sink.Diagnostics())
	}
}
