package elaborate

import (
	"testing"

	"github.com/kibi-lang/kibi/internal/env"
	"github.com/kibi-lang/kibi/internal/ivar"
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// natPrelude declares Nat as a real inductive over the environment's
// predeclared Nat/Nat.zero/Nat.succ slots, so numeral literals (which
// reference those predeclared symbol ids directly) get a real type once
// this item has elaborated.
const natPrelude = `inductive Nat : Sort 0
	| zero
	| succ (n : Nat)
`

// S1: reducing a direct application of Nat's own eliminator computes
// ordinary addition by recursion on the second argument.
func TestScenarioS1DirectRecursorApplication(t *testing.T) {
	e := elaborateSource(t, natPrelude+`
reduce (fun (a b : Nat) => Nat.rec (fun (k : Nat) => Nat) a (fun (n r : Nat) => Nat.succ r) b) 1 2`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	if len(e.Reductions) != 1 {
		t.Fatalf("len(Reductions) = %d, want 1", len(e.Reductions))
	}
	if !term.SyntaxEq(e.Reductions[0].Normal, natLiteral(3)) {
		t.Fatalf("reduced term = %s, want %s", e.Reductions[0].Normal, natLiteral(3))
	}
}

// S2: the same computation through a named def behaves identically.
func TestScenarioS2NamedDefAroundRecursor(t *testing.T) {
	e := elaborateSource(t, natPrelude+`
def add (a b : Nat) : Nat := Nat.rec (fun (k : Nat) => Nat) a (fun (n r : Nat) => Nat.succ r) b
reduce add 1 2`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	if len(e.Reductions) != 1 {
		t.Fatalf("len(Reductions) = %d, want 1", len(e.Reductions))
	}
	if !term.SyntaxEq(e.Reductions[0].Normal, natLiteral(3)) {
		t.Fatalf("reduced term = %s, want %s", e.Reductions[0].Normal, natLiteral(3))
	}
}

// S3: a universe-polymorphic identity function instantiated at Nat and
// applied to a numeral literal reduces back to that same literal.
func TestScenarioS3PolymorphicIdentity(t *testing.T) {
	e := elaborateSource(t, natPrelude+`
def id {u} (T : Sort u) (x : T) : T := x
reduce id Nat 5`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	if len(e.Reductions) != 1 {
		t.Fatalf("len(Reductions) = %d, want 1", len(e.Reductions))
	}
	if !term.SyntaxEq(e.Reductions[0].Normal, natLiteral(5)) {
		t.Fatalf("reduced term = %s, want %s", e.Reductions[0].Normal, natLiteral(5))
	}
}

// S4: a universe-polymorphic List inductive with one index-free parameter
// publishes a type former, two constructors and an eliminator shaped
// `forall {u} (T : Sort u) (motive : List T -> Sort v) (mn : motive
// List.nil) (mc : forall h t, motive t -> motive (List.cons h t)) (l :
// List T), motive l`.
func TestScenarioS4ListInductiveShape(t *testing.T) {
	e := elaborateSource(t, `inductive List {u} (T : Sort u) : Sort 0
	| nil
	| cons (head : T) (tail : List T)
`)
	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}

	listID, ok := e.Env.Lookup(env.Root, "List")
	if !ok {
		t.Fatalf("List was not published")
	}
	sym := e.Env.Symbol(listID)
	if sym.Kind != env.KindIndAxiom || sym.IndAxiom.Kind != env.TypeFormer {
		t.Fatalf("List is not a resolved TypeFormer: %+v", sym)
	}

	if _, ok := e.Env.Lookup(listID, "nil"); !ok {
		t.Fatalf("List.nil was not published")
	}
	if _, ok := e.Env.Lookup(listID, "cons"); !ok {
		t.Fatalf("List.cons was not published")
	}
	elimID, ok := e.Env.Lookup(listID, "rec")
	if !ok {
		t.Fatalf("List.rec was not published")
	}
	elimSym := e.Env.Symbol(elimID)
	if elimSym.Kind != env.KindIndAxiom || elimSym.IndAxiom.Kind != env.Eliminator {
		t.Fatalf("List.rec is not a resolved Eliminator: %+v", elimSym)
	}
	if elimSym.IndAxiom.NumParams != 1 {
		t.Fatalf("List.rec NumParams = %d, want 1", elimSym.IndAxiom.NumParams)
	}
	if elimSym.IndAxiom.NumMinors != 2 {
		t.Fatalf("List.rec NumMinors = %d, want 2", elimSym.IndAxiom.NumMinors)
	}
}

// S5: checking an untyped lambda against an explicit Forall type succeeds
// and leaves no unresolved metavariables in the result.
func TestScenarioS5CheckingModeInfersBinderType(t *testing.T) {
	e := elaborateSource(t, natPrelude+`
def idNat : forall (x : Nat), Nat := fun x => x`)

	if !e.Sink.OK() {
		t.Fatalf("unexpected diagnostics: %v", e.Sink.Diagnostics())
	}
	id, ok := e.Env.Lookup(env.Root, "idNat")
	if !ok {
		t.Fatalf("idNat was not published")
	}
	def := e.Env.Symbol(id).Def
	if !term.ClosedNoLocalNoIVar(def.Val) {
		t.Fatalf("idNat's value still has unresolved metavariables: %s", def.Val)
	}
}

// S6: a metavariable's scope is checked against the local it would be
// assigned to — a local introduced strictly inside a lambda body cannot
// escape into an ivar created outside that lambda.
func TestScenarioS6IvarScopeViolationRejected(t *testing.T) {
	iv := ivar.New()
	ctx := term.NewLocalCtx()

	outerScope, hasOuterScope := ctx.TopScope() // (0, false): nothing pushed yet
	hole := iv.NewTermVarInScope(term.MkSort(level.MkZero()), outerScope, hasOuterScope)
	holeID := hole.(term.IVar).ID

	innerID, _ := ctx.Push(term.Explicit, "x", term.MkSort(level.MkZero()), nil)

	if _, ok := iv.CheckValueForAssign(ctx, term.MkLocal(innerID), holeID); ok {
		t.Fatalf("assigning an inner local into an outer-scoped ivar should be rejected")
	}

	// The same local, once visible at the point the ivar was created
	// (here: trivially, since ctx.TopScope() now reports it), is fine.
	sameScope, hasSameScope := ctx.TopScope()
	innerHole := iv.NewTermVarInScope(term.MkSort(level.MkZero()), sameScope, hasSameScope)
	innerHoleID := innerHole.(term.IVar).ID
	if _, ok := iv.CheckValueForAssign(ctx, term.MkLocal(innerID), innerHoleID); !ok {
		t.Fatalf("assigning a local within the ivar's own scope should succeed")
	}
}
