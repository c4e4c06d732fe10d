// Package term implements the kernel term language: de Bruijn indexed
// dependently-typed lambda terms, together with the local context that
// gives meaning to free ("Local") variables.
package term

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/level"
)

// GlobalID names an environment symbol. Defined here (rather than in
// package env) so that Term.Global can reference it without env importing
// term for the reverse reason — env needs Term for Def/IndAxiom bodies.
type GlobalID uint32

// IVarID names a term metavariable; the store lives in package ivar.
type IVarID uint32

// BinderKind classifies a Forall/Lambda parameter the way the surface
// syntax distinguishes them: `(x : T)`, `{x : T}`, `[x : T]`.
type BinderKind int

const (
	Explicit BinderKind = iota
	Implicit
	Instance
)

func (k BinderKind) String() string {
	switch k {
	case Implicit:
		return "implicit"
	case Instance:
		return "instance"
	default:
		return "explicit"
	}
}

// Flags are precomputed at construction and propagated compositionally.
type Flags struct {
	Closed    bool // no dangling Bound variables
	HasLocals bool // mentions a Local
	HasIVars  bool // mentions an unresolved IVar
	loose     uint32 // one past the largest dangling Bound index; 0 when Closed
}

// Term is the kernel expression language. Variants: Sort, Bound, Local,
// Global, IVar, Forall, Lambda, Apply.
type Term interface {
	Flags() Flags
	String() string
	isTerm()
}

type base struct{ f Flags }

func (b base) Flags() Flags { return b.f }

// Closed reports whether t has no dangling Bound variables.
func Closed(t Term) bool { return t.Flags().Closed }

// HasLocals reports whether t mentions any Local.
func HasLocals(t Term) bool { return t.Flags().HasLocals }

// HasIVars reports whether t mentions any unresolved IVar.
func HasIVars(t Term) bool { return t.Flags().HasIVars }

// ClosedNoLocalNoIVar is the invariant required of every published symbol
// body: closed, no locals, no ivars.
func ClosedNoLocalNoIVar(t Term) bool {
	f := t.Flags()
	return f.Closed && !f.HasLocals && !f.HasIVars
}

// Sort is a universe.
type Sort struct {
	base
	Level level.Level
}

func (Sort) isTerm() {}
func (s Sort) String() string { return fmt.Sprintf("Sort %s", s.Level) }

// Bound is a de Bruijn index; it only ever appears inside an unabstracted
// binder body and never at the top of a closed term.
type Bound struct {
	base
	Index uint32
}

func (Bound) isTerm() {}
func (b Bound) String() string { return fmt.Sprintf("#%d", b.Index) }

// Local is a free variable resolving through the LocalCtx.
type Local struct {
	base
	ID ScopeID
}

func (Local) isTerm() {}
func (l Local) String() string { return fmt.Sprintf("$%d", l.ID) }

// Global references an environment symbol instantiated at given universes.
type Global struct {
	base
	ID     GlobalID
	Levels []level.Level
}

func (Global) isTerm() {}
func (g Global) String() string { return fmt.Sprintf("g%d", g.ID) }

// IVar is a term metavariable.
type IVar struct {
	base
	ID IVarID
}

func (IVar) isTerm() {}
func (v IVar) String() string { return fmt.Sprintf("?m%d", v.ID) }

// Binder is the shared shape of Forall and Lambda.
type Binder struct {
	base
	Kind BinderKind
	Name string
	Ty   Term
	Body Term // uses Bound(0) for the newly bound variable
}

// Forall is a dependent product / Pi type.
type Forall struct{ Binder }

func (Forall) isTerm() {}
func (f Forall) String() string { return fmt.Sprintf("forall (%s : %s), %s", f.Name, f.Ty, f.Body) }

// Lambda is a dependent function abstraction.
type Lambda struct{ Binder }

func (Lambda) isTerm() {}
func (l Lambda) String() string { return fmt.Sprintf("fun (%s : %s) => %s", l.Name, l.Ty, l.Body) }

// Apply is curried application.
type Apply struct {
	base
	Fun, Arg Term
}

func (Apply) isTerm() {}
func (a Apply) String() string { return fmt.Sprintf("(%s %s)", a.Fun, a.Arg) }

// Constructors derive flags compositionally.

func MkSort(l level.Level) Term { return Sort{base{Flags{Closed: true}}, l} }

func MkBound(index uint32) Term {
	return Bound{base{Flags{Closed: false, loose: index + 1}}, index}
}

func MkLocal(id ScopeID) Term {
	return Local{base{Flags{Closed: true, HasLocals: true}}, id}
}

func MkGlobal(id GlobalID, levels []level.Level) Term {
	return Global{base{Flags{Closed: true}}, id, levels}
}

func MkIVar(id IVarID) Term {
	return IVar{base{Flags{Closed: true, HasIVars: true}}, id}
}

func MkForall(kind BinderKind, name string, ty, body Term) Term {
	return Forall{mkBinder(kind, name, ty, body)}
}

func MkLambda(kind BinderKind, name string, ty, body Term) Term {
	return Lambda{mkBinder(kind, name, ty, body)}
}

func mkBinder(kind BinderKind, name string, ty, body Term) Binder {
	tf, bf := ty.Flags(), body.Flags()
	// Bound(0) in the body refers to this binder, so it is not dangling here.
	loose := tf.loose
	if bf.loose > 1 && bf.loose-1 > loose {
		loose = bf.loose - 1
	}
	return Binder{
		base: base{Flags{
			Closed:    loose == 0,
			HasLocals: tf.HasLocals || bf.HasLocals,
			HasIVars:  tf.HasIVars || bf.HasIVars,
			loose:     loose,
		}},
		Kind: kind,
		Name: name,
		Ty:   ty,
		Body: body,
	}
}

func MkApply(fun, arg Term) Term {
	ff, af := fun.Flags(), arg.Flags()
	loose := ff.loose
	if af.loose > loose {
		loose = af.loose
	}
	return Apply{base{Flags{
		Closed:    ff.Closed && af.Closed,
		HasLocals: ff.HasLocals || af.HasLocals,
		HasIVars:  ff.HasIVars || af.HasIVars,
		loose:     loose,
	}}, fun, arg}
}

// MkApps curries fun over args in source order.
func MkApps(fun Term, args []Term) Term {
	result := fun
	for _, a := range args {
		result = MkApply(result, a)
	}
	return result
}

// TryForall/TrySort/TryLambda/TryApply/TryBound/TryLocal/TryGlobal/TryIVar
// are the variant-matching helpers used throughout whnf/unify/elaborate.

func TryForall(t Term) (Forall, bool) { f, ok := t.(Forall); return f, ok }
func TrySort(t Term) (level.Level, bool) {
	s, ok := t.(Sort)
	if !ok {
		return nil, false
	}
	return s.Level, true
}
func TryLambda(t Term) (Lambda, bool) { l, ok := t.(Lambda); return l, ok }
func TryApply(t Term) (Apply, bool)   { a, ok := t.(Apply); return a, ok }
func TryBound(t Term) (Bound, bool)   { b, ok := t.(Bound); return b, ok }
func TryLocal(t Term) (ScopeID, bool) {
	l, ok := t.(Local)
	if !ok {
		return 0, false
	}
	return l.ID, true
}
func TryGlobal(t Term) (Global, bool) { g, ok := t.(Global); return g, ok }
func TryIVar(t Term) (IVarID, bool) {
	v, ok := t.(IVar)
	if !ok {
		return 0, false
	}
	return v.ID, true
}

// SyntaxEq is purely structural equality, no unfolding or ivar dereference.
func SyntaxEq(a, b Term) bool {
	switch x := a.(type) {
	case Sort:
		y, ok := b.(Sort)
		return ok && level.SyntacticEq(x.Level, y.Level)
	case Bound:
		y, ok := b.(Bound)
		return ok && x.Index == y.Index
	case Local:
		y, ok := b.(Local)
		return ok && x.ID == y.ID
	case Global:
		y, ok := b.(Global)
		if !ok || x.ID != y.ID || len(x.Levels) != len(y.Levels) {
			return false
		}
		for i := range x.Levels {
			if !level.SyntacticEq(x.Levels[i], y.Levels[i]) {
				return false
			}
		}
		return true
	case IVar:
		y, ok := b.(IVar)
		return ok && x.ID == y.ID
	case Forall:
		y, ok := b.(Forall)
		return ok && x.Kind == y.Kind && SyntaxEq(x.Ty, y.Ty) && SyntaxEq(x.Body, y.Body)
	case Lambda:
		y, ok := b.(Lambda)
		return ok && x.Kind == y.Kind && SyntaxEq(x.Ty, y.Ty) && SyntaxEq(x.Body, y.Body)
	case Apply:
		y, ok := b.(Apply)
		return ok && SyntaxEq(x.Fun, y.Fun) && SyntaxEq(x.Arg, y.Arg)
	}
	return false
}

// PtrEq is the opportunistic fast path for change-detection during whnf;
// since terms aren't hash-consed, this is conservative: it compares the
// interface values with ==, and reports false where Go cannot compare them
// (a Global's Levels slice makes any term holding one incomparable).
func PtrEq(a, b Term) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
