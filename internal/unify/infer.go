package unify

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// InferType structurally synthesizes t's type. Every constructor has a
// fixed typing rule; an ivar's type is whatever it was declared with at
// creation (a fresh sort if unknown at that point).
func (u *Unifier) InferType(t term.Term) term.Term {
	switch x := t.(type) {
	case term.Sort:
		return term.MkSort(level.MkSucc(x.Level))

	case term.Bound:
		panic("unify: InferType called on a dangling Bound")

	case term.Local:
		ty, ok := u.Ctx.TypeOf(x.ID)
		if !ok {
			panic(fmt.Sprintf("unify: InferType: local %d not in scope", x.ID))
		}
		return ty

	case term.Global:
		ty := u.Env.TypeOf(x.ID)
		return term.InstantiateLevelParams(ty, x.Levels)

	case term.IVar:
		return u.IVars.TermType(x.ID)

	case term.Forall:
		domLevel := u.sortLevelOf(x.Ty)
		opened, _ := term.InstantiateWithLocal(u.Ctx, x.Kind, x.Name, x.Ty, x.Body)
		codLevel := u.sortLevelOf(opened)
		u.Ctx.Pop()
		return term.MkSort(level.Normalize(level.MkIMax(domLevel, codLevel)))

	case term.Lambda:
		opened, id := term.InstantiateWithLocal(u.Ctx, x.Kind, x.Name, x.Ty, x.Body)
		bodyTy := u.InferType(opened)
		result, err := term.AbstractForall(u.Ctx, id, bodyTy)
		u.Ctx.Pop()
		if err != nil {
			panic(err)
		}
		return result

	case term.Apply:
		funTy := u.InferType(x.Fun)
		forall, ok := u.whnf.WHNFForall(funTy)
		if !ok {
			panic("unify: InferType: applied a non-function")
		}
		return term.Instantiate(forall.Body, x.Arg)
	}
	panic("unify: InferType: unreachable term variant")
}

// sortLevelOf infers t's type, whnf's it to a Sort, and returns its level —
// used for the domain/codomain universes of a Forall's own type.
func (u *Unifier) sortLevelOf(t term.Term) level.Level {
	ty := u.InferType(t)
	l, ok := u.whnf.WHNFSort(ty)
	if !ok {
		panic("unify: sortLevelOf: expected a Sort")
	}
	return l
}
