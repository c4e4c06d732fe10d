// Package ivar stores metavariables created during elaboration: universe
// level variables and term variables, the latter tagged with the local
// scope they were created in so an assignment can be scope-checked.
package ivar

import (
	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// Store owns both the level-ivar and term-ivar tables for one elaboration
// session. It implements level.IVarReader/level.IVarWriter directly so it
// can be passed to level.Unify without an adapter.
type Store struct {
	levels []levelVar
	terms  []termVar
}

type levelVar struct {
	value level.Level // nil if unassigned
}

type termVar struct {
	scope term.ScopeID
	hasScope bool // false means "global scope" (OptScopeId::NONE)
	ty    term.Term
	value term.Term // nil if unassigned
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// NewLevelVar allocates a fresh, unassigned level metavariable.
func (s *Store) NewLevelVar() level.Level {
	id := level.VarID(len(s.levels))
	s.levels = append(s.levels, levelVar{})
	return level.MkIVar(id)
}

// LevelValue implements level.IVarReader.
func (s *Store) LevelValue(id level.VarID) (level.Level, bool) {
	v := s.levels[id]
	if v.value == nil {
		return nil, false
	}
	return v.value, true
}

// AssignLevel implements level.IVarWriter. Panics if id is already assigned
// — callers are expected to check LevelValue first (mirrors the Rust
// assign_core debug assertion).
func (s *Store) AssignLevel(id level.VarID, value level.Level) {
	if s.levels[id].value != nil {
		panic("ivar: level var already assigned")
	}
	s.levels[id] = levelVar{value: value}
}

// NewTermVarInScope allocates a fresh term metavariable of type ty, scoped
// to scope (hasScope true) — or, when hasScope is false, scoped to the
// empty/global context.
func (s *Store) NewTermVarInScope(ty term.Term, scope term.ScopeID, hasScope bool) term.Term {
	id := term.IVarID(len(s.terms))
	s.terms = append(s.terms, termVar{scope: scope, hasScope: hasScope, ty: ty})
	return term.MkIVar(id)
}

// NewTypeVar allocates `(?m : Sort ?l)` for a fresh level var ?l, returning
// the metavariable term and the level it lives in — used whenever the
// elaborator needs a placeholder type to be refined later.
func (s *Store) NewTypeVar(scope term.ScopeID, hasScope bool) (term.Term, level.Level) {
	l := s.NewLevelVar()
	ty := term.MkSort(l)
	return s.NewTermVarInScope(ty, scope, hasScope), l
}

// TermValue returns the current assignment of a term ivar, if any.
func (s *Store) TermValue(id term.IVarID) (term.Term, bool) {
	v := s.terms[id]
	if v.value == nil {
		return nil, false
	}
	return v.value, true
}

// TermType returns the declared type of a term ivar.
func (s *Store) TermType(id term.IVarID) term.Term {
	return s.terms[id].ty
}

// TermScope returns the scope a term ivar was created in.
func (s *Store) TermScope(id term.IVarID) (term.ScopeID, bool) {
	v := s.terms[id]
	return v.scope, v.hasScope
}

// AssignTerm records the assignment of a term ivar without re-validating
// the scope/occurs/type checks — callers must have already run
// CheckValueForAssign and a def_eq of the types.
func (s *Store) AssignTerm(id term.IVarID, value term.Term) {
	if s.terms[id].value != nil {
		panic("ivar: term var already assigned")
	}
	s.terms[id].value = value
}

// SubstituteTermIVars recursively replaces assigned term ivars with their
// values, the term-level analogue of level.SubstituteIVars.
func (s *Store) SubstituteTermIVars(t term.Term) term.Term {
	if !term.HasIVars(t) {
		return t
	}
	switch x := t.(type) {
	case term.IVar:
		if v, ok := s.TermValue(x.ID); ok {
			return s.SubstituteTermIVars(v)
		}
		return t
	case term.Forall:
		return term.MkForall(x.Kind, x.Name, s.SubstituteTermIVars(x.Ty), s.SubstituteTermIVars(x.Body))
	case term.Lambda:
		return term.MkLambda(x.Kind, x.Name, s.SubstituteTermIVars(x.Ty), s.SubstituteTermIVars(x.Body))
	case term.Apply:
		return term.MkApply(s.SubstituteTermIVars(x.Fun), s.SubstituteTermIVars(x.Arg))
	case term.Sort:
		return term.MkSort(level.SubstituteIVars(x.Level, s))
	case term.Global:
		levels := make([]level.Level, len(x.Levels))
		for i, l := range x.Levels {
			levels[i] = level.SubstituteIVars(l, s)
		}
		return term.MkGlobal(x.ID, levels)
	}
	return t
}
