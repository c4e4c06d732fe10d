package ivar

import "github.com/kibi-lang/kibi/internal/term"

// ScopeIsPrefix reports whether a variable created in scope a may be
// referenced from scope b — i.e. a is a prefix of (or equal to) b. A
// variable with no recorded scope (hasA false) was created at the top
// level and is visible everywhere.
func (s *Store) ScopeIsPrefix(ctx *term.LocalCtx, a term.ScopeID, hasA bool, b term.ScopeID, hasB bool) bool {
	if !hasA {
		return true
	}
	if !hasB {
		return false
	}
	// ScopeIDs are allocated in increasing order and never reused, so the
	// prefix relation is approximated by a <= b; ctx is not consulted, and
	// a scope pushed and popped before b was pushed also counts as a prefix.
	_ = ctx
	return a <= b
}

// TermVarInScope reports whether the term ivar `other` may be referenced
// from `scope`.
func (s *Store) TermVarInScope(ctx *term.LocalCtx, other term.IVarID, scope term.ScopeID, hasScope bool) bool {
	varScope, varHasScope := s.TermScope(other)
	return s.ScopeIsPrefix(ctx, varScope, varHasScope, scope, hasScope)
}

// LocalInScope reports whether a Local id is visible from scope.
func LocalInScope(ctx *term.LocalCtx, id term.ScopeID, scope term.ScopeID, hasScope bool) bool {
	if !hasScope {
		return false
	}
	return id <= scope && ctx.InScope(id)
}

// CheckValueForAssign walks value, verifying every Local and term IVar it
// mentions is visible from the scope that `into` (the ivar being assigned)
// was created in. It also dereferences already-assigned ivars inline and
// runs the occurs check against `into` itself. It returns the
// (possibly-substituted) value and ok=false if any check fails.
func (s *Store) CheckValueForAssign(ctx *term.LocalCtx, value term.Term, into term.IVarID) (term.Term, bool) {
	scope, hasScope := s.TermScope(into)

	switch x := value.(type) {
	case term.Local:
		if !LocalInScope(ctx, x.ID, scope, hasScope) {
			return nil, false
		}
		return value, true

	case term.IVar:
		if v, ok := s.TermValue(x.ID); ok {
			return s.CheckValueForAssign(ctx, v, into)
		}
		if x.ID == into {
			return nil, false
		}
		if !s.TermVarInScope(ctx, x.ID, scope, hasScope) {
			return nil, false
		}
		return value, true

	case term.Forall:
		ty, ok := s.CheckValueForAssign(ctx, x.Ty, into)
		if !ok {
			return nil, false
		}
		body, ok := s.CheckValueForAssign(ctx, x.Body, into)
		if !ok {
			return nil, false
		}
		return term.MkForall(x.Kind, x.Name, ty, body), true

	case term.Lambda:
		ty, ok := s.CheckValueForAssign(ctx, x.Ty, into)
		if !ok {
			return nil, false
		}
		body, ok := s.CheckValueForAssign(ctx, x.Body, into)
		if !ok {
			return nil, false
		}
		return term.MkLambda(x.Kind, x.Name, ty, body), true

	case term.Apply:
		fun, ok := s.CheckValueForAssign(ctx, x.Fun, into)
		if !ok {
			return nil, false
		}
		arg, ok := s.CheckValueForAssign(ctx, x.Arg, into)
		if !ok {
			return nil, false
		}
		return term.MkApply(fun, arg), true

	default:
		// Sort, Bound, Global carry no locals/ivars relevant to this check.
		return value, true
	}
}

// AssignWithArgs processes `var(args) := value`: it lambda-abstracts value
// over the distinct locals in args (the higher-order pattern case), runs
// CheckValueForAssign, and — when args is empty — reports whether the
// assignment is outright rejected vs. merely type-mismatched (callers
// still need to def_eq-check var's type against value's inferred type and
// call AssignTerm themselves).
func (s *Store) AssignWithArgs(ctx *term.LocalCtx, into term.IVarID, args []term.ScopeID, value term.Term) (term.Term, bool) {
	for _, arg := range args {
		abstracted, err := term.AbstractLambda(ctx, arg, value)
		if err != nil {
			return nil, false
		}
		value = abstracted
	}
	return s.CheckValueForAssign(ctx, value, into)
}
