package level

// IVarWriter additionally allows assigning a level ivar. Implemented by the
// ivar store.
type IVarWriter interface {
	IVarReader
	AssignLevel(id VarID, value Level)
}

// Unify attempts to make a and b definitionally equal by assigning unassigned
// ivars, after substituting already-known ivars on both sides. It returns
// true on success. A false result means the unifier should postpone this
// constraint (deferred IMax case) or reject it outright — the caller
// distinguishes the two via the deferred return.
func Unify(a, b Level, store IVarWriter) (ok bool, deferred bool) {
	a = SubstituteIVars(a, store)
	b = SubstituteIVars(b, store)

	if SyntacticEq(a, b) {
		return true, false
	}

	if id, isVar := TryIVar(a); isVar {
		return assign(id, b, store)
	}
	if id, isVar := TryIVar(b); isVar {
		return assign(id, a, store)
	}

	switch x := a.(type) {
	case Succ:
		if y, ok := b.(Succ); ok {
			return Unify(x.Of, y.Of, store)
		}
		return false, false

	case Max:
		if y, ok := b.(Max); ok {
			ok1, def1 := Unify(x.Lhs, y.Lhs, store)
			ok2, def2 := Unify(x.Rhs, y.Rhs, store)
			return ok1 && ok2, def1 || def2
		}
		return false, false

	case IMax:
		y, ok := b.(IMax)
		if !ok {
			return false, false
		}
		// §4.1: IMax(_, x) with x an unassigned ivar is deferred unless the
		// other side syntactically matches (the Open Question resolved in
		// DESIGN.md: we fail the constraint rather than queue it, since
		// this kernel has no constraint-postponement machinery).
		if _, isVar := TryIVar(x.Rhs); isVar {
			if SyntacticEq(x.Rhs, y.Rhs) {
				return Unify(x.Lhs, y.Lhs, store)
			}
			return false, true
		}
		ok1, def1 := Unify(x.Lhs, y.Lhs, store)
		ok2, def2 := Unify(x.Rhs, y.Rhs, store)
		return ok1 && ok2, def1 || def2

	case Param:
		y, ok := b.(Param)
		return ok && x.Index == y.Index, false
	}

	return false, false
}

func assign(id VarID, value Level, store IVarWriter) (ok bool, deferred bool) {
	if Occurs(id, value, store) {
		return false, false
	}
	store.AssignLevel(id, value)
	return true, false
}
