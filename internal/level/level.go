// Package level implements universe level expressions: the algebra of
// universes that classifies sorts in the kernel term language.
package level

import "fmt"

// VarID names a level metavariable (an "ivar"). The owning store lives in
// package ivar; this package only needs the key type.
type VarID uint32

// Flags are precomputed at construction time and propagated compositionally,
// the way term.flags are for kernel terms.
type Flags struct {
	HasParams bool // mentions a Param
	HasIVars  bool // mentions an unresolved IVar
}

// Level is a universe expression. Variants: Zero, Succ, Max, IMax, Param, IVar.
type Level interface {
	flags() Flags
	String() string
	isLevel()
}

// HasParams reports whether l mentions any Param.
func HasParams(l Level) bool { return l.flags().HasParams }

// HasIVars reports whether l mentions any unresolved IVar.
func HasIVars(l Level) bool { return l.flags().HasIVars }

type base struct{ f Flags }

func (b base) flags() Flags { return b.f }

// Zero is the base universe.
type Zero struct{ base }

func (Zero) isLevel()        {}
func (Zero) String() string  { return "0" }

// Succ is the successor of a level.
type Succ struct {
	base
	Of Level
}

func (Succ) isLevel() {}
func (s Succ) String() string {
	n, inner := peelSuccs(s)
	return fmt.Sprintf("%s+%d", inner.String(), n)
}

// Max is the binary maximum of two levels.
type Max struct {
	base
	Lhs, Rhs Level
}

func (Max) isLevel() {}
func (m Max) String() string { return fmt.Sprintf("max(%s, %s)", m.Lhs, m.Rhs) }

// IMax is the "impredicative max": IMax(a, b) is Zero when b normalizes to
// Zero, and Max(a, b) otherwise.
type IMax struct {
	base
	Lhs, Rhs Level
}

func (IMax) isLevel() {}
func (m IMax) String() string { return fmt.Sprintf("imax(%s, %s)", m.Lhs, m.Rhs) }

// Param is a universe parameter of the enclosing declaration, referenced by
// its dense index into that declaration's parameter list.
type Param struct {
	base
	Name  string
	Index int
}

func (Param) isLevel()       {}
func (p Param) String() string { return p.Name }

// IVar is a level metavariable, assigned during unification.
type IVar struct {
	base
	ID VarID
}

func (IVar) isLevel()       {}
func (v IVar) String() string { return fmt.Sprintf("?l%d", v.ID) }

// Constructors. Flags are derived compositionally from operands.

func MkZero() Level { return Zero{} }

func MkSucc(of Level) Level {
	return Succ{base{of.flags()}, of}
}

func MkMax(lhs, rhs Level) Level {
	return Max{mergeFlags(lhs, rhs), lhs, rhs}
}

func MkIMax(lhs, rhs Level) Level {
	return IMax{mergeFlags(lhs, rhs), lhs, rhs}
}

func MkParam(name string, index int) Level {
	return Param{base{Flags{HasParams: true}}, name, index}
}

func MkIVar(id VarID) Level {
	return IVar{base{Flags{HasIVars: true}}, id}
}

func mergeFlags(lhs, rhs Level) base {
	lf, rf := lhs.flags(), rhs.flags()
	return base{Flags{
		HasParams: lf.HasParams || rf.HasParams,
		HasIVars:  lf.HasIVars || rf.HasIVars,
	}}
}

// Offset builds n successive Succ wrappers around l.
func Offset(l Level, n int) Level {
	for i := 0; i < n; i++ {
		l = MkSucc(l)
	}
	return l
}

func peelSuccs(l Level) (int, Level) {
	n := 0
	for {
		s, ok := l.(Succ)
		if !ok {
			return n, l
		}
		n++
		l = s.Of
	}
}

// TryIVar returns the id and true if l is an (unwrapped) IVar.
func TryIVar(l Level) (VarID, bool) {
	if v, ok := l.(IVar); ok {
		return v.ID, true
	}
	return 0, false
}

// Find performs a pre-order search, returning the first sublevel for which
// pred returns true (the open-recursion traversal primitive for levels).
func Find(l Level, pred func(Level) bool) (Level, bool) {
	if pred(l) {
		return l, true
	}
	switch t := l.(type) {
	case Succ:
		return Find(t.Of, pred)
	case Max:
		if r, ok := Find(t.Lhs, pred); ok {
			return r, true
		}
		return Find(t.Rhs, pred)
	case IMax:
		if r, ok := Find(t.Lhs, pred); ok {
			return r, true
		}
		return Find(t.Rhs, pred)
	}
	return nil, false
}
