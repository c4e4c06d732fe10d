package level

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMaxZero(t *testing.T) {
	n := Normalize(MkMax(MkZero(), MkParam("u", 0)))
	require.True(t, SyntacticEq(n, MkParam("u", 0)), "max(0, u) should normalize to u, got %s", n)
}

func TestNormalizeSuccMax(t *testing.T) {
	a := MkParam("u", 0)
	b := MkParam("v", 1)
	n := Normalize(MkMax(MkSucc(a), MkSucc(b)))
	want := MkSucc(MkMax(a, b))
	require.True(t, SemanticEq(n, want), "max(u+1, v+1) should normalize to max(u,v)+1, got %s", n)
}

func TestNormalizeIMaxZeroRHS(t *testing.T) {
	n := Normalize(MkIMax(MkParam("u", 0), MkZero()))
	require.True(t, IsZero(n), "imax(u, 0) should normalize to 0, got %s", n)
}

func TestSemanticEqCommutesMax(t *testing.T) {
	u := MkParam("u", 0)
	v := MkParam("v", 1)
	a := MkMax(u, v)
	b := MkMax(v, u)
	require.True(t, SemanticEq(a, b), "max(u,v) and max(v,u) should be semantically equal")
}

func TestOffset(t *testing.T) {
	z := MkZero()
	three := Offset(z, 3)
	require.Equal(t, "0+3", three.String())
}

// fakeStore is a minimal level.IVarWriter: every ivar starts unassigned,
// and AssignLevel records into a map for the test to inspect afterward.
type fakeStore struct {
	assigned map[VarID]Level
}

func newFakeStore() *fakeStore { return &fakeStore{assigned: map[VarID]Level{}} }

func (s *fakeStore) LevelValue(id VarID) (Level, bool) { return nil, false }

func (s *fakeStore) AssignLevel(id VarID, value Level) { s.assigned[id] = value }

func TestUnifyAssignsIVar(t *testing.T) {
	store := newFakeStore()
	hole := MkIVar(1)
	target := MkSucc(MkParam("u", 0))
	ok, deferred := Unify(hole, target, store)
	require.True(t, ok)
	require.False(t, deferred)

	got, assigned := store.assigned[1]
	require.True(t, assigned, "ivar 1 should have been assigned")
	require.True(t, SyntacticEq(got, target), "ivar 1 assigned %v, want %v", got, target)
}

func TestUnifySuccSucc(t *testing.T) {
	store := newFakeStore()
	a := MkSucc(MkParam("u", 0))
	b := MkSucc(MkParam("u", 0))
	ok, deferred := Unify(a, b, store)
	require.True(t, ok)
	require.False(t, deferred)
}

func TestUnifyParamMismatchFails(t *testing.T) {
	store := newFakeStore()
	ok, _ := Unify(MkParam("u", 0), MkParam("v", 1), store)
	require.False(t, ok, "Unify(u, v) for distinct params should fail")
}
