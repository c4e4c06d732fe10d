// Package env implements the global symbol environment: the hierarchical
// table of declarations (inductive types, constructors, eliminators,
// definitions) that published terms reference via term.Global.
package env

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/level"
	"github.com/kibi-lang/kibi/internal/term"
)

// SymbolID is the key type for term.GlobalID — defined as an alias so
// code in this package can use plain SymbolID while term.Global still
// stores the shared underlying type.
type SymbolID = term.GlobalID

// Predeclared symbol ids, fixed at environment construction and stable
// across every Env value — mirrors a well-known prelude of core types
// every declaration can reference without an explicit import.
const (
	Root SymbolID = iota
	Nat
	NatZero
	NatSucc
	Eq
	Add
	AddAdd
	Unit
	UnitMk
	Bool
	BoolFalse
	BoolTrue
	Ite
	AxSorry
	AxUninit
	AxUnreach

	firstUserSymbol
)

// SymbolKind distinguishes how a symbol was introduced.
type SymbolKind int

const (
	KindRoot SymbolKind = iota
	KindPredeclared
	KindPending
	KindIndAxiom
	KindDef
)

func (k SymbolKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindPredeclared:
		return "predeclared"
	case KindPending:
		return "pending"
	case KindIndAxiom:
		return "ind_axiom"
	case KindDef:
		return "def"
	}
	return "unknown"
}

// IndAxiomKind distinguishes the three eliminator-family axioms emitted by
// the inductive compiler for one inductive declaration.
type IndAxiomKind int

const (
	TypeFormer IndAxiomKind = iota
	Constructor
	Eliminator
)

// IndAxiom is the payload of a symbol whose kind is KindIndAxiom: the type
// former, one of its constructors, or its eliminator ("recursor").
type IndAxiom struct {
	Kind      IndAxiomKind
	CtorIndex int // valid only when Kind == Constructor
	NumLevels int
	Ty        term.Term

	// GroupID identifies the inductive block this symbol belongs to —
	// the substitute for the original's pointer-equality check between
	// two symbols' shared InductiveInfo, since Go IndAxiom values are
	// stored by value rather than by shared reference.
	GroupID int

	// The following are only meaningful on the Eliminator symbol of a
	// group; they describe how to drive recursor reduction.
	NumParams        int
	NumMotives       int
	NumMinors        int
	MinArgsForReduce int
	CompRules        []term.Term // one computation rule per constructor, in declaration order
}

// Def is the payload of a symbol whose kind is KindDef: an axiom has Val
// == nil, an ordinary definition has Val set.
type Def struct {
	NumLevels int
	Ty        term.Term
	Val       term.Term // nil for an axiom
}

// Symbol is one entry of the environment.
type Symbol struct {
	Parent   SymbolID
	Kind     SymbolKind
	Name     string
	IndAxiom *IndAxiom // non-nil iff Kind == KindIndAxiom
	Def      *Def      // non-nil iff Kind == KindDef

	children map[string]SymbolID
}

// Env is the environment: a forest of dotted names rooted at Root, built
// up as declarations are elaborated and published.
type Env struct {
	symbols []Symbol
}

// New returns an environment pre-populated with the predeclared prelude.
func New() *Env {
	e := &Env{}
	root := e.push(Symbol{Parent: Root, Kind: KindRoot, Name: "", children: map[string]SymbolID{}})
	if root != Root {
		panic("env: root symbol did not land at id 0")
	}

	e.predeclare(Root, "Nat", Nat)
	e.predeclare(Nat, "zero", NatZero)
	e.predeclare(Nat, "succ", NatSucc)

	e.predeclare(Root, "Eq", Eq)

	e.predeclare(Root, "Add", Add)
	e.predeclare(Add, "add", AddAdd)

	e.predeclare(Root, "Unit", Unit)
	e.predeclare(Unit, "mk", UnitMk)

	e.predeclare(Root, "Bool", Bool)
	e.predeclare(Bool, "false", BoolFalse)
	e.predeclare(Bool, "true", BoolTrue)
	e.predeclare(Root, "ite", Ite)

	e.predeclare(Root, "sorry", AxSorry)
	e.predeclare(Root, "uninitialized", AxUninit)
	e.predeclare(Root, "unreachable", AxUnreach)

	return e
}

func (e *Env) push(s Symbol) SymbolID {
	id := SymbolID(len(e.symbols))
	if s.children == nil {
		s.children = map[string]SymbolID{}
	}
	e.symbols = append(e.symbols, s)
	return id
}

func (e *Env) predeclare(parent SymbolID, name string, want SymbolID) {
	id := e.push(Symbol{Parent: parent, Kind: KindPredeclared, Name: name})
	if id != want {
		panic(fmt.Sprintf("env: predeclared symbol %q landed at %d, expected %d", name, id, want))
	}
	e.symbols[parent].children[name] = id
}

// Symbol returns the entry for id. Panics on an out-of-range id, the same
// contract as an unchecked array index on the original.
func (e *Env) Symbol(id SymbolID) *Symbol {
	return &e.symbols[id]
}

// Lookup resolves name within the immediate children of parent.
func (e *Env) Lookup(parent SymbolID, name string) (SymbolID, bool) {
	id, ok := e.symbols[parent].children[name]
	return id, ok
}

// ChildNames returns the names declared directly under parent, for
// tooling (the REPL's :list command) that needs to enumerate a
// namespace rather than resolve one name within it.
func (e *Env) ChildNames(parent SymbolID) []string {
	names := make([]string, 0, len(e.symbols[parent].children))
	for name := range e.symbols[parent].children {
		names = append(names, name)
	}
	return names
}

// NewSymbol introduces a new symbol named name under parent with the given
// kind, or resolves a previously predeclared slot with the same parent and
// name in place. It returns false if a non-predeclared symbol already
// occupies that name.
func (e *Env) NewSymbol(parent SymbolID, name string, kind SymbolKind, indAxiom *IndAxiom, def *Def) (SymbolID, bool) {
	if kind == KindRoot || kind == KindPredeclared {
		panic("env: NewSymbol cannot introduce a root or predeclared symbol")
	}
	if err := validatePayload(kind, indAxiom, def); err != nil {
		panic(err)
	}

	if existing, ok := e.Lookup(parent, name); ok {
		if e.symbols[existing].Kind != KindPredeclared {
			return 0, false
		}
		e.symbols[existing].Kind = kind
		e.symbols[existing].IndAxiom = indAxiom
		e.symbols[existing].Def = def
		return existing, true
	}

	id := e.push(Symbol{Parent: parent, Kind: kind, Name: name, IndAxiom: indAxiom, Def: def})
	e.symbols[parent].children[name] = id
	return id, true
}

// ResolvePending replaces a Pending symbol's kind/payload in place, used
// once an inductive declaration's self-referential placeholder has been
// fully elaborated.
func (e *Env) ResolvePending(id SymbolID, kind SymbolKind, indAxiom *IndAxiom, def *Def) {
	if kind == KindRoot || kind == KindPredeclared || kind == KindPending {
		panic("env: ResolvePending requires a concrete kind")
	}
	if err := validatePayload(kind, indAxiom, def); err != nil {
		panic(err)
	}
	sym := &e.symbols[id]
	if sym.Kind != KindPending {
		panic(fmt.Sprintf("env: symbol %d is not pending", id))
	}
	sym.Kind = kind
	sym.IndAxiom = indAxiom
	sym.Def = def
}

func validatePayload(kind SymbolKind, indAxiom *IndAxiom, def *Def) error {
	switch kind {
	case KindIndAxiom:
		if indAxiom == nil || !term.ClosedNoLocalNoIVar(indAxiom.Ty) {
			return fmt.Errorf("env: ind_axiom symbol requires a closed type")
		}
	case KindDef:
		if def == nil || !term.ClosedNoLocalNoIVar(def.Ty) {
			return fmt.Errorf("env: def symbol requires a closed type")
		}
		if def.Val != nil && !term.ClosedNoLocalNoIVar(def.Val) {
			return fmt.Errorf("env: def symbol requires a closed value")
		}
	case KindPending:
	default:
		return fmt.Errorf("env: unexpected symbol kind %v", kind)
	}
	return nil
}

// TypeOf returns the (universe-polymorphic) type of a published symbol.
func (e *Env) TypeOf(id SymbolID) term.Term {
	sym := &e.symbols[id]
	switch sym.Kind {
	case KindIndAxiom:
		return sym.IndAxiom.Ty
	case KindDef:
		return sym.Def.Ty
	}
	panic(fmt.Sprintf("env: symbol %d has no type (kind %v)", id, sym.Kind))
}

// NumLevels returns how many universe parameters a symbol was declared
// with — needed to validate a Global term's Levels slice length.
func (e *Env) NumLevels(id SymbolID) int {
	sym := &e.symbols[id]
	switch sym.Kind {
	case KindIndAxiom:
		return sym.IndAxiom.NumLevels
	case KindDef:
		return sym.Def.NumLevels
	}
	return 0
}

// UnfoldDef returns the delta-unfolding of a KindDef symbol instantiated at
// the given universe levels, or false if it has no value (an axiom) or is
// not a Def at all.
func (e *Env) UnfoldDef(id SymbolID, levels []level.Level) (term.Term, bool) {
	sym := &e.symbols[id]
	if sym.Kind != KindDef || sym.Def.Val == nil {
		return nil, false
	}
	return term.InstantiateLevelParams(sym.Def.Val, levels), true
}
