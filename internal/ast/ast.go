// Package ast is the surface syntax contract the elaborator consumes: a
// Parse record of dense, id-keyed vectors (Levels, Exprs, Items) rather
// than a pointer tree — expression nodes reference each other by id,
// forming a DAG rooted at each item, the same "stable id assigned at
// construction" discipline the teacher's core.CoreNode uses for its own
// NodeID, generalized here to one id space per node kind.
package ast

import "fmt"

// Pos is a source position.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a source range, used for diagnostics.
type Span struct {
	Start Pos
	End   Pos
}

// LevelID, ExprID and ItemID index into a Parse's dense vectors. The zero
// value never denotes a real node (vectors are 1-indexed: index 0 is a
// deliberately unused sentinel), so a zero id unambiguously means "absent".
type LevelID uint32
type ExprID uint32
type ItemID uint32

// BinderKind mirrors term.BinderKind; duplicated here so this package has
// no dependency on the kernel term representation.
type BinderKind int

const (
	Explicit BinderKind = iota
	Implicit
	Instance
)

// LevelKind discriminates a LevelNode.
type LevelKind int

const (
	LevelZero LevelKind = iota
	LevelSucc           // Of + N, literal `u+1`, `u+2`, ...
	LevelMax
	LevelIMax
	LevelParam // Name resolves against the enclosing item's level parameters
	LevelHole  // `_`, elaborates to a fresh level ivar
)

// LevelNode is one node of a level expression (`u+1`, `max(a,b)`, ...).
type LevelNode struct {
	Kind LevelKind
	Span Span

	Name string  // LevelParam
	N    uint32  // LevelSucc: number of successors applied to Of
	Of   LevelID // LevelSucc
	Lhs  LevelID // LevelMax, LevelIMax
	Rhs  LevelID // LevelMax, LevelIMax
}

// ExprKind discriminates an ExprNode.
type ExprKind int

const (
	ExprSort ExprKind = iota
	ExprIdent
	ExprApply
	ExprLambda
	ExprForall
	ExprArrow // sugar for a non-dependent Forall, kept distinct so the parser needn't synthesize a binder name
	ExprHole
	ExprNatLit // numeral sugar, elaborates to nested Nat.succ applications over Nat.zero
)

// ExprNode is one node of an expression DAG.
type ExprNode struct {
	Kind ExprKind
	Span Span

	Level LevelID // ExprSort

	Name string // ExprIdent: possibly dotted ("Nat.succ")
	Nat  uint64 // ExprNatLit

	Fun ExprID // ExprApply
	Arg ExprID // ExprApply

	BinderKind BinderKind // ExprLambda, ExprForall
	BinderName string     // ExprLambda, ExprForall
	Ty         ExprID     // ExprLambda, ExprForall, ExprArrow (domain)
	Body       ExprID     // ExprLambda, ExprForall, ExprArrow (codomain/result)
}

// Param is one telescope entry: `(x y : T)`, `{x : T}`, `[x : T]`. Ty is
// the sentinel zero ExprID when a lambda binder's type was left to be
// inferred (`fun x => x`) — the elaborator treats that as a fresh hole.
type Param struct {
	Name string
	Kind BinderKind
	Ty   ExprID
	Span Span
}

// CtorDecl is one constructor of an Inductive item.
type CtorDecl struct {
	Name string
	Args []Param

	// ResultTy is the explicit `: I ps is` conclusion, if written. Only
	// optional when the inductive has no indices (ELB010
	// CtorNeedsTypeCauseIndices enforces this at elaboration time).
	ResultTy ExprID
	Span     Span
}

// ItemKind discriminates an Item.
type ItemKind int

const (
	ItemAxiom ItemKind = iota
	ItemDef
	ItemInductive
	ItemReduce
	ItemTrait
	ItemImpl
)

// Item is one top-level declaration.
type Item struct {
	Kind ItemKind
	Span Span
	Name string

	LevelParams []string
	Params      []Param // Axiom/Def/Inductive parameter telescope

	Ty ExprID // Axiom's type; Def's declared type (0 if omitted)

	Indices   []Param    // Inductive only
	ResultLvl LevelID    // Inductive only: the `Sort u` result level
	Ctors     []CtorDecl // Inductive only

	Value ExprID // Def's body; Reduce's expression

	Raw string // Trait/Impl: opaque pass-through source text
}

// Parse is the AST contract handed to the elaborator: dense keyed vectors
// plus the items that reference into them. Index 0 of Levels/Exprs is an
// unused sentinel so a zero LevelID/ExprID unambiguously means "absent".
type Parse struct {
	File   string
	Levels []LevelNode
	Exprs  []ExprNode
	Items  []Item
}

// NewParse returns an empty Parse with the sentinel zero entries seeded.
func NewParse(file string) *Parse {
	return &Parse{
		File:   file,
		Levels: []LevelNode{{}},
		Exprs:  []ExprNode{{}},
	}
}

func (p *Parse) PushLevel(n LevelNode) LevelID {
	p.Levels = append(p.Levels, n)
	return LevelID(len(p.Levels) - 1)
}

func (p *Parse) PushExpr(n ExprNode) ExprID {
	p.Exprs = append(p.Exprs, n)
	return ExprID(len(p.Exprs) - 1)
}

func (p *Parse) PushItem(it Item) ItemID {
	p.Items = append(p.Items, it)
	return ItemID(len(p.Items) - 1)
}

func (p *Parse) Level(id LevelID) LevelNode { return p.Levels[id] }
func (p *Parse) Expr(id ExprID) ExprNode    { return p.Exprs[id] }
func (p *Parse) Item(id ItemID) Item        { return p.Items[id] }
