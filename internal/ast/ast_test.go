package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParseSeedsSentinels(t *testing.T) {
	p := NewParse("t.kibi")
	require.Len(t, p.Levels, 1, "NewParse should seed one sentinel level")
	require.Len(t, p.Exprs, 1, "NewParse should seed one sentinel expr")
	require.Len(t, p.Items, 0, "NewParse should start with no items")
}

func TestPushExprReturnsDenseIDs(t *testing.T) {
	p := NewParse("t.kibi")
	id1 := p.PushExpr(ExprNode{Kind: ExprHole})
	id2 := p.PushExpr(ExprNode{Kind: ExprHole})

	require.NotZero(t, id1, "PushExpr returned a sentinel id")
	require.NotZero(t, id2, "PushExpr returned a sentinel id")
	require.Equal(t, id1+1, id2, "PushExpr ids should be dense")
	require.Equal(t, ExprHole, p.Expr(id1).Kind)
}

func TestPushLevelAndItem(t *testing.T) {
	p := NewParse("t.kibi")
	lvl := p.PushLevel(LevelNode{Kind: LevelZero})
	require.NotZero(t, lvl, "PushLevel returned the sentinel id")
	require.Equal(t, LevelZero, p.Level(lvl).Kind)

	arg := p.PushExpr(ExprNode{Kind: ExprSort, Level: lvl})
	item := p.PushItem(Item{Kind: ItemReduce, Value: arg})
	require.Equal(t, ItemID(0), item, "first PushItem id should be 0 (Items has no sentinel)")
	require.Equal(t, ItemReduce, p.Item(item).Kind)
	require.Equal(t, arg, p.Item(item).Value)
}
