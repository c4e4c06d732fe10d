// Package surface lexes and parses kibi source text into an internal/ast
// Parse record: a recursive-descent parser over Items, with a small
// Pratt-style precedence climb for expressions (application binds
// tightest, then arrow, forall/lambda are prefix forms that swallow
// everything to their right). Grounded on the teacher's
// internal/parser (one parseX method per grammar production, a
// single-token lookahead held in cur/peek) and internal/lexer's
// Token/TokenType contract, generalized to the dependently-typed surface
// grammar this language actually has.
package surface

import (
	"fmt"

	"github.com/kibi-lang/kibi/internal/ast"
)

// ParseError is one syntax error, with the offending token's position.
type ParseError struct {
	Msg  string
	Line int
	Col  int
	File string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Parser turns a token stream into an ast.Parse.
type Parser struct {
	l    *Lexer
	cur  Token
	peek Token

	parse *ast.Parse
	errs  []error

	zeroLevel ast.LevelID
}

// NewParser returns a Parser reading from l, with file used in the
// produced ast.Parse.
func NewParser(l *Lexer, file string) *Parser {
	p := &Parser{l: l, parse: ast.NewParse(file)}
	p.next()
	p.next()
	p.zeroLevel = p.parse.PushLevel(ast.LevelNode{Kind: ast.LevelZero})
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{File: p.cur.File, Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, &ParseError{
		Msg: fmt.Sprintf(format, args...), Line: p.cur.Line, Col: p.cur.Column, File: p.cur.File,
	})
}

func (p *Parser) expect(tt TokenType) Token {
	if p.cur.Type != tt {
		p.errorf("expected %s, found %s", tt, p.cur.Type)
		return p.cur
	}
	t := p.cur
	p.next()
	return t
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []error { return p.errs }

// ParseFile parses a whole source file into an ast.Parse, accumulating
// per-item syntax errors in Errors() and attempting the next item after
// one fails — mirroring the elaborator's own per-declaration recovery.
func (p *Parser) ParseFile() *ast.Parse {
	for p.cur.Type != EOF {
		before := p.cur
		p.parseItem()
		if p.cur == before {
			// parseItem made no progress; avoid looping forever on a token
			// no production accepts.
			p.errorf("unexpected token %s", p.cur.Type)
			p.next()
		}
	}
	return p.parse
}

func (p *Parser) parseItem() {
	switch p.cur.Type {
	case AXIOM:
		p.parseAxiom()
	case DEF:
		p.parseDef()
	case INDUCTIVE:
		p.parseInductive()
	case REDUCE:
		p.parseReduce()
	case TRAIT, IMPL:
		p.parseOpaqueItem()
	default:
		p.errorf("expected a top-level item (axiom/def/inductive/reduce/trait/impl), found %s", p.cur.Type)
		p.next()
	}
}

// parseLevelParamSuffix consumes an optional `.{u v ...}` level-parameter
// list following an item or symbol name.
func (p *Parser) parseLevelParamSuffix() []string {
	if p.cur.Type != DOT || p.peek.Type != LBRACE {
		return nil
	}
	p.next() // DOT
	p.next() // LBRACE
	var names []string
	for p.cur.Type == IDENT {
		names = append(names, p.cur.Literal)
		p.next()
	}
	p.expect(RBRACE)
	return names
}

// parseBinderGroup parses one `(xs : T)`, `{xs : T}` or `[xs : T]` group.
// A brace group whose identifiers are followed by no colon instead
// declares bare universe parameters (`def id {u} ...`), returned via
// levelNames instead of params.
func (p *Parser) parseBinderGroup() (params []ast.Param, levelNames []string) {
	var open, closeT TokenType
	var kind ast.BinderKind
	switch p.cur.Type {
	case LPAREN:
		open, closeT, kind = LPAREN, RPAREN, ast.Explicit
	case LBRACE:
		open, closeT, kind = LBRACE, RBRACE, ast.Implicit
	case LBRACKET:
		open, closeT, kind = LBRACKET, RBRACKET, ast.Instance
	default:
		return nil, nil
	}
	startPos := p.pos()
	p.expect(open)
	var names []string
	for p.cur.Type == IDENT {
		names = append(names, p.cur.Literal)
		p.next()
	}
	if kind == ast.Implicit && p.cur.Type != COLON {
		p.expect(closeT)
		return nil, names
	}
	p.expect(COLON)
	ty := p.parseExpr()
	p.expect(closeT)
	endPos := p.pos()
	for _, n := range names {
		params = append(params, ast.Param{Name: n, Kind: kind, Ty: ty, Span: ast.Span{Start: startPos, End: endPos}})
	}
	return params, nil
}

// parseTelescope consumes a run of binder groups, splitting bare
// universe-parameter braces out into levelNames.
func (p *Parser) parseTelescope() (params []ast.Param, levelNames []string) {
	for p.cur.Type == LPAREN || p.cur.Type == LBRACE || p.cur.Type == LBRACKET {
		ps, lvs := p.parseBinderGroup()
		params = append(params, ps...)
		levelNames = append(levelNames, lvs...)
	}
	return params, levelNames
}

func (p *Parser) parseAxiom() {
	start := p.pos()
	p.next() // AXIOM
	name := p.expect(IDENT).Literal
	lvs := p.parseLevelParamSuffix()
	params, bareLvs := p.parseTelescope()
	p.expect(COLON)
	ty := p.parseExpr()
	p.parse.PushItem(ast.Item{
		Kind: ast.ItemAxiom, Span: ast.Span{Start: start, End: p.pos()}, Name: name,
		LevelParams: append(lvs, bareLvs...), Params: params, Ty: ty,
	})
}

func (p *Parser) parseDef() {
	start := p.pos()
	p.next() // DEF
	name := p.expect(IDENT).Literal
	lvs := p.parseLevelParamSuffix()
	params, bareLvs := p.parseTelescope()
	var ty ast.ExprID
	if p.cur.Type == COLON {
		p.next()
		ty = p.parseExpr()
	}
	p.expect(COLONEQ)
	value := p.parseExpr()
	p.parse.PushItem(ast.Item{
		Kind: ast.ItemDef, Span: ast.Span{Start: start, End: p.pos()}, Name: name,
		LevelParams: append(lvs, bareLvs...), Params: params, Ty: ty, Value: value,
	})
}

func (p *Parser) parseInductive() {
	start := p.pos()
	p.next() // INDUCTIVE
	name := p.expect(IDENT).Literal
	lvs := p.parseLevelParamSuffix()
	params, bareLvs := p.parseTelescope()
	indices, moreBareLvs := p.parseTelescope()

	var resultLvl ast.LevelID
	if p.cur.Type == COLON {
		p.next()
		p.expect(SORT)
		resultLvl = p.parseLevel()
	}

	var ctors []ast.CtorDecl
	for p.cur.Type == PIPE {
		p.next()
		cstart := p.pos()
		cname := p.expect(IDENT).Literal
		cargs, _ := p.parseTelescope()
		var resultTy ast.ExprID
		if p.cur.Type == COLON {
			p.next()
			resultTy = p.parseExpr()
		}
		ctors = append(ctors, ast.CtorDecl{
			Name: cname, Args: cargs, ResultTy: resultTy, Span: ast.Span{Start: cstart, End: p.pos()},
		})
	}

	p.parse.PushItem(ast.Item{
		Kind: ast.ItemInductive, Span: ast.Span{Start: start, End: p.pos()}, Name: name,
		LevelParams: append(append(lvs, bareLvs...), moreBareLvs...),
		Params:      params, Indices: indices, ResultLvl: resultLvl, Ctors: ctors,
	})
}

func (p *Parser) parseReduce() {
	start := p.pos()
	p.next() // REDUCE
	value := p.parseExpr()
	p.parse.PushItem(ast.Item{Kind: ast.ItemReduce, Span: ast.Span{Start: start, End: p.pos()}, Value: value})
}

// parseOpaqueItem captures a `trait`/`impl` block as raw pass-through
// text up to (but not including) the next top-level keyword — the trait
// resolver is a stub, so nothing downstream inspects its structure.
func (p *Parser) parseOpaqueItem() {
	start := p.pos()
	kind := ast.ItemTrait
	if p.cur.Type == IMPL {
		kind = ast.ItemImpl
	}
	var raw string
	for p.cur.Type != EOF && p.cur.Type != AXIOM && p.cur.Type != DEF &&
		p.cur.Type != INDUCTIVE && p.cur.Type != REDUCE && p.cur.Type != TRAIT && p.cur.Type != IMPL {
		if raw != "" {
			raw += " "
		}
		raw += p.cur.Literal
		p.next()
	}
	p.parse.PushItem(ast.Item{Kind: kind, Span: ast.Span{Start: start, End: p.pos()}, Raw: raw})
}

// --- levels ---

func (p *Parser) parseLevel() ast.LevelID {
	lvl := p.parseLevelPrimary()
	for p.cur.Type == PLUS {
		p.next()
		n := p.expect(NAT).Literal
		lvl = p.parse.PushLevel(ast.LevelNode{Kind: ast.LevelSucc, N: parseNat(n), Of: lvl})
	}
	return lvl
}

func (p *Parser) parseLevelPrimary() ast.LevelID {
	switch p.cur.Type {
	case NAT:
		n := parseNat(p.cur.Literal)
		p.next()
		return p.parse.PushLevel(ast.LevelNode{Kind: ast.LevelSucc, N: n, Of: p.zeroLevel})
	case UNDERSCR:
		p.next()
		return p.parse.PushLevel(ast.LevelNode{Kind: ast.LevelHole})
	case MAX, IMAX:
		kind := ast.LevelMax
		if p.cur.Type == IMAX {
			kind = ast.LevelIMax
		}
		p.next()
		p.expect(LPAREN)
		lhs := p.parseLevel()
		p.expect(COMMA)
		rhs := p.parseLevel()
		p.expect(RPAREN)
		return p.parse.PushLevel(ast.LevelNode{Kind: kind, Lhs: lhs, Rhs: rhs})
	case IDENT:
		name := p.cur.Literal
		p.next()
		return p.parse.PushLevel(ast.LevelNode{Kind: ast.LevelParam, Name: name})
	default:
		p.errorf("expected a universe level, found %s", p.cur.Type)
		return p.zeroLevel
	}
}

func parseNat(s string) uint32 {
	var n uint32
	for _, c := range s {
		n = n*10 + uint32(c-'0')
	}
	return n
}

// --- expressions ---

func atomStart(tt TokenType) bool {
	switch tt {
	case IDENT, SORT, UNDERSCR, NAT, LPAREN, FUN, FORALL:
		return true
	}
	return false
}

// parseExpr parses a full expression: forall/lambda are prefix forms
// that extend as far right as possible, so they are only valid starting
// an expression, never as an argument without parens.
func (p *Parser) parseExpr() ast.ExprID {
	switch p.cur.Type {
	case FUN:
		return p.parseLambda()
	case FORALL:
		return p.parseForall()
	default:
		return p.parseArrow()
	}
}

func (p *Parser) parseLambda() ast.ExprID {
	start := p.pos()
	p.next() // FUN
	params, _ := p.parseTelescope()
	if len(params) == 0 {
		// `fun x => e` / `fun x : T. e` sugar: a single untyped or
		// inline-typed binder with no surrounding parens.
		name := p.expect(IDENT).Literal
		var ty ast.ExprID
		if p.cur.Type == COLON {
			p.next()
			ty = p.parseExpr()
		}
		params = []ast.Param{{Name: name, Kind: ast.Explicit, Ty: ty}}
	}
	if p.cur.Type == FARROW {
		p.next()
	} else {
		p.expect(DOT)
	}
	body := p.parseExpr()
	for i := len(params) - 1; i >= 0; i-- {
		pr := params[i]
		body = p.parse.PushExpr(ast.ExprNode{
			Kind: ast.ExprLambda, Span: ast.Span{Start: start, End: p.pos()},
			BinderKind: pr.Kind, BinderName: pr.Name, Ty: pr.Ty, Body: body,
		})
	}
	return body
}

func (p *Parser) parseForall() ast.ExprID {
	start := p.pos()
	p.next() // FORALL
	params, _ := p.parseTelescope()
	if len(params) == 0 {
		name := p.expect(IDENT).Literal
		p.expect(COLON)
		ty := p.parseExpr()
		params = []ast.Param{{Name: name, Kind: ast.Explicit, Ty: ty}}
	}
	if p.cur.Type == COMMA {
		p.next()
	} else {
		p.expect(DOT)
	}
	body := p.parseExpr()
	for i := len(params) - 1; i >= 0; i-- {
		pr := params[i]
		body = p.parse.PushExpr(ast.ExprNode{
			Kind: ast.ExprForall, Span: ast.Span{Start: start, End: p.pos()},
			BinderKind: pr.Kind, BinderName: pr.Name, Ty: pr.Ty, Body: body,
		})
	}
	return body
}

// parseArrow parses application-level expressions combined right-
// associatively with `->`, kibi's non-dependent function-type sugar.
func (p *Parser) parseArrow() ast.ExprID {
	start := p.pos()
	lhs := p.parseApplication()
	if p.cur.Type == ARROW {
		p.next()
		rhs := p.parseArrow()
		return p.parse.PushExpr(ast.ExprNode{
			Kind: ast.ExprArrow, Span: ast.Span{Start: start, End: p.pos()}, Ty: lhs, Body: rhs,
		})
	}
	return lhs
}

// parseApplication parses a head atom followed by zero or more argument
// groups: `f(a, b)` (comma list sugar) and/or bare juxtaposition `f a b`,
// both folding left into nested ExprApply nodes.
func (p *Parser) parseApplication() ast.ExprID {
	start := p.pos()
	fn := p.parsePrimary()
	for {
		if p.cur.Type == LPAREN {
			p.next()
			args := []ast.ExprID{p.parseExpr()}
			for p.cur.Type == COMMA {
				p.next()
				args = append(args, p.parseExpr())
			}
			p.expect(RPAREN)
			for _, a := range args {
				fn = p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprApply, Span: ast.Span{Start: start, End: p.pos()}, Fun: fn, Arg: a})
			}
			continue
		}
		if atomStart(p.cur.Type) && p.cur.Type != FUN && p.cur.Type != FORALL {
			arg := p.parsePrimary()
			fn = p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprApply, Span: ast.Span{Start: start, End: p.pos()}, Fun: fn, Arg: arg})
			continue
		}
		break
	}
	return fn
}

func (p *Parser) parsePrimary() ast.ExprID {
	start := p.pos()
	switch p.cur.Type {
	case SORT:
		p.next()
		lvl := p.parseLevel()
		return p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprSort, Span: ast.Span{Start: start, End: p.pos()}, Level: lvl})
	case UNDERSCR:
		p.next()
		return p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprHole, Span: ast.Span{Start: start, End: p.pos()}})
	case IDENT:
		name := p.cur.Literal
		p.next()
		if p.cur.Type == DOT && p.peek.Type == LBRACE {
			// `Name.{levels}` explicit level instantiation is parsed but
			// folded away here: the elaborator re-derives level arguments
			// from context when absent, so only the dotted name itself
			// need be recorded for resolution. A future extension could
			// thread explicit level args through a dedicated ExprNode
			// field if the elaborator needs to honor them verbatim.
			p.parseLevelParamSuffix()
		}
		return p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprIdent, Span: ast.Span{Start: start, End: p.pos()}, Name: name})
	case NAT:
		n := parseNat(p.cur.Literal)
		p.next()
		return p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprNatLit, Span: ast.Span{Start: start, End: p.pos()}, Nat: uint64(n)})
	case LPAREN:
		p.next()
		e := p.parseExpr()
		p.expect(RPAREN)
		return e
	default:
		p.errorf("expected an expression, found %s", p.cur.Type)
		return p.parse.PushExpr(ast.ExprNode{Kind: ast.ExprHole, Span: ast.Span{Start: start, End: p.pos()}})
	}
}
