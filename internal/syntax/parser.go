package syntax

import (
	"fmt"

	"github.com/tokahuke/ryan/internal/rerr"
)

// Parser turns a token stream into a *BlockExpr, accumulating
// *rerr.ParseError values instead of failing on the first mistake.
type Parser struct {
	filename string
	source   string
	toks     []Token
	pos      int
	errs     rerr.ParseErrors
}

// Parse parses a whole ryan program (the implicit top-level block) from
// source. It returns rerr.ParseErrors (possibly wrapping a single entry)
// when the program has any syntax error found by the parser. A lexer
// failure (e.g. an unterminated string) is returned instead as a single
// ERR_PARSE error carrying the lexer's message, without a source excerpt.
func Parse(filename, source string) (*BlockExpr, error) {
	toks, err := Tokenize(filename, source)
	if err != nil {
		return nil, rerr.New(rerr.CodeParse, err, nil)
	}

	p := &Parser{filename: filename, source: source, toks: toks}
	block := p.parseBlock(true)

	if len(p.errs) > 0 {
		return block, p.errs
	}
	return block, nil
}

// ParseExpr parses a single standalone expression (used for the `${...}`
// interpolations of template strings), not a full block.
func ParseExpr(filename, source string) (Expr, error) {
	toks, err := Tokenize(filename, source)
	if err != nil {
		return nil, rerr.New(rerr.CodeParse, err, nil)
	}

	p := &Parser{filename: filename, source: source, toks: toks}
	expr := p.parseExpr(0)
	if !p.atEOF() {
		p.errorf(p.peek().Span, "unexpected trailing input %q", p.peek().Text)
	}

	if len(p.errs) > 0 {
		return expr, p.errs
	}
	return expr, nil
}

// --- token stream helpers ---

func (p *Parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *Parser) peek() Token {
	if p.atEOF() {
		end := 0
		if len(p.toks) > 0 {
			end = p.toks[len(p.toks)-1].Span.End
		}
		return Token{Kind: "EOF", Text: "", Span: Span{Filename: p.filename, Start: end, End: end, Line: 1, Col: 1}}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) Token {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return p.peek()
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *Parser) isIdent(text string) bool {
	t := p.peek()
	return t.Kind == "Ident" && t.Text == text
}

func (p *Parser) isPunct(text string) bool {
	t := p.peek()
	return (t.Kind == "Punct" || t.Kind == "OpMulti" || t.Kind == "Spread") && t.Text == text
}

// isRest reports whether the cursor sits on a bare `..` token — the
// rest/open marker used by list patterns (`[a, b, ..]`), dict patterns
// (`{ a, b, .. }`), and open record types (`{ k: T, .. }`). Distinct
// from the three-dot `...expr` spread used in list/dict expressions.
func (p *Parser) isRest() bool {
	return p.peek().Kind == "Rest"
}

func (p *Parser) eatIdent(text string) bool {
	if p.isIdent(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) eatPunct(text string) bool {
	if p.isPunct(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectPunct(text string) Span {
	if p.isPunct(text) {
		return p.advance().Span
	}
	sp := p.peek().Span
	p.errorf(sp, "expected %q but found %q", text, p.peek().Text)
	return sp
}

func (p *Parser) expectIdent() (string, Span) {
	t := p.peek()
	if t.Kind != "Ident" {
		p.errorf(t.Span, "expected an identifier but found %q", t.Text)
		return "", t.Span
	}
	p.advance()
	return t.Text, t.Span
}

func (p *Parser) errorf(sp Span, format string, args ...any) {
	p.errs = append(p.errs, &rerr.ParseError{
		Message: fmt.Sprintf(format, args...),
		Span: rerr.Span{
			Filename: sp.Filename,
			Line:     sp.Line,
			Col:      sp.Col,
			Excerpt:  Excerpt(p.source, sp),
		},
	})
}

// --- blocks & bindings ---

// parseBlock parses `binding*  expr?`. When top is true, it consumes
// until EOF instead of stopping at a closing `}`.
func (p *Parser) parseBlock(top bool) *BlockExpr {
	start := p.peek().Span
	block := &BlockExpr{Sp: start}

	for {
		if p.atEOF() {
			break
		}
		if !top && p.isPunct("}") {
			break
		}
		if p.isIdent("let") || p.isIdent("type") {
			block.Bindings = append(block.Bindings, p.parseBinding())
			p.eatPunct(";")
			continue
		}
		break
	}

	if !p.atEOF() && !(!top && p.isPunct("}")) {
		block.Result = p.parseExpr(0)
		p.eatPunct(";")
	}

	return block
}

func (p *Parser) parseBinding() Binding {
	start := p.peek().Span

	if p.eatIdent("type") {
		name, _ := p.expectIdent()
		p.expectPunct("=")
		texpr := p.parseTypeExpr()
		return &TypeDef{Identifier: name, Type: texpr, Sp: start}
	}

	p.eatIdent("let") // already checked by caller, but tolerate re-entry

	// Disambiguate `let name pattern = block` (a pattern-match
	// definition, identifier followed by a pattern) from
	// `let pattern = block` (destructuring): a PatternMatchDef always
	// starts with a bare identifier immediately followed by the start of
	// another pattern token. A bare identifier followed directly by `=`
	// is the identifier pattern of a destructuring, so `let x = 1` binds
	// the value 1 to x.
	if p.peek().Kind == "Ident" && !IsKeyword(p.peek().Text) {
		name, _ := p.expectIdent()
		if p.isPunct("=") {
			p.advance()
			body := p.parseBindingBody()
			return &Destructuring{Pattern: PatIdentifier{Name: name}, Body: body, Sp: start}
		}
		pattern := p.parsePattern()
		p.expectPunct("=")
		body := p.parseBindingBody()
		return &PatternMatchDef{Identifier: name, Pattern: pattern, Body: body, Sp: start}
	}

	pattern := p.parsePattern()
	p.expectPunct("=")
	body := p.parseBindingBody()
	return &Destructuring{Pattern: pattern, Body: body, Sp: start}
}

// parseBindingBody parses the right-hand side of a binding: either an
// explicit `{ ... }` block or a single expression, which is sugar for a
// block with no bindings of its own. A `{` that opens a dict literal
// (`{}`, `{...spread`, or a text or identifier key followed by `:`) is
// parsed as that expression, not as a block.
func (p *Parser) parseBindingBody() *BlockExpr {
	if p.isPunct("{") {
		next, after := p.peekAt(1), p.peekAt(2)
		isDict := (next.Kind == "Punct" && next.Text == "}") || next.Kind == "Spread" ||
			((next.Kind == "String" || next.Kind == "Ident") && after.Kind == "Punct" && after.Text == ":")
		if !isDict {
			return p.parseBraceBlock()
		}
	}
	start := p.peek().Span
	expr := p.parseExpr(0)
	return &BlockExpr{Result: expr, Sp: start}
}

func (p *Parser) parseBraceBlock() *BlockExpr {
	p.expectPunct("{")
	block := p.parseBlock(false)
	p.expectPunct("}")
	return block
}

// --- patterns ---

func (p *Parser) parsePattern() Pattern {
	if p.isIdent("_") || p.isPunct("_") {
		p.advance()
		return PatWildcard{}
	}

	t := p.peek()

	switch {
	case t.Kind == "Ident" && t.Text == "_":
		p.advance()
		return PatWildcard{}
	case t.Kind == "Ident" && !IsKeyword(t.Text):
		p.advance()
		var guard TypeExpr
		if p.eatPunct(":") {
			guard = p.parseTypeExpr()
		}
		return PatIdentifier{Name: t.Text, TypeGuard: guard}
	case t.Kind == "Ident" && (t.Text == "null" || t.Text == "true" || t.Text == "false"):
		lit := p.parseLiteralToken()
		return PatLiteral{Lit: lit}
	case t.Kind == "Int" || t.Kind == "Float" || t.Kind == "String":
		lit := p.parseLiteralToken()
		return PatLiteral{Lit: lit}
	case t.Kind == "Punct" && t.Text == "[":
		return p.parseListPattern()
	case t.Kind == "Punct" && t.Text == "{":
		return p.parseDictPattern()
	default:
		p.errorf(t.Span, "expected a pattern but found %q", t.Text)
		p.advance()
		return PatWildcard{}
	}
}

func (p *Parser) parseLiteralToken() *Literal {
	t := p.advance()
	lit := &Literal{Sp: t.Span}
	switch {
	case t.Kind == "Ident" && t.Text == "null":
		lit.Kind = LitNull
	case t.Kind == "Ident" && t.Text == "true":
		lit.Kind, lit.Bool = LitBool, true
	case t.Kind == "Ident" && t.Text == "false":
		lit.Kind, lit.Bool = LitBool, false
	case t.Kind == "Int":
		lit.Kind = LitInteger
		lit.Int = parseInt(t.Text)
	case t.Kind == "Float":
		lit.Kind = LitFloat
		lit.Flt = parseFloat(t.Text)
	case t.Kind == "String":
		lit.Kind = LitText
		lit.Text = unescapeString(t.Text)
	case t.Kind == "Ident":
		lit.Kind = LitIdent
		lit.Ident = t.Text
	}
	return lit
}

// parseListPattern parses `[a, b, ..]` or `[.., a, b]` (and, as a
// superset extension, a name may follow the `..` to bind the remainder
// instead of discarding it, e.g. `[a, b, ..rest]`); the rest marker may
// appear at most once, either leading (MatchTail) or trailing
// (MatchHead). This is the bare two-dot `..` token, not the three-dot
// `...expr` list-expression spread.
func (p *Parser) parseListPattern() Pattern {
	p.expectPunct("[")

	var before []Pattern
	var restPat Pattern
	var after []Pattern
	sawSpread := false

	for !p.isPunct("]") && !p.atEOF() {
		if p.isRest() {
			p.advance()
			sawSpread = true
			if !p.isPunct("]") && !p.isPunct(",") {
				restPat = p.parsePattern()
			} else {
				restPat = PatWildcard{}
			}
		} else {
			elem := p.parsePattern()
			if sawSpread {
				after = append(after, elem)
			} else {
				before = append(before, elem)
			}
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("]")

	if !sawSpread {
		return PatList{Elems: before}
	}
	if len(after) > 0 {
		return PatTail{Rest: restPat, Elems: after}
	}
	return PatHead{Elems: before, Rest: restPat}
}

func (p *Parser) parseDictPattern() Pattern {
	p.expectPunct("{")
	strict := true
	var items []DictPatternItem

	for !p.isPunct("}") && !p.atEOF() {
		if p.isRest() {
			p.advance()
			strict = false
			if !p.eatPunct(",") {
				break
			}
			continue
		}
		key, _ := p.expectIdent()
		var pat Pattern
		if p.eatPunct(":") {
			pat = p.parsePattern()
		} else {
			pat = PatIdentifier{Name: key}
		}
		items = append(items, DictPatternItem{Key: key, Pattern: pat})
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("}")

	if strict {
		return PatDictStrict{Items: items}
	}
	return PatDict{Items: items}
}

// --- type expressions ---
//
// Surface syntax matches spec.md's "Syntax highlights" line verbatim:
// [T], {T} (dict of T), (T1, T2, …) (tuple), { k: T, .. } (record),
// { k: T } (strict record), T | U (union), T? (nullable), and lowercase
// primitives any|null|bool|int|float|text|number. Resolved TypeName
// nodes still carry the capitalized canonical names ("Integer", "Text",
// ...) that internal/value and internal/eval already use everywhere
// else — the lowercase spellings are surface sugar recognized only in
// type position, translated here, not a second internal type system.

func (p *Parser) parseTypeExpr() TypeExpr {
	first := p.parseTypeExprPostfix()
	if !p.isPunct("|") {
		return first
	}
	alts := []TypeExpr{first}
	for p.eatPunct("|") {
		alts = append(alts, p.parseTypeExprPostfix())
	}
	return TypeOr{Alts: alts}
}

// parseTypeExprPostfix parses one type atom followed by zero or more
// trailing `?` markers; `T?` is sugar for `T | null`.
func (p *Parser) parseTypeExprPostfix() TypeExpr {
	t := p.parseTypeExprAtom()
	for p.eatPunct("?") {
		t = TypeOr{Alts: []TypeExpr{t, TypeName{Name: "Null"}}}
	}
	return t
}

func (p *Parser) parseTypeExprAtom() TypeExpr {
	t := p.peek()

	if t.Kind == "Ident" {
		switch t.Text {
		case "any":
			p.advance()
			return TypeName{Name: "Any"}
		case "null":
			p.advance()
			return TypeName{Name: "Null"}
		case "bool":
			p.advance()
			return TypeName{Name: "Bool"}
		case "int":
			p.advance()
			return TypeName{Name: "Integer"}
		case "float":
			p.advance()
			return TypeName{Name: "Float"}
		case "text":
			p.advance()
			return TypeName{Name: "Text"}
		case "number":
			p.advance()
			return TypeOr{Alts: []TypeExpr{TypeName{Name: "Integer"}, TypeName{Name: "Float"}}}
		default:
			// Any other identifier names a user-defined type alias
			// introduced by `type X = ...`, resolved against scope at
			// evaluation time.
			p.advance()
			return TypeVariable{Name: t.Text}
		}
	}

	if t.Kind == "Punct" && t.Text == "[" {
		p.advance()
		elem := p.parseTypeExpr()
		p.expectPunct("]")
		return TypeList{Elem: elem}
	}

	if t.Kind == "Punct" && t.Text == "(" {
		p.advance()
		var elems []TypeExpr
		for !p.isPunct(")") && !p.atEOF() {
			elems = append(elems, p.parseTypeExpr())
			if !p.eatPunct(",") {
				break
			}
		}
		p.expectPunct(")")
		return TypeTuple{Elems: elems}
	}

	if t.Kind == "Punct" && t.Text == "{" {
		return p.parseTypeBrace()
	}

	p.errorf(t.Span, "expected a type but found %q", t.Text)
	p.advance()
	return TypeName{Name: "Any"}
}

// parseTypeBrace disambiguates the three `{`-led type forms: `{T}`
// (dict of T), `{ k: T, .. }` / `{ .. }` (open record), and `{k: T}` /
// `{}` (strict record). A field-looking prefix
// (`identifier ":"`) or a leading `..` commits to the record forms;
// anything else is a single type expression for the dict-of form.
func (p *Parser) parseTypeBrace() TypeExpr {
	p.expectPunct("{")

	if p.isPunct("}") {
		p.advance()
		return TypeRecord{Strict: true}
	}
	if p.isRest() {
		return p.parseTypeRecordFields()
	}
	if p.isFieldStart() {
		return p.parseTypeRecordFields()
	}

	elem := p.parseTypeExpr()
	p.expectPunct("}")
	return TypeDict{Elem: elem}
}

// isFieldStart reports whether the parser is sitting on an
// `identifier ":"` pair, the start of a record field.
func (p *Parser) isFieldStart() bool {
	t := p.peek()
	if t.Kind != "Ident" {
		return false
	}
	next := p.peekAt(1)
	return (next.Kind == "Punct") && (next.Text == ":" || next.Text == "?")
}

// parseTypeRecordFields parses the field list of a record/strict-record
// type, with the leading "{" already consumed.
func (p *Parser) parseTypeRecordFields() TypeExpr {
	strict := true
	var fields []TypeRecordField

	for !p.isPunct("}") && !p.atEOF() {
		if p.isRest() {
			p.advance()
			strict = false
			if !p.eatPunct(",") {
				break
			}
			continue
		}
		key, _ := p.expectIdent()
		optional := p.eatPunct("?")
		p.expectPunct(":")
		ftype := p.parseTypeExpr()
		fields = append(fields, TypeRecordField{Key: key, Type: ftype, Optional: optional})
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct("}")

	return TypeRecord{Fields: fields, Strict: strict}
}

// --- expressions: Pratt / precedence-climbing ---

// precedence mirrors spec.md §4.1's numbered table, lowest-binds-loosest
// first: or(1) < and(2) < not(3, prefix) < equality/comparison/type-
// match/in(4) < additive(5) < %(6) < multiplicative(7) < default ?(8) <
// juxtaposition(9, right-assoc) < postfix access(10).
func precedence(op string) int {
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case "==", "!=", ">", ">=", "<", "<=", ":", "in":
		return 4
	case "+", "-":
		return 5
	case "%":
		return 6
	case "*", "/":
		return 7
	case "?":
		return 8
	}
	return -1
}

func (p *Parser) parseExpr(minPrec int) Expr {
	left := p.parseUnary()

	for {
		op, ok := p.peekBinaryOp()
		if !ok {
			break
		}
		prec := precedence(op)
		if prec < minPrec {
			break
		}

		// juxtaposition (function application) binds tighter than any
		// named operator and is right-associative; it's recognized
		// implicitly (no operator token) rather than through this loop,
		// see parseUnary/parsePostfix.
		start := p.peek().Span
		p.advance()
		nextMinPrec := prec + 1
		right := p.parseExpr(nextMinPrec)
		left = &BinaryOp{Op: op, Left: left, Right: right, Sp: start}
	}

	return left
}

// peekBinaryOp reports the textual operator at the cursor, if the
// current token begins a binary operator.
func (p *Parser) peekBinaryOp() (string, bool) {
	t := p.peek()
	if t.Kind == "Ident" {
		switch t.Text {
		case "or", "and", "in":
			return t.Text, true
		}
		return "", false
	}
	if t.Kind == "OpMulti" {
		return t.Text, true
	}
	if t.Kind == "Punct" {
		switch t.Text {
		case "+", "-", "*", "/", "%", "?", "<", ">", ":":
			return t.Text, true
		}
	}
	return "", false
}

func (p *Parser) parseUnary() Expr {
	if p.isIdent("not") {
		start := p.advance().Span
		operand := p.parseExpr(precedence("=="))
		return &PrefixOp{Op: "not", Operand: operand, Sp: start}
	}
	return p.parseJuxtaposition()
}

// parseJuxtaposition implements function application as adjacency:
// `f x` is `f` applied to `x`, right-associative, binding tighter than
// any named binary operator but looser than postfix access.
func (p *Parser) parseJuxtaposition() Expr {
	left := p.parsePostfix()

	if p.startsApplicationArg() {
		arg := p.parseJuxtaposition()
		return &BinaryOp{Op: "apply", Left: left, Right: arg, Sp: arg.Span()}
	}

	return left
}

// startsApplicationArg reports whether the token at the cursor can begin
// a juxtaposed argument rather than a binary operator, statement
// terminator, or closing bracket.
func (p *Parser) startsApplicationArg() bool {
	t := p.peek()
	switch t.Kind {
	case "Ident":
		if IsKeyword(t.Text) {
			return t.Text == "null" || t.Text == "true" || t.Text == "false"
		}
		return true
	case "Int", "Float", "String", "TemplateString":
		return true
	case "Punct":
		return t.Text == "(" || t.Text == "[" || t.Text == "{"
	}
	return false
}

func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.isPunct("."):
			start := p.advance().Span
			field, _ := p.expectIdent()
			expr = &PostfixOp{Op: "access", Operand: expr, Field: field, Sp: start}
		case p.isPunct("[") && p.pos > 0 && p.toks[p.pos-1].Span.End == p.peek().Span.Start:
			// only a `[` written directly against its operand (`x[0]`) is
			// the postfix path form; a spaced `f [a, b]` is a juxtaposed
			// list argument.
			start := p.advance().Span
			var keys []ListItem
			for !p.isPunct("]") && !p.atEOF() {
				keys = append(keys, ListItem{Expr: p.parseExpr(0)})
				if !p.eatPunct(",") {
					break
				}
			}
			p.expectPunct("]")
			expr = &PostfixOp{Op: "path", Operand: expr, Path: &ListLit{Items: keys, Sp: start}, Sp: start}
		case p.isIdent("as"):
			start := p.advance().Span
			castTo := p.parseTypeExprAtom()
			expr = &PostfixOp{Op: "cast", Operand: expr, CastTo: castTo, Sp: start}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	t := p.peek()

	switch t.Kind {
	case "Int", "Float", "String":
		return p.parseLiteralToken()
	case "TemplateString":
		return p.parseTemplateStringToken()
	case "Ident":
		switch t.Text {
		case "null", "true", "false":
			return p.parseLiteralToken()
		case "if":
			return p.parseConditional()
		case "import":
			return p.parseImport()
		default:
			p.advance()
			return &Literal{Kind: LitIdent, Ident: t.Text, Sp: t.Span}
		}
	case "Punct":
		switch t.Text {
		case "(":
			p.advance()
			e := p.parseExpr(0)
			p.expectPunct(")")
			return e
		case "-":
			start := p.advance().Span
			operand := p.parsePostfix()
			return &PrefixOp{Op: "neg", Operand: operand, Sp: start}
		case "[":
			return p.parseListLit()
		case "{":
			return p.parseDictOrComprehension()
		}
	}

	p.errorf(t.Span, "unexpected token %q", t.Text)
	p.advance()
	return &Literal{Kind: LitNull, Sp: t.Span}
}

func (p *Parser) parseConditional() Expr {
	start := p.advance().Span // "if"
	cond := p.parseExpr(0)
	if !p.eatIdent("then") {
		p.errorf(p.peek().Span, "expected \"then\"")
	}
	thenE := p.parseExpr(0)
	if !p.eatIdent("else") {
		p.errorf(p.peek().Span, "expected \"else\"")
	}
	elseE := p.parseExpr(0)
	return &Conditional{Cond: cond, Then: thenE, Else: elseE, Sp: start}
}

func (p *Parser) parseImport() Expr {
	start := p.advance().Span // "import"
	t := p.peek()
	if t.Kind != "String" {
		p.errorf(t.Span, "expected a string path after \"import\"")
		return &Import{Sp: start}
	}
	p.advance()
	path := unescapeString(t.Text)

	format := ImportRyan
	if p.isIdent("as") {
		p.advance()
		if !p.eatIdent("text") {
			p.errorf(p.peek().Span, "expected \"text\" after \"as\"")
		}
		format = ImportText
	}

	var def Expr
	if p.eatIdent("or") {
		def = p.parseExpr(0)
	}

	return &Import{Path: path, Format: format, Default: def, Sp: start}
}

// parseListLit parses `[item, item, ...spread]` or `[expr for p in e ...]`.
func (p *Parser) parseListLit() Expr {
	start := p.expectPunct("[")

	if p.isPunct("]") {
		p.advance()
		return &ListLit{Sp: start}
	}

	first := p.parseSpreadableExpr()

	if p.isIdent("for") {
		clauses, guard := p.parseForClauses()
		p.expectPunct("]")
		return &ListComprehension{Element: first.Expr, Clauses: clauses, Guard: guard, Sp: start}
	}

	items := []ListItem{first}
	for p.eatPunct(",") {
		if p.isPunct("]") {
			break
		}
		items = append(items, p.parseSpreadableExpr())
	}
	p.expectPunct("]")
	return &ListLit{Items: items, Sp: start}
}

func (p *Parser) parseSpreadableExpr() ListItem {
	if p.isPunct("...") {
		p.advance()
		return ListItem{Expr: p.parseExpr(0), Spread: true}
	}
	return ListItem{Expr: p.parseExpr(0)}
}

func (p *Parser) parseForClauses() ([]ForClause, Expr) {
	var clauses []ForClause
	for p.eatIdent("for") {
		pat := p.parsePattern()
		if !p.eatIdent("in") {
			p.errorf(p.peek().Span, "expected \"in\" in for-clause")
		}
		src := p.parseExpr(0)
		clauses = append(clauses, ForClause{Pattern: pat, Source: src})
	}
	var guard Expr
	if p.eatIdent("if") {
		guard = p.parseExpr(0)
	}
	return clauses, guard
}

// parseDictOrComprehension parses `{k: v, ...}` or `{k: v for p in e}`.
func (p *Parser) parseDictOrComprehension() Expr {
	start := p.expectPunct("{")

	if p.isPunct("}") {
		p.advance()
		return &DictLit{Sp: start}
	}

	if p.isPunct("...") {
		entry := p.parseDictEntry()
		entries := []DictEntry{entry}
		for p.eatPunct(",") {
			if p.isPunct("}") {
				break
			}
			entries = append(entries, p.parseDictEntry())
		}
		p.expectPunct("}")
		return &DictLit{Entries: entries, Sp: start}
	}

	key := p.parseExpr(5)
	p.expectPunct(":")
	value := p.parseExpr(0)

	if p.isIdent("for") {
		clauses, guard := p.parseForClauses()
		p.expectPunct("}")
		return &DictComprehension{Key: key, Value: value, Clauses: clauses, Guard: guard, Sp: start}
	}

	var guard Expr
	if p.eatIdent("if") {
		guard = p.parseExpr(0)
	}

	entries := []DictEntry{{Key: key, Value: value, Guard: guard}}
	for p.eatPunct(",") {
		if p.isPunct("}") {
			break
		}
		entries = append(entries, p.parseDictEntry())
	}
	p.expectPunct("}")
	return &DictLit{Entries: entries, Sp: start}
}

func (p *Parser) parseDictEntry() DictEntry {
	if p.isPunct("...") {
		p.advance()
		return DictEntry{Spread: p.parseExpr(0)}
	}
	key := p.parseExpr(5)
	p.expectPunct(":")
	value := p.parseExpr(0)
	var guard Expr
	if p.eatIdent("if") {
		guard = p.parseExpr(0)
	}
	return DictEntry{Key: key, Value: value, Guard: guard}
}

// parseTemplateStringToken splits a raw `` `...` `` token into text and
// `${...}` interpolation chunks, recursively lexing+parsing each
// interpolation as its own expression. Backtick template strings can't
// be tokenized by a flat regex alone because `${...}` bodies may contain
// arbitrarily nested braces (e.g. a dict literal), so this walks the raw
// text with a brace counter instead.
func (p *Parser) parseTemplateStringToken() Expr {
	t := p.advance()
	raw := t.Text
	// strip the surrounding backticks
	inner := raw[1 : len(raw)-1]

	ts := &TemplateString{Sp: t.Span}
	var textBuf []byte

	i := 0
	for i < len(inner) {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			switch inner[i+1] {
			case '`':
				textBuf = append(textBuf, '`')
			case '$':
				textBuf = append(textBuf, '$')
			case 'n':
				textBuf = append(textBuf, '\n')
			case 't':
				textBuf = append(textBuf, '\t')
			case '\\':
				textBuf = append(textBuf, '\\')
			default:
				textBuf = append(textBuf, inner[i+1])
			}
			i += 2
		case c == '$' && i+1 < len(inner) && inner[i+1] == '{':
			if len(textBuf) > 0 {
				ts.Chunks = append(ts.Chunks, TemplateStringChunk{Text: string(textBuf)})
				textBuf = nil
			}
			depth := 1
			j := i + 2
			for j < len(inner) && depth > 0 {
				switch inner[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			body := inner[i+2 : j]
			expr, err := ParseExpr(t.Span.Filename, body)
			if err != nil {
				if pes, ok := err.(interface {
					Error() string
				}); ok {
					p.errorf(t.Span, "invalid interpolation: %s", pes.Error())
				}
			}
			ts.Chunks = append(ts.Chunks, TemplateStringChunk{Expr: expr})
			i = j + 1
		default:
			textBuf = append(textBuf, c)
			i++
		}
	}
	if len(textBuf) > 0 {
		ts.Chunks = append(ts.Chunks, TemplateStringChunk{Text: string(textBuf)})
	}

	return ts
}

// --- literal text helpers ---

func parseInt(s string) int64 {
	var n int64
	for _, c := range s {
		n = n*10 + int64(c-'0')
	}
	return n
}

func parseFloat(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%g", &f)
	return f
}

// unescapeString decodes a quoted string literal's body: the standard
// JSON escapes (\n \t \r \b \f \" \\ \/) plus a `\u0000`-style 4-hex-digit
// codepoint escape, per spec.md §4.1.
func unescapeString(raw string) string {
	inner := raw[1 : len(raw)-1]
	var b []byte
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			case 'r':
				b = append(b, '\r')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '"':
				b = append(b, '"')
			case '/':
				b = append(b, '/')
			case '\\':
				b = append(b, '\\')
			case 'u':
				if i+4 < len(inner) {
					if r, ok := parseHex4(inner[i+1 : i+5]); ok {
						b = append(b, encodeRune(r)...)
						i += 4
						continue
					}
				}
				b = append(b, 'u')
			default:
				b = append(b, inner[i])
			}
			continue
		}
		b = append(b, inner[i])
	}
	return string(b)
}

func parseHex4(s string) (rune, bool) {
	var r rune
	for _, c := range s {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= c - '0'
		case c >= 'a' && c <= 'f':
			r |= c - 'a' + 10
		case c >= 'A' && c <= 'F':
			r |= c - 'A' + 10
		default:
			return 0, false
		}
	}
	return r, true
}

func encodeRune(r rune) []byte {
	return []byte(string(r))
}
