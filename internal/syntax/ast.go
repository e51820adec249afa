// Package syntax implements the ryan lexer, parser, and abstract syntax
// tree. The parse tree and the AST are the same pass here: unlike a
// two-stage grammar-then-AST-builder pipeline, error accumulation only
// needs span-tagged nodes, not a second tree shape, so the
// recursive-descent parser builds these node types directly.
package syntax

// Expr is any ryan expression node.
type Expr interface {
	Span() Span
}

// Literal is a leaf value: null, a bool, a number, text, or a bare
// identifier reference.
type Literal struct {
	Kind LiteralKind
	Text string
	Int  int64
	Flt  float64
	Bool bool
	Ident string
	Sp    Span
}

func (l *Literal) Span() Span { return l.Sp }

type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInteger
	LitFloat
	LitText
	LitIdent
)

// TemplateStringChunk is either verbatim text or an interpolated
// expression inside a backtick template string.
type TemplateStringChunk struct {
	Text string
	Expr Expr // nil when this is a Text chunk
}

// TemplateString is a backtick-delimited string with `${...}`
// interpolation.
type TemplateString struct {
	Chunks []TemplateStringChunk
	Sp     Span
}

func (t *TemplateString) Span() Span { return t.Sp }

// ListItem is either a plain element or a `...expr` spread.
type ListItem struct {
	Expr   Expr
	Spread bool
}

// ListLit is a `[a, b, ...c]` literal.
type ListLit struct {
	Items []ListItem
	Sp    Span
}

func (l *ListLit) Span() Span { return l.Sp }

// DictEntry is either a `key: value [if guard]` entry or a `...expr`
// spread.
type DictEntry struct {
	Key    Expr // a bare identifier is its own name; any other key must evaluate to Text
	Value  Expr
	Guard  Expr // optional; entry is skipped when present and falsy
	Spread Expr // non-nil for a `...expr` entry; Key/Value unused then
}

// DictLit is a `{k: v, ...}` literal.
type DictLit struct {
	Entries []DictEntry
	Sp      Span
}

func (d *DictLit) Span() Span { return d.Sp }

// Conditional is `if cond then a else b`.
type Conditional struct {
	Cond, Then, Else Expr
	Sp               Span
}

func (c *Conditional) Span() Span { return c.Sp }

// BinaryOp is any infix operator application.
type BinaryOp struct {
	Op          string
	Left, Right Expr
	Sp          Span
}

func (b *BinaryOp) Span() Span { return b.Sp }

// PrefixOp is `not expr`.
type PrefixOp struct {
	Op      string
	Operand Expr
	Sp      Span
}

func (p *PrefixOp) Span() Span { return p.Sp }

// PostfixOp is `.field`, `[path]`, or `as Type` applied to Operand.
type PostfixOp struct {
	Op      string // "access", "path", "cast"
	Operand Expr
	Field   string   // for "access"
	Path    Expr     // for "path"
	CastTo  TypeExpr // for "cast"
	Sp      Span
}

func (p *PostfixOp) Span() Span { return p.Sp }

// ImportFormat distinguishes `import "x"` (parsed as ryan) from
// `import "x" as text` (verbatim).
type ImportFormat int

const (
	ImportRyan ImportFormat = iota
	ImportText
)

// Import is an `import "path" [as text] [or default]` expression.
type Import struct {
	Path    string
	Format  ImportFormat
	Default Expr // optional fallback
	Sp      Span
}

func (i *Import) Span() Span { return i.Sp }

// ForClause is one `for pattern in expr` clause of a comprehension.
type ForClause struct {
	Pattern Pattern
	Source  Expr
}

// ListComprehension is `[expr for p1 in e1 for p2 in e2 if guard]`.
type ListComprehension struct {
	Element Expr
	Clauses []ForClause
	Guard   Expr // optional
	Sp      Span
}

func (l *ListComprehension) Span() Span { return l.Sp }

// DictComprehension is `{key: value for p in e if guard}`.
type DictComprehension struct {
	Key, Value Expr
	Clauses    []ForClause
	Guard      Expr // optional
	Sp         Span
}

func (d *DictComprehension) Span() Span { return d.Sp }

// BlockExpr is `{ bindings...; expr }` used wherever a nested scope is
// allowed (pattern-match bodies, the top-level program).
type BlockExpr struct {
	Bindings []Binding
	Result   Expr // nil means the block evaluates to null
	Sp       Span
}

func (b *BlockExpr) Span() Span { return b.Sp }

// Binding is one of the three statement forms allowed inside a block.
type Binding interface {
	bindingNode()
}

// PatternMatchDef is `let name pattern = block` (an argument-free
// `let name = block` is a Destructuring with a PatIdentifier pattern
// instead). Redefining the same name appends a new alternative after
// any existing ones.
type PatternMatchDef struct {
	Identifier string
	Pattern    Pattern
	Body       *BlockExpr
	Sp         Span
}

func (*PatternMatchDef) bindingNode() {}

// Destructuring is `let pattern = block`, binding every identifier the
// pattern introduces into the enclosing scope.
type Destructuring struct {
	Pattern Pattern
	Body    *BlockExpr
	Sp      Span
}

func (*Destructuring) bindingNode() {}

// TypeDef is `type Name = typeExpr`.
type TypeDef struct {
	Identifier string
	Type       TypeExpr
	Sp         Span
}

func (*TypeDef) bindingNode() {}

// Pattern is any pattern-matching node.
type Pattern interface {
	patternNode()
}

type PatWildcard struct{}

func (PatWildcard) patternNode() {}

// PatIdentifier binds the matched value to Name, optionally requiring it
// to satisfy TypeGuard.
type PatIdentifier struct {
	Name      string
	TypeGuard TypeExpr // nil when unguarded
}

func (PatIdentifier) patternNode() {}

// PatLiteral matches only an exactly-equal literal value.
type PatLiteral struct {
	Lit *Literal
}

func (PatLiteral) patternNode() {}

// PatList matches a list of exactly len(Elems) elements.
type PatList struct {
	Elems []Pattern
}

func (PatList) patternNode() {}

// PatHead matches a list whose prefix binds Elems, and whose remainder
// (of any length, possibly empty) binds Rest.
type PatHead struct {
	Elems []Pattern
	Rest  Pattern
}

func (PatHead) patternNode() {}

// PatTail matches a list whose suffix binds Elems (bound pairwise from
// the right), and whose remaining prefix binds Rest.
type PatTail struct {
	Rest  Pattern
	Elems []Pattern
}

func (PatTail) patternNode() {}

// DictPatternItem is one `key: pattern` entry of a dict pattern; a bare
// `key` shorthand desugars to PatIdentifier{Name: key}.
type DictPatternItem struct {
	Key     string
	Pattern Pattern
}

// PatDict matches a map that contains at least the declared keys (extra
// keys are ignored).
type PatDict struct {
	Items []DictPatternItem
}

func (PatDict) patternNode() {}

// PatDictStrict matches a map whose key set is exactly the declared
// keys, no more, no fewer.
type PatDictStrict struct {
	Items []DictPatternItem
}

func (PatDictStrict) patternNode() {}

// TypeExpr is any type-expression node (the syntax for a type, as
// opposed to value.Type, its evaluated form).
type TypeExpr interface {
	typeExprNode()
}

type TypeName struct {
	// One of: Any, Null, Bool, Integer, Float, Text, Opaque.
	Name string
}

func (TypeName) typeExprNode() {}

// TypeVariable references a named type bound earlier via `type X = ...`.
type TypeVariable struct {
	Name string
}

func (TypeVariable) typeExprNode() {}

type TypeList struct{ Elem TypeExpr }

func (TypeList) typeExprNode() {}

type TypeDict struct{ Elem TypeExpr }

func (TypeDict) typeExprNode() {}

type TypeTuple struct{ Elems []TypeExpr }

func (TypeTuple) typeExprNode() {}

type TypeRecordField struct {
	Key      string
	Type     TypeExpr
	Optional bool
}

type TypeRecord struct {
	Fields []TypeRecordField
	Strict bool
}

func (TypeRecord) typeExprNode() {}

type TypeOr struct{ Alts []TypeExpr }

func (TypeOr) typeExprNode() {}
