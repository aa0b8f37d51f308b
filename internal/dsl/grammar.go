package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Keyword", Pattern: `(?i)\b(AND|OR|XOR|NOT|IS|NULL|TRUE|FALSE|IN|STARTS|ENDS|WITH|CONTAINS|CASE|WHEN|THEN|ELSE|END|EXISTS|MATCH|WHERE|DISTINCT|AS|ASC|DESC|SHORTEST|ALL|ANY|GROUPS)\b`},
	{Name: "Param", Pattern: `\$[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Float", Pattern: `\d+\.\d+(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `>>|<<|--|::|\.\.|\+=|<>|<=|>=|!=|=~|<-|->|[-+*/%^=<>(){}\[\]:,.]`},
})

func options() []participle.Option {
	return []participle.Option{
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
		participle.UseLookahead(4),
	}
}

var (
	exprParser       = participle.MustBuild[expression](options()...)
	patternParser    = participle.MustBuild[patternSource](options()...)
	projectionParser = participle.MustBuild[projection](options()...)
	sortParser       = participle.MustBuild[sortItem](options()...)
	setParser        = participle.MustBuild[setItem](options()...)
	removeParser     = participle.MustBuild[removeItem](options()...)
)

// Patterns and chains.

type patternSource struct {
	Pos      lexer.Position
	PathVar  string       `(@Ident "=")?`
	Selector *selector    `@@?`
	Pattern  *pathPattern `( @@`
	Chain    *chain       `| @@ )`
}

type selector struct {
	Pos         lexer.Position
	AllShortest bool `( @("ALL" "SHORTEST")`
	Shortest    *int `| "SHORTEST" @Int`
	Groups      bool `  @"GROUPS"?`
	Any         bool `| @"ANY"`
	AnyK        *int `  @Int? )`
}

type pathPattern struct {
	First *nodePattern `@@`
	Steps []*step      `@@*`
}

type step struct {
	Rel  *relPattern  `@@`
	Node *nodePattern `@@`
}

type nodePattern struct {
	Variable string  `"(" @Ident?`
	Label    string  `(":" @Ident)?`
	Props    *mapLit `@@? ")"`
}

type relPattern struct {
	Pos      lexer.Position
	Backward bool        `( @"<-" | "-" )`
	Variable string      `"[" @Ident?`
	Type     string      `(":" @Ident)?`
	Length   *bracketLen `@@?`
	Props    *mapLit     `@@? "]"`
	Forward  bool        `( @"->" | "-" )`
	Quant    *quantifier `@@?`
}

type bracketLen struct {
	Star  bool `@"*"`
	Min   *int `@Int?`
	Range bool `@".."?`
	Max   *int `@Int?`
}

type quantifier struct {
	Plus  bool `( @"+"`
	Star  bool `| @"*"`
	Min   *int `| "{" @Int`
	Comma bool `  @","?`
	Max   *int `  @Int? "}" )`
}

type chain struct {
	First *chainTerm   `@@`
	Links []*chainLink `@@*`
}

type chainLink struct {
	Op   string     `@(">>" | "<<" | "--")`
	Term *chainTerm `@@`
}

type chainTerm struct {
	First string      `@Ident`
	Bound bool        `( @"::"`
	Name  string      `  @Ident? )?`
	Quant *quantifier `@@?`
	Props *mapLit     `@@?`
}

// Expressions, loosest binding first.

type expression struct {
	Or *orExpr `@@`
}

type orExpr struct {
	Left  *xorExpr   `@@`
	Right []*xorExpr `("OR" @@)*`
}

type xorExpr struct {
	Left  *andExpr   `@@`
	Right []*andExpr `("XOR" @@)*`
}

type andExpr struct {
	Left  *notExpr   `@@`
	Right []*notExpr `("AND" @@)*`
}

type notExpr struct {
	Not *notExpr    `  "NOT" @@`
	Cmp *comparison `| @@`
}

type comparison struct {
	Left *additive `@@`
	Tail *cmpTail  `@@?`
}

type cmpTail struct {
	Null  *nullCheck `( @@`
	Op    string     `| @("=" | "<>" | "!=" | "<=" | ">=" | "<" | ">" | "=~" | "IN" | "CONTAINS" | "STARTS" "WITH" | "ENDS" "WITH")`
	Right *additive  `  @@ )`
}

type nullCheck struct {
	Not bool `"IS" @"NOT"? "NULL"`
}

type additive struct {
	Left *multiplicative `@@`
	Ops  []*addOp        `@@*`
}

type addOp struct {
	Op    string          `@("+" | "-")`
	Right *multiplicative `@@`
}

type multiplicative struct {
	Left *power   `@@`
	Ops  []*mulOp `@@*`
}

type mulOp struct {
	Op    string `@("*" | "/" | "%")`
	Right *power `@@`
}

type power struct {
	Left  *unary   `@@`
	Right []*unary `("^" @@)*`
}

type unary struct {
	Neg     *unary   `  "-" @@`
	Postfix *postfix `| @@`
}

type postfix struct {
	Atom   *atom    `@@`
	Keys   []string `("." @(Ident | Keyword))*`
	Labels []string `(":" @Ident)*`
}

type atom struct {
	Pos    lexer.Position
	Float  *float64    `  @Float`
	Int    *int64      `| @Int`
	String *string     `| @String`
	True   bool        `| @"TRUE"`
	False  bool        `| @"FALSE"`
	Null   bool        `| @"NULL"`
	Param  string      `| @Param`
	Case   *caseExpr   `| @@`
	Exists *existsExpr `| @@`
	List   *listLit    `| @@`
	Map    *mapLit     `| @@`
	Ref    *ref        `| @@`
	Paren  *expression `| "(" @@ ")"`
}

type ref struct {
	Parts []string  `@Ident ("." @(Ident | Keyword))*`
	Call  *callArgs `@@?`
}

type callArgs struct {
	Distinct bool          `"(" @"DISTINCT"?`
	Star     bool          `( @"*"`
	Args     []*expression `| (@@ ("," @@)*)? ) ")"`
}

type caseExpr struct {
	Subject  *expression   `"CASE" @@?`
	Branches []*whenBranch `@@+`
	Else     *expression   `("ELSE" @@)? "END"`
}

type whenBranch struct {
	Cond *expression `"WHEN" @@`
	Then *expression `"THEN" @@`
}

type existsExpr struct {
	Pattern *patternSource `"EXISTS" "{" "MATCH"? @@`
	Where   *expression    `("WHERE" @@)? "}"`
}

type listLit struct {
	Items []*expression `"[" (@@ ("," @@)*)? "]"`
}

type mapLit struct {
	Entries []*mapEntry `"{" (@@ ("," @@)*)? "}"`
}

type mapEntry struct {
	Key   string      `@(Ident | Keyword) ":"`
	Value *expression `@@`
}

// Clause items.

type projection struct {
	Star  bool        `( @"*"`
	Expr  *expression `| @@ )`
	Alias string      `("AS" @Ident)?`
}

type sortItem struct {
	Expr  *expression `@@`
	Order string      `@("ASC" | "DESC")?`
}

type setItem struct {
	Pos      lexer.Position
	Variable string      `@Ident`
	Keys     []string    `("." @(Ident | Keyword))*`
	Labels   []string    `( (":" @Ident)+`
	Op       string      `| @("=" | "+=")`
	Value    *expression `  @@ )`
}

type removeItem struct {
	Pos      lexer.Position
	Variable string   `@Ident`
	Keys     []string `("." @(Ident | Keyword))*`
	Labels   []string `(":" @Ident)*`
}
