package queryir

// Node is any clause argument.
//
// This is a sealed interface. Expressions (Expr), pattern sources (Pattern,
// Chain) and the structural records below are the only implementations.
type Node interface {
	node() // Marker method - seals interface to this package
}

// Expr is an expression tree node.
type Expr interface {
	Node
	expr()
}

// Literal is a constant rendered inline. Value holds a Go value accepted by
// ir.FromGo (nil, bool, integers, finite floats, strings, slices, string-keyed
// maps) or an ir.IRValue. Literals never become parameters.
type Literal struct {
	Value any
}

// Variable references a bound name.
type Variable struct {
	Name string
}

// Property is Target.Key.
type Property struct {
	Target Expr
	Key    string
}

// FuncCall is name(args...). Distinct renders count(DISTINCT x).
type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
}

// Binary applies a binary operator.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary applies a prefix or postfix operator.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// Alias is "expr AS name". Only valid as a projection item or UNWIND source.
type Alias struct {
	Expr Expr
	Name string
}

// Param references a named parameter. Value is the caller-supplied value
// captured at build time and is passed through untransformed.
type Param struct {
	Name  string
	Value any
}

// When is one CASE branch.
type When struct {
	Cond Expr
	Then Expr
}

// Case is a conditional expression. A nil Subject renders the generic form
// (CASE WHEN cond ...); a non-nil Subject renders the simple form
// (CASE subject WHEN value ...).
type Case struct {
	Subject  Expr
	Branches []When
	Else     Expr
}

// Exists is an existential sub-pattern: EXISTS { MATCH pattern [WHERE cond] }.
type Exists struct {
	Pattern PatternSource
	Where   Expr
}

// List is a list expression whose items may be any expression.
type List struct {
	Items []Expr
}

// MapEntry is one key/value pair of a map expression or property map.
type MapEntry struct {
	Key   string
	Value Expr
}

// Map is a map expression; entries render in the given order.
type Map struct {
	Entries []MapEntry
}

// HasLabel is the label predicate target:Label[:Label...].
type HasLabel struct {
	Target Expr
	Labels []string
}

// Star is the bare * projection item or the count(*) argument.
type Star struct{}

func (Literal) node()  {}
func (Variable) node() {}
func (Property) node() {}
func (FuncCall) node() {}
func (Binary) node()   {}
func (Unary) node()    {}
func (Alias) node()    {}
func (Param) node()    {}
func (Case) node()     {}
func (Exists) node()   {}
func (List) node()     {}
func (Map) node()      {}
func (HasLabel) node() {}
func (Star) node()     {}

func (Literal) expr()  {}
func (Variable) expr() {}
func (Property) expr() {}
func (FuncCall) expr() {}
func (Binary) expr()   {}
func (Unary) expr()    {}
func (Alias) expr()    {}
func (Param) expr()    {}
func (Case) expr()     {}
func (Exists) expr()   {}
func (List) expr()     {}
func (Map) expr()      {}
func (HasLabel) expr() {}
func (Star) expr()     {}

// Distinct marks a projection as DISTINCT. It must be the first argument of
// a RETURN or WITH clause.
type Distinct struct{}

// SortOrder is the direction of an ORDER BY item.
type SortOrder string

const (
	SortDefault SortOrder = ""
	SortAsc     SortOrder = "ASC"
	SortDesc    SortOrder = "DESC"
)

// SortItem is one ORDER BY item.
type SortItem struct {
	Expr  Expr
	Order SortOrder
}

// Assignment is target = value, or target += value when Merge is set.
type Assignment struct {
	Target Expr
	Value  Expr
	Merge  bool
}

// LabelAssignment is variable:Label[:Label...] inside SET or REMOVE.
type LabelAssignment struct {
	Variable string
	Labels   []string
}

// Subquery is the body of CALL { ... }.
type Subquery struct {
	Plan Plan
}

// Iteration is FOREACH (Variable IN List | Body).
type Iteration struct {
	Variable string
	List     Expr
	Body     Plan
}

// CSVSource is the FROM part of LOAD CSV.
type CSVSource struct {
	URL             Expr
	Alias           string
	FieldTerminator string
}

// IndexSpec describes CREATE INDEX.
type IndexSpec struct {
	Name        string
	Variable    string
	Label       string
	Properties  []string
	IfNotExists bool
}

// ConstraintKind selects the REQUIRE form of a constraint.
type ConstraintKind string

const (
	ConstraintUnique  ConstraintKind = "unique"
	ConstraintNodeKey ConstraintKind = "node_key"
	ConstraintNotNull ConstraintKind = "not_null"
)

// ConstraintSpec describes CREATE CONSTRAINT.
type ConstraintSpec struct {
	Name        string
	Variable    string
	Label       string
	Properties  []string
	Kind        ConstraintKind
	IfNotExists bool
}

// DropSpec describes DROP INDEX and DROP CONSTRAINT.
type DropSpec struct {
	Name     string
	IfExists bool
}

func (Distinct) node()        {}
func (SortItem) node()        {}
func (Assignment) node()      {}
func (LabelAssignment) node() {}
func (Subquery) node()        {}
func (Iteration) node()       {}
func (CSVSource) node()       {}
func (IndexSpec) node()       {}
func (ConstraintSpec) node()  {}
func (DropSpec) node()        {}
