package queryir

import (
	"fmt"
	"strings"
)

// Plan is an ordered sequence of clauses.
type Plan struct {
	Clauses []Clause
}

// Clause is one named section of a query with its ordered arguments.
type Clause struct {
	Kind ClauseKind
	Args []Node
}

// NewClause is a convenience constructor.
func NewClause(kind ClauseKind, args ...Node) Clause {
	return Clause{Kind: kind, Args: args}
}

// ClauseKind identifies a clause. The string form is the snake_case name
// used in plan documents.
type ClauseKind string

const (
	KindMatch            ClauseKind = "match"
	KindOptionalMatch    ClauseKind = "optional_match"
	KindWhere            ClauseKind = "where"
	KindReturn           ClauseKind = "return"
	KindWith             ClauseKind = "with"
	KindCreate           ClauseKind = "create"
	KindMerge            ClauseKind = "merge"
	KindSet              ClauseKind = "set"
	KindOnCreateSet      ClauseKind = "on_create_set"
	KindOnMatchSet       ClauseKind = "on_match_set"
	KindDelete           ClauseKind = "delete"
	KindDetachDelete     ClauseKind = "detach_delete"
	KindRemove           ClauseKind = "remove"
	KindOrderBy          ClauseKind = "order_by"
	KindSkip             ClauseKind = "skip"
	KindLimit            ClauseKind = "limit"
	KindUnwind           ClauseKind = "unwind"
	KindUnion            ClauseKind = "union"
	KindUnionAll         ClauseKind = "union_all"
	KindCallSubquery     ClauseKind = "call_subquery"
	KindLoadCsv          ClauseKind = "load_csv"
	KindLoadCsvHeaders   ClauseKind = "load_csv_headers"
	KindForeach          ClauseKind = "foreach"
	KindCreateIndex      ClauseKind = "create_index"
	KindDropIndex        ClauseKind = "drop_index"
	KindCreateConstraint ClauseKind = "create_constraint"
	KindDropConstraint   ClauseKind = "drop_constraint"
)

var keywords = map[ClauseKind]string{
	KindMatch:            "MATCH",
	KindOptionalMatch:    "OPTIONAL MATCH",
	KindWhere:            "WHERE",
	KindReturn:           "RETURN",
	KindWith:             "WITH",
	KindCreate:           "CREATE",
	KindMerge:            "MERGE",
	KindSet:              "SET",
	KindOnCreateSet:      "ON CREATE SET",
	KindOnMatchSet:       "ON MATCH SET",
	KindDelete:           "DELETE",
	KindDetachDelete:     "DETACH DELETE",
	KindRemove:           "REMOVE",
	KindOrderBy:          "ORDER BY",
	KindSkip:             "SKIP",
	KindLimit:            "LIMIT",
	KindUnwind:           "UNWIND",
	KindUnion:            "UNION",
	KindUnionAll:         "UNION ALL",
	KindCallSubquery:     "CALL",
	KindLoadCsv:          "LOAD CSV",
	KindLoadCsvHeaders:   "LOAD CSV WITH HEADERS",
	KindForeach:          "FOREACH",
	KindCreateIndex:      "CREATE INDEX",
	KindDropIndex:        "DROP INDEX",
	KindCreateConstraint: "CREATE CONSTRAINT",
	KindDropConstraint:   "DROP CONSTRAINT",
}

// AllClauseKinds lists every kind in declaration order.
var AllClauseKinds = []ClauseKind{
	KindMatch, KindOptionalMatch, KindWhere, KindReturn, KindWith,
	KindCreate, KindMerge, KindSet, KindOnCreateSet, KindOnMatchSet,
	KindDelete, KindDetachDelete, KindRemove, KindOrderBy, KindSkip,
	KindLimit, KindUnwind, KindUnion, KindUnionAll, KindCallSubquery,
	KindLoadCsv, KindLoadCsvHeaders, KindForeach, KindCreateIndex,
	KindDropIndex, KindCreateConstraint, KindDropConstraint,
}

// Keyword returns the Cypher keyword that introduces the clause.
func (k ClauseKind) Keyword() string {
	if kw, ok := keywords[k]; ok {
		return kw
	}
	return strings.ToUpper(string(k))
}

// Valid reports whether k is a known clause kind.
func (k ClauseKind) Valid() bool {
	_, ok := keywords[k]
	return ok
}

// IsMutation reports whether a clause of this kind writes to the graph.
func (k ClauseKind) IsMutation() bool {
	switch k {
	case KindCreate, KindMerge, KindSet, KindOnCreateSet, KindOnMatchSet,
		KindDelete, KindDetachDelete, KindRemove,
		KindCreateIndex, KindDropIndex, KindCreateConstraint, KindDropConstraint:
		return true
	}
	return false
}

// IsSetFamily reports whether the clause renders property assignments.
func (k ClauseKind) IsSetFamily() bool {
	return k == KindSet || k == KindOnCreateSet || k == KindOnMatchSet
}

// IsSchema reports whether the clause manages indexes or constraints.
func (k ClauseKind) IsSchema() bool {
	switch k {
	case KindCreateIndex, KindDropIndex, KindCreateConstraint, KindDropConstraint:
		return true
	}
	return false
}

// ParseClauseKind accepts either the snake_case name ("optional_match") or
// the keyword form ("OPTIONAL MATCH"), case-insensitively.
func ParseClauseKind(s string) (ClauseKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.Join(strings.Fields(norm), "_")
	if k := ClauseKind(norm); k.Valid() {
		return k, nil
	}
	switch norm {
	case "load_csv_with_headers":
		return KindLoadCsvHeaders, nil
	case "call":
		return KindCallSubquery, nil
	}
	return "", fmt.Errorf("unknown clause kind %q", s)
}

// ForeachBodyKinds are the clause kinds allowed inside a FOREACH body.
var ForeachBodyKinds = map[ClauseKind]bool{
	KindSet:          true,
	KindCreate:       true,
	KindMerge:        true,
	KindDelete:       true,
	KindDetachDelete: true,
	KindRemove:       true,
	KindForeach:      true,
}
