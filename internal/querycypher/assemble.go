package querycypher

import (
	"sort"
	"strings"

	"github.com/roach88/quiver/internal/queryir"
)

// Canonical clause order within one query part.
var clauseRank = map[queryir.ClauseKind]int{
	queryir.KindMatch:         1,
	queryir.KindOptionalMatch: 1,
	queryir.KindWhere:         2,
	queryir.KindWith:          3,
	queryir.KindUnwind:        4,
	queryir.KindCreate:        5,
	queryir.KindMerge:         5,
	queryir.KindOnCreateSet:   6, // MERGE actions directly follow MERGE
	queryir.KindOnMatchSet:    6,
	queryir.KindSet:           7,
	queryir.KindDelete:        8,
	queryir.KindDetachDelete:  8,
	queryir.KindRemove:        8,
	queryir.KindCallSubquery:  9,
	queryir.KindReturn:        10,
	queryir.KindOrderBy:       11,
	queryir.KindSkip:          12,
	queryir.KindLimit:         13,
}

const rankReturn = 10

// Clauses that may follow WITH and belong to it, in WITH's own order.
var withTailRank = map[queryir.ClauseKind]int{
	queryir.KindOrderBy: 1,
	queryir.KindSkip:    2,
	queryir.KindLimit:   3,
	queryir.KindWhere:   4,
}

// opening clauses start a new query part when they follow a later clause.
func opening(k queryir.ClauseKind) bool {
	switch k {
	case queryir.KindMatch, queryir.KindOptionalMatch, queryir.KindUnwind,
		queryir.KindCreate, queryir.KindMerge, queryir.KindCallSubquery:
		return true
	}
	return false
}

// standalone clauses keep their position and are never reordered.
func standalone(k queryir.ClauseKind) bool {
	switch k {
	case queryir.KindUnion, queryir.KindUnionAll, queryir.KindLoadCsv,
		queryir.KindLoadCsvHeaders, queryir.KindForeach:
		return true
	}
	return k.IsSchema()
}

type segmentKind int

const (
	segmentPart segmentKind = iota
	segmentWith
	segmentFixed
)

type segment struct {
	kind  segmentKind
	frags []fragment
}

// assemble compiles every clause of p, orders the fragments, merges
// consecutive SET and WHERE fragments and joins the result with sep.
func (c *compilation) assemble(p queryir.Plan, sep string) (string, error) {
	frags := make([]fragment, 0, len(p.Clauses))
	for _, cl := range p.Clauses {
		f, err := c.clause(cl)
		if err != nil {
			return "", err
		}
		frags = append(frags, f)
	}

	var ordered []fragment
	for _, seg := range segmentFragments(frags) {
		if err := seg.check(); err != nil {
			return "", err
		}
		ordered = append(ordered, seg.sorted()...)
	}

	merged := coalesce(ordered)
	lines := make([]string, len(merged))
	for i, f := range merged {
		lines[i] = f.text()
	}
	return strings.Join(lines, sep), nil
}

// segmentFragments cuts the fragment list into query parts.
//
// A part ends at WITH (which keeps its ORDER BY/SKIP/LIMIT/WHERE tail), at a
// standalone clause, or when an opening clause follows a clause ranked after
// it, unless the part has already reached RETURN.
func segmentFragments(frags []fragment) []segment {
	var (
		out      []segment
		cur      segment
		maxRank  int
		terminal bool
	)
	flush := func() {
		if len(cur.frags) > 0 {
			out = append(out, cur)
		}
		cur = segment{}
		maxRank = 0
		terminal = false
	}

	for _, f := range frags {
		if cur.kind == segmentWith {
			if _, ok := withTailRank[f.kind]; ok {
				cur.frags = append(cur.frags, f)
				continue
			}
			flush()
		}

		switch {
		case standalone(f.kind):
			flush()
			out = append(out, segment{kind: segmentFixed, frags: []fragment{f}})
			continue
		case f.kind == queryir.KindWith:
			flush()
			cur = segment{kind: segmentWith, frags: []fragment{f}}
			continue
		}

		rank := clauseRank[f.kind]
		if opening(f.kind) && maxRank > rank && !terminal {
			flush()
		}
		cur.frags = append(cur.frags, f)
		if rank > maxRank {
			maxRank = rank
		}
		if rank >= rankReturn {
			terminal = true
		}
	}
	flush()
	return out
}

// check rejects a query part that cannot be rendered as one part.
func (s segment) check() error {
	if s.kind != segmentPart {
		return nil
	}
	returns := 0
	for _, f := range s.frags {
		if f.kind == queryir.KindReturn {
			returns++
		}
	}
	if returns > 1 {
		return queryir.GrammarErrorf(queryir.KindReturn,
			"query part has %d RETURN clauses; chain parts with WITH or combine them with UNION", returns)
	}
	return nil
}

func (s segment) sorted() []fragment {
	switch s.kind {
	case segmentPart:
		out := append([]fragment(nil), s.frags...)
		sort.SliceStable(out, func(i, j int) bool {
			return clauseRank[out[i].kind] < clauseRank[out[j].kind]
		})
		return out
	case segmentWith:
		tail := append([]fragment(nil), s.frags[1:]...)
		sort.SliceStable(tail, func(i, j int) bool {
			return withTailRank[tail[i].kind] < withTailRank[tail[j].kind]
		})
		return append([]fragment{s.frags[0]}, tail...)
	default:
		return s.frags
	}
}

// coalesce merges runs of same-kind SET fragments into one fragment and
// AND-joins runs of WHERE fragments.
func coalesce(frags []fragment) []fragment {
	out := make([]fragment, 0, len(frags))
	for _, f := range frags {
		if n := len(out); n > 0 && out[n-1].kind == f.kind {
			switch {
			case f.kind.IsSetFamily():
				out[n-1].body += ", " + f.body
				continue
			case f.kind == queryir.KindWhere:
				out[n-1].body += " AND " + f.body
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
