package queryir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileErrorMessage(t *testing.T) {
	err := GrammarErrorf(KindSet, "argument %d is not an assignment", 2)
	assert.Equal(t, "GRAMMAR_ERROR: argument 2 is not an assignment (clause=SET)", err.Error())

	err = PatternErrorf("", "empty relationship bracket")
	assert.Equal(t, "PATTERN_ERROR: empty relationship bracket", err.Error())
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("compile plan: %w", PatternErrorf(KindMatch, "bad"))
	assert.True(t, IsPatternError(wrapped))
	assert.False(t, IsGrammarError(wrapped))

	assert.False(t, IsGrammarError(errors.New("plain")))
	assert.False(t, IsPatternError(nil))
}

func TestWithClause(t *testing.T) {
	err := WithClause(PatternErrorf("", "bad"), KindMerge)
	var ce *CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, KindMerge, ce.Clause)

	// An existing clause is kept.
	err = WithClause(GrammarErrorf(KindWhere, "bad"), KindMatch)
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, KindWhere, ce.Clause)

	plain := errors.New("plain")
	assert.Equal(t, plain, WithClause(plain, KindMatch))
}
