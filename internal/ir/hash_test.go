package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	text := "MATCH (p:Person) WHERE p.age > $min_age RETURN p.name"

	id1, err := Fingerprint(text, []string{"min_age"})
	require.NoError(t, err)

	id2, err := Fingerprint(text, []string{"min_age"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "Fingerprint must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintChangesWithInput(t *testing.T) {
	base, err := Fingerprint("RETURN $a", []string{"a"})
	require.NoError(t, err)

	otherText, err := Fingerprint("RETURN $a, 1", []string{"a"})
	require.NoError(t, err)

	otherParams, err := Fingerprint("RETURN $a", []string{"a", "b"})
	require.NoError(t, err)

	assert.NotEqual(t, base, otherText, "different text should produce different fingerprints")
	assert.NotEqual(t, base, otherParams, "different parameter names should produce different fingerprints")
}

func TestFingerprintDomainSeparation(t *testing.T) {
	data := []byte("same-data")
	assert.NotEqual(t,
		hashWithDomain("quiver/query/v1", data),
		hashWithDomain("quiver/query/v2", data),
		"domain prefix must change the hash")
}

func TestFingerprintEmptyParams(t *testing.T) {
	a, err := Fingerprint("RETURN 1", nil)
	require.NoError(t, err)
	b, err := Fingerprint("RETURN 1", []string{})
	require.NoError(t, err)
	assert.Equal(t, a, b, "nil and empty parameter lists are the same identity")
}
