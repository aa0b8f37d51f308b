package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainQuery = "quiver/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a compiled query.
//
// Only the statement text and the ordered parameter names participate;
// parameter values are excluded so that one statement executed with
// different bindings keeps one identity (the transport layer can cache
// its plan under this key).
func Fingerprint(text string, paramNames []string) (string, error) {
	names := make(IRArray, len(paramNames))
	for i, n := range paramNames {
		names[i] = IRString(n)
	}
	obj := IRObject{
		"text":   IRString(text),
		"params": names,
	}

	canonical, err := marshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
