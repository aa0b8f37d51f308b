package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"null", nil, "null"},
		{"ir null", IRNull{}, "null"},
		{"true", IRBool(true), "true"},
		{"false", false, "false"},
		{"int", IRInt(42), "42"},
		{"go int", 21, "21"},
		{"negative int", IRInt(-100), "-100"},
		{"max int64", IRInt(math.MaxInt64), "9223372036854775807"},
		{"min int64", IRInt(math.MinInt64), "-9223372036854775808"},
		{"float", IRFloat(1.5), "1.5"},
		{"whole float", 2.0, "2"},
		{"zero float", 0.0, "0"},
		{"large float", 1e21, "1e+21"},
		{"small float", 1e-7, "1e-7"},
		{"negative small float", -2.5e-10, "-2.5e-10"},
		{"string", "alice", `"alice"`},
		{"empty string", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonical_Containers(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"empty list", IRArray{}, "[]"},
		{"empty map", IRObject{}, "{}"},
		{"list keeps order", []any{int64(3), "two", true}, `[3,"two",true]`},
		{"keys sorted", map[string]any{"min_age": 21, "label": "Person"}, `{"label":"Person","min_age":21}`},
		{"nested keys sorted", IRObject{"z": IRObject{"b": IRInt(1), "a": IRInt(2)}, "a": IRInt(3)}, `{"a":3,"z":{"a":2,"b":1}}`},
		{"null value", map[string]any{"name": nil}, `{"name":null}`},
		{"list param", map[string]any{"ids": []any{1, 2}}, `{"ids":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
			assert.NotContains(t, string(got), " ", "canonical output is compact")
		})
	}
}

func TestMarshalCanonical_KeysInUTF16Order(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before
	// U+E000 in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\uE000": IRInt(1),
		"𐀀":      IRInt(2),
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"𐀀":2,"`+"\uE000"+`":1}`, string(got))
}

func TestMarshalCanonical_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"html is not escaped", "<b>Tom & Jerry</b>", `"<b>Tom & Jerry</b>"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `O"Brien`, `"O\"Brien"`},
		{"backslash", `C:\data`, `"C:\\data"`},
		{"line separators kept", "a\u2028b\u2029c", "\"a\u2028b\u2029c\""},
		{"literal backslash-u2028 text", `see \u2028`, `"see \\u2028"`},
		{"literal and real separator", "lit \\u2028 real \u2028", "\"lit \\\\u2028 real \u2028\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonical_NFC(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	a, err := MarshalCanonical(map[string]any{composed: composed})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{decomposed: decomposed})
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "keys and values are NFC normalized")
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalCanonical(IRFloat(f))
		assert.Error(t, err, "%v", f)
	}
	_, err := MarshalCanonical(IRObject{"x": IRArray{IRFloat(math.Inf(1))}})
	assert.Error(t, err, "nested non-finite floats are rejected")
}

func TestMarshalCanonical_RejectsUnsupportedTypes(t *testing.T) {
	_, err := MarshalCanonical(struct{ A int }{1})
	assert.Error(t, err)
}

func TestMarshalCanonical_Idempotent(t *testing.T) {
	values := []any{
		"hello",
		int64(42),
		1.25,
		[]any{int64(1), "two", false, nil},
		map[string]any{
			"params": map[string]any{"min_age": int64(21), "names": []any{"a", "b"}},
			"mode":   "read",
		},
	}

	for _, v := range values {
		first, err := MarshalCanonical(v)
		require.NoError(t, err)

		decoded, err := decodeJSON(first)
		require.NoError(t, err)
		second, err := MarshalCanonical(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func FuzzMarshalCanonicalIdempotent(f *testing.F) {
	f.Add(`{"min_age":21,"label":"Person"}`)
	f.Add(`[1,2.5,"x",null]`)
	f.Add(`"hello"`)
	f.Add(`1e-7`)
	f.Add(`{"nested":{"deep":{"value":123}}}`)

	f.Fuzz(func(t *testing.T, input string) {
		val, err := decodeJSON([]byte(input))
		if err != nil {
			t.Skip()
		}
		first, err := MarshalCanonical(val)
		if err != nil {
			t.Skip()
		}

		again, err := decodeJSON(first)
		require.NoError(t, err)
		second, err := MarshalCanonical(again)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func decodeJSON(data []byte) (IRValue, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return FromGo(raw)
}
