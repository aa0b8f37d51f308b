package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/quiver/internal/ir"
)

// marshalParams converts parameter values to canonical JSON TEXT for storage.
func marshalParams(params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	obj, err := ir.FromGo(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// marshalNames converts ordered parameter names to a canonical JSON array.
func marshalNames(names []string) (string, error) {
	arr := make(ir.IRArray, len(names))
	for i, n := range names {
		arr[i] = ir.IRString(n)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal param names: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses canonical JSON TEXT to an IRObject.
// Numbers are decoded via json.Number so integers above 2^53 keep
// their precision.
func unmarshalParams(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unmarshal params: trailing data")
	}
	obj := make(ir.IRObject, len(raw))
	for k, v := range raw {
		val, err := fromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("unmarshal params: [%q]: %w", k, err)
		}
		obj[k] = val
	}
	return obj, nil
}

// unmarshalNames parses a JSON array of parameter names.
func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if data == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal param names: %w", err)
	}
	return names, nil
}

func fromJSON(v any) (ir.IRValue, error) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return ir.IRInt(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return ir.IRFloat(f), nil
	case []any:
		arr := make(ir.IRArray, len(val))
		for i, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(ir.IRObject, len(val))
		for k, elem := range val {
			e, err := fromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return ir.FromGo(val)
	}
}

// toGo converts an IRValue back to plain Go values for display.
func toGo(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRFloat:
		return float64(val)
	case ir.IRBool:
		return bool(val)
	case ir.IRArray:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toGo(e)
		}
		return out
	case ir.IRObject:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toGo(e)
		}
		return out
	default:
		return nil
	}
}
