package planspec

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDoc is one YAML document. Clauses stay as nodes so each clause keeps
// its line for error reporting.
type yamlDoc struct {
	Name          string         `yaml:"name"`
	Mode          string         `yaml:"mode"`
	Params        map[string]any `yaml:"params"`
	Clauses       []yaml.Node    `yaml:"clauses"`
	Comprehension map[string]any `yaml:"comprehension"`
}

// ParseYAML loads every plan in a YAML stream. Documents are separated by
// "---"; empty documents are skipped.
func ParseYAML(filename string, data []byte, opts Options) ([]PlanDoc, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []PlanDoc
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loadErrorf(ErrCodeLoadFailed, Position{File: filename}, "decoding YAML: %v", err)
		}
		root := &node
		if root.Kind == yaml.DocumentNode {
			if len(root.Content) == 0 {
				continue
			}
			root = root.Content[0]
		}
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			continue
		}

		pos := yamlPos(filename, root)
		var yd yamlDoc
		if err := root.Decode(&yd); err != nil {
			return nil, loadErrorf(ErrCodeInvalidDoc, pos, "decoding plan: %v", err)
		}
		raw := rawDoc{
			name:          yd.Name,
			mode:          yd.Mode,
			params:        yd.Params,
			comprehension: yd.Comprehension,
			pos:           pos,
		}
		for i := range yd.Clauses {
			cn := &yd.Clauses[i]
			var fields map[string]any
			if err := cn.Decode(&fields); err != nil {
				return nil, loadErrorf(ErrCodeClauseShape, yamlPos(filename, cn), "clause must be a map: %v", err)
			}
			raw.clauses = append(raw.clauses, rawClause{fields: fields, pos: yamlPos(filename, cn)})
		}

		doc, err := opts.build(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func yamlPos(filename string, n *yaml.Node) Position {
	return Position{File: filename, Line: n.Line, Column: n.Column}
}
