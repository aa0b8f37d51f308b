package planspec

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// ParseCUE loads the plans struct of a single CUE file.
func ParseCUE(filename string, data []byte, opts Options) ([]PlanDoc, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, loadErrorf(ErrCodeBuildFailed, Position{File: filename}, "building CUE value: %v", err)
	}
	return plansFromCUE(v, opts)
}

// LoadCUEDir builds the CUE package in dir and loads its plans struct.
func LoadCUEDir(dir string, opts Options) ([]PlanDoc, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, loadErrorf(ErrCodeLoadFailed, Position{File: dir}, "no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, loadErrorf(ErrCodeLoadFailed, Position{File: dir}, "loading CUE files: %v", inst.Err)
	}
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, loadErrorf(ErrCodeBuildFailed, Position{File: dir}, "building CUE value: %v", err)
	}
	return plansFromCUE(v, opts)
}

func plansFromCUE(v cue.Value, opts Options) ([]PlanDoc, error) {
	plansVal := v.LookupPath(cue.ParsePath("plans"))
	if !plansVal.Exists() {
		return nil, loadErrorf(ErrCodeInvalidDoc, cuePos(v.Pos()), "no plans struct found")
	}
	iter, err := plansVal.Fields()
	if err != nil {
		return nil, loadErrorf(ErrCodeInvalidDoc, cuePos(plansVal.Pos()), "iterating plans: %v", err)
	}

	var docs []PlanDoc
	for iter.Next() {
		raw, err := rawFromCUE(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		doc, err := opts.build(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// rawFromCUE reads one plan; the field label is the plan name.
func rawFromCUE(name string, v cue.Value) (rawDoc, error) {
	raw := rawDoc{name: name, pos: cuePos(v.Pos())}

	if modeVal := v.LookupPath(cue.ParsePath("mode")); modeVal.Exists() {
		mode, err := modeVal.String()
		if err != nil {
			return raw, loadErrorf(ErrCodeInvalidMode, cuePos(modeVal.Pos()), "plan %s: mode: %v", name, err)
		}
		raw.mode = mode
	}
	if paramsVal := v.LookupPath(cue.ParsePath("params")); paramsVal.Exists() {
		if err := paramsVal.Decode(&raw.params); err != nil {
			return raw, loadErrorf(ErrCodeInvalidDoc, cuePos(paramsVal.Pos()), "plan %s: params: %v", name, err)
		}
	}
	if compVal := v.LookupPath(cue.ParsePath("comprehension")); compVal.Exists() {
		if err := compVal.Decode(&raw.comprehension); err != nil {
			return raw, loadErrorf(ErrCodeInvalidDoc, cuePos(compVal.Pos()), "plan %s: comprehension: %v", name, err)
		}
	}
	if clausesVal := v.LookupPath(cue.ParsePath("clauses")); clausesVal.Exists() {
		list, err := clausesVal.List()
		if err != nil {
			return raw, loadErrorf(ErrCodeInvalidDoc, cuePos(clausesVal.Pos()), "plan %s: clauses must be a list: %v", name, err)
		}
		for list.Next() {
			item := list.Value()
			var fields map[string]any
			if err := item.Decode(&fields); err != nil {
				return raw, loadErrorf(ErrCodeClauseShape, cuePos(item.Pos()), "clause must be a struct: %v", err)
			}
			raw.clauses = append(raw.clauses, rawClause{fields: fields, pos: cuePos(item.Pos())})
		}
	}
	return raw, nil
}

func cuePos(p token.Pos) Position {
	if !p.IsValid() {
		return Position{}
	}
	return Position{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}
