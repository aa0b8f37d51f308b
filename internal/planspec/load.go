package planspec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads plans from a .yaml/.yml/.cue file or from a directory. In a
// directory, every YAML file is loaded and the .cue files are built as one
// package. Plan names must be unique across everything loaded.
func Load(path string, opts Options) ([]PlanDoc, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, loadErrorf(ErrCodeNotFound, Position{}, "plan path not found: %s", path)
	}
	if err != nil {
		return nil, loadErrorf(ErrCodeNotFound, Position{}, "error accessing plan path: %v", err)
	}

	var docs []PlanDoc
	if info.IsDir() {
		docs, err = loadDir(path, opts)
	} else {
		docs, err = loadFile(path, opts)
	}
	if err != nil {
		return nil, err
	}
	if err := checkUnique(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func loadFile(path string, opts Options) ([]PlanDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErrorf(ErrCodeLoadFailed, Position{File: path}, "reading file: %v", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data, opts)
	case ".cue":
		return ParseCUE(path, data, opts)
	default:
		return nil, loadErrorf(ErrCodeLoadFailed, Position{File: path}, "unsupported plan file extension %q", filepath.Ext(path))
	}
}

func loadDir(dir string, opts Options) ([]PlanDoc, error) {
	yamlFiles, cueFiles, err := FindPlanFiles(dir)
	if err != nil {
		return nil, loadErrorf(ErrCodeScanError, Position{File: dir}, "error scanning directory: %v", err)
	}
	if len(yamlFiles) == 0 && len(cueFiles) == 0 {
		return nil, loadErrorf(ErrCodeNoFiles, Position{File: dir}, "no plan files found in %s", dir)
	}

	var docs []PlanDoc
	for _, f := range yamlFiles {
		fileDocs, err := loadFile(f, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	if len(cueFiles) > 0 {
		cueDocs, err := LoadCUEDir(dir, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, cueDocs...)
	}
	return docs, nil
}

// FindPlanFiles lists the YAML and CUE files directly inside dir, sorted
// by name.
func FindPlanFiles(dir string) (yamlFiles, cueFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		case ".cue":
			cueFiles = append(cueFiles, path)
		}
	}
	return yamlFiles, cueFiles, nil
}

func checkUnique(docs []PlanDoc) error {
	seen := make(map[string]Position, len(docs))
	for _, d := range docs {
		if first, ok := seen[d.Name]; ok {
			return loadErrorf(ErrCodeDuplicateName, d.Pos, "plan %q already defined at %s", d.Name, describePos(first))
		}
		seen[d.Name] = d.Pos
	}
	return nil
}

func describePos(p Position) string {
	if p.IsValid() {
		return p.String()
	}
	return fmt.Sprintf("%q", p.File)
}
