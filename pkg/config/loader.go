// Package config loads lpframe configuration files. YAML, JSON and CUE are
// all read through CUE, so several files can be unified into one value.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/encoding/yaml"
)

// LoadValueFromReader parses YAML (or JSON) from r into a CUE value.
func LoadValueFromReader(r io.Reader) (cue.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	return buildYAML(cuecontext.New(), "", data)
}

// LoadValue loads a single file or a directory of .cue files.
//
// .cue files and directories go through load.Instances so imports work.
// .yaml, .yml and .json are parsed as standalone data; anything else is
// tried as YAML.
func LoadValue(path string) (cue.Value, error) {
	return loadValue(cuecontext.New(), path)
}

// LoadFromFile loads path and decodes it into a T.
//
//	s, err := LoadFromFile[Settings]("lpframe.yaml")
func LoadFromFile[T any](path string) (*T, error) {
	val, err := LoadValue(path)
	if err != nil {
		return nil, err
	}

	var out T
	if err := val.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &out, nil
}

// LoadAndUnifyPaths loads every file matched by patterns and unifies them.
// Patterns may be globs and may start with "~/". Missing files are skipped;
// if nothing matches the result is an empty struct. Two files that set the
// same field to different values are an error.
func LoadAndUnifyPaths(patterns []string) (cue.Value, error) {
	ctx := cuecontext.New()
	result := ctx.CompileString("{}")

	for _, pattern := range patterns {
		matches, err := filepath.Glob(expandHome(pattern))
		if err != nil {
			return cue.Value{}, fmt.Errorf("bad config pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			val, err := loadValue(ctx, path)
			if err != nil {
				return cue.Value{}, fmt.Errorf("%s: %w", path, err)
			}
			result = result.Unify(val)
		}
	}

	if err := result.Validate(); err != nil {
		return cue.Value{}, fmt.Errorf("conflicting config: %w", err)
	}
	return result, nil
}

func loadValue(ctx *cue.Context, path string) (cue.Value, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to stat path: %w", err)
	}

	if fileInfo.IsDir() || strings.EqualFold(filepath.Ext(path), ".cue") {
		return loadInstance(ctx, path, fileInfo.IsDir())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		val := ctx.CompileBytes(data, cue.Filename(path))
		if err := val.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return val, nil
	}
	return buildYAML(ctx, path, data)
}

func loadInstance(ctx *cue.Context, path string, isDir bool) (cue.Value, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg := &load.Config{
		Dir:       filepath.Dir(absPath),
		DataFiles: true,
	}
	args := []string{absPath}
	if isDir {
		cfg.Dir = absPath
		args = []string{"."}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("failed to load config: %w", inst.Err)
	}

	val := ctx.BuildInstance(inst)
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}

func buildYAML(ctx *cue.Context, name string, data []byte) (cue.Value, error) {
	// YAML is a superset of JSON
	file, err := yaml.Extract(name, data)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to parse config: %w", err)
	}
	val := ctx.BuildFile(file)
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
