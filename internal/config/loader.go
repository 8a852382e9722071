package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is the file position that last set a config key.
type Source struct {
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config *Config
	// Sources maps dotted key paths ("status_bar.kind") to where they were set.
	Sources map[string]Source
	// Files lists every file read, includes before the file naming them.
	Files []string
}

// DefaultConfigPath is config.yaml under $XDG_CONFIG_HOME/tagwm.
func DefaultConfigPath() (string, error) {
	return userFile("config.yaml")
}

// DefaultEnvPath is the dotenv file loaded for spawned programs when
// env_file is not set.
func DefaultEnvPath() (string, error) {
	return userFile("env")
}

func userFile(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "tagwm", name), nil
}

// LoadWithSources loads the config at DefaultConfigPath.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes on top of the defaults. A missing
// file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{sources: map[string]Source{}, done: map[string]bool{}}
	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, l.sources)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader folds a file tree into one RawConfig. Each file's includes are
// applied before the file itself, and a file reached twice is read once.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
	done    map[string]bool
	chain   []string
}

func (l *loader) load(path string) error {
	path = canonicalPath(path)
	if slices.Contains(l.chain, path) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), path)
	}
	if l.done[path] {
		return nil
	}
	l.done[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}
	positions := map[string]Source{}
	recordPositions(&doc, path, "", positions)

	l.chain = append(l.chain, path)
	for _, inc := range raw.Include {
		files, err := includeFiles(path, inc)
		if err != nil {
			pos := positions["include"]
			return fmt.Errorf("%s:%d:%d: include %q: %w", path, pos.Line, pos.Column, inc, err)
		}
		for _, f := range files {
			if err := l.load(f); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	l.raw = l.raw.merge(raw)
	maps.Copy(l.sources, positions)
	l.files = append(l.files, path)
	return nil
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// includeFiles resolves inc against the including file. A directory expands
// to its *.yaml and *.yml files in name order.
func includeFiles(from, inc string) ([]string, error) {
	if inc == "" {
		return nil, errors.New("path is empty")
	}
	if inc == "~" || strings.HasPrefix(inc, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		inc = filepath.Join(home, strings.TrimPrefix(inc, "~"))
	}
	if !filepath.IsAbs(inc) {
		inc = filepath.Join(filepath.Dir(from), inc)
	}

	info, err := os.Stat(inc)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inc}, nil
	}
	entries, err := os.ReadDir(inc)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(inc, e.Name()))
			}
		}
	}
	return files, nil
}

// recordPositions walks mappings, keying each value by its dotted path.
// Sequences are recorded as a whole.
func recordPositions(n *yaml.Node, file, prefix string, out map[string]Source) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			recordPositions(c, file, prefix, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = Source{File: file, Line: val.Line, Column: val.Column}
			recordPositions(val, file, key, out)
		}
	}
}

func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
