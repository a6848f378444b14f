// Package names loads the library of NPC and enemy names quests target.
package names

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyLibrary is returned when sampling from a library with no names.
var ErrEmptyLibrary = errors.New("name library is empty")

// Library is an immutable list of candidate target names.
type Library struct {
	names []string
}

// New builds a library from names, dropping blank entries. Names are kept
// verbatim, padding included.
func New(names ...string) *Library {
	lib := &Library{}
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			lib.names = append(lib.names, n)
		}
	}
	return lib
}

// Load reads a JSON array (the host's data/Names.json) or, for .yaml/.yml
// files, a YAML list or a document with a top-level "names" list.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read names file: %w", err)
	}

	var list []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &list); err != nil {
			var doc struct {
				Names []string `yaml:"names"`
			}
			if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
				return nil, fmt.Errorf("failed to parse names YAML: %w", err)
			}
			list = doc.Names
		}
	default:
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to parse names JSON: %w", err)
		}
	}
	return New(list...), nil
}

// ResolvePath finds namesFile under dataDir, trying .json, .yaml and .yml
// when it has no extension. The .json path is returned if none exist.
func ResolvePath(dataDir, namesFile string) string {
	if filepath.Ext(namesFile) != "" {
		return filepath.Join(dataDir, namesFile)
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		p := filepath.Join(dataDir, namesFile+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dataDir, namesFile+".json")
}

// Sample returns a uniformly chosen name.
func (l *Library) Sample(rng *rand.Rand) (string, error) {
	if l == nil || len(l.names) == 0 {
		return "", ErrEmptyLibrary
	}
	return l.names[rng.Intn(len(l.names))], nil
}

// Len returns the number of names.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns a copy of the library contents.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.names...)
}
