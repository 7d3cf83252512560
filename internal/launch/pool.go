package launch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

var ErrNoTokens = errors.New("launch: token pool is empty")

// LoadPool reads the candidate token list (YAML or JSON).
//
// The pool is sampled with replacement by the planner, so it may be much
// smaller than the campaign's total token count.
func LoadPool(path string) ([]TokenMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("launch: read token pool: %w", err)
	}

	var pool []TokenMeta
	if err := yaml.Unmarshal(b, &pool); err != nil {
		return nil, fmt.Errorf("launch: parse token pool %s: %w", path, err)
	}
	if len(pool) == 0 {
		return nil, ErrNoTokens
	}
	for i, tm := range pool {
		if strings.TrimSpace(tm.Name) == "" {
			return nil, fmt.Errorf("launch: token %d: name is empty", i)
		}
		if strings.TrimSpace(tm.Symbol) == "" {
			return nil, fmt.Errorf("launch: token %d (%s): symbol is empty", i, tm.Name)
		}
	}
	return pool, nil
}
