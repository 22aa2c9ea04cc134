package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a scenario key is not in the catalog.
var ErrNotFound = errors.New("scenario not found")

// ConfigurationError reports an empty or malformed catalog.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid scenario catalog"
	}
	return "invalid scenario catalog: " + strings.Join(e.Problems, "; ")
}

// Catalog is a read-only collection of scenarios keyed by name. Scenarios
// returned by Get and All are shared and must not be modified.
type Catalog struct {
	roles  [2]string
	keys   []string
	byKey  map[string]*Scenario
	colors map[string]string
}

// NewCatalog validates the scenarios and returns a catalog that preserves
// their order. The catalog holds its own copy of the scenarios. It never
// returns a partially valid catalog.
func NewCatalog(roles []string, scenarios []Scenario) (*Catalog, error) {
	var problems []string

	if len(roles) != 2 {
		problems = append(problems, fmt.Sprintf("expected exactly 2 roles, got %d", len(roles)))
	} else {
		if roles[0] == "" || roles[1] == "" {
			problems = append(problems, "roles must be non-empty")
		}
		if roles[0] == roles[1] {
			problems = append(problems, "roles must be distinct")
		}
	}
	if len(scenarios) == 0 {
		problems = append(problems, "catalog has no scenarios")
	}

	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	c := &Catalog{byKey: make(map[string]*Scenario, len(scenarios))}
	for i := range scenarios {
		s := scenarios[i].clone()
		label := s.Key
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			problems = append(problems, fmt.Sprintf("scenario %s: key is required", label))
		} else if _, dup := c.byKey[s.Key]; dup {
			problems = append(problems, fmt.Sprintf("scenario %s: duplicate key", label))
			continue
		}
		if s.Title == "" {
			problems = append(problems, fmt.Sprintf("scenario %s: title is required", label))
		}
		if len(s.Steps) == 0 {
			problems = append(problems, fmt.Sprintf("scenario %s: has no steps", label))
		}
		for j, step := range s.Steps {
			if _, ok := roleSet[step.Speaker]; !ok {
				problems = append(problems, fmt.Sprintf("scenario %s step %d: unknown speaker %q", label, j, step.Speaker))
			}
			if step.Text == "" {
				problems = append(problems, fmt.Sprintf("scenario %s step %d: text is required", label, j))
			}
		}
		if s.Key != "" {
			c.keys = append(c.keys, s.Key)
			c.byKey[s.Key] = &s
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}
	c.roles = [2]string{roles[0], roles[1]}
	return c, nil
}

// Keys returns the scenario keys in authored order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Roles returns the two speaker roles shared by every scenario.
func (c *Catalog) Roles() [2]string {
	return c.roles
}

// Get returns the scenario stored under key.
func (c *Catalog) Get(key string) (*Scenario, error) {
	s, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return s, nil
}

// Colors returns the per-kind color overrides from the catalog document.
func (c *Catalog) Colors() map[string]string {
	out := make(map[string]string, len(c.colors))
	for k, v := range c.colors {
		out[k] = v
	}
	return out
}

// All returns every scenario in authored order.
func (c *Catalog) All() []*Scenario {
	out := make([]*Scenario, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.byKey[k])
	}
	return out
}
