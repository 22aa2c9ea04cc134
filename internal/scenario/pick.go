package scenario

import (
	"errors"
	"math/rand/v2"
)

// Picker selects the scenario for one playback run.
type Picker func(c *Catalog) (*Scenario, error)

// RandomPicker picks uniformly among the catalog's scenarios.
// The rng is not safe for concurrent use; callers serialize runs.
func RandomPicker(rng *rand.Rand) Picker {
	return func(c *Catalog) (*Scenario, error) {
		if c == nil || c.Len() == 0 {
			return nil, errors.New("pick from empty catalog")
		}
		return c.byKey[c.keys[rng.IntN(len(c.keys))]], nil
	}
}

// FixedPicker always selects the scenario stored under key.
func FixedPicker(key string) Picker {
	return func(c *Catalog) (*Scenario, error) {
		return c.Get(key)
	}
}
