package scenario

// Catalog documents are loaded from YAML. Scenario order in the document is
// the order reported by Catalog.Keys.
type document struct {
	Version   int               `yaml:"version"`
	Roles     []string          `yaml:"roles"`
	Colors    map[string]string `yaml:"colors"`
	Scenarios []Scenario        `yaml:"scenarios"`
}

// Scenario is a named, ordered script of conversational steps.
type Scenario struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one conversational turn: a spoken line plus the internal thoughts
// that precede it.
type Step struct {
	Speaker  string    `yaml:"speaker" json:"speaker"`
	Text     string    `yaml:"text" json:"text"`
	Internal []Thought `yaml:"internal" json:"internal"`
}

// Thought is a tagged fragment of internal monologue. Kind is free-form.
type Thought struct {
	Kind string `yaml:"kind" json:"kind"`
	Text string `yaml:"text" json:"text"`
}

func (s Scenario) clone() Scenario {
	steps := make([]Step, len(s.Steps))
	for i, step := range s.Steps {
		step.Internal = append([]Thought(nil), step.Internal...)
		steps[i] = step
	}
	s.Steps = steps
	return s
}

// ThoughtCount returns the number of internal thoughts across all steps.
func (s *Scenario) ThoughtCount() int {
	n := 0
	for _, step := range s.Steps {
		n += len(step.Internal)
	}
	return n
}
