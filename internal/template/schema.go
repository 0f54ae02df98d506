package template

// AgendaTemplate is the top-level JSON template structure. Offsets and
// durations are integer minutes; a template never carries absolute times.
type AgendaTemplate struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description,omitempty"`
	Milestones  []MilestoneConfig `json:"milestones"`
}

// MilestoneConfig places a milestone relative to the parent event's start.
type MilestoneConfig struct {
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	OffsetMinutes   int          `json:"offsetMinutes"`
	DurationMinutes int          `json:"durationMinutes"`
	Steps           []StepConfig `json:"steps,omitempty"`
}

// StepConfig places a step relative to its owning milestone's resolved start.
type StepConfig struct {
	Title           string `json:"title"`
	OffsetMinutes   int    `json:"offsetMinutes"`
	DurationMinutes int    `json:"durationMinutes"`
}

// StepCount returns the number of steps across all milestones.
func (t *AgendaTemplate) StepCount() int {
	n := 0
	for _, m := range t.Milestones {
		n += len(m.Steps)
	}
	return n
}

// SpanMinutes returns the furthest end offset any milestone reaches.
func (t *AgendaTemplate) SpanMinutes() int {
	span := 0
	for _, m := range t.Milestones {
		if end := m.OffsetMinutes + m.DurationMinutes; end > span {
			span = end
		}
	}
	return span
}
