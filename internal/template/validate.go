package template

import "fmt"

// ValidateSchema checks an AgendaTemplate for structural errors.
// Returns a slice of errors (empty if valid).
func ValidateSchema(tpl *AgendaTemplate) []error {
	if tpl == nil {
		return []error{fmt.Errorf("template is required")}
	}
	var errs []error

	if tpl.ID == "" {
		errs = append(errs, fmt.Errorf("template id is required"))
	}
	if tpl.Name == "" {
		errs = append(errs, fmt.Errorf("template name is required"))
	}
	if len(tpl.Milestones) == 0 {
		errs = append(errs, fmt.Errorf("at least one milestone is required"))
	}

	for i, m := range tpl.Milestones {
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("milestone[%d]: title is required", i))
		}
		if m.OffsetMinutes < 0 {
			errs = append(errs, fmt.Errorf("milestone[%d]: offsetMinutes must not be negative", i))
		}
		if m.DurationMinutes <= 0 {
			errs = append(errs, fmt.Errorf("milestone[%d]: durationMinutes must be positive", i))
		}
		for j, s := range m.Steps {
			if s.Title == "" {
				errs = append(errs, fmt.Errorf("milestone[%d].step[%d]: title is required", i, j))
			}
			if s.OffsetMinutes < 0 {
				errs = append(errs, fmt.Errorf("milestone[%d].step[%d]: offsetMinutes must not be negative", i, j))
			}
			if s.DurationMinutes <= 0 {
				errs = append(errs, fmt.Errorf("milestone[%d].step[%d]: durationMinutes must be positive", i, j))
			}
		}
	}

	return errs
}
