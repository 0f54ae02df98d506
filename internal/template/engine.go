package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/google/uuid"
)

// Instantiation is the output of template execution: every new item plus
// the updated parent container. Callers commit it as a single batch.
type Instantiation struct {
	Parent     *domain.TimeBoxedItem
	Milestones []*domain.TimeBoxedItem
	Steps      []*domain.TimeBoxedItem
}

// Items returns the created items with each milestone followed by its steps.
func (in *Instantiation) Items() []*domain.TimeBoxedItem {
	stepsByParent := make(map[string][]*domain.TimeBoxedItem, len(in.Milestones))
	for _, s := range in.Steps {
		stepsByParent[s.ParentID] = append(stepsByParent[s.ParentID], s)
	}
	out := make([]*domain.TimeBoxedItem, 0, len(in.Milestones)+len(in.Steps))
	for _, m := range in.Milestones {
		out = append(out, m)
		out = append(out, stepsByParent[m.ID]...)
	}
	return out
}

// Options controls id generation and timestamps. Zero values use uuid v4
// and the current UTC time.
type Options struct {
	NewID func() string
	Now   time.Time
}

func (o Options) withDefaults() Options {
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	return o
}

// Parse decodes a template from JSON.
func Parse(data []byte) (*AgendaTemplate, error) {
	var tpl AgendaTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &tpl, nil
}

// LoadSchema reads and parses a template JSON file.
func LoadSchema(path string) (*AgendaTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Instantiate expands tpl into concrete scheduled items under parent.
//
// Milestones start at parent.StartTime + offsetMinutes. Steps start at their
// milestone's resolved start + offsetMinutes, never the parent's start.
// Scheduling orders continue after the parent's existing children.
// The parent argument is not modified; the updated copy is returned.
func Instantiate(tpl *AgendaTemplate, parent *domain.TimeBoxedItem, opts Options) (*Instantiation, error) {
	if tpl == nil {
		return nil, fmt.Errorf("template is required: %w", domain.ErrValidation)
	}
	if errs := ValidateSchema(tpl); len(errs) > 0 {
		return nil, fmt.Errorf("invalid template %q: %w", tpl.ID, errors.Join(append(errs, domain.ErrValidation)...))
	}
	if parent.HierarchyType != domain.HierarchyPrimary {
		return nil, fmt.Errorf("templates apply to primary events, not %s %s: %w", parent.HierarchyType, parent.ID, domain.ErrValidation)
	}
	opts = opts.withDefaults()

	updated := parent.Clone()
	updated.UpdatedAt = opts.Now
	existing := len(updated.ChildIDs)

	result := &Instantiation{Parent: updated}
	for i, mc := range tpl.Milestones {
		milestone, err := domain.NewChild(updated, domain.HierarchyMilestone, opts.NewID(), mc.Title, mc.Description, opts.Now)
		if err != nil {
			return nil, fmt.Errorf("milestone %d: %w", i, err)
		}
		mStart := updated.StartTime.Add(time.Duration(mc.OffsetMinutes) * time.Minute)
		milestone.Schedule(mStart, mStart.Add(time.Duration(mc.DurationMinutes)*time.Minute), opts.Now)
		milestone.SchedulingOrder = existing + i

		for j, sc := range mc.Steps {
			step, err := domain.NewChild(milestone, domain.HierarchyStep, opts.NewID(), sc.Title, "", opts.Now)
			if err != nil {
				return nil, fmt.Errorf("milestone %d step %d: %w", i, j, err)
			}
			sStart := milestone.StartTime.Add(time.Duration(sc.OffsetMinutes) * time.Minute)
			step.Schedule(sStart, sStart.Add(time.Duration(sc.DurationMinutes)*time.Minute), opts.Now)
			step.SchedulingOrder = j
			milestone.ChildIDs = append(milestone.ChildIDs, step.ID)
			result.Steps = append(result.Steps, step)
		}

		updated.ChildIDs = append(updated.ChildIDs, milestone.ID)
		result.Milestones = append(result.Milestones, milestone)
	}

	return result, nil
}
