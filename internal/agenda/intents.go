package agenda

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/agenda/internal/domain"
)

// Intent is a keyboard action forwarded by a UI.
type Intent string

const (
	IntentScheduleSelected   Intent = "schedule-selected"
	IntentUnscheduleSelected Intent = "unschedule-selected"
	IntentUndo               Intent = "undo"
	IntentRedo               Intent = "redo"
	IntentSelectAll          Intent = "select-all"
	IntentClearSelection     Intent = "clear-selection"
	IntentDeleteSelected     Intent = "delete-selected"
)

// ValidIntents is the canonical set of accepted intent strings.
var ValidIntents = map[string]bool{
	string(IntentScheduleSelected):   true,
	string(IntentUnscheduleSelected): true,
	string(IntentUndo):               true,
	string(IntentRedo):               true,
	string(IntentSelectAll):          true,
	string(IntentClearSelection):     true,
	string(IntentDeleteSelected):     true,
}

// Select adds ids to the selection. Unknown ids and the primary event are
// rejected and leave the selection unchanged.
func (s *Synchronizer) Select(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		it, err := s.getLocked(id)
		if err != nil {
			return err
		}
		if it.HierarchyType == domain.HierarchyPrimary {
			return fmt.Errorf("primary event %s cannot be selected: %w", id, domain.ErrValidation)
		}
	}
	for _, id := range ids {
		s.selected[id] = true
	}
	return nil
}

// SelectAll selects every milestone and step.
func (s *Synchronizer) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.items {
		if it.HierarchyType != domain.HierarchyPrimary {
			s.selected[id] = true
		}
	}
}

func (s *Synchronizer) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}

// Selected returns the selected ids in collection order.
func (s *Synchronizer) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Synchronizer) selectedLocked() []string {
	var out []string
	for _, it := range s.projectLocked() {
		if s.selected[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}

// Dispatch runs the operation an intent maps to. Bulk intents keep going
// after a per-item failure and return the failures joined.
func (s *Synchronizer) Dispatch(intent Intent) error {
	switch intent {
	case IntentUndo:
		_, err := s.Undo()
		return err
	case IntentRedo:
		_, err := s.Redo()
		return err
	case IntentSelectAll:
		s.SelectAll()
		return nil
	case IntentClearSelection:
		s.ClearSelection()
		return nil
	case IntentScheduleSelected:
		return s.forEachSelected(s.scheduleNextFree)
	case IntentUnscheduleSelected:
		return s.forEachSelected(func(id string) error {
			_, err := s.Unschedule(id)
			return err
		})
	case IntentDeleteSelected:
		err := s.forEachSelected(func(id string) error {
			if _, err := s.Get(id); errors.Is(err, domain.ErrNotFound) {
				// Already removed with a deleted ancestor.
				return nil
			}
			return s.Delete(id)
		})
		s.ClearSelection()
		return err
	default:
		return fmt.Errorf("unknown intent %q: %w", intent, domain.ErrValidation)
	}
}

func (s *Synchronizer) forEachSelected(fn func(id string) error) error {
	var errs []error
	for _, id := range s.Selected() {
		if err := fn(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// scheduleNextFree places an unscheduled item at its next free slot.
// Scheduled items are left alone.
func (s *Synchronizer) scheduleNextFree(id string) error {
	it, err := s.Get(id)
	if err != nil {
		return err
	}
	if it.IsScheduled {
		return nil
	}
	start, end, err := s.SuggestSlot(id, 0)
	if err != nil {
		return err
	}
	_, err = s.Schedule(id, start, end)
	return err
}
