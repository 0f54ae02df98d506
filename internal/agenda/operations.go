package agenda

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/alexanderramin/agenda/internal/template"
)

// ScheduleError rejects a placement and carries the check that failed.
type ScheduleError struct {
	ItemID string
	Check  scheduler.ScheduleCheck
	err    error
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("schedule %s: %v", e.ItemID, e.err)
}

func (e *ScheduleError) Unwrap() error { return e.err }

// ScheduleResult describes an accepted placement.
type ScheduleResult struct {
	Item     domain.TimeBoxedItem
	Check    scheduler.ScheduleCheck
	Warnings []string
}

// AutoScheduleResult lists the children placed by AutoSchedule.
type AutoScheduleResult struct {
	Placed   []domain.TimeBoxedItem
	Warnings []string
}

// Patch carries optional field updates for Update.
type Patch struct {
	Title       *string
	Description *string
}

// CreateChild creates an unscheduled child one level below parentID and
// appends it to the parent's ChildIDs in the same transition.
func (s *Synchronizer) CreateChild(parentID, title, description string) (domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getLocked(parentID)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	kind := parent.HierarchyType.ChildType()
	if kind == "" {
		return domain.TimeBoxedItem{}, fmt.Errorf("%s %s cannot contain children: %w", parent.HierarchyType, parent.ID, domain.ErrValidation)
	}
	now := s.opts.Now()
	child, err := domain.NewChild(parent, kind, s.opts.NewID(), title, description, now)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	child.SchedulingOrder = len(parent.ChildIDs)

	updated := parent.Clone()
	updated.InsertChildAt(child.ID, len(updated.ChildIDs))
	updated.UpdatedAt = now

	cmd := s.newCommand(domain.ActionCreate, kind, child.ID, snapshot(parent), snapshot(updated, child))
	if err := s.commitLocked(cmd); err != nil {
		return domain.TimeBoxedItem{}, err
	}
	return *child.Clone(), nil
}

// Preview evaluates a placement without committing it.
func (s *Synchronizer) Preview(id string, start, end time.Time) (scheduler.ScheduleCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.schedulableLocked(id, start, end)
	if err != nil {
		return scheduler.ScheduleCheck{}, err
	}
	return s.checkLocked(it, start, end), nil
}

// Schedule places a milestone or step at [start,end). Steps that overlap
// another scheduled step or overrun their container are rejected with a
// *ScheduleError; milestones are placed and the problems returned as
// warnings.
func (s *Synchronizer) Schedule(id string, start, end time.Time) (ScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.schedulableLocked(id, start, end)
	if err != nil {
		return ScheduleResult{}, err
	}
	check := s.checkLocked(it, start, end)
	if err := check.Err(); err != nil {
		return ScheduleResult{}, &ScheduleError{ItemID: id, Check: check, err: err}
	}

	updated := it.Clone()
	updated.Schedule(start, end, s.opts.Now())
	cmd := s.newCommand(domain.ActionUpdate, it.HierarchyType, id, snapshot(it), snapshot(updated))
	if err := s.commitLocked(cmd); err != nil {
		return ScheduleResult{}, err
	}
	return ScheduleResult{Item: *updated, Check: check, Warnings: check.Warnings()}, nil
}

func (s *Synchronizer) schedulableLocked(id string, start, end time.Time) (*domain.TimeBoxedItem, error) {
	it, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if it.HierarchyType == domain.HierarchyPrimary {
		return nil, fmt.Errorf("primary event %s is not scheduled inside a container: %w", id, domain.ErrValidation)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("schedule %s: end must be after start: %w", id, domain.ErrValidation)
	}
	if _, err := s.parentLocked(it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Synchronizer) checkLocked(it *domain.TimeBoxedItem, start, end time.Time) scheduler.ScheduleCheck {
	container := s.windowLocked(s.items[it.ParentID])
	return scheduler.CheckSchedule(*it, start, end, container, s.peersLocked(it))
}

func (s *Synchronizer) parentLocked(it *domain.TimeBoxedItem) (*domain.TimeBoxedItem, error) {
	if it.HierarchyType == domain.HierarchyPrimary {
		return nil, fmt.Errorf("primary event %s has no parent: %w", it.ID, domain.ErrValidation)
	}
	parent, err := s.getLocked(it.ParentID)
	if err != nil {
		return nil, fmt.Errorf("parent of %s: %w", it.ID, err)
	}
	return parent, nil
}

// Unschedule clears an item's window, resetting its placeholder times to
// the parent's start.
func (s *Synchronizer) Unschedule(id string) (domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.getLocked(id)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	parent, err := s.parentLocked(it)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	updated := it.Clone()
	updated.Unschedule(parent.StartTime, s.opts.Now())
	cmd := s.newCommand(domain.ActionUpdate, it.HierarchyType, id, snapshot(it), snapshot(updated))
	if err := s.commitLocked(cmd); err != nil {
		return domain.TimeBoxedItem{}, err
	}
	return *updated, nil
}

// Update changes an item's title and/or description.
func (s *Synchronizer) Update(id string, p Patch) (domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.getLocked(id)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	updated := it.Clone()
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return domain.TimeBoxedItem{}, fmt.Errorf("%s title is required: %w", it.HierarchyType, domain.ErrValidation)
		}
		updated.Title = title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	updated.UpdatedAt = s.opts.Now()

	cmd := s.newCommand(domain.ActionUpdate, it.HierarchyType, id, snapshot(it), snapshot(updated))
	if err := s.commitLocked(cmd); err != nil {
		return domain.TimeBoxedItem{}, err
	}
	return *updated, nil
}

// SetCompleted toggles completion. Milestones record the configured actor.
func (s *Synchronizer) SetCompleted(id string, done bool) (domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.getLocked(id)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	updated := it.Clone()
	updated.MarkCompleted(done, s.opts.Actor, s.opts.Now())

	cmd := s.newCommand(domain.ActionUpdate, it.HierarchyType, id, snapshot(it), snapshot(updated))
	if err := s.commitLocked(cmd); err != nil {
		return domain.TimeBoxedItem{}, err
	}
	return *updated, nil
}

// Delete removes an item and all its descendants, splices it out of the
// parent's ChildIDs and renumbers the remaining siblings.
func (s *Synchronizer) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.getLocked(id)
	if err != nil {
		return err
	}
	if it.HierarchyType == domain.HierarchyPrimary {
		return fmt.Errorf("primary event %s is deleted as a whole, not through its agenda: %w", id, domain.ErrValidation)
	}
	parent, err := s.parentLocked(it)
	if err != nil {
		return err
	}
	siblings := s.childrenLocked(parent)

	before := snapshot(parent)
	before = append(before, values(siblings)...)
	before = append(before, values(s.descendantsLocked(it))...)

	updatedParent := parent.Clone()
	updatedParent.RemoveChild(id)
	updatedParent.UpdatedAt = s.opts.Now()
	after := []domain.TimeBoxedItem{*updatedParent}
	after = append(after, renumber(s, updatedParent)...)

	cmd := s.newCommand(domain.ActionDelete, it.HierarchyType, id, before, after)
	return s.commitLocked(cmd)
}

// renumber returns copies of parent's children with dense orders following
// parent.ChildIDs.
func renumber(s *Synchronizer, parent *domain.TimeBoxedItem) []domain.TimeBoxedItem {
	kids := values(s.childrenLocked(parent))
	ptrs := make([]*domain.TimeBoxedItem, len(kids))
	for i := range kids {
		ptrs[i] = &kids[i]
	}
	scheduler.Renormalize(ptrs)
	return kids
}

// Reorder sets the order of parentID's children. ordered must be a
// permutation of the current ChildIDs. The change is recorded for undo and
// its emission is coalesced into a debounced autosave.
func (s *Synchronizer) Reorder(parentID string, ordered []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getLocked(parentID)
	if err != nil {
		return err
	}
	if !isPermutation(parent.ChildIDs, ordered) {
		return fmt.Errorf("reorder %s: ids must be a permutation of its children: %w", parentID, domain.ErrValidation)
	}

	before := snapshot(parent)
	before = append(before, values(s.childrenLocked(parent))...)

	updated := parent.Clone()
	updated.ChildIDs = append([]string(nil), ordered...)
	updated.UpdatedAt = s.opts.Now()
	after := []domain.TimeBoxedItem{*updated}
	after = append(after, renumber(s, updated)...)

	cmd := s.newCommand(domain.ActionReorder, parent.HierarchyType.ChildType(), parentID, before, after)
	return s.commitLocked(cmd)
}

func isPermutation(current, ordered []string) bool {
	if len(current) != len(ordered) {
		return false
	}
	count := make(map[string]int, len(current))
	for _, id := range current {
		count[id]++
	}
	for _, id := range ordered {
		if count[id] == 0 {
			return false
		}
		count[id]--
	}
	return true
}

// AutoSchedule places every unscheduled child of parentID after its
// scheduled siblings. Scheduled siblings keep their relative order and the
// placed children follow them. A layout that puts a step on top of another
// scheduled step is rejected with a *ScheduleError and nothing changes;
// milestone overlaps and overruns are returned as warnings.
func (s *Synchronizer) AutoSchedule(parentID string) (AutoScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := s.getLocked(parentID)
	if err != nil {
		return AutoScheduleResult{}, err
	}
	if parent.HierarchyType.ChildType() == "" {
		return AutoScheduleResult{}, fmt.Errorf("%s %s has no children to schedule: %w", parent.HierarchyType, parentID, domain.ErrValidation)
	}

	var scheduled, unscheduled []domain.TimeBoxedItem
	for _, c := range s.childrenLocked(parent) {
		if c.IsScheduled {
			scheduled = append(scheduled, *c)
		} else {
			unscheduled = append(unscheduled, *c)
		}
	}
	if len(unscheduled) == 0 {
		return AutoScheduleResult{}, nil
	}
	scheduler.SortBySchedulingOrder(scheduled)

	window := s.windowLocked(parent)
	placed := scheduler.AutoSchedule(window, scheduled, unscheduled, s.opts.Scheduler, s.opts.Now())

	before := snapshot(parent)
	before = append(before, values(s.childrenLocked(parent))...)

	updated := parent.Clone()
	updated.ChildIDs = updated.ChildIDs[:0]
	for _, c := range scheduled {
		updated.ChildIDs = append(updated.ChildIDs, c.ID)
	}
	for _, c := range placed {
		updated.ChildIDs = append(updated.ChildIDs, c.ID)
	}
	updated.UpdatedAt = s.opts.Now()

	after := []domain.TimeBoxedItem{*updated}
	for i, c := range scheduled {
		c.SchedulingOrder = i
		after = append(after, c)
	}
	after = append(after, placed...)

	result := AutoScheduleResult{Placed: placed}
	for i := range placed {
		c := &placed[i]
		check := scheduler.CheckSchedule(*c, c.StartTime, c.EndTime, window, s.peersLocked(c))
		if check.IsBlocking {
			return AutoScheduleResult{}, &ScheduleError{
				ItemID: c.ID,
				Check:  check,
				err:    fmt.Errorf("auto-placed %s %q overlaps %d scheduled step(s): %w", c.HierarchyType, c.Title, len(check.Conflicts), domain.ErrBlockingConflict),
			}
		}
		for _, other := range check.Conflicts {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s %q overlaps %s %q", c.HierarchyType, c.Title, other.HierarchyType, other.Title))
		}
		if scheduler.IsOutOfBounds(
			scheduler.OffsetMinutes(window.StartTime, c.StartTime),
			c.DurationMinutes(),
			window.DurationMinutes(),
		) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s %q extends past %q", c.HierarchyType, c.Title, parent.Title))
		}
	}

	cmd := s.newCommand(domain.ActionUpdate, parent.HierarchyType.ChildType(), parentID, before, after)
	if err := s.commitLocked(cmd); err != nil {
		return AutoScheduleResult{}, err
	}
	return result, nil
}

// ApplyTemplate instantiates tpl under the primary event and commits every
// created item in one command.
func (s *Synchronizer) ApplyTemplate(tpl *template.AgendaTemplate) (*template.Instantiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.items[s.primaryID]
	inst, err := template.Instantiate(tpl, parent, template.Options{NewID: s.opts.NewID, Now: s.opts.Now()})
	if err != nil {
		return nil, err
	}
	after := snapshot(inst.Parent)
	after = append(after, values(inst.Items())...)

	cmd := s.newCommand(domain.ActionCreate, domain.HierarchyMilestone, parent.ID, snapshot(parent), after)
	if err := s.commitLocked(cmd); err != nil {
		return nil, err
	}
	return inst, nil
}

// ErrNoFreeSlot is returned by SuggestSlot when nothing fits.
var ErrNoFreeSlot = errors.New("no free slot")

// SuggestSlot returns the earliest window of the given length where id can
// be placed without conflicts. A non-positive length uses the item's
// current duration, or the configured default for unscheduled items.
func (s *Synchronizer) SuggestSlot(id string, minutes int) (time.Time, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestLocked(id, minutes)
}

func (s *Synchronizer) suggestLocked(id string, minutes int) (time.Time, time.Time, error) {
	it, err := s.getLocked(id)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	parent, err := s.parentLocked(it)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if minutes <= 0 && it.IsScheduled {
		minutes = it.DurationMinutes()
	}
	var busy []domain.TimeBoxedItem
	for _, p := range s.peersLocked(it) {
		if p.ID != id && p.HierarchyType == it.HierarchyType {
			busy = append(busy, p)
		}
	}
	start, end, ok := scheduler.NextFreeSlot(s.windowLocked(parent), minutes, busy, s.opts.Scheduler)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%s %q: %w", it.HierarchyType, it.Title, ErrNoFreeSlot)
	}
	return start, end, nil
}
