// Package agenda holds the authoritative state for one primary event and
// applies every mutation as a recorded, reversible command.
package agenda

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/history"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/google/uuid"
)

// DefaultAutosaveDelay is the quiet period before coalesced reorders are
// emitted.
const DefaultAutosaveDelay = time.Second

// Sink receives the complete item collection of the owning event after
// each change. It is fire-and-forget and may be called more than once per
// logical action. It must not call back into the Synchronizer.
type Sink func(items []domain.TimeBoxedItem)

// Options configures a Synchronizer. Zero values fall back to defaults.
type Options struct {
	Scheduler     scheduler.Config
	HistoryLimit  int
	AutosaveDelay time.Duration
	Actor         string
	Now           func() time.Time
	NewID         func() string
}

func (o Options) withDefaults() Options {
	if o.Scheduler == (scheduler.Config{}) {
		o.Scheduler = scheduler.DefaultConfig()
	}
	if o.AutosaveDelay <= 0 {
		o.AutosaveDelay = DefaultAutosaveDelay
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	return o
}

// Synchronizer owns the items of one primary event. All reads are
// projections of a single store; all writes go through the command history.
type Synchronizer struct {
	mu        sync.Mutex
	primaryID string
	items     map[string]*domain.TimeBoxedItem
	history   *history.History
	sink      Sink
	opts      Options

	dirty  bool
	timer  *time.Timer
	closed bool

	selected map[string]bool
}

// New builds a Synchronizer for primaryID from an external collection.
func New(primaryID string, external []domain.TimeBoxedItem, sink Sink, opts Options) (*Synchronizer, error) {
	s := &Synchronizer{
		primaryID: primaryID,
		sink:      sink,
		opts:      opts.withDefaults(),
		selected:  make(map[string]bool),
	}
	s.history = history.New(storeExecutor{s}, opts.HistoryLimit)
	if err := s.Reconcile(external); err != nil {
		return nil, err
	}
	return s, nil
}

// PrimaryID returns the id of the owning event.
func (s *Synchronizer) PrimaryID() string { return s.primaryID }

// Reconcile rebuilds the store from an external collection, keeping the
// primary event and every item rooted at it. History and selection survive
// so long as the ids they reference still exist.
func (s *Synchronizer) Reconcile(external []domain.TimeBoxedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[string]*domain.TimeBoxedItem)
	for i := range external {
		it := external[i]
		if it.ID == s.primaryID || (it.PrimaryID == s.primaryID && it.HierarchyType != domain.HierarchyPrimary) {
			items[it.ID] = it.Clone()
		}
	}
	p, ok := items[s.primaryID]
	if !ok || p.HierarchyType != domain.HierarchyPrimary {
		return fmt.Errorf("primary event %s: %w", s.primaryID, domain.ErrNotFound)
	}
	s.items = items
	for id := range s.selected {
		if _, ok := items[id]; !ok {
			delete(s.selected, id)
		}
	}
	return nil
}

// Items returns the external collection: the primary event followed by its
// descendants in ChildIDs order, depth first.
func (s *Synchronizer) Items() []domain.TimeBoxedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked()
}

// Get returns a copy of one item.
func (s *Synchronizer) Get(id string) (domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.getLocked(id)
	if err != nil {
		return domain.TimeBoxedItem{}, err
	}
	return *it.Clone(), nil
}

// Primary returns a copy of the owning event.
func (s *Synchronizer) Primary() domain.TimeBoxedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[s.primaryID].Clone()
}

// Milestones returns the primary event's children in order.
func (s *Synchronizer) Milestones() []domain.TimeBoxedItem {
	cs, _ := s.Children(s.primaryID)
	return cs
}

// Children returns the immediate children of id in order.
func (s *Synchronizer) Children(id string) ([]domain.TimeBoxedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	return values(s.childrenLocked(parent)), nil
}

// Conflicts reports every overlapping pair in the event.
func (s *Synchronizer) Conflicts() []scheduler.Conflict {
	return scheduler.DetectConflicts(s.Items())
}

// History returns the retained commands and the undo cursor for persistence.
func (s *Synchronizer) History() ([]domain.Command, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries(), s.history.Cursor()
}

// RestoreHistory replaces the command stack with persisted entries.
func (s *Synchronizer) RestoreHistory(entries []domain.Command, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Restore(entries, cursor)
}

func (s *Synchronizer) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Synchronizer) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Undo reverses the most recent command and emits the result.
func (s *Synchronizer) Undo() (domain.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := s.history.Undo()
	if err != nil {
		return domain.Command{}, err
	}
	s.emitLocked()
	return cmd, nil
}

// Redo re-applies the most recently undone command and emits the result.
func (s *Synchronizer) Redo() (domain.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, err := s.history.Redo()
	if err != nil {
		return domain.Command{}, err
	}
	s.emitLocked()
	return cmd, nil
}

// Flush emits any pending autosave immediately.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.emitLocked()
	}
}

// Close flushes pending changes and stops the autosave timer. Further
// autosaves are dropped.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.emitLocked()
	}
	s.closed = true
}

// Dirty reports whether a debounced autosave is pending.
func (s *Synchronizer) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// commitLocked runs cmd through the history. Reorders only mark the store
// dirty and arm the autosave; everything else is emitted immediately.
func (s *Synchronizer) commitLocked(cmd domain.Command) error {
	if err := s.history.Execute(cmd); err != nil {
		return err
	}
	if cmd.Action == domain.ActionReorder {
		s.markDirtyLocked()
		return nil
	}
	s.emitLocked()
	return nil
}

func (s *Synchronizer) markDirtyLocked() {
	if s.closed {
		s.emitLocked()
		return
	}
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.AutosaveDelay, s.autosave)
}

func (s *Synchronizer) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty && !s.closed {
		s.emitLocked()
	}
}

// emitLocked hands the full collection to the sink and clears any pending
// autosave, since the emitted collection already contains it.
func (s *Synchronizer) emitLocked() {
	s.dirty = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.sink != nil {
		s.sink(s.projectLocked())
	}
}

func (s *Synchronizer) projectLocked() []domain.TimeBoxedItem {
	out := make([]domain.TimeBoxedItem, 0, len(s.items))
	seen := make(map[string]bool, len(s.items))
	var walk func(id string)
	walk = func(id string) {
		it, ok := s.items[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, *it.Clone())
		for _, c := range it.ChildIDs {
			walk(c)
		}
	}
	walk(s.primaryID)

	// Items not reachable through ChildIDs still belong to the scope.
	var rest []string
	for id := range s.items {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, *s.items[id].Clone())
	}
	return out
}

func (s *Synchronizer) getLocked(id string) (*domain.TimeBoxedItem, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("agenda item %s: %w", id, domain.ErrNotFound)
	}
	return it, nil
}

func (s *Synchronizer) childrenLocked(parent *domain.TimeBoxedItem) []*domain.TimeBoxedItem {
	out := make([]*domain.TimeBoxedItem, 0, len(parent.ChildIDs))
	for _, id := range parent.ChildIDs {
		if c, ok := s.items[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// descendantsLocked returns every item below root, depth first.
func (s *Synchronizer) descendantsLocked(root *domain.TimeBoxedItem) []*domain.TimeBoxedItem {
	var out []*domain.TimeBoxedItem
	for _, c := range s.childrenLocked(root) {
		out = append(out, c)
		out = append(out, s.descendantsLocked(c)...)
	}
	return out
}

// stepsLocked returns every step in the event.
func (s *Synchronizer) stepsLocked() []domain.TimeBoxedItem {
	var out []domain.TimeBoxedItem
	for _, it := range s.items {
		if it.HierarchyType == domain.HierarchyStep {
			out = append(out, *it)
		}
	}
	return out
}

// peersLocked returns the items a candidate is conflict-checked against:
// sibling milestones for a milestone, every step of the event for a step.
func (s *Synchronizer) peersLocked(it *domain.TimeBoxedItem) []domain.TimeBoxedItem {
	if it.HierarchyType == domain.HierarchyStep {
		return s.stepsLocked()
	}
	parent, ok := s.items[it.ParentID]
	if !ok {
		return nil
	}
	return values(s.childrenLocked(parent))
}

// windowLocked returns the time window children of parent are placed in.
// An unscheduled milestone has no real window, so its steps fall back to
// the primary event's.
func (s *Synchronizer) windowLocked(parent *domain.TimeBoxedItem) domain.TimeBoxedItem {
	w := *parent.Clone()
	if !w.IsScheduled {
		p := s.items[s.primaryID]
		w.StartTime, w.EndTime = p.StartTime, p.EndTime
	}
	return w
}

func (s *Synchronizer) newCommand(action domain.CommandAction, kind domain.HierarchyType, itemID string, before, after []domain.TimeBoxedItem) domain.Command {
	return domain.Command{
		ID:        s.opts.NewID(),
		Action:    action,
		ItemType:  kind,
		ItemID:    itemID,
		Before:    before,
		After:     after,
		Timestamp: s.opts.Now(),
	}
}

func values(items []*domain.TimeBoxedItem) []domain.TimeBoxedItem {
	out := make([]domain.TimeBoxedItem, len(items))
	for i, it := range items {
		out[i] = *it.Clone()
	}
	return out
}

func snapshot(items ...*domain.TimeBoxedItem) []domain.TimeBoxedItem {
	return values(items)
}

// storeExecutor applies command snapshots to the store. It runs with the
// Synchronizer lock already held.
type storeExecutor struct{ s *Synchronizer }

func (e storeExecutor) Forward(cmd domain.Command) error {
	e.apply(cmd.After, cmd.Before)
	return nil
}

func (e storeExecutor) Inverse(cmd domain.Command) error {
	e.apply(cmd.Before, cmd.After)
	return nil
}

// apply upserts every item in target and removes items that appear only in
// opposite.
func (e storeExecutor) apply(target, opposite []domain.TimeBoxedItem) {
	keep := make(map[string]bool, len(target))
	for i := range target {
		keep[target[i].ID] = true
		e.s.items[target[i].ID] = target[i].Clone()
	}
	for _, it := range opposite {
		if !keep[it.ID] {
			delete(e.s.items, it.ID)
			delete(e.s.selected, it.ID)
		}
	}
}
