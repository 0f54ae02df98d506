package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/agenda/internal/agenda"
	"github.com/alexanderramin/agenda/internal/db"
	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/repository"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/alexanderramin/agenda/internal/template"
	"github.com/google/uuid"
)

type agendaService struct {
	items    repository.ItemRepo
	history  repository.HistoryRepo
	uow      db.UnitOfWork
	opts     agenda.Options
	observer UseCaseObserver
}

func NewAgendaService(
	items repository.ItemRepo,
	history repository.HistoryRepo,
	uow db.UnitOfWork,
	opts agenda.Options,
	observers ...UseCaseObserver,
) AgendaService {
	return &agendaService{
		items:    items,
		history:  history,
		uow:      uow,
		opts:     opts,
		observer: useCaseObserverOrNoop(observers),
	}
}

// session is one loaded event. The synchronizer's sink only buffers the
// latest collection; commit writes it with the history in one transaction.
type session struct {
	primaryID string
	sync      *agenda.Synchronizer

	mu      sync.Mutex
	pending []domain.TimeBoxedItem
	changed bool
}

func (s *session) capture(items []domain.TimeBoxedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = items
	s.changed = true
}

func (s *agendaService) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now().UTC()
}

func (s *agendaService) newID() string {
	if s.opts.NewID != nil {
		return s.opts.NewID()
	}
	return uuid.New().String()
}

// resolve expands ref and returns the item it names.
func (s *agendaService) resolve(ctx context.Context, ref string) (*domain.TimeBoxedItem, error) {
	id, err := s.items.ResolveID(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, id)
}

func (s *agendaService) open(ctx context.Context, primaryID string) (*session, error) {
	items, err := s.items.ListScope(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	sess := &session{primaryID: primaryID}
	ag, err := agenda.New(primaryID, items, sess.capture, s.opts)
	if err != nil {
		return nil, err
	}
	entries, cursor, err := s.history.Load(ctx, primaryID)
	if err != nil {
		ag.Close()
		return nil, err
	}
	ag.RestoreHistory(entries, cursor)
	sess.sync = ag
	return sess, nil
}

// commit closes the session, flushing any debounced reorder, and persists
// what the synchronizer emitted.
func (s *agendaService) commit(ctx context.Context, sess *session) error {
	sess.sync.Close()

	sess.mu.Lock()
	items, changed := sess.pending, sess.changed
	sess.mu.Unlock()
	if !changed {
		return nil
	}
	entries, cursor := sess.sync.History()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteItemRepo(tx).ReplaceScope(ctx, sess.primaryID, items); err != nil {
			return fmt.Errorf("saving agenda: %w", err)
		}
		if err := repository.NewSQLiteHistoryRepo(tx).Save(ctx, sess.primaryID, entries, cursor); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		return nil
	})
}

// withItem loads the event owning ref, runs fn with the resolved item and
// saves the result. Nothing is saved when fn fails.
func (s *agendaService) withItem(ctx context.Context, ref string, fields map[string]any, fn func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error) error {
	it, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	fields["event_id"] = it.PrimaryID
	fields["item_id"] = it.ID

	sess, err := s.open(ctx, it.PrimaryID)
	if err != nil {
		return err
	}
	if err := fn(sess.sync, it); err != nil {
		sess.sync.Close()
		return err
	}
	return s.commit(ctx, sess)
}

func (s *agendaService) CreateEvent(ctx context.Context, title, description string, start, end time.Time) (event *domain.TimeBoxedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": title}
	defer func() { observeUseCase(ctx, s.observer, "create-event", startedAt, err, fields) }()

	event, err = domain.NewPrimary(s.newID(), title, description, start.UTC(), end.UTC(), s.now())
	if err != nil {
		return nil, err
	}
	if err = event.Validate(); err != nil {
		return nil, err
	}
	fields["event_id"] = event.ID
	if err = s.items.ReplaceScope(ctx, event.ID, []domain.TimeBoxedItem{*event}); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *agendaService) ListEvents(ctx context.Context) ([]*domain.TimeBoxedItem, error) {
	return s.items.ListPrimaries(ctx)
}

// GetEvent returns the event owning ref with its milestones and steps.
func (s *agendaService) GetEvent(ctx context.Context, ref string) ([]domain.TimeBoxedItem, error) {
	it, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	sess, err := s.open(ctx, it.PrimaryID)
	if err != nil {
		return nil, err
	}
	defer sess.sync.Close()
	return sess.sync.Items(), nil
}

func (s *agendaService) DeleteEvent(ctx context.Context, ref string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"ref": ref}
	defer func() { observeUseCase(ctx, s.observer, "delete-event", startedAt, err, fields) }()

	var it *domain.TimeBoxedItem
	it, err = s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if it.HierarchyType != domain.HierarchyPrimary {
		err = fmt.Errorf("%s %s is not an event (use remove): %w", it.HierarchyType, it.ID, domain.ErrValidation)
		return err
	}
	fields["event_id"] = it.ID
	return s.items.DeleteScope(ctx, it.ID)
}

func (s *agendaService) AddChild(ctx context.Context, parentRef, title, description string) (child domain.TimeBoxedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": title}
	defer func() { observeUseCase(ctx, s.observer, "add-child", startedAt, err, fields) }()

	err = s.withItem(ctx, parentRef, fields, func(ag *agenda.Synchronizer, parent *domain.TimeBoxedItem) error {
		var err error
		child, err = ag.CreateChild(parent.ID, title, description)
		return err
	})
	return child, err
}

// Schedule places ref at [start,end). With nextFree a blocked placement is
// retried at the earliest free slot of the same length.
func (s *agendaService) Schedule(ctx context.Context, ref string, start, end time.Time, nextFree bool) (result agenda.ScheduleResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"next_free": nextFree}
	defer func() { observeUseCase(ctx, s.observer, "schedule", startedAt, err, fields) }()

	err = s.withItem(ctx, ref, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		result, err = ag.Schedule(it.ID, start.UTC(), end.UTC())
		var schedErr *agenda.ScheduleError
		if err == nil || !nextFree || !errors.As(err, &schedErr) {
			return err
		}
		minutes := int(end.Sub(start) / time.Minute)
		slotStart, slotEnd, slotErr := ag.SuggestSlot(it.ID, minutes)
		if slotErr != nil {
			return errors.Join(err, slotErr)
		}
		fields["moved"] = true
		result, err = ag.Schedule(it.ID, slotStart, slotEnd)
		return err
	})
	return result, err
}

func (s *agendaService) Unschedule(ctx context.Context, ref string) (item domain.TimeBoxedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "unschedule", startedAt, err, fields) }()

	err = s.withItem(ctx, ref, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		item, err = ag.Unschedule(it.ID)
		return err
	})
	return item, err
}

func (s *agendaService) Update(ctx context.Context, ref string, patch agenda.Patch) (item domain.TimeBoxedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "update", startedAt, err, fields) }()

	err = s.withItem(ctx, ref, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		item, err = ag.Update(it.ID, patch)
		return err
	})
	return item, err
}

func (s *agendaService) SetCompleted(ctx context.Context, ref string, done bool) (item domain.TimeBoxedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"completed": done}
	defer func() { observeUseCase(ctx, s.observer, "set-completed", startedAt, err, fields) }()

	err = s.withItem(ctx, ref, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		item, err = ag.SetCompleted(it.ID, done)
		return err
	})
	return item, err
}

func (s *agendaService) Remove(ctx context.Context, ref string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "remove", startedAt, err, fields) }()

	return s.withItem(ctx, ref, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		return ag.Delete(it.ID)
	})
}

func (s *agendaService) Reorder(ctx context.Context, parentRef string, childRefs []string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"count": len(childRefs)}
	defer func() { observeUseCase(ctx, s.observer, "reorder", startedAt, err, fields) }()

	ordered := make([]string, 0, len(childRefs))
	for _, ref := range childRefs {
		id, err := s.items.ResolveID(ctx, ref)
		if err != nil {
			return err
		}
		ordered = append(ordered, id)
	}
	return s.withItem(ctx, parentRef, fields, func(ag *agenda.Synchronizer, parent *domain.TimeBoxedItem) error {
		return ag.Reorder(parent.ID, ordered)
	})
}

func (s *agendaService) AutoSchedule(ctx context.Context, parentRef string) (result agenda.AutoScheduleResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "auto-schedule", startedAt, err, fields) }()

	err = s.withItem(ctx, parentRef, fields, func(ag *agenda.Synchronizer, parent *domain.TimeBoxedItem) error {
		var err error
		result, err = ag.AutoSchedule(parent.ID)
		fields["placed"] = len(result.Placed)
		return err
	})
	return result, err
}

func (s *agendaService) SuggestSlot(ctx context.Context, ref string, minutes int) (start, end time.Time, err error) {
	err = s.withItem(ctx, ref, map[string]any{}, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		start, end, err = ag.SuggestSlot(it.ID, minutes)
		return err
	})
	return start, end, err
}

func (s *agendaService) Conflicts(ctx context.Context, eventRef string) ([]scheduler.Conflict, error) {
	items, err := s.GetEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	return scheduler.DetectConflicts(items), nil
}

func (s *agendaService) ApplyTemplate(ctx context.Context, eventRef string, tpl *template.AgendaTemplate) (inst *template.Instantiation, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "apply-template", startedAt, err, fields) }()
	if tpl == nil {
		return nil, fmt.Errorf("template is required: %w", domain.ErrValidation)
	}
	fields["template"] = tpl.ID

	err = s.withItem(ctx, eventRef, fields, func(ag *agenda.Synchronizer, it *domain.TimeBoxedItem) error {
		var err error
		inst, err = ag.ApplyTemplate(tpl)
		if inst != nil {
			fields["milestones"] = len(inst.Milestones)
			fields["steps"] = len(inst.Steps)
		}
		return err
	})
	return inst, err
}

func (s *agendaService) Undo(ctx context.Context, eventRef string) (cmd domain.Command, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "undo", startedAt, err, fields) }()

	err = s.withItem(ctx, eventRef, fields, func(ag *agenda.Synchronizer, _ *domain.TimeBoxedItem) error {
		var err error
		cmd, err = ag.Undo()
		return err
	})
	return cmd, err
}

func (s *agendaService) Redo(ctx context.Context, eventRef string) (cmd domain.Command, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observeUseCase(ctx, s.observer, "redo", startedAt, err, fields) }()

	err = s.withItem(ctx, eventRef, fields, func(ag *agenda.Synchronizer, _ *domain.TimeBoxedItem) error {
		var err error
		cmd, err = ag.Redo()
		return err
	})
	return cmd, err
}

// History returns the stored commands of the event owning eventRef and the
// undo cursor.
func (s *agendaService) History(ctx context.Context, eventRef string) ([]domain.Command, int, error) {
	it, err := s.resolve(ctx, eventRef)
	if err != nil {
		return nil, -1, err
	}
	return s.history.Load(ctx, it.PrimaryID)
}
