package service

import (
	"context"
	"time"

	"github.com/alexanderramin/agenda/internal/agenda"
	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/scheduler"
	"github.com/alexanderramin/agenda/internal/template"
)

// AgendaService runs agenda operations against persisted events. Every
// item reference accepts a full id or a unique id prefix. Each call loads
// the owning event, applies one operation and saves the items together
// with the undo history.
type AgendaService interface {
	CreateEvent(ctx context.Context, title, description string, start, end time.Time) (*domain.TimeBoxedItem, error)
	ListEvents(ctx context.Context) ([]*domain.TimeBoxedItem, error)
	GetEvent(ctx context.Context, ref string) ([]domain.TimeBoxedItem, error)
	DeleteEvent(ctx context.Context, ref string) error

	AddChild(ctx context.Context, parentRef, title, description string) (domain.TimeBoxedItem, error)
	Schedule(ctx context.Context, ref string, start, end time.Time, nextFree bool) (agenda.ScheduleResult, error)
	Unschedule(ctx context.Context, ref string) (domain.TimeBoxedItem, error)
	Update(ctx context.Context, ref string, patch agenda.Patch) (domain.TimeBoxedItem, error)
	SetCompleted(ctx context.Context, ref string, done bool) (domain.TimeBoxedItem, error)
	Remove(ctx context.Context, ref string) error
	Reorder(ctx context.Context, parentRef string, childRefs []string) error
	AutoSchedule(ctx context.Context, parentRef string) (agenda.AutoScheduleResult, error)
	SuggestSlot(ctx context.Context, ref string, minutes int) (start, end time.Time, err error)
	Conflicts(ctx context.Context, eventRef string) ([]scheduler.Conflict, error)
	ApplyTemplate(ctx context.Context, eventRef string, tpl *template.AgendaTemplate) (*template.Instantiation, error)

	Undo(ctx context.Context, eventRef string) (domain.Command, error)
	Redo(ctx context.Context, eventRef string) (domain.Command, error)
	History(ctx context.Context, eventRef string) ([]domain.Command, int, error)
}

// TemplateInfo summarizes one template file.
type TemplateInfo struct {
	Index       int
	ID          string
	Name        string
	Category    string
	Path        string
	Milestones  int
	Steps       int
	SpanMinutes int
}

// TemplateService finds agenda templates on disk and applies them.
type TemplateService interface {
	List(ctx context.Context) ([]TemplateInfo, error)
	Get(ctx context.Context, ref string) (*template.AgendaTemplate, error)
	Apply(ctx context.Context, ref, eventRef string) (*template.Instantiation, error)
}
