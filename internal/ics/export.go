// Package ics renders an agenda as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/alexanderramin/agenda/internal/domain"
)

const productID = "-//agenda//agenda scheduler//EN"

const (
	propLevel     ical.ComponentProperty = "X-AGENDA-LEVEL"
	propCompleted ical.ComponentProperty = "X-AGENDA-COMPLETED"
	propRelatedTo ical.ComponentProperty = "RELATED-TO"
)

// Export builds a calendar holding one VEVENT per scheduled item. The
// primary event is always included. Unscheduled children are skipped since
// their times are placeholders. stamp becomes every DTSTAMP.
func Export(items []domain.TimeBoxedItem, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for i := range items {
		it := &items[i]
		if it.HierarchyType != domain.HierarchyPrimary && !it.IsScheduled {
			continue
		}
		ev := cal.AddEvent(it.ID)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(it.StartTime.UTC())
		ev.SetEndAt(it.EndTime.UTC())
		ev.SetSummary(it.Title)
		if it.Description != "" {
			ev.SetDescription(it.Description)
		}
		// VEVENT STATUS only allows TENTATIVE, CONFIRMED or CANCELLED.
		if it.Completed {
			ev.SetProperty(propCompleted, "TRUE")
		}
		ev.SetProperty(propLevel, string(it.HierarchyType))
		if it.ParentID != "" {
			ev.SetProperty(propRelatedTo, it.ParentID)
		}
	}
	return cal
}

// Write serializes Export's calendar to w.
func Write(w io.Writer, items []domain.TimeBoxedItem, stamp time.Time) error {
	if _, err := io.WriteString(w, Export(items, stamp).Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
