package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/scheduler"
)

// FormatEventList renders primary events as a table.
func FormatEventList(events []*domain.TimeBoxedItem, loc *time.Location) string {
	headers := []string{"ID", "EVENT", "WHEN", "LENGTH", "ITEMS"}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			TruncID(ev.ID),
			Bold(ev.Title),
			FormatWindow(ev.StartTime, ev.EndTime, loc),
			FormatMinutes(ev.DurationMinutes()),
			Dim(fmt.Sprintf("%d", len(ev.ChildIDs))),
		})
	}
	return RenderBox("Events", RenderTable(headers, rows))
}

// FormatAgenda renders one event and its descendants as a tree. items must
// be in hierarchy order, as returned by the synchronizer.
func FormatAgenda(items []domain.TimeBoxedItem, loc *time.Location) string {
	if len(items) == 0 {
		return ""
	}
	lastChild := make(map[string]string, len(items))
	for _, it := range items {
		if n := len(it.ChildIDs); n > 0 {
			lastChild[it.ID] = it.ChildIDs[n-1]
		}
	}

	tree := make([]TreeItem, 0, len(items))
	for _, it := range items {
		tree = append(tree, TreeItem{
			ID:        it.ID,
			Title:     it.Title,
			Level:     it.Depth(),
			Kind:      it.HierarchyType,
			IsLast:    it.ParentID != "" && lastChild[it.ParentID] == it.ID,
			Completed: it.Completed,
			Scheduled: it.IsScheduled,
			Detail:    itemDetail(it, loc),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTree(tree))
	if done, total := countCompleted(items); total > 0 {
		b.WriteString("\n" + Dim("Done ") + RenderProgress(done, total, 20) + "\n")
	}
	if conflicts := scheduler.DetectConflicts(items); len(conflicts) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleYellow.Render(fmt.Sprintf("%d conflict(s); run `agenda conflicts` for details", len(conflicts))))
		b.WriteString("\n")
	}
	return b.String()
}

func itemDetail(it domain.TimeBoxedItem, loc *time.Location) string {
	if !it.IsScheduled {
		return "unscheduled"
	}
	return FormatWindow(it.StartTime, it.EndTime, loc) + " · " + FormatMinutes(it.DurationMinutes())
}

// FormatItem renders a one-line summary such as
// "milestone 1a2b3c4d Kickoff (Mar 10 09:00–10:00)".
func FormatItem(it domain.TimeBoxedItem, loc *time.Location) string {
	when := "unscheduled"
	if it.IsScheduled {
		when = FormatWindow(it.StartTime, it.EndTime, loc)
	}
	return fmt.Sprintf("%s %s %s %s", LevelBadge(it.HierarchyType), TruncID(it.ID), Bold(it.Title), Dim("("+when+")"))
}

// FormatWarnings renders advisory messages, one per line.
func FormatWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("! "+w) + "\n")
	}
	return b.String()
}

// FormatConflicts renders overlapping pairs as a table.
func FormatConflicts(conflicts []scheduler.Conflict, loc *time.Location) string {
	if len(conflicts) == 0 {
		return StyleGreen.Render("No conflicts.") + "\n"
	}
	headers := []string{"SEVERITY", "FIRST", "SECOND", "OVERLAP"}
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			ConflictIndicator(c.IsBlocking),
			conflictSide(c.A, loc),
			conflictSide(c.B, loc),
			FormatMinutes(c.OverlapMinutes),
		})
	}
	return RenderTable(headers, rows)
}

func conflictSide(it domain.TimeBoxedItem, loc *time.Location) string {
	return fmt.Sprintf("%s %s", it.Title, Dim(FormatWindow(it.StartTime, it.EndTime, loc)))
}

// FormatHistory renders the undo stack oldest first. The entry at cursor is
// the next one undo reverses; entries after it can be redone.
func FormatHistory(entries []domain.Command, cursor int, loc *time.Location) string {
	if len(entries) == 0 {
		return Dim("No history.") + "\n"
	}
	if loc == nil {
		loc = time.UTC
	}
	headers := []string{"", "#", "ACTION", "TYPE", "ITEM", "WHEN"}
	rows := make([][]string, 0, len(entries))
	for i, cmd := range entries {
		marker := " "
		action := string(cmd.Action)
		switch {
		case i == cursor:
			marker = StyleHeader.Render("▶")
		case i > cursor:
			action = Dim(action + " (undone)")
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprintf("%d", i+1),
			action,
			string(cmd.ItemType),
			TruncID(cmd.ItemID),
			cmd.Timestamp.In(loc).Format("Jan 2 15:04:05"),
		})
	}
	return RenderTable(headers, rows)
}
