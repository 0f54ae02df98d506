package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/alexanderramin/agenda/internal/service"
	"github.com/alexanderramin/agenda/internal/template"
)

// FormatTemplateList renders available templates inside a bordered box.
func FormatTemplateList(templates []service.TemplateInfo) string {
	headers := []string{"#", "NAME", "CATEGORY", "MILESTONES", "STEPS", "SPAN"}
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", t.Index)),
			Bold(t.Name),
			categoryBadge(t.Category),
			fmt.Sprintf("%d", t.Milestones),
			fmt.Sprintf("%d", t.Steps),
			FormatMinutes(t.SpanMinutes),
		})
	}
	return RenderBox("Templates", RenderTable(headers, rows))
}

// FormatTemplateShow renders a template's milestones and steps with their
// offsets from the event start.
func FormatTemplateShow(t *template.AgendaTemplate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s\n", StyleBold.Render(t.Name), categoryBadge(t.Category)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("ID"), Dim(t.ID)))
	if t.Description != "" {
		b.WriteString("\n  " + t.Description + "\n")
	}
	b.WriteString("\n")
	b.WriteString(Header("Milestones"))
	b.WriteString("\n")

	tree := make([]TreeItem, 0, len(t.Milestones)+t.StepCount())
	for i, m := range t.Milestones {
		tree = append(tree, TreeItem{
			Title:     m.Title,
			Level:     1,
			Kind:      domain.HierarchyMilestone,
			IsLast:    i == len(t.Milestones)-1,
			Scheduled: true,
			Detail:    offsetDetail(m.OffsetMinutes, m.DurationMinutes),
		})
		for j, s := range m.Steps {
			tree = append(tree, TreeItem{
				Title:     s.Title,
				Level:     2,
				Kind:      domain.HierarchyStep,
				IsLast:    j == len(m.Steps)-1,
				Scheduled: true,
				Detail:    offsetDetail(s.OffsetMinutes, s.DurationMinutes),
			})
		}
	}
	b.WriteString(RenderTree(tree))
	return RenderBox("", b.String())
}

func offsetDetail(offset, duration int) string {
	return fmt.Sprintf("+%s · %s", FormatMinutes(offset), FormatMinutes(duration))
}

func categoryBadge(c string) string {
	if c == "" {
		return StyleDim.Render("--")
	}
	return StylePurple.Render(strings.ToUpper(c[:1]) + c[1:])
}
