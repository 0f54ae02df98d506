package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of the agenda hierarchy.
type TreeItem struct {
	ID        string
	Title     string
	Level     int
	Kind      domain.HierarchyType
	IsLast    bool
	Completed bool
	Scheduled bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders items as an indented tree. Completed items get a green
// ✔ and unscheduled ones a dim ○. Details are right-aligned as badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0
	// lastAt[d] records whether the most recent item at depth d was the
	// last of its siblings, which decides pipe or blank below it.
	lastAt := make(map[int]bool)

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for d := 1; d < item.Level; d++ {
				if lastAt[d] {
					prefix += treeBlank
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}
		lastAt[item.Level] = item.IsLast

		title := LevelStyle(item.Kind).Render(item.Title)
		if item.ID != "" {
			title = TruncID(item.ID) + " " + title
		}
		marker := ""
		switch {
		case item.Completed:
			marker = StyleGreen.Render("✔ ")
		case !item.Scheduled:
			marker = StyleDim.Render("○ ")
		}

		content := prefix + marker + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}
