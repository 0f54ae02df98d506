package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/agenda/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// countCompleted counts the milestones and steps below the primary and how
// many of them are done.
func countCompleted(items []domain.TimeBoxedItem) (done, total int) {
	for _, it := range items {
		if it.HierarchyType == domain.HierarchyPrimary {
			continue
		}
		total++
		if it.Completed {
			done++
		}
	}
	return done, total
}

// RenderProgress renders done of total as a bar, e.g. "[██████░░] 3/4 75%".
// Red below a third, yellow below two thirds, green otherwise.
func RenderProgress(done, total, width int) string {
	if width < 2 {
		width = 2
	}
	if total < 0 {
		total = 0
	}
	done = max(0, min(done, total))

	filled := 0
	pct := 0.0
	if total > 0 {
		filled = done * width / total
		pct = float64(done) / float64(total)
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %d/%d %3.0f%%", style.Render(bar), done, total, pct*100)
}
