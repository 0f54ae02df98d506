package domain

// HierarchyType identifies the level of a time-boxed item.
type HierarchyType string

const (
	HierarchyPrimary   HierarchyType = "primary"
	HierarchyMilestone HierarchyType = "milestone"
	HierarchyStep      HierarchyType = "step"
)

// ValidHierarchyTypes is the canonical set of accepted hierarchy type strings.
var ValidHierarchyTypes = map[string]bool{
	"primary": true, "milestone": true, "step": true,
}

// Depth returns 0 for primary, 1 for milestone and 2 for step.
// Unknown types report -1.
func (h HierarchyType) Depth() int {
	switch h {
	case HierarchyPrimary:
		return 0
	case HierarchyMilestone:
		return 1
	case HierarchyStep:
		return 2
	default:
		return -1
	}
}

// ChildType returns the hierarchy type one level below h, or "" for steps.
func (h HierarchyType) ChildType() HierarchyType {
	switch h {
	case HierarchyPrimary:
		return HierarchyMilestone
	case HierarchyMilestone:
		return HierarchyStep
	default:
		return ""
	}
}

type CommandAction string

const (
	ActionCreate  CommandAction = "create"
	ActionUpdate  CommandAction = "update"
	ActionDelete  CommandAction = "delete"
	ActionReorder CommandAction = "reorder"
)
