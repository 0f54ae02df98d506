package domain

import "time"

// Command is a reversible record of one mutating operation.
//
// Before holds the previous state of every item the command touches,
// including parent containers whose ChildIDs changed; After holds the
// resulting state. Applying After replays the command and applying Before
// reverses it: items present in the applied snapshot are upserted and items
// present only in the opposite snapshot are removed.
type Command struct {
	ID        string
	Action    CommandAction
	ItemType  HierarchyType
	ItemID    string
	Before    []TimeBoxedItem
	After     []TimeBoxedItem
	Timestamp time.Time
}

// Touched returns the ids referenced by either snapshot, Before first.
func (c *Command) Touched() []string {
	seen := make(map[string]bool, len(c.Before)+len(c.After))
	var ids []string
	for _, snap := range [][]TimeBoxedItem{c.Before, c.After} {
		for _, it := range snap {
			if !seen[it.ID] {
				seen[it.ID] = true
				ids = append(ids, it.ID)
			}
		}
	}
	return ids
}

// Reversible reports whether the command carries enough state to be undone.
// Update and delete need a previous state; create and reorder need the
// resulting state.
func (c *Command) Reversible() bool {
	switch c.Action {
	case ActionUpdate, ActionDelete:
		return len(c.Before) > 0
	case ActionCreate, ActionReorder:
		return len(c.After) > 0
	default:
		return false
	}
}
