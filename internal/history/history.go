// Package history keeps a bounded stack of reversible commands with an
// undo/redo cursor.
package history

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/agenda/internal/domain"
)

// DefaultLimit caps the number of retained commands.
const DefaultLimit = 50

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrIrreversible  = errors.New("command is not reversible")
)

// Executor applies commands in either direction.
type Executor interface {
	Forward(cmd domain.Command) error
	Inverse(cmd domain.Command) error
}

// History is a bounded command stack. cursor indexes the most recently
// applied entry; -1 means everything has been undone.
type History struct {
	exec    Executor
	limit   int
	entries []domain.Command
	cursor  int
}

// New creates an empty history. A non-positive limit uses DefaultLimit.
func New(exec Executor, limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{exec: exec, limit: limit, cursor: -1}
}

// Execute applies cmd, discards any redo tail and pushes it. When the stack
// is full the oldest entry is dropped. Nothing is recorded if the executor
// fails.
func (h *History) Execute(cmd domain.Command) error {
	if !cmd.Reversible() {
		return fmt.Errorf("%s %s: %w", cmd.Action, cmd.ItemID, ErrIrreversible)
	}
	if err := h.exec.Forward(cmd); err != nil {
		return err
	}
	h.entries = append(h.entries[:h.cursor+1], cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]domain.Command(nil), h.entries[over:]...)
	}
	h.cursor = len(h.entries) - 1
	return nil
}

// Undo reverses the entry at the cursor and steps back.
func (h *History) Undo() (domain.Command, error) {
	if !h.CanUndo() {
		return domain.Command{}, ErrNothingToUndo
	}
	cmd := h.entries[h.cursor]
	if err := h.exec.Inverse(cmd); err != nil {
		return domain.Command{}, fmt.Errorf("undo %s %s: %w", cmd.Action, cmd.ItemID, err)
	}
	h.cursor--
	return cmd, nil
}

// Redo re-applies the entry after the cursor and steps forward.
func (h *History) Redo() (domain.Command, error) {
	if !h.CanRedo() {
		return domain.Command{}, ErrNothingToRedo
	}
	cmd := h.entries[h.cursor+1]
	if err := h.exec.Forward(cmd); err != nil {
		return domain.Command{}, fmt.Errorf("redo %s %s: %w", cmd.Action, cmd.ItemID, err)
	}
	h.cursor++
	return cmd, nil
}

func (h *History) CanUndo() bool { return h.cursor >= 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Entries returns a copy of the retained commands, oldest first.
func (h *History) Entries() []domain.Command {
	return append([]domain.Command(nil), h.entries...)
}

// Cursor returns the index of the most recently applied entry.
func (h *History) Cursor() int { return h.cursor }

func (h *History) Limit() int { return h.limit }

// Restore replaces the stack with previously persisted entries without
// executing them. Entries beyond the limit are dropped from the oldest end
// and the cursor is shifted and clamped to match.
func (h *History) Restore(entries []domain.Command, cursor int) {
	if over := len(entries) - h.limit; over > 0 {
		entries = entries[over:]
		cursor -= over
	}
	h.entries = append([]domain.Command(nil), entries...)
	switch {
	case cursor < -1:
		cursor = -1
	case cursor > len(h.entries)-1:
		cursor = len(h.entries) - 1
	}
	h.cursor = cursor
}
