package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/agenda/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFreeSlot_EmptyContainer(t *testing.T) {
	container := item("m", domain.HierarchyMilestone, at(10, 0), at(12, 0))
	start, end, ok := NextFreeSlot(container, 30, nil, workday(15))
	require.True(t, ok)
	assert.Equal(t, at(10, 0), start)
	assert.Equal(t, at(10, 30), end)
}

func TestNextFreeSlot_SkipsBusy(t *testing.T) {
	container := item("m", domain.HierarchyMilestone, at(10, 0), at(12, 0))
	busy := []domain.TimeBoxedItem{
		item("b2", domain.HierarchyStep, at(10, 45), at(11, 15)),
		item("b1", domain.HierarchyStep, at(10, 0), at(10, 30)),
		unscheduled("u", domain.HierarchyStep, at(11, 15)),
	}
	start, end, ok := NextFreeSlot(container, 30, busy, workday(15))
	require.True(t, ok)
	assert.Equal(t, at(11, 15), start, "10:30-11:00 collides with b2, so the slot moves past it")
	assert.Equal(t, at(11, 45), end)
}

func TestNextFreeSlot_NoRoom(t *testing.T) {
	container := item("m", domain.HierarchyMilestone, at(10, 0), at(11, 0))
	busy := []domain.TimeBoxedItem{item("b", domain.HierarchyStep, at(10, 0), at(10, 45))}
	_, _, ok := NextFreeSlot(container, 30, busy, workday(15))
	assert.False(t, ok)
}

func TestNextFreeSlot_RespectsWorkHours(t *testing.T) {
	container := item("m", domain.HierarchyMilestone, at(16, 0), at(16, 0).Add(24*time.Hour))
	busy := []domain.TimeBoxedItem{item("b", domain.HierarchyStep, at(16, 0), at(16, 45))}
	start, _, ok := NextFreeSlot(container, 30, busy, workday(15))
	require.True(t, ok)
	assert.Equal(t, at(9, 0).AddDate(0, 0, 1), start)
}

func TestNextFreeSlot_DefaultDuration(t *testing.T) {
	container := item("m", domain.HierarchyMilestone, at(10, 0), at(12, 0))
	start, end, ok := NextFreeSlot(container, 0, nil, workday(20))
	require.True(t, ok)
	assert.Equal(t, 20, DurationMinutes(start, end))
}
