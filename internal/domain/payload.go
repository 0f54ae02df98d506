package domain

import (
	"encoding/json"
	"fmt"
)

// DragPayloadKey is the conventional key a UI attaches a dragged item under.
const DragPayloadKey = "application/x-agenda-item"

// MarshalDragPayload serializes an item for a drag-and-drop transfer.
func MarshalDragPayload(item *TimeBoxedItem) ([]byte, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encoding drag payload: %w", err)
	}
	return data, nil
}

// ParseDragPayload reconstructs the item reference carried by a drop.
func ParseDragPayload(data []byte) (*TimeBoxedItem, error) {
	var item TimeBoxedItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decoding drag payload: %w", err)
	}
	if item.ID == "" {
		return nil, fmt.Errorf("drag payload has no item id: %w", ErrValidation)
	}
	return &item, nil
}
