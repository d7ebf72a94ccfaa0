package domain

// ItemStatus mirrors the host platform's todo item status values.
type ItemStatus string

const (
	StatusNeedsAction ItemStatus = "needs_action"
	StatusCompleted   ItemStatus = "completed"
)

// ShoppingListItem is a row on the host-managed list entity. The host owns the
// authoritative state; any held copy is a snapshot invalidated by the next
// mutating call.
type ShoppingListItem struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Brand   string     `json:"brand,omitempty"`
	Barcode string     `json:"barcode,omitempty"`
	Count   int        `json:"count"`
	Total   int        `json:"total"`
	Status  ItemStatus `json:"status"`
}

// Completed reports whether the item has been checked off.
func (i ShoppingListItem) Completed() bool {
	return i.Status == StatusCompleted
}
