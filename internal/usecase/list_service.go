package usecase

import (
	"context"
	"fmt"

	"github.com/FredrikM97/grocery-scan-card/internal/domain"
	"github.com/rs/zerolog"
)

const (
	todoDomain          = "todo"
	actionAddItem       = "add_item"
	actionUpdateItem    = "update_item"
	actionRemoveItem    = "remove_item"
	actionClearComplete = "clear_completed_items"
)

// ListService fronts the host platform's shared list entity. The host owns
// all list state; every mutating call re-checks service availability because
// the host's registry can change between calls.
type ListService struct {
	bus domain.HostBus
	log zerolog.Logger
}

// NewListService creates a list service on top of the host bus
func NewListService(bus domain.HostBus, log zerolog.Logger) *ListService {
	return &ListService{
		bus: bus,
		log: log.With().Str("component", "list").Logger(),
	}
}

// ensureService fails fast with ErrServiceUnavailable when the backing todo
// integration does not expose the action; no remote call is attempted.
func (s *ListService) ensureService(ctx context.Context, action string) error {
	registry, err := s.bus.Services(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	if !registry.Has(todoDomain, action) {
		return domain.ErrServiceUnavailable
	}
	return nil
}

// AddItem appends a new row to the list. Product metadata rides along in the
// item description.
func (s *ListService) AddItem(ctx context.Context, name, listID string, product *domain.Product) error {
	if name == "" || listID == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.ensureService(ctx, actionAddItem); err != nil {
		return err
	}

	meta := itemMeta{Count: 1, Total: 1}
	if product != nil {
		meta.Brand = product.Brand
		meta.Barcode = product.Barcode
		meta.Source = product.Source
	}

	err := s.bus.CallService(ctx, todoDomain, actionAddItem, map[string]any{
		"entity_id":   listID,
		"item":        name,
		"description": formatDescription(meta),
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("item", name).Str("entity", listID).Msg("item added")
	return nil
}

// GetItems returns the live list snapshot. An absent entity yields an empty
// slice, never an error.
func (s *ListService) GetItems(ctx context.Context, listID string) ([]domain.ShoppingListItem, error) {
	state, err := s.bus.GetState(ctx, listID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return []domain.ShoppingListItem{}, nil
	}

	items := make([]domain.ShoppingListItem, 0, len(state.Items))
	for _, entry := range state.Items {
		meta := parseDescription(entry.Description)

		status := domain.StatusNeedsAction
		if entry.Status == string(domain.StatusCompleted) {
			status = domain.StatusCompleted
		}

		items = append(items, domain.ShoppingListItem{
			ID:      entry.UID,
			Name:    entry.Summary,
			Brand:   meta.Brand,
			Barcode: meta.Barcode,
			Count:   meta.Count,
			Total:   meta.Total,
			Status:  status,
		})
	}
	return items, nil
}

// FindByBarcode returns the list item carrying the barcode, or nil.
func (s *ListService) FindByBarcode(ctx context.Context, barcode, listID string) (*domain.ShoppingListItem, error) {
	if barcode == "" {
		return nil, nil
	}
	items, err := s.GetItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Barcode == barcode {
			return &items[i], nil
		}
	}
	return nil, nil
}

// IncrementItem treats a duplicate scan as "one more of this item": the row's
// counters go up instead of a second row appearing.
func (s *ListService) IncrementItem(ctx context.Context, item domain.ShoppingListItem, listID string) error {
	if item.ID == "" || listID == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.ensureService(ctx, actionUpdateItem); err != nil {
		return err
	}

	source := domain.SourceManual
	if item.Barcode != "" {
		source = domain.SourceCache
	}
	meta := itemMeta{
		Brand:   item.Brand,
		Barcode: item.Barcode,
		Source:  source,
		Count:   item.Count + 1,
		Total:   item.Total + 1,
	}

	err := s.bus.CallService(ctx, todoDomain, actionUpdateItem, map[string]any{
		"entity_id":   listID,
		"item":        item.ID,
		"description": formatDescription(meta),
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("item", item.Name).Int("count", meta.Count).Msg("item incremented")
	return nil
}

// ToggleComplete checks an item off.
func (s *ListService) ToggleComplete(ctx context.Context, itemID, listID string) error {
	if itemID == "" || listID == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.ensureService(ctx, actionUpdateItem); err != nil {
		return err
	}

	return s.bus.CallService(ctx, todoDomain, actionUpdateItem, map[string]any{
		"entity_id": listID,
		"item":      itemID,
		"status":    string(domain.StatusCompleted),
	})
}

// RemoveItem deletes a row from the list.
func (s *ListService) RemoveItem(ctx context.Context, itemID, listID string) error {
	if itemID == "" || listID == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.ensureService(ctx, actionRemoveItem); err != nil {
		return err
	}

	return s.bus.CallService(ctx, todoDomain, actionRemoveItem, map[string]any{
		"entity_id": listID,
		"item":      itemID,
	})
}

// ClearCompleted removes every checked-off row.
func (s *ListService) ClearCompleted(ctx context.Context, listID string) error {
	if listID == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.ensureService(ctx, actionClearComplete); err != nil {
		return err
	}

	return s.bus.CallService(ctx, todoDomain, actionClearComplete, map[string]any{
		"entity_id": listID,
	})
}
