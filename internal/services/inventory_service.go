package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"repairshop/internal/catalog"
	"repairshop/internal/domain"
	"repairshop/internal/domain/models"
	"repairshop/internal/events"
	"repairshop/internal/utils"

	"go.uber.org/zap"
)

// InventoryStore is the full record store used by the back office.
type InventoryStore interface {
	CatalogStore
	Create(ctx context.Context, it models.CatalogItem) (int64, error)
	Update(ctx context.Context, id int64, it models.CatalogItem) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (models.CatalogItem, error)
}

// InventoryService handles admin writes. Every successful write drops the
// storefront cache and publishes a catalog event for the other instances.
type InventoryService struct {
	Store     InventoryStore
	Catalog   CatalogService
	Events    events.Publisher
	RequestID string
	Actor     domain.RequestContext
	Now       func() time.Time
}

func (s InventoryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s InventoryService) Create(ctx context.Context, in models.CatalogItemInput) (models.CatalogItem, error) {
	it, err := validateItemInput(in)
	if err != nil {
		return models.CatalogItem{}, err
	}
	id, err := s.Store.Create(ctx, it)
	if err != nil {
		return models.CatalogItem{}, err
	}
	it.ID = id
	it.CreatedAt = s.now()
	it.UpdatedAt = it.CreatedAt

	utils.LogEvent(s.RequestID, "inventory", "create", "id="+strconv.FormatInt(id, 10)+" kind="+string(it.Kind)+s.by())
	s.changed(ctx, events.TopicItemCreated, events.ItemCreated{Item: it})
	return it, nil
}

func (s InventoryService) Update(ctx context.Context, id int64, in models.CatalogItemInput) (models.CatalogItem, error) {
	if id <= 0 {
		return models.CatalogItem{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	it, err := validateItemInput(in)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if err := s.Store.Update(ctx, id, it); err != nil {
		return models.CatalogItem{}, err
	}
	fresh, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return models.CatalogItem{}, err
	}

	utils.LogEvent(s.RequestID, "inventory", "update", "id="+strconv.FormatInt(id, 10)+s.by())
	s.changed(ctx, events.TopicItemUpdated, events.ItemUpdated{Item: fresh})
	return fresh, nil
}

func (s InventoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "inventory", "delete", "id="+strconv.FormatInt(id, 10)+s.by())
	s.changed(ctx, events.TopicItemDeleted, events.ItemDeleted{ItemID: id})
	return nil
}

// AdjustStock adds delta (negative to remove) to an item's stock. Stock never
// goes below zero; such a request is a conflict and changes nothing.
func (s InventoryService) AdjustStock(ctx context.Context, id int64, delta int, reason string) (catalog.ItemView, error) {
	if id <= 0 {
		return catalog.ItemView{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	if delta == 0 {
		return catalog.ItemView{}, domain.ValidationError{Field: "delta", Msg: "must not be zero"}
	}
	it, err := s.Store.AdjustStock(ctx, id, delta)
	if err != nil {
		return catalog.ItemView{}, err
	}
	view := catalog.NewItemView(it)
	reason = utils.NormalizeSpace(reason)

	utils.LogEvent(s.RequestID, "inventory", "adjust_stock",
		fmt.Sprintf("id=%d delta=%d in_stock=%d reason=%q", id, delta, it.InStock, reason)+s.by())
	s.changed(ctx, events.TopicStockAdjusted, events.StockAdjusted{
		ItemID:   id,
		Delta:    delta,
		InStock:  it.InStock,
		LowStock: view.Availability.LowStock,
		Reason:   reason,
	})
	return view, nil
}

// Browse is the uncached admin listing. An empty kind spans the whole catalog.
func (s InventoryService) Browse(ctx context.Context, kind models.Kind, f catalog.FilterSet, page catalog.PageRequest, sort catalog.SortSpec) (catalog.PageResult, error) {
	items, err := s.load(ctx, kind)
	if err != nil {
		return catalog.PageResult{}, err
	}
	return catalog.Query(items, f, page, sort), nil
}

// LowStock lists items at or below their minimum stock, fewest units first.
func (s InventoryService) LowStock(ctx context.Context, kind models.Kind) ([]catalog.ItemView, error) {
	items, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	low := catalog.Filter(items, catalog.FilterSet{LowStockOnly: true})
	catalog.SortItems(low, catalog.SortSpec{Field: catalog.SortStock})

	out := make([]catalog.ItemView, 0, len(low))
	for _, it := range low {
		out = append(out, catalog.NewItemView(it))
	}
	return out, nil
}

func (s InventoryService) load(ctx context.Context, kind models.Kind) ([]models.CatalogItem, error) {
	if kind == "" {
		return s.Store.ListAll(ctx)
	}
	return s.Store.ListByKind(ctx, kind)
}

// InvalidateCache drops cached storefront results here and, through the
// event bus, on every other instance.
func (s InventoryService) InvalidateCache(ctx context.Context, reason string) {
	utils.LogEvent(s.RequestID, "inventory", "invalidate_cache", "reason="+reason+s.by())
	s.changed(ctx, events.TopicCacheInvalidated, events.CacheInvalidated{Reason: reason})
}

func (s InventoryService) by() string {
	if s.Actor.UserID == 0 {
		return ""
	}
	return " by=" + strconv.FormatInt(int64(s.Actor.UserID), 10)
}

func (s InventoryService) changed(ctx context.Context, topic string, event any) {
	s.Catalog.ForRequest(s.RequestID).Invalidate(ctx, topic)
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, topic, event); err != nil {
		utils.Logger().Warn("publish catalog event failed",
			zap.String("request_id", s.RequestID),
			zap.String("topic", topic),
			zap.Error(err))
	}
}

func kindList() string {
	names := make([]string, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func validateItemInput(in models.CatalogItemInput) (models.CatalogItem, error) {
	name := utils.NormalizeSpace(in.Name)
	if name == "" {
		return models.CatalogItem{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	kind, ok := models.ParseKind(in.Kind)
	if !ok {
		return models.CatalogItem{}, domain.ValidationError{Field: "type", Msg: "must be one of " + kindList()}
	}
	if in.Price.IsNegative() {
		return models.CatalogItem{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if in.InStock < 0 {
		return models.CatalogItem{}, domain.ValidationError{Field: "inStock", Msg: "must not be negative"}
	}
	if in.MinStock < 0 {
		return models.CatalogItem{}, domain.ValidationError{Field: "minStock", Msg: "must not be negative"}
	}

	return models.CatalogItem{
		Kind:          kind,
		Name:          name,
		Category:      utils.NormalizeSpace(in.Category),
		Brand:         utils.NormalizeSpace(in.Brand),
		Model:         utils.NormalizeSpace(in.Model),
		Price:         in.Price.Round(2),
		InStock:       in.InStock,
		MinStock:      in.MinStock,
		Description:   strings.TrimSpace(in.Description),
		Compatibility: strings.Join(utils.SplitList(in.Compatibility), ", "),
		Featured:      in.Featured,
	}, nil
}
