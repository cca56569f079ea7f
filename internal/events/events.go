package events

import (
	"context"

	"repairshop/internal/domain/models"
)

const (
	TopicItemCreated      = "catalog.item.created"
	TopicItemUpdated      = "catalog.item.updated"
	TopicItemDeleted      = "catalog.item.deleted"
	TopicStockAdjusted    = "catalog.item.stock_adjusted"
	TopicCacheInvalidated = "catalog.cache.invalidated"

	// TopicAll matches every catalog subject.
	TopicAll = "catalog.>"
)

type ItemCreated struct {
	Item models.CatalogItem `json:"item"`
}

type ItemUpdated struct {
	Item models.CatalogItem `json:"item"`
}

type ItemDeleted struct {
	ItemID int64 `json:"item_id"`
}

type StockAdjusted struct {
	ItemID   int64  `json:"item_id"`
	Delta    int    `json:"delta"`
	InStock  int    `json:"in_stock"`
	LowStock bool   `json:"low_stock"`
	Reason   string `json:"reason,omitempty"`
}

type CacheInvalidated struct {
	Reason string `json:"reason"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
