package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags what a catalog row sells: a part, an accessory, a device or a repair service.
type Kind string

const (
	KindPart      Kind = "part"
	KindAccessory Kind = "accessory"
	KindDevice    Kind = "device"
	KindService   Kind = "service"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindPart, KindAccessory, KindDevice, KindService}

// ParseKind accepts singular, plural and route-style names ("repair-services").
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "part", "parts":
		return KindPart, true
	case "accessory", "accessories":
		return KindAccessory, true
	case "device", "devices":
		return KindDevice, true
	case "service", "services", "repair-service", "repair-services", "repair_services":
		return KindService, true
	}
	return "", false
}

// CatalogItem is any sellable or bookable row exposed to browsing.
type CatalogItem struct {
	ID            int64           `json:"id"`
	Kind          Kind            `json:"type"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model,omitempty"`
	Price         decimal.Decimal `json:"price"`
	InStock       int             `json:"inStock"`
	MinStock      int             `json:"minStock"`
	Description   string          `json:"description"`
	Compatibility string          `json:"compatibility"`
	Featured      bool            `json:"featured"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CatalogItemInput is the admin payload for create/update.
type CatalogItemInput struct {
	Kind          string          `json:"type"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Price         decimal.Decimal `json:"price"`
	InStock       int             `json:"inStock"`
	MinStock      int             `json:"minStock"`
	Description   string          `json:"description"`
	Compatibility string          `json:"compatibility"`
	Featured      bool            `json:"featured"`
}
