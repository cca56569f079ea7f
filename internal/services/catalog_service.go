package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"repairshop/internal/cache"
	"repairshop/internal/catalog"
	"repairshop/internal/domain/models"
	"repairshop/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultFeaturedLimit = 8

// loadTimeout bounds a shared store load; it runs detached from any one caller.
const loadTimeout = 10 * time.Second

// CatalogStore is the read side of the record store.
type CatalogStore interface {
	ListByKind(ctx context.Context, kind models.Kind) ([]models.CatalogItem, error)
	ListAll(ctx context.Context) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, id int64) (models.CatalogItem, error)
}

// CatalogService answers storefront reads. Results are cached under the query
// signature prefixed with the cache generation; Invalidate bumps the generation
// so a load that raced an admin write can never be served afterwards, on this
// instance or on any other sharing the cache backend.
type CatalogService struct {
	Store     CatalogStore
	Cache     cache.Cache
	RequestID string

	group *singleflight.Group
}

func NewCatalogService(store CatalogStore, c cache.Cache) CatalogService {
	return CatalogService{
		Store: store,
		Cache: c,
		group: &singleflight.Group{},
	}
}

// ForRequest returns a copy that tags its log lines with requestID. Cache and
// in-flight state stay shared.
func (s CatalogService) ForRequest(requestID string) CatalogService {
	s.RequestID = requestID
	return s
}

func (s CatalogService) Browse(ctx context.Context, kind models.Kind, f catalog.FilterSet, page catalog.PageRequest, sort catalog.SortSpec) (catalog.PageResult, error) {
	sig := catalog.Signature(kind, f, page, sort)

	res, err := cached(ctx, s, sig, func(ctx context.Context) (catalog.PageResult, error) {
		items, err := s.Store.ListByKind(ctx, kind)
		if err != nil {
			return catalog.PageResult{}, err
		}
		return catalog.Query(items, f, page, sort), nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "catalog", "browse", "kind="+string(kind)+" error="+err.Error())
		return catalog.PageResult{}, err
	}
	return res, nil
}

// Featured returns up to n highlighted items of one kind. Services are ranked
// by price ascending; everything else by stock descending.
func (s CatalogService) Featured(ctx context.Context, kind models.Kind, n int) ([]catalog.ItemView, error) {
	if n <= 0 {
		n = DefaultFeaturedLimit
	}
	sig := fmt.Sprintf("featured:%s:%d", kind, n)

	views, err := cached(ctx, s, sig, func(ctx context.Context) ([]catalog.ItemView, error) {
		items, err := s.Store.ListByKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		picked := catalog.Featured(kind, items, n)
		out := make([]catalog.ItemView, 0, len(picked))
		for _, it := range picked {
			out = append(out, catalog.NewItemView(it))
		}
		return out, nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "catalog", "featured", "kind="+string(kind)+" error="+err.Error())
		return nil, err
	}
	return views, nil
}

func (s CatalogService) Facets(ctx context.Context, kind models.Kind) (catalog.Facets, error) {
	sig := "facets:" + string(kind)

	facets, err := cached(ctx, s, sig, func(ctx context.Context) (catalog.Facets, error) {
		items, err := s.Store.ListByKind(ctx, kind)
		if err != nil {
			return catalog.Facets{}, err
		}
		return catalog.Summarize(items), nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "catalog", "facets", "kind="+string(kind)+" error="+err.Error())
		return catalog.Facets{}, err
	}
	return facets, nil
}

// Item reads through to the store; single-item lookups are not cached.
func (s CatalogService) Item(ctx context.Context, id int64) (catalog.ItemView, error) {
	it, err := s.Store.GetByID(ctx, id)
	if err != nil {
		utils.LogEvent(s.RequestID, "catalog", "item", "id="+strconv.FormatInt(id, 10)+" error="+err.Error())
		return catalog.ItemView{}, err
	}
	return catalog.NewItemView(it), nil
}

// Invalidate drops every cached result. Failing to clear the backend is logged,
// not returned: the generation bump already hides stale entries.
func (s CatalogService) Invalidate(ctx context.Context, reason string) {
	if s.Cache == nil {
		return
	}
	if _, err := s.Cache.NextGeneration(ctx); err != nil {
		utils.Logger().Warn("cache generation bump failed",
			zap.String("request_id", s.RequestID),
			zap.String("reason", reason),
			zap.Error(err))
	}
	if err := s.Cache.InvalidateAll(ctx); err != nil {
		utils.Logger().Warn("cache invalidate failed",
			zap.String("request_id", s.RequestID),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	utils.LogEvent(s.RequestID, "catalog", "invalidate", "reason="+reason)
}

func (s CatalogService) CacheStats() (cache.StatsSnapshot, bool) {
	if s.Cache == nil {
		return cache.StatsSnapshot{}, false
	}
	return s.Cache.Stats(), true
}

// key prefixes sig with the cache generation. It reports false when there is
// no cache or the generation cannot be read; such results are not cached.
func (s CatalogService) key(ctx context.Context, sig string) (string, bool) {
	if s.Cache == nil {
		return sig, false
	}
	g, err := s.Cache.Generation(ctx)
	if err != nil {
		utils.Logger().Warn("cache generation read failed", zap.String("request_id", s.RequestID), zap.Error(err))
		return sig, false
	}
	return "g" + strconv.FormatUint(g, 10) + ":" + sig, true
}

// cached returns the value for sig from the cache or from load. Concurrent
// misses on the same key share one load, which keeps running when the caller
// that started it goes away. Cache failures degrade to a direct load.
func cached[T any](ctx context.Context, s CatalogService, sig string, load func(context.Context) (T, error)) (T, error) {
	var out T
	key, cacheable := s.key(ctx, sig)
	if cacheable {
		hit, err := s.Cache.Get(ctx, key, &out)
		if err != nil {
			utils.Logger().Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return out, nil
		}
	}

	fill := func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := s.Cache.Set(loadCtx, key, v); err != nil {
				utils.Logger().Warn("cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
		return v, nil
	}

	if s.group == nil {
		v, err := fill()
		if err != nil {
			return out, err
		}
		return v.(T), nil
	}

	select {
	case r := <-s.group.DoChan(key, fill):
		if r.Err != nil {
			return out, r.Err
		}
		return r.Val.(T), nil
	case <-ctx.Done():
		return out, ctx.Err()
	}
}
