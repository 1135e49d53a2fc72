package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
)

// CacheManager caches product lists and details in redis. List keys embed a
// version number; Invalidate bumps it so every cached list goes stale at
// once. A nil manager or nil client caches nothing.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: rdb, ttl: ttl}
}

func (cm *CacheManager) enabled() bool {
	return cm != nil && cm.redis != nil
}

// GetProductList retrieves a cached product list
func (cm *CacheManager) GetProductList(ctx context.Context, params models.ProductSearchParams) (*models.ProductList, bool) {
	if !cm.enabled() {
		return nil, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, false
	}

	cached, err := cm.redis.Get(ctx, listCacheKey(version, params)).Bytes()
	if err != nil {
		return nil, false
	}

	var list models.ProductList
	if err := json.Unmarshal(cached, &list); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return &list, true
}

// SetProductListAsync caches a product list asynchronously
func (cm *CacheManager) SetProductListAsync(params models.ProductSearchParams, list *models.ProductList) {
	if !cm.enabled() {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil {
			return
		}
		b, err := json.Marshal(list)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, listCacheKey(version, params), b, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// GetProduct returns a cached product detail.
func (cm *CacheManager) GetProduct(ctx context.Context, id uint) (*models.Product, bool) {
	if !cm.enabled() {
		return nil, false
	}
	cached, err := cm.redis.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(cached, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// SetProductAsync caches a single product asynchronously
func (cm *CacheManager) SetProductAsync(product *models.Product) {
	if !cm.enabled() || product == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.Uint("product_id", product.ID))
			return
		}
		if err := cm.redis.Set(bgCtx, productCacheKey(product.ID), b, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.Error(err), zap.Uint("product_id", product.ID))
		}
	}()
}

// Invalidate invalidates all product caches by bumping the version
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	if !cm.enabled() {
		return nil
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	zap.L().Info("Cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

// InvalidateProduct drops the list caches and the product's detail entry.
func (cm *CacheManager) InvalidateProduct(ctx context.Context, id uint) {
	if !cm.enabled() {
		return
	}
	if err := cm.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate cache", zap.Error(err), zap.Uint("product_id", id))
	}
	if err := cm.redis.Del(ctx, productCacheKey(id)).Err(); err != nil {
		zap.L().Warn("Failed to delete product cache", zap.Error(err), zap.Uint("product_id", id))
	}
}

// getCacheVersion retrieves the current cache version with retry logic
func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if errors.Is(err, redis.Nil) {
			// SetNX so a concurrent Invalidate is not overwritten
			if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func productCacheKey(id uint) string {
	return ProductCachePrefix + strconv.FormatUint(uint64(id), 10)
}

// listCacheKey expects params already normalised by the product service.
func listCacheKey(version int64, p models.ProductSearchParams) string {
	return fmt.Sprintf(
		"%s%d:p:%d:l:%d:q:%s:c:%d:s:%s:min:%s:max:%s:all:%t",
		ProductListCachePrefix,
		version,
		p.Page,
		p.Limit,
		p.Query,
		p.CategoryID,
		p.Sort,
		formatDecimalForCache(p.MinPrice),
		formatDecimalForCache(p.MaxPrice),
		p.IncludeInactive,
	)
}

func formatDecimalForCache(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
