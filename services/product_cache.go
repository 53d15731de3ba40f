package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
	defaultCacheTTL        = 5 * time.Minute
)

// ProductCache caches product list and detail responses in Redis.
// List keys embed a version counter; any catalog write bumps the version,
// which invalidates every cached page at once. A nil cache is a no-op.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{redis: client, ttl: defaultCacheTTL, logger: logger}
}

type cachedProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func (c *ProductCache) GetList(ctx context.Context, filters repository.ProductFilters, page, limit int) ([]models.Product, int64, bool) {
	if c == nil || c.redis == nil {
		return nil, 0, false
	}
	version, err := c.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		return nil, 0, false
	}

	raw, err := c.redis.Get(ctx, c.listKey(version, filters, page, limit)).Result()
	if err != nil {
		return nil, 0, false
	}
	var cached cachedProductList
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, 0, false
	}
	return cached.Products, cached.Total, true
}

func (c *ProductCache) SetList(ctx context.Context, filters repository.ProductFilters, page, limit int, products []models.Product, total int64) {
	if c == nil || c.redis == nil {
		return
	}
	version, err := c.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		version = 1
		if err := c.redis.Set(ctx, cacheVersionKey, version, 0).Err(); err != nil {
			return
		}
	}

	payload, err := json.Marshal(cachedProductList{Products: products, Total: total})
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.listKey(version, filters, page, limit), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

func (c *ProductCache) GetDetail(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, productCachePrefix+id.String()).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return nil, false
	}
	return &product, true
}

func (c *ProductCache) SetDetail(ctx context.Context, product *models.Product) {
	if c == nil || c.redis == nil {
		return
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, productCachePrefix+product.ID.String(), payload, c.ttl).Err()
}

// Invalidate drops a product's detail entry and bumps the list version.
func (c *ProductCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, productCachePrefix+id.String()).Err()
	if err := c.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		c.logger.Warn("Failed to bump product cache version", zap.Error(err))
	}
}

func (c *ProductCache) listKey(version int64, filters repository.ProductFilters, page, limit int) string {
	featured := "any"
	if filters.Featured != nil {
		featured = fmt.Sprintf("%t", *filters.Featured)
	}
	return fmt.Sprintf("%s%d:p%d:l%d:f%s:q%s", productListCachePrefix, version, page, limit, featured, filters.Search)
}
