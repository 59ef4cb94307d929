package cache

import (
	"context"
	"time"
)

const (
	catalogHomeKey     = "catalog:home"
	catalogCategoryKey = "catalog:categories"
	catalogCacheTTL    = 5 * time.Minute
)

// GetCatalogHome 读取首页目录缓存
func GetCatalogHome(ctx context.Context, dest interface{}) (bool, error) {
	return GetJSON(ctx, catalogHomeKey, dest)
}

// SetCatalogHome 写入首页目录缓存
func SetCatalogHome(ctx context.Context, value interface{}) error {
	return SetJSON(ctx, catalogHomeKey, value, catalogCacheTTL)
}

// GetCatalogCategories 读取分类列表缓存
func GetCatalogCategories(ctx context.Context, dest interface{}) (bool, error) {
	return GetJSON(ctx, catalogCategoryKey, dest)
}

// SetCatalogCategories 写入分类列表缓存
func SetCatalogCategories(ctx context.Context, value interface{}) error {
	return SetJSON(ctx, catalogCategoryKey, value, catalogCacheTTL)
}

// InvalidateCatalog 商品或分类变更后清理目录缓存
func InvalidateCatalog(ctx context.Context) error {
	return Del(ctx, catalogHomeKey, catalogCategoryKey)
}
