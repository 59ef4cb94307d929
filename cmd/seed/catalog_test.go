package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sampleCatalog = `
categories:
  - name: Lighting
    slug: lighting
    products:
      - name: Desk Lamp
        slug: desk-lamp
        price: "19.99"
        stock: 5
      - name: Floor Lamp
        price: "89.00"
        stock: 0
        available: false
  - name: Office Chairs
    slug: office-chairs
`

func newTestSeeder(t *testing.T) (*seeder, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	return &seeder{
		categoryRepo:    categoryRepo,
		productRepo:     productRepo,
		categoryService: service.NewCategoryService(categoryRepo),
		productService:  service.NewProductService(productRepo, categoryRepo, config.StoreConfig{}),
	}, db
}

func TestParseSeedCatalog(t *testing.T) {
	catalog, err := parseSeedCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Categories, 2)
	assert.Len(t, catalog.Categories[0].Products, 2)
	require.NotNil(t, catalog.Categories[0].Products[1].Available)
	assert.False(t, *catalog.Categories[0].Products[1].Available)

	_, err = parseSeedCatalog([]byte("categories:\n  - slug: nameless\n"))
	assert.Error(t, err)
	_, err = parseSeedCatalog([]byte("categories: ["))
	assert.Error(t, err)
}

func TestSeederApplyIsIdempotent(t *testing.T) {
	s, db := newTestSeeder(t)
	catalog, err := parseSeedCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	first, err := s.apply(catalog)
	require.NoError(t, err)
	assert.Equal(t, seedResult{CategoriesCreated: 2, ProductsCreated: 2}, first)

	second, err := s.apply(catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CategoriesSkipped)
	assert.Equal(t, 2, second.ProductsSkipped)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var lamp models.Product
	require.NoError(t, db.Where("slug = ?", "floor-lamp").First(&lamp).Error)
	assert.False(t, lamp.Available)
	assert.Equal(t, "89.00", lamp.Price.StringFixed(2))
}
