package main

import (
	"flag"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

func main() {
	var catalogPath string
	flag.StringVar(&catalogPath, "catalog", "etc/catalog.yml", "种子目录文件路径")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	catalog, err := loadSeedCatalog(catalogPath)
	if err != nil {
		stdLog.Fatalf("Failed to load catalog %s: %v", catalogPath, err)
	}

	categoryRepo := repository.NewCategoryRepository(models.DB)
	productRepo := repository.NewProductRepository(models.DB)
	s := &seeder{
		categoryRepo:    categoryRepo,
		productRepo:     productRepo,
		categoryService: service.NewCategoryService(categoryRepo),
		productService:  service.NewProductService(productRepo, categoryRepo, cfg.Store),
	}
	result, err := s.apply(catalog)
	if err != nil {
		stdLog.Fatalf("Seed failed: %v", err)
	}
	stdLog.Printf("Seed done: categories created=%d skipped=%d, products created=%d skipped=%d",
		result.CategoriesCreated, result.CategoriesSkipped, result.ProductsCreated, result.ProductsSkipped)
}
