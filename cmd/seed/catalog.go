package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"gopkg.in/yaml.v3"
)

// seedCatalog 种子目录文件结构
type seedCatalog struct {
	Categories []seedCategory `yaml:"categories"`
}

type seedCategory struct {
	Name        string        `yaml:"name"`
	Slug        string        `yaml:"slug"`
	Description string        `yaml:"description"`
	Products    []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Available   *bool  `yaml:"available"`
}

// seedResult 导入统计
type seedResult struct {
	CategoriesCreated int
	CategoriesSkipped int
	ProductsCreated   int
	ProductsSkipped   int
}

func loadSeedCatalog(path string) (*seedCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSeedCatalog(raw)
}

func parseSeedCatalog(raw []byte) (*seedCatalog, error) {
	var catalog seedCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, category := range catalog.Categories {
		if strings.TrimSpace(category.Name) == "" || strings.TrimSpace(category.Slug) == "" {
			return nil, fmt.Errorf("category #%d: name and slug are required", i+1)
		}
		for j, product := range category.Products {
			if strings.TrimSpace(product.Name) == "" {
				return nil, fmt.Errorf("category %q product #%d: name is required", category.Name, j+1)
			}
		}
	}
	return &catalog, nil
}

// seeder 通过领域服务写入目录，slug 已存在的条目跳过
type seeder struct {
	categoryRepo    repository.CategoryRepository
	productRepo     repository.ProductRepository
	categoryService *service.CategoryService
	productService  *service.ProductService
}

func (s *seeder) apply(catalog *seedCatalog) (seedResult, error) {
	var result seedResult
	for _, item := range catalog.Categories {
		category, created, err := s.ensureCategory(item)
		if err != nil {
			return result, fmt.Errorf("category %q: %w", item.Name, err)
		}
		if created {
			result.CategoriesCreated++
		} else {
			result.CategoriesSkipped++
		}
		for _, product := range item.Products {
			created, err := s.ensureProduct(category, product)
			if err != nil {
				return result, fmt.Errorf("product %q: %w", product.Name, err)
			}
			if created {
				result.ProductsCreated++
			} else {
				result.ProductsSkipped++
			}
		}
	}
	return result, nil
}

func (s *seeder) ensureCategory(item seedCategory) (*models.Category, bool, error) {
	existing, err := s.categoryRepo.GetBySlug(strings.TrimSpace(item.Slug))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	category, err := s.categoryService.Create(service.CategoryInput{
		Name:        item.Name,
		Slug:        item.Slug,
		Description: item.Description,
	})
	if err != nil {
		return nil, false, err
	}
	return category, true, nil
}

func (s *seeder) ensureProduct(category *models.Category, item seedProduct) (bool, error) {
	if slug := strings.TrimSpace(item.Slug); slug != "" {
		existing, err := s.productRepo.GetBySlug(slug)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}
	}
	_, err := s.productService.Create(service.ProductInput{
		CategoryID:  category.ID,
		Name:        item.Name,
		Slug:        item.Slug,
		Description: item.Description,
		Price:       item.Price,
		Stock:       item.Stock,
		Available:   item.Available,
	})
	if errors.Is(err, service.ErrSlugExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
