package service

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// CategoryAdminListInput 后台分类列表输入
type CategoryAdminListInput struct {
	Page     int
	PageSize int
	Search   string
}

// List 获取全部分类（前台，带缓存）
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if hit, err := cache.GetCatalogCategories(ctx, &cached); err != nil {
		logger.Warnw("category_cache_read_failed", "error", err)
	} else if hit {
		return cached, nil
	}
	categories, err := s.repo.ListAll(0)
	if err != nil {
		return nil, err
	}
	if err := cache.SetCatalogCategories(ctx, categories); err != nil {
		logger.Warnw("category_cache_write_failed", "error", err)
	}
	return categories, nil
}

// Home 首页展示的分类
func (s *CategoryService) Home(limit int) ([]models.Category, error) {
	return s.repo.ListAll(limit)
}

// GetBySlug 按 slug 获取分类
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// ListAdmin 后台分类列表
func (s *CategoryService) ListAdmin(input CategoryAdminListInput) ([]models.Category, int64, error) {
	return s.repo.List(repository.CategoryListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   input.Search,
	})
}

// Get 后台获取分类
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > 100 {
		return nil, ErrCategoryInvalid
	}
	slug := normalizeSlug(input.Slug, name, "category")
	count, err := s.repo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category := models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, slugConflict(err)
	}
	invalidateCatalogCache()
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > 100 {
		return nil, ErrCategoryInvalid
	}

	slug := normalizeSlug(input.Slug, name, "category")
	count, err := s.repo.CountBySlug(slug, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(input.Description)
	if err := s.repo.Update(category); err != nil {
		return nil, slugConflict(err)
	}
	invalidateCatalogCache()
	return category, nil
}

// Delete 删除分类，仍有关联商品时拒绝
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	invalidateCatalogCache()
	return nil
}

func invalidateCatalogCache() {
	if err := cache.InvalidateCatalog(context.Background()); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "error", err)
	}
}
