package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var publicProductSorts = map[string]struct{}{
	constants.ProductSortNewest:    {},
	constants.ProductSortOldest:    {},
	constants.ProductSortPriceAsc:  {},
	constants.ProductSortPriceDesc: {},
	constants.ProductSortNameAsc:   {},
	constants.ProductSortNameDesc:  {},
}

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	store        config.StoreConfig
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, store config.StoreConfig) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo, store: store}
}

// ProductListInput 前台商品列表查询
type ProductListInput struct {
	CategorySlug string
	Query        string
	MinPrice     string
	MaxPrice     string
	Sort         string
	Page         int
}

// ProductListResult 前台商品列表结果
type ProductListResult struct {
	Category *models.Category `json:"category,omitempty"`
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Sort     string           `json:"sort"`
}

// ProductDetail 商品详情与同类推荐
type ProductDetail struct {
	Product *models.Product  `json:"product"`
	Related []models.Product `json:"related_products"`
}

// HomeView 首页数据
type HomeView struct {
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

// ProductInput 后台创建/更新商品输入
type ProductInput struct {
	CategoryID  uint
	Name        string
	Slug        string
	Description string
	Price       string
	Stock       int
	Available   *bool
}

// ProductAdminListInput 后台商品列表输入
type ProductAdminListInput struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	Available  *bool
}

// ProductBulkPatch 列表内编辑（价格/库存/上架）
type ProductBulkPatch struct {
	ID        uint
	Price     *string
	Stock     *int
	Available *bool
}

// Home 首页：分类与推荐商品（带缓存）
func (s *ProductService) Home(ctx context.Context) (*HomeView, error) {
	var cached HomeView
	if hit, err := cache.GetCatalogHome(ctx, &cached); err != nil {
		logger.Warnw("catalog_home_cache_read_failed", "error", err)
	} else if hit {
		return &cached, nil
	}

	categories, err := s.categoryRepo.ListAll(positiveOr(s.store.HomeCategoryCount, 3))
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListFeatured(positiveOr(s.store.FeaturedProductCount, 8))
	if err != nil {
		return nil, err
	}
	view := &HomeView{Categories: categories, Products: products}
	if err := cache.SetCatalogHome(ctx, view); err != nil {
		logger.Warnw("catalog_home_cache_write_failed", "error", err)
	}
	return view, nil
}

// ListPublic 前台商品列表：仅上架商品，支持分类、搜索、价格区间与排序
func (s *ProductService) ListPublic(input ProductListInput) (*ProductListResult, error) {
	pageSize := positiveOr(s.store.PageSize, 12)
	available := true
	filter := repository.ProductListFilter{
		PageSize:     pageSize,
		Search:       strings.TrimSpace(input.Query),
		Available:    &available,
		WithCategory: true,
	}

	var category *models.Category
	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		found, err := s.categoryRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, ErrCategoryNotFound
		}
		category = found
		filter.CategoryID = found.ID
	}

	minPrice, err := parsePriceFilter(input.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := parsePriceFilter(input.MaxPrice)
	if err != nil {
		return nil, err
	}
	filter.MinPrice = minPrice
	filter.MaxPrice = maxPrice

	sort := strings.TrimSpace(input.Sort)
	if _, ok := publicProductSorts[sort]; !ok {
		sort = constants.ProductSortNewest
	}
	filter.Sort = sort

	// 0 表示首页；负数或超出末页视为页面不存在，空结果的第一页照常返回
	page := input.Page
	if page < 0 {
		return nil, ErrPageOutOfRange
	}
	if page == 0 {
		page = 1
	}
	filter.Page = page
	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	if page > 1 && len(products) == 0 {
		return nil, ErrPageOutOfRange
	}

	return &ProductListResult{
		Category: category,
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
	}, nil
}

// GetDetail 商品详情：按 slug 查找并附带同分类推荐
func (s *ProductService) GetDetail(slug string) (*ProductDetail, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	related, err := s.repo.ListRelated(product, positiveOr(s.store.RelatedProductCount, 4))
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: product, Related: related}, nil
}

// ListAdmin 后台商品列表
func (s *ProductService) ListAdmin(input ProductAdminListInput) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		CategoryID:   input.CategoryID,
		Search:       input.Search,
		Available:    input.Available,
		WithCategory: true,
	})
}

// Get 后台获取商品
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	product := &models.Product{Available: true}
	if err := s.applyInput(product, input, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, slugConflict(err)
	}
	if !product.Available {
		// gorm 对 bool 零值使用列默认值
		if _, err := s.repo.ApplyEditablePatch(repository.ProductEditablePatch{ID: product.ID, Available: &product.Available}); err != nil {
			return nil, err
		}
	}
	invalidateCatalogCache()
	return s.Get(product.ID)
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.applyInput(product, input, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, slugConflict(err)
	}
	invalidateCatalogCache()
	return s.Get(id)
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	invalidateCatalogCache()
	return nil
}

// BulkUpdate 列表内批量编辑价格、库存与上架状态（单事务）
func (s *ProductService) BulkUpdate(patches []ProductBulkPatch) (int, error) {
	if len(patches) == 0 {
		return 0, nil
	}
	repoPatches := make([]repository.ProductEditablePatch, 0, len(patches))
	for _, patch := range patches {
		if patch.ID == 0 {
			return 0, ErrProductInvalid
		}
		item := repository.ProductEditablePatch{ID: patch.ID, Stock: patch.Stock, Available: patch.Available}
		if patch.Price != nil {
			price, err := parseProductPrice(*patch.Price)
			if err != nil {
				return 0, err
			}
			item.Price = &price
		}
		if patch.Stock != nil && *patch.Stock < 0 {
			return 0, ErrProductStockInvalid
		}
		repoPatches = append(repoPatches, item)
	}

	updated := 0
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, patch := range repoPatches {
			if patch.Price == nil && patch.Stock == nil && patch.Available == nil {
				continue
			}
			rows, err := txRepo.ApplyEditablePatch(patch)
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("%w: id=%d", ErrProductNotFound, patch.ID)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	invalidateCatalogCache()
	return updated, nil
}

func (s *ProductService) applyInput(product *models.Product, input ProductInput, excludeID uint) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > 200 {
		return ErrProductInvalid
	}
	if input.CategoryID == 0 {
		return ErrCategoryNotFound
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	price, err := parseProductPrice(input.Price)
	if err != nil {
		return err
	}
	if input.Stock < 0 {
		return ErrProductStockInvalid
	}
	slug := normalizeSlug(input.Slug, name, "product")
	count, err := s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugExists
	}

	product.CategoryID = category.ID
	product.Name = name
	product.Slug = slug
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromDecimal(price)
	product.Stock = input.Stock
	if input.Available != nil {
		product.Available = *input.Available
	}
	return nil
}

func parseProductPrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !price.GreaterThan(decimal.Zero) {
		return decimal.Zero, ErrProductPriceInvalid
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Zero, ErrProductPriceInvalid
	}
	return price, nil
}

func parsePriceFilter(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriceFilter, raw)
	}
	return &value, nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
