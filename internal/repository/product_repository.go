package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"price":      "price",
	"name":       "name",
	"created_at": "created_at",
	"stock":      "stock",
}

const defaultProductOrder = "created_at DESC, id DESC"

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	ListFeatured(limit int) ([]models.Product, error)
	ListRelated(product *models.Product, limit int) ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	ApplyEditablePatch(patch ProductEditablePatch) (int64, error)
	DecrementStock(productID uint, quantity int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表（前台与后台共用）
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice.StringFixed(2))
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice.StringFixed(2))
	}
	query = applySearch(query, r.db, filter.Search, "name", "description")
	query = applyCreatedRange(query, "created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	query = applyPagination(query, filter.Page, filter.PageSize)
	order := orderClause(filter.Sort, productSortColumns, defaultProductOrder)
	if err := query.Order(order).Order("id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListFeatured 首页推荐：最新上架商品
func (r *GormProductRepository) ListFeatured(limit int) ([]models.Product, error) {
	var products []models.Product
	query := r.db.Preload("Category").Where("available = ?", true).Order(defaultProductOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListRelated 同分类下的其他商品
func (r *GormProductRepository) ListRelated(product *models.Product, limit int) ([]models.Product, error) {
	if product == nil {
		return nil, nil
	}
	var products []models.Product
	query := r.db.Where("category_id = ? AND id <> ?", product.CategoryID, product.ID).Order(defaultProductOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Category").Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountBySlug 统计 slug 数量（含软删除记录）
func (r *GormProductRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyEditablePatch 列表内编辑：仅更新传入的价格/库存/上架字段
func (r *GormProductRepository) ApplyEditablePatch(patch ProductEditablePatch) (int64, error) {
	updates := map[string]interface{}{}
	if patch.Price != nil {
		updates["price"] = models.NewMoneyFromDecimal(*patch.Price)
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.Available != nil {
		updates["available"] = *patch.Available
	}
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Product{}).Where("id = ?", patch.ID).Updates(updates)
	return result.RowsAffected, result.Error
}

// DecrementStock 扣减库存，不足时归零（支付已完成，不能回滚订单）
func (r *GormProductRepository) DecrementStock(productID uint, quantity int) error {
	if productID == 0 || quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", quantity, quantity)).Error
}
