package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository 用户资料数据访问接口
type ProfileRepository interface {
	GetByID(id uint) (*models.Profile, error)
	GetByUser(userID uint) (*models.Profile, error)
	Upsert(profile *models.Profile) error
	List(filter ProfileListFilter) ([]models.Profile, int64, error)
}

// GormProfileRepository GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建用户资料仓库
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// GetByID 根据 ID 获取资料
func (r *GormProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Preload("User").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUser 获取用户资料
func (r *GormProfileRepository) GetByUser(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert 按 user_id 写入资料
func (r *GormProfileRepository) Upsert(profile *models.Profile) error {
	if profile == nil {
		return nil
	}
	return r.db.Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone", "address", "city", "state", "zip_code", "updated_at"}),
	}).Create(profile).Error
}

// List 后台资料列表（城市/州过滤，多字段搜索）
func (r *GormProfileRepository) List(filter ProfileListFilter) ([]models.Profile, int64, error) {
	query := r.db.Model(&models.Profile{}).Joins("JOIN users ON users.id = profiles.user_id")
	if filter.City != "" {
		query = query.Where("profiles.city = ?", filter.City)
	}
	if filter.State != "" {
		query = query.Where("profiles.state = ?", filter.State)
	}
	query = applySearch(query, r.db, filter.Search,
		"users.username", "users.email", "profiles.phone", "profiles.address", "profiles.city", "profiles.state")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	query = applyPagination(query.Preload("User"), filter.Page, filter.PageSize)
	if err := query.Order("profiles.id DESC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
