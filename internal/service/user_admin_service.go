package service

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// UserAdminService 后台用户与资料管理
type UserAdminService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

// NewUserAdminService 创建后台用户管理服务
func NewUserAdminService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, profileRepo: profileRepo}
}

// UserAdminListInput 后台用户列表输入
type UserAdminListInput struct {
	Page     int
	PageSize int
	Search   string
	IsStaff  *bool
	IsActive *bool
}

// UserAdminUpdateInput 后台修改用户，nil 字段不修改
type UserAdminUpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
}

// ProfileAdminListInput 后台资料列表输入
type ProfileAdminListInput struct {
	Page     int
	PageSize int
	City     string
	State    string
	Search   string
}

// ListUsers 用户列表
func (s *UserAdminService) ListUsers(input UserAdminListInput) ([]models.User, int64, error) {
	return s.userRepo.List(repository.UserListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Search:   strings.TrimSpace(input.Search),
		IsStaff:  input.IsStaff,
		IsActive: input.IsActive,
	})
}

// GetUser 用户详情
func (s *UserAdminService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateUser 修改用户；禁用时递增 token 版本使其登录态失效
func (s *UserAdminService) UpdateUser(id uint, input UserAdminUpdateInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if len([]rune(user.FirstName)) > 150 || len([]rune(user.LastName)) > 150 {
		return nil, ErrInvalidInput
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			exist, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return nil, err
			}
			if exist != nil && exist.ID != user.ID {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsActive != nil {
		if user.IsActive && !*input.IsActive {
			user.TokenVersion++
		}
		user.IsActive = *input.IsActive
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// DeleteUser 删除用户
func (s *UserAdminService) DeleteUser(id uint) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), id)
	return nil
}

// ListProfiles 资料列表
func (s *UserAdminService) ListProfiles(input ProfileAdminListInput) ([]models.Profile, int64, error) {
	return s.profileRepo.List(repository.ProfileListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		City:     strings.TrimSpace(input.City),
		State:    strings.TrimSpace(input.State),
		Search:   strings.TrimSpace(input.Search),
	})
}

// GetProfile 资料详情
func (s *UserAdminService) GetProfile(id uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateProfile 修改资料
func (s *UserAdminService) UpdateProfile(id uint, input UserProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}
	profile.Phone = trimOr(input.Phone, profile.Phone)
	profile.Address = trimOr(input.Address, profile.Address)
	profile.City = trimOr(input.City, profile.City)
	profile.State = trimOr(input.State, profile.State)
	profile.ZipCode = trimOr(input.ZipCode, profile.ZipCode)
	if err := validateProfileFields(profile); err != nil {
		return nil, err
	}
	profile.User = nil
	if err := s.profileRepo.Upsert(profile); err != nil {
		return nil, err
	}
	return s.GetProfile(id)
}
