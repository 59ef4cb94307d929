package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/storefront-next/internal/models"
)

// 鉴权快照缓存时长，账号变更时主动覆盖
const authStateTTL = 10 * time.Minute

// UserAuthState 顾客登录态校验所需字段
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

// AdminAuthState 管理员登录态校验所需字段
// TokenInvalidBefore 为 Unix 秒，0 表示未设置
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

// authSlot 按主体 ID 存取一类快照
type authSlot[T any] struct {
	prefix string
}

var (
	userAuthSlot  = authSlot[UserAuthState]{prefix: "auth:user:"}
	adminAuthSlot = authSlot[AdminAuthState]{prefix: "auth:admin:"}
)

func (s authSlot[T]) key(id uint) string {
	return s.prefix + strconv.FormatUint(uint64(id), 10)
}

func (s authSlot[T]) get(ctx context.Context, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var state T
	hit, err := GetJSON(ctx, s.key(id), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

func (s authSlot[T]) set(ctx context.Context, id uint, state *T) error {
	if id == 0 || state == nil {
		return nil
	}
	return SetJSON(ctx, s.key(id), state, authStateTTL)
}

func (s authSlot[T]) del(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return Del(ctx, s.key(id))
}

func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		IsActive:     user.IsActive,
		IsStaff:      user.IsStaff,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return userAuthSlot.get(ctx, userID)
}

func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return userAuthSlot.set(ctx, state.UserID, state)
}

// DelUserAuthState 账号删除后调用
func DelUserAuthState(ctx context.Context, userID uint) error {
	return userAuthSlot.del(ctx, userID)
}

func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return adminAuthSlot.get(ctx, adminID)
}

func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil {
		return nil
	}
	return adminAuthSlot.set(ctx, state.AdminID, state)
}

func DelAdminAuthState(ctx context.Context, adminID uint) error {
	return adminAuthSlot.del(ctx, adminID)
}
