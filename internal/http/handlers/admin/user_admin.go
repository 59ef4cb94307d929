package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表（is_staff / is_active 筛选，按用户名/邮箱/姓名搜索）
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	users, total, err := h.UserAdminService.ListUsers(service.UserAdminListInput{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		IsStaff:  handlershared.ParseBoolQuery(c, "is_staff"),
		IsActive: handlershared.ParseBoolQuery(c, "is_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "error.user_not_found")
	if !ok {
		return
	}
	user, err := h.UserAdminService.GetUser(id)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.Success(c, user)
}

// PatchUser 修改用户（姓名、邮箱、is_staff、is_active）
func (h *Handler) PatchUser(c *gin.Context) {
	id, ok := parseIDParam(c, "error.user_not_found")
	if !ok {
		return
	}
	var req service.UserAdminUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAdminService.UpdateUser(id, req)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_user_updated", "admin_id", currentAdminID(c), "user_id", id)
	response.Success(c, user)
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "error.user_not_found")
	if !ok {
		return
	}
	if err := h.UserAdminService.DeleteUser(id); err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_user_deleted", "admin_id", currentAdminID(c), "user_id", id)
	response.Success(c, nil)
}

// ListProfiles 用户资料列表（城市、州筛选）
func (h *Handler) ListProfiles(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	profiles, total, err := h.UserAdminService.ListProfiles(service.ProfileAdminListInput{
		Page:     page,
		PageSize: pageSize,
		City:     strings.TrimSpace(c.Query("city")),
		State:    strings.TrimSpace(c.Query("state")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, profiles, response.BuildPagination(page, pageSize, total))
}

// GetProfile 用户资料详情
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "error.profile_not_found")
	if !ok {
		return
	}
	profile, err := h.UserAdminService.GetProfile(id)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.Success(c, profile)
}

// PatchProfile 修改用户资料
func (h *Handler) PatchProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "error.profile_not_found")
	if !ok {
		return
	}
	var req service.UserProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.UserAdminService.UpdateProfile(id, req)
	if err != nil {
		if formErr, ok := service.AsFormError(err); ok {
			respondFormError(c, formErr)
			return
		}
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, profile)
}
