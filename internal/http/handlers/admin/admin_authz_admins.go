package admin

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// superAdminID 初始管理员，不可删除
const superAdminID uint = 1

type authzCreateAdminPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ListAuthzAdmins 获取管理员列表（含角色）
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}

	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, roleErr := h.AuthzService.GetAdminRoles(admin.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper || admin.ID == superAdminID,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
			"roles":         roles,
		})
	}

	response.Success(c, items)
}

// CreateAuthzAdmin 创建管理员
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AuthService.CreateAdmin(req.Username, req.Password)
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.admin_create_failed")
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	requestLog(c).Infow("admin_authz_admin_created",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
	)
	response.Success(c, admin)
}

// DeleteAuthzAdmin 删除管理员（不可删除自己与初始管理员）
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	adminID, ok := parseIDParam(c, "error.admin_not_found")
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(adminID)
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.admin_delete_failed")
		return
	}
	if currentAdminID(c) == adminID {
		respondError(c, response.CodeBadRequest, "error.admin_delete_self_forbidden", nil)
		return
	}
	if adminID == superAdminID {
		respondError(c, response.CodeBadRequest, "error.admin_delete_protected", nil)
		return
	}

	if err := h.AuthzService.RemoveAdmin(adminID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), adminID)

	requestLog(c).Infow("admin_authz_admin_deleted",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", adminID,
		"target_username", admin.Username,
	)
	response.Success(c, nil)
}
