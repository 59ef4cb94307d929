package public

import (
	"time"

	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Username        string                              `json:"username" binding:"required"`
	Email           string                              `json:"email" binding:"required"`
	Password        string                              `json:"password" binding:"required"`
	PasswordConfirm string                              `json:"password_confirm" binding:"required"`
	CaptchaPayload  handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLoginRequest 登录请求，login 可为用户名或邮箱
type UserLoginRequest struct {
	Login          string                              `json:"login" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	RememberMe     bool                                `json:"remember_me"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		respondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.register_failed")
		return
	}

	requestLog(c).Infow("user_registered", "user_id", user.ID, "username", user.Username)
	response.Success(c, userTokenResponse(user, token, expiresAt))
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Login, req.Password, req.RememberMe)
	if err != nil {
		requestLog(c).Infow("user_login_failed", "login", req.Login, "client_ip", c.ClientIP(), "error", err)
		respondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	response.Success(c, userTokenResponse(user, token, expiresAt))
}

// GetCurrentUser 当前用户与资料
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.UserAuthService.GetProfile(uid)
	if err != nil {
		respondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.Success(c, view)
}

// UpdateUserProfile 修改个人资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.UserProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	view, err := h.UserAuthService.UpdateProfile(uid, req)
	if err != nil {
		if formErr, ok := service.AsFormError(err); ok {
			respondFormError(c, formErr, nil)
			return
		}
		respondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, view)
}

// ChangeUserPassword 修改密码，成功后旧 Token 失效
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondWithMappedError(c, err, accountErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// verifyCaptcha 校验场景验证码，失败时已写入响应
func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload handlershared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.ToServicePayload()); err != nil {
		respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.captcha_verify_failed")
		return false
	}
	return true
}

func userTokenResponse(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	}
}

// respondFormError 表单校验失败：400 + 字段错误，可附带页面数据
func respondFormError(c *gin.Context, formErr *service.FormError, extra gin.H) {
	data := gin.H{"errors": handlershared.LocalizeFormErrors(c, formErr)}
	for key, value := range extra {
		data[key] = value
	}
	handlershared.RespondErrorWithData(c, response.CodeBadRequest, "error.form_invalid", data)
}
