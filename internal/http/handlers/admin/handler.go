package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 后台管理接口：目录、购物车、订单、用户与权限维护
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.ContextID(c, handlershared.ContextAdminID, "error.admin_id_invalid")
}

func currentAdminID(c *gin.Context) uint {
	return c.GetUint(handlershared.ContextAdminID)
}

func currentUsername(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(handlershared.ContextUsername))
}

func isSuperAdmin(c *gin.Context) bool {
	return c.GetBool(handlershared.ContextAdminIsSuper)
}

// parseIDParam 解析路径 :id，失败时按资源返回 404
func parseIDParam(c *gin.Context, notFoundKey string) (uint, bool) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeNotFound, notFoundKey, nil)
		return 0, false
	}
	return id, true
}
