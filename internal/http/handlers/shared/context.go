package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 认证与请求中间件写入 gin.Context 的键
const (
	ContextRequestID    = "request_id"
	ContextUserID       = "user_id"
	ContextAdminID      = "admin_id"
	ContextUsername     = "username"
	ContextAdminIsSuper = "admin_is_super"
)

// ContextID 读取中间件写入的主体 ID；缺失按未登录处理，非法值按 invalidKey 返回 400
func ContextID(c *gin.Context, key, invalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := toUint(value)
	if !ok || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return id, true
}

func toUint(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, true
	case uint64:
		return uint(v), true
	case int:
		return uint(v), v >= 0
	case int64:
		return uint(v), v >= 0
	case float64:
		return uint(v), v >= 0 && v == float64(uint64(v))
	default:
		return 0, false
	}
}
