package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 店铺前台接口：目录、购物车、结账、支付回调与订单
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// localize 按请求语言翻译文案
func localize(c *gin.Context, key string, args ...interface{}) string {
	locale := i18n.ResolveLocale(c)
	if len(args) == 0 {
		return i18n.T(locale, key)
	}
	return i18n.Sprintf(locale, key, args...)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.ContextID(c, handlershared.ContextUserID, "error.user_id_invalid")
}
