package shared

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MappedError 业务错误到 (业务码, i18n key) 的映射规则。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(ContextRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	RespondErrorWithMsg(c, code, i18n.T(locale, key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// RespondMappedError 按规则表匹配错误，未命中时使用兜底码与 key。
// 密码策略与库存不足错误带参数，单独格式化。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	locale := i18n.ResolveLocale(c)
	if key, args, ok := service.IsPasswordPolicyError(err); ok {
		RespondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, key, args...), nil)
		return
	}
	var shortage *service.StockShortageError
	if errors.As(err, &shortage) {
		msg := i18n.Sprintf(locale, "error.insufficient_stock", shortage.ProductName, shortage.Available)
		RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// LocalizeFormErrors 将表单字段错误翻译为 {field: message}。
func LocalizeFormErrors(c *gin.Context, formErr *service.FormError) map[string]string {
	locale := i18n.ResolveLocale(c)
	result := make(map[string]string, len(formErr.Fields))
	for field, fe := range formErr.Fields {
		result[field] = i18n.Sprintf(locale, fe.Key, fe.Args...)
	}
	return result
}

// RespondErrorWithData 返回国际化错误响应并携带数据。
func RespondErrorWithData(c *gin.Context, code int, key string, data gin.H) {
	response.ErrorWithData(c, code, i18n.T(i18n.ResolveLocale(c), key), data)
}
