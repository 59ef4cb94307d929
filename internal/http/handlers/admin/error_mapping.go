package admin

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

var categoryErrorRules = []handlershared.MappedError{
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
	{Target: service.ErrCategoryInvalid, Code: response.CodeBadRequest, Key: "error.category_invalid"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
}

var productErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeBadRequest, Key: "error.category_not_found"},
	{Target: service.ErrProductPriceInvalid, Code: response.CodeBadRequest, Key: "error.product_price_invalid"},
	{Target: service.ErrProductStockInvalid, Code: response.CodeBadRequest, Key: "error.product_stock_invalid"},
	{Target: service.ErrProductInvalid, Code: response.CodeBadRequest, Key: "error.product_invalid"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
}

var cartAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrCartNotFound, Code: response.CodeNotFound, Key: "error.cart_not_found"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
}

var orderAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemNotFound, Code: response.CodeNotFound, Key: "error.order_item_not_found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
}

var userAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrProfileNotFound, Code: response.CodeNotFound, Key: "error.profile_not_found"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var adminAccountErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidUsername, Code: response.CodeBadRequest, Key: "error.admin_username_invalid"},
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.admin_username_exists"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
}

var captchaErrorRules = []handlershared.MappedError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_config_invalid"},
}

// respondFormError 表单字段错误统一返回 400
func respondFormError(c *gin.Context, formErr *service.FormError) {
	handlershared.RespondErrorWithData(c, response.CodeBadRequest, "error.form_invalid", gin.H{
		"errors": handlershared.LocalizeFormErrors(c, formErr),
	})
}
