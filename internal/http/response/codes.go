package response

// 业务状态码，4xx/5xx 与 HTTP 状态码一致
const (
	CodeOK               = 0
	CodeBadRequest       = 400
	CodeUnauthorized     = 401
	CodeForbidden        = 403
	CodeNotFound         = 404
	CodeMethodNotAllowed = 405
	CodeConflict         = 409
	CodeTooManyRequests  = 429
	CodeInternal         = 500
	CodeBadGateway       = 502
)

// HTTPStatus 将业务状态码映射为 HTTP 状态码
func HTTPStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	if code == CodeOK {
		return 200
	}
	return 400
}
