package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误代码，按结算错误分类映射HTTP状态，前端据此决定提示或重试
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRailRejected    = "RAIL_REJECTED"
	CodeRailUnavailable = "RAIL_UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

func errorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeRailRejected
	case http.StatusBadGateway:
		return CodeRailUnavailable
	default:
		return CodeInternal
	}
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应，附带结算错误分类代码
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Code:    errorCode(statusCode),
		Message: message,
		Data:    nil,
	})
}
