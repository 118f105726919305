// Package response 统一 HTTP 响应结构
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

// Response 响应体
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Success 200 成功响应
func Success(c *gin.Context, data any) {
	SuccessWithStatus(c, http.StatusOK, "success", data)
}

// SuccessWithStatus 指定状态码与消息的成功响应
func SuccessWithStatus(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// ErrorWithStatus 错误响应
func ErrorWithStatus(c *gin.Context, status int, message, detail string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Detail:  detail,
	})
}

// Error 根据错误类别选择状态码；内部错误不暴露细节
func Error(c *gin.Context, err error) {
	kind := bizerr.KindOf(err)
	status := bizerr.HTTPStatus(kind)
	if kind == bizerr.KindInternal {
		logger.Error(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		ErrorWithStatus(c, status, "internal error", "")
		return
	}
	ErrorWithStatus(c, status, err.Error(), kind.String())
}
