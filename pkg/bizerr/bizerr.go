// Package bizerr 定义核心与调用方之间的判别式错误：校验、未找到、业务规则、权限、内部错误
package bizerr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind 错误类别
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindBusiness
	KindForbidden
	KindUnauthenticated
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusiness:
		return "business"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error 业务错误，Message 面向最终用户
type Error struct {
	kind    Kind
	Code    string
	Message string
	cause   error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Kind 返回错误类别
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// New 创建指定类别的错误
func New(kind Kind, code, message string) *Error {
	return &Error{kind: kind, Code: code, Message: message}
}

// Validation 输入校验失败
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// NotFound 引用的实体不存在
func NotFound(code, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

// Business 业务规则不允许
func Business(code, message string) *Error {
	return New(KindBusiness, code, message)
}

// Forbidden 调用方无权执行该操作
func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

// Unauthenticated 缺少调用方身份
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, "unauthenticated", message)
}

// Internal 包装存储层或基础设施故障
func Internal(err error) *Error {
	return &Error{kind: KindInternal, Code: "internal", Message: "internal error", cause: err}
}

type kinded interface {
	Kind() Kind
}

// KindOf 返回错误链中第一个带类别的错误的类别，未分类的错误视为内部错误
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// Wrap 将未分类的错误包装为内部错误，已分类的错误原样返回
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var k kinded
	if errors.As(err, &k) {
		return err
	}
	return Internal(err)
}

// HTTPStatus 类别到 HTTP 状态码的映射
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBusiness:
		return http.StatusUnprocessableEntity
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode 类别到 gRPC 状态码的映射
func GRPCCode(kind Kind) codes.Code {
	switch kind {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindBusiness:
		return codes.FailedPrecondition
	case KindForbidden:
		return codes.PermissionDenied
	case KindUnauthenticated:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
