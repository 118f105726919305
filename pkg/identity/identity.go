// Package identity 定义调用方身份（由上游鉴权网关写入请求头或 gRPC metadata）
package identity

import (
	"context"
	"strings"
)

// Role 调用方角色
type Role string

const (
	// RoleShopper 购物者
	RoleShopper Role = "shopper"
	// RoleStaff 店铺员工，可推进订单状态
	RoleStaff Role = "staff"
)

// Actor 请求调用方
type Actor struct {
	UserID string
	Role   Role
}

// Authenticated 是否带有用户身份
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// IsStaff 是否为店铺员工
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// ParseRole 解析角色，未知值视为购物者
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleStaff {
		return RoleStaff
	}
	return RoleShopper
}

type actorKey struct{}

// WithActor 将调用方写入 context
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext 取出调用方；不存在时返回匿名购物者
func FromContext(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{Role: RoleShopper}
}
