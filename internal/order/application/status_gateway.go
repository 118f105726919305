package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/shopfront/internal/order/domain"
	"github.com/wyfcoding/shopfront/pkg/bizerr"
	"github.com/wyfcoding/shopfront/pkg/identity"
)

// StatusGateway 将外部的状态变更请求分派到状态机
type StatusGateway struct {
	repo    domain.OrderRepository
	command *OrderCommandService
}

// NewStatusGateway 创建 StatusGateway 实例
func NewStatusGateway(repo domain.OrderRepository, command *OrderCommandService) *StatusGateway {
	return &StatusGateway{repo: repo, command: command}
}

// ChangeStatus 校验请求并推进订单状态。
// 非法迁移返回状态机的错误信息，不做改写。
func (g *StatusGateway) ChangeStatus(ctx context.Context, actor identity.Actor, orderUUID, eventName string) (*ChangeStatusResult, error) {
	if orderUUID == "" || eventName == "" {
		return nil, bizerr.Validation("missing_fields", "Order id and change_status has to be filled")
	}
	if !actor.IsStaff() {
		return nil, bizerr.Forbidden("staff_only", "Only store staff can change order status")
	}

	order, err := g.repo.Get(ctx, orderUUID)
	if err != nil {
		return nil, bizerr.Internal(err)
	}
	if order == nil {
		return nil, bizerr.NotFound("order_not_found", "Order %s does not exist", orderUUID)
	}

	event, ok := domain.ParseEvent(eventName)
	if !ok {
		return nil, bizerr.Business("invalid_event", fmt.Sprintf("Status %s is not an allowed value", eventName))
	}

	updated, err := g.command.Transition(ctx, orderUUID, event, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &ChangeStatusResult{
		OrderUUID: updated.UUID,
		Status:    string(updated.Status),
		Message:   fmt.Sprintf("Status of order %s updated to %s", updated.UUID, updated.Status),
	}, nil
}

// IsTransitionRejected 判断错误是否为非法状态迁移
func IsTransitionRejected(err error) bool {
	var transitionErr *domain.StateTransitionError
	return errors.As(err, &transitionErr)
}
