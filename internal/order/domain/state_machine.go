package domain

import (
	"fmt"
	"time"

	"github.com/wyfcoding/shopfront/pkg/bizerr"
)

// OrderEvent 推进订单状态的事件
type OrderEvent string

const (
	EventAccept  OrderEvent = "accept"
	EventShip    OrderEvent = "ship"
	EventDeliver OrderEvent = "deliver"
	EventClose   OrderEvent = "close"
	EventCancel  OrderEvent = "cancel"
)

type transitionKey struct {
	from  OrderStatus
	event OrderEvent
}

// transitions 合法迁移表，未列出的 (状态, 事件) 组合均不合法
var transitions = map[transitionKey]OrderStatus{
	{OrderStatusPlaced, EventAccept}:   OrderStatusAccepted,
	{OrderStatusAccepted, EventShip}:   OrderStatusShipped,
	{OrderStatusShipped, EventDeliver}: OrderStatusDelivered,
	{OrderStatusDelivered, EventClose}: OrderStatusClosed,
	{OrderStatusPlaced, EventCancel}:   OrderStatusCancelled,
	{OrderStatusAccepted, EventCancel}: OrderStatusCancelled,
	{OrderStatusShipped, EventCancel}:  OrderStatusCancelled,
}

// pastTense 错误信息中使用的动词过去分词
var pastTense = map[OrderEvent]string{
	EventAccept:  "accepted",
	EventShip:    "shipped",
	EventDeliver: "delivered",
	EventClose:   "closed",
	EventCancel:  "cancelled",
}

// ParseEvent 解析事件名，不是五种事件之一时返回 false
func ParseEvent(name string) (OrderEvent, bool) {
	e := OrderEvent(name)
	_, ok := pastTense[e]
	return e, ok
}

// Events 全部事件
func Events() []OrderEvent {
	return []OrderEvent{EventAccept, EventShip, EventDeliver, EventClose, EventCancel}
}

// Statuses 全部状态
func Statuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPlaced,
		OrderStatusAccepted,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusClosed,
		OrderStatusCancelled,
	}
}

// NextStatus 查询迁移表
func NextStatus(from OrderStatus, event OrderEvent) (OrderStatus, bool) {
	to, ok := transitions[transitionKey{from, event}]
	return to, ok
}

// StateTransitionError 非法状态迁移
type StateTransitionError struct {
	OrderID string
	Event   OrderEvent
}

func (e *StateTransitionError) Error() string {
	verb, ok := pastTense[e.Event]
	if !ok {
		verb = string(e.Event)
	}
	return fmt.Sprintf("Order %s cannot be %s", e.OrderID, verb)
}

// Kind 非法迁移属于业务规则错误
func (e *StateTransitionError) Kind() bizerr.Kind {
	return bizerr.KindBusiness
}

// Can 当前状态下事件是否合法
func (o *Order) Can(event OrderEvent) bool {
	_, ok := NextStatus(o.Status, event)
	return ok
}

func (o *Order) CanAccept() bool  { return o.Can(EventAccept) }
func (o *Order) CanShip() bool    { return o.Can(EventShip) }
func (o *Order) CanDeliver() bool { return o.Can(EventDeliver) }
func (o *Order) CanClose() bool   { return o.Can(EventClose) }
func (o *Order) CanCancel() bool  { return o.Can(EventCancel) }

// ApplyEvent 按迁移表推进状态；不合法时状态不变并返回 *StateTransitionError
func (o *Order) ApplyEvent(event OrderEvent) error {
	to, ok := NextStatus(o.Status, event)
	if !ok {
		return &StateTransitionError{OrderID: o.UUID, Event: event}
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) Accept() error  { return o.ApplyEvent(EventAccept) }
func (o *Order) Ship() error    { return o.ApplyEvent(EventShip) }
func (o *Order) Deliver() error { return o.ApplyEvent(EventDeliver) }
func (o *Order) Close() error   { return o.ApplyEvent(EventClose) }
func (o *Order) Cancel() error  { return o.ApplyEvent(EventCancel) }
