// Package outbox 实现事务性发件箱：事件与业务数据在同一事务中落库，再由 Relay 异步投递到消息队列
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/shopfront/pkg/db"
	"gorm.io/gorm"
)

// Status 消息状态
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
)

// Message 发件箱消息
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Topic     string    `gorm:"type:varchar(128);not null;index"`
	Key       string    `gorm:"column:msg_key;type:varchar(64);not null"`
	Payload   string    `gorm:"type:text;not null"`
	Status    Status    `gorm:"type:varchar(16);not null;index:idx_outbox_status_id,priority:1"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"not null"`
	SentAt    *time.Time
}

// TableName 表名
func (Message) TableName() string {
	return "outbox_messages"
}

// AutoMigrate 创建发件箱表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Message{})
}

// Manager 发件箱写入端
type Manager struct {
	db *gorm.DB
}

// NewManager 创建 Manager
func NewManager(gdb *gorm.DB) *Manager {
	return &Manager{db: gdb}
}

// DB 返回底层连接
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Publish 写入一条待投递消息；ctx 中存在事务时随该事务提交或回滚
func (m *Manager) Publish(ctx context.Context, topic, key string, event any) error {
	return m.PublishInTx(ctx, db.Conn(ctx, m.db), topic, key, event)
}

// PublishInTx 在指定事务中写入一条待投递消息
func (m *Manager) PublishInTx(ctx context.Context, tx *gorm.DB, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox event: %w", err)
	}
	msg := &Message{
		Topic:     topic,
		Key:       key,
		Payload:   string(payload),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}

// Pending 按写入顺序读取待投递消息
func (m *Manager) Pending(ctx context.Context, limit int) ([]*Message, error) {
	var msgs []*Message
	err := m.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending outbox messages: %w", err)
	}
	return msgs, nil
}
