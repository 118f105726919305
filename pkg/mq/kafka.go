// Package mq 提供 Kafka 生产者，供 outbox relay 投递领域事件
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/shopfront/pkg/logger"
)

// HeaderEventType 消息头中的事件类型，取值为未加前缀的 topic
const HeaderEventType = "event-type"

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers    []string
	MaxRetries int
	// 重试退避（毫秒）
	RetryBackoff int
	// 拼接在事件 topic 之前，例如 "shop."
	TopicPrefix string
}

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
	prefix string
}

// NewProducer 创建生产者；writer 惰性建连，此处不访问 broker
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	backoff := time.Duration(cfg.RetryBackoff) * time.Millisecond
	writer := &kafka.Writer{
		Addr: kafka.TCP(cfg.Brokers...),
		// 按 key（订单/购物车 uuid）分区，同一聚合的事件落在同一分区
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Snappy,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        backoff,
		WriteBackoffMax:        10 * backoff,
	}

	logger.Info(context.Background(), "Kafka producer ready", "brokers", cfg.Brokers, "topic_prefix", cfg.TopicPrefix)
	return &KafkaProducer{writer: writer, prefix: cfg.TopicPrefix}, nil
}

// Topic 返回带前缀的完整 topic
func (kp *KafkaProducer) Topic(name string) string {
	return kp.prefix + name
}

// SendMessage 同步写入一条消息；value 为 json.RawMessage 时原样发送
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value any) error {
	msg, err := kp.message(topic, key, value)
	if err != nil {
		return err
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Kafka write failed", "topic", msg.Topic, "key", key, "error", err)
		return fmt.Errorf("kafka write %s: %w", msg.Topic, err)
	}
	logger.Debug(ctx, "Kafka message written", "topic", msg.Topic, "key", key)
	return nil
}

func (kp *KafkaProducer) message(topic, key string, value any) (kafka.Message, error) {
	var payload []byte
	switch v := value.(type) {
	case json.RawMessage:
		payload = v
	case []byte:
		payload = v
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return kafka.Message{}, fmt.Errorf("encode %s event: %w", topic, err)
		}
		payload = data
	}
	return kafka.Message{
		Topic: kp.Topic(topic),
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(topic)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: time.Now(),
	}, nil
}

// Close 刷出缓冲并关闭
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
