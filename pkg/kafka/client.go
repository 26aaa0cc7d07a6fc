// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"support-bot-go/internal/config"
	"support-bot-go/pkg/events"
	"support-bot-go/pkg/log"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
// brokers 为空时跳过初始化，事件上报保持禁用，其余功能不受影响。
func InitProducer(cfg config.KafkaConfig) {
	if cfg.Brokers == "" {
		log.Info("未配置 Kafka brokers，事件上报已禁用")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// PublishTurnEvent 发送一次对话轮次事件到 Kafka。
// 按 session_id 作为 key，同一会话的事件落在同一分区保持有序。
// 未启用时为空操作。
func PublishTurnEvent(ctx context.Context, event events.TurnEvent) error {
	if producer == nil {
		return nil
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: eventBytes,
	})
}
