// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-resume-analyst/internal/config"
	"ai-resume-analyst/pkg/log"
	"ai-resume-analyst/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts 同一任务失败达到该次数后提交 offset，不再重试。
const maxAttempts = 3

// TaskProcessor 抽象了能够处理导入任务的组件，使消费者与具体流水线解耦。
type TaskProcessor interface {
	ProcessTask(ctx context.Context, task tasks.ResumeIngestTask) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceResumeTask 发送一个简历导入任务到 Kafka。
func ProduceResumeTask(ctx context.Context, task tasks.ResumeIngestTask) error {
	if producer == nil {
		return errors.New("kafka producer not initialized")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.ObjectName),
		Value: taskBytes,
	})
}

// Close 关闭生产者。
func Close() error {
	if producer == nil {
		return nil
	}
	return producer.Close()
}

// StartConsumer 启动一个 Kafka 消费者来处理简历导入任务，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Kafka 消费者收到退出信号")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}

		var task tasks.ResumeIngestTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		log.Infof("开始处理简历导入任务: Object=%s, Email=%s, offset=%d", task.ObjectName, task.Email, m.Offset)
		attemptsKey := fmt.Sprintf("kafka:attempts:%s", task.ObjectName)
		if err := processor.ProcessTask(ctx, task); err != nil {
			log.Errorf("处理简历导入任务失败: Object=%s, Error: %v", task.ObjectName, err)
			if shouldGiveUp(ctx, rdb, attemptsKey) {
				log.Errorf("简历导入任务多次失败(>=%d)，提交 offset 终止重试: Object=%s", maxAttempts, task.ObjectName)
				commit(ctx, r, m)
			}
			// 未达到阈值时不提交 offset，让 Kafka 重新投递
			continue
		}

		log.Infof("简历导入任务处理成功: Object=%s", task.ObjectName)
		if rdb != nil {
			_ = rdb.Del(ctx, attemptsKey).Err()
		}
		commit(ctx, r, m)
	}
}

// shouldGiveUp 使用 Redis 计数失败次数。没有 Redis 时不重试；计数失败时继续重试。
func shouldGiveUp(ctx context.Context, rdb *redis.Client, key string) bool {
	if rdb == nil {
		return true
	}
	attempts, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warnw("[Kafka] 记录失败次数出错", "key", key, "error", err)
		return false
	}
	_ = rdb.Expire(ctx, key, 24*time.Hour).Err()
	log.Warnw("[Kafka] 导入任务失败", "key", key, "attempts", attempts, "max", maxAttempts)
	return attempts >= maxAttempts
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
