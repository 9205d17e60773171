package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"supper-club/internal/model"
	"supper-club/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey     = "confirmations"
	consumerGroup = "notifiers"

	readBatchSize = 16
)

// StreamQueueConfig 控制確認訊息的投遞節奏。通知過期就沒有意義，
// 所以放棄條件看訊息年齡，而不是數重試次數。
type StreamQueueConfig struct {
	ReadBlock    time.Duration // XREADGROUP 等新訊息的阻塞時間
	RetryAfter   time.Duration // 投遞後閒置超過此時間視為沒送成功，領回重試
	GiveUpAfter  time.Duration // 訊息出生超過此時間直接放棄
	MaxStreamLen int64         // 流長度上限，發送時近似修剪
}

func (c *StreamQueueConfig) fillDefaults() {
	if c.ReadBlock <= 0 {
		c.ReadBlock = 2 * time.Second
	}
	if c.RetryAfter <= 0 {
		c.RetryAfter = 5 * time.Second
	}
	if c.GiveUpAfter <= 0 {
		c.GiveUpAfter = 15 * time.Minute
	}
	if c.MaxStreamLen <= 0 {
		c.MaxStreamLen = 4096
	}
}

type redisStreamQueue struct {
	client   *redis.Client
	consumer string
	cfg      StreamQueueConfig
	log      *zap.Logger
}

// NewRedisStreamConfirmationQueue 建立 Redis Stream 版的確認隊列。
// consumerID 空字串時自動產生；cfg 為 nil 時全部用預設值。
func NewRedisStreamConfirmationQueue(client *redis.Client, consumerID string, cfg *StreamQueueConfig) (ConfirmationQueue, error) {
	if consumerID == "" {
		consumerID = uuid.NewString()
	}

	var conf StreamQueueConfig
	if cfg != nil {
		conf = *cfg
	}
	conf.fillDefaults()

	err := client.XGroupCreateMkStream(context.Background(), StreamKey, consumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &redisStreamQueue{
		client:   client,
		consumer: "notifier-" + consumerID,
		cfg:      conf,
		log:      logger.WithComponent("queue"),
	}, nil
}

func (q *redisStreamQueue) PublishConfirmation(ctx context.Context, confirmation *model.Confirmation) error {
	payload, err := json.Marshal(confirmation)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: q.cfg.MaxStreamLen,
		Approx: true,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
}

// SubscribeConfirmations 單一循環輪流做兩件事：讀新訊息、領回逾時未確認的訊息。
func (q *redisStreamQueue) SubscribeConfirmations(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)

		lastReclaim := time.Now()
		for ctx.Err() == nil {
			if time.Since(lastReclaim) >= q.cfg.RetryAfter {
				q.reclaimStale(ctx, out)
				lastReclaim = time.Now()
			}
			q.readNew(ctx, out)
		}
	}()

	return out, nil
}

func (q *redisStreamQueue) readNew(ctx context.Context, out chan<- Delivery) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: q.consumer,
		Streams:  []string{StreamKey, ">"},
		Count:    readBatchSize,
		Block:    q.cfg.ReadBlock,
	}).Result()
	if err == redis.Nil || ctx.Err() != nil {
		return
	}
	if err != nil {
		q.log.Error("read stream failed", zap.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			q.handOff(ctx, out, msg)
		}
	}
}

// reclaimStale 把留在 PEL 裡超過 RetryAfter 的訊息領回來重送
func (q *redisStreamQueue) reclaimStale(ctx context.Context, out chan<- Delivery) {
	cursor := "0-0"
	for {
		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   StreamKey,
			Group:    consumerGroup,
			Consumer: q.consumer,
			MinIdle:  q.cfg.RetryAfter,
			Start:    cursor,
			Count:    readBatchSize,
		}).Result()
		if err != nil && err != redis.Nil {
			if ctx.Err() == nil {
				q.log.Error("reclaim failed", zap.Error(err))
			}
			return
		}

		for _, msg := range claimed {
			q.handOff(ctx, out, msg)
		}

		if next == "" || next == "0-0" {
			return
		}
		cursor = next
	}
}

// handOff 解開訊息並送進 out。太舊的通知與格式壞掉的訊息直接確認掉，重送也不會變好。
func (q *redisStreamQueue) handOff(ctx context.Context, out chan<- Delivery, msg redis.XMessage) {
	if q.messageAge(msg.ID) > q.cfg.GiveUpAfter {
		q.log.Warn("confirmation too old, giving up", zap.String("message_id", msg.ID))
		q.ack(msg.ID)
		return
	}

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		q.log.Warn("message without payload", zap.String("message_id", msg.ID))
		q.ack(msg.ID)
		return
	}

	var confirmation model.Confirmation
	if err := json.Unmarshal([]byte(payload), &confirmation); err != nil {
		q.log.Warn("undecodable confirmation", zap.String("message_id", msg.ID), zap.Error(err))
		q.ack(msg.ID)
		return
	}

	msgID := msg.ID
	d := Delivery{
		Data: &confirmation,
		Ack:  func() { q.ack(msgID) },
		Nack: func(requeue bool) {
			// requeue 時什麼都不做：訊息留在 PEL，RetryAfter 後被領回重送
			if !requeue {
				q.ack(msgID)
			}
		},
	}

	select {
	case out <- d:
	case <-ctx.Done():
	}
}

func (q *redisStreamQueue) ack(msgID string) {
	// 不掛在呼叫端的 ctx 上，取消訂閱也要把確認送出去
	if err := q.client.XAck(context.Background(), StreamKey, consumerGroup, msgID).Err(); err != nil {
		q.log.Error("ack failed", zap.String("message_id", msgID), zap.Error(err))
	}
}

// messageAge 從 stream ID 的毫秒時間戳推算訊息年齡
func (q *redisStreamQueue) messageAge(id string) time.Duration {
	msPart, _, _ := strings.Cut(id, "-")
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return 0
	}
	return time.Since(time.UnixMilli(ms))
}
