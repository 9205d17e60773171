package queue

import (
	"context"
	"errors"

	"supper-club/internal/model"
)

// ErrQueueFull 緩衝滿時由 PublishConfirmation 回傳，呼叫端記 log 即可
var ErrQueueFull = errors.New("confirmation queue is full")

// Delivery 把確認訊息連同完成回報一起交給 worker
type Delivery struct {
	Data *model.Confirmation
	Ack  func()
	Nack func(requeue bool)
}

type ConfirmationQueue interface {
	PublishConfirmation(ctx context.Context, confirmation *model.Confirmation) error
	SubscribeConfirmations(ctx context.Context) (<-chan Delivery, error)
}

// memoryQueue 單機版隊列。確認訊息是盡力而為的通知，
// 緩衝滿了就回報錯誤，不讓報名請求卡在這裡等。
type memoryQueue struct {
	ch chan *model.Confirmation
}

func NewConfirmationQueue(bufferSize int) ConfirmationQueue {
	return &memoryQueue{
		ch: make(chan *model.Confirmation, bufferSize),
	}
}

func (q *memoryQueue) PublishConfirmation(ctx context.Context, confirmation *model.Confirmation) error {
	select {
	case q.ch <- confirmation:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *memoryQueue) SubscribeConfirmations(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			var confirmation *model.Confirmation
			select {
			case <-ctx.Done():
				return
			case confirmation = <-q.ch:
			}

			d := Delivery{
				Data: confirmation,
				Ack:  func() {},
				Nack: func(requeue bool) {
					if !requeue {
						return
					}
					select {
					case q.ch <- confirmation:
					default:
						// 滿了就放掉，通知不值得排擠新訊息
					}
				},
			}

			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
